package dto

type RegisterRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"full_name"`
	Phone    *string  `json:"phone,omitempty"`
	Role     string   `json:"role,omitempty"` // worker / employer
	Skills   []string `json:"skills,omitempty"`
	Bio      *string  `json:"bio,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FullName *string  `json:"full_name,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	Bio      *string  `json:"bio,omitempty"`
}

// Jobs

type PostJobRequest struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	SkillsRequired []string `json:"skills_required,omitempty"`
	BudgetKES      float64  `json:"budget_kes"`
}

type ApplyJobRequest struct {
	CoverLetter *string  `json:"cover_letter,omitempty"`
	BidKES      *float64 `json:"bid_kes,omitempty"`
}

type AssignWorkerRequest struct {
	ApplicationID string `json:"application_id"`
}

// Payments. Field casing on these mirrors what the mobile clients already
// send.

type TopupRequest struct {
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phoneNumber"`
}

type PayJobRequest struct {
	JobID       string  `json:"jobId"`
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount"`
}

type VerifyJobRequest struct {
	JobID       string  `json:"jobId"`
	PhoneNumber string  `json:"phoneNumber"`
	Amount      float64 `json:"amount,omitempty"`
}

type RequestPayoutRequest struct {
	Amount      float64        `json:"amount"`
	Method      string         `json:"method"`
	AccountInfo map[string]any `json:"accountInfo,omitempty"`
}

// Escrow

type EscrowInitiateRequest struct {
	JobID    string  `json:"jobId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

type EscrowWebhookRequest struct {
	EscrowID     string `json:"escrowId"`
	ExternalTxID string `json:"externalTxId"`
	Status       string `json:"status"`
}

// Verification

type SubmitVerificationRequest struct {
	DocumentType string `json:"document_type"` // national_id / passport
	DocumentURL  string `json:"document_url"`
}

type ReviewDecisionRequest struct {
	Approve bool    `json:"approve"`
	Note    *string `json:"note,omitempty"`
}
