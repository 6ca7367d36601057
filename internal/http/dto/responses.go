package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// Payment responses keep the field casing the mobile clients were built
// against.

type TopupResponse struct {
	Success           bool   `json:"success"`
	CheckoutRequestID string `json:"checkoutRequestID"`
	PaymentID         string `json:"paymentId"`
}

type MpesaRef struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
}

type PayJobResponse struct {
	Success bool     `json:"success"`
	Payment any      `json:"payment"`
	Escrow  any      `json:"escrow"`
	Mpesa   MpesaRef `json:"mpesa"`
}

type VerifyJobResponse struct {
	Success bool     `json:"success"`
	Payment any      `json:"payment"`
	Mpesa   MpesaRef `json:"mpesa"`
}

type PayoutResponse struct {
	Success bool `json:"success"`
	Payout  any  `json:"payout"`
}

type PaymentsListResponse struct {
	Payments any `json:"payments"`
}

type ReleaseResponse struct {
	Escrow       any     `json:"escrow"`
	PlatformFee  float64 `json:"platformFee"`
	WorkerAmount float64 `json:"workerAmount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BalanceResponse struct {
	Wallet         any     `json:"wallet"`
	HistoryBalance float64 `json:"history_balance"`
	Reconciled     bool    `json:"reconciled"`
}
