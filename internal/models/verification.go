package models

import (
	"time"

	"github.com/google/uuid"
)

// Verification request statuses: single admin-moderated transition.
const (
	VerificationStatusPending  = "pending"
	VerificationStatusApproved = "approved"
	VerificationStatusRejected = "rejected"
)

var ValidVerificationTransitions = map[string][]string{
	VerificationStatusPending:  {VerificationStatusApproved, VerificationStatusRejected},
	VerificationStatusApproved: {},
	VerificationStatusRejected: {},
}

func IsValidVerificationTransition(from, to string) bool {
	allowed, ok := ValidVerificationTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

type VerificationRequest struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	DocumentType string     `json:"document_type"` // national_id / passport
	DocumentURL  string     `json:"document_url"`
	Status       string     `json:"status"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewNote   *string    `json:"review_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}
