package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment types
const (
	PaymentTypeTopup           = "topup"
	PaymentTypeEscrow          = "escrow"
	PaymentTypePayout          = "payout"
	PaymentTypeRelease         = "release"
	PaymentTypeJobVerification = "job_verification"
)

var AllPaymentTypes = []string{
	PaymentTypeTopup, PaymentTypeEscrow, PaymentTypePayout,
	PaymentTypeRelease, PaymentTypeJobVerification,
}

func IsValidPaymentType(t string) bool {
	for _, pt := range AllPaymentTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// Gateway statuses: the push-payment confirmation lifecycle. A terminal
// status may be re-applied to itself so that duplicate callback deliveries
// are accepted rather than rejected.
const (
	GatewayStatusPending = "pending"
	GatewayStatusPaid    = "paid"
	GatewayStatusFailed  = "failed"
)

var ValidGatewayTransitions = map[string][]string{
	GatewayStatusPending: {GatewayStatusPaid, GatewayStatusFailed},
	GatewayStatusPaid:    {GatewayStatusPaid},
	GatewayStatusFailed:  {GatewayStatusFailed},
}

func IsValidGatewayTransition(from, to string) bool {
	allowed, ok := ValidGatewayTransitions[from]
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

// Review statuses: the admin-moderation lifecycle for payouts. Independent
// of the gateway lifecycle so neither enum leaks invalid states into the
// other.
const (
	ReviewStatusNone     = "none"
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

var ValidReviewTransitions = map[string][]string{
	ReviewStatusNone:     {ReviewStatusPending},
	ReviewStatusPending:  {ReviewStatusApproved, ReviewStatusRejected},
	ReviewStatusApproved: {},
	ReviewStatusRejected: {},
}

func IsValidReviewTransition(from, to string) bool {
	allowed, ok := ValidReviewTransitions[from]
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

type Payment struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	JobID         *uuid.UUID `json:"job_id,omitempty"`
	EscrowID      *uuid.UUID `json:"escrow_id,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Type          string     `json:"type"`
	GatewayStatus string     `json:"gateway_status"`
	ReviewStatus  string     `json:"review_status"`
	// Canonical correlation keys, set once at creation from the provider's
	// STK push response. Webhook matching is a single-column lookup.
	CheckoutRequestID *string   `json:"checkout_request_id,omitempty"`
	MerchantRequestID *string   `json:"merchant_request_id,omitempty"`
	MpesaReceipt      *string   `json:"mpesa_receipt,omitempty"`
	PhoneNumber       *string   `json:"phone_number,omitempty"`
	ProviderData      any       `json:"provider_data,omitempty"`
	Meta              any       `json:"meta,omitempty"`
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ComputeBalanceFromHistory derives a user's balance from their full payment
// history: confirmed top-ups minus confirmed payouts. The wallet ledger is
// the authoritative balance; this sum is kept as a reconciliation check
// against it.
func ComputeBalanceFromHistory(payments []Payment) float64 {
	var balance float64
	for _, p := range payments {
		if p.GatewayStatus != GatewayStatusPaid {
			continue
		}
		switch p.Type {
		case PaymentTypeTopup:
			balance += p.Amount
		case PaymentTypePayout:
			balance -= p.Amount
		}
	}
	return balance
}
