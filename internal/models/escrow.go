package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Escrow statuses. Disputed is part of the enum but no code path sets it:
// dispute handling is a known gap, not an implemented workflow.
const (
	EscrowStatusPending  = "pending"
	EscrowStatusFunded   = "funded"
	EscrowStatusReleased = "released"
	EscrowStatusDisputed = "disputed"
)

// Valid escrow transitions: from -> []to. Release is only valid from funded.
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusPending:  {EscrowStatusFunded},
	EscrowStatusFunded:   {EscrowStatusReleased},
	EscrowStatusReleased: {},
	EscrowStatusDisputed: {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
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

type Escrow struct {
	ID                 uuid.UUID  `json:"id"`
	JobID              uuid.UUID  `json:"job_id"`
	EmployerID         uuid.UUID  `json:"employer_id"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	PlatformFeePercent float64    `json:"platform_fee_percent"`
	Status             string     `json:"status"`
	ExternalTxID       *string    `json:"external_tx_id,omitempty"`
	Version            int        `json:"version"`
	FundedAt           *time.Time `json:"funded_at,omitempty"`
	ReleasedAt         *time.Time `json:"released_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ComputeRelease splits an escrow amount into the platform fee and the worker
// payout. The fee is rounded half-up to a whole shilling; the worker amount is
// the exact remainder, so fee + worker always equals amount.
func ComputeRelease(amount, feePercent float64) (platformFee, workerAmount float64) {
	platformFee = math.Round(amount * feePercent / 100)
	workerAmount = amount - platformFee
	return platformFee, workerAmount
}
