package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is the incrementally maintained ledger for a user. Balance moves
// only inside database transactions together with the payment or escrow
// record that justifies the movement. LockedBalance holds amounts reserved
// by payout requests awaiting admin review.
type Wallet struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Currency      string    `json:"currency"`
	Balance       float64   `json:"balance"`
	LockedBalance float64   `json:"locked_balance"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Available is what a payout request may draw on.
func (w *Wallet) Available() float64 {
	return w.Balance - w.LockedBalance
}

// Ledger entry directions
const (
	LedgerCredit = "credit"
	LedgerDebit  = "debit"
)

type LedgerEntry struct {
	ID        uuid.UUID  `json:"id"`
	WalletID  uuid.UUID  `json:"wallet_id"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	EscrowID  *uuid.UUID `json:"escrow_id,omitempty"`
	Direction string     `json:"direction"`
	Amount    float64    `json:"amount"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}
