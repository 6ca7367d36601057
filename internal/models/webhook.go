package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookLog is the append-only dead-letter record for provider callbacks
// that could not be matched to any payment. Kept for manual reconciliation;
// never read programmatically.
type WebhookLog struct {
	ID                uuid.UUID `json:"id"`
	Source            string    `json:"source"`
	CheckoutRequestID *string   `json:"checkout_request_id,omitempty"`
	MerchantRequestID *string   `json:"merchant_request_id,omitempty"`
	Payload           any       `json:"payload"`
	CreatedAt         time.Time `json:"created_at"`
}
