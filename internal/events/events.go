package events

import "context"

// Event types
const (
	EventPaymentReceived  = "payment_received"
	EventPaymentFailed    = "payment_failed"
	EventEscrowFunded     = "escrow_funded"
	EventEscrowReleased   = "escrow_released"
	EventPayoutReviewed   = "payout_reviewed"
	EventJobStatusChanged = "job_status_changed"
	EventUserVerified     = "user_verified"
)

// Streams
const (
	StreamPayments = "events:payments"
	StreamEscrows  = "events:escrows"
	StreamJobs     = "events:jobs"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
