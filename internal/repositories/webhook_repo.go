package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type WebhookLogRepo struct {
	pool *pgxpool.Pool
}

func NewWebhookLogRepo(pool *pgxpool.Pool) *WebhookLogRepo {
	return &WebhookLogRepo{pool: pool}
}

func (r *WebhookLogRepo) Create(ctx context.Context, l *models.WebhookLog) error {
	payloadBytes, err := json.Marshal(l.Payload)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO webhook_logs (source, checkout_request_id, merchant_request_id, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, l.Source, l.CheckoutRequestID, l.MerchantRequestID, payloadBytes).Scan(&l.ID, &l.CreatedAt)
}
