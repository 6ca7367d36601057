package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const selectPayment = `
	SELECT id, user_id, job_id, escrow_id, amount, currency, type, gateway_status, review_status,
	       checkout_request_id, merchant_request_id, mpesa_receipt, phone_number,
	       provider_data, meta, version, created_at, updated_at
	FROM payments`

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.create(ctx, r.pool, p)
}

func (r *PaymentRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error {
	return r.create(ctx, tx, p)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PaymentRepo) create(ctx context.Context, q rowQuerier, p *models.Payment) error {
	providerBytes, err := json.Marshal(p.ProviderData)
	if err != nil {
		return err
	}
	metaBytes, err := json.Marshal(p.Meta)
	if err != nil {
		return err
	}
	return q.QueryRow(ctx, `
		INSERT INTO payments (user_id, job_id, escrow_id, amount, currency, type,
		                      gateway_status, review_status, checkout_request_id, merchant_request_id,
		                      phone_number, provider_data, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, version, created_at, updated_at
	`, p.UserID, p.JobID, p.EscrowID, p.Amount, p.Currency, p.Type,
		p.GatewayStatus, p.ReviewStatus, p.CheckoutRequestID, p.MerchantRequestID,
		p.PhoneNumber, providerBytes, metaBytes,
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, selectPayment+` WHERE id = $1`, id))
}

func (r *PaymentRepo) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, selectPayment+` WHERE checkout_request_id = $1`, checkoutRequestID))
}

func (r *PaymentRepo) GetByMerchantRequestID(ctx context.Context, merchantRequestID string) (*models.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, selectPayment+` WHERE merchant_request_id = $1`, merchantRequestID))
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	var providerBytes, metaBytes []byte
	err := row.Scan(&p.ID, &p.UserID, &p.JobID, &p.EscrowID, &p.Amount, &p.Currency, &p.Type,
		&p.GatewayStatus, &p.ReviewStatus, &p.CheckoutRequestID, &p.MerchantRequestID,
		&p.MpesaReceipt, &p.PhoneNumber, &providerBytes, &metaBytes, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(providerBytes, &p.ProviderData)
	_ = json.Unmarshal(metaBytes, &p.Meta)
	return &p, nil
}

// ApplyCallback writes the terminal gateway status together with the
// callback-reported receipt, phone and amount (the confirmed amount is
// authoritative and overwrites the requested one). Conditional on version so
// concurrent writers cannot interleave; re-deliveries that already applied
// the same terminal status simply match zero rows after the version moved,
// and the caller treats that as success.
func (r *PaymentRepo) ApplyCallback(ctx context.Context, p *models.Payment, newStatus string, receipt, phone *string, amount *float64, rawPayload any, expectedVersion int) (bool, error) {
	rawBytes, err := json.Marshal(rawPayload)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE payments
		SET gateway_status = $1,
		    mpesa_receipt = COALESCE($2, mpesa_receipt),
		    phone_number = COALESCE($3, phone_number),
		    amount = COALESCE($4, amount),
		    provider_data = $5,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $6 AND version = $7
	`, newStatus, receipt, phone, amount, rawBytes, p.ID, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateReviewStatusTx moves the admin-moderation status inside a
// caller-owned transaction, conditional on the current review status.
func (r *PaymentRepo) UpdateReviewStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE payments SET review_status = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND review_status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkGatewayStatusTx sets the gateway status inside a caller-owned
// transaction (payout settlement).
func (r *PaymentRepo) MarkGatewayStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE payments SET gateway_status = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND gateway_status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

type PaymentFilter struct {
	UserID        *uuid.UUID
	JobID         *uuid.UUID
	Type          *string
	GatewayStatus *string
	ReviewStatus  *string
	Limit         int
	Offset        int
}

func (r *PaymentRepo) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	query := selectPayment
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, *f.UserID)
		argIdx++
	}
	if f.JobID != nil {
		where = append(where, fmt.Sprintf("job_id = $%d", argIdx))
		args = append(args, *f.JobID)
		argIdx++
	}
	if f.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *f.Type)
		argIdx++
	}
	if f.GatewayStatus != nil {
		where = append(where, fmt.Sprintf("gateway_status = $%d", argIdx))
		args = append(args, *f.GatewayStatus)
		argIdx++
	}
	if f.ReviewStatus != nil {
		where = append(where, fmt.Sprintf("review_status = $%d", argIdx))
		args = append(args, *f.ReviewStatus)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var providerBytes, metaBytes []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.JobID, &p.EscrowID, &p.Amount, &p.Currency, &p.Type,
			&p.GatewayStatus, &p.ReviewStatus, &p.CheckoutRequestID, &p.MerchantRequestID,
			&p.MpesaReceipt, &p.PhoneNumber, &providerBytes, &metaBytes, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(providerBytes, &p.ProviderData)
		_ = json.Unmarshal(metaBytes, &p.Meta)
		payments = append(payments, p)
	}
	return payments, nil
}

// ListStalePending returns pending push payments older than the cutoff, for
// the reconciliation worker to poll against the gateway.
func (r *PaymentRepo) ListStalePending(ctx context.Context, olderThanMinutes int, limit int) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, selectPayment+`
		WHERE gateway_status = $1
		  AND checkout_request_id IS NOT NULL
		  AND created_at < now() - ($2 || ' minutes')::interval
		ORDER BY created_at ASC LIMIT $3
	`, models.GatewayStatusPending, fmt.Sprintf("%d", olderThanMinutes), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var providerBytes, metaBytes []byte
		if err := rows.Scan(&p.ID, &p.UserID, &p.JobID, &p.EscrowID, &p.Amount, &p.Currency, &p.Type,
			&p.GatewayStatus, &p.ReviewStatus, &p.CheckoutRequestID, &p.MerchantRequestID,
			&p.MpesaReceipt, &p.PhoneNumber, &providerBytes, &metaBytes, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(providerBytes, &p.ProviderData)
		_ = json.Unmarshal(metaBytes, &p.Meta)
		payments = append(payments, p)
	}
	return payments, nil
}

// SumHistoryForUser computes the payment-history balance (confirmed top-ups
// minus confirmed payouts) in SQL, used as the reconciliation check against
// the wallet ledger.
func (r *PaymentRepo) SumHistoryForUser(ctx context.Context, userID uuid.UUID) (float64, error) {
	var sum float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE type WHEN $1 THEN amount WHEN $2 THEN -amount ELSE 0 END), 0)
		FROM payments
		WHERE user_id = $3 AND gateway_status = $4 AND type IN ($1, $2)
	`, models.PaymentTypeTopup, models.PaymentTypePayout, userID, models.GatewayStatusPaid).Scan(&sum)
	return sum, err
}
