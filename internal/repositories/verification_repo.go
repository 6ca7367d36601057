package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type VerificationRepo struct {
	pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

func (r *VerificationRepo) Create(ctx context.Context, v *models.VerificationRequest) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO verification_requests (user_id, document_type, document_url, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, v.UserID, v.DocumentType, v.DocumentURL, v.Status).Scan(&v.ID, &v.CreatedAt)
}

const selectVerification = `
	SELECT id, user_id, document_type, document_url, status, reviewed_by, review_note, created_at, reviewed_at
	FROM verification_requests`

func (r *VerificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectVerification+` WHERE id = $1`, id))
}

// GetPendingByUserID finds an open request so a user cannot queue duplicates.
func (r *VerificationRepo) GetPendingByUserID(ctx context.Context, userID uuid.UUID) (*models.VerificationRequest, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectVerification+`
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1
	`, userID, models.VerificationStatusPending))
}

func (r *VerificationRepo) scanOne(row pgx.Row) (*models.VerificationRequest, error) {
	var v models.VerificationRequest
	err := row.Scan(&v.ID, &v.UserID, &v.DocumentType, &v.DocumentURL, &v.Status,
		&v.ReviewedBy, &v.ReviewNote, &v.CreatedAt, &v.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.VerificationRequest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, selectVerification+`
		WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3
	`, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []models.VerificationRequest
	for rows.Next() {
		var v models.VerificationRequest
		if err := rows.Scan(&v.ID, &v.UserID, &v.DocumentType, &v.DocumentURL, &v.Status,
			&v.ReviewedBy, &v.ReviewNote, &v.CreatedAt, &v.ReviewedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, v)
	}
	return reqs, nil
}

// ReviewTx records the admin decision inside a caller-owned transaction,
// conditional on the request still being pending.
func (r *VerificationRepo) ReviewTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, reviewerID uuid.UUID, note *string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE verification_requests
		SET status = $1, reviewed_by = $2, review_note = $3, reviewed_at = now()
		WHERE id = $4 AND status = $5
	`, status, reviewerID, note, id, models.VerificationStatusPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
