package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Create(ctx context.Context, e *models.Escrow) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO escrows (job_id, employer_id, amount, currency, platform_fee_percent, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`, e.JobID, e.EmployerID, e.Amount, e.Currency, e.PlatformFeePercent, e.Status,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
}

// CreateTx inserts an escrow inside a caller-owned transaction (pay-job flow
// creates the escrow and its payment atomically).
func (r *EscrowRepo) CreateTx(ctx context.Context, tx pgx.Tx, e *models.Escrow) error {
	return tx.QueryRow(ctx, `
		INSERT INTO escrows (job_id, employer_id, amount, currency, platform_fee_percent, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`, e.JobID, e.EmployerID, e.Amount, e.Currency, e.PlatformFeePercent, e.Status,
	).Scan(&e.ID, &e.Version, &e.CreatedAt, &e.UpdatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectEscrow+` WHERE id = $1`, id))
}

func (r *EscrowRepo) GetActiveByJobID(ctx context.Context, jobID uuid.UUID) (*models.Escrow, error) {
	return r.scanOne(r.pool.QueryRow(ctx, selectEscrow+`
		WHERE job_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC LIMIT 1
	`, jobID, models.EscrowStatusPending, models.EscrowStatusFunded))
}

const selectEscrow = `
	SELECT id, job_id, employer_id, amount, currency, platform_fee_percent, status,
	       external_tx_id, version, funded_at, released_at, created_at, updated_at
	FROM escrows`

func (r *EscrowRepo) scanOne(row pgx.Row) (*models.Escrow, error) {
	var e models.Escrow
	err := row.Scan(&e.ID, &e.JobID, &e.EmployerID, &e.Amount, &e.Currency, &e.PlatformFeePercent,
		&e.Status, &e.ExternalTxID, &e.Version, &e.FundedAt, &e.ReleasedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// MarkFunded transitions pending -> funded conditionally on the expected
// version. Returns false when no row matched, i.e. a stale writer or an
// escrow not in pending.
func (r *EscrowRepo) MarkFunded(ctx context.Context, id uuid.UUID, externalTxID string, expectedVersion int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE escrows
		SET status = $1, external_tx_id = $2, funded_at = now(), version = version + 1, updated_at = now()
		WHERE id = $3 AND status = $4 AND version = $5
	`, models.EscrowStatusFunded, externalTxID, id, models.EscrowStatusPending, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// MarkReleasedTx transitions funded -> released inside a caller-owned
// transaction, conditionally on the expected version.
func (r *EscrowRepo) MarkReleasedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, expectedVersion int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE escrows
		SET status = $1, released_at = now(), version = version + 1, updated_at = now()
		WHERE id = $2 AND status = $3 AND version = $4
	`, models.EscrowStatusReleased, id, models.EscrowStatusFunded, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
