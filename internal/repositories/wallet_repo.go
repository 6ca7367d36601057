package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

func (r *WalletRepo) GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx, `
		INSERT INTO wallets (user_id, currency)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = wallets.updated_at
		RETURNING id, user_id, currency, balance, locked_balance, version, created_at, updated_at
	`, userID, currency).Scan(&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.LockedBalance,
		&w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, currency, balance, locked_balance, version, created_at, updated_at
		FROM wallets WHERE user_id = $1
	`, userID).Scan(&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.LockedBalance,
		&w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// CreditTx adds to the balance and records the ledger entry in one
// caller-owned transaction.
func (r *WalletRepo) CreditTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, reason string, paymentID, escrowID *uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets SET balance = balance + $1, version = version + 1, updated_at = now()
		WHERE id = $2
	`, amount, walletID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return pgx.ErrNoRows
	}
	return r.insertLedgerEntry(ctx, tx, walletID, models.LedgerCredit, amount, reason, paymentID, escrowID)
}

// LockForPayout reserves an amount for a pending payout. Conditional on the
// available balance and the expected version: a request exceeding available
// funds, or racing another writer, matches zero rows.
func (r *WalletRepo) LockForPayout(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, expectedVersion int) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets SET locked_balance = locked_balance + $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND version = $3 AND balance - locked_balance >= $1
	`, amount, walletID, expectedVersion)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SettleLockTx finalizes an approved payout: the locked amount leaves both
// the lock and the balance, with a debit ledger entry.
func (r *WalletRepo) SettleLockTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, paymentID *uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets
		SET balance = balance - $1, locked_balance = locked_balance - $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND locked_balance >= $1 AND balance >= $1
	`, amount, walletID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return pgx.ErrNoRows
	}
	return r.insertLedgerEntry(ctx, tx, walletID, models.LedgerDebit, amount, "payout_settled", paymentID, nil)
}

// ReleaseLockTx returns a rejected payout's reservation to available funds.
func (r *WalletRepo) ReleaseLockTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE wallets SET locked_balance = locked_balance - $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND locked_balance >= $1
	`, amount, walletID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WalletRepo) insertLedgerEntry(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, direction string, amount float64, reason string, paymentID, escrowID *uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_ledger_entries (wallet_id, payment_id, escrow_id, direction, amount, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, walletID, paymentID, escrowID, direction, amount, reason)
	return err
}

// SumLedger recomputes a wallet's balance from its ledger entries, for the
// reconciliation audit check.
func (r *WalletRepo) SumLedger(ctx context.Context, walletID uuid.UUID) (float64, error) {
	var sum float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE direction WHEN $1 THEN amount ELSE -amount END), 0)
		FROM wallet_ledger_entries WHERE wallet_id = $2
	`, models.LedgerCredit, walletID).Scan(&sum)
	return sum, err
}

func (r *WalletRepo) ListAll(ctx context.Context, limit, offset int) ([]models.Wallet, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, currency, balance, locked_balance, version, created_at, updated_at
		FROM wallets ORDER BY created_at ASC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Currency, &w.Balance, &w.LockedBalance,
			&w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}
