package services

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

// Reconciler is the background sweep for payments whose callback never
// arrived. It polls the provider for each stale pending push and applies the
// result through the same path a callback would take.
type Reconciler struct {
	paymentSvc  *PaymentService
	paymentRepo *repositories.PaymentRepo
	walletRepo  *repositories.WalletRepo
	log         *zap.Logger

	StaleAfterMinutes int
	BatchSize         int
}

func NewReconciler(paymentSvc *PaymentService, paymentRepo *repositories.PaymentRepo, walletRepo *repositories.WalletRepo, staleAfterMinutes int, log *zap.Logger) *Reconciler {
	if staleAfterMinutes <= 0 {
		staleAfterMinutes = 10
	}
	return &Reconciler{
		paymentSvc:        paymentSvc,
		paymentRepo:       paymentRepo,
		walletRepo:        walletRepo,
		log:               log,
		StaleAfterMinutes: staleAfterMinutes,
		BatchSize:         50,
	}
}

// SweepStalePayments polls the gateway for every stale pending push and
// settles the ones the provider reports as terminal. Returns how many
// payments were settled.
func (r *Reconciler) SweepStalePayments(ctx context.Context) (int, error) {
	stale, err := r.paymentRepo.ListStalePending(ctx, r.StaleAfterMinutes, r.BatchSize)
	if err != nil {
		return 0, err
	}

	settled := 0
	for i := range stale {
		p := &stale[i]
		if p.CheckoutRequestID == nil {
			continue
		}

		resp, err := r.paymentSvc.QuerySTK(ctx, *p.CheckoutRequestID)
		if err != nil {
			r.log.Warn("stk query failed during sweep",
				zap.String("payment_id", p.ID.String()),
				zap.Error(err),
			)
			continue
		}

		// An empty ResultCode means the push is still in flight; leave it
		// for the next sweep.
		if resp.ResultCode == "" {
			continue
		}
		code, err := strconv.Atoi(resp.ResultCode)
		if err != nil {
			r.log.Warn("non-numeric result code from stk query",
				zap.String("payment_id", p.ID.String()),
				zap.String("result_code", resp.ResultCode),
			)
			continue
		}

		newStatus := models.GatewayStatusFailed
		if code == 0 {
			newStatus = models.GatewayStatusPaid
		}

		raw, _ := json.Marshal(resp)
		if err := r.paymentSvc.applyGatewayResult(ctx, p, newStatus, nil, raw, resp.ResultDesc); err != nil {
			r.log.Error("failed to settle stale payment",
				zap.String("payment_id", p.ID.String()),
				zap.Error(err),
			)
			continue
		}
		settled++
		r.log.Info("stale payment settled",
			zap.String("payment_id", p.ID.String()),
			zap.String("status", newStatus),
		)
	}
	return settled, nil
}

// AuditWallets compares every wallet's running balance against the sum of
// its ledger entries. Mismatches are logged for manual follow-up; nothing is
// auto-corrected.
func (r *Reconciler) AuditWallets(ctx context.Context) (int, error) {
	wallets, err := r.walletRepo.ListAll(ctx, 500, 0)
	if err != nil {
		return 0, err
	}

	mismatches := 0
	for i := range wallets {
		w := &wallets[i]
		ledgerSum, err := r.walletRepo.SumLedger(ctx, w.ID)
		if err != nil {
			r.log.Warn("ledger sum failed", zap.String("wallet_id", w.ID.String()), zap.Error(err))
			continue
		}
		if math.Abs(w.Balance-ledgerSum) > 0.01 {
			mismatches++
			r.log.Error("wallet balance diverges from ledger",
				zap.String("wallet_id", w.ID.String()),
				zap.String("user_id", w.UserID.String()),
				zap.Float64("balance", w.Balance),
				zap.Float64("ledger_sum", ledgerSum),
			)
		}
	}
	return mismatches, nil
}
