package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/db"
	"github.com/onlineworkerske/backend/internal/events"
	"github.com/onlineworkerske/backend/internal/mpesa"
	"github.com/onlineworkerske/backend/internal/repositories"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

// The worker sweeps pending push payments whose callback never arrived and
// audits wallet balances against their ledgers.
func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	userRepo := repositories.NewUserRepo(pool)
	jobRepo := repositories.NewJobRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	webhookRepo := repositories.NewWebhookLogRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	publisher := events.NewRedisPublisher(rdb, log)

	gateway := mpesa.NewClient(
		cfg.MpesaBaseURL,
		cfg.MpesaShortcode,
		cfg.MpesaPasskey,
		cfg.MpesaConsumerKey,
		cfg.MpesaConsumerSecret,
		cfg.MpesaCallbackURL,
		log,
	)

	escrowService := services.NewEscrowService(pool, escrowRepo, jobRepo, paymentRepo, walletRepo, auditRepo, publisher, cfg, log)
	paymentService := services.NewPaymentService(pool, paymentRepo, escrowRepo, jobRepo, userRepo, walletRepo, webhookRepo, auditRepo, escrowService, gateway, publisher, cfg, log)
	reconciler := services.NewReconciler(paymentService, paymentRepo, walletRepo, int(cfg.PaymentStaleAfter.Minutes()), log)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down worker...")
		cancel()
	}()

	sweep := time.NewTicker(cfg.PaymentReconcileInterval)
	defer sweep.Stop()
	audit := time.NewTicker(6 * cfg.PaymentReconcileInterval)
	defer audit.Stop()

	log.Info("reconciliation worker started",
		zap.Duration("sweep_interval", cfg.PaymentReconcileInterval),
		zap.Duration("stale_after", cfg.PaymentStaleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-sweep.C:
			settled, err := reconciler.SweepStalePayments(ctx)
			if err != nil {
				log.Error("payment sweep failed", zap.Error(err))
				continue
			}
			if settled > 0 {
				log.Info("payment sweep complete", zap.Int("settled", settled))
			}
		case <-audit.C:
			mismatches, err := reconciler.AuditWallets(ctx)
			if err != nil {
				log.Error("wallet audit failed", zap.Error(err))
				continue
			}
			if mismatches > 0 {
				log.Warn("wallet audit found mismatches", zap.Int("count", mismatches))
			}
		}
	}
}
