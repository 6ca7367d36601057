package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/db"
	"github.com/onlineworkerske/backend/internal/events"
	apphttp "github.com/onlineworkerske/backend/internal/http"
	"github.com/onlineworkerske/backend/internal/http/handlers"
	"github.com/onlineworkerske/backend/internal/mpesa"
	"github.com/onlineworkerske/backend/internal/repositories"
	"github.com/onlineworkerske/backend/internal/services"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	jobRepo := repositories.NewJobRepo(pool)
	escrowRepo := repositories.NewEscrowRepo(pool)
	paymentRepo := repositories.NewPaymentRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	webhookRepo := repositories.NewWebhookLogRepo(pool)
	verificationRepo := repositories.NewVerificationRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Gateway
	gateway := mpesa.NewClient(
		cfg.MpesaBaseURL,
		cfg.MpesaShortcode,
		cfg.MpesaPasskey,
		cfg.MpesaConsumerKey,
		cfg.MpesaConsumerSecret,
		cfg.MpesaCallbackURL,
		log,
	)

	// Services
	authService := services.NewAuthService(userRepo, auditRepo, cfg, log)
	jobService := services.NewJobService(jobRepo, userRepo, auditRepo, publisher, log)
	escrowService := services.NewEscrowService(pool, escrowRepo, jobRepo, paymentRepo, walletRepo, auditRepo, publisher, cfg, log)
	paymentService := services.NewPaymentService(pool, paymentRepo, escrowRepo, jobRepo, userRepo, walletRepo, webhookRepo, auditRepo, escrowService, gateway, publisher, cfg, log)
	verificationService := services.NewVerificationService(pool, verificationRepo, userRepo, auditRepo, publisher, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	userHandler := handlers.NewUserHandler(userRepo, log)
	jobHandler := handlers.NewJobHandler(jobService, log)
	paymentHandler := handlers.NewPaymentHandler(paymentService, log)
	escrowHandler := handlers.NewEscrowHandler(escrowService, log)
	verificationHandler := handlers.NewVerificationHandler(verificationService, log)
	adminHandler := handlers.NewAdminHandler(auditRepo, paymentRepo, log)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"message": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, userHandler, jobHandler, paymentHandler, escrowHandler, verificationHandler, adminHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
