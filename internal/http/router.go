package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/http/handlers"
	"github.com/onlineworkerske/backend/internal/middleware"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/rbac"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	jobHandler *handlers.JobHandler,
	paymentHandler *handlers.PaymentHandler,
	escrowHandler *handlers.EscrowHandler,
	verificationHandler *handlers.VerificationHandler,
	adminHandler *handlers.AdminHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	// Public webhooks. Registered before the rate limiter: the provider must
	// never see a 429.
	api.Post("/payments/mpesa/callback", paymentHandler.MpesaCallback)
	api.Post("/payments/escrow/webhook", escrowHandler.Webhook)

	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Put("/me", userHandler.UpdateMe)
	protected.Get("/users/:id", userHandler.GetUser)

	// Jobs
	protected.Post("/jobs", middleware.RequirePermission(rbac.PermPostJob), jobHandler.PostJob)
	protected.Get("/jobs", jobHandler.ListJobs)
	protected.Get("/jobs/:id", jobHandler.GetJob)
	protected.Post("/jobs/:id/apply", middleware.RequirePermission(rbac.PermApplyJob), jobHandler.Apply)
	protected.Get("/jobs/:id/applications", jobHandler.GetApplications)
	protected.Post("/jobs/:id/assign", middleware.RequirePermission(rbac.PermAssignWorker), jobHandler.AssignWorker)
	protected.Post("/jobs/:id/cancel", middleware.RequireRole(models.RoleEmployer), jobHandler.CancelJob)
	protected.Get("/jobs/:id/events", jobHandler.GetJobEvents)

	// Payments
	protected.Post("/payments/topup", paymentHandler.Topup)
	protected.Post("/payments/mpesa/pay-job", middleware.RequireRole(models.RoleWorker), paymentHandler.PayJob)
	protected.Post("/payments/mpesa/verify-job", middleware.RequirePermission(rbac.PermVerifyJobListing), paymentHandler.VerifyJob)
	protected.Get("/payments/mpesa/query-stk/:checkoutRequestId", paymentHandler.QuerySTK)
	protected.Post("/payments/request-payout", middleware.RequirePermission(rbac.PermRequestPayout), paymentHandler.RequestPayout)
	protected.Get("/payments", paymentHandler.ListPayments)
	protected.Get("/payments/balance", paymentHandler.GetBalance)

	// Escrow
	protected.Post("/payments/escrow/initiate", middleware.RequirePermission(rbac.PermFundEscrow), escrowHandler.Initiate)
	protected.Get("/payments/escrow/:id", escrowHandler.GetEscrow)
	protected.Post("/payments/escrow/:id/release", middleware.RequirePermission(rbac.PermReleaseEscrow), escrowHandler.Release)

	// Verification
	protected.Post("/verification", verificationHandler.Submit)

	// Admin
	admin := protected.Group("/admin", middleware.AdminMiddleware())
	admin.Get("/verification/pending", verificationHandler.ListPending)
	admin.Post("/verification/:id/review", verificationHandler.Review)
	admin.Get("/payouts/pending", adminHandler.ListPendingPayouts)
	admin.Post("/payouts/:id/review", paymentHandler.ReviewPayout)
	admin.Get("/audit", adminHandler.ListAuditLogs)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
