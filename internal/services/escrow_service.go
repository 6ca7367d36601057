package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/events"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type EscrowService struct {
	pool        *pgxpool.Pool
	escrowRepo  *repositories.EscrowRepo
	jobRepo     *repositories.JobRepo
	paymentRepo *repositories.PaymentRepo
	walletRepo  *repositories.WalletRepo
	auditRepo   *repositories.AuditRepo
	publisher   events.Publisher
	cfg         *config.Config
	log         *zap.Logger
}

func NewEscrowService(
	pool *pgxpool.Pool,
	escrowRepo *repositories.EscrowRepo,
	jobRepo *repositories.JobRepo,
	paymentRepo *repositories.PaymentRepo,
	walletRepo *repositories.WalletRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *EscrowService {
	return &EscrowService{
		pool:        pool,
		escrowRepo:  escrowRepo,
		jobRepo:     jobRepo,
		paymentRepo: paymentRepo,
		walletRepo:  walletRepo,
		auditRepo:   auditRepo,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
	}
}

// Initiate creates a pending escrow for a job. Funding happens later, either
// through the push-payment flow or the provider webhook.
func (s *EscrowService) Initiate(ctx context.Context, actorID uuid.UUID, actorRole string, jobID uuid.UUID, amount float64, currency string) (*models.Escrow, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != actorID && actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the employer can initiate escrow", ErrForbidden)
	}
	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusCancelled {
		return nil, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}
	if existing, err := s.escrowRepo.GetActiveByJobID(ctx, jobID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: job already has an active escrow", ErrConflict)
	}

	if currency == "" {
		currency = s.cfg.Currency
	}
	escrow := &models.Escrow{
		JobID:              jobID,
		EmployerID:         job.EmployerID,
		Amount:             amount,
		Currency:           currency,
		PlatformFeePercent: s.cfg.PlatformFeePercent,
		Status:             models.EscrowStatusPending,
	}
	if err := s.escrowRepo.Create(ctx, escrow); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "escrow_initiated",
		EntityType:  "escrow",
		EntityID:    &escrow.ID,
		Meta:        map[string]any{"job_id": jobID.String(), "amount": amount},
	})

	return escrow, nil
}

func (s *EscrowService) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: escrow", ErrNotFound)
	}
	return escrow, nil
}

// MarkFunded transitions pending -> funded, recording the provider's
// transaction reference. Reached from both the push-payment callback and the
// generic provider webhook.
func (s *EscrowService) MarkFunded(ctx context.Context, escrowID uuid.UUID, externalTxID string, actorType string) error {
	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return fmt.Errorf("%w: escrow", ErrNotFound)
	}
	if escrow.Status == models.EscrowStatusFunded {
		// Duplicate confirmation, nothing to do.
		return nil
	}
	if !models.IsValidEscrowTransition(escrow.Status, models.EscrowStatusFunded) {
		return fmt.Errorf("%w: escrow is %s, cannot fund", ErrInvalidState, escrow.Status)
	}

	ok, err := s.escrowRepo.MarkFunded(ctx, escrowID, externalTxID, escrow.Version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: escrow changed concurrently", ErrConflict)
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorType:  actorType,
		Action:     "escrow_funded",
		EntityType: "escrow",
		EntityID:   &escrowID,
		Meta:       map[string]any{"external_tx_id": externalTxID},
	})
	_ = s.publisher.Publish(ctx, events.StreamEscrows, events.Event{
		Type: events.EventEscrowFunded,
		Payload: map[string]any{
			"escrow_id":      escrowID.String(),
			"external_tx_id": externalTxID,
		},
	})
	return nil
}

// ProviderWebhook handles the generic escrow funding webhook:
// {escrowId, externalTxId, status}. Only a success status funds the escrow;
// anything else is logged and dropped.
func (s *EscrowService) ProviderWebhook(ctx context.Context, escrowID uuid.UUID, externalTxID, status string) error {
	switch status {
	case "success", "funded", "paid":
		return s.MarkFunded(ctx, escrowID, externalTxID, "system")
	default:
		s.log.Warn("escrow webhook with non-success status ignored",
			zap.String("escrow_id", escrowID.String()),
			zap.String("status", status),
		)
		return nil
	}
}

type ReleaseResult struct {
	Escrow       *models.Escrow
	PlatformFee  float64
	WorkerAmount float64
}

// Release moves a funded escrow to released, completes the job and credits
// the worker's wallet with the amount minus the platform fee. All three
// writes commit in one transaction; the version check rejects a concurrent
// second release.
func (s *EscrowService) Release(ctx context.Context, escrowID, actorID uuid.UUID, actorRole string) (*ReleaseResult, error) {
	escrow, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		return nil, fmt.Errorf("%w: escrow", ErrNotFound)
	}
	if escrow.Status != models.EscrowStatusFunded {
		return nil, fmt.Errorf("%w: escrow is %s, only funded escrows can be released", ErrInvalidState, escrow.Status)
	}

	job, err := s.jobRepo.GetByID(ctx, escrow.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != actorID && actorRole != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only the employer or an admin can release escrow", ErrForbidden)
	}
	if job.AssignedWorkerID == nil {
		return nil, fmt.Errorf("%w: job has no assigned worker", ErrInvalidState)
	}
	workerID := *job.AssignedWorkerID

	platformFee, workerAmount := models.ComputeRelease(escrow.Amount, escrow.PlatformFeePercent)

	wallet, err := s.walletRepo.GetOrCreate(ctx, workerID, escrow.Currency)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ok, err := s.escrowRepo.MarkReleasedTx(ctx, tx, escrowID, escrow.Version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: escrow changed concurrently", ErrConflict)
	}

	if err := s.jobRepo.UpdateStatusTx(ctx, tx, job.ID, models.JobStatusCompleted); err != nil {
		return nil, err
	}

	if err := s.walletRepo.CreditTx(ctx, tx, wallet.ID, workerAmount, "escrow_release", nil, &escrowID); err != nil {
		return nil, err
	}

	release := &models.Payment{
		UserID:        workerID,
		JobID:         &job.ID,
		EscrowID:      &escrowID,
		Amount:        workerAmount,
		Currency:      escrow.Currency,
		Type:          models.PaymentTypeRelease,
		GatewayStatus: models.GatewayStatusPaid,
		ReviewStatus:  models.ReviewStatusNone,
		Meta:          map[string]any{"platform_fee": platformFee, "fee_percent": escrow.PlatformFeePercent},
	}
	if err := s.paymentRepo.CreateTx(ctx, tx, release); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &actorID,
		ActorType:   "user",
		Action:      "escrow_released",
		EntityType:  "escrow",
		EntityID:    &escrowID,
		Meta: map[string]any{
			"platform_fee":  platformFee,
			"worker_amount": workerAmount,
			"worker_id":     workerID.String(),
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamEscrows, events.Event{
		Type: events.EventEscrowReleased,
		Payload: map[string]any{
			"escrow_id":     escrowID.String(),
			"job_id":        job.ID.String(),
			"worker_id":     workerID.String(),
			"platform_fee":  platformFee,
			"worker_amount": workerAmount,
		},
	})

	released, err := s.escrowRepo.GetByID(ctx, escrowID)
	if err != nil {
		released = escrow
	}
	return &ReleaseResult{Escrow: released, PlatformFee: platformFee, WorkerAmount: workerAmount}, nil
}
