package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/events"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type VerificationService struct {
	pool             *pgxpool.Pool
	verificationRepo *repositories.VerificationRepo
	userRepo         *repositories.UserRepo
	auditRepo        *repositories.AuditRepo
	publisher        events.Publisher
	log              *zap.Logger
}

func NewVerificationService(
	pool *pgxpool.Pool,
	verificationRepo *repositories.VerificationRepo,
	userRepo *repositories.UserRepo,
	auditRepo *repositories.AuditRepo,
	publisher events.Publisher,
	log *zap.Logger,
) *VerificationService {
	return &VerificationService{
		pool:             pool,
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		auditRepo:        auditRepo,
		publisher:        publisher,
		log:              log,
	}
}

func (s *VerificationService) Submit(ctx context.Context, userID uuid.UUID, documentType, documentURL string) (*models.VerificationRequest, error) {
	if documentType != "national_id" && documentType != "passport" {
		return nil, fmt.Errorf("%w: document_type must be national_id or passport", ErrValidation)
	}
	if documentURL == "" {
		return nil, fmt.Errorf("%w: document_url is required", ErrValidation)
	}
	if existing, err := s.verificationRepo.GetPendingByUserID(ctx, userID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: a verification request is already pending", ErrConflict)
	}

	req := &models.VerificationRequest{
		UserID:       userID,
		DocumentType: documentType,
		DocumentURL:  documentURL,
		Status:       models.VerificationStatusPending,
	}
	if err := s.verificationRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "verification_submitted",
		EntityType:  "verification_request",
		EntityID:    &req.ID,
		Meta:        map[string]any{"document_type": documentType},
	})

	return req, nil
}

func (s *VerificationService) ListPending(ctx context.Context, limit, offset int) ([]models.VerificationRequest, error) {
	return s.verificationRepo.ListByStatus(ctx, models.VerificationStatusPending, limit, offset)
}

// Review records the admin decision and flips the user's verified flag in
// the same transaction: true on approval, false on rejection.
func (s *VerificationService) Review(ctx context.Context, adminID, requestID uuid.UUID, approve bool, note *string) (*models.VerificationRequest, error) {
	req, err := s.verificationRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%w: verification request", ErrNotFound)
	}

	newStatus := models.VerificationStatusRejected
	if approve {
		newStatus = models.VerificationStatusApproved
	}
	if !models.IsValidVerificationTransition(req.Status, newStatus) {
		return nil, fmt.Errorf("%w: request is %s, not pending", ErrInvalidState, req.Status)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ok, err := s.verificationRepo.ReviewTx(ctx, tx, requestID, newStatus, adminID, note)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: request reviewed concurrently", ErrConflict)
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET verified = $1, updated_at = now() WHERE id = $2`, approve, req.UserID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &adminID,
		ActorType:   "admin",
		Action:      fmt.Sprintf("verification_%s", newStatus),
		EntityType:  "verification_request",
		EntityID:    &requestID,
		Meta:        map[string]any{"user_id": req.UserID.String()},
	})
	if approve {
		_ = s.publisher.Publish(ctx, events.StreamJobs, events.Event{
			Type:    events.EventUserVerified,
			Payload: map[string]any{"user_id": req.UserID.String()},
		})
	}

	return s.verificationRepo.GetByID(ctx, requestID)
}
