package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/events"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/mpesa"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

// Storage seams for the paths that decide before touching the database
// (dead-lettering an unmatched callback, rejecting an oversized payout).
// The concrete repositories satisfy them; tests substitute in-memory fakes.
type paymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*models.Payment, error)
	GetByMerchantRequestID(ctx context.Context, merchantRequestID string) (*models.Payment, error)
	ApplyCallback(ctx context.Context, p *models.Payment, newStatus string, receipt, phone *string, amount *float64, rawPayload any, expectedVersion int) (bool, error)
	UpdateReviewStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error)
	MarkGatewayStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to string) (bool, error)
	List(ctx context.Context, f repositories.PaymentFilter) ([]models.Payment, error)
	SumHistoryForUser(ctx context.Context, userID uuid.UUID) (float64, error)
}

type userStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type walletStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	CreditTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, reason string, paymentID, escrowID *uuid.UUID) error
	LockForPayout(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, expectedVersion int) (bool, error)
	SettleLockTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64, paymentID *uuid.UUID) error
	ReleaseLockTx(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, amount float64) error
}

type webhookStore interface {
	Create(ctx context.Context, l *models.WebhookLog) error
}

type PaymentService struct {
	pool        *pgxpool.Pool
	paymentRepo paymentStore
	escrowRepo  *repositories.EscrowRepo
	jobRepo     *repositories.JobRepo
	userRepo    userStore
	walletRepo  walletStore
	webhookRepo webhookStore
	auditRepo   *repositories.AuditRepo
	escrowSvc   *EscrowService
	gateway     *mpesa.Client
	publisher   events.Publisher
	cfg         *config.Config
	log         *zap.Logger
}

func NewPaymentService(
	pool *pgxpool.Pool,
	paymentRepo paymentStore,
	escrowRepo *repositories.EscrowRepo,
	jobRepo *repositories.JobRepo,
	userRepo userStore,
	walletRepo walletStore,
	webhookRepo webhookStore,
	auditRepo *repositories.AuditRepo,
	escrowSvc *EscrowService,
	gateway *mpesa.Client,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		pool:        pool,
		paymentRepo: paymentRepo,
		escrowRepo:  escrowRepo,
		jobRepo:     jobRepo,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		webhookRepo: webhookRepo,
		auditRepo:   auditRepo,
		escrowSvc:   escrowSvc,
		gateway:     gateway,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
	}
}

// Topup prompts the user's phone for payment and records a pending payment
// carrying the provider's correlation ids. Confirmation arrives via callback.
func (s *PaymentService) Topup(ctx context.Context, userID uuid.UUID, amount float64, phone string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phoneNumber is required", ErrValidation)
	}

	resp, err := s.gateway.InitiateSTKPush(ctx, phone, amount, "wallet-topup", "OnlineWorkersKE wallet top-up")
	if err != nil {
		return nil, err
	}

	normalized := mpesa.NormalizePhone(phone)
	payment := &models.Payment{
		UserID:            userID,
		Amount:            amount,
		Currency:          s.cfg.Currency,
		Type:              models.PaymentTypeTopup,
		GatewayStatus:     models.GatewayStatusPending,
		ReviewStatus:      models.ReviewStatusNone,
		CheckoutRequestID: &resp.CheckoutRequestID,
		MerchantRequestID: &resp.MerchantRequestID,
		PhoneNumber:       &normalized,
		ProviderData:      resp,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   "user",
		Action:      "topup_initiated",
		EntityType:  "payment",
		EntityID:    &payment.ID,
		Meta:        map[string]any{"amount": amount},
	})

	return payment, nil
}

type PayJobResult struct {
	Payment *models.Payment
	Escrow  *models.Escrow
	STK     *mpesa.STKPushResponse
}

// PayForJob funds a job through the push-payment flow. The escrow and the
// pending payment are created in one transaction after the provider accepts
// the push, so a confirmed callback can never arrive for a half-written pair.
func (s *PaymentService) PayForJob(ctx context.Context, payerID, jobID uuid.UUID, phone string, amount float64) (*PayJobResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phoneNumber is required", ErrValidation)
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusCancelled {
		return nil, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}
	if existing, err := s.escrowRepo.GetActiveByJobID(ctx, jobID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: job already has an active escrow", ErrConflict)
	}

	reference := fmt.Sprintf("job-%s", jobID.String()[:8])
	resp, err := s.gateway.InitiateSTKPush(ctx, phone, amount, reference, "OnlineWorkersKE job payment")
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow := &models.Escrow{
		JobID:              jobID,
		EmployerID:         job.EmployerID,
		Amount:             amount,
		Currency:           s.cfg.Currency,
		PlatformFeePercent: s.cfg.PlatformFeePercent,
		Status:             models.EscrowStatusPending,
	}
	if err := s.escrowRepo.CreateTx(ctx, tx, escrow); err != nil {
		return nil, err
	}

	normalized := mpesa.NormalizePhone(phone)
	payment := &models.Payment{
		UserID:            payerID,
		JobID:             &jobID,
		EscrowID:          &escrow.ID,
		Amount:            amount,
		Currency:          s.cfg.Currency,
		Type:              models.PaymentTypeEscrow,
		GatewayStatus:     models.GatewayStatusPending,
		ReviewStatus:      models.ReviewStatusNone,
		CheckoutRequestID: &resp.CheckoutRequestID,
		MerchantRequestID: &resp.MerchantRequestID,
		PhoneNumber:       &normalized,
		ProviderData:      resp,
	}
	if err := s.paymentRepo.CreateTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &payerID,
		ActorType:   "user",
		Action:      "job_payment_initiated",
		EntityType:  "payment",
		EntityID:    &payment.ID,
		Meta:        map[string]any{"job_id": jobID.String(), "escrow_id": escrow.ID.String(), "amount": amount},
	})

	return &PayJobResult{Payment: payment, Escrow: escrow, STK: resp}, nil
}

// VerifyJobFee charges the employer the listing-verification fee. On
// confirmation the job gains the verified_listing badge.
func (s *PaymentService) VerifyJobFee(ctx context.Context, employerID uuid.UUID, actorRole string, jobID uuid.UUID, phone string, amount float64) (*models.Payment, *mpesa.STKPushResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: job", ErrNotFound)
	}
	if job.EmployerID != employerID && actorRole != models.RoleAdmin {
		return nil, nil, fmt.Errorf("%w: only the employer can verify a listing", ErrForbidden)
	}
	if job.VerifiedListing {
		return nil, nil, fmt.Errorf("%w: listing is already verified", ErrInvalidState)
	}
	if amount <= 0 {
		amount = s.cfg.VerificationFeeKES
	}
	if phone == "" {
		return nil, nil, fmt.Errorf("%w: phoneNumber is required", ErrValidation)
	}

	reference := fmt.Sprintf("verify-%s", jobID.String()[:8])
	resp, err := s.gateway.InitiateSTKPush(ctx, phone, amount, reference, "OnlineWorkersKE listing verification")
	if err != nil {
		return nil, nil, err
	}

	normalized := mpesa.NormalizePhone(phone)
	payment := &models.Payment{
		UserID:            employerID,
		JobID:             &jobID,
		Amount:            amount,
		Currency:          s.cfg.Currency,
		Type:              models.PaymentTypeJobVerification,
		GatewayStatus:     models.GatewayStatusPending,
		ReviewStatus:      models.ReviewStatusNone,
		CheckoutRequestID: &resp.CheckoutRequestID,
		MerchantRequestID: &resp.MerchantRequestID,
		PhoneNumber:       &normalized,
		ProviderData:      resp,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &employerID,
		ActorType:   "user",
		Action:      "job_verification_initiated",
		EntityType:  "payment",
		EntityID:    &payment.ID,
		Meta:        map[string]any{"job_id": jobID.String(), "amount": amount},
	})

	return payment, resp, nil
}

// HandleSTKCallback processes a provider callback. Errors are internal only;
// the HTTP handler always responds success so the provider does not retry a
// handler that is already failing.
func (s *PaymentService) HandleSTKCallback(ctx context.Context, raw []byte) error {
	cb, err := mpesa.ParseCallback(raw)
	if err != nil {
		s.log.Error("unparseable stk callback", zap.Error(err), zap.ByteString("raw", raw))
		return s.deadLetter(ctx, raw, nil, nil)
	}

	var payment *models.Payment
	if cb.CheckoutRequestID != "" {
		payment, _ = s.paymentRepo.GetByCheckoutRequestID(ctx, cb.CheckoutRequestID)
	}
	if payment == nil && cb.MerchantRequestID != "" {
		payment, _ = s.paymentRepo.GetByMerchantRequestID(ctx, cb.MerchantRequestID)
	}
	if payment == nil {
		s.log.Warn("stk callback matched no payment",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.String("merchant_request_id", cb.MerchantRequestID),
		)
		return s.deadLetter(ctx, raw, strPtr(cb.CheckoutRequestID), strPtr(cb.MerchantRequestID))
	}

	newStatus := models.GatewayStatusFailed
	if cb.IsPaid() {
		newStatus = models.GatewayStatusPaid
	}
	return s.applyGatewayResult(ctx, payment, newStatus, cb.Metadata, raw, cb.ResultDesc)
}

// applyGatewayResult sets the terminal gateway status and runs the
// type-specific side effects on a first confirmation. Re-delivery of the same
// terminal status re-stores the payload without re-running side effects.
func (s *PaymentService) applyGatewayResult(ctx context.Context, payment *models.Payment, newStatus string, metadata map[string]any, raw []byte, resultDesc string) error {
	if !models.IsValidGatewayTransition(payment.GatewayStatus, newStatus) {
		s.log.Warn("gateway result ignored: invalid transition",
			zap.String("payment_id", payment.ID.String()),
			zap.String("from", payment.GatewayStatus),
			zap.String("to", newStatus),
		)
		return nil
	}
	firstTransition := payment.GatewayStatus == models.GatewayStatusPending

	receipt := metaString(metadata, "MpesaReceiptNumber")
	phone := metaString(metadata, "PhoneNumber")
	// The confirmed amount is authoritative and overwrites the requested one.
	var amount *float64
	if v, ok := metadata["Amount"].(float64); ok && v > 0 {
		amount = &v
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = string(raw)
	}

	ok, err := s.paymentRepo.ApplyCallback(ctx, payment, newStatus, receipt, phone, amount, payload, payment.Version)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent writer moved the version. If it applied the same
		// terminal status this delivery is a duplicate; anything else is a
		// real conflict worth logging.
		current, err := s.paymentRepo.GetByID(ctx, payment.ID)
		if err == nil && current.GatewayStatus == newStatus {
			return nil
		}
		s.log.Error("callback lost conditional update race",
			zap.String("payment_id", payment.ID.String()),
			zap.String("wanted", newStatus),
		)
		return fmt.Errorf("%w: payment %s", ErrConflict, payment.ID)
	}

	if !firstTransition {
		return nil
	}

	if newStatus == models.GatewayStatusFailed {
		_ = s.auditRepo.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     "payment_failed",
			EntityType: "payment",
			EntityID:   &payment.ID,
			Meta:       map[string]any{"result_desc": resultDesc},
		})
		_ = s.publisher.Publish(ctx, events.StreamPayments, events.Event{
			Type:    events.EventPaymentFailed,
			Payload: map[string]any{"payment_id": payment.ID.String(), "type": payment.Type},
		})
		return nil
	}

	confirmedAmount := payment.Amount
	if amount != nil {
		confirmedAmount = *amount
	}
	if err := s.onPaymentConfirmed(ctx, payment, confirmedAmount, receipt); err != nil {
		s.log.Error("post-confirmation side effect failed",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err),
		)
		return err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     "payment_confirmed",
		EntityType: "payment",
		EntityID:   &payment.ID,
		Meta:       map[string]any{"amount": confirmedAmount, "type": payment.Type},
	})
	_ = s.publisher.Publish(ctx, events.StreamPayments, events.Event{
		Type: events.EventPaymentReceived,
		Payload: map[string]any{
			"payment_id": payment.ID.String(),
			"user_id":    payment.UserID.String(),
			"type":       payment.Type,
			"amount":     confirmedAmount,
		},
	})
	return nil
}

func (s *PaymentService) onPaymentConfirmed(ctx context.Context, payment *models.Payment, amount float64, receipt *string) error {
	switch payment.Type {
	case models.PaymentTypeTopup:
		wallet, err := s.walletRepo.GetOrCreate(ctx, payment.UserID, payment.Currency)
		if err != nil {
			return err
		}
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)
		if err := s.walletRepo.CreditTx(ctx, tx, wallet.ID, amount, "topup", &payment.ID, nil); err != nil {
			return err
		}
		return tx.Commit(ctx)

	case models.PaymentTypeEscrow:
		if payment.EscrowID == nil {
			return fmt.Errorf("escrow payment %s has no escrow reference", payment.ID)
		}
		externalTxID := payment.ID.String()
		if receipt != nil && *receipt != "" {
			externalTxID = *receipt
		}
		return s.escrowSvc.MarkFunded(ctx, *payment.EscrowID, externalTxID, "system")

	case models.PaymentTypeJobVerification:
		if payment.JobID == nil {
			return fmt.Errorf("verification payment %s has no job reference", payment.ID)
		}
		return s.jobRepo.SetVerifiedListing(ctx, *payment.JobID)
	}
	return nil
}

// QuerySTK proxies a status poll to the provider. The raw provider payload is
// returned to the caller unmodified.
func (s *PaymentService) QuerySTK(ctx context.Context, checkoutRequestID string) (*mpesa.STKQueryResponse, error) {
	return s.gateway.QuerySTKPush(ctx, checkoutRequestID)
}

// RequestPayout locks the requested amount on the worker's wallet and
// records a payout awaiting admin review. The lock and the payment commit
// together; an amount exceeding the available balance locks nothing and
// creates nothing.
func (s *PaymentService) RequestPayout(ctx context.Context, workerID uuid.UUID, amount float64, method string, accountInfo map[string]any) (*models.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	if !user.Verified {
		return nil, fmt.Errorf("%w: account must be verified before requesting payouts", ErrForbidden)
	}

	wallet, err := s.walletRepo.GetOrCreate(ctx, workerID, s.cfg.Currency)
	if err != nil {
		return nil, err
	}
	if wallet.Available() < amount {
		return nil, fmt.Errorf("%w: available %.2f, requested %.2f", ErrInsufficientBalance, wallet.Available(), amount)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ok, err := s.walletRepo.LockForPayout(ctx, tx, wallet.ID, amount, wallet.Version)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: available %.2f, requested %.2f", ErrInsufficientBalance, wallet.Available(), amount)
	}

	payment := &models.Payment{
		UserID:        workerID,
		Amount:        amount,
		Currency:      wallet.Currency,
		Type:          models.PaymentTypePayout,
		GatewayStatus: models.GatewayStatusPending,
		ReviewStatus:  models.ReviewStatusPending,
		Meta:          map[string]any{"method": method, "account_info": accountInfo},
	}
	if err := s.paymentRepo.CreateTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &workerID,
		ActorType:   "user",
		Action:      "payout_requested",
		EntityType:  "payment",
		EntityID:    &payment.ID,
		Meta:        map[string]any{"amount": amount, "method": method},
	})

	return payment, nil
}

// ReviewPayout is the admin decision on a pending payout. Approval settles
// the wallet lock and marks the payout paid; rejection returns the lock to
// available funds and marks it failed. Each path commits in one transaction.
func (s *PaymentService) ReviewPayout(ctx context.Context, adminID, paymentID uuid.UUID, approve bool, note string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment", ErrNotFound)
	}
	if payment.Type != models.PaymentTypePayout {
		return nil, fmt.Errorf("%w: payment is not a payout", ErrInvalidState)
	}
	if payment.ReviewStatus != models.ReviewStatusPending {
		return nil, fmt.Errorf("%w: payout is %s, not pending review", ErrInvalidState, payment.ReviewStatus)
	}

	wallet, err := s.walletRepo.GetByUserID(ctx, payment.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet", ErrNotFound)
	}

	newReview := models.ReviewStatusRejected
	newGateway := models.GatewayStatusFailed
	if approve {
		newReview = models.ReviewStatusApproved
		newGateway = models.GatewayStatusPaid
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ok, err := s.paymentRepo.UpdateReviewStatusTx(ctx, tx, paymentID, models.ReviewStatusPending, newReview)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: payout reviewed concurrently", ErrConflict)
	}
	if _, err := s.paymentRepo.MarkGatewayStatusTx(ctx, tx, paymentID, models.GatewayStatusPending, newGateway); err != nil {
		return nil, err
	}

	if approve {
		if err := s.walletRepo.SettleLockTx(ctx, tx, wallet.ID, payment.Amount, &paymentID); err != nil {
			return nil, err
		}
	} else {
		if err := s.walletRepo.ReleaseLockTx(ctx, tx, wallet.ID, payment.Amount); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &adminID,
		ActorType:   "admin",
		Action:      fmt.Sprintf("payout_%s", newReview),
		EntityType:  "payment",
		EntityID:    &paymentID,
		Meta:        map[string]any{"note": note, "amount": payment.Amount},
	})
	_ = s.publisher.Publish(ctx, events.StreamPayments, events.Event{
		Type: events.EventPayoutReviewed,
		Payload: map[string]any{
			"payment_id": paymentID.String(),
			"user_id":    payment.UserID.String(),
			"decision":   newReview,
			"amount":     payment.Amount,
		},
	})

	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: payment", ErrNotFound)
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, f repositories.PaymentFilter) ([]models.Payment, error) {
	return s.paymentRepo.List(ctx, f)
}

type BalanceResult struct {
	Wallet         *models.Wallet
	HistoryBalance float64
	Reconciled     bool
}

// GetBalance returns the wallet together with the balance recomputed from
// payment history. The wallet is authoritative; the history sum is the
// reconciliation check, and a mismatch is logged rather than corrected here.
func (s *PaymentService) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceResult, error) {
	wallet, err := s.walletRepo.GetOrCreate(ctx, userID, s.cfg.Currency)
	if err != nil {
		return nil, err
	}
	history, err := s.paymentRepo.SumHistoryForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Escrow releases credit the wallet but are not part of the
	// topup-minus-payout history sum, so a mismatch here is expected for
	// workers. The worker binary does the full ledger comparison.
	reconciled := math.Abs(wallet.Balance-history) < 0.01
	return &BalanceResult{Wallet: wallet, HistoryBalance: history, Reconciled: reconciled}, nil
}

func (s *PaymentService) deadLetter(ctx context.Context, raw []byte, checkoutID, merchantID *string) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		payload = string(raw)
	}
	return s.webhookRepo.Create(ctx, &models.WebhookLog{
		Source:            "mpesa_stk",
		CheckoutRequestID: checkoutID,
		MerchantRequestID: merchantID,
		Payload:           payload,
	})
}

func metaString(m map[string]any, key string) *string {
	switch v := m[key].(type) {
	case string:
		if v != "" {
			return &v
		}
	case float64:
		s := fmt.Sprintf("%.0f", v)
		return &s
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
