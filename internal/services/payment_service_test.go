package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/onlineworkerske/backend/internal/config"
	"github.com/onlineworkerske/backend/internal/models"
	"github.com/onlineworkerske/backend/internal/repositories"
	"go.uber.org/zap"
)

type fakePaymentStore struct {
	byCheckout map[string]*models.Payment
	byMerchant map[string]*models.Payment
	created    []*models.Payment
	applied    int
}

func (f *fakePaymentStore) Create(_ context.Context, p *models.Payment) error {
	p.ID = uuid.New()
	f.created = append(f.created, p)
	return nil
}

func (f *fakePaymentStore) CreateTx(_ context.Context, _ pgx.Tx, p *models.Payment) error {
	p.ID = uuid.New()
	f.created = append(f.created, p)
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Payment, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakePaymentStore) GetByCheckoutRequestID(_ context.Context, id string) (*models.Payment, error) {
	if p, ok := f.byCheckout[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePaymentStore) GetByMerchantRequestID(_ context.Context, id string) (*models.Payment, error) {
	if p, ok := f.byMerchant[id]; ok {
		return p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePaymentStore) ApplyCallback(_ context.Context, _ *models.Payment, _ string, _, _ *string, _ *float64, _ any, _ int) (bool, error) {
	f.applied++
	return true, nil
}

func (f *fakePaymentStore) UpdateReviewStatusTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _, _ string) (bool, error) {
	return false, errors.New("unexpected UpdateReviewStatusTx")
}

func (f *fakePaymentStore) MarkGatewayStatusTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _, _ string) (bool, error) {
	return false, errors.New("unexpected MarkGatewayStatusTx")
}

func (f *fakePaymentStore) List(_ context.Context, _ repositories.PaymentFilter) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePaymentStore) SumHistoryForUser(_ context.Context, _ uuid.UUID) (float64, error) {
	return 0, nil
}

type fakeUserStore struct {
	user *models.User
}

func (f *fakeUserStore) GetByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	if f.user == nil {
		return nil, pgx.ErrNoRows
	}
	return f.user, nil
}

type fakeWalletStore struct {
	wallet    *models.Wallet
	lockCalls int
}

func (f *fakeWalletStore) GetOrCreate(_ context.Context, _ uuid.UUID, _ string) (*models.Wallet, error) {
	return f.wallet, nil
}

func (f *fakeWalletStore) GetByUserID(_ context.Context, _ uuid.UUID) (*models.Wallet, error) {
	if f.wallet == nil {
		return nil, pgx.ErrNoRows
	}
	return f.wallet, nil
}

func (f *fakeWalletStore) CreditTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ float64, _ string, _, _ *uuid.UUID) error {
	return errors.New("unexpected CreditTx")
}

func (f *fakeWalletStore) LockForPayout(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ float64, _ int) (bool, error) {
	f.lockCalls++
	return true, nil
}

func (f *fakeWalletStore) SettleLockTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ float64, _ *uuid.UUID) error {
	return errors.New("unexpected SettleLockTx")
}

func (f *fakeWalletStore) ReleaseLockTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ float64) error {
	return errors.New("unexpected ReleaseLockTx")
}

type fakeWebhookStore struct {
	logs []models.WebhookLog
}

func (f *fakeWebhookStore) Create(_ context.Context, l *models.WebhookLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

func newTestPaymentService(payments *fakePaymentStore, users *fakeUserStore, wallets *fakeWalletStore, webhooks *fakeWebhookStore) *PaymentService {
	cfg := &config.Config{Currency: "KES"}
	return NewPaymentService(nil, payments, nil, nil, users, wallets, webhooks, nil, nil, nil, nil, cfg, zap.NewNop())
}

func TestHandleSTKCallbackUnmatchedDeadLetters(t *testing.T) {
	payments := &fakePaymentStore{}
	webhooks := &fakeWebhookStore{}
	svc := newTestPaymentService(payments, &fakeUserStore{}, &fakeWalletStore{}, webhooks)

	raw := []byte(`{"Body":{"stkCallback":{
		"MerchantRequestID":"29115-34620561-1",
		"CheckoutRequestID":"ws_CO_271120251045000000",
		"ResultCode":0,
		"ResultDesc":"The service request is processed successfully.",
		"CallbackMetadata":{"Item":[
			{"Name":"Amount","Value":1000.0},
			{"Name":"MpesaReceiptNumber","Value":"NLJ7RT61SV"}
		]}}}}`)

	if err := svc.HandleSTKCallback(context.Background(), raw); err != nil {
		t.Fatalf("HandleSTKCallback: %v", err)
	}

	if len(webhooks.logs) != 1 {
		t.Fatalf("webhook logs: got %d, want 1", len(webhooks.logs))
	}
	l := webhooks.logs[0]
	if l.Source != "mpesa_stk" {
		t.Errorf("source: got %q, want %q", l.Source, "mpesa_stk")
	}
	if l.CheckoutRequestID == nil || *l.CheckoutRequestID != "ws_CO_271120251045000000" {
		t.Errorf("checkout request id not captured on the dead letter: %v", l.CheckoutRequestID)
	}
	if payments.applied != 0 {
		t.Errorf("payments were updated for an unmatched callback: %d ApplyCallback calls", payments.applied)
	}
	if len(payments.created) != 0 {
		t.Errorf("payments were created for an unmatched callback: %d", len(payments.created))
	}
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	payments := &fakePaymentStore{}
	wallets := &fakeWalletStore{wallet: &models.Wallet{
		ID:            uuid.New(),
		Currency:      "KES",
		Balance:       300,
		LockedBalance: 100,
	}}
	users := &fakeUserStore{user: &models.User{ID: uuid.New(), Role: models.RoleWorker, Verified: true}}
	svc := newTestPaymentService(payments, users, wallets, &fakeWebhookStore{})

	_, err := svc.RequestPayout(context.Background(), users.user.ID, 500, "mpesa", nil)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if wallets.lockCalls != 0 {
		t.Errorf("wallet was locked despite insufficient balance: %d calls", wallets.lockCalls)
	}
	if len(payments.created) != 0 {
		t.Errorf("payment record created despite insufficient balance: %d", len(payments.created))
	}
}

func TestRequestPayoutUnverifiedUser(t *testing.T) {
	payments := &fakePaymentStore{}
	wallets := &fakeWalletStore{wallet: &models.Wallet{ID: uuid.New(), Currency: "KES", Balance: 1000}}
	users := &fakeUserStore{user: &models.User{ID: uuid.New(), Role: models.RoleWorker, Verified: false}}
	svc := newTestPaymentService(payments, users, wallets, &fakeWebhookStore{})

	_, err := svc.RequestPayout(context.Background(), users.user.ID, 100, "mpesa", nil)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(payments.created) != 0 {
		t.Errorf("payment record created for unverified user: %d", len(payments.created))
	}
}
