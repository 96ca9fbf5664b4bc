package paymentservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/service/ledgerservice"
)

func NewMock(t *testing.T) (*Service, *MockLedger, *MockGuard, *MockScorer) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedger(ctrl)
	guard := NewMockGuard(ctrl)
	scorer := NewMockScorer(ctrl)

	return New(ledger, guard, scorer), ledger, guard, scorer
}

func purchaseEvent() Event {
	return Event{
		ID:        "evt_1",
		Type:      EventPurchaseCompleted,
		SessionID: "sess_1",
		PaymentID: "pay_1",
		Gateway:   "stripe",
		UserID:    1,
		Coins:     1000,
		IP:        "203.0.113.7",
	}
}

func lowRisk() domain.FraudAssessment {
	return domain.FraudAssessment{FraudScore: 5, RiskLevel: domain.RiskLow}
}

func TestService_Process_PurchaseCompleted(t *testing.T) {
	service, ledger, guard, scorer := NewMock(t)
	entry := &domain.LedgerEntry{ID: "entry-1", UserID: 1, Amount: 1000, Status: domain.StatusCompleted}

	guard.EXPECT().Begin(gomock.Any(), "payment:sess_1", gomock.Nil()).Return(true, "", nil)
	scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(lowRisk())
	ledger.EXPECT().AppendEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, draft ledgerservice.Draft) (*domain.LedgerEntry, error) {
		assert.Equal(t, domain.TypePurchase, draft.Type)
		assert.Equal(t, int64(1000), draft.Amount)
		require.NotNil(t, draft.ExternalPaymentID)
		assert.Equal(t, "pay_1", *draft.ExternalPaymentID)
		require.NotNil(t, draft.IdempotencyKey)
		assert.Equal(t, "payment:sess_1", *draft.IdempotencyKey)
		return entry, nil
	})
	guard.EXPECT().Complete(gomock.Any(), "payment:sess_1", "entry-1").Return(nil)
	scorer.EXPECT().Record(gomock.Any(), gomock.Any(), lowRisk())

	outcome, got, err := service.Process(context.Background(), purchaseEvent())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCredited, outcome)
	assert.Equal(t, entry, got)
}

func TestService_Process_PurchaseReplayProducesOneCredit(t *testing.T) {
	service, _, guard, _ := NewMock(t)

	guard.EXPECT().Begin(gomock.Any(), "payment:sess_1", gomock.Nil()).Return(false, "entry-1", nil)

	outcome, entry, err := service.Process(context.Background(), purchaseEvent())
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, entry)
}

func TestService_Process_PurchaseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Event)
	}{
		{name: "Missing user", mutate: func(e *Event) { e.UserID = 0 }},
		{name: "Missing session", mutate: func(e *Event) { e.SessionID = "" }},
		{name: "Non-positive coins", mutate: func(e *Event) { e.Coins = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, _ := NewMock(t)
			event := purchaseEvent()
			tt.mutate(&event)

			outcome, entry, err := service.Process(context.Background(), event)
			assert.ErrorIs(t, err, ErrMalformedEvent)
			assert.Equal(t, OutcomeRejected, outcome)
			assert.Nil(t, entry)
		})
	}
}

func TestService_Process_PurchaseLedgerFailureReleasesKey(t *testing.T) {
	service, ledger, guard, scorer := NewMock(t)

	guard.EXPECT().Begin(gomock.Any(), "payment:sess_1", gomock.Nil()).Return(true, "", nil)
	scorer.EXPECT().Score(gomock.Any(), gomock.Any()).Return(lowRisk())
	ledger.EXPECT().AppendEntry(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
	guard.EXPECT().Release(gomock.Any(), "payment:sess_1").Return(nil)

	outcome, entry, err := service.Process(context.Background(), purchaseEvent())
	assert.Error(t, err)
	assert.Empty(t, outcome)
	assert.Nil(t, entry)
}

func TestService_Process_PaymentFailed(t *testing.T) {
	service, ledger, guard, _ := NewMock(t)
	event := Event{
		ID:        "evt_2",
		Type:      EventPaymentFailed,
		UserID:    1,
		PaymentID: "pay_2",
		Gateway:   "stripe",
	}
	entry := &domain.LedgerEntry{ID: "entry-2", Status: domain.StatusFailed}

	guard.EXPECT().Begin(gomock.Any(), "payment_failed:evt_2", gomock.Nil()).Return(true, "", nil)
	ledger.EXPECT().AppendEntry(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, draft ledgerservice.Draft) (*domain.LedgerEntry, error) {
		assert.True(t, draft.Failed)
		assert.Equal(t, int64(0), draft.Amount)
		return entry, nil
	})
	guard.EXPECT().Complete(gomock.Any(), "payment_failed:evt_2", "entry-2").Return(nil)

	outcome, got, err := service.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailedRecorded, outcome)
	assert.Equal(t, entry, got)
}

func TestService_Process_PaymentFailedWithoutUser(t *testing.T) {
	service, _, _, _ := NewMock(t)

	outcome, entry, err := service.Process(context.Background(), Event{ID: "evt_2", Type: EventPaymentFailed})
	assert.ErrorIs(t, err, ErrMalformedEvent)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Nil(t, entry)
}

func TestService_Process_ChargeRefunded(t *testing.T) {
	service, ledger, guard, _ := NewMock(t)
	event := Event{ID: "evt_3", Type: EventChargeRefunded, PaymentID: "pay_1"}
	entry := &domain.LedgerEntry{ID: "entry-3", UserID: 1, Type: domain.TypeRefund, Amount: 1000}

	guard.EXPECT().Begin(gomock.Any(), "refund:pay_1", gomock.Nil()).Return(true, "", nil)
	ledger.EXPECT().ReverseByExternalPayment(gomock.Any(), "pay_1").Return(entry, nil)
	guard.EXPECT().Complete(gomock.Any(), "refund:pay_1", "entry-3").Return(nil)

	outcome, got, err := service.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefunded, outcome)
	assert.Equal(t, entry, got)
}

func TestService_Process_ChargeRefundedReplay(t *testing.T) {
	service, _, guard, _ := NewMock(t)

	guard.EXPECT().Begin(gomock.Any(), "refund:pay_1", gomock.Nil()).Return(false, "entry-3", nil)

	outcome, entry, err := service.Process(context.Background(), Event{ID: "evt_3", Type: EventChargeRefunded, PaymentID: "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, entry)
}

func TestService_Process_ChargeRefundedFailureReleasesKey(t *testing.T) {
	service, ledger, guard, _ := NewMock(t)

	guard.EXPECT().Begin(gomock.Any(), "refund:pay_1", gomock.Nil()).Return(true, "", nil)
	ledger.EXPECT().ReverseByExternalPayment(gomock.Any(), "pay_1").Return(nil, ledgerservice.ErrEntryNotFound)
	guard.EXPECT().Release(gomock.Any(), "refund:pay_1").Return(nil)

	_, _, err := service.Process(context.Background(), Event{ID: "evt_3", Type: EventChargeRefunded, PaymentID: "pay_1"})
	assert.ErrorIs(t, err, ledgerservice.ErrEntryNotFound)
}

func TestService_Process_UnknownEventType(t *testing.T) {
	service, _, _, _ := NewMock(t)

	outcome, entry, err := service.Process(context.Background(), Event{ID: "evt_9", Type: "invoice.created"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, outcome)
	assert.Nil(t, entry)
}
