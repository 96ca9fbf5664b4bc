package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/service/ledgerservice"
)

//go:generate mockgen -source=paymentservice.go -destination=mocks.go -package=paymentservice

const (
	EventPurchaseCompleted = "checkout.completed"
	EventPaymentFailed     = "payment.failed"
	EventChargeRefunded    = "charge.refunded"
)

// Outcome is the terminal state of one inbound event. Signature rejection
// happens at the HTTP boundary and never reaches this service.
type Outcome string

const (
	OutcomeRejected       Outcome = "rejected"
	OutcomeSkipped        Outcome = "skipped"
	OutcomeCredited       Outcome = "credited"
	OutcomeFailedRecorded Outcome = "failed_recorded"
	OutcomeRefunded       Outcome = "refunded"
)

// ErrMalformedEvent marks a permanent rejection: there is no valid target to
// credit, so the event is logged and acknowledged without a ledger entry.
var ErrMalformedEvent = errors.New("malformed payment event")

// Event is a verified payment-processor event after envelope decoding.
type Event struct {
	ID        string
	Type      string
	SessionID string
	PaymentID string
	Gateway   string
	UserID    int64
	Coins     int64

	IP                string
	DeviceFingerprint string
	DeclaredCountry   string
	IPCountry         string
}

type Ledger interface {
	AppendEntry(ctx context.Context, draft ledgerservice.Draft) (*domain.LedgerEntry, error)
	ReverseByExternalPayment(ctx context.Context, externalPaymentID string) (*domain.LedgerEntry, error)
}

type Guard interface {
	Begin(ctx context.Context, key string, expiresAt *time.Time) (bool, string, error)
	Complete(ctx context.Context, key, resultRef string) error
	Release(ctx context.Context, key string) error
}

type Scorer interface {
	Score(ctx context.Context, in domain.FraudInput) domain.FraudAssessment
	Record(ctx context.Context, in domain.FraudInput, assessment domain.FraudAssessment)
}

// Service ingests verified payment events and drives the ledger: credit on
// completed checkout, audit record on failure, reversal on refund. Every
// event passes the idempotency guard before any side effect, so at-least-once
// delivery still produces exactly one economic effect.
type Service struct {
	ledger Ledger
	guard  Guard
	scorer Scorer
}

func New(ledger Ledger, guard Guard, scorer Scorer) *Service {
	return &Service{
		ledger: ledger,
		guard:  guard,
		scorer: scorer,
	}
}

// Process routes one verified event. The returned entry is nil for skipped
// and rejected outcomes.
func (s *Service) Process(ctx context.Context, event Event) (Outcome, *domain.LedgerEntry, error) {
	switch event.Type {
	case EventPurchaseCompleted:
		return s.handlePurchaseCompleted(ctx, event)
	case EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	case EventChargeRefunded:
		return s.handleChargeRefunded(ctx, event)
	}
	zap.L().Warn("unknown payment event type, acknowledging",
		zap.String("eventID", event.ID),
		zap.String("type", event.Type),
	)
	return OutcomeSkipped, nil, nil
}

func (s *Service) handlePurchaseCompleted(ctx context.Context, event Event) (Outcome, *domain.LedgerEntry, error) {
	if event.UserID == 0 || event.SessionID == "" || event.Coins <= 0 {
		zap.L().Error("purchase event with malformed metadata, permanently rejected",
			zap.String("eventID", event.ID),
			zap.Int64("userID", event.UserID),
			zap.String("sessionID", event.SessionID),
		)
		return OutcomeRejected, nil, ErrMalformedEvent
	}

	key := "payment:" + event.SessionID
	isNew, _, err := s.guard.Begin(ctx, key, nil)
	if err != nil {
		return "", nil, err
	}
	if !isNew {
		zap.L().Info("duplicate purchase event skipped",
			zap.String("eventID", event.ID),
			zap.String("sessionID", event.SessionID),
		)
		return OutcomeSkipped, nil, nil
	}

	in := domain.FraudInput{
		UserID:            event.UserID,
		IP:                event.IP,
		DeviceFingerprint: event.DeviceFingerprint,
		DeclaredCountry:   event.DeclaredCountry,
		IPCountry:         event.IPCountry,
		Amount:            event.Coins,
		Type:              domain.TypePurchase,
	}
	assessment := s.scorer.Score(ctx, in)

	paymentID := event.PaymentID
	draft := ledgerservice.Draft{
		UserID:      event.UserID,
		Type:        domain.TypePurchase,
		Amount:      event.Coins,
		Source:      domain.SourcePurchase,
		Destination: domain.DestWallet,
		Context: &domain.PurchaseContext{
			PaymentID:      event.PaymentID,
			PaymentGateway: event.Gateway,
		},
		IdempotencyKey:    &key,
		ExternalPaymentID: &paymentID,
		Fraud:             &assessment,
	}

	entry, err := s.ledger.AppendEntry(ctx, draft)
	if err != nil {
		if relErr := s.guard.Release(ctx, key); relErr != nil {
			zap.L().Error("can't release payment key", zap.String("key", key), zap.Error(relErr))
		}
		return "", nil, fmt.Errorf("can't credit purchase %s: %w", event.SessionID, err)
	}
	if err := s.guard.Complete(ctx, key, entry.ID); err != nil {
		zap.L().Error("can't complete payment key", zap.String("key", key), zap.Error(err))
	}
	s.scorer.Record(ctx, in, assessment)

	zap.L().Info("purchase credited",
		zap.Int64("userID", event.UserID),
		zap.Int64("coins", event.Coins),
		zap.String("entryID", entry.ID),
	)
	return OutcomeCredited, entry, nil
}

// handlePaymentFailed writes a zero-amount failed entry for audit
// visibility; the balance is untouched and the entry never joins the chain.
func (s *Service) handlePaymentFailed(ctx context.Context, event Event) (Outcome, *domain.LedgerEntry, error) {
	if event.UserID == 0 {
		zap.L().Error("failed-payment event without user, permanently rejected",
			zap.String("eventID", event.ID),
		)
		return OutcomeRejected, nil, ErrMalformedEvent
	}

	key := "payment_failed:" + event.ID
	isNew, _, err := s.guard.Begin(ctx, key, nil)
	if err != nil {
		return "", nil, err
	}
	if !isNew {
		return OutcomeSkipped, nil, nil
	}

	paymentID := event.PaymentID
	draft := ledgerservice.Draft{
		UserID:      event.UserID,
		Type:        domain.TypePurchase,
		Amount:      0,
		Source:      domain.SourcePurchase,
		Destination: domain.DestWallet,
		Context: &domain.PurchaseContext{
			PaymentID:      event.PaymentID,
			PaymentGateway: event.Gateway,
		},
		IdempotencyKey:    &key,
		ExternalPaymentID: &paymentID,
		Failed:            true,
	}
	entry, err := s.ledger.AppendEntry(ctx, draft)
	if err != nil {
		if relErr := s.guard.Release(ctx, key); relErr != nil {
			zap.L().Error("can't release failed-payment key", zap.String("key", key), zap.Error(relErr))
		}
		return "", nil, err
	}
	if err := s.guard.Complete(ctx, key, entry.ID); err != nil {
		zap.L().Error("can't complete failed-payment key", zap.String("key", key), zap.Error(err))
	}
	return OutcomeFailedRecorded, entry, nil
}

func (s *Service) handleChargeRefunded(ctx context.Context, event Event) (Outcome, *domain.LedgerEntry, error) {
	if event.PaymentID == "" {
		zap.L().Error("refund event without payment id, permanently rejected",
			zap.String("eventID", event.ID),
		)
		return OutcomeRejected, nil, ErrMalformedEvent
	}

	key := "refund:" + event.PaymentID
	isNew, _, err := s.guard.Begin(ctx, key, nil)
	if err != nil {
		return "", nil, err
	}
	if !isNew {
		return OutcomeSkipped, nil, nil
	}

	entry, err := s.ledger.ReverseByExternalPayment(ctx, event.PaymentID)
	if err != nil {
		if relErr := s.guard.Release(ctx, key); relErr != nil {
			zap.L().Error("can't release refund key", zap.String("key", key), zap.Error(relErr))
		}
		return "", nil, err
	}
	if err := s.guard.Complete(ctx, key, entry.ID); err != nil {
		zap.L().Error("can't complete refund key", zap.String("key", key), zap.Error(err))
	}

	zap.L().Info("charge refunded",
		zap.Int64("userID", entry.UserID),
		zap.Int64("reversed", entry.Amount),
		zap.String("status", string(entry.Status)),
	)
	return OutcomeRefunded, entry, nil
}
