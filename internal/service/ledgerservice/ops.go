package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
	balancerepo "github.com/glowstream/coinledger/internal/repo/balance-repo"
	"github.com/glowstream/coinledger/pkg/hashchain"
)

//go:generate mockgen -source=ops.go -destination=ops_mocks.go -package=ledgerservice

// Guard is the idempotency layer consulted before any side effect.
type Guard interface {
	Begin(ctx context.Context, key string, expiresAt *time.Time) (bool, string, error)
	Complete(ctx context.Context, key, resultRef string) error
	Release(ctx context.Context, key string) error
}

// Scorer computes a fraud assessment for an operation. Implementations fail
// open: Score always returns a usable assessment.
type Scorer interface {
	Score(ctx context.Context, in domain.FraudInput) domain.FraudAssessment
	Record(ctx context.Context, in domain.FraudInput, assessment domain.FraudAssessment)
}

// CallMeta carries the caller-supplied request context for consumer API
// operations.
type CallMeta struct {
	IdempotencyKey    string
	IP                string
	DeviceFingerprint string
	DeclaredCountry   string
	IPCountry         string
	FromBonus         bool
}

// Ops is the consumer-facing surface: idempotency guard, then fraud scoring,
// then the ledger store. Wallet, gift, game and subscription subsystems call
// through here.
type Ops struct {
	ledger *Service
	guard  Guard
	scorer Scorer
}

func NewOps(ledger *Service, guard Guard, scorer Scorer) *Ops {
	return &Ops{
		ledger: ledger,
		guard:  guard,
		scorer: scorer,
	}
}

// Credit appends a crediting entry for the user. A non-empty
// CallMeta.IdempotencyKey makes the call replay-safe: duplicates return the
// originally produced entry.
func (o *Ops) Credit(ctx context.Context, userID int64, typ domain.EntryType, amount int64, entryCtx domain.EntryContext, meta CallMeta) (*domain.LedgerEntry, error) {
	if !typ.IsCredit() {
		return nil, fmt.Errorf("%w: %s is not a credit type", ErrValidation, typ)
	}
	return o.run(ctx, userID, typ, amount, entryCtx, meta)
}

// Debit appends a debiting entry for the user, failing with
// ErrInsufficientBalance rather than producing partial state.
func (o *Ops) Debit(ctx context.Context, userID int64, typ domain.EntryType, amount int64, entryCtx domain.EntryContext, meta CallMeta) (*domain.LedgerEntry, error) {
	if typ.IsCredit() {
		return nil, fmt.Errorf("%w: %s is not a debit type", ErrValidation, typ)
	}
	return o.run(ctx, userID, typ, amount, entryCtx, meta)
}

func (o *Ops) run(ctx context.Context, userID int64, typ domain.EntryType, amount int64, entryCtx domain.EntryContext, meta CallMeta) (*domain.LedgerEntry, error) {
	var guarded bool
	if meta.IdempotencyKey != "" {
		isNew, existingRef, err := o.guard.Begin(ctx, meta.IdempotencyKey, nil)
		if err != nil {
			return nil, err
		}
		if !isNew {
			return o.priorResult(ctx, meta.IdempotencyKey, existingRef)
		}
		guarded = true
	}

	in := domain.FraudInput{
		UserID:            userID,
		IP:                meta.IP,
		DeviceFingerprint: meta.DeviceFingerprint,
		DeclaredCountry:   meta.DeclaredCountry,
		IPCountry:         meta.IPCountry,
		Amount:            amount,
		Type:              typ,
	}
	assessment := o.scorer.Score(ctx, in)

	src, dst, err := domain.DefaultFlow(typ)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if meta.FromBonus {
		src = domain.SourceBonus
	}

	draft := Draft{
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Source:      src,
		Destination: dst,
		Context:     entryCtx,
		Fraud:       &assessment,
	}
	if guarded {
		key := meta.IdempotencyKey
		draft.IdempotencyKey = &key
	}

	entry, err := o.ledger.AppendEntry(ctx, draft)
	if err != nil {
		if guarded {
			if relErr := o.guard.Release(ctx, meta.IdempotencyKey); relErr != nil {
				zap.L().Error("can't release idempotency key", zap.String("key", meta.IdempotencyKey), zap.Error(relErr))
			}
		}
		return nil, err
	}

	if guarded {
		if err := o.guard.Complete(ctx, meta.IdempotencyKey, entry.ID); err != nil {
			zap.L().Error("can't complete idempotency key", zap.String("key", meta.IdempotencyKey), zap.Error(err))
		}
	}
	o.scorer.Record(ctx, in, assessment)
	return entry, nil
}

// priorResult resolves a duplicate operation to its original entry. A still
// empty result reference means the first attempt is in flight; the caller
// must not duplicate but has no final result yet.
func (o *Ops) priorResult(ctx context.Context, key, ref string) (*domain.LedgerEntry, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: %s", ErrOperationInFlight, key)
	}
	entry, err := o.ledger.ledgerRepo.FindByID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// DailyClaimKey derives the idempotency key for a user's bonus claim on the
// calendar day of t (UTC).
func DailyClaimKey(userID int64, t time.Time) string {
	return fmt.Sprintf("claim:%d:%s", userID, t.UTC().Format("2006-01-02"))
}

// NextDayBoundary returns the start of the next UTC calendar day after t.
func NextDayBoundary(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

// ClaimDailyBonus credits the user's bonus balance once per UTC calendar
// day. A repeated same-day claim returns the original entry with
// claimed=false and no second credit.
func (o *Ops) ClaimDailyBonus(ctx context.Context, userID int64, amount int64, meta CallMeta) (*domain.LedgerEntry, bool, error) {
	now := o.ledger.now().UTC()
	key := DailyClaimKey(userID, now)
	expiry := NextDayBoundary(now)

	isNew, existingRef, err := o.guard.Begin(ctx, key, &expiry)
	if err != nil {
		return nil, false, err
	}
	if !isNew {
		entry, err := o.priorResult(ctx, key, existingRef)
		return entry, false, err
	}

	in := domain.FraudInput{
		UserID:            userID,
		IP:                meta.IP,
		DeviceFingerprint: meta.DeviceFingerprint,
		DeclaredCountry:   meta.DeclaredCountry,
		IPCountry:         meta.IPCountry,
		Amount:            amount,
		Type:              domain.TypeBonusClaim,
	}
	assessment := o.scorer.Score(ctx, in)

	draft := Draft{
		UserID:         userID,
		Type:           domain.TypeBonusClaim,
		Amount:         amount,
		Source:         domain.SourceSystem,
		Destination:    domain.DestBonus,
		Context:        &domain.BonusContext{Day: now.Format("2006-01-02")},
		IdempotencyKey: &key,
		Fraud:          &assessment,
	}
	entry, err := o.ledger.AppendEntry(ctx, draft)
	if err != nil {
		if relErr := o.guard.Release(ctx, key); relErr != nil {
			zap.L().Error("can't release daily claim key", zap.String("key", key), zap.Error(relErr))
		}
		return nil, false, err
	}
	if err := o.guard.Complete(ctx, key, entry.ID); err != nil {
		zap.L().Error("can't complete daily claim key", zap.String("key", key), zap.Error(err))
	}
	o.scorer.Record(ctx, in, assessment)
	return entry, true, nil
}

// ReverseByExternalPayment compensates a completed purchase after the
// processor reports a refund. The reversal debits min(original amount,
// current balance): if earlier spending already consumed part of the credit
// the balance is clamped at zero, the entry is flagged with the recorded
// shortfall and the case is queued for manual review. The balance is never
// driven negative and the case is never dropped.
func (s *Service) ReverseByExternalPayment(ctx context.Context, externalPaymentID string) (*domain.LedgerEntry, error) {
	original, err := s.ledgerRepo.FindByExternalPaymentID(ctx, externalPaymentID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("%w: no completed purchase for payment %s", ErrEntryNotFound, externalPaymentID)
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		entry, err := s.reverseOnce(ctx, original)
		if errors.Is(err, balancerepo.ErrStaleVersion) {
			backoff := time.Duration(attempt) * retryBackoff
			jitter := time.Duration(rand.Int63n(int64(retryBackoff)))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff + jitter):
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return entry, nil
	}
	return nil, ErrConcurrentModification
}

func (s *Service) reverseOnce(ctx context.Context, original *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		acc, err := s.balanceRepo.Get(ctx, original.UserID)
		if err != nil {
			return err
		}
		if acc == nil {
			acc, err = s.balanceRepo.Create(ctx, original.UserID)
			if err != nil {
				return err
			}
		}

		refund := original.Amount
		if acc.Balance < refund {
			refund = acc.Balance
		}
		shortfall := original.Amount - refund

		status := domain.StatusCompleted
		if shortfall > 0 {
			status = domain.StatusFlagged
		}

		prevHash, err := s.ledgerRepo.LastChainedHash(ctx, original.UserID)
		if err != nil {
			return err
		}

		// TIMESTAMPTZ keeps microseconds; hash what the database will
		// return, or verification fails on read-back.
		now := s.now().UTC().Truncate(time.Microsecond)
		entry = &domain.LedgerEntry{
			ID:            uuid.NewString(),
			UserID:        original.UserID,
			Type:          domain.TypeRefund,
			Amount:        refund,
			BalanceBefore: acc.Balance,
			BalanceAfter:  acc.Balance - refund,
			Source:        domain.SourceWallet,
			Destination:   domain.DestExternal,
			Context: &domain.RefundContext{
				OriginalEntryID: original.ID,
				Shortfall:       shortfall,
			},
			Status:            status,
			RiskLevel:         domain.RiskLow,
			ExternalPaymentID: original.ExternalPaymentID,
			PreviousHash:      prevHash,
			CreatedAt:         now,
			ProcessedAt:       &now,
		}
		entry.Hash = hashchain.Compute(entry.ID, entry.UserID, string(entry.Type), entry.Amount, entry.CreatedAt, entry.PreviousHash)

		// A zero refund still runs the CAS: the version bump serializes
		// same-user appends so the chain linkage cannot fork.
		delta := balancerepo.Delta{Balance: -refund, TotalSpent: refund}
		if _, err := s.balanceRepo.ApplyDelta(ctx, original.UserID, delta, acc.Version); err != nil {
			return err
		}
		return s.ledgerRepo.Insert(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	if entry.Status == domain.StatusFlagged && s.review != nil {
		rc := entry.Context.(*domain.RefundContext)
		s.review.Notify(ctx, entry, fmt.Sprintf("refund shortfall of %d coins", rc.Shortfall))
	}
	return entry, nil
}
