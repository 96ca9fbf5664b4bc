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
	"github.com/glowstream/coinledger/internal/pg"
	balancerepo "github.com/glowstream/coinledger/internal/repo/balance-repo"
	"github.com/glowstream/coinledger/pkg/hashchain"
)

//go:generate mockgen -source=ledgerservice.go -destination=mocks.go -package=ledgerservice

const (
	maxRetries   = 5
	retryBackoff = 20 * time.Millisecond
)

var (
	ErrValidation             = errors.New("entry validation failed")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrConcurrentModification = errors.New("concurrent balance modification")
	ErrIntegrityViolation     = errors.New("ledger chain integrity violation")
	ErrUserHalted             = errors.New("user is halted pending manual audit")
	ErrEntryNotFound          = errors.New("ledger entry not found")
	ErrOperationInFlight      = errors.New("operation already in progress")
)

type LedgerRepo interface {
	Insert(ctx context.Context, entry *domain.LedgerEntry) error
	LastChainedHash(ctx context.Context, userID int64) (string, error)
	ListChain(ctx context.Context, userID int64) ([]domain.LedgerEntry, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error)
	FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	FindByExternalPaymentID(ctx context.Context, externalPaymentID string) (*domain.LedgerEntry, error)
	MarkFlagged(ctx context.Context, id string) error
	HaltUser(ctx context.Context, userID int64, entryID string) error
	IsUserHalted(ctx context.Context, userID int64) (bool, error)
}

type BalanceRepo interface {
	Get(ctx context.Context, userID int64) (*domain.BalanceAccount, error)
	Create(ctx context.Context, userID int64) (*domain.BalanceAccount, error)
	ApplyDelta(ctx context.Context, userID int64, delta balancerepo.Delta, expectedVersion int64) (int64, error)
}

// ReviewNotifier queues flagged cases for manual review.
type ReviewNotifier interface {
	Notify(ctx context.Context, entry *domain.LedgerEntry, reason string)
}

type Service struct {
	ledgerRepo  LedgerRepo
	balanceRepo BalanceRepo
	txManager   pg.TXManager
	review      ReviewNotifier

	now func() time.Time
}

func New(ledgerRepo LedgerRepo, balanceRepo BalanceRepo, txManager pg.TXManager, review ReviewNotifier) *Service {
	return &Service{
		ledgerRepo:  ledgerRepo,
		balanceRepo: balanceRepo,
		txManager:   txManager,
		review:      review,
		now:         time.Now,
	}
}

// Draft is the input to AppendEntry. Amount is always non-negative; the
// entry type's sign rule decides the direction of the balance change.
type Draft struct {
	UserID            int64
	CounterpartyID    *int64
	Type              domain.EntryType
	Amount            int64
	Source            domain.FundSource
	Destination       domain.FundDestination
	Context           domain.EntryContext
	Pending           bool
	Failed            bool
	IdempotencyKey    *string
	ExternalPaymentID *string
	Fraud             *domain.FraudAssessment
}

func (d *Draft) validate() error {
	if d.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	}
	if err := domain.ValidateFlow(d.Type, d.Source, d.Destination); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := domain.ValidateContext(d.Type, d.Context); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}

// AppendEntry validates the draft and, inside one transaction, reads the
// balance account, applies the type's sign rule, links the entry to the
// user's hash chain and persists both. The version check on the balance
// account serializes same-user writers; lost races retry with jittered
// backoff up to maxRetries before surfacing ErrConcurrentModification.
func (s *Service) AppendEntry(ctx context.Context, draft Draft) (*domain.LedgerEntry, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	halted, err := s.ledgerRepo.IsUserHalted(ctx, draft.UserID)
	if err != nil {
		return nil, err
	}
	if halted {
		return nil, ErrUserHalted
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		entry, err := s.appendOnce(ctx, draft)
		if errors.Is(err, balancerepo.ErrStaleVersion) {
			backoff := time.Duration(attempt) * retryBackoff
			jitter := time.Duration(rand.Int63n(int64(retryBackoff)))
			zap.L().Debug("balance version race, retrying",
				zap.Int64("userID", draft.UserID),
				zap.Int("attempt", attempt),
			)
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

func (s *Service) appendOnce(ctx context.Context, draft Draft) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry

	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		acc, err := s.balanceRepo.Get(ctx, draft.UserID)
		if err != nil {
			return err
		}
		if acc == nil {
			acc, err = s.balanceRepo.Create(ctx, draft.UserID)
			if err != nil {
				return err
			}
		}

		delta, before, after, err := s.computeDelta(draft, acc)
		if err != nil {
			return err
		}

		status := domain.StatusCompleted
		if draft.Pending {
			status = domain.StatusPending
		}
		if draft.Failed {
			status = domain.StatusFailed
		}

		flaggedByRisk := draft.Fraud != nil &&
			(draft.Fraud.RiskLevel == domain.RiskHigh || draft.Fraud.RiskLevel == domain.RiskCritical)
		if flaggedByRisk {
			status = domain.StatusFlagged
		}

		if status != domain.StatusCompleted {
			after = before
			delta = balancerepo.Delta{}
		}

		prevHash, err := s.ledgerRepo.LastChainedHash(ctx, draft.UserID)
		if err != nil {
			return err
		}

		// TIMESTAMPTZ keeps microseconds; hash what the database will
		// return, or verification fails on read-back.
		now := s.now().UTC().Truncate(time.Microsecond)
		entry = &domain.LedgerEntry{
			ID:                uuid.NewString(),
			UserID:            draft.UserID,
			CounterpartyID:    draft.CounterpartyID,
			Type:              draft.Type,
			Amount:            draft.Amount,
			BalanceBefore:     before,
			BalanceAfter:      after,
			Source:            draft.Source,
			Destination:       draft.Destination,
			Context:           draft.Context,
			Status:            status,
			IdempotencyKey:    draft.IdempotencyKey,
			ExternalPaymentID: draft.ExternalPaymentID,
			PreviousHash:      prevHash,
			CreatedAt:         now,
		}
		if draft.Fraud != nil {
			entry.FraudScore = draft.Fraud.FraudScore
			entry.RiskLevel = draft.Fraud.RiskLevel
		} else {
			entry.RiskLevel = domain.RiskLow
		}
		if status != domain.StatusPending {
			entry.ProcessedAt = &now
		}
		entry.Hash = hashchain.Compute(entry.ID, entry.UserID, string(entry.Type), entry.Amount, entry.CreatedAt, entry.PreviousHash)

		// The CAS runs even when the delta is zero: bumping the version
		// serializes same-user appends so the chain linkage cannot fork.
		if _, err := s.balanceRepo.ApplyDelta(ctx, draft.UserID, delta, acc.Version); err != nil {
			return err
		}
		if err := s.ledgerRepo.Insert(ctx, entry); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entry.Status == domain.StatusFlagged && s.review != nil {
		s.review.Notify(ctx, entry, "risk level "+string(entry.RiskLevel))
	}
	return entry, nil
}

// computeDelta turns the draft into one atomic balance mutation. Bonus
// balance is only touched by types that explicitly credit or, for debits,
// explicitly draw from it via SourceBonus.
func (s *Service) computeDelta(draft Draft, acc *domain.BalanceAccount) (balancerepo.Delta, int64, int64, error) {
	var delta balancerepo.Delta

	if draft.Type.IsCredit() {
		if draft.Type.CreditsBonus() && draft.Destination == domain.DestBonus {
			delta.BonusBalance = draft.Amount
			delta.TotalEarned = draft.Amount
			return delta, acc.BonusBalance, acc.BonusBalance + draft.Amount, nil
		}
		delta.Balance = draft.Amount
		delta.TotalEarned = draft.Amount
		return delta, acc.Balance, acc.Balance + draft.Amount, nil
	}

	if draft.Source == domain.SourceBonus {
		if acc.BonusBalance < draft.Amount {
			return delta, 0, 0, ErrInsufficientBalance
		}
		delta.BonusBalance = -draft.Amount
		delta.TotalSpent = draft.Amount
		return delta, acc.BonusBalance, acc.BonusBalance - draft.Amount, nil
	}

	if acc.Balance < draft.Amount {
		return delta, 0, 0, ErrInsufficientBalance
	}
	delta.Balance = -draft.Amount
	delta.TotalSpent = draft.Amount
	return delta, acc.Balance, acc.Balance - draft.Amount, nil
}

// GetBalance returns the latest committed balance projection, creating the
// account on first touch.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*domain.BalanceAccount, error) {
	acc, err := s.balanceRepo.Get(ctx, userID)
	if err != nil {
		zap.L().Error("can't get balance account", zap.Error(err))
		return nil, err
	}
	if acc == nil {
		return &domain.BalanceAccount{UserID: userID, Version: 0}, nil
	}
	return acc, nil
}

func (s *Service) GetEntries(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.ledgerRepo.ListByUser(ctx, userID, limit)
}

// VerifyChain recomputes the user's whole chain in creation order. On the
// first broken link it records the offending entry, halts automatic
// processing for the user and returns ErrIntegrityViolation alongside the
// entry id. The chain is never auto-repaired.
func (s *Service) VerifyChain(ctx context.Context, userID int64) (bool, string, error) {
	entries, err := s.ledgerRepo.ListChain(ctx, userID)
	if err != nil {
		return false, "", err
	}

	records := make([]hashchain.Record, len(entries))
	for i, e := range entries {
		records[i] = hashchain.Record{
			ID:           e.ID,
			UserID:       e.UserID,
			Type:         string(e.Type),
			Amount:       e.Amount,
			CreatedAt:    e.CreatedAt,
			PreviousHash: e.PreviousHash,
			Hash:         e.Hash,
		}
	}

	ok, badID := hashchain.Verify(records)
	if ok {
		return true, "", nil
	}

	zap.L().Error("ledger chain integrity violation",
		zap.Int64("userID", userID),
		zap.String("entryID", badID),
		zap.Bool("alert", true),
	)
	if err := s.ledgerRepo.HaltUser(ctx, userID, badID); err != nil {
		return false, badID, err
	}
	return false, badID, fmt.Errorf("%w: entry %s", ErrIntegrityViolation, badID)
}

// FlagEntry is the manual review action transitioning completed to flagged.
func (s *Service) FlagEntry(ctx context.Context, entryID string) error {
	entry, err := s.ledgerRepo.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}
	return s.ledgerRepo.MarkFlagged(ctx, entryID)
}
