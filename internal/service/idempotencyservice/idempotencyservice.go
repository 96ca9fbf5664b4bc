package idempotencyservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
)

//go:generate mockgen -source=idempotencyservice.go -destination=mocks.go -package=idempotencyservice

type Repo interface {
	TryInsert(ctx context.Context, key string, expiresAt *time.Time) (bool, error)
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
	Takeover(ctx context.Context, key string, expiresAt *time.Time, staleBefore time.Time) (bool, error)
	Complete(ctx context.Context, key, resultRef string) error
	Release(ctx context.Context, key string) error
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// Service is the dedupe layer every operation passes before producing side
// effects. Begin must run before anything externally observable; a crash
// between Begin and Complete leaves a placeholder that becomes reclaimable
// after staleAfter, so retries are never blocked forever.
type Service struct {
	repo       Repo
	staleAfter time.Duration

	now func() time.Time
}

func New(repo Repo, staleAfter time.Duration) *Service {
	return &Service{
		repo:       repo,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Begin atomically claims the key. isNew=false returns the prior result
// reference, which may still be empty while the first attempt is in flight:
// treat that as "do not duplicate", not as a final result. A nil expiresAt
// makes the key permanent (payment-event dedupe); daily-claim keys pass the
// next day boundary.
func (s *Service) Begin(ctx context.Context, key string, expiresAt *time.Time) (bool, string, error) {
	inserted, err := s.repo.TryInsert(ctx, key, expiresAt)
	if err != nil {
		return false, "", err
	}
	if inserted {
		return true, "", nil
	}

	rec, err := s.repo.Get(ctx, key)
	if err != nil {
		return false, "", err
	}
	if rec == nil {
		// Row vanished between insert and read (released by its owner);
		// claim it again.
		inserted, err := s.repo.TryInsert(ctx, key, expiresAt)
		if err != nil {
			return false, "", err
		}
		return inserted, "", nil
	}

	now := s.now()
	expired := rec.ExpiresAt != nil && !rec.ExpiresAt.After(now)
	stale := rec.Status == domain.IdemInProgress && now.Sub(rec.CreatedAt) > s.staleAfter
	if expired || stale {
		taken, err := s.repo.Takeover(ctx, key, expiresAt, now.Add(-s.staleAfter))
		if err != nil {
			return false, "", err
		}
		if taken {
			zap.L().Info("reclaimed idempotency key",
				zap.String("key", key),
				zap.Bool("expired", expired),
			)
			return true, "", nil
		}
	}

	return false, rec.ResultRef, nil
}

func (s *Service) Complete(ctx context.Context, key, resultRef string) error {
	return s.repo.Complete(ctx, key, resultRef)
}

func (s *Service) Release(ctx context.Context, key string) error {
	return s.repo.Release(ctx, key)
}

// ReclaimStale drops in_progress placeholders past the staleness bound; the
// background audit worker calls this periodically.
func (s *Service) ReclaimStale(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteStale(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Warn("reclaimed stale idempotency placeholders", zap.Int64("count", n))
	}
	return n, nil
}
