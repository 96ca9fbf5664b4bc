package idempotencyrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// TryInsert claims a key by inserting an in_progress placeholder. A nil
// expiresAt makes the key permanent. Returns false if the key already exists.
func (r *Repository) TryInsert(ctx context.Context, key string, expiresAt *time.Time) (bool, error) {
	query := `
        INSERT INTO idempotency_keys (key, status, expires_at)
        VALUES ($1, 'in_progress', $2)
        ON CONFLICT (key) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, key, expiresAt)
	if err != nil {
		zap.L().Error("can't insert idempotency key", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	query := `
        SELECT key, result_ref, status, created_at, expires_at
        FROM idempotency_keys
        WHERE key = $1
    `
	row := r.db.QueryRow(ctx, query, key)
	var rec domain.IdempotencyRecord
	err := row.Scan(&rec.Key, &rec.ResultRef, &rec.Status, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get idempotency key", zap.Error(err))
		return nil, err
	}
	return &rec, nil
}

// Takeover reclaims a key whose record has expired, or whose in_progress
// placeholder is older than staleBefore (a crashed worker). Returns true if
// this caller now owns the key.
func (r *Repository) Takeover(ctx context.Context, key string, expiresAt *time.Time, staleBefore time.Time) (bool, error) {
	query := `
        UPDATE idempotency_keys
        SET status = 'in_progress', result_ref = '', created_at = now(), expires_at = $2
        WHERE key = $1
          AND (
            (expires_at IS NOT NULL AND expires_at <= now())
            OR (status = 'in_progress' AND created_at < $3)
          )
    `
	tag, err := r.db.Exec(ctx, query, key, expiresAt, staleBefore)
	if err != nil {
		zap.L().Error("can't take over idempotency key", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) Complete(ctx context.Context, key, resultRef string) error {
	query := `
        UPDATE idempotency_keys
        SET status = 'completed', result_ref = $2
        WHERE key = $1
    `
	_, err := r.db.Exec(ctx, query, key, resultRef)
	if err != nil {
		zap.L().Error("can't complete idempotency key", zap.Error(err))
		return err
	}
	return nil
}

// Release drops the placeholder after a failed attempt so a retry can run.
func (r *Repository) Release(ctx context.Context, key string) error {
	query := `
        DELETE FROM idempotency_keys
        WHERE key = $1 AND status = 'in_progress'
    `
	_, err := r.db.Exec(ctx, query, key)
	if err != nil {
		zap.L().Error("can't release idempotency key", zap.Error(err))
		return err
	}
	return nil
}

// DeleteStale removes in_progress placeholders older than the staleness
// bound; the audit worker calls this so crashed workers never block retries.
func (r *Repository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
        DELETE FROM idempotency_keys
        WHERE status = 'in_progress' AND created_at < $1
    `
	tag, err := r.db.Exec(ctx, query, olderThan)
	if err != nil {
		zap.L().Error("can't delete stale idempotency keys", zap.Error(err))
		return 0, err
	}
	return tag.RowsAffected(), nil
}
