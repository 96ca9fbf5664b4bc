package ledgerrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/pg"
	"github.com/glowstream/coinledger/pkg/hashchain"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const entryColumns = `id, user_id, counterparty_id, type, amount, balance_before, balance_after,
        source, destination, context, status, fraud_score, risk_level,
        hash, previous_hash, idempotency_key, external_payment_id, created_at, processed_at`

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	var rawCtx []byte
	err := row.Scan(
		&e.ID, &e.UserID, &e.CounterpartyID, &e.Type, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
		&e.Source, &e.Destination, &rawCtx, &e.Status, &e.FraudScore, &e.RiskLevel,
		&e.Hash, &e.PreviousHash, &e.IdempotencyKey, &e.ExternalPaymentID, &e.CreatedAt, &e.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Context, err = domain.UnmarshalContext(rawCtx)
	if err != nil {
		zap.L().Error("can't decode entry context", zap.String("entryID", e.ID), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

func (r *Repository) Insert(ctx context.Context, entry *domain.LedgerEntry) error {
	query := `
        INSERT INTO ledger_entries (` + entryColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
    `
	rawCtx, err := domain.MarshalContext(entry.Context)
	if err != nil {
		zap.L().Error("can't encode entry context", zap.Error(err))
		return err
	}
	err = r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			entry.ID, entry.UserID, entry.CounterpartyID, entry.Type, entry.Amount,
			entry.BalanceBefore, entry.BalanceAfter, entry.Source, entry.Destination,
			rawCtx, entry.Status, entry.FraudScore, entry.RiskLevel,
			entry.Hash, entry.PreviousHash, entry.IdempotencyKey, entry.ExternalPaymentID,
			entry.CreatedAt, entry.ProcessedAt,
		)
		if err != nil {
			zap.L().Error("can't insert ledger entry", zap.Error(err))
			return err
		}
		return nil
	})
	return err
}

// LastChainedHash returns the hash of the most recent chain member for the
// user, or the genesis hash for an empty chain. Only completed and flagged
// entries participate in the chain; failed and cancelled attempts do not.
func (r *Repository) LastChainedHash(ctx context.Context, userID int64) (string, error) {
	query := `
        SELECT hash
        FROM ledger_entries
        WHERE user_id = $1 AND status IN ('completed', 'flagged')
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `
	var hash string
	err := r.db.QueryRow(ctx, query, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return hashchain.Genesis, nil
	}
	if err != nil {
		zap.L().Error("can't get last chained hash", zap.Error(err))
		return "", err
	}
	return hash, nil
}

// ListChain returns the user's chain members in creation order.
func (r *Repository) ListChain(ctx context.Context, userID int64) ([]domain.LedgerEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM ledger_entries
        WHERE user_id = $1 AND status IN ('completed', 'flagged')
        ORDER BY created_at ASC, id ASC
    `
	return r.list(ctx, query, userID)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM ledger_entries
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	return r.list(ctx, query, userID, limit)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list ledger entries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			zap.L().Error("can't scan ledger entry row", zap.Error(err))
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM ledger_entries
        WHERE id = $1
    `
	entry, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindByExternalPaymentID locates the completed purchase credited for an
// external payment; used by the refund path.
func (r *Repository) FindByExternalPaymentID(ctx context.Context, externalPaymentID string) (*domain.LedgerEntry, error) {
	query := `
        SELECT ` + entryColumns + `
        FROM ledger_entries
        WHERE external_payment_id = $1 AND type = 'purchase' AND status = 'completed'
        ORDER BY created_at ASC
        LIMIT 1
    `
	entry, err := scanEntry(r.db.QueryRow(ctx, query, externalPaymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// MarkFlagged transitions a completed entry to flagged. This is the only
// permitted post-completion status change; entries are never edited otherwise.
func (r *Repository) MarkFlagged(ctx context.Context, id string) error {
	query := `
        UPDATE ledger_entries
        SET status = 'flagged'
        WHERE id = $1 AND status = 'completed'
    `
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, id)
		if err != nil {
			zap.L().Error("can't flag ledger entry", zap.Error(err))
			return err
		}
		return nil
	})
	return err
}

// RecentUserIDs lists users with chain members created since the given time;
// the audit worker verifies these chains.
func (r *Repository) RecentUserIDs(ctx context.Context, since time.Time) ([]int64, error) {
	query := `
        SELECT DISTINCT user_id
        FROM ledger_entries
        WHERE created_at >= $1 AND status IN ('completed', 'flagged')
    `
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		zap.L().Error("can't list recent users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HaltUser records an integrity violation so automatic processing for the
// user stays blocked until a manual audit clears it.
func (r *Repository) HaltUser(ctx context.Context, userID int64, entryID string) error {
	query := `
        INSERT INTO halted_users (user_id, entry_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID, entryID)
	if err != nil {
		zap.L().Error("can't halt user", zap.Int64("userID", userID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) IsUserHalted(ctx context.Context, userID int64) (bool, error) {
	query := `
        SELECT 1
        FROM halted_users
        WHERE user_id = $1
    `
	var one int
	err := r.db.QueryRow(ctx, query, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		zap.L().Error("can't check halted user", zap.Error(err))
		return false, err
	}
	return true, nil
}
