package balancerepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/pg"
	"go.uber.org/zap"
)

// ErrStaleVersion signals a lost compare-and-swap race; callers retry with a
// fresh read.
var ErrStaleVersion = errors.New("balance account version is stale")

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

func (r *Repository) Get(ctx context.Context, userID int64) (*domain.BalanceAccount, error) {
	query := `
        SELECT user_id, balance, bonus_balance, total_earned, total_spent, version, last_updated
        FROM balance_accounts
        WHERE user_id = $1
    `
	row := r.db.QueryRow(ctx, query, userID)
	var acc domain.BalanceAccount
	err := row.Scan(&acc.UserID, &acc.Balance, &acc.BonusBalance, &acc.TotalEarned, &acc.TotalSpent, &acc.Version, &acc.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get balance account", zap.Error(err))
		return nil, err
	}
	return &acc, nil
}

func (r *Repository) Create(ctx context.Context, userID int64) (*domain.BalanceAccount, error) {
	query := `
        INSERT INTO balance_accounts (user_id, balance, bonus_balance, total_earned, total_spent, version)
        VALUES ($1, 0, 0, 0, 0, 1)
        ON CONFLICT (user_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't create balance account", zap.Error(err))
		return nil, err
	}
	return r.Get(ctx, userID)
}

// Delta is one atomic multi-field mutation of a balance account.
type Delta struct {
	Balance      int64
	BonusBalance int64
	TotalEarned  int64
	TotalSpent   int64
}

// ApplyDelta performs the optimistic compare-and-swap: the update lands only
// if the stored version still matches expectedVersion. Returns the new
// version, or ErrStaleVersion if another writer got there first.
func (r *Repository) ApplyDelta(ctx context.Context, userID int64, delta Delta, expectedVersion int64) (int64, error) {
	query := `
        UPDATE balance_accounts
        SET balance = balance + $1,
            bonus_balance = bonus_balance + $2,
            total_earned = total_earned + $3,
            total_spent = total_spent + $4,
            version = version + 1,
            last_updated = now()
        WHERE user_id = $5 AND version = $6
        RETURNING version
    `
	var newVersion int64
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		row := r.db.QueryRow(ctx, query,
			delta.Balance, delta.BonusBalance, delta.TotalEarned, delta.TotalSpent,
			userID, expectedVersion,
		)
		err := row.Scan(&newVersion)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrStaleVersion
		}
		if err != nil {
			zap.L().Error("can't apply balance delta", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}
