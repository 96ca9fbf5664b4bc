package balancerepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/pg"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface, *pg.MockTXManager) {
	ctrl := gomock.NewController(t)
	mockTxManager := pg.NewMockTXManager(ctrl)

	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB, mockTxManager)
	defer mockDB.Close()
	defer ctrl.Finish()

	return repo, mockDB, mockTxManager
}

var accountCols = []string{"user_id", "balance", "bonus_balance", "total_earned", "total_spent", "version", "last_updated"}

func TestRepository_Get(t *testing.T) {
	repo, mock, _ := NewMock(t)
	updated := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		expectErr bool
		result    *domain.BalanceAccount
	}{
		{
			name: "Account exists",
			mockSetup: func() {
				rows := pgxmock.NewRows(accountCols).
					AddRow(int64(1), int64(1500), int64(50), int64(2500), int64(1000), int64(3), updated)
				mock.ExpectQuery(regexp.QuoteMeta("FROM balance_accounts")).
					WithArgs(int64(1)).
					WillReturnRows(rows)
			},
			result: &domain.BalanceAccount{
				UserID:       1,
				Balance:      1500,
				BonusBalance: 50,
				TotalEarned:  2500,
				TotalSpent:   1000,
				Version:      3,
				LastUpdated:  updated,
			},
		},
		{
			name: "Account does not exist",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM balance_accounts")).
					WithArgs(int64(1)).
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM balance_accounts")).
					WithArgs(int64(1)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Get(context.Background(), 1)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.result, result)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Create(t *testing.T) {
	repo, mock, _ := NewMock(t)
	updated := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO balance_accounts")).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	rows := pgxmock.NewRows(accountCols).
		AddRow(int64(1), int64(0), int64(0), int64(0), int64(0), int64(1), updated)
	mock.ExpectQuery(regexp.QuoteMeta("FROM balance_accounts")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	acc, err := repo.Create(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), acc.Version)
	assert.Equal(t, int64(0), acc.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ApplyDelta(t *testing.T) {
	repo, mock, txManager := NewMock(t)

	tests := []struct {
		name            string
		delta           Delta
		expectedVersion int64
		mockSetup       func(delta Delta)
		expectErr       error
		newVersion      int64
	}{
		{
			name:            "Delta applied",
			delta:           Delta{Balance: 1000, TotalEarned: 1000},
			expectedVersion: 3,
			mockSetup: func(delta Delta) {
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
					return fn(ctx)
				})
				rows := pgxmock.NewRows([]string{"version"}).AddRow(int64(4))
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE balance_accounts")).
					WithArgs(delta.Balance, delta.BonusBalance, delta.TotalEarned, delta.TotalSpent, int64(1), int64(3)).
					WillReturnRows(rows)
			},
			newVersion: 4,
		},
		{
			name:            "Version is stale",
			delta:           Delta{Balance: -100, TotalSpent: 100},
			expectedVersion: 3,
			mockSetup: func(delta Delta) {
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
					return fn(ctx)
				})
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE balance_accounts")).
					WithArgs(delta.Balance, delta.BonusBalance, delta.TotalEarned, delta.TotalSpent, int64(1), int64(3)).
					WillReturnError(pgx.ErrNoRows)
			},
			expectErr: ErrStaleVersion,
		},
		{
			name:            "Database error",
			delta:           Delta{Balance: 100},
			expectedVersion: 3,
			mockSetup: func(delta Delta) {
				txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
					return fn(ctx)
				})
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE balance_accounts")).
					WithArgs(delta.Balance, delta.BonusBalance, delta.TotalEarned, delta.TotalSpent, int64(1), int64(3)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup(tt.delta)
			newVersion, err := repo.ApplyDelta(context.Background(), 1, tt.delta, tt.expectedVersion)
			if tt.expectErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectErr, ErrStaleVersion) {
					assert.ErrorIs(t, err, ErrStaleVersion)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.newVersion, newVersion)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
