package idempotencyrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"github.com/glowstream/coinledger/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	repo := New(mockDB)
	defer mockDB.Close()

	return repo, mockDB
}

func TestRepository_TryInsert(t *testing.T) {
	repo, mock := NewMock(t)

	tests := []struct {
		name      string
		mockSetup func()
		inserted  bool
		expectErr bool
	}{
		{
			name: "Key claimed",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO idempotency_keys")).
					WithArgs("payment:sess_1", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			inserted: true,
		},
		{
			name: "Key already exists",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO idempotency_keys")).
					WithArgs("payment:sess_1", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
			inserted: false,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectExec(regexp.QuoteMeta("INSERT INTO idempotency_keys")).
					WithArgs("payment:sess_1", pgxmock.AnyArg()).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			inserted, err := repo.TryInsert(context.Background(), "payment:sess_1", nil)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.inserted, inserted)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Get(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()

	tests := []struct {
		name      string
		mockSetup func()
		result    *domain.IdempotencyRecord
		expectErr bool
	}{
		{
			name: "Record exists",
			mockSetup: func() {
				rows := pgxmock.NewRows([]string{"key", "result_ref", "status", "created_at", "expires_at"}).
					AddRow("payment:sess_1", "entry-1", domain.IdemCompleted, created, nil)
				mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency_keys")).
					WithArgs("payment:sess_1").
					WillReturnRows(rows)
			},
			result: &domain.IdempotencyRecord{
				Key:       "payment:sess_1",
				ResultRef: "entry-1",
				Status:    domain.IdemCompleted,
				CreatedAt: created,
			},
		},
		{
			name: "Record does not exist",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency_keys")).
					WithArgs("payment:sess_1").
					WillReturnError(pgx.ErrNoRows)
			},
			result: nil,
		},
		{
			name: "Database error",
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM idempotency_keys")).
					WithArgs("payment:sess_1").
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.Get(context.Background(), "payment:sess_1")
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

func TestRepository_Takeover(t *testing.T) {
	repo, mock := NewMock(t)
	staleBefore := time.Now().Add(-2 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE idempotency_keys")).
		WithArgs("claim:1:2025-06-01", pgxmock.AnyArg(), staleBefore).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	owned, err := repo.Takeover(context.Background(), "claim:1:2025-06-01", nil, staleBefore)
	assert.NoError(t, err)
	assert.True(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE idempotency_keys")).
		WithArgs("claim:1:2025-06-01", pgxmock.AnyArg(), staleBefore).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	owned, err = repo.Takeover(context.Background(), "claim:1:2025-06-01", nil, staleBefore)
	assert.NoError(t, err)
	assert.False(t, owned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Complete(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'completed', result_ref = $2")).
		WithArgs("payment:sess_1", "entry-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Complete(context.Background(), "payment:sess_1", "entry-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Release(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM idempotency_keys")).
		WithArgs("payment:sess_1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Release(context.Background(), "payment:sess_1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteStale(t *testing.T) {
	repo, mock := NewMock(t)
	olderThan := time.Now().Add(-2 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM idempotency_keys")).
		WithArgs(olderThan).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.DeleteStale(context.Background(), olderThan)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
