package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/config"
	"github.com/glowstream/coinledger/internal/service/ledgerservice"
)

func NewMock(t *testing.T) (*Service, *MockVerifier, *MockReclaimer, *MockActivityRepo) {
	cfg := &config.Config{AuditInterval: 10 * time.Millisecond}
	ctrl := gomock.NewController(t)

	verifier := NewMockVerifier(ctrl)
	reclaimer := NewMockReclaimer(ctrl)
	activity := NewMockActivityRepo(ctrl)
	service := New(cfg, verifier, reclaimer, activity)
	return service, verifier, reclaimer, activity
}

func TestService_Start(t *testing.T) {
	service, verifier, reclaimer, activity := NewMock(t)

	reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(0), nil).AnyTimes()
	activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return([]int64{1}, nil).AnyTimes()
	verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).Return(true, "", nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	cancel()
}

func TestService_sweep(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(verifier *MockVerifier, reclaimer *MockReclaimer, activity *MockActivityRepo)
	}{
		{
			name: "Reclaims and verifies recent users",
			prepareMock: func(verifier *MockVerifier, reclaimer *MockReclaimer, activity *MockActivityRepo) {
				reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(2), nil)
				activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return([]int64{1, 2}, nil)
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).Return(true, "", nil)
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(2)).Return(true, "", nil)
			},
		},
		{
			name: "Reclaim failure does not stop verification",
			prepareMock: func(verifier *MockVerifier, reclaimer *MockReclaimer, activity *MockActivityRepo) {
				reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(0), errors.New("database error"))
				activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return([]int64{1}, nil)
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).Return(true, "", nil)
			},
		},
		{
			name: "Activity lookup failure skips verification",
			prepareMock: func(verifier *MockVerifier, reclaimer *MockReclaimer, activity *MockActivityRepo) {
				reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(0), nil)
				activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))
			},
		},
		{
			name: "Tampered chain is reported and the sweep continues",
			prepareMock: func(verifier *MockVerifier, reclaimer *MockReclaimer, activity *MockActivityRepo) {
				reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(0), nil)
				activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return([]int64{1, 2}, nil)
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).
					Return(false, "entry-7", ledgerservice.ErrIntegrityViolation)
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(2)).Return(true, "", nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			verifier := NewMockVerifier(ctrl)
			reclaimer := NewMockReclaimer(ctrl)
			activity := NewMockActivityRepo(ctrl)
			workerPool := NewMockWorkerPoolI(ctrl)

			// Run scheduled tasks inline so expectations settle before
			// the sweep returns.
			workerPool.EXPECT().
				AddTask(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, task Task) error {
					return task()
				}).
				AnyTimes()

			service := &Service{
				verifier:   verifier,
				reclaimer:  reclaimer,
				activity:   activity,
				workerPool: workerPool,
				interval:   time.Minute,
				lookback:   2 * time.Minute,
			}

			logger := zap.NewExample()
			zap.ReplaceGlobals(logger)

			tt.prepareMock(verifier, reclaimer, activity)
			service.sweep(context.Background())
		})
	}
}

func TestService_sweep_SkipsUsersAlreadyVerifying(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verifier := NewMockVerifier(ctrl)
	reclaimer := NewMockReclaimer(ctrl)
	activity := NewMockActivityRepo(ctrl)
	workerPool := NewMockWorkerPoolI(ctrl)

	workerPool.EXPECT().
		AddTask(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task Task) error {
			return task()
		}).
		AnyTimes()

	service := &Service{
		verifier:   verifier,
		reclaimer:  reclaimer,
		activity:   activity,
		workerPool: workerPool,
		interval:   time.Minute,
		lookback:   2 * time.Minute,
	}
	// User 2 is still being verified by an earlier sweep.
	service.verifying.Store(int64(2), struct{}{})

	zap.ReplaceGlobals(zap.NewExample())

	reclaimer.EXPECT().ReclaimStale(gomock.Any()).Return(int64(0), nil)
	activity.EXPECT().RecentUserIDs(gomock.Any(), gomock.Any()).Return([]int64{1, 2}, nil)
	verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).Return(true, "", nil)

	service.sweep(context.Background())

	// User 1 finished and cleared its marker; user 2's is untouched.
	_, stillHeld := service.verifying.Load(int64(2))
	assert.True(t, stillHeld)
	_, held := service.verifying.Load(int64(1))
	assert.False(t, held)
}

func TestService_verifyUser(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(verifier *MockVerifier)
		expectedErr error
	}{
		{
			name: "Intact chain",
			prepareMock: func(verifier *MockVerifier) {
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).Return(true, "", nil)
			},
		},
		{
			name: "Integrity violation is swallowed",
			prepareMock: func(verifier *MockVerifier) {
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).
					Return(false, "entry-7", ledgerservice.ErrIntegrityViolation)
			},
		},
		{
			name: "Transient error surfaces",
			prepareMock: func(verifier *MockVerifier) {
				verifier.EXPECT().VerifyChain(gomock.Any(), int64(1)).
					Return(false, "", errors.New("database error"))
			},
			expectedErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, verifier, _, _ := NewMock(t)
			tt.prepareMock(verifier)

			err := service.verifyUser(context.Background(), 1)

			if tt.expectedErr != nil {
				assert.EqualError(t, err, tt.expectedErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
