package service

import (
	"github.com/go-redis/redis/v8"

	"github.com/glowstream/coinledger/internal/config"
	"github.com/glowstream/coinledger/internal/pg"
	"github.com/glowstream/coinledger/internal/repo"
	"github.com/glowstream/coinledger/internal/review"
	fraudservice "github.com/glowstream/coinledger/internal/service/fraudservice"
	idempotencyservice "github.com/glowstream/coinledger/internal/service/idempotencyservice"
	ledgerservice "github.com/glowstream/coinledger/internal/service/ledgerservice"
	paymentservice "github.com/glowstream/coinledger/internal/service/paymentservice"
	"github.com/glowstream/coinledger/pkg/clients"
)

type Services struct {
	LedgerService      *ledgerservice.Service
	LedgerOps          *ledgerservice.Ops
	PaymentService     *paymentservice.Service
	IdempotencyService *idempotencyservice.Service
	FraudService       *fraudservice.Service
}

func New(cfg *config.Config, repos *repo.Repositories, txManager pg.TXManager, rdb redis.Cmdable) *Services {
	fraudService := fraudservice.New(rdb, fraudservice.DefaultConfig(cfg.FraudTimeout))
	idempotencyService := idempotencyservice.New(repos.IdempotencyRepo, cfg.IdemStaleAfter)
	reviewNotifier := review.New(cfg.ReviewURL, clients.NewHTTPClient())

	ledgerService := ledgerservice.New(repos.LedgerRepo, repos.BalanceRepo, txManager, reviewNotifier)
	ledgerOps := ledgerservice.NewOps(ledgerService, idempotencyService, fraudService)
	paymentService := paymentservice.New(ledgerService, idempotencyService, fraudService)

	return &Services{
		LedgerService:      ledgerService,
		LedgerOps:          ledgerOps,
		PaymentService:     paymentService,
		IdempotencyService: idempotencyService,
		FraudService:       fraudService,
	}
}
