package repo

import (
	"github.com/glowstream/coinledger/internal/audit"
	"github.com/glowstream/coinledger/internal/pg"
	balancerepo "github.com/glowstream/coinledger/internal/repo/balance-repo"
	idempotencyrepo "github.com/glowstream/coinledger/internal/repo/idempotency-repo"
	ledgerrepo "github.com/glowstream/coinledger/internal/repo/ledger-repo"
	"github.com/glowstream/coinledger/internal/service/idempotencyservice"
	"github.com/glowstream/coinledger/internal/service/ledgerservice"
)

type Repositories struct {
	LedgerRepo      ledgerservice.LedgerRepo
	BalanceRepo     ledgerservice.BalanceRepo
	IdempotencyRepo idempotencyservice.Repo
	ActivityRepo    audit.ActivityRepo
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	ledgerRepo := ledgerrepo.New(conn, txManager)
	balanceRepo := balancerepo.New(conn, txManager)
	idempotencyRepo := idempotencyrepo.New(conn)

	return &Repositories{
		LedgerRepo:      ledgerRepo,
		BalanceRepo:     balanceRepo,
		IdempotencyRepo: idempotencyRepo,
		ActivityRepo:    ledgerRepo,
	}
}
