package handlers

import (
	"net/http"

	_ "github.com/glowstream/coinledger/docs"
	"github.com/glowstream/coinledger/internal/config"
	walletHandlers "github.com/glowstream/coinledger/internal/handlers/wallet"
	webhookHandlers "github.com/glowstream/coinledger/internal/handlers/webhook"
	"github.com/glowstream/coinledger/internal/service"
	"github.com/glowstream/coinledger/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=mocks.go -package=handlers

type WalletHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Credit(w http.ResponseWriter, r *http.Request)
	Debit(w http.ResponseWriter, r *http.Request)
	ClaimBonus(w http.ResponseWriter, r *http.Request)
	GetEntries(w http.ResponseWriter, r *http.Request)
	VerifyChain(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	HandlePaymentEvent(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	WalletHandler  WalletHandler
	WebhookHandler WebhookHandler
}

func New(cfg *config.Config, s *service.Services) *Handlers {
	return &Handlers{
		WalletHandler:  walletHandlers.New(s.LedgerOps, s.LedgerService),
		WebhookHandler: webhookHandlers.New(s.PaymentService, cfg.WebhookSecret),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api/wallet", func(r chi.Router) {
		r.Use(auth.AuthMiddleware)
		r.Get("/balance", h.WalletHandler.GetBalance)
		r.Post("/credit", h.WalletHandler.Credit)
		r.Post("/debit", h.WalletHandler.Debit)
		r.Post("/bonus/claim", h.WalletHandler.ClaimBonus)
		r.Get("/entries", h.WalletHandler.GetEntries)
		r.Get("/verify", h.WalletHandler.VerifyChain)
	})
	r.Post("/api/webhook/payment", h.WebhookHandler.HandlePaymentEvent)

	return r
}
