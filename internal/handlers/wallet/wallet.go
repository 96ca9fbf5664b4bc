package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/dto"
	"github.com/glowstream/coinledger/internal/service/ledgerservice"
	"github.com/glowstream/coinledger/pkg/auth"
	"github.com/glowstream/coinledger/pkg/utils"
	"github.com/glowstream/coinledger/pkg/validate"
)

//go:generate mockgen -source=wallet.go -destination=mocks.go -package=wallet

// Ops is the guarded credit/debit surface.
type Ops interface {
	Credit(ctx context.Context, userID int64, typ domain.EntryType, amount int64, entryCtx domain.EntryContext, meta ledgerservice.CallMeta) (*domain.LedgerEntry, error)
	Debit(ctx context.Context, userID int64, typ domain.EntryType, amount int64, entryCtx domain.EntryContext, meta ledgerservice.CallMeta) (*domain.LedgerEntry, error)
	ClaimDailyBonus(ctx context.Context, userID int64, amount int64, meta ledgerservice.CallMeta) (*domain.LedgerEntry, bool, error)
}

// Ledger is the read and audit surface.
type Ledger interface {
	GetBalance(ctx context.Context, userID int64) (*domain.BalanceAccount, error)
	GetEntries(ctx context.Context, userID int64, limit int) ([]domain.LedgerEntry, error)
	VerifyChain(ctx context.Context, userID int64) (bool, string, error)
}

type WalletHandler struct {
	ops    Ops
	ledger Ledger
}

func New(ops Ops, ledger Ledger) *WalletHandler {
	return &WalletHandler{
		ops:    ops,
		ledger: ledger,
	}
}

// GetBalance godoc
//
//	@Summary		Get current coin balance
//	@Description	Retrieve the withdrawable and bonus coin balances for the authenticated user.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balances"
//	@Failure		401	{object}	utils.Response			"User not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/balance [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	acc, err := h.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		Balance:      acc.Balance,
		BonusBalance: acc.BonusBalance,
		TotalEarned:  acc.TotalEarned,
		TotalSpent:   acc.TotalSpent,
		Version:      acc.Version,
	})
}

// Credit godoc
//
//	@Summary		Credit coins
//	@Description	Append a crediting ledger entry for the authenticated user. Safe to retry with an Idempotency-Key header.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string				false	"Caller idempotency key"
//	@Param			request			body		dto.CreditRequestDTO	true	"Credit payload"
//	@Success		200				{object}	dto.EntryResponseDTO	"Created ledger entry"
//	@Failure		400				{object}	utils.Response			"Invalid request"
//	@Failure		401				{object}	utils.Response			"User not authorized"
//	@Failure		409				{object}	utils.Response			"Transient conflict or halted user"
//	@Failure		500				{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/credit [post]
func (h *WalletHandler) Credit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	var req dto.CreditRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	typ := domain.EntryType(req.Type)
	entryCtx, err := buildContext(typ, req.EntryContextDTO)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.ops.Credit(r.Context(), userID, typ, req.Amount, entryCtx, callMeta(r))
	if err != nil {
		respondOpError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entryDTO(entry))
}

// Debit godoc
//
//	@Summary		Debit coins
//	@Description	Append a debiting ledger entry for the authenticated user. Fails with 402 when the balance cannot cover the amount.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string				false	"Caller idempotency key"
//	@Param			request			body		dto.DebitRequestDTO		true	"Debit payload"
//	@Success		200				{object}	dto.EntryResponseDTO	"Created ledger entry"
//	@Failure		400				{object}	utils.Response			"Invalid request"
//	@Failure		401				{object}	utils.Response			"User not authorized"
//	@Failure		402				{object}	utils.Response			"Insufficient balance"
//	@Failure		409				{object}	utils.Response			"Transient conflict or halted user"
//	@Failure		500				{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/debit [post]
func (h *WalletHandler) Debit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	var req dto.DebitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	typ := domain.EntryType(req.Type)
	entryCtx, err := buildContext(typ, req.EntryContextDTO)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	meta := callMeta(r)
	meta.FromBonus = req.FromBonus

	entry, err := h.ops.Debit(r.Context(), userID, typ, req.Amount, entryCtx, meta)
	if err != nil {
		respondOpError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, entryDTO(entry))
}

// ClaimBonus godoc
//
//	@Summary		Claim the daily bonus
//	@Description	Credit the daily bonus onto the bonus balance. The first claim of a UTC calendar day credits; repeats return the original entry.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.ClaimBonusRequestDTO	true	"Claim payload"
//	@Success		200		{object}	dto.ClaimBonusResponseDTO	"Claim result"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"User not authorized"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/bonus/claim [post]
func (h *WalletHandler) ClaimBonus(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	var req dto.ClaimBonusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, claimed, err := h.ops.ClaimDailyBonus(r.Context(), userID, req.Amount, callMeta(r))
	if err != nil {
		respondOpError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ClaimBonusResponseDTO{
		Claimed: claimed,
		Entry:   entryDTO(entry),
	})
}

// GetEntries godoc
//
//	@Summary		Get ledger history
//	@Description	List the authenticated user's ledger entries, newest first.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int						false	"Maximum entries to return"
//	@Success		200		{array}		dto.EntryResponseDTO	"Ledger entries"
//	@Success		204		"No entries"
//	@Failure		401		{object}	utils.Response			"User not authorized"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/wallet/entries [get]
func (h *WalletHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.ledger.GetEntries(r.Context(), userID, limit)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch entries")
		return
	}
	if len(entries) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	response := make([]dto.EntryResponseDTO, len(entries))
	for i := range entries {
		response[i] = entryDTO(&entries[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// VerifyChain godoc
//
//	@Summary		Audit the hash chain
//	@Description	Recompute the authenticated user's full hash chain and report the first broken link, if any.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.VerifyChainResponseDTO	"Verification result"
//	@Failure		401	{object}	utils.Response				"User not authorized"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/wallet/verify [get]
func (h *WalletHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int64)

	ok, badID, err := h.ledger.VerifyChain(r.Context(), userID)
	if err != nil && !errors.Is(err, ledgerservice.ErrIntegrityViolation) {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.VerifyChainResponseDTO{
		Valid:          ok,
		OffendingEntry: badID,
	})
}

func callMeta(r *http.Request) ledgerservice.CallMeta {
	return ledgerservice.CallMeta{
		IdempotencyKey:    r.Header.Get("Idempotency-Key"),
		IP:                r.RemoteAddr,
		DeviceFingerprint: r.Header.Get("X-Device-Fingerprint"),
		DeclaredCountry:   r.Header.Get("X-Declared-Country"),
		IPCountry:         r.Header.Get("X-IP-Country"),
	}
}

func buildContext(typ domain.EntryType, c dto.EntryContextDTO) (domain.EntryContext, error) {
	switch typ {
	case domain.TypePurchase:
		return &domain.PurchaseContext{PaymentID: c.PaymentID, PaymentGateway: c.PaymentGateway}, nil
	case domain.TypeGameStake, domain.TypeGameWin, domain.TypeGameLoss:
		return &domain.GameContext{GameID: c.GameID, SessionID: c.SessionID, Outcome: typ}, nil
	case domain.TypeGiftSent, domain.TypeGiftReceived:
		return &domain.GiftContext{GiftID: c.GiftID, StreamID: c.StreamID, Side: typ}, nil
	case domain.TypeSubscriptionPurchase:
		return &domain.SubscriptionContext{PlanID: c.PlanID, Period: c.Period}, nil
	case domain.TypeWithdrawal:
		return &domain.WithdrawalContext{PayoutID: c.PayoutID, Method: c.Method}, nil
	case domain.TypeReward, domain.TypeBonusClaim:
		return &domain.BonusContext{Reason: c.Reason, Typ: typ}, nil
	}
	return nil, fmt.Errorf("unsupported entry type %q", typ)
}

func entryDTO(e *domain.LedgerEntry) dto.EntryResponseDTO {
	return dto.EntryResponseDTO{
		ID:            e.ID,
		Type:          string(e.Type),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Status:        string(e.Status),
		RiskLevel:     string(e.RiskLevel),
		Hash:          e.Hash,
		PreviousHash:  e.PreviousHash,
		CreatedAt:     e.CreatedAt,
		ProcessedAt:   e.ProcessedAt,
	}
}

func respondOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgerservice.ErrValidation):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledgerservice.ErrInsufficientBalance):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, ledgerservice.ErrConcurrentModification):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledgerservice.ErrUserHalted):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledgerservice.ErrOperationInFlight):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
