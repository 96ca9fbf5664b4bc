package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/dto"
	"github.com/glowstream/coinledger/internal/service/paymentservice"
	"github.com/glowstream/coinledger/pkg/sign"
	"github.com/glowstream/coinledger/pkg/utils"
	"github.com/glowstream/coinledger/pkg/validate"
)

//go:generate mockgen -source=webhook.go -destination=mocks.go -package=webhook

const signatureHeader = "X-Signature"

type Ingestor interface {
	Process(ctx context.Context, event paymentservice.Event) (paymentservice.Outcome, *domain.LedgerEntry, error)
}

type WebhookHandler struct {
	ingestor Ingestor
	secret   []byte
}

func New(ingestor Ingestor, secret string) *WebhookHandler {
	return &WebhookHandler{
		ingestor: ingestor,
		secret:   []byte(secret),
	}
}

// HandlePaymentEvent godoc
//
//	@Summary		Ingest a payment-processor event
//	@Description	Verify the provider signature and apply the event to the ledger exactly once. Handled and skipped events are acknowledged with 200 so the processor stops retrying.
//	@Tags			Webhook
//	@Accept			json
//	@Produce		json
//	@Param			X-Signature	header		string					true	"HMAC-SHA256 signature of the raw body"
//	@Param			event		body		dto.PaymentEventDTO		true	"Signed event envelope"
//	@Success		200			{object}	dto.WebhookAckDTO		"Event handled or skipped"
//	@Failure		401			{object}	utils.Response			"Invalid signature"
//	@Failure		500			{object}	utils.Response			"Transient failure, retry"
//	@Router			/api/webhook/payment [post]
func (h *WebhookHandler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "can't read body")
		return
	}

	// Signature failures are rejected at the boundary; nothing below this
	// line runs for an unauthenticated payload.
	if !sign.Verify(h.secret, body, r.Header.Get(signatureHeader)) {
		zap.L().Warn("payment event with invalid signature rejected",
			zap.String("remote", r.RemoteAddr),
		)
		utils.RespondWithError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var req dto.PaymentEventDTO
	if err := json.Unmarshal(body, &req); err != nil {
		zap.L().Error("undecodable payment event acknowledged", zap.Error(err))
		utils.RespondWithJSON(w, http.StatusOK, dto.WebhookAckDTO{Outcome: string(paymentservice.OutcomeRejected)})
		return
	}
	if err := validate.Struct(req); err != nil {
		zap.L().Error("payment event failed validation, acknowledged",
			zap.String("eventID", req.ID),
			zap.Error(err),
		)
		utils.RespondWithJSON(w, http.StatusOK, dto.WebhookAckDTO{Outcome: string(paymentservice.OutcomeRejected)})
		return
	}

	event := paymentservice.Event{
		ID:                req.ID,
		Type:              req.Type,
		SessionID:         req.Data.SessionID,
		PaymentID:         req.Data.PaymentID,
		Gateway:           req.Data.Gateway,
		UserID:            req.Data.UserID,
		Coins:             req.Data.Coins,
		IP:                req.Data.IP,
		DeviceFingerprint: req.Data.DeviceFingerprint,
		DeclaredCountry:   req.Data.DeclaredCountry,
		IPCountry:         req.Data.IPCountry,
	}

	outcome, entry, err := h.ingestor.Process(r.Context(), event)
	if errors.Is(err, paymentservice.ErrMalformedEvent) {
		// Permanent rejection: acknowledged so the processor stops
		// retrying an event that can never be applied.
		utils.RespondWithJSON(w, http.StatusOK, dto.WebhookAckDTO{Outcome: string(outcome)})
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "transient failure")
		return
	}

	ack := dto.WebhookAckDTO{Outcome: string(outcome)}
	if entry != nil {
		ack.EntryID = entry.ID
	}
	utils.RespondWithJSON(w, http.StatusOK, ack)
}
