package review

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/pkg/clients"
)

// Notifier queues flagged entries for manual review by posting them to the
// trust-and-safety service. Cases are never dropped: delivery failures are
// logged as alertable so the review queue can be reconciled from the flagged
// entries themselves.
type Notifier struct {
	url    string
	client clients.HTTPClientI
}

func New(url string, client clients.HTTPClientI) *Notifier {
	return &Notifier{
		url:    url,
		client: client,
	}
}

type reviewCase struct {
	EntryID    string    `json:"entry_id"`
	UserID     int64     `json:"user_id"`
	Type       string    `json:"type"`
	Amount     int64     `json:"amount"`
	RiskLevel  string    `json:"risk_level"`
	FraudScore float64   `json:"fraud_score"`
	Reason     string    `json:"reason"`
	QueuedAt   time.Time `json:"queued_at"`
}

func (n *Notifier) Notify(ctx context.Context, entry *domain.LedgerEntry, reason string) {
	if n.url == "" {
		zap.L().Warn("flagged entry queued for manual review (no review endpoint configured)",
			zap.String("entryID", entry.ID),
			zap.Int64("userID", entry.UserID),
			zap.String("reason", reason),
			zap.Bool("alert", true),
		)
		return
	}

	payload, err := json.Marshal(reviewCase{
		EntryID:    entry.ID,
		UserID:     entry.UserID,
		Type:       string(entry.Type),
		Amount:     entry.Amount,
		RiskLevel:  string(entry.RiskLevel),
		FraudScore: entry.FraudScore,
		Reason:     reason,
		QueuedAt:   time.Now().UTC(),
	})
	if err != nil {
		zap.L().Error("can't encode review case", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		zap.L().Error("can't build review request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		zap.L().Error("can't deliver review case",
			zap.String("entryID", entry.ID),
			zap.Bool("alert", true),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		zap.L().Error("review service rejected case",
			zap.String("entryID", entry.ID),
			zap.Int("status", resp.StatusCode),
			zap.Bool("alert", true),
		)
		return
	}
	zap.L().Info("flagged entry queued for manual review",
		zap.String("entryID", entry.ID),
		zap.String("reason", reason),
	)
}
