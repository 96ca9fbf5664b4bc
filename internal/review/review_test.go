package review

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/pkg/clients"
)

func NewMock(t *testing.T) (*Notifier, *clients.MockHTTPClientI) {
	ctrl := gomock.NewController(t)
	client := clients.NewMockHTTPClientI(ctrl)
	notifier := New("http://localhost:8091/cases", client)
	return notifier, client
}

func flaggedEntry() *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:         "entry-1",
		UserID:     1,
		Type:       domain.TypePurchase,
		Amount:     50000,
		Status:     domain.StatusFlagged,
		RiskLevel:  domain.RiskHigh,
		FraudScore: 75,
	}
}

func response(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func TestNotifier_Notify(t *testing.T) {
	notifier, client := NewMock(t)

	client.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "http://localhost:8091/cases", req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var payload reviewCase
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.Equal(t, "entry-1", payload.EntryID)
		assert.Equal(t, int64(1), payload.UserID)
		assert.Equal(t, "high", payload.RiskLevel)
		assert.Equal(t, "risk level high", payload.Reason)
		assert.False(t, payload.QueuedAt.IsZero())

		return response(http.StatusAccepted), nil
	})

	notifier.Notify(context.Background(), flaggedEntry(), "risk level high")
}

func TestNotifier_NotifyDeliveryFailure(t *testing.T) {
	notifier, client := NewMock(t)

	client.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection refused"))

	// Failures are logged as alertable, never surfaced to the write path.
	notifier.Notify(context.Background(), flaggedEntry(), "risk level high")
}

func TestNotifier_NotifyRejectedCase(t *testing.T) {
	notifier, client := NewMock(t)

	client.EXPECT().Do(gomock.Any()).Return(response(http.StatusServiceUnavailable), nil)

	notifier.Notify(context.Background(), flaggedEntry(), "risk level high")
}

func TestNotifier_NotifyWithoutEndpoint(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := clients.NewMockHTTPClientI(ctrl)
	notifier := New("", client)

	// No call reaches the client when no endpoint is configured.
	notifier.Notify(context.Background(), flaggedEntry(), "risk level high")
}
