package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/glowstream/coinledger/internal/domain"
	"github.com/glowstream/coinledger/internal/dto"
	"github.com/glowstream/coinledger/internal/service/paymentservice"
	"github.com/glowstream/coinledger/pkg/sign"
)

const testSecret = "webhook-secret"

func NewMock(t *testing.T) (*WebhookHandler, *MockIngestor) {
	ctrl := gomock.NewController(t)
	ingestor := NewMockIngestor(ctrl)
	handler := New(ingestor, testSecret)
	return handler, ingestor
}

func signedRequest(body, signature string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/payment", bytes.NewBufferString(body))
	r.Header.Set(signatureHeader, signature)
	return r
}

func TestHandlePaymentEvent(t *testing.T) {
	handler, ingestor := NewMock(t)

	purchaseBody := `{"id":"evt_1","type":"checkout.completed","data":{"user_id":1,"session_id":"sess_1","payment_id":"pay_1","gateway":"stripe","coins":1000}}`
	purchaseEvent := paymentservice.Event{
		ID:        "evt_1",
		Type:      "checkout.completed",
		SessionID: "sess_1",
		PaymentID: "pay_1",
		Gateway:   "stripe",
		UserID:    1,
		Coins:     1000,
	}

	tests := []struct {
		name            string
		body            string
		signature       string
		prepareMock     func()
		expectedCode    int
		expectedOutcome string
		expectedEntryID string
	}{
		{
			name:      "Purchase credited",
			body:      purchaseBody,
			signature: sign.Sign([]byte(testSecret), []byte(purchaseBody)),
			prepareMock: func() {
				ingestor.EXPECT().
					Process(gomock.Any(), purchaseEvent).
					Return(paymentservice.OutcomeCredited, &domain.LedgerEntry{ID: "entry-1"}, nil)
			},
			expectedCode:    http.StatusOK,
			expectedOutcome: "credited",
			expectedEntryID: "entry-1",
		},
		{
			name:      "Duplicate skipped",
			body:      purchaseBody,
			signature: sign.Sign([]byte(testSecret), []byte(purchaseBody)),
			prepareMock: func() {
				ingestor.EXPECT().
					Process(gomock.Any(), purchaseEvent).
					Return(paymentservice.OutcomeSkipped, nil, nil)
			},
			expectedCode:    http.StatusOK,
			expectedOutcome: "skipped",
		},
		{
			name:         "Invalid signature",
			body:         purchaseBody,
			signature:    "sha256=deadbeef",
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Missing signature",
			body:         purchaseBody,
			signature:    "",
			prepareMock:  func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:            "Undecodable body acknowledged",
			body:            `{"id":`,
			signature:       sign.Sign([]byte(testSecret), []byte(`{"id":`)),
			prepareMock:     func() {},
			expectedCode:    http.StatusOK,
			expectedOutcome: "rejected",
		},
		{
			name:            "Envelope without type acknowledged",
			body:            `{"id":"evt_1","data":{}}`,
			signature:       sign.Sign([]byte(testSecret), []byte(`{"id":"evt_1","data":{}}`)),
			prepareMock:     func() {},
			expectedCode:    http.StatusOK,
			expectedOutcome: "rejected",
		},
		{
			name:      "Malformed event acknowledged",
			body:      purchaseBody,
			signature: sign.Sign([]byte(testSecret), []byte(purchaseBody)),
			prepareMock: func() {
				ingestor.EXPECT().
					Process(gomock.Any(), purchaseEvent).
					Return(paymentservice.OutcomeRejected, nil, paymentservice.ErrMalformedEvent)
			},
			expectedCode:    http.StatusOK,
			expectedOutcome: "rejected",
		},
		{
			name:      "Transient failure retried",
			body:      purchaseBody,
			signature: sign.Sign([]byte(testSecret), []byte(purchaseBody)),
			prepareMock: func() {
				ingestor.EXPECT().
					Process(gomock.Any(), purchaseEvent).
					Return(paymentservice.Outcome(""), nil, errors.New("database error"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			w := httptest.NewRecorder()
			handler.HandlePaymentEvent(w, signedRequest(tt.body, tt.signature))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				var ack dto.WebhookAckDTO
				_ = json.NewDecoder(w.Body).Decode(&ack)
				assert.Equal(t, tt.expectedOutcome, ack.Outcome)
				assert.Equal(t, tt.expectedEntryID, ack.EntryID)
			}
		})
	}
}
