package sign

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("test-secret")
	payload := []byte(`{"id":"evt_1","type":"checkout.completed"}`)

	signature := Sign(secret, payload)
	assert.True(t, len(signature) > len("sha256="))

	tests := []struct {
		name      string
		secret    []byte
		payload   []byte
		signature string
		valid     bool
	}{
		{
			name:      "Valid signature",
			secret:    secret,
			payload:   payload,
			signature: signature,
			valid:     true,
		},
		{
			name:      "Wrong secret",
			secret:    []byte("other-secret"),
			payload:   payload,
			signature: signature,
			valid:     false,
		},
		{
			name:      "Tampered payload",
			secret:    secret,
			payload:   []byte(`{"id":"evt_1","type":"charge.refunded"}`),
			signature: signature,
			valid:     false,
		},
		{
			name:      "Missing prefix",
			secret:    secret,
			payload:   payload,
			signature: "deadbeef",
			valid:     false,
		},
		{
			name:      "Not hex",
			secret:    secret,
			payload:   payload,
			signature: "sha256=zzzz",
			valid:     false,
		},
		{
			name:      "Empty signature",
			secret:    secret,
			payload:   payload,
			signature: "",
			valid:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, Verify(tt.secret, tt.payload, tt.signature))
		})
	}
}
