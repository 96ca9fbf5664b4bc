package dto

// PaymentEventDTO is the provider-signed event envelope posted to the
// payment webhook endpoint.
type PaymentEventDTO struct {
	ID   string              `json:"id" validate:"required"`
	Type string              `json:"type" validate:"required"`
	Data PaymentEventDataDTO `json:"data"`
}

type PaymentEventDataDTO struct {
	UserID            int64  `json:"user_id"`
	SessionID         string `json:"session_id"`
	PaymentID         string `json:"payment_id"`
	Gateway           string `json:"gateway"`
	Coins             int64  `json:"coins"`
	IP                string `json:"ip,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	DeclaredCountry   string `json:"declared_country,omitempty"`
	IPCountry         string `json:"ip_country,omitempty"`
}

type WebhookAckDTO struct {
	Outcome string `json:"outcome" example:"credited"`
	EntryID string `json:"entry_id,omitempty"`
}
