package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EntryContext carries the type-specific payload of a ledger entry. Each
// variant holds only the fields relevant to its entry type and is validated
// at construction. Contexts are persisted as a tagged JSON envelope.
type EntryContext interface {
	Kind() EntryType
	Validate() error
}

var ErrBadContext = errors.New("entry context does not match entry type")

type PurchaseContext struct {
	PaymentID      string `json:"payment_id"`
	PaymentGateway string `json:"payment_gateway"`
}

func (PurchaseContext) Kind() EntryType { return TypePurchase }

func (c PurchaseContext) Validate() error {
	if c.PaymentID == "" {
		return errors.New("purchase context: payment id is required")
	}
	if c.PaymentGateway == "" {
		return errors.New("purchase context: payment gateway is required")
	}
	return nil
}

type GameContext struct {
	GameID    string    `json:"game_id"`
	SessionID string    `json:"session_id"`
	Outcome   EntryType `json:"-"`
}

func (c GameContext) Kind() EntryType {
	if c.Outcome != "" {
		return c.Outcome
	}
	return TypeGameStake
}

func (c GameContext) Validate() error {
	if c.GameID == "" {
		return errors.New("game context: game id is required")
	}
	return nil
}

type GiftContext struct {
	GiftID   string    `json:"gift_id"`
	StreamID string    `json:"stream_id,omitempty"`
	Side     EntryType `json:"-"`
}

func (c GiftContext) Kind() EntryType {
	if c.Side != "" {
		return c.Side
	}
	return TypeGiftSent
}

func (c GiftContext) Validate() error {
	if c.GiftID == "" {
		return errors.New("gift context: gift id is required")
	}
	return nil
}

type RefundContext struct {
	OriginalEntryID string `json:"original_entry_id"`
	Shortfall       int64  `json:"shortfall,omitempty"`
}

func (RefundContext) Kind() EntryType { return TypeRefund }

func (c RefundContext) Validate() error {
	if c.OriginalEntryID == "" {
		return errors.New("refund context: original entry id is required")
	}
	if c.Shortfall < 0 {
		return errors.New("refund context: shortfall cannot be negative")
	}
	return nil
}

type SubscriptionContext struct {
	PlanID string `json:"plan_id"`
	Period string `json:"period"`
}

func (SubscriptionContext) Kind() EntryType { return TypeSubscriptionPurchase }

func (c SubscriptionContext) Validate() error {
	if c.PlanID == "" {
		return errors.New("subscription context: plan id is required")
	}
	return nil
}

type BonusContext struct {
	Day    string    `json:"day"`
	Reason string    `json:"reason,omitempty"`
	Typ    EntryType `json:"-"`
}

func (c BonusContext) Kind() EntryType {
	if c.Typ != "" {
		return c.Typ
	}
	return TypeBonusClaim
}

func (c BonusContext) Validate() error {
	if c.Day == "" && c.Reason == "" {
		return errors.New("bonus context: day or reason is required")
	}
	return nil
}

type WithdrawalContext struct {
	PayoutID string `json:"payout_id"`
	Method   string `json:"method,omitempty"`
}

func (WithdrawalContext) Kind() EntryType { return TypeWithdrawal }

func (c WithdrawalContext) Validate() error {
	if c.PayoutID == "" {
		return errors.New("withdrawal context: payout id is required")
	}
	return nil
}

// contextEnvelope is the persisted form: {"kind": <entry type>, "data": {...}}.
type contextEnvelope struct {
	Kind EntryType       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalContext encodes a context for storage.
func MarshalContext(c EntryContext) ([]byte, error) {
	if c == nil {
		return []byte(`null`), nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(contextEnvelope{Kind: c.Kind(), Data: data})
}

// UnmarshalContext decodes a stored context envelope back into its variant.
func UnmarshalContext(raw []byte) (EntryContext, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var env contextEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	decode := func(dst EntryContext) (EntryContext, error) {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return nil, err
		}
		return dst, nil
	}

	switch env.Kind {
	case TypePurchase:
		c := &PurchaseContext{}
		return decode(c)
	case TypeGameStake, TypeGameWin, TypeGameLoss:
		c := &GameContext{Outcome: env.Kind}
		return decode(c)
	case TypeGiftSent, TypeGiftReceived:
		c := &GiftContext{Side: env.Kind}
		return decode(c)
	case TypeRefund:
		c := &RefundContext{}
		return decode(c)
	case TypeSubscriptionPurchase:
		c := &SubscriptionContext{}
		return decode(c)
	case TypeBonusClaim, TypeReward:
		c := &BonusContext{Typ: env.Kind}
		return decode(c)
	case TypeWithdrawal:
		c := &WithdrawalContext{}
		return decode(c)
	}
	return nil, fmt.Errorf("unknown context kind %q", env.Kind)
}

// ValidateContext checks that a context is well-formed and matches the
// entry type it accompanies.
func ValidateContext(t EntryType, c EntryContext) error {
	if c == nil {
		return fmt.Errorf("%w: missing context for type %s", ErrBadContext, t)
	}
	if c.Kind() != t {
		return fmt.Errorf("%w: got %s context for type %s", ErrBadContext, c.Kind(), t)
	}
	return c.Validate()
}
