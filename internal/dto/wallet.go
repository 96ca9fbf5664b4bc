package dto

import "time"

type BalanceResponseDTO struct {
	Balance      int64 `json:"balance" example:"1000"`
	BonusBalance int64 `json:"bonus_balance" example:"50"`
	TotalEarned  int64 `json:"total_earned" example:"2500"`
	TotalSpent   int64 `json:"total_spent" example:"1500"`
	Version      int64 `json:"version" example:"12"`
}

type CreditRequestDTO struct {
	Type   string `json:"type" validate:"required,oneof=purchase gift_received game_win reward bonus_claim" example:"game_win"`
	Amount int64  `json:"amount" validate:"gte=0" example:"250"`
	EntryContextDTO
}

type DebitRequestDTO struct {
	Type      string `json:"type" validate:"required,oneof=gift_sent game_stake game_loss subscription_purchase withdrawal" example:"game_stake"`
	Amount    int64  `json:"amount" validate:"gte=0" example:"100"`
	FromBonus bool   `json:"from_bonus,omitempty"`
	EntryContextDTO
}

// EntryContextDTO carries the type-specific context fields; only the group
// matching the entry type is read.
type EntryContextDTO struct {
	PaymentID      string `json:"payment_id,omitempty"`
	PaymentGateway string `json:"payment_gateway,omitempty"`
	GameID         string `json:"game_id,omitempty"`
	SessionID      string `json:"session_id,omitempty"`
	GiftID         string `json:"gift_id,omitempty"`
	StreamID       string `json:"stream_id,omitempty"`
	PlanID         string `json:"plan_id,omitempty"`
	Period         string `json:"period,omitempty"`
	PayoutID       string `json:"payout_id,omitempty"`
	Method         string `json:"method,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type ClaimBonusRequestDTO struct {
	Amount int64 `json:"amount" validate:"required,gt=0" example:"25"`
}

type ClaimBonusResponseDTO struct {
	Claimed bool             `json:"claimed"`
	Entry   EntryResponseDTO `json:"entry"`
}

type EntryResponseDTO struct {
	ID            string     `json:"id" example:"6ba7b810-9dad-11d1-80b4-00c04fd430c8"`
	Type          string     `json:"type" example:"purchase"`
	Amount        int64      `json:"amount" example:"1000"`
	BalanceBefore int64      `json:"balance_before" example:"0"`
	BalanceAfter  int64      `json:"balance_after" example:"1000"`
	Status        string     `json:"status" example:"completed"`
	RiskLevel     string     `json:"risk_level" example:"low"`
	Hash          string     `json:"hash"`
	PreviousHash  string     `json:"previous_hash"`
	CreatedAt     time.Time  `json:"created_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

type VerifyChainResponseDTO struct {
	Valid          bool   `json:"valid"`
	OffendingEntry string `json:"offending_entry,omitempty"`
}
