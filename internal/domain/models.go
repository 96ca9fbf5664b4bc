package domain

import "time"

type EntryType string

const (
	TypePurchase             EntryType = "purchase"
	TypeGiftSent             EntryType = "gift_sent"
	TypeGiftReceived         EntryType = "gift_received"
	TypeGameStake            EntryType = "game_stake"
	TypeGameWin              EntryType = "game_win"
	TypeGameLoss             EntryType = "game_loss"
	TypeReward               EntryType = "reward"
	TypeSubscriptionPurchase EntryType = "subscription_purchase"
	TypeWithdrawal           EntryType = "withdrawal"
	TypeRefund               EntryType = "refund"
	TypeBonusClaim           EntryType = "bonus_claim"
)

type EntryStatus string

const (
	StatusPending   EntryStatus = "pending"
	StatusCompleted EntryStatus = "completed"
	StatusFailed    EntryStatus = "failed"
	StatusCancelled EntryStatus = "cancelled"
	StatusFlagged   EntryStatus = "flagged"
)

type FundSource string

const (
	SourcePurchase FundSource = "purchase"
	SourceWallet   FundSource = "wallet"
	SourceBonus    FundSource = "bonus"
	SourceGame     FundSource = "game"
	SourceGift     FundSource = "gift"
	SourceSystem   FundSource = "system"
)

type FundDestination string

const (
	DestWallet       FundDestination = "wallet"
	DestBonus        FundDestination = "bonus"
	DestGame         FundDestination = "game"
	DestGift         FundDestination = "gift"
	DestExternal     FundDestination = "external"
	DestSubscription FundDestination = "subscription"
)

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

type LedgerEntry struct {
	ID                string          `db:"id"`
	UserID            int64           `db:"user_id"`
	CounterpartyID    *int64          `db:"counterparty_id"`
	Type              EntryType       `db:"type"`
	Amount            int64           `db:"amount"`
	BalanceBefore     int64           `db:"balance_before"`
	BalanceAfter      int64           `db:"balance_after"`
	Source            FundSource      `db:"source"`
	Destination       FundDestination `db:"destination"`
	Context           EntryContext    `db:"context"`
	Status            EntryStatus     `db:"status"`
	FraudScore        float64         `db:"fraud_score"`
	RiskLevel         RiskLevel       `db:"risk_level"`
	Hash              string          `db:"hash"`
	PreviousHash      string          `db:"previous_hash"`
	IdempotencyKey    *string         `db:"idempotency_key"`
	ExternalPaymentID *string         `db:"external_payment_id"`
	CreatedAt         time.Time       `db:"created_at"`
	ProcessedAt       *time.Time      `db:"processed_at"`
}

type BalanceAccount struct {
	UserID       int64     `db:"user_id"`
	Balance      int64     `db:"balance"`
	BonusBalance int64     `db:"bonus_balance"`
	TotalEarned  int64     `db:"total_earned"`
	TotalSpent   int64     `db:"total_spent"`
	Version      int64     `db:"version"`
	LastUpdated  time.Time `db:"last_updated"`
}

type IdempotencyStatus string

const (
	IdemInProgress IdempotencyStatus = "in_progress"
	IdemCompleted  IdempotencyStatus = "completed"
)

type IdempotencyRecord struct {
	Key       string            `db:"key"`
	ResultRef string            `db:"result_ref"`
	Status    IdempotencyStatus `db:"status"`
	CreatedAt time.Time         `db:"created_at"`
	ExpiresAt *time.Time        `db:"expires_at"`
}

// FraudSignal is the per-entry snapshot of velocity signals used as scoring
// input. It is recorded on the entry and never mutated afterwards.
type FraudSignal struct {
	TxCount24h       int64
	UniqueIPs24h     int64
	UniqueDevices24h int64
	AvgScore         float64
	CountryMismatch  bool
}

// FraudInput is the contextual slice of an operation handed to the scorer.
type FraudInput struct {
	UserID            int64
	IP                string
	DeviceFingerprint string
	DeclaredCountry   string
	IPCountry         string
	Amount            int64
	Type              EntryType
}

type FraudAssessment struct {
	FraudScore float64
	RiskLevel  RiskLevel
	Signal     FraudSignal
}

// IsCredit reports whether the type increases a balance.
func (t EntryType) IsCredit() bool {
	switch t {
	case TypePurchase, TypeGiftReceived, TypeGameWin, TypeReward, TypeBonusClaim:
		return true
	}
	return false
}

// CreditsBonus reports whether the credited amount lands on the bonus
// balance rather than the withdrawable one.
func (t EntryType) CreditsBonus() bool {
	return t == TypeBonusClaim || t == TypeReward
}
