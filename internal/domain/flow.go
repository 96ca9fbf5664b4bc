package domain

import "fmt"

type flow struct {
	Source      FundSource
	Destination FundDestination
}

// allowedFlows constrains source/destination per entry type. An entry whose
// pair does not appear here is rejected before any write.
var allowedFlows = map[EntryType][]flow{
	TypePurchase:             {{SourcePurchase, DestWallet}},
	TypeGiftSent:             {{SourceWallet, DestGift}},
	TypeGiftReceived:         {{SourceGift, DestWallet}},
	TypeGameStake:            {{SourceWallet, DestGame}},
	TypeGameWin:              {{SourceGame, DestWallet}},
	TypeGameLoss:             {{SourceWallet, DestGame}},
	TypeReward:               {{SourceSystem, DestBonus}, {SourceSystem, DestWallet}},
	TypeSubscriptionPurchase: {{SourceWallet, DestSubscription}, {SourceBonus, DestSubscription}},
	TypeWithdrawal:           {{SourceWallet, DestExternal}},
	TypeRefund:               {{SourceWallet, DestExternal}},
	TypeBonusClaim:           {{SourceSystem, DestBonus}},
}

// ValidateFlow checks the source/destination pair against the per-type table.
func ValidateFlow(t EntryType, src FundSource, dst FundDestination) error {
	flows, ok := allowedFlows[t]
	if !ok {
		return fmt.Errorf("unknown entry type %q", t)
	}
	for _, f := range flows {
		if f.Source == src && f.Destination == dst {
			return nil
		}
	}
	return fmt.Errorf("flow %s->%s is not allowed for type %s", src, dst, t)
}

// DefaultFlow returns the canonical source/destination pair for a type.
func DefaultFlow(t EntryType) (FundSource, FundDestination, error) {
	flows, ok := allowedFlows[t]
	if !ok {
		return "", "", fmt.Errorf("unknown entry type %q", t)
	}
	return flows[0].Source, flows[0].Destination, nil
}
