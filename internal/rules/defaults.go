package rules

import (
	"SignalPipe/pkg/config"
)

// DefaultRules returns the stock rule set with the standard weights.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "price-action", Name: "price action plausibility", Description: "candidate price and levels consistent with the current market quote", Kind: KindPriceAction, Weight: 0.25, IsActive: true},
		{ID: "volume-confirmation", Name: "volume confirmation", Description: "candidate carries non-zero volume", Kind: KindVolumeConfirmation, Weight: 0.20, IsActive: true},
		{ID: "risk-reward", Name: "risk/reward ratio", Description: "reward at least 1.5x the risked distance", Kind: KindRiskReward, Weight: 0.20, IsActive: true},
		{ID: "trend-alignment", Name: "trend alignment", Description: "direction agrees with the current market move", Kind: KindTrendAlignment, Weight: 0.15, IsActive: true},
		{ID: "volatility-bound", Name: "volatility bound", Description: "market not in an outsized daily move", Kind: KindVolatilityBound, Weight: 0.10, IsActive: true},
		{ID: "liquidity-floor", Name: "liquidity floor", Description: "market cap or traded volume above the liquidity floor", Kind: KindLiquidityFloor, Weight: 0.10, IsActive: true},
	}
}

// RulesFromConfig builds the seed rule set from configuration, falling back
// to the defaults when none are configured. Unknown kinds are skipped.
func RulesFromConfig(cfg []config.RuleWeight) []Rule {
	if len(cfg) == 0 {
		return DefaultRules()
	}

	rules := make([]Rule, 0, len(cfg))
	for _, rw := range cfg {
		kind := Kind(rw.Kind)
		if !IsValidKind(kind) {
			continue
		}
		active := true
		if rw.IsActive != nil {
			active = *rw.IsActive
		}
		rules = append(rules, Rule{
			ID:          rw.ID,
			Name:        rw.Name,
			Description: rw.Description,
			Kind:        kind,
			Weight:      rw.Weight,
			IsActive:    active,
		})
	}
	if len(rules) == 0 {
		return DefaultRules()
	}
	return rules
}
