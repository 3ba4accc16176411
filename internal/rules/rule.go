package rules

import (
	"math"

	"SignalPipe/internal/domain/models"
)

// Kind tags a rule with its evaluation behavior. Rules are dispatched by
// kind rather than carrying closures, so the registry stays serializable
// and snapshots are cheap to copy.
type Kind string

const (
	KindPriceAction        Kind = "price_action"
	KindVolumeConfirmation Kind = "volume_confirmation"
	KindRiskReward         Kind = "risk_reward"
	KindTrendAlignment     Kind = "trend_alignment"
	KindVolatilityBound    Kind = "volatility_bound"
	KindLiquidityFloor     Kind = "liquidity_floor"
)

// EvalFunc decides whether a candidate passes a rule given the current
// market snapshot. Must be pure: no IO, no shared state.
type EvalFunc func(c *models.SignalCandidate, s *models.MarketSnapshot) bool

// Rule is one weighted, toggleable validation rule.
type Rule struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	Weight      float64 // 0-1; weights need not sum to 1, scores are weight-normalized
	IsActive    bool
}

// Evaluation thresholds for the built-in rule kinds.
const (
	maxPriceDeviation = 0.10 // candidate price vs market price
	minRiskReward     = 1.5
	maxDailyMovePct   = 10.0
	minLiquidityCap   = 10_000_000
	minLiquidityVol   = 1_000_000
)

var evaluators = map[Kind]EvalFunc{
	KindPriceAction:        evalPriceAction,
	KindVolumeConfirmation: evalVolumeConfirmation,
	KindRiskReward:         evalRiskReward,
	KindTrendAlignment:     evalTrendAlignment,
	KindVolatilityBound:    evalVolatilityBound,
	KindLiquidityFloor:     evalLiquidityFloor,
}

// EvaluatorFor returns the evaluation function for a kind, or nil.
func EvaluatorFor(k Kind) EvalFunc {
	return evaluators[k]
}

// IsValidKind returns true if k names a known rule kind.
func IsValidKind(k Kind) bool {
	_, ok := evaluators[k]
	return ok
}

func evalPriceAction(c *models.SignalCandidate, s *models.MarketSnapshot) bool {
	if c.Price <= 0 || s == nil || s.Price <= 0 {
		return false
	}
	if math.Abs(c.Price-s.Price)/s.Price > maxPriceDeviation {
		return false
	}
	switch c.Direction {
	case models.DirectionBuy:
		return c.StopLoss < c.Price && c.Price < c.TargetPrice
	case models.DirectionSell:
		return c.TargetPrice < c.Price && c.Price < c.StopLoss
	default:
		return true
	}
}

func evalVolumeConfirmation(c *models.SignalCandidate, _ *models.MarketSnapshot) bool {
	return c.Volume > 0
}

func evalRiskReward(c *models.SignalCandidate, _ *models.MarketSnapshot) bool {
	return c.RiskReward() >= minRiskReward
}

// Trend alignment needs participation: a move without volume behind it is
// not a trend confirmation.
func evalTrendAlignment(c *models.SignalCandidate, s *models.MarketSnapshot) bool {
	if s == nil || c.Volume <= 0 {
		return false
	}
	switch c.Direction {
	case models.DirectionBuy:
		return s.ChangePercent >= 0
	case models.DirectionSell:
		return s.ChangePercent <= 0
	default:
		return true
	}
}

func evalVolatilityBound(_ *models.SignalCandidate, s *models.MarketSnapshot) bool {
	return s != nil && math.Abs(s.ChangePercent) <= maxDailyMovePct
}

// Liquidity floor on market cap; candidates without a market cap fall back
// to the volume floor.
func evalLiquidityFloor(c *models.SignalCandidate, _ *models.MarketSnapshot) bool {
	if c.MarketCap > 0 {
		return c.MarketCap >= minLiquidityCap
	}
	return c.Volume >= minLiquidityVol
}
