package models

// Direction is the proposed trade side of a candidate.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// IsValid returns true if d is a supported direction.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionBuy, DirectionSell, DirectionHold:
		return true
	default:
		return false
	}
}

// Timeframe is the chart interval a candidate was generated on.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// IsValid returns true if tf is a supported timeframe.
func (tf Timeframe) IsValid() bool {
	switch tf {
	case TF1m, TF5m, TF15m, TF1h, TF4h, TF1d:
		return true
	default:
		return false
	}
}

// SignalCandidate is an unvalidated trading signal submitted by an external
// producer. Immutable once created.
type SignalCandidate struct {
	Symbol      string    `json:"symbol"`
	Direction   Direction `json:"direction"`
	Price       float64   `json:"price"`
	TargetPrice float64   `json:"targetPrice"`
	StopLoss    float64   `json:"stopLoss"`
	Timeframe   Timeframe `json:"timeframe"`
	Volume      int64     `json:"volume"`
	MarketCap   float64   `json:"marketCap,omitempty"`
}

// RiskReward returns the reward-to-risk ratio of the candidate's levels,
// or 0 when the stop distance is degenerate.
func (c *SignalCandidate) RiskReward() float64 {
	risk := c.Price - c.StopLoss
	if c.Direction == DirectionSell {
		risk = c.StopLoss - c.Price
	}
	reward := c.TargetPrice - c.Price
	if c.Direction == DirectionSell {
		reward = c.Price - c.TargetPrice
	}
	if risk <= 0 {
		return 0
	}
	return reward / risk
}
