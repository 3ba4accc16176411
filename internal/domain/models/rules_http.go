package models

// Requests for the signal and rule-admin HTTP endpoints. Defined in domain for
// consistency and reuse.

type ValidateRequest struct {
	Symbol      string  `json:"symbol" validate:"required"`
	Direction   string  `json:"direction" validate:"required,oneof=BUY SELL HOLD"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	TargetPrice float64 `json:"targetPrice" validate:"required,gt=0"`
	StopLoss    float64 `json:"stopLoss" validate:"required,gt=0"`
	Timeframe   string  `json:"timeframe" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Volume      int64   `json:"volume" validate:"gte=0"`
	MarketCap   float64 `json:"marketCap" validate:"gte=0"`
}

// Candidate converts the request into a domain candidate.
func (r *ValidateRequest) Candidate() SignalCandidate {
	return SignalCandidate{
		Symbol:      r.Symbol,
		Direction:   Direction(r.Direction),
		Price:       r.Price,
		TargetPrice: r.TargetPrice,
		StopLoss:    r.StopLoss,
		Timeframe:   Timeframe(r.Timeframe),
		Volume:      r.Volume,
		MarketCap:   r.MarketCap,
	}
}

type BatchValidateRequest struct {
	Candidates []ValidateRequest `json:"candidates" validate:"required,min=1,max=100,dive"`
}

type PollRequest struct {
	SubscriberID string `query:"subscriberId" json:"subscriberId"`
	Cursor       uint64 `query:"cursor" json:"cursor" validate:"gte=0"`
	Limit        int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type PollResponse struct {
	SubscriberID string             `json:"subscriberId"`
	Signals      []*ValidatedSignal `json:"signals"`
	Cursor       uint64             `json:"cursor"`
	Truncated    bool               `json:"truncated"`
}

type CreateRuleRequest struct {
	ID          string  `json:"id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Kind        string  `json:"kind" validate:"required,oneof=price_action volume_confirmation risk_reward trend_alignment volatility_bound liquidity_floor"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateRuleRequest struct {
	Weight   *float64 `json:"weight" validate:"omitempty,gte=0,lte=1"`
	IsActive *bool    `json:"isActive"`
}

type RuleResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Kind        string  `json:"kind"`
	Weight      float64 `json:"weight"`
	IsActive    bool    `json:"isActive"`
}

type HealthResponse struct {
	Status            string         `json:"status"`
	CacheSize         int            `json:"cacheSize"`
	ActiveSubscribers int            `json:"activeSubscribers"`
	RingBufferDepth   int            `json:"ringBufferDepth"`
	ProviderFailures  map[string]int `json:"providerFailures,omitempty"`
}
