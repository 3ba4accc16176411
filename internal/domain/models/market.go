package models

import "time"

// MarketSnapshot is the latest quote for a symbol as reported by one
// upstream provider. Owned by the market data gateway.
type MarketSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"changePercent,omitempty"`
	Volume        int64     `json:"volume,omitempty"`
	Provider      string    `json:"provider"`
	Timestamp     time.Time `json:"timestamp"`
}
