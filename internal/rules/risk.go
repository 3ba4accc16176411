package rules

import (
	"math"

	"SignalPipe/internal/domain/models"
)

// Shorter timeframes carry more noise, so they start with a higher base.
var timeframeRisk = map[models.Timeframe]float64{
	models.TF1m:  9,
	models.TF5m:  8,
	models.TF15m: 7,
	models.TF1h:  6,
	models.TF4h:  5,
	models.TF1d:  4,
}

// RiskScore computes a deterministic 0-10 risk score from the candidate's
// shape alone. Independent of the weighted rule vote.
func RiskScore(c *models.SignalCandidate) float64 {
	score, ok := timeframeRisk[c.Timeframe]
	if !ok {
		score = 7
	}

	if c.Price > 0 {
		stopDistPct := math.Abs(c.Price-c.StopLoss) / c.Price * 100
		switch {
		case stopDistPct > 10:
			score += 2
		case stopDistPct > 5:
			score += 1
		}
	}

	if c.Volume < 1_000_000 {
		score += 1
	}
	if c.MarketCap > 0 && c.MarketCap < 10_000_000 {
		score += 1
	}

	return math.Min(score, 10)
}
