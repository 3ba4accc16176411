package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"SignalPipe/internal/domain/models"
	drepo "SignalPipe/internal/domain/repository"
	"SignalPipe/internal/rules"
	applogger "SignalPipe/pkg/logger"
)

// Validator scores signal candidates against live market data and the rule
// set, producing an accept/reject verdict. It never fabricates market data:
// when every provider is down the candidate is rejected outright.
type Validator struct {
	market  drepo.MarketData
	engine  *rules.Engine
	metrics drepo.Metrics
	log     *applogger.Logger

	minConfidence  float64
	maxRisk        float64
	overallTimeout time.Duration
}

// NewValidator creates a new Validator instance.
func NewValidator(
	market drepo.MarketData,
	engine *rules.Engine,
	metrics drepo.Metrics,
	log *applogger.Logger,
	minConfidence float64,
	maxRisk float64,
	overallTimeout time.Duration,
) *Validator {
	if overallTimeout <= 0 {
		overallTimeout = 20 * time.Second
	}
	return &Validator{
		market:         market,
		engine:         engine,
		metrics:        metrics,
		log:            log,
		minConfidence:  minConfidence,
		maxRisk:        maxRisk,
		overallTimeout: overallTimeout,
	}
}

// Validate runs the full validation pass for one candidate. The returned
// signal always carries the risk score and any warnings collected along the
// way, even when the verdict is a rejection.
func (v *Validator) Validate(ctx context.Context, c *models.SignalCandidate) (*models.ValidatedSignal, error) {
	if c == nil {
		return nil, fmt.Errorf("candidate is nil")
	}

	ctx, cancel := context.WithTimeout(ctx, v.overallTimeout)
	defer cancel()

	start := time.Now()
	sig := &models.ValidatedSignal{
		Candidate:   *c,
		RiskScore:   rules.RiskScore(c),
		ValidatedAt: time.Now().UTC(),
	}

	snapshot, err := v.market.FetchSnapshot(ctx, c.Symbol)
	if err != nil {
		sig.Warnings = append(sig.Warnings, "market data unavailable")
		sig.Recommendations = append(sig.Recommendations, "retry once market data recovers")
		v.metrics.RecordError("market_data")
		v.metrics.RecordValidation(c.Symbol, false)
		if v.log != nil {
			v.log.Warn("validation without market data",
				applogger.String("symbol", c.Symbol),
				applogger.Error(err),
			)
		}
		return sig, nil
	}
	sig.Snapshot = snapshot

	score, warnings := v.engine.Evaluate(ctx, c, snapshot)
	sig.Confidence = math.Round(score * 100)
	sig.Warnings = append(sig.Warnings, warnings...)
	sig.IsValid = sig.Confidence >= v.minConfidence && sig.RiskScore <= v.maxRisk
	sig.Recommendations = v.recommend(sig)

	v.metrics.RecordValidation(c.Symbol, sig.IsValid)
	v.metrics.RecordLatency("validate", time.Since(start).Seconds())
	return sig, nil
}

// ValidateMany validates candidates sequentially, preserving input order.
// One failing candidate never aborts the batch.
func (v *Validator) ValidateMany(ctx context.Context, candidates []*models.SignalCandidate) ([]*models.ValidatedSignal, error) {
	out := make([]*models.ValidatedSignal, 0, len(candidates))
	for _, c := range candidates {
		sig, err := v.Validate(ctx, c)
		if err != nil {
			return out, err
		}
		out = append(out, sig)
	}
	return out, nil
}

func (v *Validator) recommend(sig *models.ValidatedSignal) []string {
	var recs []string
	c := &sig.Candidate

	if sig.IsValid && sig.Confidence < 70 {
		recs = append(recs, "confidence is marginal, await stronger confirmation")
	}
	if sig.RiskScore > 7 {
		recs = append(recs, "elevated risk, reduce position size")
	}
	if sig.Snapshot != nil && c.Direction == models.DirectionBuy && c.TargetPrice > 0 {
		remaining := (c.TargetPrice - sig.Snapshot.Price) / sig.Snapshot.Price
		if remaining >= 0 && remaining < 0.05 {
			recs = append(recs, "price already near target, consider adjusting entry")
		}
	}
	return recs
}
