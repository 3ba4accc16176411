package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/rules"
)

type nopMetrics struct{}

func (nopMetrics) RecordValidation(string, bool) {}
func (nopMetrics) RecordProviderAttempt(string, bool) {}
func (nopMetrics) RecordCacheHit(bool) {}
func (nopMetrics) RecordPublish(string) {}
func (nopMetrics) RecordDeliveryDropped(string) {}
func (nopMetrics) RecordError(string) {}
func (nopMetrics) RecordLatency(string, float64) {}
func (nopMetrics) SetRingDepth(int) {}
func (nopMetrics) SetActiveSubscribers(int) {}

type fakeMarket struct {
	snap *models.MarketSnapshot
	err  error
}

func (m *fakeMarket) FetchSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func (m *fakeMarket) FetchMany(ctx context.Context, symbols []string) (map[string]*models.MarketSnapshot, map[string]error) {
	out := make(map[string]*models.MarketSnapshot)
	fails := make(map[string]error)
	for _, s := range symbols {
		if m.err != nil {
			fails[s] = m.err
			continue
		}
		out[s] = m.snap
	}
	return out, fails
}

func (m *fakeMarket) CacheSize() int { return 0 }

func (m *fakeMarket) ProviderFailures() map[string]int { return nil }

func eurusdCandidate() *models.SignalCandidate {
	return &models.SignalCandidate{
		Symbol:      "EURUSD",
		Direction:   models.DirectionBuy,
		Price:       1.0850,
		TargetPrice: 1.0950,
		StopLoss:    1.0800,
		Timeframe:   models.TF1h,
		Volume:      2_000_000,
	}
}

func eurusdSnapshot() *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:        "EURUSD",
		Price:         1.0848,
		ChangePercent: 0.4,
		Provider:      "test",
		Timestamp:     time.Now(),
	}
}

func newTestValidator(market *fakeMarket) *Validator {
	engine := rules.NewEngine(rules.NewRegistry(rules.DefaultRules()), time.Second, nil)
	return NewValidator(market, engine, nopMetrics{}, nil, 60, 8, 5*time.Second)
}

func TestValidateAccepted(t *testing.T) {
	v := newTestValidator(&fakeMarket{snap: eurusdSnapshot()})

	sig, err := v.Validate(context.Background(), eurusdCandidate())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !sig.IsValid {
		t.Fatalf("expected accepted, warnings %v", sig.Warnings)
	}
	if sig.Confidence < 60 {
		t.Fatalf("confidence %v", sig.Confidence)
	}
	if sig.RiskScore > 8 {
		t.Fatalf("risk %v", sig.RiskScore)
	}
	if sig.Snapshot == nil || sig.Snapshot.Provider != "test" {
		t.Fatalf("missing snapshot")
	}
	if sig.ValidatedAt.IsZero() {
		t.Fatalf("missing timestamp")
	}
}

func TestValidateZeroVolumeRejected(t *testing.T) {
	v := newTestValidator(&fakeMarket{snap: eurusdSnapshot()})
	c := eurusdCandidate()
	c.Volume = 0

	sig, err := v.Validate(context.Background(), c)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sig.IsValid {
		t.Fatalf("expected rejection")
	}
	if sig.Confidence >= 60 {
		t.Fatalf("confidence %v", sig.Confidence)
	}
	found := false
	for _, w := range sig.Warnings {
		if strings.Contains(w, "volume") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected volume warning, got %v", sig.Warnings)
	}
}

func TestValidateMarketDataUnavailable(t *testing.T) {
	v := newTestValidator(&fakeMarket{err: errors.New("all providers failed")})

	sig, err := v.Validate(context.Background(), eurusdCandidate())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sig.IsValid {
		t.Fatalf("expected rejection without market data")
	}
	if sig.Confidence != 0 {
		t.Fatalf("confidence %v", sig.Confidence)
	}
	if sig.Snapshot != nil {
		t.Fatalf("snapshot must not be fabricated")
	}
	found := false
	for _, w := range sig.Warnings {
		if w == "market data unavailable" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unavailable warning, got %v", sig.Warnings)
	}
}

func TestValidateHighRiskRejected(t *testing.T) {
	v := newTestValidator(&fakeMarket{snap: &models.MarketSnapshot{
		Symbol: "PENNY", Price: 1.00, ChangePercent: 1, Provider: "test", Timestamp: time.Now(),
	}})
	c := &models.SignalCandidate{
		Symbol:      "PENNY",
		Direction:   models.DirectionBuy,
		Price:       1.00,
		TargetPrice: 1.60,
		StopLoss:    0.80,
		Timeframe:   models.TF1m,
		Volume:      2_000_000,
	}

	sig, err := v.Validate(context.Background(), c)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	// 1m base 9 plus wide stop pushes risk past the ceiling
	if sig.RiskScore <= 8 {
		t.Fatalf("risk %v", sig.RiskScore)
	}
	if sig.IsValid {
		t.Fatalf("expected rejection on risk alone")
	}
	found := false
	for _, r := range sig.Recommendations {
		if strings.Contains(r, "position size") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected risk recommendation, got %v", sig.Recommendations)
	}
}

func TestValidateManyPreservesOrder(t *testing.T) {
	v := newTestValidator(&fakeMarket{snap: eurusdSnapshot()})

	good := eurusdCandidate()
	bad := eurusdCandidate()
	bad.Volume = 0

	signals, err := v.ValidateMany(context.Background(), []*models.SignalCandidate{good, bad, good})
	if err != nil {
		t.Fatalf("validate many: %v", err)
	}
	if len(signals) != 3 {
		t.Fatalf("len %d", len(signals))
	}
	if !signals[0].IsValid || signals[1].IsValid || !signals[2].IsValid {
		t.Fatalf("verdicts %v %v %v", signals[0].IsValid, signals[1].IsValid, signals[2].IsValid)
	}
}
