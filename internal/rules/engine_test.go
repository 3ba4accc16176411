package rules

import (
	"context"
	"strings"
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
)

func goodCandidate() *models.SignalCandidate {
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

func goodSnapshot() *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Symbol:        "EURUSD",
		Price:         1.0848,
		ChangePercent: 0.4,
		Provider:      "test",
		Timestamp:     time.Now(),
	}
}

func TestEvaluateAllPass(t *testing.T) {
	e := NewEngine(NewRegistry(DefaultRules()), time.Second, nil)
	score, warnings := e.Evaluate(context.Background(), goodCandidate(), goodSnapshot())
	if score != 1 {
		t.Fatalf("expected score 1, got %v (warnings %v)", score, warnings)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestEvaluateZeroVolumeDrainsConfidence(t *testing.T) {
	e := NewEngine(NewRegistry(DefaultRules()), time.Second, nil)
	c := goodCandidate()
	c.Volume = 0

	score, warnings := e.Evaluate(context.Background(), c, goodSnapshot())
	if score*100 >= 60 {
		t.Fatalf("expected confidence below 60, got %v", score*100)
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "volume confirmation") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected volume warning, got %v", warnings)
	}
}

func TestEvaluateInactiveRuleSkipped(t *testing.T) {
	reg := NewRegistry(DefaultRules())
	off := false
	if _, err := reg.Update("volume-confirmation", nil, &off); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := reg.Update("trend-alignment", nil, &off); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := reg.Update("liquidity-floor", nil, &off); err != nil {
		t.Fatalf("update: %v", err)
	}

	e := NewEngine(reg, time.Second, nil)
	c := goodCandidate()
	c.Volume = 0

	score, warnings := e.Evaluate(context.Background(), c, goodSnapshot())
	if score != 1 {
		t.Fatalf("expected score 1 with volume rules disabled, got %v (%v)", score, warnings)
	}
}

func TestEvaluateNoActiveRules(t *testing.T) {
	reg := NewRegistry(nil)
	e := NewEngine(reg, time.Second, nil)

	score, warnings := e.Evaluate(context.Background(), goodCandidate(), goodSnapshot())
	if score != 0 {
		t.Fatalf("expected score 0, got %v", score)
	}
	if len(warnings) != 1 || warnings[0] != "no active validation rules" {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestEvaluateUnknownKindWarnsNotAborts(t *testing.T) {
	reg := NewRegistry([]Rule{
		{ID: "pa", Name: "Price Action", Kind: KindPriceAction, Weight: 0.5, IsActive: true},
	})
	// bypass Add validation to simulate a kind removed from a newer build
	reg.snapshot.Store(append(reg.Snapshot(), Rule{
		ID: "ghost", Name: "Ghost", Kind: Kind("ghost"), Weight: 0.5, IsActive: true,
	}))

	e := NewEngine(reg, time.Second, nil)
	score, warnings := e.Evaluate(context.Background(), goodCandidate(), goodSnapshot())
	if score != 0.5 {
		t.Fatalf("expected 0.5, got %v", score)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "could not be evaluated") {
		t.Fatalf("unexpected warnings %v", warnings)
	}
}

func TestRunRulePanicRecovered(t *testing.T) {
	evaluators[Kind("test_panic")] = func(*models.SignalCandidate, *models.MarketSnapshot) bool {
		panic("boom")
	}
	defer delete(evaluators, Kind("test_panic"))

	e := NewEngine(NewRegistry(nil), time.Second, nil)
	rule := Rule{ID: "p", Name: "Panicky", Kind: Kind("test_panic"), Weight: 1, IsActive: true}
	passed, err := e.runRule(context.Background(), rule, goodCandidate(), goodSnapshot())
	if passed || err == nil {
		t.Fatalf("expected recovered panic error, got passed=%v err=%v", passed, err)
	}
}

func TestRunRuleTimeout(t *testing.T) {
	evaluators[Kind("test_slow")] = func(*models.SignalCandidate, *models.MarketSnapshot) bool {
		time.Sleep(200 * time.Millisecond)
		return true
	}
	defer delete(evaluators, Kind("test_slow"))

	e := NewEngine(NewRegistry(nil), 10*time.Millisecond, nil)
	rule := Rule{ID: "s", Name: "Slow", Kind: Kind("test_slow"), Weight: 1, IsActive: true}
	_, err := e.runRule(context.Background(), rule, goodCandidate(), goodSnapshot())
	if err != ErrRuleTimeout {
		t.Fatalf("expected ErrRuleTimeout, got %v", err)
	}
}
