package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SignalPipe/internal/domain/models"
	applogger "SignalPipe/pkg/logger"
)

var ErrRuleTimeout = errors.New("rule evaluation timed out")

// Engine scores candidates against the registry's active rule set.
type Engine struct {
	registry    *Registry
	ruleTimeout time.Duration
	log         *applogger.Logger
}

// NewEngine creates a rule engine.
func NewEngine(registry *Registry, ruleTimeout time.Duration, log *applogger.Logger) *Engine {
	if ruleTimeout <= 0 {
		ruleTimeout = 2 * time.Second
	}
	return &Engine{registry: registry, ruleTimeout: ruleTimeout, log: log}
}

// Registry returns the underlying rule registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Evaluate runs every active rule against the candidate and returns the
// weight-normalized score (0-1) plus one warning per failed rule. A rule
// that errors, panics, or exceeds its time budget counts as failed; it
// never aborts the evaluation.
func (e *Engine) Evaluate(ctx context.Context, c *models.SignalCandidate, s *models.MarketSnapshot) (float64, []string) {
	snapshot := e.registry.Snapshot()

	var totalWeight, passedWeight float64
	var warnings []string

	for _, rule := range snapshot {
		if !rule.IsActive {
			continue
		}
		totalWeight += rule.Weight

		passed, err := e.runRule(ctx, rule, c, s)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("rule %s could not be evaluated: %v", rule.Name, err))
			if e.log != nil {
				e.log.Warn("rule evaluation failure",
					applogger.String("rule", rule.ID),
					applogger.Error(err),
				)
			}
			continue
		}
		if passed {
			passedWeight += rule.Weight
		} else {
			warnings = append(warnings, fmt.Sprintf("rule failed: %s", rule.Name))
		}
	}

	if totalWeight <= 0 {
		// No active rules means nothing vouches for the candidate.
		return 0, append(warnings, "no active validation rules")
	}
	return passedWeight / totalWeight, warnings
}

type ruleResult struct {
	passed bool
	err    error
}

func (e *Engine) runRule(ctx context.Context, rule Rule, c *models.SignalCandidate, s *models.MarketSnapshot) (bool, error) {
	eval := EvaluatorFor(rule.Kind)
	if eval == nil {
		return false, fmt.Errorf("unknown rule kind %q", rule.Kind)
	}

	done := make(chan ruleResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- ruleResult{err: fmt.Errorf("rule panicked: %v", r)}
			}
		}()
		done <- ruleResult{passed: eval(c, s)}
	}()

	timer := time.NewTimer(e.ruleTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.passed, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	case <-timer.C:
		return false, ErrRuleTimeout
	}
}
