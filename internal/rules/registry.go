package rules

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry holds the active rule set. Readers get an immutable snapshot via
// atomic load; writers rebuild the slice under a mutex and swap it in, so a
// running evaluation never observes a partial mutation.
type Registry struct {
	mu       sync.Mutex
	snapshot atomic.Value // []Rule
}

// NewRegistry creates a registry seeded with the given rules.
func NewRegistry(seed []Rule) *Registry {
	r := &Registry{}
	rules := make([]Rule, len(seed))
	copy(rules, seed)
	r.snapshot.Store(rules)
	return r
}

// Snapshot returns the current rule set. The returned slice must not be
// mutated by callers.
func (r *Registry) Snapshot() []Rule {
	return r.snapshot.Load().([]Rule)
}

// Get returns the rule with the given id.
func (r *Registry) Get(id string) (Rule, bool) {
	for _, rule := range r.Snapshot() {
		if rule.ID == id {
			return rule, true
		}
	}
	return Rule{}, false
}

// Add registers a new rule. Fails on duplicate id or unknown kind.
func (r *Registry) Add(rule Rule) error {
	if rule.ID == "" {
		return fmt.Errorf("rule id is required")
	}
	if !IsValidKind(rule.Kind) {
		return fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
	if rule.Weight < 0 || rule.Weight > 1 {
		return fmt.Errorf("rule weight must be within [0,1]")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.Snapshot()
	for _, existing := range current {
		if existing.ID == rule.ID {
			return fmt.Errorf("rule %q already registered", rule.ID)
		}
	}

	next := make([]Rule, len(current), len(current)+1)
	copy(next, current)
	next = append(next, rule)
	r.snapshot.Store(next)
	return nil
}

// Update adjusts weight and/or active flag of an existing rule.
func (r *Registry) Update(id string, weight *float64, isActive *bool) (Rule, error) {
	if weight != nil && (*weight < 0 || *weight > 1) {
		return Rule{}, fmt.Errorf("rule weight must be within [0,1]")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.Snapshot()
	next := make([]Rule, len(current))
	copy(next, current)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		if weight != nil {
			next[i].Weight = *weight
		}
		if isActive != nil {
			next[i].IsActive = *isActive
		}
		r.snapshot.Store(next)
		return next[i], nil
	}
	return Rule{}, fmt.Errorf("rule %q not found", id)
}

// Remove deletes a rule from the set.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.Snapshot()
	next := make([]Rule, 0, len(current))
	found := false
	for _, rule := range current {
		if rule.ID == id {
			found = true
			continue
		}
		next = append(next, rule)
	}
	if !found {
		return fmt.Errorf("rule %q not found", id)
	}
	r.snapshot.Store(next)
	return nil
}
