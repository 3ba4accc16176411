package rules

import (
	"sync"
	"testing"
)

func TestRegistryAddDuplicate(t *testing.T) {
	reg := NewRegistry(DefaultRules())
	err := reg.Add(Rule{ID: "price-action", Name: "dup", Kind: KindPriceAction, Weight: 0.5})
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestRegistryAddUnknownKind(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Add(Rule{ID: "x", Name: "x", Kind: Kind("nope"), Weight: 0.5})
	if err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestRegistryAddBadWeight(t *testing.T) {
	reg := NewRegistry(nil)
	err := reg.Add(Rule{ID: "x", Name: "x", Kind: KindPriceAction, Weight: 1.5})
	if err == nil {
		t.Fatalf("expected weight error")
	}
}

func TestRegistryUpdate(t *testing.T) {
	reg := NewRegistry(DefaultRules())
	w := 0.4
	off := false

	rule, err := reg.Update("risk-reward", &w, &off)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rule.Weight != 0.4 || rule.IsActive {
		t.Fatalf("unexpected rule %+v", rule)
	}

	got, ok := reg.Get("risk-reward")
	if !ok || got.Weight != 0.4 || got.IsActive {
		t.Fatalf("update not visible: %+v", got)
	}
}

func TestRegistryUpdateMissing(t *testing.T) {
	reg := NewRegistry(nil)
	if _, err := reg.Update("nope", nil, nil); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := NewRegistry(DefaultRules())
	if err := reg.Remove("liquidity-floor"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := reg.Get("liquidity-floor"); ok {
		t.Fatalf("rule still present")
	}
	if err := reg.Remove("liquidity-floor"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestRegistrySnapshotStableUnderWrites(t *testing.T) {
	reg := NewRegistry(DefaultRules())
	snap := reg.Snapshot()
	n := len(snap)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := 0.1
			_, _ = reg.Update("price-action", &w, nil)
		}(i)
	}
	wg.Wait()

	// the snapshot taken before the writes is untouched
	if len(snap) != n {
		t.Fatalf("snapshot mutated")
	}
	for _, r := range snap {
		if r.ID == "price-action" && r.Weight != 0.25 {
			t.Fatalf("old snapshot changed: %+v", r)
		}
	}
	got, _ := reg.Get("price-action")
	if got.Weight != 0.1 {
		t.Fatalf("write lost: %+v", got)
	}
}
