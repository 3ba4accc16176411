package hub

import (
	"fmt"
	"testing"

	"SignalPipe/internal/domain/models"
)

func sig(i int) *models.ValidatedSignal {
	return &models.ValidatedSignal{
		Candidate: models.SignalCandidate{Symbol: fmt.Sprintf("SYM%d", i)},
		IsValid:   true,
	}
}

func TestRingSinceInOrder(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 5; i++ {
		r.Append(sig(i))
	}

	got, cursor, truncated := r.Since(0, 0)
	if truncated {
		t.Fatalf("unexpected truncation")
	}
	if cursor != 5 || len(got) != 5 {
		t.Fatalf("cursor=%d len=%d", cursor, len(got))
	}
	for i, s := range got {
		if s.Candidate.Symbol != fmt.Sprintf("SYM%d", i) {
			t.Fatalf("out of order at %d: %s", i, s.Candidate.Symbol)
		}
	}
}

func TestRingSinceFromCursor(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 8; i++ {
		r.Append(sig(i))
	}

	got, cursor, truncated := r.Since(5, 0)
	if truncated || cursor != 8 || len(got) != 3 {
		t.Fatalf("truncated=%v cursor=%d len=%d", truncated, cursor, len(got))
	}
	if got[0].Candidate.Symbol != "SYM5" {
		t.Fatalf("unexpected first %s", got[0].Candidate.Symbol)
	}
}

func TestRingEvictionMarksTruncated(t *testing.T) {
	r := NewRing(100)
	for i := 0; i < 150; i++ {
		r.Append(sig(i))
	}
	if r.Depth() != 100 {
		t.Fatalf("depth %d", r.Depth())
	}

	got, cursor, truncated := r.Since(0, 0)
	if !truncated {
		t.Fatalf("expected truncation")
	}
	if len(got) != 100 || cursor != 150 {
		t.Fatalf("len=%d cursor=%d", len(got), cursor)
	}
	if got[0].Candidate.Symbol != "SYM50" || got[99].Candidate.Symbol != "SYM149" {
		t.Fatalf("window %s..%s", got[0].Candidate.Symbol, got[99].Candidate.Symbol)
	}
}

func TestRingSinceLimit(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 10; i++ {
		r.Append(sig(i))
	}

	got, cursor, _ := r.Since(0, 3)
	if len(got) != 3 || cursor != 3 {
		t.Fatalf("len=%d cursor=%d", len(got), cursor)
	}
	// resuming from the returned cursor continues without gaps
	got, cursor, truncated := r.Since(cursor, 3)
	if truncated || got[0].Candidate.Symbol != "SYM3" || cursor != 6 {
		t.Fatalf("resume failed: %s cursor=%d", got[0].Candidate.Symbol, cursor)
	}
}

func TestRingSinceAtHead(t *testing.T) {
	r := NewRing(10)
	r.Append(sig(0))

	got, cursor, truncated := r.Since(1, 0)
	if got != nil || cursor != 1 || truncated {
		t.Fatalf("expected empty read at head")
	}
}
