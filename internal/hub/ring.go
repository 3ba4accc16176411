package hub

import (
	"sync"

	"SignalPipe/internal/domain/models"
)

// Ring is a fixed-capacity FIFO retention buffer for validated signals.
// Cursors are absolute: the total number of signals ever appended. A cursor
// older than the oldest retained entry means the caller missed signals.
type Ring struct {
	mu    sync.RWMutex
	cap   int
	data  []*models.ValidatedSignal
	start int    // index of the oldest entry once the buffer wrapped
	total uint64 // signals ever appended; the head cursor
}

// NewRing creates a ring buffer with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 500
	}
	return &Ring{
		cap:  capacity,
		data: make([]*models.ValidatedSignal, 0, capacity),
	}
}

// Append adds a signal, evicting the oldest entry when full.
func (r *Ring) Append(s *models.ValidatedSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.data) < r.cap {
		r.data = append(r.data, s)
	} else {
		r.data[r.start] = s
		r.start = (r.start + 1) % r.cap
	}
	r.total++
}

// Since returns up to limit entries after the given cursor in append order,
// the new cursor, and whether entries were lost to eviction. limit <= 0
// means no limit.
func (r *Ring) Since(cursor uint64, limit int) ([]*models.ValidatedSignal, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	head := r.total
	retained := uint64(len(r.data))
	oldest := head - retained

	truncated := cursor < oldest
	from := cursor
	if truncated {
		from = oldest
	}
	if from >= head {
		return nil, head, truncated
	}

	n := int(head - from)
	if limit > 0 && n > limit {
		n = limit
	}

	out := make([]*models.ValidatedSignal, n)
	for i := 0; i < n; i++ {
		idx := (r.start + int(from-oldest) + i) % len(r.data)
		out[i] = r.data[idx]
	}
	return out, from + uint64(n), truncated
}

// Depth returns the number of retained entries.
func (r *Ring) Depth() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Head returns the current head cursor.
func (r *Ring) Head() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.total
}
