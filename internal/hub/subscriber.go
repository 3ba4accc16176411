package hub

import (
	"sync"
	"time"

	"SignalPipe/internal/domain/models"
)

// Subscriber is one connected client. Push subscribers own a bounded
// outbound channel; poll subscribers only track liveness and a cursor held
// client-side.
type Subscriber struct {
	ID        string
	Transport models.Transport

	mu       sync.Mutex
	lastSeen time.Time
	closed   bool
	out      chan *models.ValidatedSignal
}

func newSubscriber(id string, transport models.Transport, buffer int) *Subscriber {
	s := &Subscriber{
		ID:        id,
		Transport: transport,
		lastSeen:  time.Now(),
	}
	if transport == models.TransportPush {
		s.out = make(chan *models.ValidatedSignal, buffer)
	}
	return s
}

// Out exposes the delivery channel for push subscribers (nil for poll).
func (s *Subscriber) Out() <-chan *models.ValidatedSignal {
	return s.out
}

// LastSeen returns the last heartbeat time.
func (s *Subscriber) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Subscriber) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// trySend enqueues without blocking. Returns false when the buffer is full
// or the subscriber is already closed; the publisher never waits on a slow
// client.
func (s *Subscriber) trySend(sig *models.ValidatedSignal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.out == nil {
		return false
	}
	select {
	case s.out <- sig:
		return true
	default:
		return false
	}
}

// close shuts the delivery channel exactly once.
func (s *Subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.out != nil {
		close(s.out)
	}
}
