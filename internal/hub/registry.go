package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/domain/repository"
	applogger "SignalPipe/pkg/logger"
)

// Registry tracks subscriber liveness. A background sweep removes anyone
// whose last heartbeat is older than the inactivity timeout and closes its
// push channel.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	buffer     int
	inactivity time.Duration
	sweepEvery time.Duration

	metrics repository.Metrics
	log     *applogger.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRegistry creates a subscription registry.
func NewRegistry(buffer int, inactivity, sweepEvery time.Duration, metrics repository.Metrics, log *applogger.Logger) *Registry {
	if buffer <= 0 {
		buffer = 100
	}
	if inactivity <= 0 {
		inactivity = 90 * time.Second
	}
	if sweepEvery <= 0 {
		sweepEvery = 30 * time.Second
	}
	return &Registry{
		subs:       make(map[string]*Subscriber),
		buffer:     buffer,
		inactivity: inactivity,
		sweepEvery: sweepEvery,
		metrics:    metrics,
		log:        log,
		stopCh:     make(chan struct{}),
	}
}

// Connect registers a new subscriber and returns it.
func (r *Registry) Connect(transport models.Transport) *Subscriber {
	sub := newSubscriber(uuid.NewString(), transport, r.buffer)

	r.mu.Lock()
	r.subs[sub.ID] = sub
	n := len(r.subs)
	r.mu.Unlock()

	r.metrics.SetActiveSubscribers(n)
	if r.log != nil {
		r.log.Info("subscriber connected",
			applogger.String("subscriber", sub.ID),
			applogger.String("transport", string(transport)),
		)
	}
	return sub
}

// EnsurePoll returns the poll subscriber with the given id, registering it
// when unknown (a restart legitimately forgets subscribers) and refreshing
// its liveness. An empty id gets a fresh registration.
func (r *Registry) EnsurePoll(id string) *Subscriber {
	if id == "" {
		return r.Connect(models.TransportPoll)
	}

	r.mu.RLock()
	sub, ok := r.subs[id]
	r.mu.RUnlock()
	if ok {
		sub.touch()
		return sub
	}

	sub = newSubscriber(id, models.TransportPoll, r.buffer)
	r.mu.Lock()
	if existing, ok := r.subs[id]; ok {
		sub = existing
	} else {
		r.subs[id] = sub
	}
	n := len(r.subs)
	r.mu.Unlock()

	sub.touch()
	r.metrics.SetActiveSubscribers(n)
	return sub
}

// Heartbeat refreshes a subscriber's liveness. Returns false when unknown.
func (r *Registry) Heartbeat(id string) bool {
	r.mu.RLock()
	sub, ok := r.subs[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	sub.touch()
	return true
}

// Disconnect removes a subscriber immediately.
func (r *Registry) Disconnect(id string) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	if ok {
		delete(r.subs, id)
	}
	n := len(r.subs)
	r.mu.Unlock()

	if !ok {
		return
	}
	sub.close()
	r.metrics.SetActiveSubscribers(n)
	if r.log != nil {
		r.log.Info("subscriber disconnected", applogger.String("subscriber", id))
	}
}

// PushSnapshot returns the current push subscribers. The set is fixed at
// call time, so a subscriber connecting mid-publish either fully receives
// or fully misses that publish.
func (r *Registry) PushSnapshot() []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Subscriber, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.Transport == models.TransportPush {
			out = append(out, sub)
		}
	}
	return out
}

// Count returns the number of live subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Start launches the background sweep.
func (r *Registry) Start() {
	go func() {
		ticker := time.NewTicker(r.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopCh:
				return
			case <-ticker.C:
				r.sweep(time.Now())
			}
		}
	}()
}

// Stop halts the background sweep.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

func (r *Registry) sweep(now time.Time) {
	var expired []*Subscriber

	r.mu.Lock()
	for id, sub := range r.subs {
		if now.Sub(sub.LastSeen()) > r.inactivity {
			delete(r.subs, id)
			expired = append(expired, sub)
		}
	}
	n := len(r.subs)
	r.mu.Unlock()

	if len(expired) == 0 {
		return
	}
	for _, sub := range expired {
		sub.close()
		if r.log != nil {
			r.log.Info("subscriber expired",
				applogger.String("subscriber", sub.ID),
				applogger.String("transport", string(sub.Transport)),
			)
		}
	}
	r.metrics.SetActiveSubscribers(n)
}
