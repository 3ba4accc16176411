package hub

import (
	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/domain/repository"
	applogger "SignalPipe/pkg/logger"
)

// Hub fans accepted signals out to push subscribers and retains them in the
// ring buffer for polling clients. Delivery is enqueue-only: a full or
// closed subscriber buffer drops that one delivery, the subscriber stays
// registered and can recover via polling.
type Hub struct {
	ring    *Ring
	reg     *Registry
	metrics repository.Metrics
	log     *applogger.Logger
}

// New creates a distribution hub.
func New(ring *Ring, reg *Registry, metrics repository.Metrics, log *applogger.Logger) *Hub {
	return &Hub{ring: ring, reg: reg, metrics: metrics, log: log}
}

// Publish appends the signal to the ring buffer and attempts one delivery
// to every current push subscriber.
func (h *Hub) Publish(sig *models.ValidatedSignal) {
	h.ring.Append(sig)
	h.metrics.SetRingDepth(h.ring.Depth())
	h.metrics.RecordPublish(sig.Candidate.Symbol)

	for _, sub := range h.reg.PushSnapshot() {
		if !sub.trySend(sig) {
			h.metrics.RecordDeliveryDropped(sub.ID)
			if h.log != nil {
				h.log.Warn("push delivery dropped",
					applogger.String("subscriber", sub.ID),
					applogger.String("symbol", sig.Candidate.Symbol),
				)
			}
		}
	}
}

// Poll returns signals after the cursor for the given subscriber,
// registering unknown poll subscribers on the fly.
func (h *Hub) Poll(subscriberID string, cursor uint64, limit int) *models.PollResponse {
	sub := h.reg.EnsurePoll(subscriberID)
	signals, next, truncated := h.ring.Since(cursor, limit)
	if signals == nil {
		signals = []*models.ValidatedSignal{}
	}
	return &models.PollResponse{
		SubscriberID: sub.ID,
		Signals:      signals,
		Cursor:       next,
		Truncated:    truncated,
	}
}

// Registry exposes the subscription registry.
func (h *Hub) Registry() *Registry {
	return h.reg
}

// Depth returns the current ring buffer depth.
func (h *Hub) Depth() int {
	return h.ring.Depth()
}
