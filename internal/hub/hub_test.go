package hub

import (
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
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

func newTestHub(ringCap, buffer int) *Hub {
	reg := NewRegistry(buffer, time.Minute, time.Minute, nopMetrics{}, nil)
	return New(NewRing(ringCap), reg, nopMetrics{}, nil)
}

func TestPublishFansOutToPushSubscribers(t *testing.T) {
	h := newTestHub(10, 5)
	a := h.Registry().Connect(models.TransportPush)
	b := h.Registry().Connect(models.TransportPush)

	h.Publish(sig(1))

	for _, sub := range []*Subscriber{a, b} {
		select {
		case got := <-sub.Out():
			if got.Candidate.Symbol != "SYM1" {
				t.Fatalf("unexpected signal %s", got.Candidate.Symbol)
			}
		default:
			t.Fatalf("subscriber %s got nothing", sub.ID)
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := newTestHub(10, 2)
	slow := h.Registry().Connect(models.TransportPush)

	for i := 0; i < 5; i++ {
		h.Publish(sig(i))
	}

	// only the first two deliveries fit; the rest were dropped, not queued
	var got []*models.ValidatedSignal
	for {
		select {
		case s := <-slow.Out():
			got = append(got, s)
			continue
		default:
		}
		break
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buffered deliveries, got %d", len(got))
	}
	if got[0].Candidate.Symbol != "SYM0" || got[1].Candidate.Symbol != "SYM1" {
		t.Fatalf("unexpected order %s %s", got[0].Candidate.Symbol, got[1].Candidate.Symbol)
	}

	// the subscriber is still registered and can catch up by polling
	res := h.Poll(slow.ID, 0, 0)
	if len(res.Signals) != 5 {
		t.Fatalf("poll recovery got %d", len(res.Signals))
	}
}

func TestPollRegistersUnknownSubscriber(t *testing.T) {
	h := newTestHub(10, 5)
	h.Publish(sig(1))

	res := h.Poll("", 0, 0)
	if res.SubscriberID == "" {
		t.Fatalf("expected assigned subscriber id")
	}
	if len(res.Signals) != 1 || res.Cursor != 1 || res.Truncated {
		t.Fatalf("unexpected poll %+v", res)
	}
	if h.Registry().Count() != 1 {
		t.Fatalf("subscriber not registered")
	}

	// same id keeps the registration
	res2 := h.Poll(res.SubscriberID, res.Cursor, 0)
	if res2.SubscriberID != res.SubscriberID || len(res2.Signals) != 0 {
		t.Fatalf("unexpected second poll %+v", res2)
	}
	if h.Registry().Count() != 1 {
		t.Fatalf("duplicate registration")
	}
}

func TestPollEmptyRing(t *testing.T) {
	h := newTestHub(10, 5)
	res := h.Poll("client-1", 0, 0)
	if res.Signals == nil || len(res.Signals) != 0 {
		t.Fatalf("expected empty slice, got %v", res.Signals)
	}
}

func TestSendToClosedSubscriberDoesNotPanic(t *testing.T) {
	h := newTestHub(10, 5)
	sub := h.Registry().Connect(models.TransportPush)

	// a publisher may hold a snapshot from before the sweep closed the
	// subscriber; the send must fail cleanly instead of panicking
	snapshot := h.Registry().PushSnapshot()
	h.Registry().Disconnect(sub.ID)

	for _, s := range snapshot {
		if s.trySend(sig(1)) {
			t.Fatalf("send succeeded on closed subscriber")
		}
	}
}
