package hub

import (
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
)

func TestRegistryConnectAndDisconnect(t *testing.T) {
	reg := NewRegistry(5, time.Minute, time.Minute, nopMetrics{}, nil)

	sub := reg.Connect(models.TransportPush)
	if sub.ID == "" || sub.Out() == nil {
		t.Fatalf("bad push subscriber %+v", sub)
	}
	if reg.Count() != 1 {
		t.Fatalf("count %d", reg.Count())
	}

	reg.Disconnect(sub.ID)
	if reg.Count() != 0 {
		t.Fatalf("count after disconnect %d", reg.Count())
	}
	if _, ok := <-sub.Out(); ok {
		t.Fatalf("channel not closed")
	}
}

func TestRegistryHeartbeat(t *testing.T) {
	reg := NewRegistry(5, time.Minute, time.Minute, nopMetrics{}, nil)
	sub := reg.Connect(models.TransportPoll)

	if !reg.Heartbeat(sub.ID) {
		t.Fatalf("heartbeat rejected")
	}
	if reg.Heartbeat("unknown") {
		t.Fatalf("heartbeat accepted for unknown id")
	}
}

func TestRegistrySweepExpiresInactive(t *testing.T) {
	reg := NewRegistry(5, 50*time.Millisecond, time.Minute, nopMetrics{}, nil)
	stale := reg.Connect(models.TransportPush)
	fresh := reg.Connect(models.TransportPoll)

	time.Sleep(60 * time.Millisecond)
	reg.Heartbeat(fresh.ID)
	reg.sweep(time.Now())

	if reg.Count() != 1 {
		t.Fatalf("count %d", reg.Count())
	}
	if _, ok := reg.subs[stale.ID]; ok {
		t.Fatalf("stale subscriber survived")
	}
	if _, ok := <-stale.Out(); ok {
		t.Fatalf("stale channel not closed")
	}
	if !reg.Heartbeat(fresh.ID) {
		t.Fatalf("fresh subscriber expired")
	}
}

func TestEnsurePollIdempotent(t *testing.T) {
	reg := NewRegistry(5, time.Minute, time.Minute, nopMetrics{}, nil)

	a := reg.EnsurePoll("client-1")
	b := reg.EnsurePoll("client-1")
	if a != b {
		t.Fatalf("expected same subscriber")
	}
	if reg.Count() != 1 {
		t.Fatalf("count %d", reg.Count())
	}
	if a.Transport != models.TransportPoll {
		t.Fatalf("transport %s", a.Transport)
	}
}
