package usecase

import (
	"context"
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/hub"
)

func newTestPipeline(market *fakeMarket) (*Pipeline, *hub.Hub) {
	reg := hub.NewRegistry(5, time.Minute, time.Minute, nopMetrics{}, nil)
	h := hub.New(hub.NewRing(10), reg, nopMetrics{}, nil)
	return NewPipeline(newTestValidator(market), h, nil, nil, nopMetrics{}, nil), h
}

func TestSubmitDistributesAccepted(t *testing.T) {
	p, h := newTestPipeline(&fakeMarket{snap: eurusdSnapshot()})
	sub := h.Registry().Connect(models.TransportPush)

	sig, err := p.Submit(context.Background(), eurusdCandidate())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sig.IsValid {
		t.Fatalf("expected accepted, warnings %v", sig.Warnings)
	}

	select {
	case got := <-sub.Out():
		if got.Candidate.Symbol != "EURUSD" {
			t.Fatalf("unexpected delivery %s", got.Candidate.Symbol)
		}
	default:
		t.Fatalf("accepted signal not delivered")
	}
	if h.Depth() != 1 {
		t.Fatalf("ring depth %d", h.Depth())
	}
}

func TestSubmitSkipsRejected(t *testing.T) {
	p, h := newTestPipeline(&fakeMarket{snap: eurusdSnapshot()})
	c := eurusdCandidate()
	c.Volume = 0

	sig, err := p.Submit(context.Background(), c)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sig.IsValid {
		t.Fatalf("expected rejection")
	}
	if h.Depth() != 0 {
		t.Fatalf("rejected signal distributed")
	}
}

func TestSubmitBatchDistributesOnlyAccepted(t *testing.T) {
	p, h := newTestPipeline(&fakeMarket{snap: eurusdSnapshot()})

	good := eurusdCandidate()
	bad := eurusdCandidate()
	bad.Volume = 0

	signals, err := p.SubmitBatch(context.Background(), []*models.SignalCandidate{good, bad})
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("len %d", len(signals))
	}
	if h.Depth() != 1 {
		t.Fatalf("ring depth %d", h.Depth())
	}
}
