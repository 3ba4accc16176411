package marketdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"SignalPipe/internal/domain/models"
	"SignalPipe/pkg/cache"
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

type fakeProvider struct {
	name  string
	fail  bool
	delay time.Duration
	calls int64
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	atomic.AddInt64(&p.calls, 1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.fail {
		return nil, errors.New("upstream down")
	}
	return &models.MarketSnapshot{
		Symbol:    symbol,
		Price:     100.5,
		Provider:  p.name,
		Timestamp: time.Now(),
	}, nil
}

func newTestGateway(ttl time.Duration, providers ...Provider) *Gateway {
	return NewGateway(providers, cache.NewMemoryCache(), ttl, nopMetrics{}, nil,
		WithBulkDelay(time.Millisecond))
}

func TestFetchSnapshotCachesResult(t *testing.T) {
	p := &fakeProvider{name: "alpha"}
	g := newTestGateway(time.Minute, p)

	for i := 0; i < 3; i++ {
		snap, err := g.FetchSnapshot(context.Background(), "AAPL")
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if snap.Price != 100.5 {
			t.Fatalf("price %v", snap.Price)
		}
	}
	if n := atomic.LoadInt64(&p.calls); n != 1 {
		t.Fatalf("expected 1 upstream call, got %d", n)
	}
	if g.CacheSize() != 1 {
		t.Fatalf("cache size %d", g.CacheSize())
	}
}

func TestFetchSnapshotRefreshesAfterTTL(t *testing.T) {
	p := &fakeProvider{name: "alpha"}
	g := newTestGateway(30*time.Millisecond, p)

	if _, err := g.FetchSnapshot(context.Background(), "AAPL"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := g.FetchSnapshot(context.Background(), "AAPL"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if n := atomic.LoadInt64(&p.calls); n != 2 {
		t.Fatalf("expected refresh after ttl, got %d calls", n)
	}
}

func TestFetchSnapshotFallsBackToSecondProvider(t *testing.T) {
	down := &fakeProvider{name: "down", fail: true}
	up := &fakeProvider{name: "up"}
	g := newTestGateway(time.Minute, down, up)

	snap, err := g.FetchSnapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if snap.Provider != "up" {
		t.Fatalf("provider %s", snap.Provider)
	}
	if g.ProviderFailures()["down"] != 1 {
		t.Fatalf("failure count %v", g.ProviderFailures())
	}
}

func TestFetchSnapshotAllProvidersFailed(t *testing.T) {
	g := newTestGateway(time.Minute,
		&fakeProvider{name: "a", fail: true},
		&fakeProvider{name: "b", fail: true},
	)

	_, err := g.FetchSnapshot(context.Background(), "AAPL")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
	if g.CacheSize() != 0 {
		t.Fatalf("failure must not be cached")
	}
}

func TestFetchSnapshotCollapsesConcurrentMisses(t *testing.T) {
	p := &fakeProvider{name: "slow", delay: 50 * time.Millisecond}
	g := newTestGateway(time.Minute, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.FetchSnapshot(context.Background(), "AAPL"); err != nil {
				t.Errorf("fetch: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&p.calls); n != 1 {
		t.Fatalf("expected 1 collapsed upstream call, got %d", n)
	}
}

func TestFetchManyReportsPerSymbolErrors(t *testing.T) {
	flaky := &flakySymbolProvider{bad: "BAD"}
	g := newTestGateway(time.Minute, flaky)

	snaps, fails := g.FetchMany(context.Background(), []string{"AAPL", "BAD", "MSFT"})
	if len(snaps) != 2 || len(fails) != 1 {
		t.Fatalf("snaps=%d fails=%d", len(snaps), len(fails))
	}
	if _, ok := fails["BAD"]; !ok {
		t.Fatalf("missing failure for BAD")
	}
}

type flakySymbolProvider struct {
	bad string
}

func (p *flakySymbolProvider) Name() string { return "flaky" }

func (p *flakySymbolProvider) Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	if symbol == p.bad {
		return nil, errors.New("no data")
	}
	return &models.MarketSnapshot{Symbol: symbol, Price: 10, Provider: "flaky", Timestamp: time.Now()}, nil
}
