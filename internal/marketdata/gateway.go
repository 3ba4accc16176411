package marketdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/domain/repository"
	"SignalPipe/pkg/cache"
	applogger "SignalPipe/pkg/logger"
)

// ErrAllProvidersFailed is returned when every configured provider failed
// for a symbol. Callers must propagate the absence of data; a price is
// never synthesized.
var ErrAllProvidersFailed = errors.New("market data: all providers failed")

const snapshotKeyPrefix = "snapshot"

// Gateway fetches market snapshots with provider fallback, a TTL cache, and
// single-flight collapsing of concurrent misses per symbol.
type Gateway struct {
	providers []Provider
	cache     cache.Service
	ttl       time.Duration
	bulkDelay time.Duration
	metrics   repository.Metrics
	log       *applogger.Logger

	group singleflight.Group

	mu       sync.Mutex
	failures map[string]int // consecutive failures per provider
}

// GatewayOption configures Gateway.
type GatewayOption func(*Gateway)

// WithBulkDelay sets the inter-request delay used by FetchMany.
func WithBulkDelay(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		if d > 0 {
			g.bulkDelay = d
		}
	}
}

// NewGateway creates a market data gateway.
func NewGateway(providers []Provider, c cache.Service, ttl time.Duration, metrics repository.Metrics, log *applogger.Logger, opts ...GatewayOption) *Gateway {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	g := &Gateway{
		providers: providers,
		cache:     c,
		ttl:       ttl,
		bulkDelay: 200 * time.Millisecond,
		metrics:   metrics,
		log:       log,
		failures:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchSnapshot returns the latest snapshot for a symbol, from cache when
// fresh, otherwise from the first provider that answers.
func (g *Gateway) FetchSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	key := cache.Key(snapshotKeyPrefix, symbol)

	var cached models.MarketSnapshot
	if err := g.cache.Get(ctx, key, &cached); err == nil {
		g.metrics.RecordCacheHit(true)
		return &cached, nil
	}
	g.metrics.RecordCacheHit(false)

	v, err, _ := g.group.Do(symbol, func() (interface{}, error) {
		return g.fetchUpstream(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.MarketSnapshot), nil
}

func (g *Gateway) fetchUpstream(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	for _, p := range g.providers {
		snap, err := p.Quote(ctx, symbol)
		g.metrics.RecordProviderAttempt(p.Name(), err == nil)
		if err != nil {
			g.recordFailure(p.Name())
			if g.log != nil {
				g.log.Warn("provider fetch failed",
					applogger.String("provider", p.Name()),
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		g.resetFailure(p.Name())
		if err := g.cache.Set(ctx, cache.Key(snapshotKeyPrefix, symbol), snap, g.ttl); err != nil && g.log != nil {
			g.log.Warn("snapshot cache set failed", applogger.Error(err))
		}
		return snap, nil
	}
	return nil, ErrAllProvidersFailed
}

// FetchMany fetches snapshots for several symbols with a small delay between
// upstream calls to stay under provider rate limits. Failures are reported
// per symbol.
func (g *Gateway) FetchMany(ctx context.Context, symbols []string) (map[string]*models.MarketSnapshot, map[string]error) {
	snapshots := make(map[string]*models.MarketSnapshot, len(symbols))
	failures := make(map[string]error)

	for i, symbol := range symbols {
		if i > 0 {
			select {
			case <-ctx.Done():
				failures[symbol] = ctx.Err()
				continue
			case <-time.After(g.bulkDelay):
			}
		}
		snap, err := g.FetchSnapshot(ctx, symbol)
		if err != nil {
			failures[symbol] = err
			continue
		}
		snapshots[symbol] = snap
	}
	return snapshots, failures
}

// CacheSize reports the number of cached snapshots.
func (g *Gateway) CacheSize() int {
	n, err := g.cache.Len(context.Background())
	if err != nil {
		return 0
	}
	return n
}

// ProviderFailures returns the current consecutive-failure count per provider.
func (g *Gateway) ProviderFailures() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make(map[string]int, len(g.failures))
	for name, n := range g.failures {
		out[name] = n
	}
	return out
}

func (g *Gateway) recordFailure(name string) {
	g.mu.Lock()
	g.failures[name]++
	g.mu.Unlock()
}

func (g *Gateway) resetFailure(name string) {
	g.mu.Lock()
	g.failures[name] = 0
	g.mu.Unlock()
}
