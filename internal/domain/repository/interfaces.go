package repository

import (
	"context"

	"SignalPipe/internal/domain/models"
)

// MarketData supplies current quotes for candidate validation.
type MarketData interface {
	FetchSnapshot(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
	FetchMany(ctx context.Context, symbols []string) (map[string]*models.MarketSnapshot, map[string]error)
	CacheSize() int
	ProviderFailures() map[string]int
}

// Publisher forwards accepted signals to an external broker.
type Publisher interface {
	Publish(ctx context.Context, s *models.ValidatedSignal) error
	PublishBatch(ctx context.Context, signals []*models.ValidatedSignal) error
	Close() error
}

// Storage persists validated signals for offline analysis. Best-effort: the
// pipeline never blocks on it.
type Storage interface {
	Store(ctx context.Context, s *models.ValidatedSignal) error
	StoreBatch(ctx context.Context, signals []*models.ValidatedSignal) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records pipeline observability counters.
type Metrics interface {
	RecordValidation(symbol string, accepted bool)
	RecordProviderAttempt(provider string, ok bool)
	RecordCacheHit(hit bool)
	RecordPublish(symbol string)
	RecordDeliveryDropped(subscriberID string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	SetRingDepth(n int)
	SetActiveSubscribers(n int)
}
