//go:build wireinject
// +build wireinject

package di

import (
	"SignalPipe/pkg/config"
	"SignalPipe/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Market data
		ProvideSnapshotCache,
		ProvideMarketData,

		// Rules
		ProvideRuleRegistry,
		ProvideRuleEngine,

		// Distribution
		ProvideSubscriptionRegistry,
		ProvideHub,

		// Backends
		ProvideClickHouseClient,
		ProvideSignalStorage,
		ProvideKafkaProducer,
		ProvideSignalPublisher,
		ProvideKafkaConsumer,

		// Use cases
		ProvideValidator,
		ProvidePipeline,
		ProvideIntakeHandler,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
