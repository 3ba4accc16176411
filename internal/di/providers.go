package di

import (
	"context"
	"fmt"
	"time"

	"SignalPipe/internal/domain/repository"
	"SignalPipe/internal/handler/api"
	"SignalPipe/internal/hub"
	"SignalPipe/internal/marketdata"
	internalrepo "SignalPipe/internal/repository"
	"SignalPipe/internal/rules"
	"SignalPipe/internal/service/ratelimit"
	"SignalPipe/internal/usecase"
	"SignalPipe/pkg/cache"
	pkgch "SignalPipe/pkg/clickhouse"
	"SignalPipe/pkg/config"
	xhttp "SignalPipe/pkg/http"
	pkgkafka "SignalPipe/pkg/kafka"
	applogger "SignalPipe/pkg/logger"
	"SignalPipe/pkg/metrics"
	"SignalPipe/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSnapshotCache builds the snapshot cache for the configured backend.
func ProvideSnapshotCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.MarketData.CacheBackend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		return newRedisCache(cfg)
	case "layered":
		redis, err := newRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(redis), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.MarketData.CacheBackend)
	}
}

func newRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	return cache.NewRedisCache(
		cache.WithRedisHost(cfg.MarketData.Redis.Host),
		cache.WithRedisPort(cfg.MarketData.Redis.Port),
		cache.WithRedisPassword(cfg.MarketData.Redis.Password),
		cache.WithRedisDB(cfg.MarketData.Redis.DB),
		cache.WithRedisPrefix(cfg.MarketData.Redis.Prefix),
	)
}

// ProvideMarketData creates the provider-backed market data gateway.
func ProvideMarketData(cfg *config.Config, c cache.Service, m repository.Metrics, log *applogger.Logger) repository.MarketData {
	providers := make([]marketdata.Provider, 0, len(cfg.MarketData.Providers))
	for _, p := range cfg.MarketData.Providers {
		providers = append(providers, marketdata.NewHTTPProvider(p.Name, p.BaseURL, p.APIKey, p.Timeout))
	}
	return marketdata.NewGateway(providers, c, cfg.MarketData.CacheTTL, m, log,
		marketdata.WithBulkDelay(cfg.MarketData.BulkDelay),
	)
}

// ProvideRuleRegistry seeds the registry from config, falling back to the
// built-in rule set when none is configured.
func ProvideRuleRegistry(cfg *config.Config) *rules.Registry {
	return rules.NewRegistry(rules.RulesFromConfig(cfg.Validation.Rules))
}

// ProvideRuleEngine creates the rule engine.
func ProvideRuleEngine(registry *rules.Registry, cfg *config.Config, log *applogger.Logger) *rules.Engine {
	return rules.NewEngine(registry, cfg.Validation.RuleTimeout, log)
}

// ProvideValidator creates the signal validator use case.
func ProvideValidator(
	market repository.MarketData,
	engine *rules.Engine,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Validator {
	return usecase.NewValidator(market, engine, m, log,
		cfg.Validation.MinConfidence,
		cfg.Validation.MaxRisk,
		cfg.Validation.OverallTimeout,
	)
}

// ProvideSubscriptionRegistry creates the subscriber registry.
func ProvideSubscriptionRegistry(cfg *config.Config, m repository.Metrics, log *applogger.Logger) *hub.Registry {
	return hub.NewRegistry(
		cfg.Hub.SubscriberBuffer,
		cfg.Registry.InactivityTimeout,
		cfg.Registry.SweepInterval,
		m,
		log,
	)
}

// ProvideHub creates the distribution hub.
func ProvideHub(cfg *config.Config, registry *hub.Registry, m repository.Metrics, log *applogger.Logger) *hub.Hub {
	return hub.New(hub.NewRing(cfg.Hub.RingCapacity), registry, m, log)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// history sink is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSignalStorage creates the signal history sink, or nil when disabled.
func ProvideSignalStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseHistory(chClient.DB(), cfg.ClickHouse.Table)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the broker publisher, or nil when disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil || cfg.Kafka.SignalsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalsTopic)
}

// ProvidePipeline ties validation to distribution.
func ProvidePipeline(
	validator *usecase.Validator,
	h *hub.Hub,
	pub repository.Publisher,
	store repository.Storage,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(validator, h, pub, store, m, log)
}

// ProvideKafkaConsumer creates the intake consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.IntakeTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideIntakeHandler registers the intake topic handler, or nil when the
// intake path is disabled.
func ProvideIntakeHandler(pipeline *usecase.Pipeline, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.IntakeTopic == "" {
		return nil
	}
	return usecase.NewKafkaIntakeHandler(cfg.Kafka.IntakeTopic, pipeline, m)
}

// ProvideRateLimiter creates the per-client submission limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler assembles the API router.
func ProvideHTTPHandler(
	log *applogger.Logger,
	pipeline *usecase.Pipeline,
	h *hub.Hub,
	market repository.MarketData,
	limiter *ratelimit.Limiter,
	registry *rules.Registry,
	cfg *config.Config,
) xhttp.Handler {
	signals := api.NewSignalsHandler(log, pipeline, h, market, limiter, api.RateLimitConfig{
		Enabled:   cfg.Server.RateLimit.Enabled,
		PerSecond: cfg.Server.RateLimit.PerSecond,
		Burst:     cfg.Server.RateLimit.Burst,
	})
	ruleAdmin := api.NewRulesHandler(log, registry)
	stream := api.NewStreamHandler(log, h)
	return api.NewRouter(signals, ruleAdmin, stream)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	registry *hub.Registry,
	pipeline *usecase.Pipeline,
	consumer *pkgkafka.Consumer,
	intake pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handler, registry, pipeline, consumer, intake, chClient)
}
