package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SignalPipe/internal/hub"
	"SignalPipe/internal/usecase"
	pkgch "SignalPipe/pkg/clickhouse"
	"SignalPipe/pkg/config"
	xhttp "SignalPipe/pkg/http"
	pkgkafka "SignalPipe/pkg/kafka"
	applogger "SignalPipe/pkg/logger"
)

// App encapsulates the application lifecycle: subscription sweeping, the
// optional Kafka intake consumer, and the HTTP server.
type App struct {
	cfg      *config.Config
	log      *applogger.Logger
	handler  xhttp.Handler
	registry *hub.Registry
	pipeline *usecase.Pipeline
	consumer *pkgkafka.Consumer
	intake   pkgkafka.MessageHandler
	chClient *pkgch.Client

	httpServer *xhttp.Server
}

// New creates a new App instance. consumer, intake, and chClient may be nil
// when the corresponding backend is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	registry *hub.Registry,
	pipeline *usecase.Pipeline,
	consumer *pkgkafka.Consumer,
	intake pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		registry: registry,
		pipeline: pipeline,
		consumer: consumer,
		intake:   intake,
		chClient: chClient,
	}
}

// Run starts every component and blocks until interrupted.
func (a *App) Run() error {
	metricsPath := a.cfg.Metrics.Path
	if !a.cfg.Metrics.Enabled {
		metricsPath = ""
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	a.registry.Start()
	a.log.Info("subscription registry started",
		applogger.Duration("sweep_interval", a.cfg.Registry.SweepInterval),
		applogger.Duration("inactivity_timeout", a.cfg.Registry.InactivityTimeout),
	)

	if a.consumer != nil && a.intake != nil {
		a.consumer.RegisterHandler(a.intake)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka intake started", applogger.String("topic", a.intake.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops components in reverse start order: stop accepting HTTP
// traffic, drain the consumer, then release backends.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.registry.Stop()
	a.pipeline.Close()

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
