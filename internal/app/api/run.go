package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	trackerserver "github.com/Apurer/go-shipment-tracker/go"

	ordermemory "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	orderobs "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/observability"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/persistence/gormstore"
	orderworkflows "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/workflows"
	orderapp "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application"
	orderports "github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
	"github.com/Apurer/go-shipment-tracker/internal/platform/database"
	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-shipment-tracker/internal/platform/temporal"
)

const serviceName = "shipment-tracker-api"

// Run boots the tracker HTTP API with observability, the order store, notifications and events wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithLogLevel(cfg.LogLevel),
		platformobservability.WithTraceExporter(cfg.TraceExporter),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo, err := buildOrderRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupRepo()

	notifier, cleanupNotifier := buildNotifier(cfg, instruments)
	defer cleanupNotifier()
	publisher, cleanupPublisher := buildPublisher(cfg, logger)
	defer cleanupPublisher()

	coreService := orderapp.NewService(repo,
		orderapp.WithNotifier(notifier),
		orderapp.WithPublisher(publisher),
		orderapp.WithLogger(logger),
	)
	orderService := orderobs.New(
		coreService,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	handlers := trackerserver.ApiHandleFunctions{
		OrderAPI: trackerserver.NewOrderAPI(orderService),
		FeedAPI:  trackerserver.NewFeedAPI(orderService, cfg.FeedInterval, logger),
	}
	router := trackerserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))

	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("tracker API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("tracker API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("tracker API shutting down")
		return server.Shutdown(shutdownCtx)
	}
}

func buildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (orderports.Repository, func(), error) {
	if cfg.DatabaseDriver == database.DriverMemory {
		logger.Warn("DATABASE_DRIVER=memory, orders are lost on restart")
		return ordermemory.NewRepository(), func() {}, nil
	}
	db, cleanup, err := database.Open(ctx, database.Options{
		Driver:      cfg.DatabaseDriver,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open order store: %w", err)
	}
	return gormstore.NewRepository(db), cleanup, nil
}

func buildNotifier(cfg Config, instruments *platformobservability.Instruments) (orderports.Notifier, func()) {
	logger := instruments.Logger
	inline := notify.NewInlineNotifier(notify.NewLogMailer(logger), cfg.NotifyFrom)
	temporalClient, err := platformtemporal.Dial(platformtemporal.Settings{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Disabled:  cfg.TemporalDisabled,
	}, instruments, "temporal-client")
	if err != nil {
		logger.Warn("Temporal workflows unavailable, sending status emails inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return orderworkflows.NewTemporalNotifier(temporalClient, cfg.NotifyFrom), temporalClient.Close
}

func buildPublisher(cfg Config, logger *slog.Logger) (orderports.EventPublisher, func()) {
	if cfg.AMQPURL == "" {
		return messaging.NoopPublisher{}, func() {}
	}
	publisher, err := messaging.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.Warn("AMQP unavailable, order events are not published", slog.String("error", err.Error()))
		return messaging.NoopPublisher{}, func() {}
	}
	logger.Info("order events published to AMQP", slog.String("exchange", cfg.AMQPExchange))
	return publisher, func() { _ = publisher.Close() }
}
