package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-shipment-tracker/internal/platform/temporal"
	orderactivities "github.com/Apurer/go-shipment-tracker/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-shipment-tracker/internal/platform/temporal/workflows/orders"
)

const serviceName = "shipment-tracker-worker"

// Run polls the status notification task queue until interrupted.
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

	temporalClient, err := platformtemporal.Dial(platformtemporal.Settings{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	}, instruments, "temporal-worker")
	if err != nil {
		return fmt.Errorf("create Temporal client: %w", err)
	}
	defer temporalClient.Close()

	activities := orderactivities.NewActivities(notify.NewLogMailer(logger))
	w := worker.New(temporalClient, orderworkflows.StatusNotificationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.StatusNotificationWorkflow, workflow.RegisterOptions{Name: orderworkflows.StatusNotificationWorkflowName})
	w.RegisterActivityWithOptions(activities.SendStatusEmail, activity.RegisterOptions{Name: orderactivities.SendStatusEmailActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.StatusNotificationTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	interrupt := make(chan interface{})
	go func() {
		<-ctx.Done()
		close(interrupt)
	}()
	if err := w.Run(interrupt); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Temporal worker stopped")
	return nil
}
