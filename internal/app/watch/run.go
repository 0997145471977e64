package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-shipment-tracker/internal/clients/http/tracker"
	ordertypes "github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/watcher"
	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
)

const serviceName = "shipment-tracker-watch"

// Run issues the optional status update and then watches until ctx is cancelled.
// Events go to out; logs go to stderr.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithLogOutput(os.Stderr),
		platformobservability.WithLogLevel(cfg.LogLevel),
		platformobservability.WithTraceExporter(platformobservability.ExporterNone),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	client, err := tracker.NewClient(cfg.APIURL, nil)
	if err != nil {
		return err
	}
	return watch(ctx, cfg, client, NewPrinter(out), instruments.Logger)
}

// Service is what a watch session needs from the tracker.
type Service interface {
	watcher.ListFetcher
	watcher.DetailFetcher
	UpdateStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.StatusUpdateResult, error)
}

func watch(ctx context.Context, cfg Config, svc Service, printer *Printer, logger *slog.Logger) error {
	if cfg.SetStatus != "" {
		if err := setStatus(ctx, cfg, svc, printer); err != nil {
			return err
		}
	}

	var (
		refresh  func() bool
		start    func(context.Context)
		stop     func()
		snapshot *watcher.Snapshot
	)
	if cfg.OrderID != "" {
		w := watcher.NewDetailWatcher(svc, cfg.OrderID, printer,
			watcher.WithInterval(cfg.DetailInterval),
			watcher.WithLogger(logger),
		)
		refresh, start, stop, snapshot = w.Refresh, w.Start, w.Stop, w.Snapshot()
	} else {
		w := watcher.NewListWatcher(svc, printer,
			watcher.WithFilter(cfg.Filter),
			watcher.WithInterval(cfg.ListInterval),
			watcher.WithLogger(logger),
		)
		refresh, start, stop, snapshot = w.Refresh, w.Start, w.Stop, w.Snapshot()
	}

	refresh()
	printer.Baseline(snapshot.Copy())
	start(ctx)
	<-ctx.Done()
	stop()
	return nil
}

func setStatus(ctx context.Context, cfg Config, svc Service, printer *Printer) error {
	var metadata map[string]any
	if cfg.Note != "" {
		metadata = map[string]any{"note": cfg.Note}
	}
	result, err := svc.UpdateStatus(ctx, ordertypes.UpdateStatusInput{
		OrderID:  cfg.OrderID,
		Status:   cfg.SetStatus,
		Source:   cfg.Source,
		Metadata: metadata,
	})
	var transitionErr *domain.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return fmt.Errorf("order %s cannot move from %s to %s", cfg.OrderID, transitionErr.From, transitionErr.To)
	case err != nil:
		return fmt.Errorf("update order %s: %w", cfg.OrderID, err)
	}
	printer.UpdateResult(result)
	return nil
}
