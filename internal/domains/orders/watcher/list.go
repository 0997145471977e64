package watcher

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/platform/schedule"
)

// ListFetcher loads the orders matching a filter. ports.Service and the HTTP
// tracker client both satisfy it.
type ListFetcher interface {
	ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error)
}

// ListWatcher polls a filtered order list and reports status changes.
type ListWatcher struct {
	fetcher  ListFetcher
	sink     Sink
	opts     options
	snapshot *Snapshot
	task     *schedule.Task

	mu     sync.RWMutex
	filter domain.Filter
}

// NewListWatcher builds a stopped watcher. Call Start to begin polling.
func NewListWatcher(fetcher ListFetcher, sink Sink, opts ...Option) *ListWatcher {
	if sink == nil {
		sink = discard
	}
	o := buildOptions(DefaultListInterval, opts)
	w := &ListWatcher{
		fetcher:  fetcher,
		sink:     sink,
		opts:     o,
		snapshot: NewSnapshot(),
		filter:   o.filter.Normalize(),
	}
	w.task = schedule.NewTask(o.interval, w.tick,
		schedule.WithName("orders.list_watcher"),
		schedule.WithLogger(o.logger),
	)
	return w
}

// Start begins periodic polling until ctx is cancelled or Stop is called.
func (w *ListWatcher) Start(ctx context.Context) { w.task.Start(ctx) }

// Stop halts polling and waits for an in-flight poll. No events are emitted afterwards.
func (w *ListWatcher) Stop() { w.task.Stop() }

// Refresh polls immediately in the caller's goroutine. It returns false when a poll
// was already running or the watcher is stopped.
func (w *ListWatcher) Refresh() bool { return w.task.RunNow() }

// SetFilter replaces the filter used by subsequent polls. The snapshot is kept.
func (w *ListWatcher) SetFilter(f domain.Filter) {
	w.mu.Lock()
	w.filter = f.Normalize()
	w.mu.Unlock()
}

// ApplyFilter sets the filter and polls right away.
func (w *ListWatcher) ApplyFilter(f domain.Filter) bool {
	w.SetFilter(f)
	return w.Refresh()
}

func (w *ListWatcher) Filter() domain.Filter {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.filter
}

// Snapshot exposes the watcher's last observed statuses.
func (w *ListWatcher) Snapshot() *Snapshot { return w.snapshot }

func (w *ListWatcher) tick(ctx context.Context) {
	filter := w.Filter()
	orders, err := w.fetcher.ListOrders(ctx, filter)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.opts.logger.LogAttrs(ctx, slog.LevelWarn, "order list fetch failed",
			slog.String("error", err.Error()),
		)
		w.sink.Emit(ctx, Event{Kind: KindFetchFailed, Err: err, ObservedAt: w.opts.now()})
		return
	}

	observed := w.opts.now()
	events := make([]Event, 0)
	for _, order := range orders {
		if order == nil {
			continue
		}
		if from, changed := w.snapshot.Observe(order.ID, order.Status); changed {
			events = append(events, Event{
				Kind:       KindStatusChanged,
				OrderID:    order.ID,
				From:       from,
				To:         order.Status,
				ObservedAt: observed,
			})
		}
	}
	emit(ctx, w.sink, events)
}

func emit(ctx context.Context, sink Sink, events []Event) {
	for _, event := range events {
		if ctx.Err() != nil {
			return
		}
		sink.Emit(ctx, event)
	}
}
