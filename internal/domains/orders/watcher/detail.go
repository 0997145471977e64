package watcher

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/platform/schedule"
)

var errMissingOrder = errors.New("fetcher returned no order")

// DetailFetcher loads one order and its ledger.
type DetailFetcher interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	History(ctx context.Context, id string) ([]domain.HistoryEntry, error)
}

// DetailWatcher polls a single order and its history.
type DetailWatcher struct {
	fetcher  DetailFetcher
	orderID  string
	sink     Sink
	opts     options
	snapshot *Snapshot
	task     *schedule.Task

	// historySeen is only touched from ticks, which never overlap.
	historySeen int
}

func NewDetailWatcher(fetcher DetailFetcher, orderID string, sink Sink, opts ...Option) *DetailWatcher {
	if sink == nil {
		sink = discard
	}
	o := buildOptions(DefaultDetailInterval, opts)
	w := &DetailWatcher{
		fetcher:     fetcher,
		orderID:     orderID,
		sink:        sink,
		opts:        o,
		snapshot:    NewSnapshot(),
		historySeen: -1,
	}
	w.task = schedule.NewTask(o.interval, w.tick,
		schedule.WithName("orders.detail_watcher"),
		schedule.WithLogger(o.logger),
	)
	return w
}

func (w *DetailWatcher) OrderID() string { return w.orderID }

func (w *DetailWatcher) Start(ctx context.Context) { w.task.Start(ctx) }

func (w *DetailWatcher) Stop() { w.task.Stop() }

func (w *DetailWatcher) Refresh() bool { return w.task.RunNow() }

func (w *DetailWatcher) Snapshot() *Snapshot { return w.snapshot }

func (w *DetailWatcher) tick(ctx context.Context) {
	var (
		order   *domain.Order
		history []domain.HistoryEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		order, err = w.fetcher.GetOrder(gctx, w.orderID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = w.fetcher.History(gctx, w.orderID)
		return err
	})
	err := g.Wait()
	if err == nil && order == nil {
		err = errMissingOrder
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.opts.logger.LogAttrs(ctx, slog.LevelWarn, "order detail fetch failed",
			slog.String("order.id", w.orderID),
			slog.String("error", err.Error()),
		)
		w.sink.Emit(ctx, Event{Kind: KindFetchFailed, OrderID: w.orderID, Err: err, ObservedAt: w.opts.now()})
		return
	}

	observed := w.opts.now()
	events := make([]Event, 0, 1)
	if from, changed := w.snapshot.Observe(order.ID, order.Status); changed {
		events = append(events, Event{
			Kind:       KindStatusChanged,
			OrderID:    order.ID,
			From:       from,
			To:         order.Status,
			ObservedAt: observed,
		})
	}
	if w.historySeen >= 0 {
		for i := w.historySeen; i < len(history); i++ {
			entry := history[i]
			events = append(events, Event{
				Kind:       KindHistoryAppended,
				OrderID:    order.ID,
				To:         entry.Status,
				Entry:      &entry,
				ObservedAt: observed,
			})
		}
	}
	if len(history) > w.historySeen {
		w.historySeen = len(history)
	}
	emit(ctx, w.sink, events)
}
