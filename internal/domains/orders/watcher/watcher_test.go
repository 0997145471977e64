package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/ports"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Emit(_ context.Context, e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) take() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// scriptedList returns the queued responses in order and repeats the last one.
type scriptedList struct {
	mu      sync.Mutex
	results [][]*domain.Order
	errs    []error
	filters []domain.Filter
}

func (f *scriptedList) push(orders []*domain.Order, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, orders)
	f.errs = append(f.errs, err)
}

func (f *scriptedList) ListOrders(_ context.Context, filter domain.Filter) ([]*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	orders, err := f.results[0], f.errs[0]
	if len(f.results) > 1 {
		f.results, f.errs = f.results[1:], f.errs[1:]
	}
	return orders, err
}

func order(id string, status domain.Status) *domain.Order {
	return &domain.Order{ID: id, CustomerName: "Jane", CustomerContact: "555-0100", MerchantRef: "M-1", Status: status}
}

func TestListWatcher_EmitsOnlyRealChanges(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("id1", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("id1", domain.StatusPickedUp)}, nil)
	fetcher.push([]*domain.Order{order("id1", domain.StatusPickedUp)}, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink)
	defer w.Stop()

	require.True(t, w.Refresh())
	require.Empty(t, sink.take())

	require.True(t, w.Refresh())
	events := sink.take()
	require.Len(t, events, 1)
	require.Equal(t, KindStatusChanged, events[0].Kind)
	require.Equal(t, "id1", events[0].OrderID)
	require.Equal(t, domain.StatusCreated, events[0].From)
	require.Equal(t, domain.StatusPickedUp, events[0].To)

	require.True(t, w.Refresh())
	require.Empty(t, sink.take())
}

func TestListWatcher_FirstObservationNeverEmits(t *testing.T) {
	fetcher := &scriptedList{}
	var all []*domain.Order
	for _, s := range domain.AllStatuses() {
		all = append(all, order("id-"+string(s), s))
	}
	fetcher.push(all, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink)
	defer w.Stop()

	require.True(t, w.Refresh())
	require.Empty(t, sink.take())
	require.Equal(t, len(all), w.Snapshot().Len())
}

func TestListWatcher_EventsFollowFetchOrder(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("b", domain.StatusCreated), order("a", domain.StatusCreated), order("c", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("c", domain.StatusCancelled), order("b", domain.StatusPickedUp), order("a", domain.StatusCreated)}, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink)
	defer w.Stop()

	w.Refresh()
	w.Refresh()
	events := sink.take()
	require.Len(t, events, 2)
	require.Equal(t, "c", events[0].OrderID)
	require.Equal(t, "b", events[1].OrderID)
}

func TestListWatcher_RecordsBeforeEmitting(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("a", domain.StatusCreated), order("b", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("a", domain.StatusPickedUp), order("b", domain.StatusPickedUp)}, nil)

	var w *ListWatcher
	var seenAtEmit []map[string]domain.Status
	w = NewListWatcher(fetcher, SinkFunc(func(_ context.Context, _ Event) {
		seenAtEmit = append(seenAtEmit, w.Snapshot().Copy())
	}))
	defer w.Stop()

	w.Refresh()
	w.Refresh()
	require.Len(t, seenAtEmit, 2)
	for _, snap := range seenAtEmit {
		require.Equal(t, domain.StatusPickedUp, snap["a"])
		require.Equal(t, domain.StatusPickedUp, snap["b"])
	}
}

func TestListWatcher_FetchFailureKeepsBaseline(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("id1", domain.StatusCreated)}, nil)
	fetcher.push(nil, errors.New("connection refused"))
	fetcher.push([]*domain.Order{order("id1", domain.StatusInTransit)}, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink)
	defer w.Stop()

	w.Refresh()
	require.True(t, w.Refresh())
	events := sink.take()
	require.Len(t, events, 1)
	require.Equal(t, KindFetchFailed, events[0].Kind)
	require.EqualError(t, events[0].Err, "connection refused")
	status, _ := w.Snapshot().Status("id1")
	require.Equal(t, domain.StatusCreated, status)

	w.Refresh()
	events = sink.take()
	require.Len(t, events, 1)
	require.Equal(t, domain.StatusCreated, events[0].From)
	require.Equal(t, domain.StatusInTransit, events[0].To)
}

func TestListWatcher_FilterChangeKeepsSnapshot(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("a", domain.StatusCreated), order("b", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("a", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("a", domain.StatusPickedUp), order("b", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("a", domain.StatusPickedUp), order("b", domain.StatusCancelled)}, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink)
	defer w.Stop()

	w.Refresh()
	merchant := "acme"
	require.True(t, w.ApplyFilter(domain.Filter{Merchant: &merchant}))
	require.Empty(t, sink.take())

	require.True(t, w.ApplyFilter(domain.Filter{}))
	events := sink.take()
	require.Len(t, events, 1)
	require.Equal(t, "a", events[0].OrderID)

	w.Refresh()
	events = sink.take()
	require.Len(t, events, 1)
	require.Equal(t, "b", events[0].OrderID)
	require.Equal(t, domain.StatusCreated, events[0].From)

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	require.NotNil(t, fetcher.filters[1].Merchant)
	require.Nil(t, fetcher.filters[2].Merchant)
}

func TestListWatcher_SkipsRefreshWhileTickInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	fetcher := listFunc(func(ctx context.Context, _ domain.Filter) ([]*domain.Order, error) {
		entered <- struct{}{}
		<-release
		return nil, nil
	})
	w := NewListWatcher(fetcher, nil)
	defer w.Stop()

	done := make(chan bool)
	go func() { done <- w.Refresh() }()
	<-entered
	require.False(t, w.Refresh())
	close(release)
	require.True(t, <-done)
}

func TestListWatcher_NoEventsAfterStop(t *testing.T) {
	fetcher := &scriptedList{}
	fetcher.push([]*domain.Order{order("id1", domain.StatusCreated)}, nil)
	fetcher.push([]*domain.Order{order("id1", domain.StatusPickedUp)}, nil)
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink, WithInterval(time.Millisecond))
	w.Start(context.Background())
	require.Eventually(t, func() bool {
		fetcher.mu.Lock()
		defer fetcher.mu.Unlock()
		return len(fetcher.filters) >= 3
	}, time.Second, time.Millisecond)

	w.Stop()
	count := len(sink.take())
	require.Equal(t, 1, count)
	require.False(t, w.Refresh())
	time.Sleep(10 * time.Millisecond)
	require.Empty(t, sink.take())
}

func TestListWatcher_CancelledFetchIsNotReported(t *testing.T) {
	started := make(chan struct{}, 1)
	fetcher := listFunc(func(ctx context.Context, _ domain.Filter) ([]*domain.Order, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	})
	sink := &recordingSink{}
	w := NewListWatcher(fetcher, sink, WithInterval(time.Millisecond))
	w.Start(context.Background())
	<-started
	w.Stop()
	require.Empty(t, sink.take())
}

type listFunc func(ctx context.Context, filter domain.Filter) ([]*domain.Order, error)

func (f listFunc) ListOrders(ctx context.Context, filter domain.Filter) ([]*domain.Order, error) {
	return f(ctx, filter)
}

type fakeDetail struct {
	mu      sync.Mutex
	order   *domain.Order
	history []domain.HistoryEntry
	err     error
}

func (f *fakeDetail) set(status domain.Status, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = order("id1", status)
	f.history = append(f.history, domain.HistoryEntry{OrderID: "id1", Status: status, Source: source})
}

func (f *fakeDetail) GetOrder(context.Context, string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.order.Clone(), nil
}

func (f *fakeDetail) History(context.Context, string) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HistoryEntry(nil), f.history...), nil
}

func TestDetailWatcher_StatusAndHistory(t *testing.T) {
	fetcher := &fakeDetail{}
	fetcher.set(domain.StatusCreated, domain.SourceSystem)
	sink := &recordingSink{}
	w := NewDetailWatcher(fetcher, "id1", sink)
	defer w.Stop()

	require.True(t, w.Refresh())
	require.Empty(t, sink.take())

	fetcher.set(domain.StatusPickedUp, "ops")
	w.Refresh()
	events := sink.take()
	require.Len(t, events, 2)
	require.Equal(t, KindStatusChanged, events[0].Kind)
	require.Equal(t, domain.StatusCreated, events[0].From)
	require.Equal(t, domain.StatusPickedUp, events[0].To)
	require.Equal(t, KindHistoryAppended, events[1].Kind)
	require.Equal(t, "ops", events[1].Entry.Source)

	w.Refresh()
	require.Empty(t, sink.take())
}

func TestDetailWatcher_NotFoundIsReportedAsFetchFailure(t *testing.T) {
	fetcher := &fakeDetail{}
	fetcher.set(domain.StatusCreated, domain.SourceSystem)
	sink := &recordingSink{}
	w := NewDetailWatcher(fetcher, "id1", sink)
	defer w.Stop()
	w.Refresh()

	fetcher.mu.Lock()
	fetcher.err = ports.ErrNotFound
	fetcher.mu.Unlock()
	w.Refresh()

	events := sink.take()
	require.Len(t, events, 1)
	require.Equal(t, KindFetchFailed, events[0].Kind)
	require.Equal(t, "id1", events[0].OrderID)
	require.ErrorIs(t, events[0].Err, ports.ErrNotFound)
	status, ok := w.Snapshot().Status("id1")
	require.True(t, ok)
	require.Equal(t, domain.StatusCreated, status)
}

func TestWatchers_DoNotShareSnapshots(t *testing.T) {
	list := &scriptedList{}
	list.push([]*domain.Order{order("id1", domain.StatusCreated)}, nil)
	detail := &fakeDetail{}
	detail.set(domain.StatusPickedUp, "ops")

	lw := NewListWatcher(list, nil)
	dw := NewDetailWatcher(detail, "id1", nil)
	defer lw.Stop()
	defer dw.Stop()
	lw.Refresh()
	dw.Refresh()

	ls, _ := lw.Snapshot().Status("id1")
	ds, _ := dw.Snapshot().Status("id1")
	require.Equal(t, domain.StatusCreated, ls)
	require.Equal(t, domain.StatusPickedUp, ds)
}
