// Package watcher turns periodic polls of the order store into discrete change events.
// Each watcher owns a snapshot of the last status it observed per order; a status is
// reported once, when a poll first sees it differ from that snapshot.
package watcher

import (
	"context"
	"time"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

// Kind classifies a watcher event.
type Kind string

const (
	KindStatusChanged   Kind = "status_changed"
	KindHistoryAppended Kind = "history_appended"
	KindFetchFailed     Kind = "fetch_failed"
)

// Event is one observation surfaced to the presentation layer.
type Event struct {
	Kind    Kind
	OrderID string
	From    domain.Status
	To      domain.Status
	// Entry is set for KindHistoryAppended.
	Entry *domain.HistoryEntry
	// Err is set for KindFetchFailed.
	Err        error
	ObservedAt time.Time
}

// Sink receives events in emission order. Emit is called from the watcher's tick
// goroutine and should not block for long.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event Event)

func (f SinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

var discard = SinkFunc(func(context.Context, Event) {})
