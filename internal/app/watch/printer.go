package watch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/application/types"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/watcher"
)

const timeLayout = "2006-01-02 15:04:05"

// Printer renders watcher events as one line each.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

var _ watcher.Sink = (*Printer)(nil)

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Emit(_ context.Context, e watcher.Event) {
	var line string
	stamp := e.ObservedAt.Local().Format(timeLayout)
	switch e.Kind {
	case watcher.KindStatusChanged:
		line = fmt.Sprintf("%s  %-8s %s -> %s", stamp, shortID(e.OrderID), e.From, e.To)
	case watcher.KindHistoryAppended:
		entry := e.Entry
		line = fmt.Sprintf("%s  %-8s history %s by %s%s", entry.Timestamp.Local().Format(timeLayout),
			shortID(e.OrderID), entry.Status, entry.Source, formatMetadata(entry.Metadata))
	case watcher.KindFetchFailed:
		line = fmt.Sprintf("%s  refresh failed: %v", stamp, e.Err)
	default:
		return
	}
	p.println(line)
}

// Baseline prints the statuses a watcher observed on its first poll.
func (p *Printer) Baseline(statuses map[string]domain.Status) {
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p.println(fmt.Sprintf("watching %d order(s)", len(ids)))
	for _, id := range ids {
		p.println(fmt.Sprintf("  %-36s %s", id, statuses[id]))
	}
}

// UpdateResult prints the outcome of --set-status including the notification echo.
func (p *Printer) UpdateResult(result *types.StatusUpdateResult) {
	p.println(fmt.Sprintf("%s  %s -> %s", result.Order.ID, result.FromStatus, result.Order.Status))
	if result.Notification == nil {
		return
	}
	recipients := strings.Join(result.Notification.Recipients(), ", ")
	p.println(fmt.Sprintf("  notification %s to %s", result.Notification.Status(), recipients))
}

func (p *Printer) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMetadata(metadata map[string]any) string {
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return " (" + strings.Join(parts, " ") + ")"
}
