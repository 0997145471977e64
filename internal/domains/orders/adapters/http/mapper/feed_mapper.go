package mapper

import (
	"net/url"
	"time"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/watcher"
)

// FeedEvent is one message on the live order feed.
type FeedEvent struct {
	Kind       string        `json:"kind"`
	OrderID    string        `json:"order_id,omitempty"`
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Entry      *HistoryEntry `json:"entry,omitempty"`
	Error      string        `json:"error,omitempty"`
	ObservedAt time.Time     `json:"observed_at"`
}

// FeedCommand is sent by feed clients. Action "refresh" polls immediately; "filter"
// replaces the filter with Query (list endpoint parameter names) and polls.
type FeedCommand struct {
	Action string            `json:"action"`
	Query  map[string]string `json:"query,omitempty"`
}

const (
	FeedActionRefresh = "refresh"
	FeedActionFilter  = "filter"
)

func FromWatcherEvent(e watcher.Event) FeedEvent {
	out := FeedEvent{
		Kind:       string(e.Kind),
		OrderID:    e.OrderID,
		From:       string(e.From),
		To:         string(e.To),
		ObservedAt: e.ObservedAt,
	}
	if e.Entry != nil {
		entry := FromHistory([]domain.HistoryEntry{*e.Entry})[0]
		out.Entry = &entry
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return out
}

// QueryValues converts the command's query map into url.Values for FilterFromQuery.
func (c FeedCommand) QueryValues() url.Values {
	values := url.Values{}
	for k, v := range c.Query {
		values.Set(k, v)
	}
	return values
}
