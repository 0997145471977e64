package watcher

import (
	"log/slog"
	"time"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
)

const (
	DefaultListInterval   = 5 * time.Second
	DefaultDetailInterval = 3 * time.Second
)

type options struct {
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	filter   domain.Filter
}

type Option func(*options)

// WithInterval overrides the polling period.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFilter sets the initial filter of a ListWatcher.
func WithFilter(f domain.Filter) Option {
	return func(o *options) { o.filter = f }
}

func buildOptions(interval time.Duration, opts []Option) options {
	o := options{interval: interval, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
