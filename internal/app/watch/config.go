package watch

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"

	ordermapper "github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/http/mapper"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/domain"
	platformconfig "github.com/Apurer/go-shipment-tracker/internal/platform/config"
)

// ErrHelp is returned by LoadConfig when --help was requested; usage has already been printed.
var ErrHelp = pflag.ErrHelp

// Config drives one watch session.
type Config struct {
	APIURL         string
	ListInterval   time.Duration
	DetailInterval time.Duration
	LogLevel       string

	// OrderID switches to the detail view of a single order.
	OrderID string
	Filter  domain.Filter

	// SetStatus issues one update before watching; it requires OrderID.
	SetStatus string
	Source    string
	Note      string
}

// LoadConfig reads TRACKER_API_URL and the poll intervals from the environment, then
// applies command-line flags on top.
func LoadConfig(args []string, usage io.Writer) (Config, error) {
	v, err := platformconfig.New(map[string]any{
		"tracker_api_url":       "http://localhost:8080",
		"watch_list_interval":   "5s",
		"watch_detail_interval": "3s",
		"log_level":             "warn",
	})
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		APIURL:         platformconfig.String(v, "tracker_api_url"),
		ListInterval:   v.GetDuration("watch_list_interval"),
		DetailInterval: v.GetDuration("watch_detail_interval"),
		LogLevel:       platformconfig.String(v, "log_level"),
		Source:         "operator",
	}

	query := url.Values{}
	var status, merchant, customer, after, before string
	flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
	flagSet.SetOutput(usage)
	flagSet.StringVar(&cfg.APIURL, "api", cfg.APIURL, "tracker API base URL")
	flagSet.DurationVar(&cfg.ListInterval, "list-interval", cfg.ListInterval, "poll interval for the order list")
	flagSet.DurationVar(&cfg.DetailInterval, "detail-interval", cfg.DetailInterval, "poll interval for a single order")
	flagSet.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level written to stderr")
	flagSet.StringVar(&cfg.OrderID, "order", "", "watch one order and its history instead of the list")
	flagSet.StringVar(&status, "status", "", "only orders in this status")
	flagSet.StringVar(&merchant, "merchant", "", "merchant reference contains (case-insensitive)")
	flagSet.StringVar(&customer, "customer", "", "customer contact contains (case-insensitive)")
	flagSet.StringVar(&after, "created-after", "", "created on or after (YYYY-MM-DD or RFC 3339)")
	flagSet.StringVar(&before, "created-before", "", "created on or before (YYYY-MM-DD or RFC 3339)")
	flagSet.StringVar(&cfg.SetStatus, "set-status", "", "move --order to this status before watching")
	flagSet.StringVar(&cfg.Source, "source", cfg.Source, "source recorded with --set-status")
	flagSet.StringVar(&cfg.Note, "note", "", "free-text note stored in the history metadata")
	if err := flagSet.Parse(args); err != nil {
		return Config{}, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return Config{}, fmt.Errorf("unexpected argument: %s", extra[0])
	}

	query.Set(ordermapper.QueryStatus, status)
	query.Set(ordermapper.QueryMerchant, merchant)
	query.Set(ordermapper.QueryCustomer, customer)
	query.Set(ordermapper.QueryCreatedAfter, after)
	query.Set(ordermapper.QueryCreatedBefore, before)
	cfg.Filter, err = ordermapper.FilterFromQuery(query)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Filter.Normalize().Validate(); err != nil {
		return Config{}, err
	}

	cfg.OrderID = strings.TrimSpace(cfg.OrderID)
	cfg.SetStatus = strings.TrimSpace(cfg.SetStatus)
	switch {
	case cfg.SetStatus != "" && cfg.OrderID == "":
		return Config{}, errors.New("--set-status requires --order")
	case cfg.APIURL == "":
		return Config{}, errors.New("TRACKER_API_URL or --api is required")
	case cfg.ListInterval <= 0 || cfg.DetailInterval <= 0:
		return Config{}, errors.New("poll intervals must be positive")
	}
	return cfg, nil
}
