package api

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/messaging"
	"github.com/Apurer/go-shipment-tracker/internal/domains/orders/adapters/notify"
	platformconfig "github.com/Apurer/go-shipment-tracker/internal/platform/config"
	"github.com/Apurer/go-shipment-tracker/internal/platform/database"
	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	DatabaseDriver    string
	PostgresDSN       string
	SQLitePath        string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	AMQPURL           string
	AMQPExchange      string
	NotifyFrom        string
	FeedInterval      time.Duration
	LogLevel          string
	TraceExporter     string
}

// LoadConfig reads environment variables (and tracker.yaml when present), applies defaults,
// and validates basic constraints. A blank DATABASE_DRIVER picks postgres when POSTGRES_DSN
// is set and memory otherwise.
func LoadConfig() (Config, error) {
	v, err := platformconfig.New(map[string]any{
		"port":                "8080",
		"sqlite_path":         "data/orders.db",
		"temporal_address":    client.DefaultHostPort,
		"temporal_namespace":  client.DefaultNamespace,
		"amqp_exchange":       messaging.DefaultExchange,
		"notify_from":         notify.DefaultFrom,
		"watch_list_interval": "5s",
		"log_level":           "info",
		"trace_exporter":      platformobservability.ExporterOTLP,
	})
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:              platformconfig.String(v, "port"),
		DatabaseDriver:    strings.ToLower(platformconfig.String(v, "database_driver")),
		PostgresDSN:       platformconfig.String(v, "postgres_dsn"),
		SQLitePath:        platformconfig.String(v, "sqlite_path"),
		TemporalAddress:   platformconfig.String(v, "temporal_address"),
		TemporalNamespace: platformconfig.String(v, "temporal_namespace"),
		TemporalDisabled:  isTruthy(v.GetString("temporal_disabled")),
		AMQPURL:           platformconfig.String(v, "amqp_url"),
		AMQPExchange:      platformconfig.String(v, "amqp_exchange"),
		NotifyFrom:        platformconfig.String(v, "notify_from"),
		FeedInterval:      v.GetDuration("watch_list_interval"),
		LogLevel:          platformconfig.String(v, "log_level"),
		TraceExporter:     platformconfig.String(v, "trace_exporter"),
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = database.DriverMemory
		if cfg.PostgresDSN != "" {
			cfg.DatabaseDriver = database.DriverPostgres
		}
	}
	switch cfg.DatabaseDriver {
	case database.DriverMemory, database.DriverSQLite:
	case database.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required when DATABASE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("DATABASE_DRIVER must be one of memory, postgres, sqlite; got %q", cfg.DatabaseDriver)
	}
	if cfg.FeedInterval <= 0 {
		return Config{}, fmt.Errorf("WATCH_LIST_INTERVAL must be a positive duration")
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
