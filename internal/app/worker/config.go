package worker

import (
	"go.temporal.io/sdk/client"

	platformconfig "github.com/Apurer/go-shipment-tracker/internal/platform/config"
	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
)

// Config carries environment-driven settings for the notification worker.
type Config struct {
	TemporalAddress   string
	TemporalNamespace string
	LogLevel          string
	TraceExporter     string
}

// LoadConfig reads the Temporal and logging settings shared with the API process.
func LoadConfig() (Config, error) {
	v, err := platformconfig.New(map[string]any{
		"temporal_address":   client.DefaultHostPort,
		"temporal_namespace": client.DefaultNamespace,
		"log_level":          "info",
		"trace_exporter":     platformobservability.ExporterOTLP,
	})
	if err != nil {
		return Config{}, err
	}
	return Config{
		TemporalAddress:   platformconfig.String(v, "temporal_address"),
		TemporalNamespace: platformconfig.String(v, "temporal_namespace"),
		LogLevel:          platformconfig.String(v, "log_level"),
		TraceExporter:     platformconfig.String(v, "trace_exporter"),
	}, nil
}
