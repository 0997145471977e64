// Package temporal holds the Temporal client wiring shared by the API and the worker.
package temporal

import (
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	platformobservability "github.com/Apurer/go-shipment-tracker/internal/platform/observability"
)

// ErrDisabled is returned by Dial when Temporal is switched off in config.
var ErrDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// Settings addresses the Temporal frontend.
type Settings struct {
	Address   string
	Namespace string
	Disabled  bool
}

// Dial connects a client with the OpenTelemetry tracing interceptor and structured logger attached.
func Dial(settings Settings, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if settings.Disabled {
		return nil, ErrDisabled
	}
	if settings.Address == "" {
		settings.Address = client.DefaultHostPort
	}
	if settings.Namespace == "" {
		settings.Namespace = client.DefaultNamespace
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	logger := slog.Default()
	if instruments != nil && instruments.Logger != nil {
		logger = instruments.Logger
	}
	options := client.Options{
		HostPort:  settings.Address,
		Namespace: settings.Namespace,
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}
