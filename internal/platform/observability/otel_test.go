package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_WritesLogsToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	instruments, shutdown, err := Init(context.Background(), "tracker-test",
		WithLogOutput(&buf),
		WithLogLevel("warn"),
		WithTraceExporter(ExporterNone),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		require.NoError(t, shutdown(context.Background()))
	})

	instruments.Logger.Info("hidden")
	instruments.Logger.Warn("shown", slog.String("order.id", "o-1"))
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"order.id":"o-1"`)

	require.NotNil(t, instruments.Tracer("orders"))
	require.NotNil(t, instruments.Meter("orders"))
}

func TestWithLogLevel_IgnoresUnknownValues(t *testing.T) {
	cfg := settings{level: slog.LevelInfo}
	WithLogLevel("loud")(&cfg)
	require.Equal(t, slog.LevelInfo, cfg.level)
	WithLogLevel("DEBUG")(&cfg)
	require.Equal(t, slog.LevelDebug, cfg.level)
}
