package api

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shipment-tracker/internal/platform/database"
)

func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "POSTGRES_DSN", "TEMPORAL_DISABLED", "WATCH_LIST_INTERVAL", "AMQP_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, database.DriverMemory, cfg.DatabaseDriver)
	require.Equal(t, 5*time.Second, cfg.FeedInterval)
	require.Equal(t, "noreply@logistics.com", cfg.NotifyFrom)
	require.False(t, cfg.TemporalDisabled)
}

func TestLoadConfig_PostgresInferredFromDSN(t *testing.T) {
	isolate(t)
	t.Setenv("POSTGRES_DSN", "postgres://localhost/orders")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, database.DriverPostgres, cfg.DatabaseDriver)
	require.True(t, cfg.TemporalDisabled)
}

func TestLoadConfig_Rejects(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_DRIVER", "mysql")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("WATCH_LIST_INTERVAL", "-1s")
	_, err = LoadConfig()
	require.Error(t, err)
}
