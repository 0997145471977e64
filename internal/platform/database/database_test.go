package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-shipment-tracker/internal/platform/migrations"
)

func TestOpen_SQLiteAppliesMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orders.db")
	db, cleanup, err := Open(context.Background(), Options{Driver: "SQLite", SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	require.True(t, db.Migrator().HasTable(&migrations.OrderRecord{}))
	require.True(t, db.Migrator().HasTable(&migrations.HistoryRecord{}))
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Driver: "mysql"})
	require.Error(t, err)

	_, _, err = Open(context.Background(), Options{Driver: DriverPostgres})
	require.Error(t, err)

	_, _, err = Open(context.Background(), Options{Driver: DriverSQLite})
	require.Error(t, err)
}
