// Package database opens the GORM connection backing the order store.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Apurer/go-shipment-tracker/internal/platform/migrations"
)

// Supported drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and configures the SQL backend.
type Options struct {
	Driver      string
	PostgresDSN string
	SQLitePath  string
	Logger      *slog.Logger
}

// Open connects to the configured driver, verifies connectivity and applies migrations.
// The returned cleanup closes the pool.
func Open(ctx context.Context, opts Options) (*gorm.DB, func(), error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres:
		db, err = Connect(ctx, opts.PostgresDSN)
	case DriverSQLite:
		db, err = ConnectSQLite(ctx, opts.SQLitePath)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = sqlDB.Close() }
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	if opts.Logger != nil {
		opts.Logger.Info("order store connected", slog.String("driver", db.Dialector.Name()))
	}
	return db, cleanup, nil
}

// Connect opens a PostgreSQL connection via GORM and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}
	return db, ping(ctx, db)
}

// ConnectSQLite opens a file-backed SQLite database. SQLite allows one writer, so the
// pool is pinned to a single connection.
func ConnectSQLite(ctx context.Context, path string) (*gorm.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, ping(ctx, db)
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return err
	}
	return nil
}
