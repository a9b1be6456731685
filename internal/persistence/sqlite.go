package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/chamados-service/internal/config"
)

// SQLite wraps the embedded file-backed store handle.
//
// The handle returned by Open is fully initialized: schema applied and seed
// data inserted. Callers receive it by injection, never through package
// state, so no operation can race initialization.
type SQLite struct {
	db   *sql.DB
	path string
}

// Open opens or creates the chamados database at the configured path,
// runs migrations and seeds the fixture rows when the table is empty.
func Open(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	busyTimeout := cfg.BusyTimeoutMS
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)", cfg.Path, busyTimeout)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports a single writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	store := &SQLite{db: db, path: cfg.Path}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("migrations applied", zap.String("path", cfg.Path))
	}

	if cfg.Seed {
		seeded, err := Seed(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		if seeded {
			logger.Info("seeded empty tickets table")
		}
	}

	logger.Info("connected to sqlite", zap.String("path", cfg.Path))
	return store, nil
}

// DB returns the underlying database handle.
func (s *SQLite) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// Path returns the file path of the database.
func (s *SQLite) Path() string {
	return s.path
}

// Ping verifies store connectivity.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite store not configured")
	}
	return s.db.PingContext(ctx)
}

// Close releases the store handle.
func (s *SQLite) Close() {
	if s != nil && s.db != nil {
		_ = s.db.Close()
	}
}
