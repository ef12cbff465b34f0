// Package sqlite persists the domain model in a single SQLite database. It
// implements the repository ports and the transaction manager the application
// layer composes its mutations with.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dverbeek84/raciflow/internal/adapters/storage/sqlite/migrations"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that Store implements ports.TxManager and the health
// checker surface.
var (
	_ ports.TxManager     = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Config is the configuration for the SQLite store.
type Config struct {
	// Path is the database file path. ":memory:" keeps the database
	// in-process, which the tests rely on.
	Path   string
	Logger *slog.Logger
}

func (c *Config) defaults() error {
	if c.Path == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Store owns the database handle. The per-aggregate repositories are thin
// views over it and share its connection pool.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens the database, enables foreign keys and WAL journaling, and runs
// the embedded migrations.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("could not create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(db, cfg.Logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.DebugContext(ctx, "sqlite store initialized", slog.String("path", cfg.Path))

	return &Store{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// WithinTx runs fn inside one transaction: commit on nil, rollback on error
// or panic.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // Rollback is safe to call after Commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "storage" }

// HealthCheck implements ports.HealthChecker by pinging the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// sqlTx unwraps the opaque transaction handle issued by WithinTx.
func sqlTx(tx ports.Tx) (*sql.Tx, error) {
	t, ok := tx.(*sql.Tx)
	if !ok || t == nil {
		return nil, fmt.Errorf("tx is not a sqlite transaction handle: %T", tx)
	}
	return t, nil
}
