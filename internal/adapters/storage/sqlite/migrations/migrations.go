// Package migrations applies the embedded SQLite schema migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migrator handles database migrations for SQLite.
type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMigrator creates a new migrator instance.
func NewMigrator(db *sql.DB, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Migrator{
		db:     db,
		logger: logger,
	}, nil
}

// Up runs all available migrations.
func (m *Migrator) Up(ctx context.Context) error {
	inst, closeSrc, err := m.instance(ctx)
	defer closeSrc()
	if err != nil {
		return err
	}

	err = inst.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	m.logger.DebugContext(ctx, "migrations applied")
	return nil
}

// Down reverts all migrations.
func (m *Migrator) Down(ctx context.Context) error {
	inst, closeSrc, err := m.instance(ctx)
	defer closeSrc()
	if err != nil {
		return err
	}

	err = inst.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not revert migrations: %w", err)
	}

	m.logger.DebugContext(ctx, "migrations reverted")
	return nil
}

// instance creates a migrate instance over the embedded migration files.
func (m *Migrator) instance(ctx context.Context) (instance *migrate.Migrate, closeSrc func(), err error) {
	closeSrc = func() {}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return nil, closeSrc, fmt.Errorf("could not create driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, closeSrc, fmt.Errorf("could not create fs: %w", err)
	}
	closeSrc = func() {
		if err := src.Close(); err != nil {
			m.logger.ErrorContext(ctx, "could not close migration source", slog.Any("error", err))
		}
	}

	instance, err = migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return nil, closeSrc, fmt.Errorf("could not create migration instance: %w", err)
	}

	return instance, closeSrc, nil
}
