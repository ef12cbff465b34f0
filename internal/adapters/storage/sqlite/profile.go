package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that ProfileRepository implements ports.ProfileRepository.
var _ ports.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository is the SQLite implementation of ports.ProfileRepository.
// The catalog itself is seeded by migration; this repository only reads it
// and maintains the task association rows.
type ProfileRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProfileRepository creates a profile repository over the store's database.
func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{db: store.db, logger: store.logger}
}

// List returns the whole catalog in code order.
func (r *ProfileRepository) List(ctx context.Context) ([]profile.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, label FROM profiles ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("could not query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []profile.Profile
	for rows.Next() {
		var code, label string
		if err := rows.Scan(&code, &label); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		profiles = append(profiles, profile.Profile{Code: profile.Code(code), Label: label})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return profiles, nil
}

// Exists reports whether a code is part of the catalog.
func (r *ProfileRepository) Exists(ctx context.Context, code profile.Code) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM profiles WHERE code = ?`, string(code)).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("could not query profile: %w", err)
	}
	return true, nil
}

// ListForTask returns the codes associated with a task in code order.
func (r *ProfileRepository) ListForTask(ctx context.Context, taskID domain.ID) ([]profile.Code, error) {
	query := `SELECT code FROM task_profiles WHERE task_id = ? ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query, taskID.String())
	if err != nil {
		return nil, fmt.Errorf("could not query task profiles: %w", err)
	}
	defer rows.Close()

	var codes []profile.Code
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		codes = append(codes, profile.Code(code))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return codes, nil
}

// ReplaceForTask deletes the task's association rows and inserts the new set.
func (r *ProfileRepository) ReplaceForTask(ctx context.Context, tx ports.Tx, taskID domain.ID, codes []profile.Code) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := st.ExecContext(ctx, `DELETE FROM task_profiles WHERE task_id = ?`, taskID.String()); err != nil {
		return fmt.Errorf("could not clear task profiles: %w", err)
	}

	for _, code := range codes {
		query := `INSERT OR IGNORE INTO task_profiles (task_id, code) VALUES (?, ?)`
		if _, err := st.ExecContext(ctx, query, taskID.String(), string(code)); err != nil {
			return fmt.Errorf("could not insert task profile: %w", err)
		}
	}

	r.logger.DebugContext(ctx, "replaced task profile associations",
		slog.String("task_id", taskID.String()),
		slog.Int("profiles", len(codes)),
	)
	return nil
}

// DeleteAllForTask removes every association of a task.
func (r *ProfileRepository) DeleteAllForTask(ctx context.Context, tx ports.Tx, taskID domain.ID) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := st.ExecContext(ctx, `DELETE FROM task_profiles WHERE task_id = ?`, taskID.String()); err != nil {
		return fmt.Errorf("could not delete task profiles: %w", err)
	}
	return nil
}
