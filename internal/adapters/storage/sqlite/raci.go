package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that RaciRepository implements ports.RaciRepository.
var _ ports.RaciRepository = (*RaciRepository)(nil)

// RaciRepository is the SQLite implementation of ports.RaciRepository. Task
// and subtask assignments live in separate tables, so a copy is always a
// structural row copy.
type RaciRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRaciRepository creates a RACI repository over the store's database.
func NewRaciRepository(store *Store) *RaciRepository {
	return &RaciRepository{db: store.db, logger: store.logger}
}

// ListForTask returns the task-level assignments in insertion order.
func (r *RaciRepository) ListForTask(ctx context.Context, taskID domain.ID) ([]task.Assignment, error) {
	query := `SELECT task_id, user_id, letter FROM task_raci WHERE task_id = ? ORDER BY rowid ASC`
	return r.list(ctx, query, taskID)
}

// ListForSubTask returns the subtask-level assignments in insertion order.
func (r *RaciRepository) ListForSubTask(ctx context.Context, subTaskID domain.ID) ([]task.Assignment, error) {
	query := `SELECT subtask_id, user_id, letter FROM subtask_raci WHERE subtask_id = ? ORDER BY rowid ASC`
	return r.list(ctx, query, subTaskID)
}

func (r *RaciRepository) list(ctx context.Context, query string, entityID domain.ID) ([]task.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, entityID.String())
	if err != nil {
		return nil, fmt.Errorf("could not query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []task.Assignment
	for rows.Next() {
		var id, userID, letter string
		if err := rows.Scan(&id, &userID, &letter); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		assignments = append(assignments, task.Assignment{
			EntityID: domain.ID(id),
			UserID:   userID,
			Letter:   task.Letter(letter),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return assignments, nil
}

// SaveTaskAssignment upserts one task-level assignment. The primary key on
// (task_id, user_id) makes a second letter for the same user a replacement.
func (r *RaciRepository) SaveTaskAssignment(ctx context.Context, tx ports.Tx, a task.Assignment) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO task_raci (task_id, user_id, letter)
		VALUES (?, ?, ?)
		ON CONFLICT (task_id, user_id) DO UPDATE SET letter = excluded.letter
	`

	if _, err := st.ExecContext(ctx, query, a.EntityID.String(), a.UserID, a.Letter.String()); err != nil {
		return fmt.Errorf("could not save assignment: %w", err)
	}
	return nil
}

// SaveSubTaskAssignment upserts one subtask-level assignment.
func (r *RaciRepository) SaveSubTaskAssignment(ctx context.Context, tx ports.Tx, a task.Assignment) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subtask_raci (subtask_id, user_id, letter)
		VALUES (?, ?, ?)
		ON CONFLICT (subtask_id, user_id) DO UPDATE SET letter = excluded.letter
	`

	if _, err := st.ExecContext(ctx, query, a.EntityID.String(), a.UserID, a.Letter.String()); err != nil {
		return fmt.Errorf("could not save assignment: %w", err)
	}
	return nil
}

// ReplaceForTask deletes the task's assignment rows and inserts the new set.
func (r *RaciRepository) ReplaceForTask(ctx context.Context, tx ports.Tx, taskID domain.ID, assignments []task.Assignment) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := st.ExecContext(ctx, `DELETE FROM task_raci WHERE task_id = ?`, taskID.String()); err != nil {
		return fmt.Errorf("could not clear assignments: %w", err)
	}

	for _, a := range assignments {
		query := `INSERT INTO task_raci (task_id, user_id, letter) VALUES (?, ?, ?)
			ON CONFLICT (task_id, user_id) DO UPDATE SET letter = excluded.letter`
		if _, err := st.ExecContext(ctx, query, taskID.String(), a.UserID, a.Letter.String()); err != nil {
			return fmt.Errorf("could not insert assignment: %w", err)
		}
	}

	r.logger.DebugContext(ctx, "replaced task RACI set",
		slog.String("task_id", taskID.String()),
		slog.Int("assignments", len(assignments)),
	)
	return nil
}

// DeleteAllForTask removes every task-level assignment of a task.
func (r *RaciRepository) DeleteAllForTask(ctx context.Context, tx ports.Tx, taskID domain.ID) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := st.ExecContext(ctx, `DELETE FROM task_raci WHERE task_id = ?`, taskID.String()); err != nil {
		return fmt.Errorf("could not delete assignments: %w", err)
	}
	return nil
}

// DeleteAllForSubTask removes every subtask-level assignment of a subtask.
func (r *RaciRepository) DeleteAllForSubTask(ctx context.Context, tx ports.Tx, subTaskID domain.ID) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	if _, err := st.ExecContext(ctx, `DELETE FROM subtask_raci WHERE subtask_id = ?`, subTaskID.String()); err != nil {
		return fmt.Errorf("could not delete assignments: %w", err)
	}
	return nil
}

// CopyTaskToSubTask copies the task's current assignment rows into the
// subtask's own table.
func (r *RaciRepository) CopyTaskToSubTask(ctx context.Context, tx ports.Tx, taskID, subTaskID domain.ID) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subtask_raci (subtask_id, user_id, letter)
		SELECT ?, user_id, letter FROM task_raci WHERE task_id = ? ORDER BY rowid ASC
	`

	if _, err := st.ExecContext(ctx, query, subTaskID.String(), taskID.String()); err != nil {
		return fmt.Errorf("could not copy assignments: %w", err)
	}

	r.logger.DebugContext(ctx, "copied task RACI set to subtask",
		slog.String("task_id", taskID.String()),
		slog.String("subtask_id", subTaskID.String()),
	)
	return nil
}
