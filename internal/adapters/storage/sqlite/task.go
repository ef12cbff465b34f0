package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that TaskRepository implements ports.TaskRepository.
var _ ports.TaskRepository = (*TaskRepository)(nil)

const taskColumns = `
	id, phase, page_ref, title, description,
	priority, owner_id, progress, creator_id,
	planned_start, planned_end, created_at, updated_at
`

// TaskRepository is the SQLite implementation of ports.TaskRepository.
type TaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTaskRepository creates a task repository over the store's database.
func NewTaskRepository(store *Store) *TaskRepository {
	return &TaskRepository{db: store.db, logger: store.logger}
}

// GetByID returns a single task.
func (r *TaskRepository) GetByID(ctx context.Context, id domain.ID) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return &t, nil
}

// List returns tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1 = 1`
	var args []any

	if filter.Phase != nil {
		query += ` AND phase = ?`
		args = append(args, filter.Phase.String())
	}
	if filter.OwnerID != nil {
		query += ` AND owner_id = ?`
		args = append(args, *filter.OwnerID)
	}
	if filter.CreatorID != nil {
		query += ` AND creator_id = ?`
		args = append(args, *filter.CreatorID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tasks, nil
}

// Insert writes a new task row within the given transaction.
func (r *TaskRepository) Insert(ctx context.Context, tx ports.Tx, t *task.Task) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = st.ExecContext(
		ctx,
		query,
		t.ID.String(),
		t.Phase.String(),
		t.PageRef,
		t.Title,
		t.Description,
		int(t.Priority),
		t.OwnerID,
		t.Progress,
		t.CreatorID,
		unixPtr(t.PlannedStart),
		unixPtr(t.PlannedEnd),
		t.CreatedAt.Unix(),
		t.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert task: %w", err)
	}

	r.logger.DebugContext(ctx, "inserted task", slog.String("id", t.ID.String()))
	return nil
}

// Update rewrites an existing task row within the given transaction.
func (r *TaskRepository) Update(ctx context.Context, tx ports.Tx, t *task.Task) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET
			phase = ?,
			page_ref = ?,
			title = ?,
			description = ?,
			priority = ?,
			owner_id = ?,
			progress = ?,
			planned_start = ?,
			planned_end = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := st.ExecContext(
		ctx,
		query,
		t.Phase.String(),
		t.PageRef,
		t.Title,
		t.Description,
		int(t.Priority),
		t.OwnerID,
		t.Progress,
		unixPtr(t.PlannedStart),
		unixPtr(t.PlannedEnd),
		t.UpdatedAt.Unix(),
		t.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "updated task", slog.String("id", t.ID.String()))
	return nil
}

// Delete removes a task within the given transaction. Subtasks, RACI rows,
// and profile associations cascade via foreign keys.
func (r *TaskRepository) Delete(ctx context.Context, tx ports.Tx, id domain.ID) error {
	st, err := sqlTx(tx)
	if err != nil {
		return err
	}

	result, err := st.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("could not delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "deleted task", slog.String("id", id.String()))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (task.Task, error) {
	var t task.Task
	var id, phase string
	var priority int
	var plannedStart, plannedEnd sql.NullInt64
	var createdAt, updatedAt int64

	err := s.Scan(
		&id,
		&phase,
		&t.PageRef,
		&t.Title,
		&t.Description,
		&priority,
		&t.OwnerID,
		&t.Progress,
		&t.CreatorID,
		&plannedStart,
		&plannedEnd,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.ID = domain.ID(id)
	t.Phase = task.Phase(phase)
	t.Priority = task.Priority(priority)
	t.PlannedStart = timePtr(plannedStart)
	t.PlannedEnd = timePtr(plannedEnd)
	t.CreatedAt = timeFromUnix(createdAt)
	t.UpdatedAt = timeFromUnix(updatedAt)

	return t, nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timeFromUnix(v.Int64)
	return &t
}

func timeFromUnix(unix int64) time.Time { return time.Unix(unix, 0).UTC() }
