package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that SubTaskRepository implements ports.SubTaskRepository.
var _ ports.SubTaskRepository = (*SubTaskRepository)(nil)

const subTaskColumns = `id, task_id, title, completed, creator_id, created_at, updated_at`

// SubTaskRepository is the SQLite implementation of ports.SubTaskRepository.
type SubTaskRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubTaskRepository creates a subtask repository over the store's database.
func NewSubTaskRepository(store *Store) *SubTaskRepository {
	return &SubTaskRepository{db: store.db, logger: store.logger}
}

// GetByID returns a single subtask.
func (r *SubTaskRepository) GetByID(ctx context.Context, id domain.ID) (*task.SubTask, error) {
	query := `SELECT ` + subTaskColumns + ` FROM subtasks WHERE id = ?`

	st, err := scanSubTask(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subtask %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query subtask: %w", err)
	}
	return &st, nil
}

// ListByTask returns all subtasks of a task in creation order.
func (r *SubTaskRepository) ListByTask(ctx context.Context, taskID domain.ID) ([]task.SubTask, error) {
	query := `SELECT ` + subTaskColumns + ` FROM subtasks WHERE task_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, taskID.String())
	if err != nil {
		return nil, fmt.Errorf("could not query subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []task.SubTask
	for rows.Next() {
		st, err := scanSubTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subtasks, nil
}

// Insert writes a new subtask row within the given transaction.
func (r *SubTaskRepository) Insert(ctx context.Context, tx ports.Tx, st *task.SubTask) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subtasks (` + subTaskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = sqltx.ExecContext(
		ctx,
		query,
		st.ID.String(),
		st.TaskID.String(),
		st.Title,
		st.Completed,
		st.CreatorID,
		st.CreatedAt.Unix(),
		st.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("could not insert subtask: %w", err)
	}

	r.logger.DebugContext(ctx, "inserted subtask",
		slog.String("id", st.ID.String()),
		slog.String("task_id", st.TaskID.String()),
	)
	return nil
}

// Update rewrites an existing subtask row within the given transaction.
func (r *SubTaskRepository) Update(ctx context.Context, tx ports.Tx, st *task.SubTask) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE subtasks
		SET title = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := sqltx.ExecContext(ctx, query, st.Title, st.Completed, st.UpdatedAt.Unix(), st.ID.String())
	if err != nil {
		return fmt.Errorf("could not update subtask: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("subtask %s: %w", st.ID, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "updated subtask", slog.String("id", st.ID.String()))
	return nil
}

// Delete removes a subtask within the given transaction. Its RACI rows
// cascade via foreign keys.
func (r *SubTaskRepository) Delete(ctx context.Context, tx ports.Tx, id domain.ID) error {
	sqltx, err := sqlTx(tx)
	if err != nil {
		return err
	}

	result, err := sqltx.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("could not delete subtask: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("subtask %s: %w", id, domain.ErrNotFound)
	}

	r.logger.DebugContext(ctx, "deleted subtask", slog.String("id", id.String()))
	return nil
}

func scanSubTask(s scanner) (task.SubTask, error) {
	var st task.SubTask
	var id, taskID string
	var createdAt, updatedAt int64

	err := s.Scan(
		&id,
		&taskID,
		&st.Title,
		&st.Completed,
		&st.CreatorID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return task.SubTask{}, err
	}

	st.ID = domain.ID(id)
	st.TaskID = domain.ID(taskID)
	st.CreatedAt = timeFromUnix(createdAt)
	st.UpdatedAt = timeFromUnix(updatedAt)

	return st, nil
}
