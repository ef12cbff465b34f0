package ports

import (
	"context"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/domain/task"
)

// Tx is an opaque handle to one open storage transaction. The application
// layer only threads it through repository calls; each storage adapter
// asserts its own concrete type. A nil Tx is never valid for a
// transaction-scoped method.
type Tx interface{}

// TxManager scopes a function to a single storage transaction. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics, so every exit path releases it. The orchestrator composes
// multi-table writes by passing the received Tx to the repositories'
// transaction-scoped methods.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// TaskFilter narrows task list queries. Nil fields are ignored.
type TaskFilter struct {
	Phase     *task.Phase
	OwnerID   *string
	CreatorID *string
}

// TaskRepository persists Task entities.
type TaskRepository interface {
	// GetByID returns a single task.
	// Returns domain.ErrNotFound if the task does not exist.
	GetByID(ctx context.Context, id domain.ID) (*task.Task, error)

	// List returns tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter) ([]task.Task, error)

	// Insert writes a new task row within the given transaction.
	Insert(ctx context.Context, tx Tx, t *task.Task) error

	// Update rewrites an existing task row within the given transaction.
	// Returns domain.ErrNotFound if the task does not exist.
	Update(ctx context.Context, tx Tx, t *task.Task) error

	// Delete removes a task within the given transaction. Subtasks, RACI
	// rows, and profile associations cascade by referential design.
	// Returns domain.ErrNotFound if the task does not exist.
	Delete(ctx context.Context, tx Tx, id domain.ID) error
}

// SubTaskRepository persists SubTask entities.
type SubTaskRepository interface {
	// GetByID returns a single subtask.
	// Returns domain.ErrNotFound if the subtask does not exist.
	GetByID(ctx context.Context, id domain.ID) (*task.SubTask, error)

	// ListByTask returns all subtasks of a task in creation order.
	ListByTask(ctx context.Context, taskID domain.ID) ([]task.SubTask, error)

	// Insert writes a new subtask row within the given transaction.
	Insert(ctx context.Context, tx Tx, st *task.SubTask) error

	// Update rewrites an existing subtask row within the given transaction.
	// Returns domain.ErrNotFound if the subtask does not exist.
	Update(ctx context.Context, tx Tx, st *task.SubTask) error

	// Delete removes a subtask and, by referential design, its RACI rows.
	// Returns domain.ErrNotFound if the subtask does not exist.
	Delete(ctx context.Context, tx Tx, id domain.ID) error
}

// RaciRepository persists the two parallel RACI assignment sets. Task-level
// and subtask-level rows live in distinct collections: copying a task's set
// onto a subtask is a structural copy, never a shared reference.
type RaciRepository interface {
	// ListForTask returns the task-level assignments in insertion order.
	ListForTask(ctx context.Context, taskID domain.ID) ([]task.Assignment, error)

	// ListForSubTask returns the subtask-level assignments in insertion order.
	ListForSubTask(ctx context.Context, subTaskID domain.ID) ([]task.Assignment, error)

	// SaveTaskAssignment upserts one task-level assignment. Assigning a new
	// letter to an existing (task, user) pair replaces the prior letter.
	SaveTaskAssignment(ctx context.Context, tx Tx, a task.Assignment) error

	// SaveSubTaskAssignment upserts one subtask-level assignment with the
	// same replace-not-duplicate semantics.
	SaveSubTaskAssignment(ctx context.Context, tx Tx, a task.Assignment) error

	// ReplaceForTask atomically replaces a task's whole assignment set:
	// existing rows are deleted before the new ones are inserted.
	ReplaceForTask(ctx context.Context, tx Tx, taskID domain.ID, assignments []task.Assignment) error

	// DeleteAllForTask removes every task-level assignment of a task.
	DeleteAllForTask(ctx context.Context, tx Tx, taskID domain.ID) error

	// DeleteAllForSubTask removes every subtask-level assignment of a subtask.
	DeleteAllForSubTask(ctx context.Context, tx Tx, subTaskID domain.ID) error

	// CopyTaskToSubTask copies the task's current assignment rows into the
	// subtask's own set. Later edits to either set do not propagate.
	CopyTaskToSubTask(ctx context.Context, tx Tx, taskID, subTaskID domain.ID) error
}

// ProfileRepository persists the impacted-profile catalog and the
// task-profile association rows.
type ProfileRepository interface {
	// List returns the whole catalog in code order.
	List(ctx context.Context) ([]profile.Profile, error)

	// Exists reports whether a code is part of the catalog.
	Exists(ctx context.Context, code profile.Code) (bool, error)

	// ListForTask returns the codes associated with a task in code order.
	ListForTask(ctx context.Context, taskID domain.ID) ([]profile.Code, error)

	// ReplaceForTask atomically replaces a task's associations: old links
	// are fully removed before new ones are inserted.
	ReplaceForTask(ctx context.Context, tx Tx, taskID domain.ID, codes []profile.Code) error

	// DeleteAllForTask removes every association of a task.
	DeleteAllForTask(ctx context.Context, tx Tx, taskID domain.ID) error
}
