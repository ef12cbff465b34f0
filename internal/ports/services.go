package ports

import (
	"context"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/domain/task"
)

// TaskService is the transactional use-case port for tasks and subtasks.
// Implemented by the application layer; called by inbound adapters. Every
// method takes an already-validated input plus the caller identity and maps
// failures onto the domain sentinel errors.
type TaskService interface {
	// CreateTask creates a task with its RACI rows and profile associations
	// in one transaction and returns the composed payload.
	// Returns domain.ErrValidation for invalid fields and domain.ErrNotFound
	// for an unknown profile code.
	CreateTask(ctx context.Context, in CreateTaskInput, actor domain.Actor) (*task.Details, error)

	// GetTaskWithDetails returns the composed read model for one task.
	// Returns domain.ErrNotFound if the task does not exist.
	GetTaskWithDetails(ctx context.Context, id domain.ID) (*task.Details, error)

	// ListTasks returns tasks matching the filter, without details.
	ListTasks(ctx context.Context, filter TaskFilter) ([]task.Task, error)

	// UpdateTask applies a partial update. Field changes go through the
	// entity's validating mutators; RACI and profile inputs, when supplied,
	// fully replace the existing sets.
	// Returns domain.ErrForbidden when the actor may not modify the task and
	// when a phase change is attempted without the narrower phase gate.
	UpdateTask(ctx context.Context, id domain.ID, in UpdateTaskInput, actor domain.Actor) (*task.Details, error)

	// DeleteTask deletes a task, cascading to subtasks, RACI rows, and
	// profile associations. Permitted only for elevated roles or the owner.
	DeleteTask(ctx context.Context, id domain.ID, actor domain.Actor) error

	// CreateSubTask creates a subtask under a task and copies the task's
	// current RACI rows into the subtask's own set, in one transaction.
	CreateSubTask(ctx context.Context, taskID domain.ID, in CreateSubTaskInput, actor domain.Actor) (*task.SubTaskDetails, error)

	// UpdateSubTaskStatus toggles a subtask's completion flag and recomputes
	// the parent task's progress from the completion ratio.
	UpdateSubTaskStatus(ctx context.Context, subTaskID domain.ID, completed bool, actor domain.Actor) (*task.SubTaskDetails, error)

	// DeleteSubTask deletes a subtask. The subtask's creator is accepted as
	// an authorized party alongside the parent-task modification policy.
	DeleteSubTask(ctx context.Context, subTaskID domain.ID, actor domain.Actor) error

	// CanModifyTask decides whether the actor may mutate the task: elevated
	// role, ownership, or a task-level RACI letter R or A.
	// Returns domain.ErrConflict when an R/A holder is blocked by another
	// user's editing lock, and domain.ErrNotFound for an unknown task.
	CanModifyTask(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error)

	// CanChangePhase decides whether the actor may move the task across
	// workflow phases: elevated role or ownership only. RACI letters are
	// not sufficient.
	CanChangePhase(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error)

	// IsTaskLocked reports the advisory editing lock on a task, or nil when
	// unlocked. Lock state is not persisted in this module.
	IsTaskLocked(ctx context.Context, taskID domain.ID) (*TaskLock, error)

	// LockTaskForEditing announces that the actor started editing the task.
	LockTaskForEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error

	// UnlockTaskAfterEditing announces that the actor stopped editing the task.
	UnlockTaskAfterEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error
}

// CreateTaskInput carries the fields for CreateTask. Progress is absent on
// purpose: it is derived, never supplied.
type CreateTaskInput struct {
	Phase        task.Phase
	PageRef      string
	Title        string
	Description  string
	Priority     task.Priority
	OwnerID      string
	PlannedStart *time.Time
	PlannedEnd   *time.Time

	// Raci maps each letter to the users who hold it on the new task.
	Raci map[task.Letter][]string

	// ProfilesImpacted lists catalog codes to associate. Every code must
	// exist in the catalog.
	ProfilesImpacted []profile.Code
}

// UpdateTaskInput carries a partial task update. Nil pointer fields are left
// unchanged. Raci and ProfilesImpacted, when non-nil, fully replace the
// corresponding sets. SetPlannedDates distinguishes "clear the dates" from
// "leave them alone" because nil is meaningful for the date pointers.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	PageRef     *string
	Phase       *task.Phase
	Priority    *task.Priority
	OwnerID     *string

	SetPlannedDates bool
	PlannedStart    *time.Time
	PlannedEnd      *time.Time

	Raci             map[task.Letter][]string
	ProfilesImpacted []profile.Code
}

// CreateSubTaskInput carries the fields for CreateSubTask. Completion always
// starts false and the RACI set is copied from the parent.
type CreateSubTaskInput struct {
	Title string
}

// TaskLock describes an advisory "currently being edited" marker. It warns
// concurrent editors; it does not block them.
type TaskLock struct {
	TaskID     domain.ID
	UserID     string
	AcquiredAt time.Time
}
