package ports

import (
	"context"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
)

// EventEmitter fans committed mutations out to collaborators. All methods
// are fire-and-forget: the core never awaits delivery, and implementations
// must not block the caller beyond enqueueing.
//
// Ordering contract: the service calls these strictly after the mutation's
// transaction has committed, never before and never when it aborts, so
// subscribers cannot observe state the store later discards.
type EventEmitter interface {
	// EmitTaskCreated announces a new task with its full composed payload.
	EmitTaskCreated(ctx context.Context, details *task.Details)

	// EmitTaskUpdated announces a task mutation with the refreshed payload.
	EmitTaskUpdated(ctx context.Context, details *task.Details)

	// EmitTaskDeleted announces a deletion carrying only the identifier.
	EmitTaskDeleted(ctx context.Context, taskID domain.ID)

	// EmitSubTaskUpdated announces a subtask creation or status change.
	EmitSubTaskUpdated(ctx context.Context, details *task.SubTaskDetails)

	// EmitTaskLocked announces an advisory editing lock.
	EmitTaskLocked(ctx context.Context, taskID domain.ID, userID string)

	// EmitTaskUnlocked announces the release of an advisory editing lock.
	EmitTaskUnlocked(ctx context.Context, taskID domain.ID, userID string)
}
