// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// Compile-time check that TaskService implements ports.TaskService.
var _ ports.TaskService = (*TaskService)(nil)

// TaskService implements ports.TaskService. It orchestrates the repositories
// inside TxManager-scoped transactions, runs the authorization policy before
// every mutation, and emits collaboration events strictly after commit.
type TaskService struct {
	txm      ports.TxManager
	tasks    ports.TaskRepository
	subtasks ports.SubTaskRepository
	raci     ports.RaciRepository
	profiles ports.ProfileRepository
	events   ports.EventEmitter
	policy   *Policy
	logger   *slog.Logger
}

// NewTaskService creates a TaskService. The policy is built over the same
// task and RACI repositories so authorization reads the state the mutations
// write.
func NewTaskService(
	txm ports.TxManager,
	tasks ports.TaskRepository,
	subtasks ports.SubTaskRepository,
	raci ports.RaciRepository,
	profiles ports.ProfileRepository,
	events ports.EventEmitter,
	logger *slog.Logger,
) *TaskService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TaskService{
		txm:      txm,
		tasks:    tasks,
		subtasks: subtasks,
		raci:     raci,
		profiles: profiles,
		events:   events,
		policy:   NewPolicy(tasks, raci),
		logger:   logger,
	}
}

// CreateTask validates the input, verifies every impacted profile against the
// catalog, then writes the task, its RACI rows, and its profile associations
// in one transaction. The created event carries the composed payload and is
// emitted only after the transaction commits.
func (s *TaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput, actor domain.Actor) (*task.Details, error) {
	s.logger.InfoContext(ctx, "creating task", slog.String("title", in.Title), slog.String("actor", actor.UserID))

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := s.verifyProfiles(ctx, in.ProfilesImpacted); err != nil {
		s.logger.ErrorContext(ctx, "failed to verify impacted profiles",
			slog.String("operation", "CreateTask"),
			slog.Any("error", err),
		)
		return nil, err
	}

	t, err := task.New(task.NewTaskInput{
		Phase:        in.Phase,
		PageRef:      in.PageRef,
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		OwnerID:      in.OwnerID,
		PlannedStart: in.PlannedStart,
		PlannedEnd:   in.PlannedEnd,
	}, actor.UserID)
	if err != nil {
		return nil, err
	}

	assignments, err := buildAssignments(t.ID, in.Raci)
	if err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		if err := s.tasks.Insert(ctx, tx, t); err != nil {
			return fmt.Errorf("inserting task: %w", err)
		}
		for _, a := range assignments {
			if err := s.raci.SaveTaskAssignment(ctx, tx, a); err != nil {
				return fmt.Errorf("saving RACI assignment: %w", err)
			}
		}
		if len(in.ProfilesImpacted) > 0 {
			if err := s.profiles.ReplaceForTask(ctx, tx, t.ID, in.ProfilesImpacted); err != nil {
				return fmt.Errorf("associating profiles: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create task",
			slog.String("operation", "CreateTask"),
			slog.Any("error", err),
		)
		return nil, err
	}

	details, err := s.composeDetails(ctx, t)
	if err != nil {
		return nil, err
	}

	s.events.EmitTaskCreated(ctx, details)
	return details, nil
}

// GetTaskWithDetails returns the composed read model for one task: the task,
// its RACI map, its subtasks each with their own RACI map, and the impacted
// profile codes.
func (s *TaskService) GetTaskWithDetails(ctx context.Context, id domain.ID) (*task.Details, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.composeDetails(ctx, t)
}

// ListTasks returns tasks matching the filter, without details.
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error) {
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list tasks",
			slog.String("operation", "ListTasks"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies a partial update. Plain field changes go through the
// entity's validating mutators; a phase change additionally passes the
// narrower phase gate; non-nil RACI and profile inputs fully replace the
// stored sets. All writes share one transaction and the updated event is
// emitted only after it commits.
func (s *TaskService) UpdateTask(ctx context.Context, id domain.ID, in ports.UpdateTaskInput, actor domain.Actor) (*task.Details, error) {
	s.logger.InfoContext(ctx, "updating task", slog.String("id", id.String()), slog.String("actor", actor.UserID))

	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.CanModifyTask(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &domain.ForbiddenError{Missing: missingModifyPermission}
	}

	if err := applyFieldChanges(t, in); err != nil {
		return nil, err
	}

	if in.Phase != nil && *in.Phase != t.Phase {
		mayChange, err := s.policy.CanChangePhase(ctx, id, actor)
		if err != nil {
			return nil, err
		}
		if !mayChange {
			return nil, &domain.ForbiddenError{Missing: missingPhasePermission}
		}
		if err := t.UpdatePhase(*in.Phase); err != nil {
			return nil, err
		}
	}

	var assignments []task.Assignment
	if in.Raci != nil {
		if assignments, err = buildAssignments(id, in.Raci); err != nil {
			return nil, err
		}
	}
	if in.ProfilesImpacted != nil {
		if err := s.verifyProfiles(ctx, in.ProfilesImpacted); err != nil {
			return nil, err
		}
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		if err := s.tasks.Update(ctx, tx, t); err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		if in.Raci != nil {
			if err := s.raci.ReplaceForTask(ctx, tx, id, assignments); err != nil {
				return fmt.Errorf("replacing RACI set: %w", err)
			}
		}
		if in.ProfilesImpacted != nil {
			if err := s.profiles.ReplaceForTask(ctx, tx, id, in.ProfilesImpacted); err != nil {
				return fmt.Errorf("replacing profile associations: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update task",
			slog.String("operation", "UpdateTask"),
			slog.String("id", id.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	details, err := s.composeDetails(ctx, t)
	if err != nil {
		return nil, err
	}

	s.events.EmitTaskUpdated(ctx, details)
	return details, nil
}

// DeleteTask deletes a task and, by referential design, its subtasks, RACI
// rows, and profile associations. Only elevated roles and the owner qualify.
func (s *TaskService) DeleteTask(ctx context.Context, id domain.ID, actor domain.Actor) error {
	s.logger.InfoContext(ctx, "deleting task", slog.String("id", id.String()), slog.String("actor", actor.UserID))

	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.policy.canDelete(t, actor) {
		return &domain.ForbiddenError{Missing: missingDeletePermission}
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		return s.tasks.Delete(ctx, tx, id)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete task",
			slog.String("operation", "DeleteTask"),
			slog.String("id", id.String()),
			slog.Any("error", err),
		)
		return err
	}

	s.events.EmitTaskDeleted(ctx, id)
	return nil
}

// CreateSubTask creates a subtask under a task and copies the task's current
// RACI rows into the subtask's own set. The copy is structural: later edits
// to either set do not propagate to the other.
func (s *TaskService) CreateSubTask(ctx context.Context, taskID domain.ID, in ports.CreateSubTaskInput, actor domain.Actor) (*task.SubTaskDetails, error) {
	s.logger.InfoContext(ctx, "creating subtask", slog.String("task_id", taskID.String()), slog.String("actor", actor.UserID))

	allowed, err := s.policy.CanModifyTask(ctx, taskID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &domain.ForbiddenError{Missing: missingModifyPermission}
	}

	st, err := task.NewSubTask(taskID, in.Title, actor.UserID)
	if err != nil {
		return nil, err
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		if err := s.subtasks.Insert(ctx, tx, st); err != nil {
			return fmt.Errorf("inserting subtask: %w", err)
		}
		if err := s.raci.CopyTaskToSubTask(ctx, tx, taskID, st.ID); err != nil {
			return fmt.Errorf("copying RACI set: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create subtask",
			slog.String("operation", "CreateSubTask"),
			slog.String("task_id", taskID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	details, err := s.composeSubTaskDetails(ctx, st)
	if err != nil {
		return nil, err
	}

	s.events.EmitSubTaskUpdated(ctx, details)
	return details, nil
}

// UpdateSubTaskStatus toggles a subtask's completion flag and recomputes the
// parent task's progress as the rounded percentage of completed subtasks.
// The recomputed value is persisted in the same transaction, but only when it
// actually changed; a change additionally triggers a task-updated event after
// the subtask-updated one.
func (s *TaskService) UpdateSubTaskStatus(ctx context.Context, subTaskID domain.ID, completed bool, actor domain.Actor) (*task.SubTaskDetails, error) {
	s.logger.InfoContext(ctx, "updating subtask status",
		slog.String("subtask_id", subTaskID.String()),
		slog.Bool("completed", completed),
		slog.String("actor", actor.UserID),
	)

	st, err := s.subtasks.GetByID(ctx, subTaskID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.policy.CanModifyTask(ctx, st.TaskID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, &domain.ForbiddenError{Missing: missingModifyPermission}
	}

	parent, err := s.tasks.GetByID(ctx, st.TaskID)
	if err != nil {
		return nil, err
	}
	siblings, err := s.subtasks.ListByTask(ctx, st.TaskID)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}

	st.SetCompleted(completed)

	// Recompute over the sibling set with this subtask's new state in place.
	for i := range siblings {
		if siblings[i].ID == st.ID {
			siblings[i].Completed = completed
		}
	}
	progress, ok := task.CompletionProgress(siblings)
	progressChanged := ok && progress != parent.Progress
	if progressChanged {
		if err := parent.SetProgress(progress); err != nil {
			return nil, err
		}
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		if err := s.subtasks.Update(ctx, tx, st); err != nil {
			return fmt.Errorf("updating subtask: %w", err)
		}
		if progressChanged {
			if err := s.tasks.Update(ctx, tx, parent); err != nil {
				return fmt.Errorf("persisting recomputed progress: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update subtask status",
			slog.String("operation", "UpdateSubTaskStatus"),
			slog.String("subtask_id", subTaskID.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	details, err := s.composeSubTaskDetails(ctx, st)
	if err != nil {
		return nil, err
	}

	s.events.EmitSubTaskUpdated(ctx, details)
	if progressChanged {
		if taskDetails, err := s.composeDetails(ctx, parent); err == nil {
			s.events.EmitTaskUpdated(ctx, taskDetails)
		} else {
			s.logger.ErrorContext(ctx, "failed to compose task payload for progress event",
				slog.String("operation", "UpdateSubTaskStatus"),
				slog.String("task_id", parent.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	return details, nil
}

// DeleteSubTask deletes a subtask and recomputes the parent's progress over
// the remaining siblings. The subtask's creator is accepted alongside the
// parent-task modification policy, so contributors can retract subtasks they
// added themselves.
func (s *TaskService) DeleteSubTask(ctx context.Context, subTaskID domain.ID, actor domain.Actor) error {
	s.logger.InfoContext(ctx, "deleting subtask", slog.String("subtask_id", subTaskID.String()), slog.String("actor", actor.UserID))

	st, err := s.subtasks.GetByID(ctx, subTaskID)
	if err != nil {
		return err
	}

	if !st.IsCreatedBy(actor.UserID) {
		allowed, err := s.policy.CanModifyTask(ctx, st.TaskID, actor)
		if err != nil {
			return err
		}
		if !allowed {
			return &domain.ForbiddenError{Missing: missingModifyPermission}
		}
	}

	parent, err := s.tasks.GetByID(ctx, st.TaskID)
	if err != nil {
		return err
	}
	siblings, err := s.subtasks.ListByTask(ctx, st.TaskID)
	if err != nil {
		return fmt.Errorf("listing subtasks: %w", err)
	}

	remaining := make([]task.SubTask, 0, len(siblings))
	for _, sib := range siblings {
		if sib.ID != st.ID {
			remaining = append(remaining, sib)
		}
	}
	progress, ok := task.CompletionProgress(remaining)
	progressChanged := ok && progress != parent.Progress
	if progressChanged {
		if err := parent.SetProgress(progress); err != nil {
			return err
		}
	}

	err = s.txm.WithinTx(ctx, func(tx ports.Tx) error {
		if err := s.subtasks.Delete(ctx, tx, subTaskID); err != nil {
			return fmt.Errorf("deleting subtask: %w", err)
		}
		if progressChanged {
			if err := s.tasks.Update(ctx, tx, parent); err != nil {
				return fmt.Errorf("persisting recomputed progress: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete subtask",
			slog.String("operation", "DeleteSubTask"),
			slog.String("subtask_id", subTaskID.String()),
			slog.Any("error", err),
		)
		return err
	}

	if details, err := s.composeDetails(ctx, parent); err == nil {
		s.events.EmitTaskUpdated(ctx, details)
	} else {
		s.logger.ErrorContext(ctx, "failed to compose task payload after subtask deletion",
			slog.String("operation", "DeleteSubTask"),
			slog.String("task_id", parent.ID.String()),
			slog.Any("error", err),
		)
	}

	return nil
}

// CanModifyTask exposes the modification gate to inbound adapters.
func (s *TaskService) CanModifyTask(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error) {
	return s.policy.CanModifyTask(ctx, taskID, actor)
}

// CanChangePhase exposes the phase gate to inbound adapters.
func (s *TaskService) CanChangePhase(ctx context.Context, taskID domain.ID, actor domain.Actor) (bool, error) {
	return s.policy.CanChangePhase(ctx, taskID, actor)
}

// IsTaskLocked reports the advisory editing lock on a task. Lock state is
// not persisted here, so an existing task always reads as unlocked.
func (s *TaskService) IsTaskLocked(ctx context.Context, taskID domain.ID) (*ports.TaskLock, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.policy.locks.lockOn(taskID), nil
}

// LockTaskForEditing announces that the actor started editing the task. The
// event is the whole effect: concurrent editors are warned, not blocked.
func (s *TaskService) LockTaskForEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}
	s.events.EmitTaskLocked(ctx, taskID, actor.UserID)
	return nil
}

// UnlockTaskAfterEditing announces that the actor stopped editing the task.
func (s *TaskService) UnlockTaskAfterEditing(ctx context.Context, taskID domain.ID, actor domain.Actor) error {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return err
	}
	s.events.EmitTaskUnlocked(ctx, taskID, actor.UserID)
	return nil
}

// composeDetails assembles the full read model for a task the caller already
// loaded.
func (s *TaskService) composeDetails(ctx context.Context, t *task.Task) (*task.Details, error) {
	assignments, err := s.raci.ListForTask(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("loading task RACI set: %w", err)
	}

	subtasks, err := s.subtasks.ListByTask(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	subDetails := make([]task.SubTaskDetails, 0, len(subtasks))
	for _, st := range subtasks {
		stAssignments, err := s.raci.ListForSubTask(ctx, st.ID)
		if err != nil {
			return nil, fmt.Errorf("loading subtask RACI set: %w", err)
		}
		subDetails = append(subDetails, task.SubTaskDetails{
			SubTask: st,
			Raci:    task.BuildRaciMap(stAssignments),
		})
	}

	codes, err := s.profiles.ListForTask(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("listing impacted profiles: %w", err)
	}
	impacted := make([]string, 0, len(codes))
	for _, c := range codes {
		impacted = append(impacted, string(c))
	}

	return &task.Details{
		Task:             *t,
		Raci:             task.BuildRaciMap(assignments),
		SubTasks:         subDetails,
		ProfilesImpacted: impacted,
	}, nil
}

// composeSubTaskDetails assembles the read model for one subtask.
func (s *TaskService) composeSubTaskDetails(ctx context.Context, st *task.SubTask) (*task.SubTaskDetails, error) {
	assignments, err := s.raci.ListForSubTask(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("loading subtask RACI set: %w", err)
	}
	return &task.SubTaskDetails{
		SubTask: *st,
		Raci:    task.BuildRaciMap(assignments),
	}, nil
}

// verifyProfiles rejects codes that are malformed or absent from the catalog
// before any transaction opens.
func (s *TaskService) verifyProfiles(ctx context.Context, codes []profile.Code) error {
	for _, code := range codes {
		if !code.IsValid() {
			return &domain.ValidationError{Fields: map[string]string{
				"profiles_impacted": fmt.Sprintf("malformed profile code %q", string(code)),
			}}
		}
		exists, err := s.profiles.Exists(ctx, code)
		if err != nil {
			return fmt.Errorf("checking profile %s: %w", code, err)
		}
		if !exists {
			return fmt.Errorf("profile %s: %w", code, domain.ErrNotFound)
		}
	}
	return nil
}

// buildAssignments flattens a letter-to-users input map into validated
// assignment rows. Letters iterate in canonical R, A, C, I order so the row
// set is deterministic regardless of map iteration.
func buildAssignments(entityID domain.ID, raci map[task.Letter][]string) ([]task.Assignment, error) {
	for letter := range raci {
		if !letter.IsValid() {
			return nil, &domain.ValidationError{Fields: map[string]string{
				"raci": fmt.Sprintf("unknown RACI letter %q", string(letter)),
			}}
		}
	}

	var out []task.Assignment
	for _, letter := range task.Letters {
		for _, userID := range raci[letter] {
			a, err := task.NewAssignment(entityID, userID, letter)
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
	}
	return out, nil
}

// applyFieldChanges routes each supplied field through the entity's
// validating mutators. The first failure wins and leaves the entity
// untouched thanks to the mutators' rollback behavior.
func applyFieldChanges(t *task.Task, in ports.UpdateTaskInput) error {
	if in.Title != nil {
		if err := t.UpdateTitle(*in.Title); err != nil {
			return err
		}
	}
	if in.Description != nil {
		if err := t.UpdateDescription(*in.Description); err != nil {
			return err
		}
	}
	if in.PageRef != nil {
		if err := t.UpdatePageRef(*in.PageRef); err != nil {
			return err
		}
	}
	if in.Priority != nil {
		if err := t.UpdatePriority(*in.Priority); err != nil {
			return err
		}
	}
	if in.OwnerID != nil {
		if err := t.UpdateOwner(*in.OwnerID); err != nil {
			return err
		}
	}
	if in.SetPlannedDates {
		if err := t.UpdatePlannedDates(in.PlannedStart, in.PlannedEnd); err != nil {
			return err
		}
	}
	return nil
}
