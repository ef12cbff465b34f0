// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dverbeek84/raciflow/internal/adapters/http/dto"
	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// TaskHandler handles HTTP requests for task CRUD, subtask operations,
// permissions, and the advisory editing lock.
type TaskHandler struct {
	svc ports.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given service port.
func NewTaskHandler(svc ports.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListTasks handles GET /api/v1/tasks. Filters: phase, owner_id, creator_id.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	tasks, err := h.svc.ListTasks(r.Context(), filter)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// CreateTask handles POST /api/v1/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.svc.CreateTask(r.Context(), req.ToCreateTaskInput(), actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToTaskDetailsResponse(details))
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	details, err := h.svc.GetTaskWithDetails(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskDetailsResponse(details))
}

// UpdateTask handles PATCH /api/v1/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.svc.UpdateTask(r.Context(), id, req.ToUpdateTaskInput(), actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskDetailsResponse(details))
}

// DeleteTask handles DELETE /api/v1/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.DeleteTask(r.Context(), id, actor); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateSubTask handles POST /api/v1/tasks/{id}/subtasks.
func (h *TaskHandler) CreateSubTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	taskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CreateSubTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.svc.CreateSubTask(r.Context(), taskID, ports.CreateSubTaskInput{Title: req.Title}, actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToSubTaskResponse(details))
}

// UpdateSubTaskStatus handles PATCH /api/v1/subtasks/{id}/status.
func (h *TaskHandler) UpdateSubTaskStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	subTaskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateSubTaskStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	details, err := h.svc.UpdateSubTaskStatus(r.Context(), subTaskID, *req.Completed, actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubTaskResponse(details))
}

// DeleteSubTask handles DELETE /api/v1/subtasks/{id}.
func (h *TaskHandler) DeleteSubTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	subTaskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.DeleteSubTask(r.Context(), subTaskID, actor); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPermissions handles GET /api/v1/tasks/{id}/permissions. It reports what
// the caller may do with the task; an editing lock held by another user
// surfaces as can_modify=false, not as an error.
func (h *TaskHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	taskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	canModify, err := h.svc.CanModifyTask(r.Context(), taskID, actor)
	if err != nil && !isLockConflict(err) {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	canChangePhase, err := h.svc.CanChangePhase(r.Context(), taskID, actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PermissionsResponse{
		CanModify:      canModify,
		CanChangePhase: canChangePhase,
	})
}

// GetLockStatus handles GET /api/v1/tasks/{id}/lock.
func (h *TaskHandler) GetLockStatus(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	lock, err := h.svc.IsTaskLocked(r.Context(), taskID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLockStatusResponse(lock))
}

// LockTask handles POST /api/v1/tasks/{id}/lock.
func (h *TaskHandler) LockTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	taskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.LockTaskForEditing(r.Context(), taskID, actor); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnlockTask handles DELETE /api/v1/tasks/{id}/lock.
func (h *TaskHandler) UnlockTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	taskID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.UnlockTaskAfterEditing(r.Context(), taskID, actor); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseTaskFilter builds a TaskFilter from query parameters.
func parseTaskFilter(r *http.Request) (ports.TaskFilter, error) {
	var filter ports.TaskFilter
	q := r.URL.Query()

	if raw := q.Get("phase"); raw != "" {
		p := task.Phase(raw)
		if !p.IsValid() {
			return filter, &domain.ValidationError{
				Fields: map[string]string{"phase": fmt.Sprintf("invalid: %q", raw)},
			}
		}
		filter.Phase = &p
	}
	if raw := q.Get("owner_id"); raw != "" {
		filter.OwnerID = &raw
	}
	if raw := q.Get("creator_id"); raw != "" {
		filter.CreatorID = &raw
	}

	return filter, nil
}

// isLockConflict reports whether err is the editing-lock conflict raised by
// the modification policy.
func isLockConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
