// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// RaciResponse represents a bucketed RACI map in HTTP responses.
type RaciResponse struct {
	Responsible []string `json:"responsible"`
	Accountable []string `json:"accountable"`
	Consulted   []string `json:"consulted"`
	Informed    []string `json:"informed"`
}

// ToRaciResponse converts a domain RaciMap to an HTTP response DTO.
// Empty buckets serialize as [] rather than null.
func ToRaciResponse(m task.RaciMap) RaciResponse {
	return RaciResponse{
		Responsible: orEmpty(m.Responsible),
		Accountable: orEmpty(m.Accountable),
		Consulted:   orEmpty(m.Consulted),
		Informed:    orEmpty(m.Informed),
	}
}

// SubTaskResponse represents a subtask with its own RACI map.
type SubTaskResponse struct {
	ID        string       `json:"id"`
	TaskID    string       `json:"task_id"`
	Title     string       `json:"title"`
	Completed bool         `json:"completed"`
	CreatorID string       `json:"creator_id"`
	Raci      RaciResponse `json:"raci"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// ToSubTaskResponse converts a composed subtask read model to an HTTP
// response DTO.
func ToSubTaskResponse(d *task.SubTaskDetails) SubTaskResponse {
	return SubTaskResponse{
		ID:        d.SubTask.ID.String(),
		TaskID:    d.SubTask.TaskID.String(),
		Title:     d.SubTask.Title,
		Completed: d.SubTask.Completed,
		CreatorID: d.SubTask.CreatorID,
		Raci:      ToRaciResponse(d.Raci),
		CreatedAt: d.SubTask.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.SubTask.UpdatedAt.Format(time.RFC3339),
	}
}

// TaskResponse represents a task summary without details. List endpoints
// return summaries; detail endpoints return TaskDetailsResponse.
type TaskResponse struct {
	ID           string  `json:"id"`
	Phase        string  `json:"phase"`
	PageRef      string  `json:"page_ref,omitempty"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Priority     int     `json:"priority"`
	OwnerID      string  `json:"owner_id,omitempty"`
	Progress     int     `json:"progress"`
	CreatorID    string  `json:"creator_id"`
	PlannedStart *string `json:"planned_start,omitempty"`
	PlannedEnd   *string `json:"planned_end,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ToTaskResponse converts a domain Task entity to an HTTP response DTO.
func ToTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID.String(),
		Phase:        t.Phase.String(),
		PageRef:      t.PageRef,
		Title:        t.Title,
		Description:  t.Description,
		Priority:     int(t.Priority),
		OwnerID:      t.OwnerID,
		Progress:     t.Progress,
		CreatorID:    t.CreatorID,
		PlannedStart: formatOptionalTime(t.PlannedStart),
		PlannedEnd:   formatOptionalTime(t.PlannedEnd),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

// TaskListResponse represents a list of task summaries.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Count int            `json:"count"`
}

// ToTaskListResponse converts a slice of domain Task entities to an HTTP
// list response DTO.
func ToTaskListResponse(tasks []task.Task) TaskListResponse {
	items := make([]TaskResponse, len(tasks))
	for i := range tasks {
		items[i] = ToTaskResponse(&tasks[i])
	}
	return TaskListResponse{
		Tasks: items,
		Count: len(items),
	}
}

// TaskDetailsResponse represents the composed read model for one task.
type TaskDetailsResponse struct {
	TaskResponse
	Raci             RaciResponse      `json:"raci"`
	SubTasks         []SubTaskResponse `json:"subtasks"`
	ProfilesImpacted []string          `json:"profiles_impacted"`
}

// ToTaskDetailsResponse converts a composed task read model to an HTTP
// response DTO.
func ToTaskDetailsResponse(d *task.Details) TaskDetailsResponse {
	subs := make([]SubTaskResponse, len(d.SubTasks))
	for i := range d.SubTasks {
		subs[i] = ToSubTaskResponse(&d.SubTasks[i])
	}
	return TaskDetailsResponse{
		TaskResponse:     ToTaskResponse(&d.Task),
		Raci:             ToRaciResponse(d.Raci),
		SubTasks:         subs,
		ProfilesImpacted: orEmpty(d.ProfilesImpacted),
	}
}

// PermissionsResponse reports what the caller may do with a task.
type PermissionsResponse struct {
	CanModify      bool `json:"can_modify"`
	CanChangePhase bool `json:"can_change_phase"`
}

// LockStatusResponse reports the advisory editing lock on a task.
type LockStatusResponse struct {
	Locked     bool   `json:"locked"`
	UserID     string `json:"user_id,omitempty"`
	AcquiredAt string `json:"acquired_at,omitempty"`
}

// ToLockStatusResponse converts an optional lock to an HTTP response DTO.
func ToLockStatusResponse(lock *ports.TaskLock) LockStatusResponse {
	if lock == nil {
		return LockStatusResponse{Locked: false}
	}
	return LockStatusResponse{
		Locked:     true,
		UserID:     lock.UserID,
		AcquiredAt: lock.AcquiredAt.Format(time.RFC3339),
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
