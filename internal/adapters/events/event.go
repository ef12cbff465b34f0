// Package events implements the collaboration event pipeline: an in-process
// broker that receives committed mutations from the application layer and
// fans them out to sinks (structured log, SSE subscriber hub, webhook).
//
// Emission is fire-and-forget. The broker enqueues onto a bounded buffer and
// a background dispatcher delivers to all sinks concurrently; when the buffer
// is full the event is dropped and counted, never blocking the request path.
package events

import (
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/task"
)

// Kind identifies the mutation an event announces.
type Kind string

const (
	KindTaskCreated    Kind = "task.created"
	KindTaskUpdated    Kind = "task.updated"
	KindTaskDeleted    Kind = "task.deleted"
	KindSubTaskUpdated Kind = "subtask.updated"
	KindTaskLocked     Kind = "task.locked"
	KindTaskUnlocked   Kind = "task.unlocked"
)

// Event is one committed mutation as seen by collaborators. It carries the
// payload that was current at emission time; deletions and lock notifications
// carry identifiers only.
type Event struct {
	ID         string     `json:"id"`
	Kind       Kind       `json:"kind"`
	OccurredAt time.Time  `json:"occurred_at"`
	TaskID     string     `json:"task_id"`
	UserID     string     `json:"user_id,omitempty"`
	Task       *Task     `json:"task,omitempty"`
	SubTask    *SubTask  `json:"subtask,omitempty"`
}

// Raci is the wire form of a bucketed RACI map.
type Raci struct {
	Responsible []string `json:"responsible"`
	Accountable []string `json:"accountable"`
	Consulted   []string `json:"consulted"`
	Informed    []string `json:"informed"`
}

// SubTask is the wire form of a subtask with its own RACI map.
type SubTask struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatorID string    `json:"creator_id"`
	Raci      Raci      `json:"raci"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is the wire form of a composed task payload.
type Task struct {
	ID               string     `json:"id"`
	Phase            string     `json:"phase"`
	PageRef          string     `json:"page_ref,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Priority         int        `json:"priority"`
	OwnerID          string     `json:"owner_id,omitempty"`
	Progress         int        `json:"progress"`
	CreatorID        string     `json:"creator_id"`
	PlannedStart     *time.Time `json:"planned_start,omitempty"`
	PlannedEnd       *time.Time `json:"planned_end,omitempty"`
	Raci             Raci       `json:"raci"`
	SubTasks         []SubTask  `json:"subtasks"`
	ProfilesImpacted []string   `json:"profiles_impacted"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// newEvent stamps a fresh identifier and emission time.
func newEvent(kind Kind, taskID domain.ID, userID string) Event {
	return Event{
		ID:         domain.NewID().String(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		TaskID:     taskID.String(),
		UserID:     userID,
	}
}

func raciFromMap(m task.RaciMap) Raci {
	return Raci{
		Responsible: emptyIfNil(m.Responsible),
		Accountable: emptyIfNil(m.Accountable),
		Consulted:   emptyIfNil(m.Consulted),
		Informed:    emptyIfNil(m.Informed),
	}
}

func subTaskFromDetails(d *task.SubTaskDetails) *SubTask {
	return &SubTask{
		ID:        d.SubTask.ID.String(),
		TaskID:    d.SubTask.TaskID.String(),
		Title:     d.SubTask.Title,
		Completed: d.SubTask.Completed,
		CreatorID: d.SubTask.CreatorID,
		Raci:      raciFromMap(d.Raci),
		CreatedAt: d.SubTask.CreatedAt,
		UpdatedAt: d.SubTask.UpdatedAt,
	}
}

func taskFromDetails(d *task.Details) *Task {
	subs := make([]SubTask, 0, len(d.SubTasks))
	for i := range d.SubTasks {
		subs = append(subs, *subTaskFromDetails(&d.SubTasks[i]))
	}

	return &Task{
		ID:               d.Task.ID.String(),
		Phase:            d.Task.Phase.String(),
		PageRef:          d.Task.PageRef,
		Title:            d.Task.Title,
		Description:      d.Task.Description,
		Priority:         int(d.Task.Priority),
		OwnerID:          d.Task.OwnerID,
		Progress:         d.Task.Progress,
		CreatorID:        d.Task.CreatorID,
		PlannedStart:     d.Task.PlannedStart,
		PlannedEnd:       d.Task.PlannedEnd,
		Raci:             raciFromMap(d.Raci),
		SubTasks:         subs,
		ProfilesImpacted: emptyIfNil(d.ProfilesImpacted),
		CreatedAt:        d.Task.CreatedAt,
		UpdatedAt:        d.Task.UpdatedAt,
	}
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
