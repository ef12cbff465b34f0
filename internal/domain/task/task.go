package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
)

// msgRequired is the validation message for mandatory fields.
const msgRequired = "is required"

// Task is the central unit of work. A task lives in exactly one workflow
// phase, carries a RACI assignment set and impacted-profile associations,
// and owns its subtasks: deleting the task cascades to all three.
//
// Progress is derived exclusively from the subtask completion ratio and is
// never accepted from a client; see SetProgress.
type Task struct {
	ID           domain.ID
	Phase        Phase
	PageRef      string
	Title        string
	Description  string
	Priority     Priority
	OwnerID      string
	Progress     int
	CreatorID    string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTaskInput carries the caller-supplied fields for the New factory.
// Progress is deliberately absent: new tasks always start at 0.
type NewTaskInput struct {
	Phase        Phase
	PageRef      string
	Title        string
	Description  string
	Priority     Priority
	OwnerID      string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
}

// New constructs a Task with a fresh identifier, progress forced to 0, and
// both timestamps set to now. It is the only way to obtain a Task, so no
// task can exist in a state that violates the entity invariants.
// Returns a *domain.ValidationError if any invariant is violated.
func New(in NewTaskInput, creatorID string) (*Task, error) {
	now := time.Now().UTC()
	t := &Task{
		ID:           domain.NewID(),
		Phase:        in.Phase,
		PageRef:      in.PageRef,
		Title:        in.Title,
		Description:  in.Description,
		Priority:     in.Priority,
		OwnerID:      in.OwnerID,
		Progress:     0,
		CreatorID:    creatorID,
		PlannedStart: in.PlannedStart,
		PlannedEnd:   in.PlannedEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if creatorID == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"creator_id": msgRequired}}
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate checks all entity invariants.
func (t *Task) validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(t.Title) == "" {
		fields["title"] = msgRequired
	}
	if !t.Phase.IsValid() {
		fields["phase"] = fmt.Sprintf("invalid: %q", t.Phase)
	}
	if !t.Priority.IsValid() {
		fields["priority"] = fmt.Sprintf("must be %d-%d, got %d", PriorityMin, PriorityMax, t.Priority)
	}
	if t.Progress < 0 || t.Progress > 100 {
		fields["progress"] = fmt.Sprintf("must be 0-100, got %d", t.Progress)
	}
	if t.PlannedStart != nil && t.PlannedEnd != nil && t.PlannedEnd.Before(*t.PlannedStart) {
		fields["planned_end"] = "must not precede planned_start"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// mutate applies fn, re-validates, and rolls the entity back unchanged when
// the result would violate an invariant. On success UpdatedAt is stamped.
func (t *Task) mutate(fn func(*Task)) error {
	prev := *t
	fn(t)
	if err := t.validate(); err != nil {
		*t = prev
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateTitle replaces the title. Fails on an empty title.
func (t *Task) UpdateTitle(title string) error {
	return t.mutate(func(t *Task) { t.Title = title })
}

// UpdateDescription replaces the free-form description.
func (t *Task) UpdateDescription(description string) error {
	return t.mutate(func(t *Task) { t.Description = description })
}

// UpdatePageRef replaces the target page reference.
func (t *Task) UpdatePageRef(pageRef string) error {
	return t.mutate(func(t *Task) { t.PageRef = pageRef })
}

// UpdatePhase moves the task to another workflow phase. Authorization for
// phase changes is stricter than for other edits and is enforced by the
// service layer, not here.
func (t *Task) UpdatePhase(phase Phase) error {
	return t.mutate(func(t *Task) { t.Phase = phase })
}

// UpdatePriority replaces the priority. Fails outside [PriorityMin, PriorityMax].
func (t *Task) UpdatePriority(priority Priority) error {
	return t.mutate(func(t *Task) { t.Priority = priority })
}

// UpdateOwner reassigns the task owner. An empty owner clears ownership.
func (t *Task) UpdateOwner(ownerID string) error {
	return t.mutate(func(t *Task) { t.OwnerID = ownerID })
}

// UpdatePlannedDates replaces both planned dates at once. Fails when both
// are set and end precedes start. Nil clears a date.
func (t *Task) UpdatePlannedDates(start, end *time.Time) error {
	return t.mutate(func(t *Task) {
		t.PlannedStart = start
		t.PlannedEnd = end
	})
}

// SetProgress records a recomputed completion percentage. It exists for the
// progress-aggregation rule only; client updates never reach it.
func (t *Task) SetProgress(progress int) error {
	return t.mutate(func(t *Task) { t.Progress = progress })
}

// IsOwnedBy reports whether userID is the task's current owner.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.OwnerID != "" && t.OwnerID == userID
}
