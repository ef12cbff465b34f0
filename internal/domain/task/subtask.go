package task

import (
	"strings"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
)

// SubTask is a unit of work under a task. Its RACI set is copied from the
// parent at creation time and evolves independently afterwards; toggling its
// completion drives the parent's progress recomputation.
type SubTask struct {
	ID        domain.ID
	TaskID    domain.ID
	Title     string
	Completed bool
	CreatorID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubTask constructs a SubTask under the given parent task with completion
// defaulting to false. The parent's existence is verified by the service
// layer before persistence.
// Returns a *domain.ValidationError if any invariant is violated.
func NewSubTask(taskID domain.ID, title, creatorID string) (*SubTask, error) {
	fields := make(map[string]string)

	if taskID.IsZero() {
		fields["task_id"] = msgRequired
	}
	if strings.TrimSpace(title) == "" {
		fields["title"] = msgRequired
	}
	if creatorID == "" {
		fields["creator_id"] = msgRequired
	}

	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	now := time.Now().UTC()
	return &SubTask{
		ID:        domain.NewID(),
		TaskID:    taskID,
		Title:     title,
		Completed: false,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateTitle replaces the title. Fails on an empty title, leaving the
// subtask unchanged.
func (st *SubTask) UpdateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &domain.ValidationError{Fields: map[string]string{"title": msgRequired}}
	}
	st.Title = title
	st.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCompleted records the completion flag and stamps UpdatedAt. The parent
// progress recomputation is the caller's responsibility.
func (st *SubTask) SetCompleted(completed bool) {
	st.Completed = completed
	st.UpdatedAt = time.Now().UTC()
}

// IsCreatedBy reports whether userID created this subtask.
func (st *SubTask) IsCreatedBy(userID string) bool {
	return st.CreatorID == userID
}
