package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/dverbeek84/raciflow/internal/domain"
	"github.com/dverbeek84/raciflow/internal/domain/profile"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
)

// CreateTaskRequest represents the JSON body for creating a new task.
// Progress is deliberately absent: it is derived from subtask completion.
type CreateTaskRequest struct {
	Phase            string              `json:"phase"`
	PageRef          string              `json:"page_ref,omitempty"`
	Title            string              `json:"title"`
	Description      string              `json:"description,omitempty"`
	Priority         int                 `json:"priority"`
	OwnerID          string              `json:"owner_id,omitempty"`
	PlannedStart     *time.Time          `json:"planned_start,omitempty"`
	PlannedEnd       *time.Time          `json:"planned_end,omitempty"`
	Raci             map[string][]string `json:"raci,omitempty"`
	ProfilesImpacted []string            `json:"profiles_impacted,omitempty"`
}

// Validate checks that required fields are present and enum fields have valid
// values. Returns a *domain.ValidationError if any checks fail.
func (r *CreateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = msgRequired
	}
	if !task.Phase(r.Phase).IsValid() {
		fields["phase"] = fmt.Sprintf("invalid: %q", r.Phase)
	}
	if !task.Priority(r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("must be %d-%d, got %d", task.PriorityMin, task.PriorityMax, r.Priority)
	}
	validateRaciKeys(fields, r.Raci)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToCreateTaskInput converts a validated request to the service input.
func (r *CreateTaskRequest) ToCreateTaskInput() ports.CreateTaskInput {
	return ports.CreateTaskInput{
		Phase:            task.Phase(r.Phase),
		PageRef:          r.PageRef,
		Title:            r.Title,
		Description:      r.Description,
		Priority:         task.Priority(r.Priority),
		OwnerID:          r.OwnerID,
		PlannedStart:     r.PlannedStart,
		PlannedEnd:       r.PlannedEnd,
		Raci:             toRaciInput(r.Raci),
		ProfilesImpacted: toProfileCodes(r.ProfilesImpacted),
	}
}

// PlannedDatesRequest carries both planned dates. Supplying the object
// replaces the stored dates; a null member clears that date.
type PlannedDatesRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// UpdateTaskRequest represents the JSON body for a partial task update.
// Nil fields are left unchanged. Raci and ProfilesImpacted, when present,
// fully replace the existing sets.
type UpdateTaskRequest struct {
	Title            *string              `json:"title,omitempty"`
	Description      *string              `json:"description,omitempty"`
	PageRef          *string              `json:"page_ref,omitempty"`
	Phase            *string              `json:"phase,omitempty"`
	Priority         *int                 `json:"priority,omitempty"`
	OwnerID          *string              `json:"owner_id,omitempty"`
	PlannedDates     *PlannedDatesRequest `json:"planned_dates,omitempty"`
	Raci             map[string][]string  `json:"raci,omitempty"`
	ProfilesImpacted *[]string            `json:"profiles_impacted,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTaskRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		fields["title"] = msgMustNotEmpty
	}
	if r.Phase != nil && !task.Phase(*r.Phase).IsValid() {
		fields["phase"] = fmt.Sprintf("invalid: %q", *r.Phase)
	}
	if r.Priority != nil && !task.Priority(*r.Priority).IsValid() {
		fields["priority"] = fmt.Sprintf("must be %d-%d, got %d", task.PriorityMin, task.PriorityMax, *r.Priority)
	}
	validateRaciKeys(fields, r.Raci)

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ToUpdateTaskInput converts a validated request to the service input.
func (r *UpdateTaskRequest) ToUpdateTaskInput() ports.UpdateTaskInput {
	in := ports.UpdateTaskInput{
		Title:       r.Title,
		Description: r.Description,
		PageRef:     r.PageRef,
		OwnerID:     r.OwnerID,
		Raci:        toRaciInput(r.Raci),
	}
	if r.Phase != nil {
		p := task.Phase(*r.Phase)
		in.Phase = &p
	}
	if r.Priority != nil {
		p := task.Priority(*r.Priority)
		in.Priority = &p
	}
	if r.PlannedDates != nil {
		in.SetPlannedDates = true
		in.PlannedStart = r.PlannedDates.Start
		in.PlannedEnd = r.PlannedDates.End
	}
	if r.ProfilesImpacted != nil {
		in.ProfilesImpacted = toProfileCodes(*r.ProfilesImpacted)
		if in.ProfilesImpacted == nil {
			in.ProfilesImpacted = []profile.Code{}
		}
	}
	return in
}

// CreateSubTaskRequest represents the JSON body for creating a subtask.
// Completion always starts false and the RACI set is copied from the parent.
type CreateSubTaskRequest struct {
	Title string `json:"title"`
}

// Validate checks that required fields are present.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateSubTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &domain.ValidationError{Fields: map[string]string{"title": msgRequired}}
	}
	return nil
}

// UpdateSubTaskStatusRequest represents the JSON body for toggling a
// subtask's completion flag.
type UpdateSubTaskStatusRequest struct {
	Completed *bool `json:"completed"`
}

// Validate checks that the completion flag is present.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateSubTaskStatusRequest) Validate() error {
	if r.Completed == nil {
		return &domain.ValidationError{Fields: map[string]string{"completed": msgRequired}}
	}
	return nil
}

// validateRaciKeys records a field error for every invalid RACI letter key.
func validateRaciKeys(fields map[string]string, raci map[string][]string) {
	for letter := range raci {
		if !task.Letter(letter).IsValid() {
			fields["raci."+letter] = "must be one of R, A, C, I"
		}
	}
}

// toRaciInput converts the wire RACI map to the service input form.
// Returns nil for a nil map so "not supplied" is preserved.
func toRaciInput(raci map[string][]string) map[task.Letter][]string {
	if raci == nil {
		return nil
	}
	out := make(map[task.Letter][]string, len(raci))
	for letter, users := range raci {
		out[task.Letter(letter)] = users
	}
	return out
}

// toProfileCodes converts wire profile codes to domain codes.
func toProfileCodes(codes []string) []profile.Code {
	if codes == nil {
		return nil
	}
	out := make([]profile.Code, len(codes))
	for i, c := range codes {
		out[i] = profile.Code(c)
	}
	return out
}
