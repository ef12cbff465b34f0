package task

import (
	"github.com/dverbeek84/raciflow/internal/domain"
)

// Letter is a RACI responsibility letter. A user holds at most one letter
// per task or subtask; assigning a new letter replaces the previous one.
type Letter string

const (
	LetterResponsible Letter = "R"
	LetterAccountable Letter = "A"
	LetterConsulted   Letter = "C"
	LetterInformed    Letter = "I"
)

// Letters lists all RACI letters in canonical R, A, C, I order.
var Letters = []Letter{LetterResponsible, LetterAccountable, LetterConsulted, LetterInformed}

// IsValid returns true if the letter is one of R, A, C, I.
func (l Letter) IsValid() bool {
	switch l {
	case LetterResponsible, LetterAccountable, LetterConsulted, LetterInformed:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (l Letter) String() string {
	return string(l)
}

// CanModify reports whether the letter grants general modification rights on
// the entity it is assigned to. Only R and A do; C and I are advisory.
func (l Letter) CanModify() bool {
	return l == LetterResponsible || l == LetterAccountable
}

// Assignment binds one user to one RACI letter on a task or subtask.
// EntityID references either a task or a subtask; the two assignment sets
// live in separate collections and never share rows.
type Assignment struct {
	EntityID domain.ID
	UserID   string
	Letter   Letter
}

// NewAssignment validates and builds an Assignment.
// Returns a *domain.ValidationError if any field is invalid.
func NewAssignment(entityID domain.ID, userID string, letter Letter) (Assignment, error) {
	fields := make(map[string]string)

	if entityID.IsZero() {
		fields["entity_id"] = "is required"
	}
	if userID == "" {
		fields["user_id"] = "is required"
	}
	if !letter.IsValid() {
		fields["letter"] = "must be one of R, A, C, I"
	}

	if len(fields) > 0 {
		return Assignment{}, &domain.ValidationError{Fields: fields}
	}
	return Assignment{EntityID: entityID, UserID: userID, Letter: letter}, nil
}

// RaciMap groups the user IDs of an entity's assignment set by letter.
// Each sequence preserves the order of the input assignments.
type RaciMap struct {
	Responsible []string
	Accountable []string
	Consulted   []string
	Informed    []string
}

// BuildRaciMap buckets a flat assignment list by letter in a single pass.
// Assignments with an invalid letter are skipped; the repository layer never
// produces them.
func BuildRaciMap(assignments []Assignment) RaciMap {
	var m RaciMap
	for _, a := range assignments {
		switch a.Letter {
		case LetterResponsible:
			m.Responsible = append(m.Responsible, a.UserID)
		case LetterAccountable:
			m.Accountable = append(m.Accountable, a.UserID)
		case LetterConsulted:
			m.Consulted = append(m.Consulted, a.UserID)
		case LetterInformed:
			m.Informed = append(m.Informed, a.UserID)
		}
	}
	return m
}

// LetterFor returns the letter held by userID in the assignment list, or
// false if the user holds none.
func LetterFor(assignments []Assignment, userID string) (Letter, bool) {
	for _, a := range assignments {
		if a.UserID == userID {
			return a.Letter, true
		}
	}
	return "", false
}
