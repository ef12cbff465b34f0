package domain

import (
	"github.com/oklog/ulid/v2"
)

// ID is a ULID entity identifier. The zero value is invalid.
type ID string

// NewID generates a new random ULID identifier.
func NewID() ID {
	return ID(ulid.Make().String())
}

// ParseID validates raw as a ULID and returns it as an ID.
// Returns a *ValidationError if raw is not a valid ULID.
func ParseID(raw string) (ID, error) {
	if _, err := ulid.ParseStrict(raw); err != nil {
		return "", &ValidationError{Fields: map[string]string{"id": "must be a valid ULID"}}
	}
	return ID(raw), nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id == ""
}
