// Package profile holds the impacted-profile catalog types. An impacted
// profile is a fixed catalog code identifying an end-user role affected by a
// task's outcome; it is unrelated to the internal roles used for
// authorization.
package profile

import (
	"regexp"

	"github.com/dverbeek84/raciflow/internal/domain"
)

// codePattern constrains catalog codes to short uppercase mnemonics (TEC,
// ADM, ...). The catalog itself is seeded in storage; this only rejects
// obviously malformed input before a lookup.
var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,7}$`)

// Code is an impacted-profile catalog code.
type Code string

// IsValid returns true if the code is well-formed. Whether it exists in the
// catalog is a repository question.
func (c Code) IsValid() bool {
	return codePattern.MatchString(string(c))
}

// String implements fmt.Stringer.
func (c Code) String() string {
	return string(c)
}

// Profile is one entry of the impacted-profile catalog.
type Profile struct {
	Code  Code
	Label string
}

// Validate checks that the catalog entry is well-formed.
// Returns a *domain.ValidationError if any checks fail.
func (p Profile) Validate() error {
	fields := make(map[string]string)

	if !p.Code.IsValid() {
		fields["code"] = "must be a short uppercase code"
	}
	if p.Label == "" {
		fields["label"] = "is required"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
