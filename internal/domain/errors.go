package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ForbiddenError is an authorization denial that names the permission the
// actor is missing, so the caller can surface an actionable message.
type ForbiddenError struct {
	Missing string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s: requires %s", ErrForbidden.Error(), e.Missing)
}

func (e *ForbiddenError) Unwrap() error {
	return ErrForbidden
}

// ConflictError signals a concurrent-edit situation, typically a soft lock
// held by another user. Unlike ForbiddenError it means "try later", not
// "never allowed".
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict.Error(), e.Detail)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
