// Package apperr defines the error taxonomy shared by the records,
// tasks and accounts domains. The HTTP layer maps these to structured
// JSON error bodies; storage-layer failures are wrapped with operation
// context and surfaced as ErrStorageUnavailable equivalents.
package apperr

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable indicates the backing store could not serve the
// request. Not retried at this layer.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Validation reasons.
const (
	ReasonMissing   = "missing"
	ReasonMalformed = "malformed"
	ReasonDuplicate = "duplicate"
)

// ValidationError reports a single bad field in an inbound payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// DuplicateError reports a unique-constraint violation, naming the
// conflicting field and value.
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s: %s=%q", e.Resource, e.Field, e.Value)
}

// NotFoundError reports a referenced uuid that does not exist.
type NotFoundError struct {
	Resource string
	UUID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("missing %s %s", e.Resource, e.UUID)
}

// Missing builds a NotFoundError for the given resource/uuid pair.
func Missing(resource, uuid string) *NotFoundError {
	return &NotFoundError{Resource: resource, UUID: uuid}
}

// Duplicate builds a DuplicateError for the given resource/field/value.
func Duplicate(resource, field, value string) *DuplicateError {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
