package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the service layer. Handlers translate these
// into HTTP status codes; anything else is treated as internal.
var (
	// ErrNotFound means a referenced entity does not exist (or no longer does).
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the requested transition is not allowed from
	// the entity's current state, e.g. resolving a non-pending request.
	ErrInvalidState = errors.New("invalid state")

	// ErrMeetingRequired means a planning meeting should happen before the
	// operation. It is advisory; callers may retry with an override.
	ErrMeetingRequired = errors.New("planning meeting required")
)

// ValidationError reports rejected input: a missing required field, a
// constraint violation, or a malformed value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a storage failure after partial writes were
// rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
