// Package apperr holds the error taxonomy shared by the store, the backend
// facade and the view-models.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrBusy            = errors.New("operation already in progress")
)

// ValidationError is a field-level input error. It is raised locally and
// never reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// FetchError wraps a failure to list or read notes.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError wraps a failed insert, update or delete.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Message returns a user-facing sentence for err.
func Message(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotFound):
		return "Note not found."
	case errors.Is(err, ErrUnauthenticated):
		return "Please sign in to continue."
	case errors.Is(err, ErrForbidden):
		return "You can only change your own notes."
	case errors.Is(err, ErrBusy):
		return "Still working on the previous request."
	}
	var me *MutationError
	if errors.As(err, &me) {
		return fmt.Sprintf("Error saving changes: %v", me.Err)
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return "Could not load notes. Try again later."
	}
	return "Something went wrong."
}
