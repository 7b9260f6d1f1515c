package viewmodel

import (
	"context"
	"errors"
	"sync"

	"github.com/starford/jotter/internal/apperr"
)

// ErrNothingPending is returned by Confirm when no delete was requested.
var ErrNothingPending = errors.New("viewmodel: no delete pending")

// DeleteState is a step of the delete confirmation flow.
type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeletePending
	DeleteExecuting
)

func (s DeleteState) String() string {
	switch s {
	case DeletePending:
		return "pending"
	case DeleteExecuting:
		return "executing"
	default:
		return "idle"
	}
}

// DeleteFunc performs the actual deletion.
type DeleteFunc func(ctx context.Context, id string) error

// DeleteFlow is the two-step confirmation before a note is removed:
// Idle, then Pending(id) after Request, then Executing after Confirm and
// back to Idle whatever the outcome. Cancel returns Pending to Idle.
// The zero value is an idle flow.
type DeleteFlow struct {
	mu     sync.Mutex
	state  DeleteState
	target string
}

// Request marks id for deletion, replacing any previous target.
func (f *DeleteFlow) Request(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == DeleteExecuting {
		return apperr.ErrBusy
	}
	f.state = DeletePending
	f.target = id
	return nil
}

// Cancel abandons a pending request. It has no effect while executing.
func (f *DeleteFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == DeletePending {
		f.state = DeleteIdle
		f.target = ""
	}
}

// State returns the current step and the targeted id, if any.
func (f *DeleteFlow) State() (DeleteState, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.target
}

// Pending returns the id awaiting confirmation.
func (f *DeleteFlow) Pending() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target, f.state == DeletePending
}

// Confirm runs del on the pending id. The flow is back to Idle when
// Confirm returns, and the error from del is passed through unchanged.
func (f *DeleteFlow) Confirm(ctx context.Context, del DeleteFunc) (string, error) {
	f.mu.Lock()
	switch f.state {
	case DeleteExecuting:
		f.mu.Unlock()
		return "", apperr.ErrBusy
	case DeleteIdle:
		f.mu.Unlock()
		return "", ErrNothingPending
	}
	id := f.target
	f.state = DeleteExecuting
	f.mu.Unlock()

	err := del(ctx, id)

	f.mu.Lock()
	f.state = DeleteIdle
	f.target = ""
	f.mu.Unlock()
	return id, err
}
