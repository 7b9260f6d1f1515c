// Package viewmodel holds the client-side state machines behind every
// screen: the filtered note list, the note editor, the detail page and the
// delete confirmation they share. View-models talk to a backend.Client
// directly and report failures as apperr values; they never panic into the
// rendering layer.
package viewmodel

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/jotter/internal/backend"
)

// Route names the screen a caller should navigate to after an operation.
type Route string

const (
	RouteNone   Route = ""
	RouteList   Route = "list"
	RouteLogin  Route = "login"
	RouteDetail Route = "detail"
)

// Option configures a view-model.
type Option func(*options)

type options struct {
	log *slog.Logger
	now func() time.Time
}

// WithLogger sets the logger used to report failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock sets the clock used for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ensureSession loads the session identity once if nobody has yet.
func ensureSession(ctx context.Context, s *backend.Session) error {
	if s.Loaded() {
		return nil
	}
	_, err := s.Refresh(ctx)
	return err
}
