// Package backend defines the facade the view-models talk to, with an
// in-process implementation over the SQL store and an HTTP implementation
// over the JSON API.
package backend

import (
	"context"
	"sync"

	"github.com/starford/jotter/internal/models"
)

// Client is the backend facade. Implementations decide what the caller may
// see and change; the view-models never filter for security themselves.
type Client interface {
	// CurrentUser returns the signed-in user, or nil for an anonymous caller.
	CurrentUser(ctx context.Context) (*models.User, error)
	// ListNotes returns every note visible to the caller, most recently
	// modified first.
	ListNotes(ctx context.Context) ([]models.Note, error)
	// GetNote returns one note or apperr.ErrNotFound.
	GetNote(ctx context.Context, id string) (*models.Note, error)
	// InsertNote stores a new note and returns it with its assigned id.
	InsertNote(ctx context.Context, n models.Note) (*models.Note, error)
	// UpdateNote overwrites the mutable fields of note id.
	UpdateNote(ctx context.Context, id string, p models.Patch) error
	// DeleteNote removes note id permanently.
	DeleteNote(ctx context.Context, id string) error
}

// Session caches the caller's identity. It is created once, shared by the
// view-models of one client, and only changes when Refresh is called.
type Session struct {
	client Client

	mu     sync.RWMutex
	user   *models.User
	loaded bool
}

// NewSession creates a session bound to client. The identity is unknown
// until the first Refresh.
func NewSession(client Client) *Session {
	return &Session{client: client}
}

// NewSessionFor creates a session whose identity is already known.
func NewSessionFor(client Client, u *models.User) *Session {
	return &Session{client: client, user: u, loaded: true}
}

// Refresh re-reads the current user from the backend. On error the previous
// identity is kept.
func (s *Session) Refresh(ctx context.Context) (*models.User, error) {
	u, err := s.client.CurrentUser(ctx)
	if err != nil {
		return s.User(), err
	}
	s.mu.Lock()
	s.user = u
	s.loaded = true
	s.mu.Unlock()
	return u, nil
}

// User returns the cached user, nil when anonymous.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SignedIn reports whether a user is cached.
func (s *Session) SignedIn() bool {
	return s.User() != nil
}

// Loaded reports whether Refresh has succeeded at least once.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
