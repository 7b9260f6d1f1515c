package backend

import (
	"context"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// NoteStore is the persistence Local needs. *store.Store satisfies it.
type NoteStore interface {
	ListVisible(ctx context.Context, viewerID string) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	InsertNote(ctx context.Context, n models.Note) (*models.Note, error)
	UpdateNote(ctx context.Context, id, ownerID string, p models.Patch) error
	DeleteNote(ctx context.Context, id, ownerID string) error
}

// Local is an in-process Client acting as one fixed identity. It applies
// row-level rules: anyone reads public notes, owners read their private
// notes, only owners mutate.
type Local struct {
	store NoteStore
	user  *models.User
	now   func() time.Time
}

// LocalOption configures a Local client.
type LocalOption func(*Local)

// WithClock overrides the clock used to stamp notes submitted without a
// modification time.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) { l.now = now }
}

// NewLocal creates a client acting as user; nil means anonymous.
func NewLocal(store NoteStore, user *models.User, opts ...LocalOption) *Local {
	l := &Local{store: store, user: user, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CurrentUser returns the acting user.
func (l *Local) CurrentUser(context.Context) (*models.User, error) {
	return l.user, nil
}

// ListNotes returns public notes and the acting user's private notes.
func (l *Local) ListNotes(ctx context.Context) ([]models.Note, error) {
	return l.store.ListVisible(ctx, l.userID())
}

// GetNote returns the note if it is public or owned by the acting user.
// Private notes of other users are reported as not found.
func (l *Local) GetNote(ctx context.Context, id string) (*models.Note, error) {
	n, err := l.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.IsPublic && !n.OwnedBy(l.user) {
		return nil, apperr.ErrNotFound
	}
	return n, nil
}

// InsertNote stores n. The note must be owned by the acting user.
func (l *Local) InsertNote(ctx context.Context, n models.Note) (*models.Note, error) {
	if l.user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if n.UserID != l.user.ID {
		return nil, apperr.ErrForbidden
	}
	if err := models.DraftFrom(n).Validate(); err != nil {
		return nil, err
	}
	if n.ModifiedAt.IsZero() {
		n.ModifiedAt = l.now()
	}
	return l.store.InsertNote(ctx, n)
}

// UpdateNote applies p to note id if the acting user owns it.
func (l *Local) UpdateNote(ctx context.Context, id string, p models.Patch) error {
	if l.user == nil {
		return apperr.ErrUnauthenticated
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ModifiedAt.IsZero() {
		p.ModifiedAt = l.now()
	}
	return l.store.UpdateNote(ctx, id, l.user.ID, p)
}

// DeleteNote removes note id if the acting user owns it.
func (l *Local) DeleteNote(ctx context.Context, id string) error {
	if l.user == nil {
		return apperr.ErrUnauthenticated
	}
	return l.store.DeleteNote(ctx, id, l.user.ID)
}

func (l *Local) userID() string {
	if l.user == nil {
		return ""
	}
	return l.user.ID
}
