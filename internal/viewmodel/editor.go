package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
)

// Editor is the state behind the create and edit screens.
type Editor struct {
	client  backend.Client
	session *backend.Session
	log     *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	original *models.Note // nil when creating
	draft    models.Draft
	saved    *models.Note
	saving   bool
	fields   map[string]string
	err      error
}

// NewCreateEditor starts an editor for a new, private, empty note.
func NewCreateEditor(client backend.Client, session *backend.Session, opts ...Option) *Editor {
	o := buildOptions(opts)
	return &Editor{client: client, session: session, log: o.log, now: o.now}
}

// OpenEditor loads note id for editing. Anonymous sessions get
// apperr.ErrUnauthenticated, other users' notes apperr.ErrForbidden and a
// missing note a *apperr.FetchError wrapping apperr.ErrNotFound.
func OpenEditor(ctx context.Context, client backend.Client, session *backend.Session, id string, opts ...Option) (*Editor, error) {
	o := buildOptions(opts)
	if err := ensureSession(ctx, session); err != nil {
		return nil, &apperr.FetchError{Op: "load session", Err: err}
	}
	user := session.User()
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	n, err := client.GetNote(ctx, id)
	if err != nil {
		o.log.Warn("open editor", slog.String("id", id), slog.String("error", err.Error()))
		return nil, &apperr.FetchError{Op: "get note", Err: err}
	}
	if !n.OwnedBy(user) {
		return nil, apperr.ErrForbidden
	}
	return &Editor{
		client:   client,
		session:  session,
		log:      o.log,
		now:      o.now,
		original: n,
		draft:    models.DraftFrom(*n),
	}, nil
}

// IsNew reports whether the editor creates a note rather than editing one.
func (e *Editor) IsNew() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.original == nil
}

// NoteID returns the id of the note being edited; empty when creating.
func (e *Editor) NoteID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.original == nil {
		return ""
	}
	return e.original.ID
}

// Draft returns the current field values.
func (e *Editor) Draft() models.Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetTitle updates the title field and clears its error.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	e.draft.Title = title
	delete(e.fields, "title")
	e.mu.Unlock()
}

// SetContent updates the content field.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	e.draft.Content = content
	e.mu.Unlock()
}

// FieldError returns the validation message for field, if any.
func (e *Editor) FieldError(field string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fields[field]
}

// Err returns the error of the last Submit.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Saving reports whether a Submit is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Saved returns the note as stored by the last successful Submit.
func (e *Editor) Saved() *models.Note {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

// Submit validates the draft and saves it with the given visibility. An
// invalid title yields a *apperr.ValidationError without any backend call.
// Creating without a signed-in user returns apperr.ErrUnauthenticated and
// RouteLogin. Backend failures come back as *apperr.MutationError with the
// draft untouched. Success returns RouteList.
func (e *Editor) Submit(ctx context.Context, publish bool) (Route, error) {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return RouteNone, apperr.ErrBusy
	}
	d := e.draft
	d.IsPublic = publish
	if err := d.Validate(); err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			e.fields = map[string]string{ve.Field: ve.Message}
		}
		e.err = err
		e.mu.Unlock()
		return RouteNone, err
	}
	e.fields = nil
	e.err = nil
	e.saving = true
	original := e.original
	e.mu.Unlock()

	route, saved, err := e.commit(ctx, original, d)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	e.err = err
	if err != nil {
		return route, err
	}
	e.draft = d
	e.saved = saved
	if original != nil {
		e.original = saved
	}
	return RouteList, nil
}

func (e *Editor) commit(ctx context.Context, original *models.Note, d models.Draft) (Route, *models.Note, error) {
	if err := ensureSession(ctx, e.session); err != nil {
		return RouteNone, nil, &apperr.FetchError{Op: "load session", Err: err}
	}
	user := e.session.User()
	if original == nil && user == nil {
		return RouteLogin, nil, apperr.ErrUnauthenticated
	}
	saved, op, err := e.save(ctx, original, user, d)
	if err != nil {
		e.log.Error(op, slog.String("error", err.Error()))
		return RouteNone, nil, &apperr.MutationError{Op: op, Err: err}
	}
	return RouteList, saved, nil
}

func (e *Editor) save(ctx context.Context, original *models.Note, user *models.User, d models.Draft) (*models.Note, string, error) {
	now := e.now()
	if original == nil {
		n, err := models.NewNote(d.Title, d.Content, user.ID, d.IsPublic, now)
		if err != nil {
			return nil, "create note", err
		}
		saved, err := e.client.InsertNote(ctx, n)
		return saved, "create note", err
	}
	p := d.Patch(now)
	if err := e.client.UpdateNote(ctx, original.ID, p); err != nil {
		return nil, "update note", err
	}
	updated := original.Apply(p)
	return &updated, "update note", nil
}
