package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
)

// Detail is the state behind a single note page.
type Detail struct {
	client  backend.Client
	session *backend.Session
	log     *slog.Logger
	note    models.Note
	del     DeleteFlow

	mu  sync.Mutex
	err error
}

// OpenDetail loads note id. Missing and inaccessible notes both surface
// as a *apperr.FetchError wrapping apperr.ErrNotFound.
func OpenDetail(ctx context.Context, client backend.Client, session *backend.Session, id string, opts ...Option) (*Detail, error) {
	o := buildOptions(opts)
	if err := ensureSession(ctx, session); err != nil {
		return nil, &apperr.FetchError{Op: "load session", Err: err}
	}
	n, err := client.GetNote(ctx, id)
	if err != nil {
		o.log.Warn("open note", slog.String("id", id), slog.String("error", err.Error()))
		return nil, &apperr.FetchError{Op: "get note", Err: err}
	}
	return &Detail{client: client, session: session, log: o.log, note: *n}, nil
}

// Note returns the loaded note.
func (d *Detail) Note() models.Note { return d.note }

// IsOwner reports whether the session user owns the note and may see the
// edit and delete controls.
func (d *Detail) IsOwner() bool {
	return d.note.OwnedBy(d.session.User())
}

// Err returns the last delete error.
func (d *Detail) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// RequestDelete asks for confirmation before deleting the note.
func (d *Detail) RequestDelete() error {
	if !d.IsOwner() {
		return apperr.ErrForbidden
	}
	return d.del.Request(d.note.ID)
}

// CancelDelete abandons the pending delete.
func (d *Detail) CancelDelete() { d.del.Cancel() }

// DeletePending reports whether a delete awaits confirmation.
func (d *Detail) DeletePending() bool {
	_, ok := d.del.Pending()
	return ok
}

// ConfirmDelete deletes the note and returns RouteList on success.
func (d *Detail) ConfirmDelete(ctx context.Context) (Route, error) {
	_, err := d.del.Confirm(ctx, d.client.DeleteNote)
	if errors.Is(err, apperr.ErrBusy) || errors.Is(err, ErrNothingPending) {
		return RouteNone, err
	}
	if err != nil {
		d.log.Error("delete note", slog.String("id", d.note.ID), slog.String("error", err.Error()))
		me := &apperr.MutationError{Op: "delete note", Err: err}
		d.mu.Lock()
		d.err = me
		d.mu.Unlock()
		return RouteNone, me
	}
	return RouteList, nil
}

// PublicPreview returns up to n of the most recently modified public notes.
func PublicPreview(ctx context.Context, client backend.Client, n int) ([]models.Note, error) {
	notes, err := client.ListNotes(ctx)
	if err != nil {
		return nil, &apperr.FetchError{Op: "list notes", Err: err}
	}
	out := make([]models.Note, 0, max(n, 0))
	for note := range Filter(notes, "", TabPublic, nil) {
		if len(out) >= n {
			break
		}
		out = append(out, note)
	}
	return out, nil
}
