package viewmodel

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
)

// NoteList is the state behind the note list screen: the fetched
// collection, the search term, the active tab and the delete flow.
type NoteList struct {
	client  backend.Client
	session *backend.Session
	log     *slog.Logger
	del     DeleteFlow

	mu     sync.RWMutex
	notes  []models.Note
	loaded bool
	search string
	tab    Tab
	err    error
}

// NewNoteList creates an empty list. Call Load to fetch.
func NewNoteList(client backend.Client, session *backend.Session, opts ...Option) *NoteList {
	o := buildOptions(opts)
	return &NoteList{client: client, session: session, log: o.log, tab: TabAll}
}

// Load refreshes the session and fetches every note visible to it. On
// failure the collection is cleared and a *apperr.FetchError is returned.
func (l *NoteList) Load(ctx context.Context) error {
	if _, err := l.session.Refresh(ctx); err != nil {
		return l.fail(&apperr.FetchError{Op: "load session", Err: err})
	}
	notes, err := l.client.ListNotes(ctx)
	if err != nil {
		return l.fail(&apperr.FetchError{Op: "list notes", Err: err})
	}
	if notes == nil {
		notes = []models.Note{}
	}

	l.mu.Lock()
	l.notes = notes
	l.loaded = true
	l.err = nil
	l.mu.Unlock()
	return nil
}

func (l *NoteList) fail(err error) error {
	l.log.Error("note list", slog.String("error", err.Error()))
	l.mu.Lock()
	l.notes = nil
	l.loaded = false
	l.err = err
	l.mu.Unlock()
	return err
}

// SetSearch sets the free-text filter.
func (l *NoteList) SetSearch(term string) {
	l.mu.Lock()
	l.search = term
	l.mu.Unlock()
}

// Search returns the free-text filter.
func (l *NoteList) Search() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.search
}

// SetTab sets the visibility filter.
func (l *NoteList) SetTab(t Tab) {
	l.mu.Lock()
	l.tab = t
	l.mu.Unlock()
}

// Tab returns the visibility filter.
func (l *NoteList) Tab() Tab {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tab
}

// Tabs lists the tabs meaningful for the current session.
func (l *NoteList) Tabs() []Tab {
	return TabsFor(l.session.User())
}

// User returns the session user, nil when anonymous.
func (l *NoteList) User() *models.User {
	return l.session.User()
}

// Loaded reports whether the last Load succeeded.
func (l *NoteList) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Err returns the last fetch or delete error.
func (l *NoteList) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// All returns the unfiltered collection; nil before a successful Load.
func (l *NoteList) All() []models.Note {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.notes)
}

// Visible yields the notes passing the search and tab filters, in fetch
// order. The snapshot is taken when Visible is called.
func (l *NoteList) Visible() iter.Seq[models.Note] {
	l.mu.RLock()
	notes, term, tab := l.notes, l.search, l.tab
	l.mu.RUnlock()
	return Filter(notes, term, tab, l.session.User())
}

// VisibleNotes collects Visible into a slice.
func (l *NoteList) VisibleNotes() []models.Note {
	out := []models.Note{}
	for n := range l.Visible() {
		out = append(out, n)
	}
	return out
}

// RequestDelete asks for confirmation before deleting id.
func (l *NoteList) RequestDelete(id string) error {
	return l.del.Request(id)
}

// CancelDelete abandons the pending delete.
func (l *NoteList) CancelDelete() {
	l.del.Cancel()
}

// PendingDelete returns the id awaiting confirmation.
func (l *NoteList) PendingDelete() (string, bool) {
	return l.del.Pending()
}

// DeleteState exposes the delete flow step.
func (l *NoteList) DeleteState() DeleteState {
	s, _ := l.del.State()
	return s
}

// ConfirmDelete deletes the pending note and reloads the list. A backend
// rejection is returned as *apperr.MutationError and the collection is
// left as it was.
func (l *NoteList) ConfirmDelete(ctx context.Context) error {
	id, err := l.del.Confirm(ctx, l.client.DeleteNote)
	if errors.Is(err, apperr.ErrBusy) || errors.Is(err, ErrNothingPending) {
		return err
	}
	if err != nil {
		me := &apperr.MutationError{Op: "delete note", Err: err}
		l.log.Error("delete note", slog.String("id", id), slog.String("error", err.Error()))
		l.mu.Lock()
		l.err = me
		l.mu.Unlock()
		return me
	}
	return l.Load(ctx)
}
