package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/auth"
	"github.com/starford/jotter/internal/backend"
)

// NewRouter creates a chi router with all API routes. It is mounted under
// /api by the server. Identity comes from a bearer token or the session
// cookie; anonymous callers may read public notes.
func NewRouter(accounts *auth.Accounts, notes backend.NoteStore, now func() time.Time) chi.Router {
	h := NewHandler(accounts, notes, now)

	r := chi.NewRouter()
	r.Use(auth.Middleware(accounts))

	// Session and accounts.
	r.Get("/session", h.GetSession)
	r.Post("/session", h.CreateSession)
	r.Post("/users", h.CreateUser)

	// Notes, readable by anyone subject to visibility.
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{id}", h.GetNote)

	// Notes, owner mutations.
	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/notes", h.CreateNote)
		r.Patch("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)
	})

	return r
}
