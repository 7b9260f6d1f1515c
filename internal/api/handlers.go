package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/auth"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/checksum"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/viewmodel"
)

// Handler holds API route handlers.
type Handler struct {
	accounts *auth.Accounts
	notes    backend.NoteStore
	now      func() time.Time
}

// NewHandler creates a new Handler. A nil clock means time.Now.
func NewHandler(accounts *auth.Accounts, notes backend.NoteStore, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{accounts: accounts, notes: notes, now: now}
}

// client returns a backend acting as the request's user.
func (h *Handler) client(r *http.Request) *backend.Local {
	return backend.NewLocal(h.notes, auth.UserFrom(r.Context()), backend.WithClock(h.now))
}

// GetSession handles GET /api/session.
//
//	@Summary		Current identity
//	@Tags			session
//	@Produce		json
//	@Success		200	{object}	SessionResponse
//	@Router			/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SessionResponse{User: auth.UserFrom(r.Context())})
}

// CreateSession handles POST /api/session.
//
//	@Summary		Sign in
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Router			/session [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var creds LoginRequest
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := h.accounts.Login(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int64(h.accounts.Tokens().TTL().Seconds()),
		User:      user,
	})
}

// CreateUser handles POST /api/users.
//
//	@Summary		Register an account
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var creds LoginRequest
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.accounts.Register(r.Context(), creds)
	if err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("user registered", slog.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, SessionResponse{User: user})
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List visible notes with optional search and tab filter
//	@Tags			notes
//	@Produce		json
//	@Param			q	query		string	false	"Free-text search"
//	@Param			tab	query		string	false	"Visibility tab"	Enums(all, public, private)
//	@Success		200	{object}	NoteListResponse
//	@Failure		400	{object}	errResponse
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab, err := viewmodel.ParseTab(q.Get("tab"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	client := h.client(r)
	list := viewmodel.NewNoteList(client, backend.NewSession(client))
	if err := list.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	list.SetSearch(q.Get("q"))
	list.SetTab(tab)

	tabs := list.Tabs()
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = string(t)
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: list.VisibleNotes(), Tabs: names})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note id"
//	@Success		200	{object}	models.Note
//	@Success		304	"Not modified"
//	@Failure		404	{object}	errResponse
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	n, err := h.client(r).GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	etag := noteETag(n)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.UserID == "" {
		req.UserID = auth.UserFrom(r.Context()).ID
	}
	n, err := h.client(r).InsertNote(r.Context(), models.Note{
		Title:      req.Title,
		Content:    req.Content,
		IsPublic:   req.IsPublic,
		UserID:     req.UserID,
		ModifiedAt: req.ModifiedAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/notes/"+n.ID)
	writeJSON(w, http.StatusCreated, n)
}

// UpdateNote handles PATCH /api/notes/{id}. The body replaces title,
// content and visibility; id and owner never change.
//
//	@Summary		Update a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		models.Patch	true	"New field values"
//	@Success		200		{object}	models.Note
//	@Failure		400		{object}	errResponse
//	@Failure		403		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [patch]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var p models.Patch
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	client := h.client(r)
	if err := client.UpdateNote(r.Context(), id, p); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := client.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", noteETag(n))
	writeJSON(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note id"
//	@Success		204	"Note deleted"
//	@Failure		403	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client(r).DeleteNote(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("note deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// noteETag is a strong validator over every field of n.
func noteETag(n *models.Note) string {
	return checksum.ETag(n.FieldValues()...)
}
