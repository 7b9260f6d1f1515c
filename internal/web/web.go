// Package web serves the browser front end: server-rendered pages driven by
// the view-models over an in-process backend.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/auth"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/viewmodel"
)

// PreviewSize is how many public notes the landing page shows.
const PreviewSize = 3

// Handler holds the page handlers.
type Handler struct {
	accounts     *auth.Accounts
	notes        backend.NoteStore
	now          func() time.Time
	cookieSecure bool
	templates    map[string]*template.Template
}

// Option configures the web handler.
type Option func(*Handler)

// WithClock overrides the clock used for modification timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// WithSecureCookies marks the session cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) { h.cookieSecure = secure }
}

// NewRouter returns the page router.
func NewRouter(accounts *auth.Accounts, notes backend.NoteStore, opts ...Option) (chi.Router, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	h := &Handler{accounts: accounts, notes: notes, now: time.Now, templates: tmpl}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(auth.Middleware(accounts))

	r.Get("/", h.Landing)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/new", h.NewForm)
		r.Post("/new", h.Create)
		r.Get("/{id}", h.Detail)
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
		r.Get("/{id}/delete", h.DeleteConfirm)
		r.Post("/{id}/delete", h.Delete)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.notFound(w, r)
	})
	return r, nil
}

// session builds the per-request backend and session for the caller.
func (h *Handler) session(r *http.Request) (*backend.Local, *backend.Session) {
	user := auth.UserFrom(r.Context())
	client := backend.NewLocal(h.notes, user, backend.WithClock(h.now))
	return client, backend.NewSessionFor(client, user)
}

func (h *Handler) page(r *http.Request, data any) page {
	return page{User: auth.UserFrom(r.Context()), Data: data}
}

// Landing renders the home page with the latest public notes.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	client, _ := h.session(r)
	notes, err := viewmodel.PublicPreview(r.Context(), client, PreviewSize)
	p := h.page(r, struct{ Notes []models.Note }{notes})
	if err != nil {
		slog.Error("landing preview", slog.String("error", err.Error()))
		p.Flash = apperr.Message(err)
	}
	h.render(w, r, http.StatusOK, "landing", p)
}

type listData struct {
	Notes  []models.Note
	Tabs   []viewmodel.Tab
	Tab    viewmodel.Tab
	Search string
	Err    string
}

// List renders the filtered note list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	list := viewmodel.NewNoteList(client, sess)

	q := r.URL.Query()
	tab, err := viewmodel.ParseTab(q.Get("tab"))
	if err != nil {
		tab = viewmodel.TabAll
	}
	data := listData{Tab: tab, Search: q.Get("q")}
	if err := list.Load(r.Context()); err != nil {
		data.Err = apperr.Message(err)
	}
	list.SetSearch(data.Search)
	list.SetTab(tab)
	data.Notes = list.VisibleNotes()
	data.Tabs = list.Tabs()
	h.render(w, r, http.StatusOK, "list", h.page(r, data))
}

// Detail renders one note.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	d, err := viewmodel.OpenDetail(r.Context(), client, sess, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "detail", h.page(r, struct {
		Note    models.Note
		IsOwner bool
	}{d.Note(), d.IsOwner()}))
}

type formData struct {
	IsNew      bool
	ID         string
	Draft      models.Draft
	TitleError string
}

func editorData(e *viewmodel.Editor) formData {
	return formData{
		IsNew:      e.IsNew(),
		ID:         e.NoteID(),
		Draft:      e.Draft(),
		TitleError: e.FieldError("title"),
	}
}

// NewForm renders an empty editor. Anonymous visitors are sent to sign in.
func (h *Handler) NewForm(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	if !sess.SignedIn() {
		h.toLogin(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "form", h.page(r, editorData(viewmodel.NewCreateEditor(client, sess))))
}

// Create handles the new note form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	e := viewmodel.NewCreateEditor(client, sess, viewmodel.WithClock(h.now))
	h.submit(w, r, e)
}

// EditForm renders the editor for an existing note.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	e, err := viewmodel.OpenEditor(r.Context(), client, sess, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "form", h.page(r, editorData(e)))
}

// Update handles the edit form.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	client, sess := h.session(r)
	e, err := viewmodel.OpenEditor(r.Context(), client, sess, chi.URLParam(r, "id"), viewmodel.WithClock(h.now))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.submit(w, r, e)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, e *viewmodel.Editor) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	e.SetTitle(r.PostFormValue("title"))
	e.SetContent(r.PostFormValue("content"))
	publish := r.PostFormValue("action") == "publish"

	route, err := e.Submit(r.Context(), publish)
	switch {
	case route == viewmodel.RouteLogin:
		h.toLogin(w, r)
	case err == nil:
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
	default:
		status := http.StatusBadRequest
		if !apperr.IsValidation(err) {
			status = statusFor(err)
		}
		p := h.page(r, editorData(e))
		if !apperr.IsValidation(err) {
			p.Flash = apperr.Message(err)
		}
		h.render(w, r, status, "form", p)
	}
}

// DeleteConfirm asks the owner to confirm the deletion.
func (h *Handler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	d, ok := h.pendingDelete(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "delete", h.page(r, struct{ Note models.Note }{d.Note()}))
}

// Delete performs a confirmed deletion.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	d, ok := h.pendingDelete(w, r)
	if !ok {
		return
	}
	route, err := d.ConfirmDelete(r.Context())
	if err != nil {
		p := h.page(r, struct{ Note models.Note }{d.Note()})
		p.Flash = apperr.Message(err)
		h.render(w, r, statusFor(err), "delete", p)
		return
	}
	if route == viewmodel.RouteList {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
	}
}

// pendingDelete opens the note and moves its delete flow to pending.
func (h *Handler) pendingDelete(w http.ResponseWriter, r *http.Request) (*viewmodel.Detail, bool) {
	client, sess := h.session(r)
	if !sess.SignedIn() {
		h.toLogin(w, r)
		return nil, false
	}
	d, err := viewmodel.OpenDetail(r.Context(), client, sess, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if err := d.RequestDelete(); err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return d, true
}

type authData struct {
	Heading string
	Action  string
	Email   string
	Next    string
}

// LoginForm renders the sign-in form.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "auth", h.page(r, authData{
		Heading: "Sign in", Action: "/login", Next: safeNext(r.URL.Query().Get("next")),
	}))
}

// RegisterForm renders the registration form.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "auth", h.page(r, authData{
		Heading: "Register", Action: "/register", Next: safeNext(r.URL.Query().Get("next")),
	}))
}

// Login checks the credentials and starts a browser session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	creds, next := h.credentials(r)
	token, _, err := h.accounts.Login(r.Context(), creds)
	if err != nil {
		h.authFailed(w, r, authData{Heading: "Sign in", Action: "/login", Email: creds.Email, Next: next}, err)
		return
	}
	h.startSession(w, r, token, next)
}

// Register creates an account and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	creds, next := h.credentials(r)
	data := authData{Heading: "Register", Action: "/register", Email: creds.Email, Next: next}
	if _, err := h.accounts.Register(r.Context(), creds); err != nil {
		h.authFailed(w, r, data, err)
		return
	}
	token, _, err := h.accounts.Login(r.Context(), creds)
	if err != nil {
		h.authFailed(w, r, data, err)
		return
	}
	h.startSession(w, r, token, next)
}

// Logout ends the browser session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) credentials(r *http.Request) (models.Credentials, string) {
	_ = r.ParseForm()
	creds := models.Credentials{Email: r.PostFormValue("email"), Password: r.PostFormValue("password")}
	creds.Normalize()
	return creds, safeNext(r.PostFormValue("next"))
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, token, next string) {
	auth.SetSessionCookie(w, token, int(h.accounts.Tokens().TTL().Seconds()), h.cookieSecure)
	if next == "" {
		next = "/notes"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *Handler) authFailed(w http.ResponseWriter, r *http.Request, data authData, err error) {
	p := h.page(r, data)
	status := http.StatusUnauthorized
	switch {
	case errors.Is(err, auth.ErrBadCredentials):
		p.Flash = "Invalid email or password."
	case errors.Is(err, apperr.ErrAlreadyExists):
		status = http.StatusConflict
		p.Flash = "An account with this email already exists."
	case apperr.IsValidation(err):
		status = http.StatusBadRequest
		p.Flash = apperr.Message(err)
	default:
		slog.Error("authentication failed", slog.String("error", err.Error()))
		status = http.StatusInternalServerError
		p.Flash = apperr.Message(err)
	}
	h.render(w, r, status, "auth", p)
}

func (h *Handler) toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
}

// fail renders err as an error page; missing notes get the not-found page
// and anonymous callers are sent to sign in.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		h.toLogin(w, r)
	case errors.Is(err, apperr.ErrNotFound):
		h.notFound(w, r)
	default:
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("page failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		}
		h.render(w, r, status, "error", h.page(r, errorData{Heading: http.StatusText(status), Message: apperr.Message(err)}))
	}
}

type errorData struct {
	Heading string
	Message string
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "error", h.page(r, errorData{
		Heading: "Note not found",
		Message: "The note you are looking for does not exist or is not shared with you.",
	}))
}

func statusFor(err error) int {
	switch {
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// safeNext keeps only same-site absolute paths as redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
