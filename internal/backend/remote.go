package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// Remote is a Client that talks to a Jotter server's JSON API.
type Remote struct {
	base string
	http *http.Client

	mu    sync.RWMutex
	token string
}

// RemoteOption configures a Remote client.
type RemoteOption func(*Remote)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.http = c }
}

// WithToken sets the session token sent as a bearer credential.
func WithToken(token string) RemoteOption {
	return func(r *Remote) { r.token = token }
}

// NewRemote creates a client for the server at baseURL.
func NewRemote(baseURL string, opts ...RemoteOption) *Remote {
	r := &Remote{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Token returns the current session token.
func (r *Remote) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.token
}

// Login exchanges credentials for a session token and keeps it for later
// requests.
func (r *Remote) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := r.do(ctx, http.MethodPost, "/api/session", creds, &resp); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.token = resp.Token
	r.mu.Unlock()
	return resp.User, nil
}

// Logout forgets the session token.
func (r *Remote) Logout() {
	r.mu.Lock()
	r.token = ""
	r.mu.Unlock()
}

// CurrentUser implements Client.
func (r *Remote) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *models.User `json:"user"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/session", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListNotes implements Client.
func (r *Remote) ListNotes(ctx context.Context) ([]models.Note, error) {
	var resp struct {
		Notes []models.Note `json:"notes"`
	}
	if err := r.do(ctx, http.MethodGet, "/api/notes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

// GetNote implements Client.
func (r *Remote) GetNote(ctx context.Context, id string) (*models.Note, error) {
	var n models.Note
	if err := r.do(ctx, http.MethodGet, notePath(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// InsertNote implements Client.
func (r *Remote) InsertNote(ctx context.Context, n models.Note) (*models.Note, error) {
	var out models.Note
	if err := r.do(ctx, http.MethodPost, "/api/notes", n, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNote implements Client.
func (r *Remote) UpdateNote(ctx context.Context, id string, p models.Patch) error {
	return r.do(ctx, http.MethodPatch, notePath(id), p, nil)
}

// DeleteNote implements Client.
func (r *Remote) DeleteNote(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, notePath(id), nil, nil)
}

func notePath(id string) string {
	return "/api/notes/" + url.PathEscape(id)
}

func (r *Remote) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.base+path, body)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := r.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

// decodeError maps an API error response back onto the apperr taxonomy.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &apperr.ValidationError{Field: body.Field, Message: body.Error}
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return apperr.ErrForbidden
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrAlreadyExists
	}
	if body.Error == "" {
		body.Error = resp.Status
	}
	return fmt.Errorf("backend: server error %d: %s", resp.StatusCode, body.Error)
}
