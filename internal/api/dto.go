package api

import (
	"time"

	"github.com/starford/jotter/internal/models"
)

// LoginRequest is the request body for signing in and registering.
type LoginRequest = models.Credentials

// SessionResponse reports the caller's identity; User is null when
// anonymous.
type SessionResponse struct {
	User *models.User `json:"user"`
}

// LoginResponse carries a fresh session token.
type LoginResponse struct {
	Token     string       `json:"token" validate:"required"`
	ExpiresIn int64        `json:"expires_in" example:"259200" validate:"required"`
	User      *models.User `json:"user" validate:"required"`
}

// NoteRequest is the request body for creating a note. UserID may be
// omitted and defaults to the caller.
type NoteRequest struct {
	Title    string `json:"title" example:"Groceries" validate:"required"`
	Content  string `json:"content" example:"eggs, milk"`
	IsPublic bool   `json:"is_public" example:"false"`
	UserID   string `json:"user_id,omitempty"`
	// ModifiedAt is stamped by the server when omitted.
	ModifiedAt time.Time `json:"modified_at,omitzero"`
}

// NoteListResponse wraps the filtered note listing.
type NoteListResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
	Tabs  []string      `json:"tabs" validate:"required"`
}
