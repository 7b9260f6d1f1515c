package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// CreateUser inserts a new account. The email is stored lower-cased and must
// be unique.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert user: %w", err)
	}
	return &u, nil
}

// GetUser returns the user with the given id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByEmail looks a user up by (case-insensitive) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) getUser(ctx context.Context, where string, arg string) (*models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
