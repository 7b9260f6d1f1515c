package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

const noteColumns = `id, user_id, title, content, is_public, modified_at`

// ListVisible returns the notes viewerID may read: every public note plus
// the viewer's own private ones, most recently modified first. An empty
// viewerID sees public notes only.
func (s *Store) ListVisible(ctx context.Context, viewerID string) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE is_public = ? OR (? <> '' AND user_id = ?)
		ORDER BY modified_at DESC, id ASC
	`, true, viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	return scanNotes(rows)
}

// ListByOwner returns every note owned by userID, most recent first.
func (s *Store) ListByOwner(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = ?
		ORDER BY modified_at DESC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list owner notes: %w", err)
	}
	return scanNotes(rows)
}

// GetNote returns the note with the given id regardless of visibility.
func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get note: %w", err)
	}
	return n, nil
}

// InsertNote stores n under a freshly assigned id and returns the stored row.
func (s *Store) InsertNote(ctx context.Context, n models.Note) (*models.Note, error) {
	n.ID = uuid.NewString()
	n.ModifiedAt = n.ModifiedAt.UTC()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, title, content, is_public, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Content, n.IsPublic, n.ModifiedAt)
	if err != nil {
		return nil, fmt.Errorf("store: insert note: %w", err)
	}
	return &n, nil
}

// UpdateNote applies p to the note id owned by ownerID. It reports
// apperr.ErrNotFound when the note does not exist and apperr.ErrForbidden
// when it belongs to someone else.
func (s *Store) UpdateNote(ctx context.Context, id, ownerID string, p models.Patch) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, is_public = ?, modified_at = ?
		WHERE id = ? AND user_id = ?
	`, p.Title, p.Content, p.IsPublic, p.ModifiedAt.UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("store: update note: %w", err)
	}
	return s.checkOwned(ctx, res, id)
}

// DeleteNote hard-deletes the note id owned by ownerID.
func (s *Store) DeleteNote(ctx context.Context, id, ownerID string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return s.checkOwned(ctx, res, id)
}

// checkOwned turns a zero-row write into ErrNotFound or ErrForbidden.
func (s *Store) checkOwned(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.GetNote(ctx, id); err != nil {
		return err
	}
	return apperr.ErrForbidden
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(row scanner) (*models.Note, error) {
	var n models.Note
	var modified time.Time
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.IsPublic, &modified); err != nil {
		return nil, err
	}
	n.ModifiedAt = modified.UTC()
	return &n, nil
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	defer rows.Close()
	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}
