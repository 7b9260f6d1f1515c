// Package models defines the domain types for Jotter.
package models

import (
	"errors"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jotter/internal/apperr"
)

// Note is a user-authored text record with a visibility flag.
//
// ID is assigned by the store on insert. UserID is fixed at creation;
// updates go through Patch, which has no owner field.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"is_public"`
	UserID     string    `json:"user_id"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewNote builds a note ready for insertion. The title must be non-empty
// after trimming and the owner must be known.
func NewNote(title, content, userID string, public bool, now time.Time) (Note, error) {
	d := Draft{Title: title, Content: content, IsPublic: public}
	if err := d.Validate(); err != nil {
		return Note{}, err
	}
	if userID == "" {
		return Note{}, apperr.ErrUnauthenticated
	}
	return Note{
		Title:      title,
		Content:    content,
		IsPublic:   public,
		UserID:     userID,
		ModifiedAt: now.UTC(),
	}, nil
}

// OwnedBy reports whether u is the owner of n. A nil user owns nothing.
func (n Note) OwnedBy(u *User) bool {
	return u != nil && u.ID != "" && u.ID == n.UserID
}

// Apply returns a copy of n with the patch's mutable fields. ID and UserID
// are carried over untouched.
func (n Note) Apply(p Patch) Note {
	n.Title = p.Title
	n.Content = p.Content
	n.IsPublic = p.IsPublic
	n.ModifiedAt = p.ModifiedAt.UTC()
	return n
}

// FieldValues returns every attribute of the note as text, in declaration
// order. Free-text search matches against these.
func (n Note) FieldValues() []string {
	return []string{
		n.ID,
		n.Title,
		n.Content,
		strconv.FormatBool(n.IsPublic),
		n.UserID,
		n.ModifiedAt.UTC().Format(time.RFC3339),
	}
}

// Draft holds the editable fields of a note while it is being written.
type Draft struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"is_public"`
}

// DraftFrom seeds a draft from an existing note.
func DraftFrom(n Note) Draft {
	return Draft{Title: n.Title, Content: n.Content, IsPublic: n.IsPublic}
}

// Validate checks the draft. The only rule is a non-blank title.
func (d Draft) Validate() error {
	return validateTitle(d.Title)
}

// Patch turns the draft into an update payload stamped with now.
func (d Draft) Patch(now time.Time) Patch {
	return Patch{Title: d.Title, Content: d.Content, IsPublic: d.IsPublic, ModifiedAt: now.UTC()}
}

// Patch is the update payload for an existing note.
type Patch struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"is_public"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Validate checks the patch title.
func (p Patch) Validate() error {
	return validateTitle(p.Title)
}

func validateTitle(title string) error {
	err := validation.Validate(strings.TrimSpace(title),
		validation.Required.Error("Title is required."),
	)
	if err == nil {
		return nil
	}
	var ve validation.Error
	if errors.As(err, &ve) {
		return &apperr.ValidationError{Field: "title", Message: ve.Error()}
	}
	return &apperr.ValidationError{Field: "title", Message: err.Error()}
}
