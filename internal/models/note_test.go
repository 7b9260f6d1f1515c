package models

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/jotter/internal/apperr"
)

func TestNewNote_Defaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	n, err := NewNote("Groceries", "", "u1", false, now)
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}
	if n.ID != "" {
		t.Errorf("ID = %q, want empty until the store assigns it", n.ID)
	}
	if n.IsPublic {
		t.Error("note should be private")
	}
	if n.UserID != "u1" {
		t.Errorf("UserID = %q", n.UserID)
	}
	if !n.ModifiedAt.Equal(now) || n.ModifiedAt.Location() != time.UTC {
		t.Errorf("ModifiedAt = %v, want %v in UTC", n.ModifiedAt, now)
	}
}

func TestNewNote_BlankTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := NewNote(title, "body", "u1", false, time.Now())
		var ve *apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("title %q: err = %v, want ValidationError", title, err)
		}
		if ve.Field != "title" || ve.Message != "Title is required." {
			t.Errorf("title %q: got %+v", title, ve)
		}
	}
}

func TestNewNote_NoOwner(t *testing.T) {
	_, err := NewNote("A", "x", "", false, time.Now())
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestApplyKeepsIdentity(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := Note{ID: "n1", Title: "A", Content: "x", UserID: "u1", ModifiedAt: created}

	later := created.Add(time.Minute)
	got := n.Apply(Draft{Title: "B", Content: "y", IsPublic: true}.Patch(later))

	if got.ID != "n1" || got.UserID != "u1" {
		t.Errorf("identity changed: %+v", got)
	}
	if got.Title != "B" || got.Content != "y" || !got.IsPublic {
		t.Errorf("patch not applied: %+v", got)
	}
	if !got.ModifiedAt.After(created) {
		t.Errorf("ModifiedAt = %v, want after %v", got.ModifiedAt, created)
	}
}

func TestOwnedBy(t *testing.T) {
	n := Note{UserID: "u1"}
	if n.OwnedBy(nil) {
		t.Error("anonymous user must not own a note")
	}
	if n.OwnedBy(&User{ID: "u2"}) {
		t.Error("u2 must not own u1's note")
	}
	if !n.OwnedBy(&User{ID: "u1"}) {
		t.Error("u1 should own the note")
	}
	if (Note{}).OwnedBy(&User{}) {
		t.Error("empty ids never match")
	}
}

func TestFieldValues(t *testing.T) {
	n := Note{
		ID:         "abc",
		Title:      "Title",
		Content:    "Body",
		IsPublic:   true,
		UserID:     "u1",
		ModifiedAt: time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	want := []string{"abc", "Title", "Body", "true", "u1", "2025-05-06T07:08:09Z"}
	got := n.FieldValues()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"valid", Credentials{Email: "ada@example.com", Password: "correcthorse"}, false},
		{"missing email", Credentials{Password: "correcthorse"}, true},
		{"bad email", Credentials{Email: "ada", Password: "correcthorse"}, true},
		{"short password", Credentials{Email: "ada@example.com", Password: "short"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialsNormalize(t *testing.T) {
	c := Credentials{Email: "  Ada@Example.COM "}
	c.Normalize()
	if c.Email != "ada@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
}
