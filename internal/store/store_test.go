package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "jotter-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	s, err := Open(DriverSQLite, f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func mustNote(t *testing.T, s *Store, owner, title string, public bool, at time.Time) *models.Note {
	t.Helper()
	n, err := s.InsertNote(context.Background(), models.Note{
		Title: title, Content: "body of " + title, UserID: owner, IsPublic: public, ModifiedAt: at,
	})
	if err != nil {
		t.Fatalf("InsertNote(%s): %v", title, err)
	}
	return n
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := s.conn.QueryRow(`SELECT count(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("users table missing: %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open("postgres", "x"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mustUser(t, s, "ada@example.com")
	if _, err := s.CreateUser(ctx, "ADA@example.com", "hash"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate CreateUser err = %v, want ErrAlreadyExists", err)
	}
	u, err := s.GetUserByEmail(ctx, " Ada@Example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	got, err := s.GetUser(ctx, u.ID)
	if err != nil || got.Email != "ada@example.com" {
		t.Errorf("GetUser = %+v, %v", got, err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetUser(missing) err = %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	s := testStore(t)
	u := mustUser(t, s, "ada@example.com")
	at := time.Date(2025, 2, 3, 4, 5, 6, 7000, time.UTC)
	n := mustNote(t, s, u.ID, "Hello", false, at)
	if n.ID == "" {
		t.Fatal("store should assign an id")
	}

	got, err := s.GetNote(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Hello" || got.UserID != u.ID || got.IsPublic {
		t.Errorf("GetNote = %+v", got)
	}
	if !got.ModifiedAt.Equal(at) {
		t.Errorf("ModifiedAt = %v, want %v", got.ModifiedAt, at)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetNote(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListVisible(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	ada := mustUser(t, s, "ada@example.com")
	bob := mustUser(t, s, "bob@example.com")
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mustNote(t, s, ada.ID, "ada public", true, base.Add(1*time.Hour))
	mustNote(t, s, ada.ID, "ada private", false, base.Add(2*time.Hour))
	mustNote(t, s, bob.ID, "bob private", false, base.Add(3*time.Hour))
	mustNote(t, s, bob.ID, "bob public", true, base.Add(4*time.Hour))

	titles := func(ns []models.Note) []string {
		out := make([]string, len(ns))
		for i, n := range ns {
			out[i] = n.Title
		}
		return out
	}

	anon, err := s.ListVisible(ctx, "")
	if err != nil {
		t.Fatalf("ListVisible anon: %v", err)
	}
	assertTitles(t, "anonymous", titles(anon), "bob public", "ada public")

	asAda, err := s.ListVisible(ctx, ada.ID)
	if err != nil {
		t.Fatalf("ListVisible ada: %v", err)
	}
	assertTitles(t, "ada", titles(asAda), "bob public", "ada private", "ada public")

	owned, err := s.ListByOwner(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	assertTitles(t, "bob owned", titles(owned), "bob public", "bob private")
}

func assertTitles(t *testing.T, label string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: titles = %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: titles = %v, want %v", label, got, want)
			return
		}
	}
}

func TestUpdateNote_Ownership(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	ada := mustUser(t, s, "ada@example.com")
	bob := mustUser(t, s, "bob@example.com")
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := mustNote(t, s, ada.ID, "A", false, created)

	patch := models.Patch{Title: "B", Content: "y", IsPublic: true, ModifiedAt: created.Add(time.Second)}
	if err := s.UpdateNote(ctx, n.ID, bob.ID, patch); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("update by non-owner err = %v, want ErrForbidden", err)
	}
	if err := s.UpdateNote(ctx, "ghost", ada.ID, patch); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}
	if err := s.UpdateNote(ctx, n.ID, ada.ID, patch); err != nil {
		t.Fatalf("update by owner: %v", err)
	}

	got, _ := s.GetNote(ctx, n.ID)
	if got.Title != "B" || !got.IsPublic || got.UserID != ada.ID || got.ID != n.ID {
		t.Errorf("after update = %+v", got)
	}
	if !got.ModifiedAt.After(created) {
		t.Errorf("modified_at not advanced: %v", got.ModifiedAt)
	}
}

func TestDeleteNote_Ownership(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	ada := mustUser(t, s, "ada@example.com")
	bob := mustUser(t, s, "bob@example.com")
	n := mustNote(t, s, ada.ID, "A", true, time.Now())

	if err := s.DeleteNote(ctx, n.ID, bob.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("delete by non-owner err = %v, want ErrForbidden", err)
	}
	if err := s.DeleteNote(ctx, n.ID, ada.ID); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}
	if _, err := s.GetNote(ctx, n.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if err := s.DeleteNote(ctx, n.ID, ada.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
