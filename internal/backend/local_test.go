package backend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/testutil"
)

func TestLocal_RowLevelRules(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	ada := testutil.TestUser(t, s, "ada@example.com")
	bob := testutil.TestUser(t, s, "bob@example.com")
	clock := testutil.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	asAda := NewLocal(s, ada, WithClock(clock.Now))
	asBob := NewLocal(s, bob, WithClock(clock.Now))
	anon := NewLocal(s, nil)

	private, err := asAda.InsertNote(ctx, models.Note{Title: "secret", UserID: ada.ID})
	if err != nil {
		t.Fatalf("insert private: %v", err)
	}
	if private.ModifiedAt.IsZero() {
		t.Error("zero modified_at should be stamped by the clock")
	}
	public, err := asAda.InsertNote(ctx, models.Note{Title: "hello", UserID: ada.ID, IsPublic: true, ModifiedAt: clock.Now()})
	if err != nil {
		t.Fatalf("insert public: %v", err)
	}

	for name, c := range map[string]*Local{"anon": anon, "bob": asBob} {
		notes, err := c.ListNotes(ctx)
		if err != nil {
			t.Fatalf("%s list: %v", name, err)
		}
		if len(notes) != 1 || notes[0].ID != public.ID {
			t.Errorf("%s sees %+v, want only the public note", name, notes)
		}
		if _, err := c.GetNote(ctx, private.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("%s get private err = %v, want ErrNotFound", name, err)
		}
	}

	notes, _ := asAda.ListNotes(ctx)
	if len(notes) != 2 || notes[0].ID != public.ID {
		t.Errorf("ada sees %+v, want public then private", notes)
	}
}

func TestLocal_MutationRules(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	ada := testutil.TestUser(t, s, "ada@example.com")
	bob := testutil.TestUser(t, s, "bob@example.com")

	asAda := NewLocal(s, ada)
	asBob := NewLocal(s, bob)
	anon := NewLocal(s, nil)

	n, err := asAda.InsertNote(ctx, models.Note{Title: "mine", UserID: ada.ID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := anon.InsertNote(ctx, models.Note{Title: "x", UserID: ada.ID}); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anon insert err = %v", err)
	}
	if _, err := asBob.InsertNote(ctx, models.Note{Title: "x", UserID: ada.ID}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("insert for someone else err = %v", err)
	}
	if _, err := asAda.InsertNote(ctx, models.Note{Title: "  ", UserID: ada.ID}); !apperr.IsValidation(err) {
		t.Errorf("blank title insert err = %v", err)
	}

	patch := models.Patch{Title: "renamed", IsPublic: true}
	if err := asBob.UpdateNote(ctx, n.ID, patch); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bob update err = %v", err)
	}
	if err := anon.UpdateNote(ctx, n.ID, patch); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anon update err = %v", err)
	}
	if err := asAda.UpdateNote(ctx, n.ID, models.Patch{Title: ""}); !apperr.IsValidation(err) {
		t.Errorf("blank patch err = %v", err)
	}
	if err := asBob.DeleteNote(ctx, n.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("bob delete err = %v", err)
	}
	if err := anon.DeleteNote(ctx, n.ID); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("anon delete err = %v", err)
	}

	if err := asAda.UpdateNote(ctx, n.ID, patch); err != nil {
		t.Fatalf("ada update: %v", err)
	}
	got, err := asBob.GetNote(ctx, n.ID)
	if err != nil {
		t.Fatalf("bob reads published note: %v", err)
	}
	if got.Title != "renamed" || got.UserID != ada.ID {
		t.Errorf("after update = %+v", got)
	}
	if err := asAda.DeleteNote(ctx, n.ID); err != nil {
		t.Fatalf("ada delete: %v", err)
	}
}

func TestSession_Refresh(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	ada := testutil.TestUser(t, s, "ada@example.com")

	sess := NewSession(NewLocal(s, ada))
	if sess.Loaded() || sess.SignedIn() {
		t.Fatal("fresh session should be empty")
	}
	u, err := sess.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if u.ID != ada.ID || !sess.SignedIn() || !sess.Loaded() {
		t.Errorf("after refresh user = %+v", sess.User())
	}

	anon := NewSession(NewLocal(s, nil))
	if u, _ := anon.Refresh(ctx); u != nil || anon.SignedIn() {
		t.Error("anonymous session should have no user")
	}
}
