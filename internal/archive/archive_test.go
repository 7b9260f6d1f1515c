package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/storage"
	"github.com/starford/jotter/internal/testutil"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	ada := testutil.TestUser(t, s, "ada@example.com")
	bob := testutil.TestUser(t, s, "bob@example.com")

	asAda := backend.NewLocal(s, ada)
	_, err := asAda.InsertNote(ctx, models.Note{Title: "Groceries", Content: "eggs\n", UserID: ada.ID})
	require.NoError(t, err)
	_, err = asAda.InsertNote(ctx, models.Note{Title: "Trip", Content: "# Day one\n", IsPublic: true, UserID: ada.ID})
	require.NoError(t, err)
	_, err = backend.NewLocal(s, bob).InsertNote(ctx, models.Note{Title: "Bob public", IsPublic: true, UserID: bob.ID})
	require.NoError(t, err)

	dir, err := storage.NewFS(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)

	written, err := Export(ctx, asAda, dir)
	require.NoError(t, err)
	assert.Len(t, written, 2, "only the user's own notes are exported")

	asBob := backend.NewLocal(s, bob)
	report, err := Import(ctx, asBob, dir, "")
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	require.Len(t, report.Imported, 2)

	titles := map[string]bool{}
	for _, n := range report.Imported {
		assert.Equal(t, bob.ID, n.UserID)
		titles[n.Title] = n.IsPublic
	}
	assert.Equal(t, map[string]bool{"Groceries": false, "Trip": true}, titles)
}

func TestImport_TitleFallbacksAndPattern(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	ada := testutil.TestUser(t, s, "ada@example.com")

	dir, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, dir.Write("good.md", []byte("---\ntitle: Good\n---\nbody\n")))
	require.NoError(t, dir.Write("nested/stem-title.md", []byte("no heading here\n")))
	require.NoError(t, dir.Write("blank.md", []byte("---\ntitle: \"   \"\n---\n")))
	require.NoError(t, dir.Write("notes.txt", []byte("ignored")))

	report, err := Import(ctx, backend.NewLocal(s, ada), dir, "**/*.md")
	require.NoError(t, err)

	var imported []string
	for _, n := range report.Imported {
		imported = append(imported, n.Title)
	}
	assert.ElementsMatch(t, []string{"Good", "stem-title", "blank"}, imported)
	assert.Empty(t, report.Skipped)
}

func TestImportExport_RequireUser(t *testing.T) {
	ctx := context.Background()
	s := testutil.TestStore(t)
	dir, err := storage.NewFS(t.TempDir())
	require.NoError(t, err)

	_, err = Export(ctx, backend.NewLocal(s, nil), dir)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
	_, err = Import(ctx, backend.NewLocal(s, nil), dir, "")
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))
}
