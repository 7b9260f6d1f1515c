// Package archive exports a user's notes to Markdown files and imports
// Markdown files as new notes.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/mdnote"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/storage"
	"github.com/starford/jotter/internal/viewmodel"
)

// DefaultPattern selects every Markdown file below the import root.
const DefaultPattern = "**/*.md"

// Export writes every note owned by the client's user to dst and returns
// the written file names.
func Export(ctx context.Context, client backend.Client, dst storage.Provider) ([]string, error) {
	sess := backend.NewSession(client)
	list := viewmodel.NewNoteList(client, sess)
	if err := list.Load(ctx); err != nil {
		return nil, err
	}
	user := sess.User()
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}

	var written []string
	for _, n := range list.All() {
		if !n.OwnedBy(user) {
			continue
		}
		data, err := mdnote.Marshal(n)
		if err != nil {
			return written, err
		}
		name := mdnote.FileName(n)
		if err := dst.Write(name, data); err != nil {
			return written, fmt.Errorf("archive: export %s: %w", n.ID, err)
		}
		written = append(written, name)
	}
	slog.Info("notes exported", slog.String("user_id", user.ID), slog.Int("count", len(written)))
	return written, nil
}

// Skipped is a file Import could not turn into a note.
type Skipped struct {
	Path string
	Err  error
}

// Report summarizes an import.
type Report struct {
	Imported []models.Note
	Skipped  []Skipped
}

// Import creates one note per file in src matching pattern, owned by the
// client's user. Invalid files are skipped and reported; the import only
// fails as a whole when the files cannot be listed or nobody is signed in.
func Import(ctx context.Context, client backend.Client, src storage.Provider, pattern string) (*Report, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	sess := backend.NewSession(client)
	user, err := sess.Refresh(ctx)
	if err != nil {
		return nil, &apperr.FetchError{Op: "load session", Err: err}
	}
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	entries, err := src.Glob(pattern)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, e := range entries {
		n, err := importFile(ctx, client, sess, src, e.Path)
		if err != nil {
			slog.Warn("import skipped", slog.String("path", e.Path), slog.String("error", err.Error()))
			report.Skipped = append(report.Skipped, Skipped{Path: e.Path, Err: err})
			continue
		}
		report.Imported = append(report.Imported, *n)
	}
	slog.Info("notes imported",
		slog.String("user_id", user.ID),
		slog.Int("imported", len(report.Imported)),
		slog.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

func importFile(ctx context.Context, client backend.Client, sess *backend.Session, src storage.Provider, p string) (*models.Note, error) {
	data, err := src.Read(p)
	if err != nil {
		return nil, err
	}
	doc, err := mdnote.Parse(data, strings.TrimSuffix(path.Base(p), path.Ext(p)))
	if err != nil {
		return nil, err
	}
	e := viewmodel.NewCreateEditor(client, sess)
	e.SetTitle(doc.Title)
	e.SetContent(doc.Body)
	if _, err := e.Submit(ctx, doc.Public); err != nil {
		return nil, err
	}
	return e.Saved(), nil
}
