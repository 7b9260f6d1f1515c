package mdnote

import (
	"testing"
	"time"

	"github.com/starford/jotter/internal/models"
)

func TestMarshalParse(t *testing.T) {
	n := models.Note{
		ID:         "0b6f1c2e-1111-2222-3333-444455556666",
		Title:      "Weekly: plan",
		Content:    "# Heading\nBody text.",
		IsPublic:   true,
		ModifiedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	data, err := Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Parse(data, "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != n.ID || doc.Title != n.Title || !doc.Public || !doc.ModifiedAt.Equal(n.ModifiedAt) {
		t.Errorf("frontmatter = %+v", doc.Frontmatter)
	}
	if doc.Body != "# Heading\nBody text.\n" {
		t.Errorf("body = %q", doc.Body)
	}
	d := doc.Draft()
	if d.Title != n.Title || !d.IsPublic {
		t.Errorf("draft = %+v", d)
	}
}

func TestParse_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		stem  string
		want  string
	}{
		{"frontmatter", "---\ntitle: From FM\n---\n# Heading\n", "file", "From FM"},
		{"heading", "---\npublic: true\n---\nintro\n# From Heading\n", "file", "From Heading"},
		{"no frontmatter", "# Only Heading\ntext\n", "file", "Only Heading"},
		{"stem", "just text\n", "my-file", "my-file"},
		{"invalid yaml", "---\n: bad: {{{\n---\n# Rescued\n", "file", "Rescued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.input), tt.stem)
			if err != nil {
				t.Fatal(err)
			}
			if doc.Title != tt.want {
				t.Errorf("title = %q, want %q", doc.Title, tt.want)
			}
		})
	}

	if _, err := Parse([]byte("no title anywhere"), ""); err == nil {
		t.Error("expected error without any title source")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		note models.Note
		want string
	}{
		{models.Note{ID: "abcdef1234", Title: "Hello, World!"}, "hello-world-abcdef12.md"},
		{models.Note{ID: "xyz", Title: "???"}, "note-xyz.md"},
		{models.Note{Title: "Draft"}, "draft.md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.note); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.note.Title, got, tt.want)
		}
	}
}
