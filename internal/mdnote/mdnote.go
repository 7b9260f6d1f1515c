// Package mdnote converts notes to and from Markdown files with YAML
// frontmatter.
package mdnote

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/jotter/internal/models"
)

const delim = "---"

// Frontmatter is the YAML header of an exported note.
type Frontmatter struct {
	ID         string    `yaml:"id,omitempty"`
	Title      string    `yaml:"title"`
	Public     bool      `yaml:"public"`
	ModifiedAt time.Time `yaml:"modified_at,omitempty"`
}

// Document is a parsed Markdown note.
type Document struct {
	Frontmatter
	Body string
}

// Draft returns the editable fields of the document.
func (d Document) Draft() models.Draft {
	return models.Draft{Title: d.Title, Content: d.Body, IsPublic: d.Public}
}

// Marshal renders n as Markdown with a frontmatter header.
func Marshal(n models.Note) ([]byte, error) {
	fm, err := yaml.Marshal(Frontmatter{
		ID:         n.ID,
		Title:      n.Title,
		Public:     n.IsPublic,
		ModifiedAt: n.ModifiedAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("mdnote: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(fm)
	buf.WriteString(delim + "\n")
	buf.WriteString(n.Content)
	if n.Content != "" && !strings.HasSuffix(n.Content, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Parse reads a Markdown note. Files without valid frontmatter are treated
// as body only. A missing title falls back to the first "# " heading and
// then to stem, usually the file name without extension.
func Parse(data []byte, stem string) (*Document, error) {
	var doc Document
	block, body, ok := splitFrontmatter(data)
	if ok {
		if err := yaml.Unmarshal(block, &doc.Frontmatter); err != nil {
			doc.Frontmatter = Frontmatter{}
			body = string(data)
		}
	}
	doc.Body = body
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = firstHeading(body)
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSpace(stem)
	}
	if doc.Title == "" {
		return nil, fmt.Errorf("mdnote: note has no title")
	}
	return &doc, nil
}

// splitFrontmatter separates a leading YAML block between --- lines from
// the body.
func splitFrontmatter(data []byte) ([]byte, string, bool) {
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), false
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), false
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	return block, strings.TrimLeft(string(after), "\n\r"), true
}

func firstHeading(body string) string {
	for line := range strings.Lines(body) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a title into a lower-case, dash-separated file name stem.
func Slug(title string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		s = "note"
	}
	return s
}

// FileName returns the export file name of n: its slug followed by the
// first eight characters of its id.
func FileName(n models.Note) string {
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return Slug(n.Title) + ".md"
	}
	return Slug(n.Title) + "-" + id + ".md"
}
