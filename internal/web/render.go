package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/jotter/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"landing", "list", "detail", "form", "delete", "auth", "error"}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"excerpt": func(s string) string {
		const limit = 140
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) <= limit {
			return s
		}
		return string([]rune(s)[:limit]) + "…"
	},
}

// page is the data passed to every template.
type page struct {
	User  *models.User
	Flash string
	Data  any
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// render executes a page into a buffer first so template errors never
// produce half-written responses.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "base", p); err != nil {
		slog.Error("render failed",
			slog.String("page", name),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
