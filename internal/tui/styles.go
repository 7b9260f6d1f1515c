package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	publicStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	privateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	tabStyle      = lipgloss.NewStyle().Padding(0, 1)
	activeTab     = tabStyle.Bold(true).Underline(true).Foreground(lipgloss.Color("12"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

const (
	markPublic  = "●"
	markPrivate = "○"
)

func visibility(public bool) string {
	if public {
		return publicStyle.Render(markPublic + " public")
	}
	return privateStyle.Render(markPrivate + " private")
}

// renderMarkdown renders note content for the terminal. The raw text is
// returned when rendering fails.
func renderMarkdown(md string, width int) string {
	if width < 40 {
		width = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
