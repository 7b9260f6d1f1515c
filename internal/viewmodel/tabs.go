package viewmodel

import (
	"iter"
	"strings"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/models"
)

// Tab is a visibility filter on the note list.
type Tab string

const (
	TabAll     Tab = "all"
	TabPublic  Tab = "public"
	TabPrivate Tab = "private"
)

// ParseTab converts a query value to a Tab. The empty string means TabAll.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case "", TabAll:
		return TabAll, nil
	case TabPublic:
		return TabPublic, nil
	case TabPrivate:
		return TabPrivate, nil
	}
	return TabAll, &apperr.ValidationError{Field: "tab", Message: "Unknown tab " + s + "."}
}

// TabsFor lists the tabs worth showing to user. The private tab is only
// offered to signed-in users.
func TabsFor(user *models.User) []Tab {
	if user == nil {
		return []Tab{TabAll, TabPublic}
	}
	return []Tab{TabAll, TabPublic, TabPrivate}
}

// Includes reports whether n belongs on tab t for the given viewer.
func (t Tab) Includes(n models.Note, viewer *models.User) bool {
	switch t {
	case TabPublic:
		return n.IsPublic
	case TabPrivate:
		return !n.IsPublic && n.OwnedBy(viewer)
	default:
		return true
	}
}

// Matches reports whether any field of n contains term, ignoring case.
// The empty term matches every note.
func Matches(n models.Note, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, v := range n.FieldValues() {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// Filter yields the notes that match term and belong on tab, in input
// order.
func Filter(notes []models.Note, term string, tab Tab, viewer *models.User) iter.Seq[models.Note] {
	return func(yield func(models.Note) bool) {
		for _, n := range notes {
			if !tab.Includes(n, viewer) || !Matches(n, term) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}
