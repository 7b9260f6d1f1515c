// Package tui is the terminal client. It drives the same view-models as the
// web front end, usually over a backend.Remote.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/viewmodel"
)

type screen int

const (
	screenList screen = iota
	screenDetail
	screenEdit
	screenConfirm
)

type (
	loadedMsg  struct{ err error }
	detailMsg  struct {
		detail *viewmodel.Detail
		err    error
	}
	editorMsg struct {
		editor *viewmodel.Editor
		err    error
	}
	savedMsg struct {
		route viewmodel.Route
		err   error
	}
	deletedMsg struct {
		fromDetail bool
		err        error
	}
)

// Model is the Bubble Tea model of the whole client.
type Model struct {
	ctx     context.Context
	client  backend.Client
	session *backend.Session

	list   *viewmodel.NoteList
	detail *viewmodel.Detail
	editor *viewmodel.Editor

	screen    screen
	back      screen
	cursor    int
	searching bool
	search    textinput.Model
	title     textinput.Model
	body      textarea.Model
	help      help.Model
	status    string
	statusErr bool
	busy      bool
	width     int
}

// New builds the client model. All backend calls use ctx.
func New(ctx context.Context, client backend.Client) Model {
	session := backend.NewSession(client)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search notes"
	search.Cursor.SetMode(cursor.CursorStatic)

	title := textinput.New()
	title.Prompt = "Title: "
	title.CharLimit = 200
	title.Cursor.SetMode(cursor.CursorStatic)

	body := textarea.New()
	body.Placeholder = "Write your note in Markdown..."
	body.ShowLineNumbers = false
	body.SetHeight(12)
	body.Cursor.SetMode(cursor.CursorStatic)

	return Model{
		ctx:     ctx,
		client:  client,
		session: session,
		list:    viewmodel.NewNoteList(client, session),
		search:  search,
		title:   title,
		body:    body,
		help:    help.New(),
		width:   80,
	}
}

// Run starts the client full screen and blocks until the user quits.
func Run(ctx context.Context, client backend.Client) error {
	p := tea.NewProgram(New(ctx, client), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init loads the note list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	list := m.list
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{err: list.Load(ctx)}
	}
}

func (m Model) openDetail(id string) tea.Cmd {
	ctx, client, session := m.ctx, m.client, m.session
	return func() tea.Msg {
		d, err := viewmodel.OpenDetail(ctx, client, session, id)
		return detailMsg{detail: d, err: err}
	}
}

func (m Model) openEditor(id string) tea.Cmd {
	ctx, client, session := m.ctx, m.client, m.session
	return func() tea.Msg {
		e, err := viewmodel.OpenEditor(ctx, client, session, id)
		return editorMsg{editor: e, err: err}
	}
}

func (m Model) submit(publish bool) tea.Cmd {
	ctx, e := m.ctx, m.editor
	return func() tea.Msg {
		route, err := e.Submit(ctx, publish)
		return savedMsg{route: route, err: err}
	}
}

func (m Model) confirmDelete() tea.Cmd {
	ctx := m.ctx
	if m.back == screenDetail {
		d := m.detail
		return func() tea.Msg {
			_, err := d.ConfirmDelete(ctx)
			return deletedMsg{fromDetail: true, err: err}
		}
	}
	list := m.list
	return func() tea.Msg {
		return deletedMsg{err: list.ConfirmDelete(ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.body.SetWidth(max(msg.Width-4, 20))
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
		}
		m.clampCursor()
		return m, nil

	case detailMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.detail = msg.detail
		m.screen = screenDetail
		m.status = ""
		return m, nil

	case editorMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.startEditor(msg.editor)
		return m, nil

	case savedMsg:
		m.busy = false
		if apperr.IsValidation(msg.err) {
			// Shown next to the field.
			return m, nil
		}
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.editor = nil
		m.detail = nil
		m.screen = screenList
		m.notify("Saved.")
		m.busy = true
		return m, m.load()

	case deletedMsg:
		m.busy = false
		m.screen = screenList
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.notify("Deleted.")
		m.detail = nil
		if msg.fromDetail {
			m.busy = true
			return m, m.load()
		}
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.screen {
		case screenList:
			return m.updateList(msg)
		case screenDetail:
			return m.updateDetail(msg)
		case screenEdit:
			return m.updateEdit(msg)
		case screenConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.list.SetSearch(m.search.Value())
		m.cursor = 0
		return m, cmd
	}

	notes := m.list.VisibleNotes()
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(notes)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.NextTab):
		m.shiftTab(1)
	case key.Matches(msg, keys.PrevTab):
		m.shiftTab(-1)
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.search.Focus()
	case key.Matches(msg, keys.Reload):
		m.busy = true
		m.status = ""
		return m, m.load()
	case key.Matches(msg, keys.New):
		m.startEditor(viewmodel.NewCreateEditor(m.client, m.session))
	case key.Matches(msg, keys.Open):
		if n, ok := m.selected(notes); ok {
			m.busy = true
			return m, m.openDetail(n.ID)
		}
	case key.Matches(msg, keys.Edit):
		if n, ok := m.selected(notes); ok {
			m.busy = true
			return m, m.openEditor(n.ID)
		}
	case key.Matches(msg, keys.Delete):
		n, ok := m.selected(notes)
		if !ok {
			break
		}
		if !n.OwnedBy(m.list.User()) {
			m.fail(apperr.ErrForbidden)
			break
		}
		if err := m.list.RequestDelete(n.ID); err != nil {
			m.fail(err)
			break
		}
		m.back = screenList
		m.screen = screenConfirm
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), msg.String() == "q", msg.Type == tea.KeyBackspace:
		m.detail = nil
		m.screen = screenList
	case key.Matches(msg, keys.Edit):
		if m.detail.IsOwner() {
			m.busy = true
			return m, m.openEditor(m.detail.Note().ID)
		}
	case key.Matches(msg, keys.Delete):
		if err := m.detail.RequestDelete(); err != nil {
			m.fail(err)
			break
		}
		m.back = screenDetail
		m.screen = screenConfirm
	}
	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.editor = nil
		m.status = ""
		if m.detail != nil {
			m.screen = screenDetail
		} else {
			m.screen = screenList
		}
		return m, nil
	case key.Matches(msg, keys.SavePrivate), key.Matches(msg, keys.Publish):
		m.editor.SetTitle(m.title.Value())
		m.editor.SetContent(m.body.Value())
		m.busy = true
		m.status = ""
		return m, m.submit(key.Matches(msg, keys.Publish))
	case key.Matches(msg, keys.Focus):
		if m.title.Focused() {
			m.title.Blur()
			m.body.Focus()
		} else {
			m.body.Blur()
			m.title.Focus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.title.Focused() {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Yes):
		m.busy = true
		return m, m.confirmDelete()
	case key.Matches(msg, keys.No):
		if m.back == screenDetail {
			m.detail.CancelDelete()
		} else {
			m.list.CancelDelete()
		}
		m.screen = m.back
	}
	return m, nil
}

func (m *Model) startEditor(e *viewmodel.Editor) {
	d := e.Draft()
	m.editor = e
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.body.SetValue(d.Content)
	m.body.Blur()
	m.title.Focus()
	m.status = ""
	m.screen = screenEdit
}

func (m *Model) fail(err error) {
	m.status = apperr.Message(err)
	m.statusErr = true
}

func (m *Model) notify(msg string) {
	m.status = msg
	m.statusErr = false
}

func (m *Model) shiftTab(step int) {
	tabs := m.list.Tabs()
	i := slices.Index(tabs, m.list.Tab())
	i = (i + step + len(tabs)) % len(tabs)
	m.list.SetTab(tabs[i])
	m.cursor = 0
}

func (m *Model) clampCursor() {
	n := len(m.list.VisibleNotes())
	m.cursor = min(m.cursor, max(n-1, 0))
}

func (m Model) selected(notes []models.Note) (models.Note, bool) {
	if m.cursor < 0 || m.cursor >= len(notes) {
		return models.Note{}, false
	}
	return notes[m.cursor], true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.screen {
	case screenList:
		b.WriteString(m.viewList())
		b.WriteString("\n" + m.help.ShortHelpView(keys.listHelp()))
	case screenDetail:
		b.WriteString(m.viewDetail())
		b.WriteString("\n" + m.help.ShortHelpView(keys.detailHelp(m.detail.IsOwner())))
	case screenEdit:
		b.WriteString(m.viewEdit())
		b.WriteString("\n" + m.help.ShortHelpView(keys.editHelp(m.editor.IsNew())))
	case screenConfirm:
		b.WriteString(m.viewConfirm())
		b.WriteString("\n" + m.help.ShortHelpView(keys.confirmHelp()))
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(accentStyle.Render(m.status))
		}
	}
	return b.String()
}

func (m Model) header() string {
	who := mutedStyle.Render("browsing anonymously")
	if u := m.session.User(); u != nil {
		who = accentStyle.Render(u.Email)
	}
	return titleStyle.Render("Jotter") + "  " + who
}

func (m Model) viewList() string {
	var b strings.Builder
	for _, t := range m.list.Tabs() {
		label := strings.ToUpper(string(t[:1])) + string(t[1:])
		if t == m.list.Tab() {
			b.WriteString(activeTab.Render(label))
		} else {
			b.WriteString(tabStyle.Render(label))
		}
	}
	b.WriteString("\n")
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}
	b.WriteString("\n")

	if err := m.list.Err(); err != nil && !m.list.Loaded() {
		b.WriteString(errorStyle.Render(apperr.Message(err)) + "\n")
		return b.String()
	}
	if !m.list.Loaded() {
		b.WriteString(mutedStyle.Render("Loading...") + "\n")
		return b.String()
	}

	notes := m.list.VisibleNotes()
	if len(notes) == 0 {
		b.WriteString(mutedStyle.Render("No notes.") + "\n")
		return b.String()
	}
	for i, n := range notes {
		mark := privateStyle.Render(markPrivate)
		if n.IsPublic {
			mark = publicStyle.Render(markPublic)
		}
		prefix := "  "
		title := n.Title
		if i == m.cursor {
			prefix = selectedStyle.Render("> ")
			title = titleStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s  %s\n", prefix, mark, title,
			mutedStyle.Render(n.ModifiedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

func (m Model) viewDetail() string {
	n := m.detail.Note()
	var b strings.Builder
	b.WriteString(titleStyle.Render(n.Title) + "\n")
	fmt.Fprintf(&b, "%s  %s\n", visibility(n.IsPublic),
		mutedStyle.Render("Updated "+n.ModifiedAt.Format("2006-01-02 15:04")))
	b.WriteString(renderMarkdown(n.Content, m.width))
	return b.String()
}

func (m Model) viewEdit() string {
	var b strings.Builder
	heading := "New note"
	if !m.editor.IsNew() {
		heading = "Edit note"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")
	b.WriteString(m.title.View() + "\n")
	if msg := m.editor.FieldError("title"); msg != "" {
		b.WriteString(errorStyle.Render(msg) + "\n")
	}
	b.WriteString("\n" + m.body.View() + "\n")
	return b.String()
}

func (m Model) viewConfirm() string {
	title := ""
	if m.back == screenDetail {
		title = m.detail.Note().Title
	} else if id, ok := m.list.PendingDelete(); ok {
		for _, n := range m.list.All() {
			if n.ID == id {
				title = n.Title
			}
		}
	}
	return panelStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone.", title)) + "\n"
}
