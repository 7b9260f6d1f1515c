package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Search  key.Binding
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Reload  key.Binding
	Quit    key.Binding

	SavePrivate key.Binding
	Publish     key.Binding
	Focus       key.Binding

	Yes key.Binding
	No  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	SavePrivate: key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save as private")),
	Publish:     key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "publish")),
	Focus:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),

	Yes: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
	No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.NextTab, k.Search, k.New, k.Edit, k.Delete, k.Reload, k.Quit}
}

func (k keyMap) detailHelp(owner bool) []key.Binding {
	if !owner {
		return []key.Binding{k.Back, k.Quit}
	}
	return []key.Binding{k.Edit, k.Delete, k.Back, k.Quit}
}

func (k keyMap) editHelp(isNew bool) []key.Binding {
	publish := k.Publish
	if !isNew {
		publish.SetHelp("ctrl+p", "make public")
	}
	return []key.Binding{k.SavePrivate, publish, k.Focus, k.Back}
}

func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}
