package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Search key.Binding
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
	Theme  key.Binding
	Copy   key.Binding
	Save   key.Binding
	Cancel key.Binding
	Switch key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy body")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Switch: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "title/body")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.Search, k.New, k.Edit, k.Delete, k.Down, k.Up, k.Theme, k.Copy, k.Quit}
}

func (k keyMap) editHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel, k.Switch}
}
