package ui

import "github.com/charmbracelet/bubbles/key"

// listKeys are active on the field list.
type listKeys struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Delete key.Binding
	Empty  key.Binding
	Unlink key.Binding
	Name   key.Binding
	Run    key.Binding
	Clear  key.Binding
	Debug  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultListKeys() listKeys {
	return listKeys{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Edit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove filter")),
		Empty:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "empty")),
		Unlink: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unlink")),
		Name:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "name")),
		Run:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
		Clear:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear errors")),
		Debug:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k listKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Name, k.Run, k.Help, k.Quit}
}

func (k listKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Edit},
		{k.Delete, k.Empty, k.Unlink},
		{k.Name, k.Run, k.Clear},
		{k.Debug, k.Help, k.Quit},
	}
}

// pickKeys are active while a picker or editor has focus.
type pickKeys struct {
	Prev   key.Binding
	Next   key.Binding
	Accept key.Binding
	Remove key.Binding
	Group  key.Binding
	Back   key.Binding
}

func defaultPickKeys() pickKeys {
	return pickKeys{
		Prev:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "prev")),
		Next:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next")),
		Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Remove: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "drop last")),
		Group:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next group")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

func (k pickKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Accept, k.Remove, k.Group, k.Back}
}

func (k pickKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
