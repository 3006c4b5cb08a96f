package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings shared by both notification views.
type KeyMap struct {
	Down key.Binding
	Up   key.Binding

	SwitchView key.Binding

	MarkRead    key.Binding
	Delete      key.Binding
	MarkAllRead key.Binding

	// Full list only
	LoadMore     key.Binding
	CycleType    key.Binding
	ToggleUnread key.Binding

	Refresh key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		SwitchView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch view"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "mark read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "type filter"),
		),
		ToggleUnread: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unread only"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.MarkRead, k.Delete, k.MarkAllRead, k.SwitchView, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.SwitchView},
		{k.MarkRead, k.Delete, k.MarkAllRead},
		{k.LoadMore, k.CycleType, k.ToggleUnread},
		{k.Refresh, k.Quit},
	}
}
