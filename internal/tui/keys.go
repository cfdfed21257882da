package tui

import "github.com/charmbracelet/bubbles/key"

// WatchKeys are the bindings of the watch screen.
type WatchKeys struct {
	Quit    key.Binding
	Record  key.Binding
	Cancel  key.Binding
	Health  key.Binding
	Clear   key.Binding
	Up      key.Binding
	Down    key.Binding
	PageUp  key.Binding
	PageDn  key.Binding
	Follow  key.Binding
}

var watchKeys = WatchKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Record: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "record/stop"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "cancel"),
	),
	Health: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "healthcheck"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear feed"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("j/k", "scroll"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("j/k", "scroll"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
	),
	PageDn: key.NewBinding(
		key.WithKeys("pgdown"),
	),
	Follow: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "follow tail"),
	),
}
