package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap contains the dashboard keyboard shortcuts
type KeyMap struct {
	Quit   key.Binding
	Skip   key.Binding
	Stop   key.Binding
	Toggle key.Binding
}

// NewKeyMap creates the default dashboard bindings
func NewKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip phase"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause/resume"),
		),
	}
}

// ShortHelp returns the bindings shown in the bottom bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Skip, k.Stop, k.Quit}
}

// FullHelp returns the bindings grouped for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip},
		{k.Stop, k.Quit},
	}
}
