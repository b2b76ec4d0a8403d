package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the dashboard.
type keyMap struct {
	Quit     key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Escape   key.Binding
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Search   key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Detail   key.Binding
	Evacuate key.Binding
	Alerts   key.Binding
	Nearby   key.Binding
	RadiusUp key.Binding
	RadiusDn key.Binding
	MarkRead key.Binding
	Advisory key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh now"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel/back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑", "cursor up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓", "cursor down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select/confirm"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "next page"),
	),
	Detail: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "details"),
	),
	Evacuate: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "evacuation"),
	),
	Alerts: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "alerts"),
	),
	Nearby: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "nearby search"),
	),
	RadiusUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "radius up"),
	),
	RadiusDn: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "radius down"),
	),
	MarkRead: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark read"),
	),
	Advisory: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "advisories"),
	),
}

// helpText is the full help string displayed in the footer when help is toggled on.
const helpText = "q: quit  r: refresh  ↑↓: cursor  enter: select  d: details  e: evacuation  n: nearby search  a: alerts  t: advisories  /: filter  1-9: sort  ←→: page  esc: back  ?: help"
