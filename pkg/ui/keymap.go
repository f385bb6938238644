package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap declares the top-level key bindings of the main view. Modal
// screens (prompts, the time filter, the filter manager) handle their own
// keys and only consult these bindings for shared actions like quitting.
type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	SwitchFocus   key.Binding
	TabFunctions  key.Binding
	TabTopology   key.Binding
	TabBuilding   key.Binding
	Up            key.Binding
	Down          key.Binding
	Expand        key.Binding
	Collapse      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	ToggleSelect  key.Binding
	ClearSelect   key.Binding
	TreeFilter    key.Binding
	GlobalFilter  key.Binding
	TimeFilter    key.Binding
	NamedFilters  key.Binding
	Detail        key.Binding
	CopyRow       key.Binding
	CopyVisible   key.Binding
	Export        key.Binding
	Reload        key.Binding
	ToggleTailing key.Binding
	Cancel        key.Binding
}

// ShortHelp returns the bindings shown in the footer hint line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchFocus, k.ToggleSelect, k.GlobalFilter, k.NamedFilters, k.Help, k.Quit}
}

// FullHelp returns all bindings grouped for the help modal.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.SwitchFocus, k.TabFunctions, k.TabTopology, k.TabBuilding, k.Expand, k.Collapse},
		{k.ToggleSelect, k.ClearSelect, k.TreeFilter, k.GlobalFilter, k.TimeFilter, k.NamedFilters},
		{k.Detail, k.CopyRow, k.CopyVisible, k.Export, k.Reload, k.ToggleTailing},
		{k.Help, k.Cancel, k.Quit},
	}
}

// DefaultKeyMap builds the standard bindings. Vim-style movement keys are
// appended at runtime when vim mode is enabled, so the declared bindings
// stay accurate for the help view.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		SwitchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		TabFunctions: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "functions tree"),
		),
		TabTopology: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "topology tree"),
		),
		TabBuilding: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "building tree"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓/j", "move down"),
		),
		Expand: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→/l", "expand node"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←/h", "collapse node"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home/g", "jump to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end/G", "jump to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdn", "page down"),
		),
		ToggleSelect: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle selection"),
		),
		ClearSelect: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "clear selection"),
		),
		TreeFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter tree"),
		),
		GlobalFilter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search logs"),
		),
		TimeFilter: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "time filter"),
		),
		NamedFilters: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "named filters"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details / expand"),
		),
		CopyRow: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy row"),
		),
		CopyVisible: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "copy visible rows"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload source"),
		),
		ToggleTailing: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause/resume tail"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / cancel"),
		),
	}
}

// EnableVimKeys extends movement bindings with the vim equivalents.
func (k *KeyMap) EnableVimKeys() {
	k.Up = key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	)
	k.Down = key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	)
	k.Expand = key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "expand node"),
	)
	k.Collapse = key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "collapse node"),
	)
	k.Top = key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "jump to top"),
	)
	k.Bottom = key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "jump to bottom"),
	)
}
