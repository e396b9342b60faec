package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of both views. Some keys mean different things
// in the feed and in a thread.
type KeyMap struct {
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Enter    key.Binding
	Back     key.Binding
	Open     key.Binding
	Search   key.Binding
	Help     key.Binding

	Reload   key.Binding
	Sort     key.Binding
	Time     key.Binding
	HideRead key.Binding

	Collapse  key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Unseen    key.Binding
	MarkSeen  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+f"),
			key.WithHelp("pgdown", "page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open / load more"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in browser"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Time: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "time range"),
		),
		HideRead: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "hide read"),
		),
		Collapse: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "collapse"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "previous match"),
		),
		Unseen: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unseen"),
		),
		MarkSeen: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark all seen"),
		),
	}
}

func (k KeyMap) feedHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Enter, k.Open, k.Reload, k.Sort, k.Time, k.Search, k.HideRead, k.Quit}
}

func (k KeyMap) threadHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Collapse, k.Enter, k.Search, k.NextMatch, k.PrevMatch, k.Unseen, k.MarkSeen, k.Open, k.Back}
}
