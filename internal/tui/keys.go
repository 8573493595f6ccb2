package tui

import "github.com/charmbracelet/bubbles/key"

type boardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Delete key.Binding
	Pin    key.Binding
	Sort   key.Binding
	Order  key.Binding
	Reload key.Binding
	Quit   key.Binding

	Add         key.Binding
	Edit        key.Binding
	Workspace   key.Binding
	ColumnLeft  key.Binding
	ColumnRight key.Binding
	TaskUp      key.Binding
	TaskDown    key.Binding
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("x", "toggle done"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Pin: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pin column"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		Order: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "asc/desc"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Workspace: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to workspace"),
		),
		ColumnLeft: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "column left"),
		),
		ColumnRight: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "column right"),
		),
		TaskUp: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("K", "task up"),
		),
		TaskDown: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("J", "task down"),
		),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Pin, k.Sort, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Add, k.Edit, k.Workspace, k.Toggle, k.Delete, k.Reload},
		{k.ColumnLeft, k.ColumnRight, k.TaskUp, k.TaskDown},
		{k.Pin, k.Sort, k.Order, k.Quit},
	}
}

type timerKeyMap struct {
	StartPause key.Binding
	Skip       key.Binding
	Finish     key.Binding
	Reset      key.Binding
	Quit       key.Binding
}

func defaultTimerKeys() timerKeyMap {
	return timerKeyMap{
		StartPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/pause"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next phase"),
		),
		Finish: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finish session"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.StartPause, k.Skip, k.Finish, k.Reset, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
