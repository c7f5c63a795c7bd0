package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Focus     key.Binding
	Cycle     key.Binding
	CycleBack key.Binding
	Minimize  key.Binding
	Maximize  key.Binding
	Close     key.Binding
	Move      key.Binding
	Resize    key.Binding
	Taskbar   key.Binding
	Launcher  key.Binding
	Refresh   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "select")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "select")),
		Focus:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus/show")),
		Cycle:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next window")),
		CycleBack: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev window")),
		Minimize:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minimize")),
		Maximize:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "maximize/restore")),
		Close:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "close")),
		Move:      key.NewBinding(key.WithKeys("shift+up", "shift+down", "shift+left", "shift+right"), key.WithHelp("shift+←↑↓→", "move")),
		Resize:    key.NewBinding(key.WithKeys("alt+up", "alt+down", "alt+left", "alt+right"), key.WithHelp("alt+←↑↓→", "resize")),
		Taskbar:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "taskbar")),
		Launcher:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open app")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Cycle, k.Minimize, k.Maximize, k.Close, k.Launcher, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Focus, k.Cycle, k.CycleBack},
		{k.Minimize, k.Maximize, k.Close, k.Move, k.Resize},
		{k.Taskbar, k.Launcher, k.Refresh, k.Quit},
	}
}

// step is the pixel distance of one move or resize key press.
const step = 20

func arrowDelta(s string) (int, int) {
	switch s {
	case "shift+up", "alt+up":
		return 0, -step
	case "shift+down", "alt+down":
		return 0, step
	case "shift+left", "alt+left":
		return -step, 0
	case "shift+right", "alt+right":
		return step, 0
	}
	return 0, 0
}
