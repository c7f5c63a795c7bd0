package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
)

// Desktop is the daemon surface the TUI drives. *ipc.Client implements it.
type Desktop interface {
	Snapshot() (*desktop.State, error)
	ListApps() ([]desktop.AppView, error)
	OpenApp(appID string) (bool, error)
	WindowAction(action, windowID string) (bool, error)
	TaskbarClick(windowID string) (bool, error)
	Dispatch(ev events.Event) (bool, error)
}

const pollInterval = 2 * time.Second

type mode int

const (
	modeDesktop mode = iota
	modeLauncher
)

type refreshMsg struct {
	state *desktop.State
	apps  []desktop.AppView
	err   error
}

type actionMsg struct {
	what    string
	applied bool
	err     error
}

type tickMsg struct{}

// appItem adapts a launcher entry to the bubbles list.
type appItem struct {
	app desktop.AppView
}

func (i appItem) Title() string { return i.app.ID }
func (i appItem) Description() string {
	return fmt.Sprintf("window %s • first open: %s", i.app.Window, i.app.FirstOpen)
}
func (i appItem) FilterValue() string { return i.app.ID }

type model struct {
	desk Desktop

	state     desktop.State
	connected bool
	selected  int
	status    string
	err       error

	mode     mode
	launcher list.Model
	keys     keyMap
	help     help.Model

	width  int
	height int
}

func newModel(desk Desktop) model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Launcher"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)

	return model{
		desk:     desk,
		launcher: l,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

func (m model) refresh() tea.Cmd {
	desk := m.desk
	return func() tea.Msg {
		st, err := desk.Snapshot()
		if err != nil {
			return refreshMsg{err: err}
		}
		apps, err := desk.ListApps()
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{state: st, apps: apps}
	}
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) act(what string, fn func() (bool, error)) tea.Cmd {
	return func() tea.Msg {
		applied, err := fn()
		return actionMsg{what: what, applied: applied, err: err}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick())
}

func (m model) selectedWindow() (desktop.WindowView, bool) {
	if m.selected < 0 || m.selected >= len(m.state.Windows) {
		return desktop.WindowView{}, false
	}
	return m.state.Windows[m.selected], true
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.launcher.SetSize(sidebarWidth, max(msg.Height-6, 3))
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case refreshMsg:
		if msg.err != nil {
			m.connected = false
			m.err = msg.err
			return m, nil
		}
		m.connected = true
		m.err = nil
		m.state = *msg.state
		if m.selected >= len(m.state.Windows) {
			m.selected = max(len(m.state.Windows)-1, 0)
		}
		items := make([]list.Item, 0, len(msg.apps))
		for _, app := range msg.apps {
			items = append(items, appItem{app: app})
		}
		return m, m.launcher.SetItems(items)

	case actionMsg:
		switch {
		case msg.err != nil:
			m.err = msg.err
			m.status = ""
		case msg.applied:
			m.err = nil
			m.status = msg.what
		default:
			m.err = nil
			m.status = msg.what + " (no change)"
		}
		return m, m.refresh()

	case tea.KeyMsg:
		if m.mode == modeLauncher {
			return m.updateLauncher(msg)
		}
		return m.updateDesktop(msg)
	}
	return m, nil
}

func (m model) updateLauncher(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.launcher.FilterState() != list.Filtering {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.mode = modeDesktop
			return m, nil
		case key.Matches(msg, m.keys.Focus):
			item, ok := m.launcher.SelectedItem().(appItem)
			m.mode = modeDesktop
			if !ok {
				return m, nil
			}
			id := item.app.ID
			return m, m.act("open "+id, func() (bool, error) { return m.desk.OpenApp(id) })
		}
	}
	var cmd tea.Cmd
	m.launcher, cmd = m.launcher.Update(msg)
	return m, cmd
}

func (m model) updateDesktop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	desk := m.desk
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()

	case key.Matches(msg, m.keys.Launcher):
		m.mode = modeLauncher
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.state.Windows)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Cycle), key.Matches(msg, m.keys.CycleBack):
		combo := "alt+tab"
		if key.Matches(msg, m.keys.CycleBack) {
			combo = "alt+shift+tab"
		}
		return m, m.act(combo, func() (bool, error) {
			return desk.Dispatch(events.Event{Kind: events.KeyDown, Role: events.RoleAny, Key: combo})
		})

	case key.Matches(msg, m.keys.Taskbar):
		n := int(msg.String()[0] - '1')
		if n >= len(m.state.Taskbar) {
			return m, nil
		}
		id := m.state.Taskbar[n].WindowID
		return m, m.act("taskbar "+id, func() (bool, error) { return desk.TaskbarClick(id) })
	}

	w, ok := m.selectedWindow()
	if !ok {
		return m, nil
	}
	id := w.ID
	apply := func(action string) tea.Cmd {
		return m.act(action+" "+id, func() (bool, error) { return desk.WindowAction(action, id) })
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		if w.Visible {
			return m, apply(desktop.OpFocus)
		}
		return m, apply(desktop.OpShow)
	case key.Matches(msg, m.keys.Minimize):
		return m, apply(desktop.OpMinimize)
	case key.Matches(msg, m.keys.Maximize):
		return m, apply(desktop.OpToggle)
	case key.Matches(msg, m.keys.Close):
		return m, apply(desktop.OpClose)
	case key.Matches(msg, m.keys.Move):
		dx, dy := arrowDelta(msg.String())
		return m, m.act("move "+id, func() (bool, error) { return drag(desk, w, dx, dy) })
	case key.Matches(msg, m.keys.Resize):
		dx, dy := arrowDelta(msg.String())
		return m, m.act("resize "+id, func() (bool, error) { return resize(desk, w, dx, dy) })
	}
	return m, nil
}

// drag replays a header drag through the daemon's input dispatcher.
func drag(desk Desktop, w desktop.WindowView, dx, dy int) (bool, error) {
	x, y := w.Geometry.X+5, w.Geometry.Y+5
	return replayGesture(desk,
		events.Event{Kind: events.PointerDown, Role: events.RoleHeader, WindowID: w.ID, X: x, Y: y},
		events.Event{Kind: events.PointerMove, Role: events.RoleAny, X: x + dx, Y: y + dy},
	)
}

// resize replays a south-east handle resize through the input dispatcher.
func resize(desk Desktop, w desktop.WindowView, dx, dy int) (bool, error) {
	x, y := w.Geometry.Right(), w.Geometry.Bottom()
	return replayGesture(desk,
		events.Event{Kind: events.PointerDown, Role: events.RoleResizeHandle, WindowID: w.ID, Direction: "se", X: x, Y: y},
		events.Event{Kind: events.PointerMove, Role: events.RoleAny, X: x + dx, Y: y + dy},
	)
}

func replayGesture(desk Desktop, down, move events.Event) (bool, error) {
	started, err := desk.Dispatch(down)
	if err != nil || !started {
		return false, err
	}
	moved, err := desk.Dispatch(move)
	if err != nil {
		return false, err
	}
	if _, err := desk.Dispatch(events.Event{Kind: events.PointerUp, Role: events.RoleAny}); err != nil {
		return false, err
	}
	return moved, nil
}
