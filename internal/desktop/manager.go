// Package desktop holds the authoritative window state of the NosytOS95 shell:
// the window registry, stacking order, window controls, the taskbar and the
// launcher. Rendering is a projection of this state pushed to renderers.
package desktop

import (
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/platform"
)

// Action names a state transition reported to observers.
type Action string

const (
	ActionFocus    Action = "focus"
	ActionShow     Action = "show"
	ActionMinimize Action = "minimize"
	ActionClose    Action = "close"
	ActionMaximize Action = "maximize"
	ActionRestore  Action = "restore"
	ActionGeometry Action = "geometry"
	ActionOpen     Action = "open"
)

// Observer is notified after every window transition. It runs while the
// manager lock is held and must not call back into the manager.
type Observer interface {
	WindowChanged(action Action, w WindowView)
}

// Manager owns every window record. All methods are safe for concurrent use;
// each one runs to completion under a single lock.
type Manager struct {
	mu sync.Mutex

	windows []*window
	byID    map[string]*window
	apps    map[string]config.App

	zCounter       int
	workArea       platform.Rect
	minWidth       int
	minHeight      int
	restoreDefault platform.Rect

	taskbar   []TaskbarEntry
	renderers []TaskbarRenderer
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRenderer registers a taskbar render target.
func WithRenderer(r TaskbarRenderer) Option {
	return func(m *Manager) { m.renderers = append(m.renderers, r) }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// New builds the registry from cfg. Stacking values follow declaration order
// and the topmost visible window starts active.
func New(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		byID:           make(map[string]*window, len(cfg.Windows)),
		apps:           maps.Clone(cfg.Apps),
		workArea:       cfg.WorkArea(),
		minWidth:       cfg.MinWindow.Width,
		minHeight:      cfg.MinWindow.Height,
		restoreDefault: cfg.RestoreDefault,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	for i, decl := range cfg.Windows {
		m.zCounter++
		w := &window{
			id:       decl.ID,
			title:    decl.Title,
			icon:     decl.Icon,
			index:    i,
			geometry: decl.Geometry.Clamped(m.minWidth, m.minHeight),
			visible:  decl.Visible,
			z:        m.zCounter,
			controls: slices.Clone(decl.Controls),
			handles:  slices.Clone(decl.ResizeHandles),
		}
		if decl.Maximized {
			snap := w.geometry
			w.snapshot = &snap
			w.geometry = m.workArea
			w.maximized = true
		}
		m.windows = append(m.windows, w)
		m.byID[w.id] = w
	}

	m.activateTopmost()
	m.rebuild()
	return m
}

// AddRenderer registers an additional taskbar render target and pushes the
// current entries to it.
func (m *Manager) AddRenderer(r TaskbarRenderer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderers = append(m.renderers, r)
	r.RenderTaskbar(slices.Clone(m.taskbar))
}

func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Window returns a copy of the window record.
func (m *Manager) Window(id string) (WindowView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return WindowView{}, false
	}
	return w.view(), true
}

// Windows returns every window in creation order.
func (m *Manager) Windows() []WindowView {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WindowView, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w.view())
	}
	return out
}

// Active returns the id of the active window, or "" when none is visible.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.active {
			return w.id
		}
	}
	return ""
}

// WorkArea is the rectangle a maximized window occupies.
func (m *Manager) WorkArea() platform.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workArea
}

// MinSize returns the minimum window width and height.
func (m *Manager) MinSize() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minWidth, m.minHeight
}

// Geometry returns the current window rectangle.
func (m *Manager) Geometry(id string) (platform.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return platform.Rect{}, false
	}
	return w.geometry, true
}

func (m *Manager) IsMaximized(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	return ok && w.maximized
}

// SetGeometry moves or resizes a window in the normal state. The size is
// clamped to the minimum; maximized and unknown windows are left alone.
func (m *Manager) SetGeometry(id string, r platform.Rect) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok || w.maximized {
		return false
	}
	w.geometry = r.Clamped(m.minWidth, m.minHeight)
	m.notify(ActionGeometry, w)
	return true
}

// State is a consistent snapshot of the whole desktop.
type State struct {
	Windows []WindowView   `json:"windows"`
	Taskbar []TaskbarEntry `json:"taskbar"`
	Active  string         `json:"active,omitempty"`
	Work    platform.Rect  `json:"work_area"`
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := State{
		Windows: make([]WindowView, 0, len(m.windows)),
		Taskbar: slices.Clone(m.taskbar),
		Work:    m.workArea,
	}
	for _, w := range m.windows {
		st.Windows = append(st.Windows, w.view())
		if w.active {
			st.Active = w.id
		}
	}
	return st
}

func (m *Manager) notify(action Action, w *window) {
	if len(m.observers) == 0 {
		return
	}
	v := w.view()
	for _, o := range m.observers {
		o.WindowChanged(action, v)
	}
}
