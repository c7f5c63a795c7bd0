package desktop

import (
	"fmt"
	"strings"
)

// Maximize snapshots the current geometry and fills the work area.
// Already-maximized and unknown windows are ignored.
func (m *Manager) Maximize(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maximize(id)
}

func (m *Manager) maximize(id string) bool {
	w, ok := m.byID[id]
	if !ok || w.maximized {
		return false
	}
	snap := w.geometry
	w.snapshot = &snap
	w.geometry = m.workArea
	w.maximized = true
	m.logger.Debug("window maximized", "window", id, "snapshot", snap.String())
	m.notify(ActionMaximize, w)
	return true
}

// Restore returns a maximized window to its pre-maximize geometry. A window
// with no snapshot, such as one that was never maximized, is placed at the
// configured restore default. Unknown windows are ignored.
func (m *Manager) Restore(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restore(id)
}

func (m *Manager) restore(id string) bool {
	w, ok := m.byID[id]
	if !ok {
		return false
	}
	target := m.restoreDefault
	if w.snapshot != nil {
		target = *w.snapshot
	}
	w.geometry = target.Clamped(m.minWidth, m.minHeight)
	w.maximized = false
	w.snapshot = nil
	m.logger.Debug("window restored", "window", id, "geometry", w.geometry.String())
	m.notify(ActionRestore, w)
	return true
}

// ToggleMaximize is the maximize control: it maximizes a normal window and
// restores a maximized one.
func (m *Manager) ToggleMaximize(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return false
	}
	if w.maximized {
		return m.restore(id)
	}
	return m.maximize(id)
}

// Minimize hides a window. The maximized flag survives so that Show brings
// the window back in the same state.
func (m *Manager) Minimize(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hide(id, ActionMinimize)
}

// Close hides a window exactly like Minimize.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hide(id, ActionClose)
}

func (m *Manager) hide(id string, action Action) bool {
	w, ok := m.byID[id]
	if !ok || !w.visible {
		return false
	}
	w.visible = false
	w.active = false
	m.activateTopmost()
	m.logger.Debug("window hidden", "window", id, "action", string(action))
	m.notify(action, w)
	m.rebuild()
	return true
}

// Show makes a window visible again and brings it to the front.
func (m *Manager) Show(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.show(id)
}

func (m *Manager) show(id string) bool {
	w, ok := m.byID[id]
	if !ok {
		return false
	}
	if !w.visible {
		w.visible = true
		m.notify(ActionShow, w)
	}
	return m.bringToFront(id)
}

// Window actions accepted by Apply.
const (
	OpFocus    = "focus"
	OpShow     = "show"
	OpMinimize = "minimize"
	OpMaximize = "maximize"
	OpRestore  = "restore"
	OpToggle   = "toggle"
	OpClose    = "close"
)

// Operations lists the actions Apply understands.
var Operations = []string{OpFocus, OpShow, OpMinimize, OpMaximize, OpRestore, OpToggle, OpClose}

// Apply runs a named window action. Unknown action names are an error;
// unknown window ids report false like the direct methods.
func (m *Manager) Apply(action, id string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case OpFocus:
		return m.BringToFront(id), nil
	case OpShow:
		return m.Show(id), nil
	case OpMinimize:
		return m.Minimize(id), nil
	case OpMaximize:
		return m.Maximize(id), nil
	case OpRestore:
		return m.Restore(id), nil
	case OpToggle:
		return m.ToggleMaximize(id), nil
	case OpClose:
		return m.Close(id), nil
	default:
		return false, fmt.Errorf("unknown window action %q", action)
	}
}
