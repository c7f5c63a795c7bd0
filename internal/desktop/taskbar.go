package desktop

import "slices"

// TaskbarEntry is one button on the taskbar.
type TaskbarEntry struct {
	WindowID string `json:"window_id"`
	Label    string `json:"label"`
	Icon     string `json:"icon,omitempty"`
	Active   bool   `json:"active"`
}

// TaskbarRenderer receives the full entry list after every rebuild. It runs
// while the manager lock is held and must not call back into the manager.
type TaskbarRenderer interface {
	RenderTaskbar(entries []TaskbarEntry)
}

// RendererFunc adapts a function to TaskbarRenderer.
type RendererFunc func(entries []TaskbarEntry)

func (f RendererFunc) RenderTaskbar(entries []TaskbarEntry) { f(entries) }

// Rebuild recomputes the taskbar from the visible windows and pushes it to
// every renderer.
func (m *Manager) Rebuild() []TaskbarEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuild()
	return slices.Clone(m.taskbar)
}

func (m *Manager) rebuild() {
	entries := make([]TaskbarEntry, 0, len(m.windows))
	for _, w := range m.windows {
		if !w.visible {
			continue
		}
		entries = append(entries, TaskbarEntry{
			WindowID: w.id,
			Label:    w.title,
			Icon:     w.icon,
			Active:   w.active,
		})
	}
	m.taskbar = entries
	for _, r := range m.renderers {
		r.RenderTaskbar(slices.Clone(entries))
	}
}

// Taskbar returns the entries from the last rebuild.
func (m *Manager) Taskbar() []TaskbarEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.taskbar)
}

// ClickTaskbar applies a taskbar button press: a hidden window is shown, a
// background window is raised and the active window is minimized.
func (m *Manager) ClickTaskbar(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[id]
	if !ok {
		return false
	}
	switch {
	case !w.visible:
		return m.show(id)
	case !w.active:
		return m.bringToFront(id)
	default:
		return m.hide(id, ActionMinimize)
	}
}
