package desktop

import (
	"maps"
	"slices"

	"github.com/nosyt/nosytos/internal/config"
)

// AppView describes one launcher entry.
type AppView struct {
	ID        string                 `json:"id"`
	Window    string                 `json:"window"`
	FirstOpen config.FirstOpenPolicy `json:"first_open"`
}

// Open launches an app from a desktop icon or start-menu item: its window is
// shown, raised and, on the first launch only, shaped by the app's first-open
// policy. Unknown apps are ignored.
func (m *Manager) Open(appID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[appID]
	if !ok {
		m.logger.Debug("unknown app", "app", appID)
		return false
	}
	w, ok := m.byID[app.Window]
	if !ok {
		return false
	}

	if !w.opened {
		w.opened = true
		switch app.FirstOpen {
		case config.FirstOpenMaximize:
			m.maximize(w.id)
		case config.FirstOpenCenter:
			if !w.maximized {
				w.geometry = w.geometry.Centered(m.workArea)
			}
		}
	}

	m.show(w.id)
	m.logger.Info("app opened", "app", appID, "window", w.id)
	m.notify(ActionOpen, w)
	return true
}

// Apps lists the launcher entries sorted by id.
func (m *Manager) Apps() []AppView {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AppView, 0, len(m.apps))
	for _, id := range slices.Sorted(maps.Keys(m.apps)) {
		app := m.apps[id]
		out = append(out, AppView{ID: id, Window: app.Window, FirstOpen: app.FirstOpen})
	}
	return out
}

// SetApps swaps the launcher map. Entries pointing at undeclared windows are
// dropped since the window set is fixed at start-up.
func (m *Manager) SetApps(apps map[string]config.App) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := make(map[string]config.App, len(apps))
	for id, app := range apps {
		if _, ok := m.byID[app.Window]; !ok {
			m.logger.Warn("dropping app for unknown window", "app", id, "window", app.Window)
			continue
		}
		next[id] = app
	}
	m.apps = next
	return len(next)
}
