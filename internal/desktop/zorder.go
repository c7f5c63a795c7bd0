package desktop

// BringToFront raises a visible window above every other window and makes it
// the only active one. Each call consumes a fresh stacking value. Unknown and
// hidden windows are ignored.
func (m *Manager) BringToFront(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bringToFront(id)
}

func (m *Manager) bringToFront(id string) bool {
	w, ok := m.byID[id]
	if !ok || !w.visible {
		return false
	}
	m.zCounter++
	w.z = m.zCounter
	for _, other := range m.windows {
		other.active = false
	}
	w.active = true
	m.logger.Debug("window raised", "window", id, "z", w.z)
	m.notify(ActionFocus, w)
	m.rebuild()
	return true
}

// CycleFocus raises the visible window step positions away from the active
// one in creation order, wrapping around.
func (m *Manager) CycleFocus(step int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	var visible []*window
	current := -1
	for _, w := range m.windows {
		if !w.visible {
			continue
		}
		if w.active {
			current = len(visible)
		}
		visible = append(visible, w)
	}
	n := len(visible)
	if n == 0 {
		return false
	}
	next := 0
	if current >= 0 {
		next = ((current+step)%n + n) % n
	}
	return m.bringToFront(visible[next].id)
}

// activateTopmost restores the single-active invariant after a window was
// hidden. The highest visible window becomes active; stacking values are
// left untouched.
func (m *Manager) activateTopmost() {
	var top, current *window
	for _, w := range m.windows {
		if !w.visible {
			w.active = false
			continue
		}
		if w.active {
			current = w
		}
		if top == nil || w.z > top.z {
			top = w
		}
	}
	if current != nil || top == nil {
		return
	}
	top.active = true
	m.logger.Debug("window activated", "window", top.id, "z", top.z)
}
