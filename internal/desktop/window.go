package desktop

import (
	"slices"

	"github.com/nosyt/nosytos/internal/platform"
)

// window is the authoritative record for one desktop panel.
type window struct {
	id        string
	title     string
	icon      string
	index     int
	geometry  platform.Rect
	visible   bool
	maximized bool
	z         int
	active    bool
	// snapshot holds the pre-maximize geometry while maximized.
	snapshot *platform.Rect
	opened   bool

	controls []string
	handles  []string
}

// WindowView is a read-only copy of a window record.
type WindowView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Icon          string         `json:"icon,omitempty"`
	Index         int            `json:"index"`
	Geometry      platform.Rect  `json:"geometry"`
	Visible       bool           `json:"visible"`
	Maximized     bool           `json:"maximized"`
	Z             int            `json:"z"`
	Active        bool           `json:"active"`
	Snapshot      *platform.Rect `json:"snapshot,omitempty"`
	Opened        bool           `json:"opened"`
	Controls      []string       `json:"controls"`
	ResizeHandles []string       `json:"resize_handles"`
}

// HasControl reports whether the window declares the given control.
func (v WindowView) HasControl(control string) bool {
	return slices.Contains(v.Controls, control)
}

// HasHandle reports whether the window declares a resize handle in direction.
func (v WindowView) HasHandle(direction string) bool {
	return slices.Contains(v.ResizeHandles, direction)
}

func (w *window) view() WindowView {
	v := WindowView{
		ID:            w.id,
		Title:         w.title,
		Icon:          w.icon,
		Index:         w.index,
		Geometry:      w.geometry,
		Visible:       w.visible,
		Maximized:     w.maximized,
		Z:             w.z,
		Active:        w.active,
		Opened:        w.opened,
		Controls:      slices.Clone(w.controls),
		ResizeHandles: slices.Clone(w.handles),
	}
	if w.snapshot != nil {
		snap := *w.snapshot
		v.Snapshot = &snap
	}
	return v
}
