package x11

import (
	"fmt"

	"github.com/nosyt/nosytos/internal/platform"
)

// Viewport is the usable area of the monitor the desktop is shown on.
type Viewport struct {
	Monitor string
	Bounds  platform.Rect
}

// ProbeViewport connects to display and returns the area of the monitor under
// the pointer, clipped to the EWMH work area when a window manager
// publishes one.
func ProbeViewport(display string) (Viewport, error) {
	conn, err := NewConnection(display)
	if err != nil {
		return Viewport{}, err
	}
	defer conn.Close()

	monitors, err := conn.GetMonitors()
	if err != nil {
		return Viewport{}, err
	}
	px, py, hasPointer := conn.pointer()
	wa, hasWorkArea := conn.workArea()
	return selectViewport(monitors, px, py, hasPointer, wa, hasWorkArea)
}

func selectViewport(monitors []Monitor, px, py int, hasPointer bool, wa platform.Rect, hasWorkArea bool) (Viewport, error) {
	if len(monitors) == 0 {
		return Viewport{}, fmt.Errorf("no monitors found")
	}
	mon := &monitors[0]
	if hasPointer {
		if m := monitorAt(monitors, px, py); m != nil {
			mon = m
		}
	}
	bounds := mon.Bounds
	if hasWorkArea {
		if clipped, ok := intersect(bounds, wa); ok {
			bounds = clipped
		}
	}
	return Viewport{Monitor: mon.Name, Bounds: bounds}, nil
}
