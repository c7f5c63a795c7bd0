package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/nosyt/nosytos/internal/platform"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	Bounds platform.Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: platform.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}
	return monitors, nil
}

// pointer returns the root-relative pointer position.
func (c *Connection) pointer() (int, int, bool) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

// workArea returns the EWMH work area of the current desktop, which excludes
// panels and docks.
func (c *Connection) workArea() (platform.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return platform.Rect{}, false
	}
	idx := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(areas) {
		idx = int(current)
	}
	wa := areas[idx]
	return platform.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

// monitorAt returns the monitor containing (x, y).
func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].Bounds.Contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}

// intersect returns the overlap of a and b and whether it is non-empty.
func intersect(a, b platform.Rect) (platform.Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.Right(), b.Right())
	y2 := min(a.Bottom(), b.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return platform.Rect{}, false
	}
	return platform.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}
