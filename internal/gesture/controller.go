package gesture

import (
	"io"
	"log/slog"
	"sync"

	"github.com/nosyt/nosytos/internal/platform"
)

// Kind distinguishes drag sessions from resize sessions.
type Kind int

const (
	KindDrag Kind = iota
	KindResize
)

func (k Kind) String() string {
	switch k {
	case KindDrag:
		return "drag"
	case KindResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Session is the state captured when a gesture starts.
type Session struct {
	WindowID string
	Kind     Kind
	Edges    Edge
	// Pointer position at gesture start.
	OriginX, OriginY int
	Origin           platform.Rect
	// Pointer offset from the window's top-left corner (drag only).
	OffsetX, OffsetY int
}

// Result reports a finished session.
type Result struct {
	Session   Session
	Final     platform.Rect
	Cancelled bool
}

// Surface is the window state a controller manipulates.
type Surface interface {
	Geometry(id string) (platform.Rect, bool)
	IsMaximized(id string) bool
	BringToFront(id string) bool
	SetGeometry(id string, r platform.Rect) bool
	MinSize() (int, int)
}

// OnSessionEndFunc is called after a session ends, outside the controller lock.
type OnSessionEndFunc func(Result)

// Controller tracks at most one drag or resize session.
type Controller struct {
	mu      sync.Mutex
	surface Surface
	session *Session
	logger  *slog.Logger

	// OnSessionEnd is called after End or Cancel terminates a session.
	OnSessionEnd OnSessionEndFunc
}

func NewController(surface Surface, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{surface: surface, logger: logger}
}

// BeginDrag raises the window and, unless it is maximized, starts a drag
// session anchored at the pointer.
func (c *Controller) BeginDrag(id string, x, y int) bool {
	return c.begin(id, KindDrag, 0, x, y)
}

// BeginResize raises the window and, unless it is maximized, starts a resize
// session moving the given edges.
func (c *Controller) BeginResize(id string, edges Edge, x, y int) bool {
	if edges == 0 {
		return false
	}
	return c.begin(id, KindResize, edges, x, y)
}

func (c *Controller) begin(id string, kind Kind, edges Edge, x, y int) bool {
	// A new pointer-down implies the previous capture was lost.
	c.End()

	if !c.surface.BringToFront(id) {
		return false
	}
	if c.surface.IsMaximized(id) {
		return false
	}
	geom, ok := c.surface.Geometry(id)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &Session{
		WindowID: id,
		Kind:     kind,
		Edges:    edges,
		OriginX:  x,
		OriginY:  y,
		Origin:   geom,
		OffsetX:  x - geom.X,
		OffsetY:  y - geom.Y,
	}
	c.logger.Debug("gesture started", "window", id, "kind", kind.String(), "edges", edges.String())
	return true
}

// Move applies the pointer position to the active session.
func (c *Controller) Move(x, y int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.session
	if s == nil {
		return false
	}
	var next platform.Rect
	switch s.Kind {
	case KindDrag:
		next = s.Origin.Moved(subSat(x, s.OffsetX), subSat(y, s.OffsetY))
	case KindResize:
		minW, minH := c.surface.MinSize()
		next = ResizeRect(s.Origin, s.Edges, subSat(x, s.OriginX), subSat(y, s.OriginY), minW, minH)
	}
	return c.surface.SetGeometry(s.WindowID, next)
}

// End terminates the active session, leaving the window where it is.
func (c *Controller) End() (Result, bool) {
	return c.finish(false)
}

// Cancel terminates the active session and puts the window back at its
// origin geometry.
func (c *Controller) Cancel() (Result, bool) {
	return c.finish(true)
}

func (c *Controller) finish(cancel bool) (Result, bool) {
	c.mu.Lock()
	s := c.session
	c.session = nil
	if s == nil {
		c.mu.Unlock()
		return Result{}, false
	}
	if cancel {
		c.surface.SetGeometry(s.WindowID, s.Origin)
	}
	final, _ := c.surface.Geometry(s.WindowID)
	cb := c.OnSessionEnd
	c.mu.Unlock()

	res := Result{Session: *s, Final: final, Cancelled: cancel}
	c.logger.Debug("gesture ended", "window", s.WindowID, "kind", s.Kind.String(), "geometry", final.String(), "cancelled", cancel)
	if cb != nil {
		cb(res)
	}
	return res, true
}

// Active returns a copy of the running session.
func (c *Controller) Active() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}
