package events

import (
	"io"
	"log/slog"
	"strings"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/gesture"
)

// Desktop is the window state the dispatcher drives.
type Desktop interface {
	Window(id string) (desktop.WindowView, bool)
	BringToFront(id string) bool
	CycleFocus(step int) bool
	Minimize(id string) bool
	Close(id string) bool
	ToggleMaximize(id string) bool
	ClickTaskbar(id string) bool
	Open(appID string) bool
}

// Gestures is the drag/resize session owner.
type Gestures interface {
	BeginDrag(id string, x, y int) bool
	BeginResize(id string, edges gesture.Edge, x, y int) bool
	Move(x, y int) bool
	End() (gesture.Result, bool)
	Cancel() (gesture.Result, bool)
}

// Handler applies one event and reports whether state changed.
type Handler func(Event) bool

type route struct {
	kind Kind
	role Role
}

// Dispatcher maps (kind, role) pairs to handlers. The table is built once
// and never modified.
type Dispatcher struct {
	desk     Desktop
	gestures Gestures
	table    map[route]Handler
	logger   *slog.Logger
}

func NewDispatcher(desk Desktop, gestures Gestures, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Dispatcher{desk: desk, gestures: gestures, logger: logger}
	d.table = map[route]Handler{
		{PointerDown, RoleHeader}:       d.beginDrag,
		{PointerDown, RoleBody}:         d.focus,
		{PointerDown, RoleResizeHandle}: d.beginResize,
		{PointerMove, RoleAny}:          d.move,
		{PointerUp, RoleAny}:            d.end,
		{LostCapture, RoleAny}:          d.end,
		{Click, RoleMinimize}:           d.control(config.ControlMinimize, desk.Minimize),
		{Click, RoleMaximize}:           d.control(config.ControlMaximize, desk.ToggleMaximize),
		{Click, RoleClose}:              d.control(config.ControlClose, desk.Close),
		{DblClick, RoleHeader}:          d.control(config.ControlMaximize, desk.ToggleMaximize),
		{Click, RoleTaskbarEntry}:       func(e Event) bool { return desk.ClickTaskbar(e.WindowID) },
		{DblClick, RoleDesktopIcon}:     d.open,
		{Click, RoleStartMenuItem}:      d.open,
		{KeyDown, RoleAny}:              d.key,
	}
	return d
}

// Dispatch routes e to its handler. Exact (kind, role) matches win over the
// wildcard role; events with no route are ignored.
func (d *Dispatcher) Dispatch(e Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	h, ok := d.table[route{e.Kind, e.Role}]
	if !ok {
		h, ok = d.table[route{e.Kind, RoleAny}]
	}
	if !ok {
		d.logger.Debug("event ignored", "event", e.String())
		return false, nil
	}
	applied := h(e)
	d.logger.Debug("event dispatched", "event", e.String(), "applied", applied)
	return applied, nil
}

// Routes reports how many (kind, role) pairs are handled.
func (d *Dispatcher) Routes() int {
	return len(d.table)
}

func (d *Dispatcher) beginDrag(e Event) bool {
	return d.gestures.BeginDrag(e.WindowID, e.X, e.Y)
}

func (d *Dispatcher) focus(e Event) bool {
	return d.desk.BringToFront(e.WindowID)
}

func (d *Dispatcher) beginResize(e Event) bool {
	edges, err := gesture.ParseDirection(e.Direction)
	if err != nil {
		d.logger.Debug("bad resize direction", "window", e.WindowID, "error", err)
		return false
	}
	w, ok := d.desk.Window(e.WindowID)
	if !ok || !w.HasHandle(edges.String()) {
		return false
	}
	return d.gestures.BeginResize(e.WindowID, edges, e.X, e.Y)
}

func (d *Dispatcher) move(e Event) bool {
	return d.gestures.Move(e.X, e.Y)
}

func (d *Dispatcher) end(Event) bool {
	_, ended := d.gestures.End()
	return ended
}

// control guards a window control handler on the window declaring it.
func (d *Dispatcher) control(name string, fn func(string) bool) Handler {
	return func(e Event) bool {
		w, ok := d.desk.Window(e.WindowID)
		if !ok || !w.HasControl(name) {
			return false
		}
		return fn(e.WindowID)
	}
}

func (d *Dispatcher) open(e Event) bool {
	return d.desk.Open(e.AppID)
}

func (d *Dispatcher) key(e Event) bool {
	switch normalizeKey(e.Key) {
	case "escape":
		_, cancelled := d.gestures.Cancel()
		return cancelled
	case "alt+tab":
		return d.desk.CycleFocus(1)
	case "alt+shift+tab", "shift+alt+tab":
		return d.desk.CycleFocus(-1)
	default:
		return false
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), " ", ""))
}
