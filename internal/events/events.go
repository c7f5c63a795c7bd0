// Package events routes raw pointer and keyboard input to the desktop through
// a table keyed by event kind and element role.
package events

import (
	"fmt"
	"strings"
)

// Kind is the input event type.
type Kind string

const (
	PointerDown Kind = "pointerdown"
	PointerMove Kind = "pointermove"
	PointerUp   Kind = "pointerup"
	LostCapture Kind = "lostcapture"
	Click       Kind = "click"
	DblClick    Kind = "dblclick"
	KeyDown     Kind = "keydown"
	KeyUp       Kind = "keyup"
)

// Role is the part of the shell an event targets.
type Role string

const (
	RoleHeader        Role = "header"
	RoleBody          Role = "body"
	RoleMinimize      Role = "minimize"
	RoleMaximize      Role = "maximize"
	RoleClose         Role = "close"
	RoleResizeHandle  Role = "resize-handle"
	RoleTaskbarEntry  Role = "taskbar-entry"
	RoleDesktopIcon   Role = "desktop-icon"
	RoleStartMenuItem Role = "start-menu-item"
	// RoleAny matches document-level events.
	RoleAny Role = "any"
)

// Event is one input event forwarded by the front end.
type Event struct {
	Kind      Kind   `json:"kind"`
	Role      Role   `json:"role,omitempty"`
	WindowID  string `json:"window_id,omitempty"`
	AppID     string `json:"app_id,omitempty"`
	Direction string `json:"direction,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         int    `json:"y,omitempty"`
	Key       string `json:"key,omitempty"`
}

func (e Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s", e.Kind, e.Role)
	if e.WindowID != "" {
		fmt.Fprintf(&b, " window=%s", e.WindowID)
	}
	if e.AppID != "" {
		fmt.Fprintf(&b, " app=%s", e.AppID)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " key=%s", e.Key)
	}
	return b.String()
}

// MaxCoordinate bounds pointer coordinates in either direction.
const MaxCoordinate = 1 << 24

// Validate checks that the event carries a known kind and pointer
// coordinates within ±MaxCoordinate.
func (e Event) Validate() error {
	if e.X < -MaxCoordinate || e.X > MaxCoordinate || e.Y < -MaxCoordinate || e.Y > MaxCoordinate {
		return fmt.Errorf("pointer position (%d,%d) out of range", e.X, e.Y)
	}
	switch e.Kind {
	case PointerDown, PointerMove, PointerUp, LostCapture, Click, DblClick, KeyDown, KeyUp:
		return nil
	case "":
		return fmt.Errorf("event kind is required")
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
}
