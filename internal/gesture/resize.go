// Package gesture implements pointer-driven drag and resize sessions on
// desktop windows.
package gesture

import (
	"fmt"
	"math"
	"strings"

	"github.com/nosyt/nosytos/internal/platform"
)

// Edge is a set of window edges moved by a resize handle.
type Edge uint8

const (
	EdgeNorth Edge = 1 << iota
	EdgeSouth
	EdgeEast
	EdgeWest
)

// ParseDirection converts a handle direction such as "se" or "w" into an
// edge set.
func ParseDirection(direction string) (Edge, error) {
	d := strings.ToLower(strings.TrimSpace(direction))
	if d == "" || len(d) > 2 {
		return 0, fmt.Errorf("invalid resize direction %q", direction)
	}
	var edges Edge
	for _, r := range d {
		var e Edge
		switch r {
		case 'n':
			e = EdgeNorth
		case 's':
			e = EdgeSouth
		case 'e':
			e = EdgeEast
		case 'w':
			e = EdgeWest
		default:
			return 0, fmt.Errorf("invalid resize direction %q", direction)
		}
		if edges&e != 0 {
			return 0, fmt.Errorf("invalid resize direction %q", direction)
		}
		edges |= e
	}
	if edges.Has(EdgeNorth|EdgeSouth) || edges.Has(EdgeEast|EdgeWest) {
		return 0, fmt.Errorf("invalid resize direction %q", direction)
	}
	return edges, nil
}

// Has reports whether every edge in other is part of e.
func (e Edge) Has(other Edge) bool {
	return e&other == other
}

func (e Edge) String() string {
	var b strings.Builder
	if e.Has(EdgeNorth) {
		b.WriteByte('n')
	}
	if e.Has(EdgeSouth) {
		b.WriteByte('s')
	}
	if e.Has(EdgeEast) {
		b.WriteByte('e')
	}
	if e.Has(EdgeWest) {
		b.WriteByte('w')
	}
	return b.String()
}

// ResizeRect applies a pointer delta to origin for the given edges. Each edge
// is handled independently; west and north keep the opposite edge anchored.
// The result is never smaller than minWidth x minHeight, however large the
// delta.
func ResizeRect(origin platform.Rect, edges Edge, dx, dy, minWidth, minHeight int) platform.Rect {
	r := origin
	if edges.Has(EdgeEast) {
		r.Width = max(minWidth, addSat(origin.Width, dx))
	}
	if edges.Has(EdgeSouth) {
		r.Height = max(minHeight, addSat(origin.Height, dy))
	}
	if edges.Has(EdgeWest) {
		r.Width = max(minWidth, subSat(origin.Width, dx))
		r.X = addSat(origin.X, origin.Width-r.Width)
	}
	if edges.Has(EdgeNorth) {
		r.Height = max(minHeight, subSat(origin.Height, dy))
		r.Y = addSat(origin.Y, origin.Height-r.Height)
	}
	return r
}

// addSat and subSat clamp at the int range instead of wrapping.
func addSat(a, b int) int {
	s := a + b
	switch {
	case b > 0 && s < a:
		return math.MaxInt
	case b < 0 && s > a:
		return math.MinInt
	}
	return s
}

func subSat(a, b int) int {
	s := a - b
	switch {
	case b < 0 && s < a:
		return math.MaxInt
	case b > 0 && s > a:
		return math.MinInt
	}
	return s
}
