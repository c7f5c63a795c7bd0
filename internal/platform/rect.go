package platform

import "fmt"

// Rect describes a rectangular region in viewport pixels.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Right returns the x coordinate just past the right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate just past the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Moved returns a copy of r with its top-left corner at (x, y).
func (r Rect) Moved(x, y int) Rect {
	r.X = x
	r.Y = y
	return r
}

// Centered returns a copy of r centered inside bounds. Rects larger than
// bounds are pinned to the bounds origin on that axis.
func (r Rect) Centered(bounds Rect) Rect {
	r.X = bounds.X + max(0, (bounds.Width-r.Width)/2)
	r.Y = bounds.Y + max(0, (bounds.Height-r.Height)/2)
	return r
}

// Clamped returns a copy of r whose size is at least minWidth x minHeight.
// The origin is left untouched.
func (r Rect) Clamped(minWidth, minHeight int) Rect {
	r.Width = max(r.Width, minWidth)
	r.Height = max(r.Height, minHeight)
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}
