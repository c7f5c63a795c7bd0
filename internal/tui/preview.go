package tui

import (
	"slices"
	"strings"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/platform"
)

// renderPreview draws the visible windows of the desktop onto a width×height
// character canvas, lowest stacking value first so raised windows occlude
// the ones beneath them.
func renderPreview(windows []desktop.WindowView, work platform.Rect, width, height int) []string {
	if width < 5 || height < 3 || work.Width <= 0 || work.Height <= 0 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	visible := make([]desktop.WindowView, 0, len(windows))
	for _, w := range windows {
		if w.Visible {
			visible = append(visible, w)
		}
	}
	slices.SortFunc(visible, func(a, b desktop.WindowView) int { return a.Z - b.Z })

	for _, w := range visible {
		drawWindow(canvas, w, work, width, height)
	}
	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawWindow(canvas [][]rune, w desktop.WindowView, work platform.Rect, canvasW, canvasH int) {
	r := w.Geometry
	x1 := (r.X - work.X) * canvasW / work.Width
	y1 := (r.Y - work.Y) * canvasH / work.Height
	x2 := (r.Right() - work.X) * canvasW / work.Width
	y2 := (r.Bottom() - work.Y) * canvasH / work.Height

	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)
	if x2-x1 < 2 || y2-y1 < 1 {
		return
	}

	horiz, vert := '─', '│'
	corners := [4]rune{'┌', '┐', '└', '┘'}
	if w.Active {
		horiz, vert = '━', '┃'
		corners = [4]rune{'┏', '┓', '┗', '┛'}
	}

	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			switch {
			case y == y1 || y == y2:
				canvas[y][x] = horiz
			case x == x1 || x == x2:
				canvas[y][x] = vert
			default:
				canvas[y][x] = ' '
			}
		}
	}
	canvas[y1][x1] = corners[0]
	canvas[y1][x2] = corners[1]
	canvas[y2][x1] = corners[2]
	canvas[y2][x2] = corners[3]

	label := []rune(w.Title)
	if w.Maximized {
		label = append([]rune("▣ "), label...)
	}
	for i, ch := range label {
		x := x1 + 1 + i
		if x >= x2 {
			break
		}
		canvas[y1][x] = ch
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 || height < 0 {
		return nil
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
