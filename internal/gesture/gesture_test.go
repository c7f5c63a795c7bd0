package gesture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/platform"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Edge
		wantErr bool
	}{
		{"n", EdgeNorth, false},
		{"se", EdgeSouth | EdgeEast, false},
		{"NW", EdgeNorth | EdgeWest, false},
		{"ew", 0, true},
		{"ns", 0, true},
		{"nn", 0, true},
		{"x", 0, true},
		{"", 0, true},
		{"nse", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDirection(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResizeRect(t *testing.T) {
	origin := platform.Rect{X: 70, Y: 40, Width: 400, Height: 300}

	tests := []struct {
		name   string
		edges  Edge
		dx, dy int
		want   platform.Rect
	}{
		{"east grows", EdgeEast, 50, 0, platform.Rect{X: 70, Y: 40, Width: 450, Height: 300}},
		{"south shrinks to minimum", EdgeSouth, 0, -500, platform.Rect{X: 70, Y: 40, Width: 400, Height: 150}},
		{"west anchors right edge", EdgeWest, -30, 0, platform.Rect{X: 40, Y: 40, Width: 430, Height: 300}},
		{"west clamps and keeps right edge", EdgeWest, 300, 0, platform.Rect{X: 270, Y: 40, Width: 200, Height: 300}},
		{"north anchors bottom edge", EdgeNorth, 0, 20, platform.Rect{X: 70, Y: 60, Width: 400, Height: 280}},
		{"south east", EdgeSouth | EdgeEast, 10, 20, platform.Rect{X: 70, Y: 40, Width: 410, Height: 320}},
		{"north west", EdgeNorth | EdgeWest, -10, -10, platform.Rect{X: 60, Y: 30, Width: 410, Height: 310}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeRect(origin, tt.edges, tt.dx, tt.dy, 200, 150)
			if got != tt.want {
				t.Fatalf("ResizeRect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResizeRectNeverBelowMinimum(t *testing.T) {
	origin := platform.Rect{X: 10, Y: 10, Width: 300, Height: 200}
	dirs := []string{"n", "s", "e", "w", "ne", "nw", "se", "sw"}
	rng := rand.New(rand.NewSource(7))
	for _, d := range dirs {
		edges, err := ParseDirection(d)
		if err != nil {
			t.Fatalf("parse %q: %v", d, err)
		}
		deltas := [][2]int{
			{math.MinInt, math.MinInt},
			{math.MinInt / 2, math.MinInt / 2},
			{math.MinInt / 2, math.MaxInt / 2},
			{math.MaxInt, math.MaxInt},
			{math.MaxInt / 2, math.MinInt},
		}
		for i := 0; i < 200; i++ {
			deltas = append(deltas, [2]int{rng.Intn(2000) - 1000, rng.Intn(2000) - 1000})
		}
		for _, delta := range deltas {
			dx, dy := delta[0], delta[1]
			r := ResizeRect(origin, edges, dx, dy, 200, 150)
			if r.Width < 200 || r.Height < 150 {
				t.Fatalf("%s (%d,%d) produced %v", d, dx, dy, r)
			}
			if edges.Has(EdgeWest) && r.Right() != origin.Right() {
				t.Fatalf("west resize moved the right edge: %v", r)
			}
			if edges.Has(EdgeNorth) && r.Bottom() != origin.Bottom() {
				t.Fatalf("north resize moved the bottom edge: %v", r)
			}
		}
	}
}

type fakeSurface struct {
	geom      map[string]platform.Rect
	maximized map[string]bool
	raised    []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		geom:      map[string]platform.Rect{"w": {X: 50, Y: 50, Width: 400, Height: 300}},
		maximized: map[string]bool{},
	}
}

func (f *fakeSurface) Geometry(id string) (platform.Rect, bool) {
	r, ok := f.geom[id]
	return r, ok
}

func (f *fakeSurface) IsMaximized(id string) bool { return f.maximized[id] }

func (f *fakeSurface) BringToFront(id string) bool {
	if _, ok := f.geom[id]; !ok {
		return false
	}
	f.raised = append(f.raised, id)
	return true
}

func (f *fakeSurface) SetGeometry(id string, r platform.Rect) bool {
	if _, ok := f.geom[id]; !ok || f.maximized[id] {
		return false
	}
	f.geom[id] = r.Clamped(200, 150)
	return true
}

func (f *fakeSurface) MinSize() (int, int) { return 200, 150 }

func TestDragSession(t *testing.T) {
	s := newFakeSurface()
	c := NewController(s, nil)

	var ended []Result
	c.OnSessionEnd = func(r Result) { ended = append(ended, r) }

	if !c.BeginDrag("w", 60, 55) {
		t.Fatalf("expected drag to start")
	}
	if len(s.raised) != 1 {
		t.Fatalf("expected pointer-down to raise the window")
	}
	sess, ok := c.Active()
	if !ok || sess.OffsetX != 10 || sess.OffsetY != 5 {
		t.Fatalf("unexpected session %+v", sess)
	}
	c.Move(80, 45)
	if got := s.geom["w"]; got != (platform.Rect{X: 70, Y: 40, Width: 400, Height: 300}) {
		t.Fatalf("unexpected geometry after drag %v", got)
	}
	// No viewport clamping.
	c.Move(-500, -500)
	if got := s.geom["w"]; got.X != -510 || got.Y != -505 {
		t.Fatalf("expected unclamped drag, got %v", got)
	}

	if _, ok := c.End(); !ok {
		t.Fatalf("expected a session to end")
	}
	if c.Move(0, 0) {
		t.Fatalf("move without a session should be ignored")
	}
	if len(ended) != 1 || ended[0].Session.Kind != KindDrag || ended[0].Cancelled {
		t.Fatalf("unexpected session end callbacks %+v", ended)
	}
}

func TestMaximizedWindowDoesNotStartSession(t *testing.T) {
	s := newFakeSurface()
	s.maximized["w"] = true
	c := NewController(s, nil)

	if c.BeginDrag("w", 10, 10) {
		t.Fatalf("expected drag on maximized window to be refused")
	}
	if c.BeginResize("w", EdgeEast, 10, 10) {
		t.Fatalf("expected resize on maximized window to be refused")
	}
	if len(s.raised) != 2 {
		t.Fatalf("expected maximized window to still be raised")
	}
	if _, ok := c.Active(); ok {
		t.Fatalf("expected no session")
	}
}

func TestUnknownWindowIgnored(t *testing.T) {
	c := NewController(newFakeSurface(), nil)
	if c.BeginDrag("ghost", 0, 0) || c.BeginResize("ghost", EdgeSouth, 0, 0) {
		t.Fatalf("expected unknown window to be ignored")
	}
	if c.BeginResize("w", 0, 0, 0) {
		t.Fatalf("expected empty edge set to be refused")
	}
}

func TestResizeSessionAndCancel(t *testing.T) {
	s := newFakeSurface()
	c := NewController(s, nil)

	c.BeginResize("w", EdgeWest, 50, 100)
	c.Move(20, 100)
	if got := s.geom["w"]; got != (platform.Rect{X: 20, Y: 50, Width: 430, Height: 300}) {
		t.Fatalf("unexpected geometry after west resize %v", got)
	}

	res, ok := c.Cancel()
	if !ok || !res.Cancelled {
		t.Fatalf("expected cancelled session, got %+v", res)
	}
	if got := s.geom["w"]; got != (platform.Rect{X: 50, Y: 50, Width: 400, Height: 300}) {
		t.Fatalf("expected origin geometry after cancel, got %v", got)
	}
	if res.Final != s.geom["w"] {
		t.Fatalf("result final %v does not match surface %v", res.Final, s.geom["w"])
	}
}

func TestExtremePointerPositionsSaturate(t *testing.T) {
	tests := []struct {
		name  string
		edges Edge
		x, y  int
		check func(r platform.Rect) bool
	}{
		{"east far right grows", EdgeEast, math.MaxInt, 100, func(r platform.Rect) bool { return r.Width > 400 }},
		{"south far down grows", EdgeSouth, 100, math.MaxInt, func(r platform.Rect) bool { return r.Height > 300 }},
		{"west far right clamps", EdgeWest, math.MaxInt, 100, func(r platform.Rect) bool { return r.Width == 200 && r.Right() == 450 }},
		{"north far up grows", EdgeNorth, 100, math.MinInt, func(r platform.Rect) bool { return r.Height > 300 && r.Bottom() == 350 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSurface()
			c := NewController(s, nil)
			if !c.BeginResize("w", tt.edges, 450, 350) {
				t.Fatalf("expected resize to start")
			}
			c.Move(tt.x, tt.y)
			if got := s.geom["w"]; !tt.check(got) || got.Width < 200 || got.Height < 150 {
				t.Fatalf("unexpected geometry %v", got)
			}
		})
	}

	t.Run("drag", func(t *testing.T) {
		s := newFakeSurface()
		c := NewController(s, nil)
		c.BeginDrag("w", 60, 55)
		c.Move(math.MinInt, math.MaxInt)
		if got := s.geom["w"]; got.X != math.MinInt || got.Y != math.MaxInt-5 {
			t.Fatalf("expected saturated drag position, got %v", got)
		}
	})
}

func TestNewGestureEndsPreviousSession(t *testing.T) {
	s := newFakeSurface()
	c := NewController(s, nil)
	count := 0
	c.OnSessionEnd = func(Result) { count++ }

	c.BeginDrag("w", 60, 60)
	c.BeginResize("w", EdgeSouth, 60, 350)
	if count != 1 {
		t.Fatalf("expected the first session to end, got %d callbacks", count)
	}
	sess, _ := c.Active()
	if sess.Kind != KindResize {
		t.Fatalf("expected resize session, got %v", sess.Kind)
	}
}

func TestScenarioWithDesktopManager(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewport = config.Size{Width: 1000, Height: 800}
	cfg.TaskbarHeight = 28
	cfg.Windows = []config.Window{{
		ID:            "welcome",
		Title:         "Welcome",
		Geometry:      platform.Rect{X: 50, Y: 50, Width: 400, Height: 300},
		Visible:       true,
		Controls:      config.AllControls,
		ResizeHandles: config.AllResizeHandles,
	}}
	cfg.Apps = map[string]config.App{"welcome": {Window: "welcome"}}

	m := desktop.New(cfg)
	c := NewController(m, nil)

	c.BeginDrag("welcome", 100, 60)
	c.Move(120, 50)
	c.End()
	if g, _ := m.Geometry("welcome"); g != (platform.Rect{X: 70, Y: 40, Width: 400, Height: 300}) {
		t.Fatalf("after drag: %v", g)
	}

	m.Maximize("welcome")
	if g, _ := m.Geometry("welcome"); g != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 772}) {
		t.Fatalf("after maximize: %v", g)
	}
	if c.BeginDrag("welcome", 10, 10) {
		t.Fatalf("drag on maximized window should not start")
	}

	m.Restore("welcome")
	if g, _ := m.Geometry("welcome"); g != (platform.Rect{X: 70, Y: 40, Width: 400, Height: 300}) {
		t.Fatalf("after restore: %v", g)
	}

	c.BeginResize("welcome", EdgeWest, 70, 100)
	c.Move(40, 100)
	c.End()
	if g, _ := m.Geometry("welcome"); g != (platform.Rect{X: 40, Y: 40, Width: 430, Height: 300}) {
		t.Fatalf("after west resize: %v", g)
	}
}
