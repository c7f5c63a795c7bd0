package desktop

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/platform"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Viewport = config.Size{Width: 1000, Height: 800}
	cfg.TaskbarHeight = 28
	win := func(id string, visible bool, geom platform.Rect) config.Window {
		return config.Window{
			ID:            id,
			Title:         "Title " + id,
			Icon:          id + ".png",
			Geometry:      geom,
			Visible:       visible,
			Controls:      config.AllControls,
			ResizeHandles: config.AllResizeHandles,
		}
	}
	cfg.Windows = []config.Window{
		win("a", true, platform.Rect{X: 50, Y: 50, Width: 400, Height: 300}),
		win("b", true, platform.Rect{X: 120, Y: 80, Width: 480, Height: 360}),
		win("c", false, platform.Rect{X: 200, Y: 140, Width: 420, Height: 320}),
	}
	cfg.Apps = map[string]config.App{
		"a":     {Window: "a", FirstOpen: config.FirstOpenNone},
		"b":     {Window: "b", FirstOpen: config.FirstOpenNone},
		"c":     {Window: "c", FirstOpen: config.FirstOpenNone},
		"big-c": {Window: "c", FirstOpen: config.FirstOpenMaximize},
		"mid-c": {Window: "c", FirstOpen: config.FirstOpenCenter},
	}
	return cfg
}

type recordingRenderer struct {
	calls [][]TaskbarEntry
}

func (r *recordingRenderer) RenderTaskbar(entries []TaskbarEntry) {
	r.calls = append(r.calls, entries)
}

func (r *recordingRenderer) last() []TaskbarEntry {
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

type recordingObserver struct {
	actions []Action
	ids     []string
}

func (o *recordingObserver) WindowChanged(action Action, w WindowView) {
	o.actions = append(o.actions, action)
	o.ids = append(o.ids, w.ID)
}

func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	st := m.State()
	active := 0
	visible := 0
	seenZ := map[int]string{}
	for _, w := range st.Windows {
		if w.Active {
			active++
			if !w.Visible {
				t.Fatalf("hidden window %q is active", w.ID)
			}
		}
		if w.Visible {
			visible++
		}
		if other, dup := seenZ[w.Z]; dup {
			t.Fatalf("windows %q and %q share z %d", other, w.ID, w.Z)
		}
		seenZ[w.Z] = w.ID
		if w.Geometry.Width < 200 || w.Geometry.Height < 150 {
			t.Fatalf("window %q below minimum size: %v", w.ID, w.Geometry)
		}
		if w.Maximized {
			if w.Geometry != st.Work {
				t.Fatalf("maximized window %q has geometry %v, want %v", w.ID, w.Geometry, st.Work)
			}
			if w.Snapshot == nil {
				t.Fatalf("maximized window %q has no snapshot", w.ID)
			}
		}
	}
	if active > 1 {
		t.Fatalf("%d active windows", active)
	}
	if visible > 0 && active != 1 {
		t.Fatalf("%d visible windows but %d active", visible, active)
	}
}

func taskbarIDs(entries []TaskbarEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.WindowID)
	}
	return ids
}

func TestNew_InitialState(t *testing.T) {
	r := &recordingRenderer{}
	m := New(testConfig(), WithRenderer(r))

	if got := m.Active(); got != "b" {
		t.Fatalf("expected topmost visible window b active, got %q", got)
	}
	for i, w := range m.Windows() {
		if w.Z != i+1 {
			t.Fatalf("window %q z = %d, want %d", w.ID, w.Z, i+1)
		}
	}
	if len(r.calls) != 1 {
		t.Fatalf("expected initial taskbar push, got %d", len(r.calls))
	}
	if got := taskbarIDs(r.last()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected initial taskbar %v", got)
	}
	checkInvariants(t, m)
}

func TestNew_DeclaredMaximizedWindowKeepsSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Windows[0].Maximized = true
	m := New(cfg)

	w, _ := m.Window("a")
	if !w.Maximized || w.Geometry != m.WorkArea() {
		t.Fatalf("expected a maximized to work area, got %+v", w)
	}
	if !m.Restore("a") {
		t.Fatalf("restore failed")
	}
	w, _ = m.Window("a")
	if w.Geometry != (platform.Rect{X: 50, Y: 50, Width: 400, Height: 300}) {
		t.Fatalf("expected declared geometry after restore, got %v", w.Geometry)
	}
}

func TestBringToFront(t *testing.T) {
	m := New(testConfig())

	if !m.BringToFront("a") {
		t.Fatalf("expected a to be raised")
	}
	a, _ := m.Window("a")
	if a.Z != 4 || !a.Active {
		t.Fatalf("unexpected a after raise: z=%d active=%v", a.Z, a.Active)
	}
	m.BringToFront("a")
	a, _ = m.Window("a")
	if a.Z != 5 {
		t.Fatalf("expected re-raise to consume a new z value, got %d", a.Z)
	}

	if m.BringToFront("nope") {
		t.Fatalf("expected unknown id to be ignored")
	}
	if m.BringToFront("c") {
		t.Fatalf("expected hidden window to be ignored")
	}
	if m.Active() != "a" {
		t.Fatalf("ignored calls changed the active window")
	}
	checkInvariants(t, m)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	m := New(testConfig())
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "ghost"}
	ops := []func(string){
		func(id string) { m.BringToFront(id) },
		func(id string) { m.Minimize(id) },
		func(id string) { m.Close(id) },
		func(id string) { m.Show(id) },
		func(id string) { m.ToggleMaximize(id) },
		func(id string) { m.Restore(id) },
		func(id string) { m.ClickTaskbar(id) },
		func(id string) { m.Open(id) },
		func(string) { m.CycleFocus(1) },
	}

	prevMax := 0
	for i := 0; i < 500; i++ {
		ops[rng.Intn(len(ops))](ids[rng.Intn(len(ids))])
		checkInvariants(t, m)
		maxZ := 0
		for _, w := range m.Windows() {
			maxZ = max(maxZ, w.Z)
		}
		if maxZ < prevMax {
			t.Fatalf("stacking counter went backwards: %d < %d", maxZ, prevMax)
		}
		prevMax = maxZ
		if got, want := taskbarIDs(m.Taskbar()), visibleIDs(m); !reflect.DeepEqual(got, want) {
			t.Fatalf("taskbar %v does not match visible windows %v", got, want)
		}
	}
}

func visibleIDs(m *Manager) []string {
	ids := []string{}
	for _, w := range m.Windows() {
		if w.Visible {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

func TestMaximizeRestoreRoundTrip(t *testing.T) {
	m := New(testConfig())
	m.SetGeometry("a", platform.Rect{X: 70, Y: 40, Width: 400, Height: 300})

	if !m.Maximize("a") {
		t.Fatalf("maximize failed")
	}
	a, _ := m.Window("a")
	if a.Geometry != (platform.Rect{X: 0, Y: 0, Width: 1000, Height: 772}) {
		t.Fatalf("unexpected maximized geometry %v", a.Geometry)
	}
	if m.Maximize("a") {
		t.Fatalf("second maximize should be ignored")
	}
	if m.SetGeometry("a", platform.Rect{X: 1, Y: 1, Width: 300, Height: 300}) {
		t.Fatalf("geometry changes on a maximized window should be ignored")
	}

	if !m.Restore("a") {
		t.Fatalf("restore failed")
	}
	a, _ = m.Window("a")
	if a.Geometry != (platform.Rect{X: 70, Y: 40, Width: 400, Height: 300}) || a.Maximized || a.Snapshot != nil {
		t.Fatalf("unexpected restored window %+v", a)
	}
}

func TestRestoreWithoutPriorMaximizeUsesDefault(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Manager)
	}{
		{"never maximized", func(*Manager) {}},
		{"after a completed round trip", func(m *Manager) {
			m.Maximize("a")
			m.Restore("a")
		}},
		{"after a drag", func(m *Manager) {
			m.SetGeometry("a", platform.Rect{X: 70, Y: 40, Width: 400, Height: 300})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			m := New(cfg)
			tt.setup(m)

			if !m.Restore("a") {
				t.Fatalf("expected restore to apply the default geometry")
			}
			a, _ := m.Window("a")
			if a.Geometry != cfg.RestoreDefault || a.Maximized || a.Snapshot != nil {
				t.Fatalf("expected %v normal without snapshot, got %+v", cfg.RestoreDefault, a)
			}
		})
	}

	if New(testConfig()).Restore("ghost") {
		t.Fatalf("expected unknown window to be ignored")
	}
}

func TestToggleMaximize(t *testing.T) {
	m := New(testConfig())
	if !m.ToggleMaximize("b") || !m.IsMaximized("b") {
		t.Fatalf("expected toggle to maximize")
	}
	if !m.ToggleMaximize("b") || m.IsMaximized("b") {
		t.Fatalf("expected toggle to restore")
	}
	if m.ToggleMaximize("ghost") {
		t.Fatalf("expected unknown window to be ignored")
	}
}

func TestMinimizeActivatesTopmostRemaining(t *testing.T) {
	r := &recordingRenderer{}
	m := New(testConfig(), WithRenderer(r))
	m.Show("c")
	m.BringToFront("a") // stacking: b(2) < c(4) < a(5)

	before, _ := m.Window("c")
	if !m.Minimize("a") {
		t.Fatalf("minimize failed")
	}
	if got := m.Active(); got != "c" {
		t.Fatalf("expected c to become active, got %q", got)
	}
	after, _ := m.Window("c")
	if after.Z != before.Z {
		t.Fatalf("activation should not consume a stacking value")
	}
	if got := taskbarIDs(r.last()); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Fatalf("unexpected taskbar %v", got)
	}
	if m.Minimize("a") {
		t.Fatalf("minimizing a hidden window should be ignored")
	}
	checkInvariants(t, m)
}

func TestCloseLastWindowLeavesNoneActive(t *testing.T) {
	m := New(testConfig())
	m.Close("a")
	m.Close("b")
	if got := m.Active(); got != "" {
		t.Fatalf("expected no active window, got %q", got)
	}
	if len(m.Taskbar()) != 0 {
		t.Fatalf("expected empty taskbar")
	}
	if m.CycleFocus(1) {
		t.Fatalf("cycle with no visible windows should be ignored")
	}
}

func TestShowKeepsMaximizedState(t *testing.T) {
	m := New(testConfig())
	m.Maximize("a")
	m.Minimize("a")
	if !m.Show("a") {
		t.Fatalf("show failed")
	}
	a, _ := m.Window("a")
	if !a.Visible || !a.Maximized || !a.Active {
		t.Fatalf("unexpected window after show: %+v", a)
	}
}

func TestClickTaskbar(t *testing.T) {
	m := New(testConfig())

	// active -> minimize
	if !m.ClickTaskbar("b") {
		t.Fatalf("click failed")
	}
	if b, _ := m.Window("b"); b.Visible {
		t.Fatalf("expected active window to be minimized")
	}
	// hidden -> show
	m.ClickTaskbar("b")
	if m.Active() != "b" {
		t.Fatalf("expected hidden window to be shown and active")
	}
	// visible, not active -> raise
	m.ClickTaskbar("a")
	if m.Active() != "a" {
		t.Fatalf("expected background window to be raised")
	}
	if m.ClickTaskbar("ghost") {
		t.Fatalf("expected unknown window to be ignored")
	}
}

func TestRebuildListsVisibleInCreationOrder(t *testing.T) {
	r := &recordingRenderer{}
	m := New(testConfig(), WithRenderer(r))
	m.Show("c")
	m.BringToFront("a")

	entries := m.Rebuild()
	want := []TaskbarEntry{
		{WindowID: "a", Label: "Title a", Icon: "a.png", Active: true},
		{WindowID: "b", Label: "Title b", Icon: "b.png"},
		{WindowID: "c", Label: "Title c", Icon: "c.png"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries = %+v, want %+v", entries, want)
	}
	if !reflect.DeepEqual(r.last(), want) {
		t.Fatalf("renderer got %+v", r.last())
	}
}

func TestAddRendererReceivesCurrentTaskbar(t *testing.T) {
	m := New(testConfig())
	var got []TaskbarEntry
	m.AddRenderer(RendererFunc(func(entries []TaskbarEntry) { got = entries }))
	if !reflect.DeepEqual(taskbarIDs(got), []string{"a", "b"}) {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestOpen(t *testing.T) {
	m := New(testConfig())

	if m.Open("missing") {
		t.Fatalf("expected unknown app to be ignored")
	}
	if !m.Open("c") {
		t.Fatalf("open failed")
	}
	c, _ := m.Window("c")
	if !c.Visible || !c.Active || !c.Opened {
		t.Fatalf("unexpected window after open: %+v", c)
	}
	if got := taskbarIDs(m.Taskbar()); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected taskbar %v", got)
	}
}

func TestOpenFirstOpenPolicies(t *testing.T) {
	t.Run("maximize applies once", func(t *testing.T) {
		m := New(testConfig())
		m.Open("big-c")
		if !m.IsMaximized("c") {
			t.Fatalf("expected first open to maximize")
		}
		m.Restore("c")
		m.Close("c")
		m.Open("big-c")
		if m.IsMaximized("c") {
			t.Fatalf("expected policy to apply only on first open")
		}
	})

	t.Run("center", func(t *testing.T) {
		m := New(testConfig())
		m.Open("mid-c")
		c, _ := m.Window("c")
		want := platform.Rect{X: 290, Y: 226, Width: 420, Height: 320}
		if c.Geometry != want {
			t.Fatalf("expected centered geometry %v, got %v", want, c.Geometry)
		}
	})
}

func TestScenario_MinimizeThenLaunch(t *testing.T) {
	m := New(testConfig())
	m.Minimize("a")
	if got := taskbarIDs(m.Taskbar()); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected a removed from taskbar, got %v", got)
	}
	m.Open("a")
	if got := taskbarIDs(m.Taskbar()); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("expected a back on the taskbar, got %v", got)
	}
	if m.Active() != "a" {
		t.Fatalf("expected launched window active")
	}
}

func TestCycleFocus(t *testing.T) {
	m := New(testConfig())
	m.Show("c")

	m.CycleFocus(1) // c -> a
	if m.Active() != "a" {
		t.Fatalf("expected wrap to a, got %q", m.Active())
	}
	m.CycleFocus(-1) // a -> c
	if m.Active() != "c" {
		t.Fatalf("expected reverse wrap to c, got %q", m.Active())
	}
}

func TestSetGeometryClampsToMinimum(t *testing.T) {
	m := New(testConfig())
	if !m.SetGeometry("a", platform.Rect{X: 5, Y: 6, Width: 10, Height: 10}) {
		t.Fatalf("set geometry failed")
	}
	g, _ := m.Geometry("a")
	if g != (platform.Rect{X: 5, Y: 6, Width: 200, Height: 150}) {
		t.Fatalf("unexpected geometry %v", g)
	}
	if m.SetGeometry("ghost", g) {
		t.Fatalf("expected unknown window to be ignored")
	}
}

func TestApply(t *testing.T) {
	m := New(testConfig())
	applied, err := m.Apply("Maximize", "a")
	if err != nil || !applied {
		t.Fatalf("Apply maximize = %v, %v", applied, err)
	}
	applied, err = m.Apply("close", "ghost")
	if err != nil || applied {
		t.Fatalf("Apply on unknown window = %v, %v", applied, err)
	}
	if _, err := m.Apply("explode", "a"); err == nil {
		t.Fatalf("expected unknown action error")
	}
}

func TestSetAppsDropsUnknownWindows(t *testing.T) {
	m := New(testConfig())
	n := m.SetApps(map[string]config.App{
		"only-a": {Window: "a"},
		"ghost":  {Window: "ghost"},
	})
	if n != 1 {
		t.Fatalf("expected 1 app kept, got %d", n)
	}
	apps := m.Apps()
	if len(apps) != 1 || apps[0].ID != "only-a" {
		t.Fatalf("unexpected apps %+v", apps)
	}
	if m.Open("b") {
		t.Fatalf("expected removed app to be unknown")
	}
}

func TestObserverSeesTransitions(t *testing.T) {
	o := &recordingObserver{}
	m := New(testConfig(), WithObserver(o))
	m.Maximize("a")
	m.Minimize("a")
	m.Open("a")

	want := []Action{ActionMaximize, ActionMinimize, ActionShow, ActionFocus, ActionOpen}
	if !reflect.DeepEqual(o.actions, want) {
		t.Fatalf("actions = %v, want %v", o.actions, want)
	}
}
