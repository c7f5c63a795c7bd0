package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nosyt/nosytos/internal/platform"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw overrides on top of DefaultConfig.
//
// A raw `windows:` list replaces the built-in desktop entirely; the same holds
// for `apps:`. Within a declared window, unset fields fall back to the title =
// id, restore_default geometry, and every control and resize handle.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Viewport != nil {
		cfg.Viewport.Width = derefInt(raw.Viewport.Width, cfg.Viewport.Width)
		cfg.Viewport.Height = derefInt(raw.Viewport.Height, cfg.Viewport.Height)
	}
	if raw.DetectViewport != nil {
		cfg.DetectViewport = *raw.DetectViewport
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.TaskbarHeight != nil {
		cfg.TaskbarHeight = *raw.TaskbarHeight
	}
	if raw.MinWindow != nil {
		cfg.MinWindow.Width = derefInt(raw.MinWindow.Width, cfg.MinWindow.Width)
		cfg.MinWindow.Height = derefInt(raw.MinWindow.Height, cfg.MinWindow.Height)
	}
	if raw.RestoreDefault != nil {
		cfg.RestoreDefault = applyRawRect(cfg.RestoreDefault, raw.RestoreDefault)
	}
	if raw.HTTP != nil && raw.HTTP.Address != nil {
		cfg.HTTP.Address = *raw.HTTP.Address
	}
	if raw.Journal != nil {
		if raw.Journal.Enabled != nil {
			cfg.Journal.Enabled = *raw.Journal.Enabled
		}
		if raw.Journal.Path != nil {
			cfg.Journal.Path = *raw.Journal.Path
		}
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if raw.Windows != nil {
		windows := make([]Window, 0, len(raw.Windows))
		for _, rw := range raw.Windows {
			w, err := buildWindow(rw, cfg.RestoreDefault)
			if err != nil {
				return nil, err
			}
			windows = append(windows, w)
		}
		cfg.Windows = windows
		if raw.Apps == nil {
			// Without an apps section every declared window is launchable
			// under its own id.
			apps := make(map[string]App, len(windows))
			for _, w := range windows {
				apps[w.ID] = App{Window: w.ID, FirstOpen: FirstOpenNone}
			}
			cfg.Apps = apps
		}
	}

	if raw.Apps != nil {
		apps := make(map[string]App, len(raw.Apps))
		for _, name := range sortedKeys(raw.Apps) {
			ra := raw.Apps[name]
			app := App{Window: name, FirstOpen: FirstOpenNone}
			if ra.Window != nil {
				app.Window = *ra.Window
			}
			if ra.FirstOpen != nil {
				app.FirstOpen = *ra.FirstOpen
			}
			apps[name] = app
		}
		cfg.Apps = apps
	}

	return cfg, nil
}

func buildWindow(rw RawWindow, fallback platform.Rect) (Window, error) {
	id := strings.TrimSpace(rw.ID)
	if id == "" {
		return Window{}, &ValidationError{Path: "windows", Err: fmt.Errorf("window id is required")}
	}
	w := Window{
		ID:            id,
		Title:         id,
		Geometry:      fallback,
		Controls:      append([]string(nil), AllControls...),
		ResizeHandles: append([]string(nil), AllResizeHandles...),
	}
	if rw.Title != nil {
		w.Title = *rw.Title
	}
	if rw.Icon != nil {
		w.Icon = *rw.Icon
	}
	if rw.Geometry != nil {
		w.Geometry = applyRawRect(w.Geometry, rw.Geometry)
	}
	if rw.Visible != nil {
		w.Visible = *rw.Visible
	}
	if rw.Maximized != nil {
		w.Maximized = *rw.Maximized
	}
	if rw.Controls != nil {
		w.Controls = normalizeList(*rw.Controls)
	}
	if rw.ResizeHandles != nil {
		w.ResizeHandles = normalizeList(*rw.ResizeHandles)
	}
	return w, nil
}

func applyRawRect(base platform.Rect, raw *RawRect) platform.Rect {
	return platform.Rect{
		X:      derefInt(raw.X, base.X),
		Y:      derefInt(raw.Y, base.Y),
		Width:  derefInt(raw.Width, base.Width),
		Height: derefInt(raw.Height, base.Height),
	}
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
