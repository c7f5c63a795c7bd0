package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawRect struct {
	X      *int `yaml:"x"`
	Y      *int `yaml:"y"`
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawWindow struct {
	ID            string    `yaml:"id"`
	Title         *string   `yaml:"title"`
	Icon          *string   `yaml:"icon"`
	Geometry      *RawRect  `yaml:"geometry"`
	Visible       *bool     `yaml:"visible"`
	Maximized     *bool     `yaml:"maximized"`
	Controls      *[]string `yaml:"controls"`
	ResizeHandles *[]string `yaml:"resize_handles"`
}

type RawApp struct {
	Window    *string          `yaml:"window"`
	FirstOpen *FirstOpenPolicy `yaml:"first_open"`
}

type RawHTTPConfig struct {
	Address *string `yaml:"address"`
}

type RawJournalConfig struct {
	Enabled *bool   `yaml:"enabled"`
	Path    *string `yaml:"path"`
}

type RawConfig struct {
	Include        IncludeList       `yaml:"include"`
	Viewport       *RawSize          `yaml:"viewport"`
	DetectViewport *bool             `yaml:"detect_viewport"`
	Display        *string           `yaml:"display"`
	TaskbarHeight  *int              `yaml:"taskbar_height"`
	MinWindow      *RawSize          `yaml:"min_window"`
	RestoreDefault *RawRect          `yaml:"restore_default"`
	Windows        []RawWindow       `yaml:"windows"`
	Apps           map[string]RawApp `yaml:"apps"`
	HTTP           *RawHTTPConfig    `yaml:"http"`
	Journal        *RawJournalConfig `yaml:"journal"`
	LogLevel       *string           `yaml:"log_level"`
}

// merge overlays another raw config on top of c. Windows are merged by id,
// keeping first-declaration order; apps are merged by key.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Viewport != nil {
		out.Viewport = mergeRawSize(out.Viewport, overlay.Viewport)
	}
	if overlay.DetectViewport != nil {
		out.DetectViewport = overlay.DetectViewport
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.TaskbarHeight != nil {
		out.TaskbarHeight = overlay.TaskbarHeight
	}
	if overlay.MinWindow != nil {
		out.MinWindow = mergeRawSize(out.MinWindow, overlay.MinWindow)
	}
	if overlay.RestoreDefault != nil {
		out.RestoreDefault = mergeRawRect(out.RestoreDefault, overlay.RestoreDefault)
	}
	if overlay.Windows != nil {
		out.Windows = mergeRawWindows(out.Windows, overlay.Windows)
	}
	if overlay.Apps != nil {
		apps := make(map[string]RawApp, len(out.Apps)+len(overlay.Apps))
		for name, app := range out.Apps {
			apps[name] = app
		}
		for name, app := range overlay.Apps {
			apps[name] = mergeRawApp(apps[name], app)
		}
		out.Apps = apps
	}
	if overlay.HTTP != nil {
		if out.HTTP == nil {
			out.HTTP = &RawHTTPConfig{}
		}
		if overlay.HTTP.Address != nil {
			out.HTTP.Address = overlay.HTTP.Address
		}
	}
	if overlay.Journal != nil {
		if out.Journal == nil {
			out.Journal = &RawJournalConfig{}
		}
		if overlay.Journal.Enabled != nil {
			out.Journal.Enabled = overlay.Journal.Enabled
		}
		if overlay.Journal.Path != nil {
			out.Journal.Path = overlay.Journal.Path
		}
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	return out
}

func mergeRawSize(base *RawSize, overlay *RawSize) *RawSize {
	out := RawSize{}
	if base != nil {
		out = *base
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}

func mergeRawRect(base *RawRect, overlay *RawRect) *RawRect {
	out := RawRect{}
	if base != nil {
		out = *base
	}
	if overlay.X != nil {
		out.X = overlay.X
	}
	if overlay.Y != nil {
		out.Y = overlay.Y
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}

func mergeRawApp(base RawApp, overlay RawApp) RawApp {
	out := base
	if overlay.Window != nil {
		out.Window = overlay.Window
	}
	if overlay.FirstOpen != nil {
		out.FirstOpen = overlay.FirstOpen
	}
	return out
}

func mergeRawWindows(base []RawWindow, overlay []RawWindow) []RawWindow {
	out := make([]RawWindow, len(base), len(base)+len(overlay))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, w := range out {
		index[w.ID] = i
	}
	for _, w := range overlay {
		i, ok := index[w.ID]
		if !ok {
			index[w.ID] = len(out)
			out = append(out, w)
			continue
		}
		merged := out[i]
		if w.Title != nil {
			merged.Title = w.Title
		}
		if w.Icon != nil {
			merged.Icon = w.Icon
		}
		if w.Geometry != nil {
			merged.Geometry = mergeRawRect(merged.Geometry, w.Geometry)
		}
		if w.Visible != nil {
			merged.Visible = w.Visible
		}
		if w.Maximized != nil {
			merged.Maximized = w.Maximized
		}
		if w.Controls != nil {
			merged.Controls = w.Controls
		}
		if w.ResizeHandles != nil {
			merged.ResizeHandles = w.ResizeHandles
		}
		out[i] = merged
	}
	return out
}
