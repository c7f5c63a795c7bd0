package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at a YAML-like path together with the
// file position that last set it.
//
// Supported paths include:
//
//	viewport.width
//	taskbar_height
//	min_window.height
//	restore_default.x
//	windows.<id>.geometry.width
//	windows.<id>.visible
//	apps.<name>.first_open
//	http.address
//	journal.enabled
//	log_level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	unknown := fmt.Errorf("unknown config path %q", path)

	switch parts[0] {
	case "viewport":
		return sizeField(cfg.Viewport, parts[1:], unknown)
	case "min_window":
		return sizeField(cfg.MinWindow, parts[1:], unknown)
	case "restore_default":
		if len(parts) == 1 {
			return cfg.RestoreDefault, nil
		}
		return rectField(cfg.RestoreDefault.X, cfg.RestoreDefault.Y, cfg.RestoreDefault.Width, cfg.RestoreDefault.Height, parts[1:], unknown)
	case "detect_viewport":
		return single(parts, cfg.DetectViewport, unknown)
	case "display":
		return single(parts, cfg.Display, unknown)
	case "taskbar_height":
		return single(parts, cfg.TaskbarHeight, unknown)
	case "log_level":
		return single(parts, cfg.LogLevel, unknown)
	case "http":
		if len(parts) == 2 && parts[1] == "address" {
			return cfg.HTTP.Address, nil
		}
	case "journal":
		if len(parts) == 2 {
			switch parts[1] {
			case "enabled":
				return cfg.Journal.Enabled, nil
			case "path":
				return cfg.Journal.Path, nil
			}
		}
	case "windows":
		if len(parts) < 2 {
			return cfg.Windows, nil
		}
		w, ok := cfg.GetWindow(parts[1])
		if !ok {
			return nil, fmt.Errorf("unknown window %q", parts[1])
		}
		return windowField(w, parts[2:], unknown)
	case "apps":
		if len(parts) < 2 {
			return cfg.Apps, nil
		}
		app, ok := cfg.Apps[parts[1]]
		if !ok {
			return nil, fmt.Errorf("unknown app %q", parts[1])
		}
		if len(parts) == 2 {
			return app, nil
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "window":
				return app.Window, nil
			case "first_open":
				return string(app.FirstOpen), nil
			}
		}
	}
	return nil, unknown
}

func single(parts []string, v any, unknown error) (any, error) {
	if len(parts) != 1 {
		return nil, unknown
	}
	return v, nil
}

func sizeField(s Size, rest []string, unknown error) (any, error) {
	if len(rest) == 0 {
		return s, nil
	}
	if len(rest) == 1 {
		switch rest[0] {
		case "width":
			return s.Width, nil
		case "height":
			return s.Height, nil
		}
	}
	return nil, unknown
}

func rectField(x, y, w, h int, rest []string, unknown error) (any, error) {
	if len(rest) != 1 {
		return nil, unknown
	}
	switch rest[0] {
	case "x":
		return x, nil
	case "y":
		return y, nil
	case "width":
		return w, nil
	case "height":
		return h, nil
	}
	return nil, unknown
}

func windowField(w *Window, rest []string, unknown error) (any, error) {
	if len(rest) == 0 {
		return *w, nil
	}
	switch rest[0] {
	case "title":
		return single(rest, w.Title, unknown)
	case "icon":
		return single(rest, w.Icon, unknown)
	case "visible":
		return single(rest, w.Visible, unknown)
	case "maximized":
		return single(rest, w.Maximized, unknown)
	case "controls":
		return single(rest, w.Controls, unknown)
	case "resize_handles":
		return single(rest, w.ResizeHandles, unknown)
	case "geometry":
		if len(rest) == 1 {
			return w.Geometry, nil
		}
		g := w.Geometry
		return rectField(g.X, g.Y, g.Width, g.Height, rest[1:], unknown)
	}
	return nil, unknown
}
