package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/nosyt/nosytos/internal/platform"
)

// Size is a width/height pair in viewport pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Window control affordances.
const (
	ControlMinimize = "minimize"
	ControlMaximize = "maximize"
	ControlClose    = "close"
)

// AllControls lists every window control in display order.
var AllControls = []string{ControlMinimize, ControlMaximize, ControlClose}

// AllResizeHandles lists every resize handle direction.
var AllResizeHandles = []string{"n", "s", "e", "w", "ne", "nw", "se", "sw"}

// Window declares one panel of the desktop. Windows are created once at
// start-up from this list and never destroyed.
type Window struct {
	ID            string        `yaml:"id"`
	Title         string        `yaml:"title"`
	Icon          string        `yaml:"icon,omitempty"`
	Geometry      platform.Rect `yaml:"geometry"`
	Visible       bool          `yaml:"visible"`
	Maximized     bool          `yaml:"maximized"`
	Controls      []string      `yaml:"controls"`
	ResizeHandles []string      `yaml:"resize_handles"`
}

// FirstOpenPolicy is applied the first time an app's window is launched.
type FirstOpenPolicy string

const (
	FirstOpenNone     FirstOpenPolicy = "none"
	FirstOpenMaximize FirstOpenPolicy = "maximize"
	FirstOpenCenter   FirstOpenPolicy = "center"
)

// App maps a launcher identifier (desktop icon, start-menu entry) to a window.
type App struct {
	Window    string          `yaml:"window"`
	FirstOpen FirstOpenPolicy `yaml:"first_open,omitempty"`
}

// HTTPConfig configures the browser-facing API.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// JournalConfig configures the action journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Config is the effective nosytos configuration.
type Config struct {
	Viewport       Size           `yaml:"viewport"`
	DetectViewport bool           `yaml:"detect_viewport"`
	Display        string         `yaml:"display,omitempty"`
	TaskbarHeight  int            `yaml:"taskbar_height"`
	MinWindow      Size           `yaml:"min_window"`
	RestoreDefault platform.Rect  `yaml:"restore_default"`
	Windows        []Window       `yaml:"windows"`
	Apps           map[string]App `yaml:"apps"`
	HTTP           HTTPConfig     `yaml:"http"`
	Journal        JournalConfig  `yaml:"journal"`
	LogLevel       string         `yaml:"log_level"`
}

const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultTaskbarHeight  = 28
	DefaultMinWidth       = 200
	DefaultMinHeight      = 150
	DefaultHTTPAddress    = "127.0.0.1:8095"
)

// DefaultConfig returns the built-in NosytOS95 desktop.
func DefaultConfig() *Config {
	return &Config{
		Viewport:       Size{Width: DefaultViewportWidth, Height: DefaultViewportHeight},
		TaskbarHeight:  DefaultTaskbarHeight,
		MinWindow:      Size{Width: DefaultMinWidth, Height: DefaultMinHeight},
		RestoreDefault: platform.Rect{X: 100, Y: 100, Width: 640, Height: 480},
		Windows:        defaultWindows(),
		Apps:           defaultApps(),
		HTTP:           HTTPConfig{Address: DefaultHTTPAddress},
		Journal:        JournalConfig{Enabled: false, Path: defaultJournalPath()},
		LogLevel:       "info",
	}
}

func defaultWindows() []Window {
	win := func(id, title, icon string, geom platform.Rect) Window {
		return Window{
			ID:            id,
			Title:         title,
			Icon:          icon,
			Geometry:      geom,
			Controls:      append([]string(nil), AllControls...),
			ResizeHandles: append([]string(nil), AllResizeHandles...),
		}
	}
	welcome := win("welcome", "Welcome to NosytOS95", "icons/computer.png", platform.Rect{X: 50, Y: 50, Width: 400, Height: 300})
	welcome.Visible = true
	return []Window{
		welcome,
		win("about", "About Nosyt", "icons/user.png", platform.Rect{X: 120, Y: 80, Width: 480, Height: 360}),
		win("projects", "My Projects", "icons/folder.png", platform.Rect{X: 160, Y: 110, Width: 560, Height: 420}),
		win("contact", "Contact", "icons/mail.png", platform.Rect{X: 200, Y: 140, Width: 420, Height: 320}),
		win("notepad", "Notepad", "icons/notepad.png", platform.Rect{X: 240, Y: 170, Width: 480, Height: 360}),
		win("duckhunt", "Duck Hunt", "icons/duck.png", platform.Rect{X: 140, Y: 60, Width: 640, Height: 480}),
		win("doom", "DOOM", "icons/doom.png", platform.Rect{X: 100, Y: 40, Width: 640, Height: 400}),
	}
}

func defaultApps() map[string]App {
	return map[string]App{
		"welcome":  {Window: "welcome", FirstOpen: FirstOpenNone},
		"about":    {Window: "about", FirstOpen: FirstOpenNone},
		"projects": {Window: "projects", FirstOpen: FirstOpenNone},
		"contact":  {Window: "contact", FirstOpen: FirstOpenNone},
		"notepad":  {Window: "notepad", FirstOpen: FirstOpenNone},
		"duckhunt": {Window: "duckhunt", FirstOpen: FirstOpenCenter},
		"doom":     {Window: "doom", FirstOpen: FirstOpenMaximize},
	}
}

func defaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "nosytos-journal.db"
	}
	return filepath.Join(home, ".local", "share", "nosytos", "journal.db")
}

// WorkArea is the rectangle a maximized window occupies: the viewport minus
// the reserved taskbar strip.
func (c *Config) WorkArea() platform.Rect {
	return platform.Rect{
		X:      0,
		Y:      0,
		Width:  c.Viewport.Width,
		Height: c.Viewport.Height - c.TaskbarHeight,
	}
}

// SlogLevel converts log_level into a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetWindow returns the declared window with the given id.
func (c *Config) GetWindow(id string) (*Window, bool) {
	for i := range c.Windows {
		if c.Windows[i].ID == id {
			return &c.Windows[i], true
		}
	}
	return nil, false
}

// Marshal renders the effective config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate checks the effective config. Errors carry the YAML path of the
// offending key so the loader can attach file and line information.
func (c *Config) Validate() error {
	checks := []struct {
		path  string
		value any
		rules []validation.Rule
	}{
		{"viewport.width", c.Viewport.Width, []validation.Rule{validation.Required, validation.Min(1)}},
		{"viewport.height", c.Viewport.Height, []validation.Rule{validation.Required, validation.Min(1)}},
		{"taskbar_height", c.TaskbarHeight, []validation.Rule{validation.Min(0), validation.Max(c.Viewport.Height - 1)}},
		{"min_window.width", c.MinWindow.Width, []validation.Rule{validation.Required, validation.Min(1)}},
		{"min_window.height", c.MinWindow.Height, []validation.Rule{validation.Required, validation.Min(1)}},
		{"restore_default.width", c.RestoreDefault.Width, []validation.Rule{validation.Min(c.MinWindow.Width)}},
		{"restore_default.height", c.RestoreDefault.Height, []validation.Rule{validation.Min(c.MinWindow.Height)}},
		{"http.address", c.HTTP.Address, []validation.Rule{validation.Required}},
		{"log_level", strings.ToLower(c.LogLevel), []validation.Rule{validation.Required, validation.In("debug", "info", "warn", "warning", "error")}},
	}
	for _, chk := range checks {
		if err := validation.Validate(chk.value, chk.rules...); err != nil {
			return &ValidationError{Path: chk.path, Err: err}
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return &ValidationError{Path: "journal.path", Err: fmt.Errorf("journal.path is required when the journal is enabled")}
	}

	if len(c.Windows) == 0 {
		return &ValidationError{Path: "windows", Err: fmt.Errorf("at least one window must be declared")}
	}
	seen := make(map[string]struct{}, len(c.Windows))
	for i := range c.Windows {
		if err := c.validateWindow(&c.Windows[i]); err != nil {
			return err
		}
		if _, dup := seen[c.Windows[i].ID]; dup {
			return &ValidationError{Path: "windows", Err: fmt.Errorf("duplicate window id %q", c.Windows[i].ID)}
		}
		seen[c.Windows[i].ID] = struct{}{}
	}

	for _, name := range sortedKeys(c.Apps) {
		app := c.Apps[name]
		path := "apps." + name
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "apps", Err: fmt.Errorf("app id must not be empty")}
		}
		if _, ok := seen[app.Window]; !ok {
			return &ValidationError{Path: path + ".window", Err: fmt.Errorf("unknown window %q", app.Window)}
		}
		if err := validation.Validate(string(app.FirstOpen), validation.In(
			string(FirstOpenNone), string(FirstOpenMaximize), string(FirstOpenCenter),
		)); err != nil {
			return &ValidationError{Path: path + ".first_open", Err: err}
		}
	}
	return nil
}

func (c *Config) validateWindow(w *Window) error {
	path := "windows." + w.ID
	if strings.TrimSpace(w.ID) == "" {
		return &ValidationError{Path: "windows", Err: fmt.Errorf("window id is required")}
	}
	if err := validation.ValidateStruct(&w.Geometry,
		validation.Field(&w.Geometry.Width, validation.Min(c.MinWindow.Width)),
		validation.Field(&w.Geometry.Height, validation.Min(c.MinWindow.Height)),
	); err != nil {
		return &ValidationError{Path: path + ".geometry", Err: err}
	}
	if err := validation.Validate(w.Controls, validation.Each(validation.In(toAny(AllControls)...))); err != nil {
		return &ValidationError{Path: path + ".controls", Err: err}
	}
	if err := validation.Validate(w.ResizeHandles, validation.Each(validation.In(toAny(AllResizeHandles)...))); err != nil {
		return &ValidationError{Path: path + ".resize_handles", Err: err}
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
