package mcp

import "github.com/nosyt/nosytos/internal/desktop"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	VisibleOnly bool `json:"visible_only,omitempty" jsonschema:"Only return windows currently shown on the desktop"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []desktop.WindowView `json:"windows"`
	Active  string               `json:"active,omitempty"`
}

// GetTaskbarInput is the input for the get_taskbar tool.
type GetTaskbarInput struct{}

// GetTaskbarOutput is the output for the get_taskbar tool.
type GetTaskbarOutput struct {
	Entries []desktop.TaskbarEntry `json:"entries"`
}

// ListAppsInput is the input for the list_apps tool.
type ListAppsInput struct{}

// ListAppsOutput is the output for the list_apps tool.
type ListAppsOutput struct {
	Apps []desktop.AppView `json:"apps"`
}

// OpenAppInput is the input for the open_app tool.
type OpenAppInput struct {
	AppID string `json:"app_id" jsonschema:"Launcher id of the app, as listed by list_apps"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	WindowID string `json:"window_id" jsonschema:"Window id, as listed by list_windows"`
	Action   string `json:"action" jsonschema:"One of focus, show, minimize, maximize, restore, toggle, close"`
}

// TaskbarClickInput is the input for the taskbar_click tool.
type TaskbarClickInput struct {
	WindowID string `json:"window_id" jsonschema:"Window id of the taskbar entry"`
}

// AppliedOutput reports whether a tool changed the desktop.
type AppliedOutput struct {
	Applied bool   `json:"applied"`
	Active  string `json:"active,omitempty"`
}
