// Package mcp exposes the running desktop to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nosyt/nosytos/internal/desktop"
)

const (
	ServerName    = "nosytos"
	ServerVersion = "0.1.0"
)

// Desktop is the daemon surface the tools call. *ipc.Client implements it.
type Desktop interface {
	Snapshot() (*desktop.State, error)
	ListApps() ([]desktop.AppView, error)
	OpenApp(appID string) (bool, error)
	WindowAction(action, windowID string) (bool, error)
	TaskbarClick(windowID string) (bool, error)
}

// Server is the MCP server for the desktop.
type Server struct {
	mcpServer *mcpsdk.Server
	desk      Desktop
}

func NewServer(desk Desktop) *Server {
	s := &Server{desk: desk}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every desktop window with its geometry, visibility, maximized state, stacking value and whether it is the active window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_taskbar",
		Description: "Return the taskbar entries: one per visible window in creation order, with the active window flagged.",
	}, s.handleGetTaskbar)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_apps",
		Description: "List launcher apps (desktop icons and start-menu items), the window each opens and its first-open policy.",
	}, s.handleListApps)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_app",
		Description: "Open an app the way a desktop icon double-click does: its window is shown, raised and made active. Unknown apps are ignored (applied=false).",
	}, s.handleOpenApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Apply a window control to a window: focus, show, minimize, maximize, restore, toggle or close. Unknown windows are ignored (applied=false).",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "taskbar_click",
		Description: "Click a taskbar entry: a background window is raised, the active window is minimized.",
	}, s.handleTaskbarClick)
}
