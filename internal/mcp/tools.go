package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nosyt/nosytos/internal/desktop"
)

func (s *Server) snapshot() (*desktop.State, error) {
	st, err := s.desk.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to read desktop state: %w", err)
	}
	return st, nil
}

// applied reports the outcome along with the window that is active afterwards.
func (s *Server) applied(ok bool) (AppliedOutput, error) {
	st, err := s.snapshot()
	if err != nil {
		return AppliedOutput{Applied: ok}, err
	}
	return AppliedOutput{Applied: ok, Active: st.Active}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	windows := st.Windows
	if args.VisibleOnly {
		windows = slices.DeleteFunc(slices.Clone(windows), func(w desktop.WindowView) bool { return !w.Visible })
	}
	if windows == nil {
		windows = []desktop.WindowView{}
	}
	return nil, ListWindowsOutput{Windows: windows, Active: st.Active}, nil
}

func (s *Server) handleGetTaskbar(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetTaskbarInput) (*mcpsdk.CallToolResult, GetTaskbarOutput, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, GetTaskbarOutput{}, err
	}
	entries := st.Taskbar
	if entries == nil {
		entries = []desktop.TaskbarEntry{}
	}
	return nil, GetTaskbarOutput{Entries: entries}, nil
}

func (s *Server) handleListApps(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListAppsInput) (*mcpsdk.CallToolResult, ListAppsOutput, error) {
	apps, err := s.desk.ListApps()
	if err != nil {
		return nil, ListAppsOutput{}, fmt.Errorf("failed to list apps: %w", err)
	}
	if apps == nil {
		apps = []desktop.AppView{}
	}
	return nil, ListAppsOutput{Apps: apps}, nil
}

func (s *Server) handleOpenApp(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenAppInput) (*mcpsdk.CallToolResult, AppliedOutput, error) {
	appID := strings.TrimSpace(args.AppID)
	if appID == "" {
		return nil, AppliedOutput{}, fmt.Errorf("app_id is required")
	}
	ok, err := s.desk.OpenApp(appID)
	if err != nil {
		return nil, AppliedOutput{}, fmt.Errorf("open_app %q: %w", appID, err)
	}
	out, err := s.applied(ok)
	return nil, out, err
}

func (s *Server) handleWindowAction(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, AppliedOutput, error) {
	id := strings.TrimSpace(args.WindowID)
	if id == "" {
		return nil, AppliedOutput{}, fmt.Errorf("window_id is required")
	}
	action := strings.ToLower(strings.TrimSpace(args.Action))
	if !slices.Contains(desktop.Operations, action) {
		return nil, AppliedOutput{}, fmt.Errorf("unknown action %q (expected one of %s)", args.Action, strings.Join(desktop.Operations, ", "))
	}
	ok, err := s.desk.WindowAction(action, id)
	if err != nil {
		return nil, AppliedOutput{}, fmt.Errorf("window_action %s %q: %w", action, id, err)
	}
	out, err := s.applied(ok)
	return nil, out, err
}

func (s *Server) handleTaskbarClick(_ context.Context, _ *mcpsdk.CallToolRequest, args TaskbarClickInput) (*mcpsdk.CallToolResult, AppliedOutput, error) {
	id := strings.TrimSpace(args.WindowID)
	if id == "" {
		return nil, AppliedOutput{}, fmt.Errorf("window_id is required")
	}
	ok, err := s.desk.TaskbarClick(id)
	if err != nil {
		return nil, AppliedOutput{}, fmt.Errorf("taskbar_click %q: %w", id, err)
	}
	out, err := s.applied(ok)
	return nil, out, err
}
