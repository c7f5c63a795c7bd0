package mcp

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
)

type localDesktop struct {
	m    *desktop.Manager
	fail error
}

func (l *localDesktop) Snapshot() (*desktop.State, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	st := l.m.State()
	return &st, nil
}

func (l *localDesktop) ListApps() ([]desktop.AppView, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	return l.m.Apps(), nil
}

func (l *localDesktop) OpenApp(id string) (bool, error) { return l.m.Open(id), nil }
func (l *localDesktop) WindowAction(action, id string) (bool, error) {
	return l.m.Apply(action, id)
}
func (l *localDesktop) TaskbarClick(id string) (bool, error) { return l.m.ClickTaskbar(id), nil }

func newTestServer() (*Server, *localDesktop) {
	desk := &localDesktop{m: desktop.New(config.DefaultConfig())}
	return NewServer(desk), desk
}

func TestListWindows(t *testing.T) {
	s, desk := newTestServer()
	ctx := context.Background()

	_, all, err := s.handleListWindows(ctx, nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(all.Windows) != len(config.DefaultConfig().Windows) || all.Active != "welcome" {
		t.Fatalf("unexpected output %+v", all)
	}

	_, visible, err := s.handleListWindows(ctx, nil, ListWindowsInput{VisibleOnly: true})
	if err != nil {
		t.Fatalf("list_windows visible: %v", err)
	}
	if len(visible.Windows) != 1 || visible.Windows[0].ID != "welcome" {
		t.Fatalf("unexpected visible windows %+v", visible.Windows)
	}
	if len(desk.m.Windows()) != len(all.Windows) {
		t.Fatalf("visible filter mutated the snapshot")
	}

	desk.m.Minimize("welcome")
	_, visible, _ = s.handleListWindows(ctx, nil, ListWindowsInput{VisibleOnly: true})
	if visible.Windows == nil || len(visible.Windows) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", visible.Windows)
	}
}

func TestWindowActionTool(t *testing.T) {
	tests := []struct {
		name    string
		in      WindowActionInput
		applied bool
		active  string
		wantErr string
	}{
		{"maximize", WindowActionInput{WindowID: "welcome", Action: "maximize"}, true, "welcome", ""},
		{"case and space insensitive", WindowActionInput{WindowID: " welcome ", Action: " Minimize"}, true, "", ""},
		{"show hidden", WindowActionInput{WindowID: "about", Action: "show"}, true, "about", ""},
		{"unknown window", WindowActionInput{WindowID: "nope", Action: "close"}, false, "welcome", ""},
		{"unknown action", WindowActionInput{WindowID: "welcome", Action: "explode"}, false, "", "unknown action"},
		{"missing id", WindowActionInput{Action: "focus"}, false, "", "window_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer()
			_, out, err := s.handleWindowAction(context.Background(), nil, tt.in)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if out.Applied != tt.applied || out.Active != tt.active {
				t.Fatalf("out = %+v, want applied=%v active=%q", out, tt.applied, tt.active)
			}
		})
	}
}

func TestOpenAppAndTaskbar(t *testing.T) {
	s, desk := newTestServer()
	ctx := context.Background()

	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{}); err == nil {
		t.Fatalf("expected error for empty app_id")
	}
	_, out, err := s.handleOpenApp(ctx, nil, OpenAppInput{AppID: "about"})
	if err != nil || !out.Applied || out.Active != "about" {
		t.Fatalf("open_app = %+v, %v", out, err)
	}
	_, out, _ = s.handleOpenApp(ctx, nil, OpenAppInput{AppID: "nope"})
	if out.Applied {
		t.Fatalf("expected unknown app to be a no-op")
	}

	_, tb, err := s.handleGetTaskbar(ctx, nil, GetTaskbarInput{})
	if err != nil {
		t.Fatalf("get_taskbar: %v", err)
	}
	if len(tb.Entries) != 2 || !tb.Entries[1].Active || tb.Entries[1].WindowID != "about" {
		t.Fatalf("unexpected taskbar %+v", tb.Entries)
	}

	_, out, err = s.handleTaskbarClick(ctx, nil, TaskbarClickInput{WindowID: "about"})
	if err != nil || !out.Applied || out.Active != "welcome" {
		t.Fatalf("taskbar_click = %+v, %v", out, err)
	}
	if v, _ := desk.m.Window("about"); v.Visible {
		t.Fatalf("expected about minimized by clicking its active entry")
	}

	_, apps, err := s.handleListApps(ctx, nil, ListAppsInput{})
	if err != nil || len(apps.Apps) != len(config.DefaultConfig().Apps) {
		t.Fatalf("list_apps = %+v, %v", apps, err)
	}
}

func TestToolsReportDaemonErrors(t *testing.T) {
	s, desk := newTestServer()
	desk.fail = errors.New("daemon not running")
	ctx := context.Background()

	if _, _, err := s.handleListWindows(ctx, nil, ListWindowsInput{}); err == nil || !strings.Contains(err.Error(), "daemon not running") {
		t.Fatalf("list_windows err = %v", err)
	}
	if _, _, err := s.handleGetTaskbar(ctx, nil, GetTaskbarInput{}); err == nil {
		t.Fatalf("expected get_taskbar error")
	}
	if _, _, err := s.handleListApps(ctx, nil, ListAppsInput{}); err == nil {
		t.Fatalf("expected list_apps error")
	}
}

func TestServerRegistersTools(t *testing.T) {
	s, _ := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	want := []string{"get_taskbar", "list_apps", "list_windows", "open_app", "taskbar_click", "window_action"}
	if !slices.Equal(names, want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
}
