package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/journal"
	"github.com/nosyt/nosytos/internal/platform"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		name string
		src  config.Source
		want string
	}{
		{"default", config.Source{Kind: config.SourceDefault}, "default"},
		{"file with position", config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "/c.yaml:3:5"},
		{"file only", config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "/c.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(tt.src); got != tt.want {
				t.Fatalf("formatSource = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskbarLine(t *testing.T) {
	entries := []desktop.TaskbarEntry{
		{WindowID: "welcome", Label: "Welcome"},
		{WindowID: "about", Label: "About", Active: true},
	}
	if got := taskbarLine(entries); got != "[Start] [Welcome] [*About*]" {
		t.Fatalf("taskbarLine = %q", got)
	}
	if got := taskbarLine(nil); got != "[Start]" {
		t.Fatalf("empty taskbarLine = %q", got)
	}
}

func TestWindowsTable(t *testing.T) {
	out := windowsTable([]desktop.WindowView{
		{ID: "welcome", Title: "Welcome", Visible: true, Active: true, Z: 2, Geometry: platform.Rect{X: 50, Y: 50, Width: 400, Height: 300}},
		{ID: "doom", Title: "DOOM", Visible: true, Maximized: true, Z: 1},
		{ID: "about", Title: "About"},
	})
	for _, want := range []string{"ID", "welcome", "visible", "maximized", "hidden", "*"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestFormatEntry(t *testing.T) {
	e := journal.Entry{
		At:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local),
		Action:   "drag-end",
		WindowID: "welcome",
		Geometry: platform.Rect{X: 70, Y: 40, Width: 400, Height: 300},
		Detail:   "header",
	}
	got := formatEntry(e)
	for _, want := range []string{"2026-01-02 03:04:05", "drag-end", "welcome", "header"} {
		if !strings.Contains(got, want) {
			t.Errorf("entry %q missing %q", got, want)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, []desktop.TaskbarEntry{{WindowID: "about", Label: "About"}}); err != nil {
		t.Fatalf("printJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"window_id": "about"`) {
		t.Fatalf("unexpected JSON %s", buf.String())
	}
}
