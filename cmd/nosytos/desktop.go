package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/nosyt/nosytos/internal/daemon"
	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/ipc"
	"github.com/nosyt/nosytos/internal/runtimepath"
)

var jsonFlag = &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show daemon status via IPC",
		Action: func(_ context.Context, _ *cli.Command) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return daemonUnreachable(err)
			}
			fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
			fmt.Printf("pid:            %d\n", status.PID)
			fmt.Printf("http_address:   %s\n", status.HTTPAddress)
			fmt.Printf("windows:        %d (%d visible)\n", status.Windows, status.Visible)
			fmt.Printf("active:         %s\n", orNone(status.Active))
			fmt.Printf("apps:           %d\n", status.Apps)
			fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
			return nil
		},
	}
}

// daemonUnreachable adds the pid file's view to an IPC failure, which tells a
// hung daemon apart from one that is not running.
func daemonUnreachable(err error) error {
	pidPath, perr := runtimepath.PIDPath()
	if perr != nil {
		return err
	}
	pid, perr := daemon.ReadPID(pidPath)
	if perr != nil {
		return fmt.Errorf("daemon not running: %w", err)
	}
	return fmt.Errorf("daemon (pid %d from %s) not answering: %w", pid, pidPath, err)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func windowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "windows",
		Usage: "List desktop windows",
		Flags: []cli.Flag{jsonFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			st, err := ipc.NewClient().Snapshot()
			if err != nil {
				return daemonUnreachable(err)
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, st.Windows)
			}
			fmt.Println(windowsTable(st.Windows))
			return nil
		},
	}
}

func windowsTable(windows []desktop.WindowView) string {
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		state := "hidden"
		switch {
		case w.Visible && w.Maximized:
			state = "maximized"
		case w.Visible:
			state = "visible"
		}
		active := ""
		if w.Active {
			active = "*"
		}
		rows = append(rows, []string{active, w.ID, w.Title, state, w.Geometry.String(), strconv.Itoa(w.Z)})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "TITLE", "STATE", "GEOMETRY", "Z").
		Rows(rows...).
		String()
}

func taskbarCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskbar",
		Usage: "Show taskbar entries, or click one with --click ID",
		Flags: []cli.Flag{
			jsonFlag,
			&cli.StringFlag{Name: "click", Usage: "Window id of the entry to click"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			client := ipc.NewClient()
			if id := cmd.String("click"); id != "" {
				applied, err := client.TaskbarClick(id)
				if err != nil {
					return daemonUnreachable(err)
				}
				printApplied("taskbar click "+id, applied)
				return nil
			}
			st, err := client.Snapshot()
			if err != nil {
				return daemonUnreachable(err)
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, st.Taskbar)
			}
			fmt.Println(taskbarLine(st.Taskbar))
			return nil
		},
	}
}

func taskbarLine(entries []desktop.TaskbarEntry) string {
	line := "[Start]"
	for _, e := range entries {
		if e.Active {
			line += fmt.Sprintf(" [*%s*]", e.Label)
		} else {
			line += fmt.Sprintf(" [%s]", e.Label)
		}
	}
	return line
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open an app as a desktop icon double-click would",
		ArgsUsage: "[app]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			client := ipc.NewClient()
			appID := cmd.Args().First()
			if appID == "" {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return errors.New("open requires an app id when stdin is not a terminal")
				}
				apps, err := client.ListApps()
				if err != nil {
					return daemonUnreachable(err)
				}
				if appID, err = pickApp(apps); err != nil {
					return err
				}
			}
			applied, err := client.OpenApp(appID)
			if err != nil {
				return daemonUnreachable(err)
			}
			printApplied("open "+appID, applied)
			return nil
		},
	}
}

func pickApp(apps []desktop.AppView) (string, error) {
	if len(apps) == 0 {
		return "", errors.New("no apps configured")
	}
	options := make([]huh.Option[string], 0, len(apps))
	for _, a := range apps {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (window %s)", a.ID, a.Window), a.ID))
	}
	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Open app").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return choice, nil
}

func windowCommand() *cli.Command {
	return &cli.Command{
		Name:      "window",
		Usage:     "Apply a window control: focus, show, minimize, maximize, restore, toggle, close",
		ArgsUsage: "<action> <id>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return errors.New("usage: nosytos window <action> <id>")
			}
			action, id := cmd.Args().Get(0), cmd.Args().Get(1)
			applied, err := ipc.NewClient().WindowAction(action, id)
			if err != nil {
				return err
			}
			printApplied(action+" "+id, applied)
			return nil
		},
	}
}

func printApplied(what string, applied bool) {
	if applied {
		fmt.Println(what)
		return
	}
	fmt.Println(what + " (no change)")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
