package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/nosyt/nosytos/internal/daemon"
	"github.com/nosyt/nosytos/internal/ipc"
	"github.com/nosyt/nosytos/internal/journal"
	"github.com/nosyt/nosytos/internal/mcp"
	"github.com/nosyt/nosytos/internal/tui"
)

func daemonCommand() *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "Start the desktop daemon (foreground)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "http",
				Usage:   "HTTP listen address (overrides http.address)",
				Sources: cli.EnvVars("NOSYTOS_HTTP_ADDRESS"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return daemon.Run(ctx, daemon.Options{
				ConfigPath:  cmd.String("config"),
				HTTPAddress: cmd.String("http"),
			})
		},
	}
}

func journalCommand() *cli.Command {
	return &cli.Command{
		Name:  "journal",
		Usage: "Show recent window actions from the journal",
		Flags: []cli.Flag{
			jsonFlag,
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Number of entries"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			res, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !res.Config.Journal.Enabled {
				return fmt.Errorf("journal is disabled (set journal.enabled in the config)")
			}
			j, err := journal.Open(res.Config.Journal.Path, nil)
			if err != nil {
				return err
			}
			defer j.Close()

			entries, err := j.Recent(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return printJSON(os.Stdout, entries)
			}
			for _, e := range entries {
				fmt.Println(formatEntry(e))
			}
			return nil
		},
	}
}

func formatEntry(e journal.Entry) string {
	line := fmt.Sprintf("%s  %-14s %-10s %s", e.At.Local().Format(time.DateTime), e.Action, e.WindowID, e.Geometry)
	if e.Detail != "" {
		line += "  " + e.Detail
	}
	return line
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the interactive terminal desktop (requires a running daemon)",
		Action: func(_ context.Context, _ *cli.Command) error {
			client := ipc.NewClient()
			if err := client.Ping(); err != nil {
				return daemonUnreachable(err)
			}
			return tui.Run(client)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Model Context Protocol server",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the MCP server on stdio, backed by the running daemon",
				Action: func(ctx context.Context, _ *cli.Command) error {
					ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
					defer stop()
					return mcp.NewServer(ipc.NewClient()).Run(ctx)
				},
			},
		},
	}
}
