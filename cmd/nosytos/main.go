package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/nosyt/nosytos/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:  "nosytos",
		Usage: "NosytOS95 desktop shell: window manager daemon, taskbar and launcher",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "~/.config/nosytos/config.yaml",
				Sources:     cli.EnvVars("NOSYTOS_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			daemonCommand(),
			statusCommand(),
			windowsCommand(),
			taskbarCommand(),
			openCommand(),
			windowCommand(),
			configCommand(),
			journalCommand(),
			tuiCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("nosytos error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// loadConfig loads the --config file, or the default path when unset.
func loadConfig(cmd *cli.Command) (*config.LoadResult, error) {
	if path := cmd.String("config"); path != "" {
		return config.LoadFromPath(path)
	}
	return config.LoadWithSources()
}

func formatSource(src config.Source) string {
	if src.Kind == config.SourceDefault || src.File == "" {
		return "default"
	}
	if src.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", src.File, src.Line, src.Column)
	}
	return src.File
}
