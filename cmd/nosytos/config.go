package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/nosyt/nosytos/internal/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Validate, print or explain the configuration",
		Commands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate configuration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					res, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					fmt.Printf("config: ok (%d windows, %d apps)\n", len(res.Config.Windows), len(res.Config.Apps))
					return nil
				},
			},
			{
				Name:  "print",
				Usage: "Print the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "defaults", Usage: "Print built-in defaults (no files)"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg := config.DefaultConfig()
					if !cmd.Bool("defaults") {
						res, err := loadConfig(cmd)
						if err != nil {
							return err
						}
						cfg = res.Config
						for _, f := range res.Files {
							fmt.Printf("# file: %s\n", f)
						}
					}
					data, err := yaml.Marshal(cfg)
					if err != nil {
						return err
					}
					fmt.Print(string(data))
					return nil
				},
			},
			{
				Name:      "explain",
				Usage:     "Show a config value and where it was set",
				ArgsUsage: "<yaml.path>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					query := cmd.Args().First()
					if query == "" {
						return errors.New("explain requires <yaml.path>")
					}
					res, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					value, src, err := config.Explain(res, query)
					if err != nil {
						return err
					}
					out, err := yaml.Marshal(value)
					if err != nil {
						return err
					}
					fmt.Printf("path: %s\n", query)
					fmt.Printf("source: %s\n", formatSource(src))
					fmt.Printf("value:\n%s", string(out))
					return nil
				},
			},
		},
	}
}
