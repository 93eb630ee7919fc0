package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tenantsync/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "tenantsync",
		Usage:   "Compare, clone and synchronize configuration between two tenants of a document-extraction platform",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			cmd.CompareCommand(),
			cmd.BulkCompareCommand(),
			cmd.CloneCommand(),
			cmd.ProjectCommand(),
			cmd.WorkflowCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
