// Package commands implements the uniast command line.
package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gerunddev/uniast/internal/config"
)

const version = "0.1.0"

// App builds the uniast command line application
func App() *cli.App {
	return &cli.App{
		Name:    "uniast",
		Usage:   "Convert between wiki-flavored Markdown and UniAST",
		Version: version,
		Description: fmt.Sprintf(`Markdown is read with GitHub extensions (tables, strikethrough, task lists)
plus wiki links [[Page]], images ![[file.png]] and macros {{name param="value" /}}.

Config file: %s`, config.ConfigPath()),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "wiki `URL` internal references link to",
			},
			&cli.StringFlag{
				Name:  "space",
				Usage: "default `SPACE` for unqualified page references",
			},
			&cli.StringFlag{
				Name:  "page",
				Usage: "current `PAGE` attachments without a page belong to",
			},
			&cli.StringFlag{
				Name:  "references",
				Usage: "resolve references from a YAML table in `FILE`",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			parseCommand(),
			renderCommand(),
			checkCommand(),
			validateCommand(),
			configCommand(),
			logsCommand(),
		},
	}
}
