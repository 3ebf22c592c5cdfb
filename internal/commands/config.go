package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gerunddev/uniast/internal/config"
	"github.com/gerunddev/uniast/styles"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write the default configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: configInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: configShow,
			},
		},
	}
}

func configInit(c *cli.Context) error {
	path := configPath(c)
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.DefaultConfig().SaveFile(path); err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, styles.SuccessStyle.Render("✓ Wrote "+path))
	return nil
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.ErrWriter, styles.DimStyle.Render("# "+configPath(c)))
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}

func logsCommand() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Show recent conversion activity",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "number of log lines to show",
				Value:   20,
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			summary, err := ParseLogFile(cfg.LogFile, c.Int("lines"))
			if err != nil {
				return fmt.Errorf("unable to read log file: %w", err)
			}

			fmt.Fprintln(c.App.Writer, styles.TitleStyle.Render("Recent activity"))
			for _, line := range summary.Lines {
				fmt.Fprintln(c.App.Writer, styles.DimStyle.Render(line))
			}
			fmt.Fprintln(c.App.Writer)

			status := fmt.Sprintf("%d converted, %d failed", summary.Converted, summary.Failed)
			if summary.Failed > 0 {
				fmt.Fprintln(c.App.Writer, styles.WarningStyle.Render(status))
			} else {
				fmt.Fprintln(c.App.Writer, styles.SuccessStyle.Render(status))
			}
			if !summary.LastConversion.IsZero() {
				fmt.Fprintln(c.App.Writer, styles.DimStyle.Render("Last conversion: "+summary.LastConversion.Format("2006-01-02 15:04:05")))
			}
			return nil
		},
	}
}
