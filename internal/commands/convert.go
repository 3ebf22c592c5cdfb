package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/gerunddev/uniast/convert"
	"github.com/gerunddev/uniast/diff"
	"github.com/gerunddev/uniast/styles"
	"github.com/gerunddev/uniast/uniast"
)

// ErrNotCanonical is returned by check when a document does not survive the
// round trip unchanged
var ErrNotCanonical = errors.New("document is not canonical")

var outputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "write to `FILE` instead of stdout",
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Convert Markdown to a UniAST document",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: json or yaml (default from config)",
			},
			outputFlag,
		},
		Action: parseAction,
	}
}

func parseAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	format, err := uniast.ParseFormat(firstNonEmpty(c.String("format"), e.cfg.OutputFormat))
	if err != nil {
		return err
	}

	name, input, err := readInput(c)
	if err != nil {
		return err
	}

	doc, err := convert.NewParser(e.refs, convert.WithLogger(e.log)).Parse(c.Context, string(input))
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", name, err)
	}

	data, err := uniast.Encode(doc, format)
	if err != nil {
		return err
	}
	return e.write(c, name, data)
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Convert a UniAST document to Markdown",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "input format: json or yaml (default from the file extension)",
			},
			outputFlag,
		},
		Action: renderAction,
	}
}

// inputFormat picks the interchange format of an input file
func inputFormat(c *cli.Context, name string) (uniast.Format, error) {
	if f := c.String("format"); f != "" {
		return uniast.ParseFormat(f)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return uniast.FormatYAML, nil
	default:
		return uniast.FormatJSON, nil
	}
}

func renderAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	name, input, err := readInput(c)
	if err != nil {
		return err
	}

	format, err := inputFormat(c, name)
	if err != nil {
		return err
	}

	doc, err := uniast.Decode(input, format)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	markdown, err := convert.NewSerializer(e.refs, convert.WithLogger(e.log)).Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return e.write(c, name, []byte(markdown))
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Verify that Markdown survives a round trip through UniAST",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "diff",
				Usage: "diff format: plain or color",
				Value: "plain",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "rewrite FILE in canonical form",
			},
		},
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	diffFormat, err := diff.ParseFormat(c.String("diff"))
	if err != nil {
		return err
	}

	name, input, err := readInput(c)
	if err != nil {
		return err
	}
	if c.Bool("write") && name == stdinName {
		return errors.New("--write needs a file argument")
	}

	canonical, err := roundTrip(c, e, string(input))
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", name, err)
	}

	d, err := diff.Generate(name, name+" (canonical)", string(input), canonical, diffFormat)
	if err != nil {
		return err
	}
	if d == "" {
		fmt.Fprintln(c.App.ErrWriter, styles.SuccessStyle.Render("✓ "+name+" is canonical"))
		return nil
	}

	fmt.Fprint(c.App.Writer, d)
	if c.Bool("write") {
		if err := writeFile(name, []byte(canonical)); err != nil {
			return err
		}
		e.log.FileConverted(name, name)
		fmt.Fprintln(c.App.ErrWriter, styles.SuccessStyle.Render("✓ Rewrote "+name))
		return nil
	}
	return fmt.Errorf("%s: %w", name, ErrNotCanonical)
}

// roundTrip parses markdown and serializes it back, newline terminated
func roundTrip(c *cli.Context, e *env, markdown string) (string, error) {
	doc, err := convert.NewParser(e.refs, convert.WithLogger(e.log)).Parse(c.Context, markdown)
	if err != nil {
		return "", err
	}
	out, err := convert.NewSerializer(e.refs, convert.WithLogger(e.log)).Serialize(doc)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a UniAST document against the schema",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "input format: json or yaml (default from the file extension)",
			},
		},
		Action: func(c *cli.Context) error {
			name, input, err := readInput(c)
			if err != nil {
				return err
			}
			format, err := inputFormat(c, name)
			if err != nil {
				return err
			}
			doc, err := uniast.Decode(input, format)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			fmt.Fprintln(c.App.ErrWriter, styles.SuccessStyle.Render(
				fmt.Sprintf("✓ %s is a valid document with %d blocks", name, len(doc.Blocks))))
			return nil
		},
	}
}
