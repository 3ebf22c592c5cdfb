package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/urfave/cli/v2"

	"github.com/gerunddev/uniast/internal/config"
	"github.com/gerunddev/uniast/internal/logger"
	"github.com/gerunddev/uniast/reference"
)

const stdinName = "<stdin>"

// env is what every conversion command runs with
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	refs    reference.Context
	cleanup func()
}

func configPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.ConfigPath()
}

// loadConfig reads the config file and applies command line overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadFile(configPath(c))
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("space") {
		cfg.DefaultSpace = c.String("space")
	}
	if c.IsSet("references") {
		cfg.ReferencesFile = c.String("references")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: logger.Discard(), cleanup: func() {}}

	// Set up log file if configured
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if l, cleanup, err := logger.NewFileLogger(cfg.LogFile, level); err == nil {
		e.log = l
		e.cleanup = cleanup
	}
	e.log.ConfigLoaded(configPath(c), cfg.BaseURL, cfg.ReferencesFile)

	refs, err := newReferenceContext(c.Context, cfg, c.String("page"))
	if err != nil {
		e.close()
		return nil, err
	}
	e.refs = refs
	return e, nil
}

// newReferenceContext builds the static table context when a references
// file is configured, and the wiki context otherwise
func newReferenceContext(ctx context.Context, cfg *config.Config, page string) (reference.Context, error) {
	if cfg.ReferencesFile != "" {
		refs, err := reference.LoadMapContext(cfg.ReferencesFile)
		if err != nil {
			return nil, fmt.Errorf("error loading references: %w", err)
		}
		return refs, nil
	}

	refs := reference.NewWikiContext(cfg.BaseURL, cfg.DefaultSpace)
	if page != "" {
		current, err := refs.Resolve(ctx, page, reference.Document)
		if err != nil {
			return nil, fmt.Errorf("invalid current page %q: %w", page, err)
		}
		refs.CurrentPage = current
	}
	return refs, nil
}

func (e *env) close() {
	e.cleanup()
}

// readInput reads the file named by the first argument, or stdin when it is
// missing or "-"
func readInput(c *cli.Context) (string, []byte, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return stdinName, data, nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read input: %w", err)
	}
	return name, data, nil
}

// write sends data to the --output file, replaced atomically, or to stdout
func (e *env) write(c *cli.Context, source string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	dest := c.String("output")
	if dest == "" || dest == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}

	if err := writeFile(dest, data); err != nil {
		return err
	}
	e.log.FileConverted(source, dest)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
