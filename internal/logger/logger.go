package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file
func NewFileLogger(path string, level log.Level) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return NewWithLevel(f, level), cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ParseLevel maps a config level name to a log level
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// ConversionStarted logs the start of a conversion
func (l *Logger) ConversionStarted(id, direction string, size int) {
	l.Debug("conversion started",
		"conversion_id", id,
		"direction", direction,
		"size", size)
}

// ConversionCompleted logs the completion of a conversion
func (l *Logger) ConversionCompleted(id, direction string, blocks int, duration time.Duration) {
	l.Debug("conversion completed",
		"conversion_id", id,
		"direction", direction,
		"blocks", blocks,
		"duration", duration.Round(time.Microsecond))
}

// ConversionError logs a conversion failure
func (l *Logger) ConversionError(id, direction string, err error) {
	l.Error("conversion failed",
		"conversion_id", id,
		"direction", direction,
		"error", err)
}

// ReferenceUnresolved logs a reference the context could not resolve
func (l *Logger) ReferenceUnresolved(raw, kind string, err error) {
	l.Debug("reference unresolved",
		"reference", raw,
		"kind", kind,
		"error", err)
}

// SyntaxRecovered logs an inline construct degraded to plain text
func (l *Logger) SyntaxRecovered(construct string, offset int, reason string) {
	l.Debug("syntax recovered",
		"construct", construct,
		"offset", offset,
		"reason", reason)
}

// FileConverted logs a file written by the CLI
func (l *Logger) FileConverted(source, dest string) {
	l.Info("file converted",
		"source", source,
		"dest", dest)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path, baseURL, referencesFile string) {
	l.Debug("config loaded",
		"path", path,
		"base_url", baseURL,
		"references_file", referencesFile)
}
