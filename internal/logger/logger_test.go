package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"", log.InfoLevel, false},
		{"INFO", log.InfoLevel, false},
		{" warning ", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", log.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestConversionEvents(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, log.DebugLevel)

	l.ConversionStarted("abc", "markdown-to-uniast", 42)
	l.ConversionCompleted("abc", "markdown-to-uniast", 3, 1500*time.Microsecond)
	l.ConversionError("abc", "uniast-to-markdown", errors.New("boom"))
	l.ReferenceUnresolved("Main.Missing", "document", errors.New("not found"))

	out := buf.String()
	for _, want := range []string{
		"conversion started", "conversion_id=abc", "size=42",
		"conversion completed", "blocks=3",
		"conversion failed", "error=boom",
		"reference unresolved", "reference=Main.Missing",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.SyntaxRecovered("macro", 4, "unterminated")
	if buf.Len() != 0 {
		t.Errorf("debug events should be filtered at info level, got %q", buf.String())
	}

	l.FileConverted("in.md", "out.json")
	if !strings.Contains(buf.String(), "file converted") {
		t.Errorf("expected info event, got %q", buf.String())
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uniast.log")

	l, cleanup, err := NewFileLogger(path, log.InfoLevel)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.FileConverted("a.md", "a.json")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if !strings.Contains(string(data), "dest=a.json") {
		t.Errorf("log file missing event: %q", data)
	}

	if _, _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log"), log.InfoLevel); err == nil {
		t.Error("expected error for missing directory")
	}
}
