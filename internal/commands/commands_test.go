package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerunddev/uniast/internal/config"
)

type harness struct {
	t       *testing.T
	dir     string
	cfgPath string
	logPath string
}

// newHarness writes a config logging into a temporary directory
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		t:       t,
		dir:     dir,
		cfgPath: filepath.Join(dir, "config.json"),
		logPath: filepath.Join(dir, "uniast.log"),
	}

	cfg := config.DefaultConfig()
	cfg.LogFile = h.logPath
	require.NoError(t, cfg.SaveFile(h.cfgPath))
	return h
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := h.path(name)
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	app := App()
	var stdout, stderr bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.RunContext(context.Background(), append([]string{"uniast", "--config", h.cfgPath}, args...))
	return stdout.String(), stderr.String(), err
}

const sample = `# Notes

See [[the guide|Page]] and **bold** text.

{{toc depth="2" /}}
`

func TestParseToStdout(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(sample, "parse")
	require.NoError(t, err)

	assert.Contains(t, out, `"type": "heading"`)
	assert.Contains(t, out, `"rawReference": "Page"`)
	assert.Contains(t, out, `"key": "Main.Page"`)
	assert.Contains(t, out, `"type": "macroBlock"`)
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestParseRenderRoundTrip(t *testing.T) {
	h := newHarness(t)
	input := h.writeFile("notes.md", sample)
	yamlPath := h.path("out/notes.yaml")

	_, _, err := h.run("", "parse", "--format", "yaml", "-o", yamlPath, input)
	require.NoError(t, err)

	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "blocks:"))

	out, _, err := h.run("", "render", yamlPath)
	require.NoError(t, err)
	assert.Equal(t, sample, out)

	logData, err := os.ReadFile(h.logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "file converted")
}

func TestParseUnsupportedMarkdown(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("<div>html</div>\n", "parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to convert <stdin>")
}

func TestRenderRejectsInvalidDocument(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("bad.json", `{"blocks":[{"type":"heading","level":9,"content":[]}]}`)

	_, _, err := h.run("", "render", path)
	assert.Error(t, err)

	_, _, err = h.run("", "validate", path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("doc.yml", "blocks:\n  - type: break\n")

	_, stderr, err := h.run("", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "1 blocks")
}

func TestCheck(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("# Title\n\nSome **bold** text\n", "check")
	require.NoError(t, err)
	assert.Contains(t, stderr, "is canonical")

	out, _, err := h.run("-   item\n", "check")
	assert.ErrorIs(t, err, ErrNotCanonical)
	assert.Contains(t, out, "--   item")
	assert.Contains(t, out, "+* item")

	_, _, err = h.run("", "check", "--diff", "fancy")
	assert.Error(t, err)
}

func TestCheckWrite(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("list.md", "-   one\n-   two\n")

	_, stderr, err := h.run("", "check", "--write", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Rewrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "* one\n* two\n", string(data))

	_, _, err = h.run("", "check", path)
	assert.NoError(t, err)

	_, _, err = h.run("x\n", "check", "--write")
	assert.Error(t, err)
}

func TestReferencesFile(t *testing.T) {
	h := newHarness(t)
	refs := h.writeFile("references.yaml", `
references:
  Main.WebHome:
    kind: document
    title: Home
`)

	out, _, err := h.run("[[Main.WebHome]]\n", "--references", refs, "parse")
	require.NoError(t, err)
	assert.Contains(t, out, `"content": "Home"`)

	_, _, err = h.run("x\n", "--references", h.path("missing.yaml"), "parse")
	assert.Error(t, err)
}

func TestCurrentPage(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("![[logo.png]]\n", "--page", "Docs.Guide", "parse")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "Docs.Guide@logo.png"`)

	_, _, err = h.run("x\n", "--page", "Docs..Guide", "parse")
	assert.Error(t, err)
}

func TestInvalidOverrides(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("x\n", "--base-url", "not a url", "parse")
	assert.Error(t, err)

	_, _, err = h.run("x\n", "--log-level", "loud", "parse")
	assert.Error(t, err)

	_, _, err = h.run("x\n", "parse", "--format", "toml")
	assert.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)
	h.cfgPath = h.path("fresh/config.json")

	_, stderr, err := h.run("", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stderr, h.cfgPath)

	_, _, err = h.run("", "config", "init")
	assert.Error(t, err)

	_, _, err = h.run("", "config", "init", "--force")
	assert.NoError(t, err)

	out, _, err := h.run("", "--space", "Docs", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"default_space": "Docs"`)
	assert.Contains(t, out, `"output_format": "json"`)
}

func TestLogs(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run(sample, "parse", "-o", h.path("a.json"))
	require.NoError(t, err)

	out, _, err := h.run("", "logs")
	require.NoError(t, err)
	assert.Contains(t, out, "1 converted, 0 failed")
	assert.Contains(t, out, "Last conversion")
}

func TestParseLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uniast.log")
	content := strings.Join([]string{
		"2025-11-27 14:10:00 INFO file converted source=a.md dest=a.json",
		"2025-11-27 14:11:00 ERRO conversion failed conversion_id=x direction=markdown-to-uniast error=boom",
		"2025-11-27 14:11:57 INFO file converted source=b.md dest=b.json",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	summary, err := ParseLogFile(path, 20)
	require.NoError(t, err)
	assert.Len(t, summary.Lines, 3)
	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "2025-11-27 14:11:57", summary.LastConversion.Format("2006-01-02 15:04:05"))

	tail, err := ParseLogFile(path, 1)
	require.NoError(t, err)
	assert.Len(t, tail.Lines, 1)
	assert.Equal(t, 1, tail.Converted)

	_, err = ParseLogFile(filepath.Join(t.TempDir(), "missing.log"), 20)
	assert.Error(t, err)
}
