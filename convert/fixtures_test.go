package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gerunddev/uniast/diff"
	"github.com/gerunddev/uniast/reference"
)

// Each testdata/<name>.md converts to UniAST and back to
// testdata/<name>.golden.md.
var fixtures = []string{
	"styling",
	"tables",
	"blocks",
	"xwiki",
	"macros",
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return strings.TrimSuffix(string(data), "\n")
}

func TestRoundTripFixtures(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			input := readFixture(t, name+".md")
			golden := readFixture(t, name+".golden.md")

			doc, err := MarkdownToUniAst(context.Background(), input, reference.None{})
			require.NoError(t, err)

			got, err := UniAstToMarkdown(doc, reference.None{})
			require.NoError(t, err)
			if got != golden {
				t.Errorf("output mismatch\n%s", diff.Unified("golden", "got", golden, got))
			}
		})
	}
}

func TestGoldenOutputIsStable(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			golden := readFixture(t, name+".golden.md")

			doc, err := MarkdownToUniAst(context.Background(), golden, nil)
			require.NoError(t, err)

			got, err := UniAstToMarkdown(doc, nil)
			require.NoError(t, err)
			assert.Equal(t, golden, got)
		})
	}
}
