// Package diff renders the difference between two Markdown texts, typically a
// document and the canonical form it serializes back to.
package diff

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatPlain is a bare unified diff
	FormatPlain Format = iota
	// FormatRendered is a unified diff rendered for the terminal
	FormatRendered
)

// ParseFormat maps a flag value to a Format
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "plain":
		return FormatPlain, nil
	case "rendered", "color":
		return FormatRendered, nil
	default:
		return FormatPlain, fmt.Errorf("unsupported diff format: %q", name)
	}
}

// Unified returns the unified diff turning oldText into newText. It is empty
// when both are equal.
func Unified(oldName, newName, oldText, newText string) string {
	if oldText == newText {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(oldName), oldText, newText)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, oldText, edits))
}

// Generate diffs two texts in the given format
func Generate(oldName, newName, oldText, newText string, format Format) (string, error) {
	unified := Unified(oldName, newName, oldText, newText)
	switch format {
	case FormatPlain:
		return unified, nil
	case FormatRendered:
		if unified == "" {
			return "", nil
		}
		return Render(unified), nil
	default:
		return "", fmt.Errorf("unsupported diff format: %d", format)
	}
}

// Render wraps a unified diff in a diff code fence and renders it with
// glamour, falling back to the fenced text.
func Render(unified string) string {
	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}

	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}
	return rendered
}
