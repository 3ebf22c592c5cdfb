package reference

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry describes one known entity of a MapContext.
type Entry struct {
	Kind  Kind   `yaml:"kind"`
	Title string `yaml:"title,omitempty"`
	URL   string `yaml:"url,omitempty"`
}

// MapContext resolves references from a fixed table keyed by raw reference.
//
// The table is read from YAML:
//
//	references:
//	  Main.WebHome:
//	    kind: document
//	    title: Home
//	    url: https://wiki.example.org/bin/view/Main/
type MapContext struct {
	entries map[string]Entry
}

// NewMapContext creates a context over entries.
func NewMapContext(entries map[string]Entry) *MapContext {
	if entries == nil {
		entries = make(map[string]Entry)
	}
	return &MapContext{entries: entries}
}

// ParseMapContext reads a YAML reference table.
func ParseMapContext(data []byte) (*MapContext, error) {
	var doc struct {
		References map[string]Entry `yaml:"references"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse reference table: %w", err)
	}
	return NewMapContext(doc.References), nil
}

// LoadMapContext reads a YAML reference table from path.
func LoadMapContext(path string) (*MapContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference table: %w", err)
	}
	return ParseMapContext(data)
}

// Len returns the number of known entities.
func (c *MapContext) Len() int {
	return len(c.entries)
}

func (c *MapContext) Resolve(ctx context.Context, raw string, kind Kind) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnresolved, raw, err)
	}
	entry, ok := c.entries[raw]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnresolved, raw)
	}
	if entry.Kind != kind {
		return nil, fmt.Errorf("%w: %q is a %s, expected a %s", ErrKindMismatch, raw, entry.Kind, kind)
	}
	return &Reference{Kind: kind, Key: raw}, nil
}

func (c *MapContext) DisplayName(ref *Reference) string {
	if ref == nil {
		return ""
	}
	if entry, ok := c.entries[ref.Key]; ok && entry.Title != "" {
		return entry.Title
	}
	return ref.Key
}

func (c *MapContext) SerializeURL(ref *Reference) (string, error) {
	if ref == nil {
		return "", ErrNoURL
	}
	entry, ok := c.entries[ref.Key]
	if !ok || entry.URL == "" {
		return "", fmt.Errorf("%w: %q", ErrNoURL, ref.Key)
	}
	return entry.URL, nil
}

func (c *MapContext) Serialize(ref *Reference) (string, error) {
	if ref == nil || ref.Key == "" {
		return "", ErrUnresolved
	}
	return ref.Key, nil
}
