// Package reference defines the Reference Context consumed by the Markdown
// converters: the collaborator that turns raw wiki reference strings into
// structured references and back into display names, URLs and raw strings.
package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolved is returned when a raw reference cannot be resolved.
	ErrUnresolved = errors.New("reference: unresolved")
	// ErrKindMismatch is returned when a reference resolves to another kind than expected.
	ErrKindMismatch = errors.New("reference: kind mismatch")
	// ErrNoURL is returned when no URL can be built for a reference.
	ErrNoURL = errors.New("reference: no url")
)

// Kind is the kind of entity a reference points at.
type Kind int

const (
	// Document references a wiki page.
	Document Kind = iota
	// Attachment references a file attached to a wiki page.
	Attachment
)

func (k Kind) String() string {
	switch k {
	case Document:
		return "document"
	case Attachment:
		return "attachment"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses the textual form produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "doc", "page":
		return Document, nil
	case "attachment", "file":
		return Attachment, nil
	default:
		return 0, fmt.Errorf("unknown reference kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Reference is a resolved reference to a wiki entity.
type Reference struct {
	Kind       Kind     `json:"kind" yaml:"kind"`
	Wiki       string   `json:"wiki,omitempty" yaml:"wiki,omitempty"`
	Spaces     []string `json:"spaces,omitempty" yaml:"spaces,omitempty"`
	Page       string   `json:"page,omitempty" yaml:"page,omitempty"`
	Attachment string   `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	// Key identifies the entity within the Context that resolved it.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Context resolves raw references and renders resolved ones.
//
// Resolve may block (index or network lookups); implementations should honor
// ctx cancellation and report it as a resolution failure.
type Context interface {
	Resolve(ctx context.Context, raw string, kind Kind) (*Reference, error)
	DisplayName(ref *Reference) string
	SerializeURL(ref *Reference) (string, error)
	Serialize(ref *Reference) (string, error)
}

// None is a Context that resolves nothing.
type None struct{}

func (None) Resolve(_ context.Context, raw string, _ Kind) (*Reference, error) {
	return nil, fmt.Errorf("%w: %q", ErrUnresolved, raw)
}

func (None) DisplayName(ref *Reference) string {
	if ref == nil {
		return ""
	}
	return ref.Key
}

func (None) SerializeURL(ref *Reference) (string, error) {
	return "", ErrNoURL
}

func (None) Serialize(ref *Reference) (string, error) {
	if ref == nil || ref.Key == "" {
		return "", ErrUnresolved
	}
	return ref.Key, nil
}
