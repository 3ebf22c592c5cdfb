package reference

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// homePage is the page name standing for a space's home page.
const homePage = "WebHome"

// WikiContext resolves wiki-style references of the form
//
//	[wiki:]Space.SubSpace.Page[@attachment.ext]
//
// where '\' escapes the separators '.', ':' and '@' inside names. A reference
// without a space resolves into DefaultSpace; an attachment reference without
// a page resolves against CurrentPage.
type WikiContext struct {
	BaseURL      string
	DefaultSpace string
	// CurrentPage is the document attachments without a page belong to.
	CurrentPage *Reference
}

// NewWikiContext creates a context building URLs under baseURL.
func NewWikiContext(baseURL, defaultSpace string) *WikiContext {
	return &WikiContext{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		DefaultSpace: defaultSpace,
	}
}

// Resolve parses raw as a reference of the given kind.
func (c *WikiContext) Resolve(ctx context.Context, raw string, kind Kind) (*Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnresolved, raw, err)
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, "mailto:") {
		return nil, fmt.Errorf("%w: %q", ErrUnresolved, raw)
	}

	docPart, attachment, hasAttachment := cutUnescaped(trimmed, '@')
	switch {
	case kind == Document && hasAttachment:
		return nil, fmt.Errorf("%w: %q is an attachment reference", ErrKindMismatch, raw)
	case kind == Attachment && !hasAttachment:
		if c.CurrentPage == nil {
			return nil, fmt.Errorf("%w: %q has no page", ErrUnresolved, raw)
		}
		ref := *c.CurrentPage
		ref.Spaces = append([]string(nil), c.CurrentPage.Spaces...)
		ref.Kind = Attachment
		ref.Attachment = unescape(trimmed)
		ref.Key = c.key(&ref)
		return &ref, nil
	}

	ref := &Reference{Kind: kind}
	if wiki, rest, ok := cutUnescaped(docPart, ':'); ok {
		ref.Wiki = unescape(wiki)
		docPart = rest
	}

	segments := splitUnescaped(docPart, '.')
	for i, s := range segments {
		segments[i] = unescape(s)
		if segments[i] == "" {
			return nil, fmt.Errorf("%w: %q has an empty name", ErrUnresolved, raw)
		}
	}
	if len(segments) == 1 {
		if c.DefaultSpace == "" {
			return nil, fmt.Errorf("%w: %q has no space", ErrUnresolved, raw)
		}
		segments = append([]string{c.DefaultSpace}, segments...)
	}
	ref.Spaces = segments[:len(segments)-1]
	ref.Page = segments[len(segments)-1]

	if hasAttachment {
		ref.Attachment = unescape(attachment)
		if ref.Attachment == "" {
			return nil, fmt.Errorf("%w: %q has an empty attachment name", ErrUnresolved, raw)
		}
	}
	ref.Key = c.key(ref)
	return ref, nil
}

// DisplayName returns the attachment name, or the page name; home pages are
// named after their space.
func (c *WikiContext) DisplayName(ref *Reference) string {
	if ref == nil {
		return ""
	}
	if ref.Kind == Attachment {
		return ref.Attachment
	}
	if ref.Page == homePage && len(ref.Spaces) > 0 {
		return ref.Spaces[len(ref.Spaces)-1]
	}
	return ref.Page
}

// SerializeURL builds the view URL of a document or the download URL of an
// attachment.
func (c *WikiContext) SerializeURL(ref *Reference) (string, error) {
	if ref == nil {
		return "", ErrNoURL
	}
	if c.BaseURL == "" {
		return "", fmt.Errorf("%w: no base url configured", ErrNoURL)
	}

	action := "view"
	if ref.Kind == Attachment {
		action = "download"
	}

	var b strings.Builder
	b.WriteString(c.BaseURL)
	if ref.Wiki != "" {
		b.WriteString("/wiki/" + url.PathEscape(ref.Wiki) + "/" + action)
	} else {
		b.WriteString("/bin/" + action)
	}
	for _, space := range ref.Spaces {
		b.WriteString("/" + url.PathEscape(space))
	}
	switch {
	case ref.Kind == Attachment:
		b.WriteString("/" + url.PathEscape(ref.Page) + "/" + url.PathEscape(ref.Attachment))
	case ref.Page == homePage:
		b.WriteString("/")
	default:
		b.WriteString("/" + url.PathEscape(ref.Page))
	}
	return b.String(), nil
}

// Serialize returns the raw reference string of ref.
func (c *WikiContext) Serialize(ref *Reference) (string, error) {
	if ref == nil || ref.Page == "" {
		return "", fmt.Errorf("%w: incomplete reference", ErrUnresolved)
	}
	return c.key(ref), nil
}

func (c *WikiContext) key(ref *Reference) string {
	var b strings.Builder
	if ref.Wiki != "" {
		b.WriteString(escape(ref.Wiki) + ":")
	}
	for _, space := range ref.Spaces {
		b.WriteString(escape(space) + ".")
	}
	b.WriteString(escape(ref.Page))
	if ref.Kind == Attachment {
		b.WriteString("@" + attachmentEscaper.Replace(ref.Attachment))
	}
	return b.String()
}

// cutUnescaped splits s around the last unescaped sep for '@' and the first
// one otherwise.
func cutUnescaped(s string, sep byte) (before, after string, found bool) {
	positions := unescapedIndexes(s, sep)
	if len(positions) == 0 {
		return s, "", false
	}
	i := positions[0]
	if sep == '@' {
		i = positions[len(positions)-1]
	}
	return s[:i], s[i+1:], true
}

func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for _, i := range unescapedIndexes(s, sep) {
		parts = append(parts, s[start:i])
		start = i + 1
	}
	return append(parts, s[start:])
}

func unescapedIndexes(s string, sep byte) []int {
	var positions []int
	escaping := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaping:
			escaping = false
		case s[i] == '\\':
			escaping = true
		case s[i] == sep:
			positions = append(positions, i)
		}
	}
	return positions
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	escaping := false
	for i := 0; i < len(s); i++ {
		if !escaping && s[i] == '\\' {
			escaping = true
			continue
		}
		escaping = false
		b.WriteByte(s[i])
	}
	return b.String()
}

var (
	escaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `:`, `\:`, `@`, `\@`)
	// Attachment names follow the last '@', so dots and colons stay bare.
	attachmentEscaper = strings.NewReplacer(`\`, `\\`, `@`, `\@`)
)

func escape(s string) string {
	return escaper.Replace(s)
}
