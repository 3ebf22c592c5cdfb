package convert

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gerunddev/uniast/internal/logger"
	"github.com/gerunddev/uniast/reference"
	"github.com/gerunddev/uniast/uniast"
)

// Serializer renders UniAST documents as canonical Markdown.
type Serializer struct {
	refs reference.Context
	log  *logger.Logger
}

// NewSerializer creates a serializer. refs is consulted for internal targets
// carrying only a parsed reference; a nil refs serializes none.
func NewSerializer(refs reference.Context, opts ...Option) *Serializer {
	o := newOptions(opts)
	if refs == nil {
		refs = reference.None{}
	}
	return &Serializer{refs: refs, log: o.log}
}

// UniAstToMarkdown serializes doc with a default serializer.
func UniAstToMarkdown(doc *uniast.UniAst, refs reference.Context) (string, error) {
	return NewSerializer(refs).Serialize(doc)
}

// Serialize renders a document. Blocks are separated by a blank line and the
// output carries no trailing newline.
func (s *Serializer) Serialize(doc *uniast.UniAst) (string, error) {
	if doc == nil {
		return "", errors.New("nil document")
	}

	id := uuid.NewString()
	start := time.Now()
	s.log.ConversionStarted(id, directionToMarkdown, len(doc.Blocks))

	out, err := s.blocks(doc.Blocks)
	if err != nil {
		s.log.ConversionError(id, directionToMarkdown, err)
		return "", err
	}

	s.log.ConversionCompleted(id, directionToMarkdown, len(doc.Blocks), time.Since(start))
	return out, nil
}

func (s *Serializer) blocks(blocks []uniast.Block) (string, error) {
	parts := make([]string, 0, len(blocks))
	var lists listSequence
	for _, b := range blocks {
		var (
			part string
			err  error
		)
		if l, ok := b.(*uniast.List); ok {
			part, err = s.list(l, lists.next(l))
		} else {
			lists.reset()
			part, err = s.SerializeBlock(b)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n"), nil
}

type listFamily int

const (
	bulletFamily listFamily = iota
	orderedFamily
)

// family groups the lists Markdown merges when they follow each other.
// Task lists share the bullet marker.
func family(l *uniast.List) listFamily {
	if len(l.Items) > 0 && l.Items[0].Number != nil {
		return orderedFamily
	}
	return bulletFamily
}

// listSequence tracks adjacent sibling lists. Each list of the same family
// as the one before it switches markers, so the lists stay apart when read
// back.
type listSequence struct {
	prev      *uniast.List
	alternate bool
}

func (q *listSequence) next(l *uniast.List) bool {
	if q.prev != nil && family(q.prev) == family(l) {
		q.alternate = !q.alternate
	} else {
		q.alternate = false
	}
	q.prev = l
	return q.alternate
}

func (q *listSequence) reset() {
	q.prev = nil
	q.alternate = false
}

// SerializeBlock renders a single block.
func (s *Serializer) SerializeBlock(block uniast.Block) (string, error) {
	switch b := block.(type) {
	case *uniast.Paragraph:
		return s.SerializeInline(b.Content)

	case *uniast.Heading:
		if b.Level < 1 || b.Level > 6 {
			return "", fmt.Errorf("%w: %d", ErrInvalidHeadingLevel, b.Level)
		}
		content, err := s.SerializeInline(b.Content)
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", b.Level) + " " + content, nil

	case *uniast.Quote:
		inner, err := s.blocks(b.Content)
		if err != nil {
			return "", err
		}
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = "> " + line
		}
		return strings.Join(lines, "\n"), nil

	case *uniast.List:
		return s.list(b, false)

	case *uniast.Code:
		return "```" + b.Language + "\n" + b.Content + "\n```", nil

	case *uniast.Table:
		return s.table(b)

	case *uniast.Image:
		text := b.Caption
		if text == "" {
			text = b.Alt
		}
		return s.image(b.Target, text)

	case *uniast.Break:
		return "---", nil

	case *uniast.MacroBlock:
		return serializeMacro(b.Name, b.Params), nil

	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedNode, block)
	}
}

// list renders a list. alternate selects the "-" bullet and the ")"
// delimiter in place of "*" and ".".
func (s *Serializer) list(l *uniast.List, alternate bool) (string, error) {
	items := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		marker, indent := listMarker(item, alternate)
		body, err := s.listItem(item, indent)
		if err != nil {
			return "", err
		}
		items = append(items, marker+body)
	}
	return strings.Join(items, "\n"), nil
}

// listMarker returns the marker opening an item and the indentation of the
// continuation lines of its first block.
func listMarker(item uniast.ListItem, alternate bool) (string, string) {
	bullet, delimiter := "* ", ". "
	if alternate {
		bullet, delimiter = "- ", ") "
	}
	switch {
	case item.Number != nil:
		marker := strconv.Itoa(*item.Number) + delimiter
		return marker, strings.Repeat(" ", len(marker))
	case item.Checked != nil && *item.Checked:
		return bullet + "[x] ", "  "
	case item.Checked != nil:
		return bullet + "[ ] ", "  "
	default:
		return bullet, "  "
	}
}

func (s *Serializer) listItem(item uniast.ListItem, indent string) (string, error) {
	var (
		b     strings.Builder
		lists listSequence
	)
	for i, block := range item.Content {
		var (
			text string
			err  error
		)
		nested, isList := block.(*uniast.List)
		if isList {
			text, err = s.list(nested, lists.next(nested))
		} else {
			lists.reset()
			text, err = s.SerializeBlock(block)
		}
		if err != nil {
			return "", err
		}
		if i == 0 {
			b.WriteString(indentLines(text, indent, true))
			continue
		}
		if isList {
			b.WriteString("\n")
		} else {
			b.WriteString("\n\n")
		}
		b.WriteString(indentLines(text, "\t", false))
	}
	return b.String(), nil
}

// indentLines prefixes every non-empty line of text.
func indentLines(text, prefix string, skipFirst bool) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line == "" || (i == 0 && skipFirst) {
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func (s *Serializer) table(t *uniast.Table) (string, error) {
	header := make([]string, len(t.Columns))
	separator := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cell, err := s.cell(col.HeaderCell)
		if err != nil {
			return "", err
		}
		header[i] = cell
		separator[i] = " - "
	}

	lines := []string{tableRow(header), tableRow(separator)}
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cell, err := s.cell(c)
			if err != nil {
				return "", err
			}
			cells[i] = cell
		}
		lines = append(lines, tableRow(cells))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Serializer) cell(c uniast.TableCell) (string, error) {
	content, err := s.SerializeInline(c.Content)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(content, "\n", " "), nil
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// SerializeInline renders a sequence of inline contents.
func (s *Serializer) SerializeInline(contents []uniast.InlineContent) (string, error) {
	var b strings.Builder
	for _, content := range contents {
		switch c := content.(type) {
		case *uniast.Text:
			b.WriteString(styledText(*c))
		case *uniast.Link:
			link, err := s.link(c)
			if err != nil {
				return "", err
			}
			b.WriteString(link)
		case *uniast.InlineImage:
			image, err := s.image(c.Target, c.Alt)
			if err != nil {
				return "", err
			}
			b.WriteString(image)
		case *uniast.InlineMacro:
			b.WriteString(serializeMacro(c.Name, c.Params))
		default:
			return "", fmt.Errorf("%w: %T", ErrUnsupportedNode, content)
		}
	}
	return b.String(), nil
}

func (s *Serializer) link(l *uniast.Link) (string, error) {
	var text strings.Builder
	for _, t := range l.Content {
		text.WriteString(styledText(t))
	}

	switch target := l.Target.(type) {
	case *uniast.ExternalTarget:
		return "[" + text.String() + "](" + target.URL + ")", nil
	case *uniast.InternalTarget:
		raw, err := s.rawReference(target)
		if err != nil {
			return "", err
		}
		if text.Len() == 0 || isPlaceholderTitle(linkTitle(l.Content), target) {
			return "[[" + raw + "]]", nil
		}
		return "[[" + text.String() + "|" + raw + "]]", nil
	default:
		return "", fmt.Errorf("%w: link target %T", ErrUnsupportedNode, l.Target)
	}
}

func (s *Serializer) image(target uniast.LinkTarget, alt string) (string, error) {
	switch t := target.(type) {
	case *uniast.ExternalTarget:
		return "![" + alt + "](" + t.URL + ")", nil
	case *uniast.InternalTarget:
		raw, err := s.rawReference(t)
		if err != nil {
			return "", err
		}
		if alt == "" || isPlaceholderTitle(alt, t) {
			return "![[" + raw + "]]", nil
		}
		return "![[" + alt + "|" + raw + "]]", nil
	default:
		return "", fmt.Errorf("%w: image target %T", ErrUnsupportedNode, target)
	}
}

// isPlaceholderTitle reports whether title is the placeholder parsing gives
// an untitled reference that did not resolve. Markdown would read it back as
// raw HTML, so it is left out of the output.
func isPlaceholderTitle(title string, target *uniast.InternalTarget) bool {
	return target.ParsedReference == nil && title == invalidReference
}

func linkTitle(texts []uniast.Text) string {
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(t.Content)
	}
	return b.String()
}

// rawReference prefers the reference as written and falls back to
// serializing the parsed one.
func (s *Serializer) rawReference(t *uniast.InternalTarget) (string, error) {
	if t.RawReference != "" {
		return t.RawReference, nil
	}
	if t.ParsedReference == nil {
		return "", ErrMissingReference
	}
	raw, err := s.refs.Serialize(t.ParsedReference)
	if err != nil {
		return "", fmt.Errorf("serialize reference: %w", err)
	}
	return raw, nil
}

// styleMarkers are listed from outermost to innermost.
var styleMarkers = [...]struct {
	enabled func(uniast.TextStyles) bool
	marker  string
}{
	{func(s uniast.TextStyles) bool { return s.Code }, "`"},
	{func(s uniast.TextStyles) bool { return s.Strikethrough }, "~~"},
	{func(s uniast.TextStyles) bool { return s.Italic }, "_"},
	{func(s uniast.TextStyles) bool { return s.Bold }, "**"},
}

func styledText(t uniast.Text) string {
	if t.Content == "" {
		return ""
	}
	var open []string
	for _, m := range styleMarkers {
		if m.enabled(t.Styles) {
			open = append(open, m.marker)
		}
	}

	var b strings.Builder
	for _, m := range open {
		b.WriteString(m)
	}
	b.WriteString(t.Content)
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString(open[i])
	}
	return b.String()
}

var macroValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// serializeMacro renders {{name key="value" /}} with keys in sorted order.
func serializeMacro(name string, params uniast.Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(name)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(macroValueEscaper.Replace(params[k]))
		b.WriteString(`"`)
	}
	b.WriteString(" /}}")
	return b.String()
}
