package convert

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gerunddev/uniast/internal/logger"
	"github.com/gerunddev/uniast/reference"
	"github.com/gerunddev/uniast/uniast"
)

// invalidReference is the title given to an untitled link or image whose
// reference did not resolve.
const invalidReference = "<invalid reference>"

type markerKind int

const (
	imageMarker markerKind = iota
	linkMarker
	macroMarker
)

// markers are listed by precedence.
var markers = [...]struct {
	token string
	kind  markerKind
}{
	{"![[", imageMarker},
	{"[[", linkMarker},
	{"{{", macroMarker},
}

func (k markerKind) String() string {
	switch k {
	case imageMarker:
		return "image"
	case linkMarker:
		return "link"
	default:
		return "macro"
	}
}

var macroName = regexp.MustCompile(`^\s*([\p{L}\p{N}_]+)`)

// scan splits a run of plain text into texts, wiki links, wiki images and
// inline macros. Malformed constructs stay in the text.
func (c *blockConverter) scan(input string, styles uniast.TextStyles) []uniast.InlineContent {
	s := &inlineScanner{
		ctx:    c.ctx,
		refs:   c.refs,
		log:    c.log,
		input:  input,
		styles: styles,
	}
	return s.run()
}

type inlineScanner struct {
	ctx    context.Context
	refs   reference.Context
	log    *logger.Logger
	input  string
	styles uniast.TextStyles

	// treated is the offset up to which input has been emitted.
	treated int
	out     []uniast.InlineContent
}

func (s *inlineScanner) run() []uniast.InlineContent {
	from := 0
	for from < len(s.input) {
		pos, kind := findMarker(s.input, from)
		if pos < 0 {
			break
		}
		if isEscaped(s.input, pos) {
			s.log.SyntaxRecovered(kind.String(), pos, "escaped")
			from = pos + 1
			continue
		}

		switch kind {
		case imageMarker, linkMarker:
			if end, ok := s.wikiLink(pos, kind); ok {
				from = end
				continue
			}
			s.log.SyntaxRecovered(kind.String(), pos, "unterminated")
			from = pos + 1
		case macroMarker:
			if end, ok := s.macro(pos); ok {
				from = end
				continue
			}
			s.log.SyntaxRecovered(kind.String(), pos, "malformed")
			from = pos + 2
		}
	}
	s.flushText(len(s.input))
	return mergeTexts(s.out)
}

// findMarker returns the offset and kind of the leftmost marker at or after
// from, or -1.
func findMarker(input string, from int) (int, markerKind) {
	for i := from; i < len(input); i++ {
		for _, m := range markers {
			if strings.HasPrefix(input[i:], m.token) {
				return i, m.kind
			}
		}
	}
	return -1, 0
}

// isEscaped reports whether the byte at pos follows an odd run of
// backslashes.
func isEscaped(input string, pos int) bool {
	n := 0
	for i := pos - 1; i >= 0 && input[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

// flushText emits the pending text up to end.
func (s *inlineScanner) flushText(end int) {
	if end > s.treated {
		s.out = append(s.out, &uniast.Text{Content: s.input[s.treated:end], Styles: s.styles})
	}
	s.treated = end
}

func (s *inlineScanner) emit(pos, end int, content uniast.InlineContent) {
	s.flushText(pos)
	s.out = append(s.out, content)
	s.treated = end
}

// wikiLink handles [[title|reference]] and ![[alt|reference]] starting at pos.
func (s *inlineScanner) wikiLink(pos int, kind markerKind) (int, bool) {
	start := pos + len("[[")
	refKind := reference.Document
	if kind == imageMarker {
		start = pos + len("![[")
		refKind = reference.Attachment
	}

	closeAt := findClosing(s.input, start)
	if closeAt < 0 {
		return 0, false
	}
	end := closeAt + len("]]")

	title, raw := splitTitle(s.input[start:closeAt])
	target, display := s.resolve(raw, refKind)
	if title == "" {
		title = display
	}

	if kind == imageMarker {
		s.emit(pos, end, &uniast.InlineImage{Target: target, Alt: title})
	} else {
		s.emit(pos, end, &uniast.Link{
			Content: []uniast.Text{{Content: title, Styles: s.styles}},
			Target:  target,
		})
	}
	return end, true
}

// findClosing returns the offset of the first unescaped "]]" at or after
// start, or -1.
func findClosing(input string, start int) int {
	escaping, closing := false, false
	for i := start; i < len(input); i++ {
		ch := input[i]
		switch {
		case escaping:
			escaping = false
			closing = false
		case ch == '\\':
			escaping = true
			closing = false
		case ch == ']' && closing:
			return i - 1
		case ch == ']':
			closing = true
		default:
			closing = false
		}
	}
	return -1
}

// splitTitle splits a link interior on its first unescaped '|'.
func splitTitle(interior string) (title, raw string) {
	for i := 0; i < len(interior); i++ {
		if interior[i] == '|' && !isEscaped(interior, i) {
			return interior[:i], interior[i+1:]
		}
	}
	return "", interior
}

// resolve builds the internal target of raw and the title to show when none
// was given.
func (s *inlineScanner) resolve(raw string, kind reference.Kind) (*uniast.InternalTarget, string) {
	target := &uniast.InternalTarget{RawReference: raw}
	ref, err := s.refs.Resolve(s.ctx, raw, kind)
	if err != nil || ref == nil {
		s.log.ReferenceUnresolved(raw, kind.String(), err)
		return target, invalidReference
	}
	target.ParsedReference = ref
	return target, s.refs.DisplayName(ref)
}

// macro handles {{name param="value" /}} starting at pos.
func (s *inlineScanner) macro(pos int) (int, bool) {
	start := pos + len("{{")
	loc := macroName.FindStringSubmatchIndex(s.input[start:])
	if loc == nil {
		return 0, false
	}
	name := s.input[start+loc[2] : start+loc[3]]

	params, end, ok := parseMacroParams(s.input, start+loc[1])
	if !ok {
		return 0, false
	}
	s.emit(pos, end, &uniast.InlineMacro{Name: name, Params: params})
	return end, true
}

type macroState int

const (
	stateSeparator macroState = iota
	stateParamName
	stateValueStart
	stateQuoted
	stateNumber
	stateClosing
)

// parseMacroParams reads parameters from offset i up to the closing "/}}".
// It returns the offset just past the macro.
func parseMacroParams(input string, i int) (uniast.Params, int, bool) {
	params := uniast.Params{}
	state := stateSeparator
	escaping := false
	var name, value strings.Builder

	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch state {
		case stateSeparator:
			switch {
			case unicode.IsSpace(r):
			case r == '/':
				state = stateClosing
			case isIdentRune(r):
				name.Reset()
				name.WriteRune(r)
				state = stateParamName
			default:
				return nil, 0, false
			}

		case stateParamName:
			switch {
			case isIdentRune(r):
				name.WriteRune(r)
			case r == '=':
				state = stateValueStart
			default:
				return nil, 0, false
			}

		case stateValueStart:
			value.Reset()
			switch {
			case r == '"':
				state = stateQuoted
			case r >= '0' && r <= '9':
				value.WriteRune(r)
				state = stateNumber
			default:
				return nil, 0, false
			}

		case stateQuoted:
			switch {
			case escaping:
				value.WriteRune(r)
				escaping = false
			case r == '\\':
				escaping = true
			case r == '"':
				params[name.String()] = value.String()
				state = stateSeparator
			default:
				value.WriteRune(r)
			}

		case stateNumber:
			switch {
			case r >= '0' && r <= '9':
				value.WriteRune(r)
			case isIdentRune(r):
				return nil, 0, false
			default:
				params[name.String()] = value.String()
				state = stateSeparator
				// r is a separator or '/': read it again.
				continue
			}

		case stateClosing:
			switch {
			case unicode.IsSpace(r):
			case strings.HasPrefix(input[i:], "}}"):
				return params, i + len("}}"), true
			default:
				return nil, 0, false
			}
		}
		i += size
	}
	return nil, 0, false
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
