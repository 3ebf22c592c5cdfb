package uniast

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is an interchange encoding of a UniAst.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q: must be one of: json, yaml", s)
	}
}

//go:embed schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("uniast.schema.json", schemaSource)

// Validate checks a JSON-encoded document against the UniAST schema.
func Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid uniast document: %w", err)
	}
	return nil
}

// Encode serializes doc in the given format.
func Encode(doc *UniAst, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(doc.value(), "", "  ")
	case FormatYAML:
		return yaml.Marshal(doc.value())
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Decode parses and validates a document in the given format.
func Decode(data []byte, format Format) (*UniAst, error) {
	switch format {
	case FormatJSON:
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("yaml document is not representable as json: %w", err)
		}
		data = converted
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	if err := Validate(data); err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	return decodeDocument(v)
}

// MarshalJSON implements json.Marshaler.
func (u UniAst) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.value())
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *UniAst) UnmarshalJSON(data []byte) error {
	doc, err := Decode(data, FormatJSON)
	if err != nil {
		return err
	}
	*u = *doc
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (u UniAst) MarshalYAML() (any, error) {
	return u.value(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (u *UniAst) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml document is not representable as json: %w", err)
	}
	return u.UnmarshalJSON(data)
}

type object = map[string]any

func (u UniAst) value() object {
	blocks := make([]any, 0, len(u.Blocks))
	for _, b := range u.Blocks {
		blocks = append(blocks, blockValue(b))
	}
	return object{"blocks": blocks}
}

func blocksValue(blocks []Block) []any {
	out := make([]any, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockValue(b))
	}
	return out
}

func blockValue(b Block) object {
	switch b := b.(type) {
	case *Paragraph:
		return object{"type": "paragraph", "content": inlinesValue(b.Content), "styles": blockStylesValue(b.Styles)}
	case *Heading:
		return object{"type": "heading", "level": b.Level, "content": inlinesValue(b.Content), "styles": blockStylesValue(b.Styles)}
	case *Quote:
		return object{"type": "quote", "content": blocksValue(b.Content), "styles": blockStylesValue(b.Styles)}
	case *List:
		items := make([]any, 0, len(b.Items))
		for _, item := range b.Items {
			v := object{"content": blocksValue(item.Content), "styles": blockStylesValue(item.Styles)}
			if item.Number != nil {
				v["number"] = *item.Number
			}
			if item.Checked != nil {
				v["checked"] = *item.Checked
			}
			items = append(items, v)
		}
		return object{"type": "list", "items": items, "styles": blockStylesValue(b.Styles)}
	case *Code:
		v := object{"type": "code", "content": b.Content}
		if b.Language != "" {
			v["language"] = b.Language
		}
		return v
	case *Table:
		columns := make([]any, 0, len(b.Columns))
		for _, column := range b.Columns {
			v := object{"headerCell": cellValue(column.HeaderCell)}
			if column.WidthPx != nil {
				v["widthPx"] = *column.WidthPx
			}
			columns = append(columns, v)
		}
		rows := make([]any, 0, len(b.Rows))
		for _, row := range b.Rows {
			cells := make([]any, 0, len(row))
			for _, cell := range row {
				cells = append(cells, cellValue(cell))
			}
			rows = append(rows, cells)
		}
		return object{"type": "table", "columns": columns, "rows": rows, "styles": blockStylesValue(b.Styles)}
	case *Image:
		v := object{"type": "image", "target": targetValue(b.Target), "styles": imageStylesValue(b.Styles)}
		if b.Caption != "" {
			v["caption"] = b.Caption
		}
		if b.Alt != "" {
			v["alt"] = b.Alt
		}
		return v
	case *Break:
		return object{"type": "break"}
	case *MacroBlock:
		return object{"type": "macroBlock", "name": b.Name, "params": paramsValue(b.Params)}
	default:
		panic(fmt.Sprintf("uniast: unknown block %T", b))
	}
}

func cellValue(c TableCell) object {
	v := object{"content": inlinesValue(c.Content), "styles": blockStylesValue(c.Styles)}
	if c.ColSpan != nil {
		v["colSpan"] = *c.ColSpan
	}
	if c.RowSpan != nil {
		v["rowSpan"] = *c.RowSpan
	}
	return v
}

func inlinesValue(contents []InlineContent) []any {
	out := make([]any, 0, len(contents))
	for _, c := range contents {
		out = append(out, inlineValue(c))
	}
	return out
}

func inlineValue(c InlineContent) object {
	switch c := c.(type) {
	case *Text:
		return textValue(*c)
	case *Link:
		content := make([]any, 0, len(c.Content))
		for _, t := range c.Content {
			content = append(content, textValue(t))
		}
		return object{"type": "link", "content": content, "target": targetValue(c.Target)}
	case *InlineImage:
		v := object{"type": "image", "target": targetValue(c.Target), "styles": imageStylesValue(c.Styles)}
		if c.Alt != "" {
			v["alt"] = c.Alt
		}
		return v
	case *InlineMacro:
		return object{"type": "inlineMacro", "name": c.Name, "params": paramsValue(c.Params)}
	default:
		panic(fmt.Sprintf("uniast: unknown inline content %T", c))
	}
}

func textValue(t Text) object {
	styles := object{}
	if t.Styles.Bold {
		styles["bold"] = true
	}
	if t.Styles.Italic {
		styles["italic"] = true
	}
	if t.Styles.Strikethrough {
		styles["strikethrough"] = true
	}
	if t.Styles.Code {
		styles["code"] = true
	}
	return object{"type": "text", "content": t.Content, "styles": styles}
}

func targetValue(t LinkTarget) object {
	switch t := t.(type) {
	case *ExternalTarget:
		return object{"type": "external", "url": t.URL}
	case *InternalTarget:
		v := object{"type": "internal", "rawReference": t.RawReference, "parsedReference": nil}
		if ref := t.ParsedReference; ref != nil {
			parsed := object{"kind": ref.Kind.String()}
			if ref.Wiki != "" {
				parsed["wiki"] = ref.Wiki
			}
			if len(ref.Spaces) > 0 {
				spaces := make([]any, 0, len(ref.Spaces))
				for _, s := range ref.Spaces {
					spaces = append(spaces, s)
				}
				parsed["spaces"] = spaces
			}
			if ref.Page != "" {
				parsed["page"] = ref.Page
			}
			if ref.Attachment != "" {
				parsed["attachment"] = ref.Attachment
			}
			if ref.Key != "" {
				parsed["key"] = ref.Key
			}
			v["parsedReference"] = parsed
		}
		return v
	default:
		panic(fmt.Sprintf("uniast: unknown link target %T", t))
	}
}

func blockStylesValue(s BlockStyles) object {
	v := object{}
	if s.TextColor != "" {
		v["textColor"] = s.TextColor
	}
	if s.BackgroundColor != "" {
		v["backgroundColor"] = s.BackgroundColor
	}
	if s.TextAlignment != "" {
		v["textAlignment"] = string(s.TextAlignment)
	}
	return v
}

func imageStylesValue(s ImageStyles) object {
	v := object{}
	if s.Alignment != "" {
		v["alignment"] = string(s.Alignment)
	}
	if s.WidthPx != 0 {
		v["widthPx"] = s.WidthPx
	}
	if s.HeightPx != 0 {
		v["heightPx"] = s.HeightPx
	}
	return v
}

func paramsValue(p Params) object {
	v := make(object, len(p))
	for k, value := range p {
		v[k] = value
	}
	return v
}
