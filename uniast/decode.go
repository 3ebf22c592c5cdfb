package uniast

import (
	"fmt"
	"math"

	"github.com/gerunddev/uniast/reference"
)

// decodeError locates a decoding failure inside the document.
type decodeError struct {
	path string
	msg  string
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("uniast: %s: %s", e.path, e.msg)
}

func failf(path, format string, args ...any) error {
	return &decodeError{path: path, msg: fmt.Sprintf(format, args...)}
}

func decodeDocument(v any) (*UniAst, error) {
	obj, err := asObject(v, "$")
	if err != nil {
		return nil, err
	}
	blocks, err := decodeBlocks(obj["blocks"], "$.blocks")
	if err != nil {
		return nil, err
	}
	return &UniAst{Blocks: blocks}, nil
}

func decodeBlocks(v any, path string) ([]Block, error) {
	items, err := asArray(v, path)
	if err != nil {
		return nil, err
	}
	blocks := make([]Block, 0, len(items))
	for i, item := range items {
		b, err := decodeBlock(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeBlock(v any, path string) (Block, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	kind, _ := obj["type"].(string)
	switch kind {
	case "paragraph":
		content, err := decodeInlines(obj["content"], path+".content")
		if err != nil {
			return nil, err
		}
		return &Paragraph{Content: content, Styles: decodeBlockStyles(obj["styles"])}, nil
	case "heading":
		level, err := asInt(obj["level"], path+".level")
		if err != nil {
			return nil, err
		}
		if level < 1 || level > 6 {
			return nil, failf(path+".level", "heading level %d out of range 1..6", level)
		}
		content, err := decodeInlines(obj["content"], path+".content")
		if err != nil {
			return nil, err
		}
		return &Heading{Level: level, Content: content, Styles: decodeBlockStyles(obj["styles"])}, nil
	case "quote":
		content, err := decodeBlocks(obj["content"], path+".content")
		if err != nil {
			return nil, err
		}
		return &Quote{Content: content, Styles: decodeBlockStyles(obj["styles"])}, nil
	case "list":
		return decodeList(obj, path)
	case "code":
		content, _ := obj["content"].(string)
		language, _ := obj["language"].(string)
		return &Code{Content: content, Language: language}, nil
	case "table":
		return decodeTable(obj, path)
	case "image":
		target, err := decodeTarget(obj["target"], path+".target")
		if err != nil {
			return nil, err
		}
		caption, _ := obj["caption"].(string)
		alt, _ := obj["alt"].(string)
		return &Image{Target: target, Caption: caption, Alt: alt, Styles: decodeImageStyles(obj["styles"])}, nil
	case "break":
		return &Break{}, nil
	case "macroBlock":
		name, _ := obj["name"].(string)
		params, err := decodeParams(obj["params"], path+".params")
		if err != nil {
			return nil, err
		}
		return &MacroBlock{Name: name, Params: params}, nil
	default:
		return nil, failf(path+".type", "unknown block type %q", kind)
	}
}

func decodeList(obj map[string]any, path string) (*List, error) {
	items, err := asArray(obj["items"], path+".items")
	if err != nil {
		return nil, err
	}
	list := &List{Styles: decodeBlockStyles(obj["styles"])}
	for i, item := range items {
		itemPath := fmt.Sprintf("%s.items[%d]", path, i)
		itemObj, err := asObject(item, itemPath)
		if err != nil {
			return nil, err
		}
		content, err := decodeBlocks(itemObj["content"], itemPath+".content")
		if err != nil {
			return nil, err
		}
		li := ListItem{Content: content, Styles: decodeBlockStyles(itemObj["styles"])}
		if raw, ok := itemObj["number"]; ok && raw != nil {
			n, err := asInt(raw, itemPath+".number")
			if err != nil {
				return nil, err
			}
			li.Number = Int(n)
		}
		if raw, ok := itemObj["checked"].(bool); ok {
			li.Checked = Bool(raw)
		}
		list.Items = append(list.Items, li)
	}
	return list, nil
}

func decodeTable(obj map[string]any, path string) (*Table, error) {
	columns, err := asArray(obj["columns"], path+".columns")
	if err != nil {
		return nil, err
	}
	table := &Table{Styles: decodeBlockStyles(obj["styles"])}
	for i, column := range columns {
		columnPath := fmt.Sprintf("%s.columns[%d]", path, i)
		columnObj, err := asObject(column, columnPath)
		if err != nil {
			return nil, err
		}
		header, err := decodeCell(columnObj["headerCell"], columnPath+".headerCell")
		if err != nil {
			return nil, err
		}
		tc := TableColumn{HeaderCell: header}
		if width, ok := columnObj["widthPx"].(float64); ok {
			tc.WidthPx = &width
		}
		table.Columns = append(table.Columns, tc)
	}

	rows, err := asArray(obj["rows"], path+".rows")
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		rowPath := fmt.Sprintf("%s.rows[%d]", path, i)
		cells, err := asArray(row, rowPath)
		if err != nil {
			return nil, err
		}
		decoded := make([]TableCell, 0, len(cells))
		for j, cell := range cells {
			c, err := decodeCell(cell, fmt.Sprintf("%s[%d]", rowPath, j))
			if err != nil {
				return nil, err
			}
			decoded = append(decoded, c)
		}
		table.Rows = append(table.Rows, decoded)
	}
	return table, nil
}

func decodeCell(v any, path string) (TableCell, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return TableCell{}, err
	}
	content, err := decodeInlines(obj["content"], path+".content")
	if err != nil {
		return TableCell{}, err
	}
	cell := TableCell{Content: content, Styles: decodeBlockStyles(obj["styles"])}
	if raw, ok := obj["colSpan"]; ok {
		n, err := asInt(raw, path+".colSpan")
		if err != nil {
			return TableCell{}, err
		}
		cell.ColSpan = Int(n)
	}
	if raw, ok := obj["rowSpan"]; ok {
		n, err := asInt(raw, path+".rowSpan")
		if err != nil {
			return TableCell{}, err
		}
		cell.RowSpan = Int(n)
	}
	return cell, nil
}

func decodeInlines(v any, path string) ([]InlineContent, error) {
	items, err := asArray(v, path)
	if err != nil {
		return nil, err
	}
	contents := make([]InlineContent, 0, len(items))
	for i, item := range items {
		c, err := decodeInline(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, nil
}

func decodeInline(v any, path string) (InlineContent, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	kind, _ := obj["type"].(string)
	switch kind {
	case "text":
		t := decodeText(obj)
		return &t, nil
	case "link":
		items, err := asArray(obj["content"], path+".content")
		if err != nil {
			return nil, err
		}
		link := &Link{}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s.content[%d]", path, i)
			itemObj, err := asObject(item, itemPath)
			if err != nil {
				return nil, err
			}
			if t, _ := itemObj["type"].(string); t != "text" {
				return nil, failf(itemPath, "link content must be text, got %q", t)
			}
			link.Content = append(link.Content, decodeText(itemObj))
		}
		link.Target, err = decodeTarget(obj["target"], path+".target")
		if err != nil {
			return nil, err
		}
		return link, nil
	case "image":
		target, err := decodeTarget(obj["target"], path+".target")
		if err != nil {
			return nil, err
		}
		alt, _ := obj["alt"].(string)
		return &InlineImage{Target: target, Alt: alt, Styles: decodeImageStyles(obj["styles"])}, nil
	case "inlineMacro":
		name, _ := obj["name"].(string)
		params, err := decodeParams(obj["params"], path+".params")
		if err != nil {
			return nil, err
		}
		return &InlineMacro{Name: name, Params: params}, nil
	default:
		return nil, failf(path+".type", "unknown inline type %q", kind)
	}
}

func decodeText(obj map[string]any) Text {
	content, _ := obj["content"].(string)
	styles, _ := obj["styles"].(map[string]any)
	flag := func(name string) bool {
		b, _ := styles[name].(bool)
		return b
	}
	return Text{
		Content: content,
		Styles: TextStyles{
			Bold:          flag("bold"),
			Italic:        flag("italic"),
			Strikethrough: flag("strikethrough"),
			Code:          flag("code"),
		},
	}
}

func decodeTarget(v any, path string) (LinkTarget, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	switch kind, _ := obj["type"].(string); kind {
	case "external":
		url, _ := obj["url"].(string)
		return &ExternalTarget{URL: url}, nil
	case "internal":
		raw, _ := obj["rawReference"].(string)
		target := &InternalTarget{RawReference: raw}
		if parsed, ok := obj["parsedReference"].(map[string]any); ok {
			ref, err := decodeReference(parsed, path+".parsedReference")
			if err != nil {
				return nil, err
			}
			target.ParsedReference = ref
		}
		return target, nil
	default:
		return nil, failf(path+".type", "unknown target type %q", kind)
	}
}

func decodeReference(obj map[string]any, path string) (*reference.Reference, error) {
	kindName, _ := obj["kind"].(string)
	kind, err := reference.ParseKind(kindName)
	if err != nil {
		return nil, failf(path+".kind", "%v", err)
	}
	ref := &reference.Reference{Kind: kind}
	ref.Wiki, _ = obj["wiki"].(string)
	ref.Page, _ = obj["page"].(string)
	ref.Attachment, _ = obj["attachment"].(string)
	ref.Key, _ = obj["key"].(string)
	if spaces, ok := obj["spaces"].([]any); ok {
		for _, s := range spaces {
			name, _ := s.(string)
			ref.Spaces = append(ref.Spaces, name)
		}
	}
	return ref, nil
}

func decodeParams(v any, path string) (Params, error) {
	params := Params{}
	if v == nil {
		return params, nil
	}
	obj, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	for k, raw := range obj {
		s, ok := raw.(string)
		if !ok {
			return nil, failf(path+"."+k, "parameter values must be strings, got %T", raw)
		}
		params[k] = s
	}
	return params, nil
}

func decodeBlockStyles(v any) BlockStyles {
	obj, _ := v.(map[string]any)
	var s BlockStyles
	s.TextColor, _ = obj["textColor"].(string)
	s.BackgroundColor, _ = obj["backgroundColor"].(string)
	if a, ok := obj["textAlignment"].(string); ok {
		s.TextAlignment = Alignment(a)
	}
	return s
}

func decodeImageStyles(v any) ImageStyles {
	obj, _ := v.(map[string]any)
	var s ImageStyles
	if a, ok := obj["alignment"].(string); ok {
		s.Alignment = Alignment(a)
	}
	if w, ok := obj["widthPx"].(float64); ok {
		s.WidthPx = int(w)
	}
	if h, ok := obj["heightPx"].(float64); ok {
		s.HeightPx = int(h)
	}
	return s
}

func asObject(v any, path string) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, failf(path, "expected an object, got %T", v)
	}
	return obj, nil
}

func asArray(v any, path string) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, failf(path, "expected an array, got %T", v)
	}
	return arr, nil
}

func asInt(v any, path string) (int, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, failf(path, "expected an integer, got %v", v)
	}
	return int(f), nil
}
