// Package convert turns Markdown into UniAST and back.
//
// Parsing goes through goldmark (CommonMark plus GFM tables, strikethrough
// and task lists). Every run of plain text goldmark produces is then scanned
// for XWiki inline syntax: [[links]], ![[images]] and {{macros /}}.
//
// UniAST has no line break node. Soft and hard line breaks both become "\n"
// in text, so a hard break ("a  \nb" or "a\\\nb") is written back as a soft
// one.
package convert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/gerunddev/uniast/internal/logger"
	"github.com/gerunddev/uniast/reference"
	"github.com/gerunddev/uniast/uniast"
)

const (
	directionToUniAst   = "markdown-to-uniast"
	directionToMarkdown = "uniast-to-markdown"
)

// Parser converts Markdown documents to UniAST.
type Parser struct {
	refs reference.Context
	md   goldmark.Markdown
	log  *logger.Logger
}

// NewParser creates a parser resolving internal references with refs. A nil
// refs resolves nothing.
func NewParser(refs reference.Context, opts ...Option) *Parser {
	o := newOptions(opts)
	if refs == nil {
		refs = reference.None{}
	}
	return &Parser{
		refs: refs,
		log:  o.log,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
			),
		),
	}
}

// MarkdownToUniAst parses markdown with a default parser.
func MarkdownToUniAst(ctx context.Context, markdown string, refs reference.Context) (*uniast.UniAst, error) {
	return NewParser(refs).Parse(ctx, markdown)
}

// Parse converts a whole Markdown document. Reference resolution failures are
// not errors; unsupported Markdown constructs are.
func (p *Parser) Parse(ctx context.Context, markdown string) (*uniast.UniAst, error) {
	id := uuid.NewString()
	start := time.Now()
	p.log.ConversionStarted(id, directionToUniAst, len(markdown))

	doc, err := p.parse(ctx, []byte(markdown))
	if err != nil {
		p.log.ConversionError(id, directionToUniAst, err)
		return nil, err
	}

	p.log.ConversionCompleted(id, directionToUniAst, len(doc.Blocks), time.Since(start))
	return doc, nil
}

func (p *Parser) parse(ctx context.Context, source []byte) (*uniast.UniAst, error) {
	pc := parser.NewContext()
	root := p.md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	if defs := pc.References(); len(defs) > 0 {
		return nil, fmt.Errorf("%w: link reference definition [%s]", ErrUnsupportedNode, defs[0].Label())
	}

	c := &blockConverter{
		ctx:    ctx,
		source: source,
		refs:   p.refs,
		log:    p.log,
	}
	blocks, err := c.blocks(root)
	if err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []uniast.Block{}
	}
	return &uniast.UniAst{Blocks: blocks}, nil
}

// blockConverter maps goldmark block nodes to UniAST blocks. One is created
// per parse.
type blockConverter struct {
	ctx    context.Context
	source []byte
	refs   reference.Context
	log    *logger.Logger
}

func (c *blockConverter) blocks(parent ast.Node) ([]uniast.Block, error) {
	var blocks []uniast.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b, err := c.block(n)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func (c *blockConverter) block(n ast.Node) (uniast.Block, error) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return c.paragraph(n)

	case *ast.Heading:
		if node.Level < 1 || node.Level > 6 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidHeadingLevel, node.Level)
		}
		content, err := c.inlines(node)
		if err != nil {
			return nil, err
		}
		return &uniast.Heading{Level: node.Level, Content: content}, nil

	case *ast.Blockquote:
		content, err := c.blocks(node)
		if err != nil {
			return nil, err
		}
		return &uniast.Quote{Content: content}, nil

	case *ast.List:
		return c.list(node)

	case *ast.FencedCodeBlock:
		return &uniast.Code{
			Content:  c.lines(node),
			Language: string(node.Language(c.source)),
		}, nil

	case *ast.CodeBlock:
		return &uniast.Code{Content: c.lines(node)}, nil

	case *extast.Table:
		return c.table(node)

	case *ast.ThematicBreak:
		return &uniast.Break{}, nil

	default:
		return nil, fmt.Errorf("%w: %s block", ErrUnsupportedNode, n.Kind())
	}
}

// paragraph converts a paragraph, promoting it to a MacroBlock when a macro
// is its only content.
func (c *blockConverter) paragraph(n ast.Node) (uniast.Block, error) {
	content, err := c.inlines(n)
	if err != nil {
		return nil, err
	}
	if len(content) == 1 {
		if macro, ok := content[0].(*uniast.InlineMacro); ok {
			return &uniast.MacroBlock{Name: macro.Name, Params: macro.Params}, nil
		}
	}
	if content == nil {
		content = []uniast.InlineContent{}
	}
	return &uniast.Paragraph{Content: content}, nil
}

func (c *blockConverter) list(list *ast.List) (*uniast.List, error) {
	out := &uniast.List{Items: []uniast.ListItem{}}
	index := 0
	for n := list.FirstChild(); n != nil; n = n.NextSibling() {
		li, ok := n.(*ast.ListItem)
		if !ok {
			return nil, fmt.Errorf("%w: %s inside a list", ErrUnsupportedNode, n.Kind())
		}
		content, err := c.blocks(li)
		if err != nil {
			return nil, err
		}
		item := uniast.ListItem{Content: content}
		if list.IsOrdered() {
			item.Number = uniast.Int(list.Start + index)
		}
		if box := taskCheckBox(li); box != nil {
			item.Checked = uniast.Bool(box.IsChecked)
		}
		out.Items = append(out.Items, item)
		index++
	}
	return out, nil
}

// taskCheckBox returns the checkbox opening a list item, if any.
func taskCheckBox(li *ast.ListItem) *extast.TaskCheckBox {
	first := li.FirstChild()
	if first == nil {
		return nil
	}
	box, _ := first.FirstChild().(*extast.TaskCheckBox)
	return box
}

func (c *blockConverter) table(t *extast.Table) (*uniast.Table, error) {
	out := &uniast.Table{Rows: [][]uniast.TableCell{}}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		cells, err := c.cells(row)
		if err != nil {
			return nil, err
		}
		switch row.(type) {
		case *extast.TableHeader:
			for _, cell := range cells {
				out.Columns = append(out.Columns, uniast.TableColumn{HeaderCell: cell})
			}
		case *extast.TableRow:
			out.Rows = append(out.Rows, cells)
		default:
			return nil, fmt.Errorf("%w: %s inside a table", ErrUnsupportedNode, row.Kind())
		}
	}
	return out, nil
}

func (c *blockConverter) cells(row ast.Node) ([]uniast.TableCell, error) {
	var cells []uniast.TableCell
	for n := row.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*extast.TableCell); !ok {
			return nil, fmt.Errorf("%w: %s inside a table row", ErrUnsupportedNode, n.Kind())
		}
		content, err := c.inlines(n)
		if err != nil {
			return nil, err
		}
		if content == nil {
			content = []uniast.InlineContent{}
		}
		cells = append(cells, uniast.TableCell{Content: content})
	}
	return cells, nil
}

// lines returns the raw content of a code block without its final newline.
func (c *blockConverter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
