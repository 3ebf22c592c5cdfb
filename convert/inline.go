package convert

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/gerunddev/uniast/uniast"
)

// inlines converts the inline children of a block.
func (c *blockConverter) inlines(parent ast.Node) ([]uniast.InlineContent, error) {
	return c.walk(parent, uniast.TextStyles{})
}

// walk converts the children of parent under the ambient styles. goldmark
// splits plain text around every bracket it failed to match, so consecutive
// text leaves are gathered into one run before being scanned for wiki syntax.
func (c *blockConverter) walk(parent ast.Node, styles uniast.TextStyles) ([]uniast.InlineContent, error) {
	var (
		out []uniast.InlineContent
		run strings.Builder
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		out = append(out, c.scan(run.String(), styles)...)
		run.Reset()
	}

	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			run.Write(node.Segment.Value(c.source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				run.WriteByte('\n')
			}
			continue
		case *ast.String:
			run.Write(node.Value)
			continue
		case *extast.TaskCheckBox:
			continue
		}

		flush()
		contents, err := c.inline(n, styles)
		if err != nil {
			return nil, err
		}
		out = append(out, contents...)
	}
	flush()

	return mergeTexts(out), nil
}

func (c *blockConverter) inline(n ast.Node, styles uniast.TextStyles) ([]uniast.InlineContent, error) {
	switch node := n.(type) {
	case *ast.Emphasis:
		if node.Level >= 2 {
			return c.walk(node, styles.WithBold())
		}
		return c.walk(node, styles.WithItalic())

	case *extast.Strikethrough:
		return c.walk(node, styles.WithStrikethrough())

	case *ast.CodeSpan:
		content := strings.ReplaceAll(c.plainText(node), "\n", " ")
		return []uniast.InlineContent{
			&uniast.Text{Content: content, Styles: styles.WithCode()},
		}, nil

	case *ast.Link:
		content, err := c.linkContent(node, styles)
		if err != nil {
			return nil, err
		}
		return []uniast.InlineContent{&uniast.Link{
			Content: content,
			Target:  &uniast.ExternalTarget{URL: string(node.Destination)},
		}}, nil

	case *ast.AutoLink:
		return []uniast.InlineContent{&uniast.Link{
			Content: []uniast.Text{{Content: string(node.Label(c.source)), Styles: styles}},
			Target:  &uniast.ExternalTarget{URL: string(node.URL(c.source))},
		}}, nil

	case *ast.Image:
		return []uniast.InlineContent{&uniast.InlineImage{
			Target: &uniast.ExternalTarget{URL: string(node.Destination)},
			Alt:    c.plainText(node),
		}}, nil

	default:
		return nil, fmt.Errorf("%w: %s inline", ErrUnsupportedNode, n.Kind())
	}
}

// linkContent converts the label of a Markdown link, which may only style
// plain text.
func (c *blockConverter) linkContent(link *ast.Link, styles uniast.TextStyles) ([]uniast.Text, error) {
	contents, err := c.walk(link, styles)
	if err != nil {
		return nil, err
	}
	texts := make([]uniast.Text, 0, len(contents))
	for _, content := range contents {
		t, ok := content.(*uniast.Text)
		if !ok {
			return nil, fmt.Errorf("%w: %T inside a link", ErrInvalidLinkContent, content)
		}
		texts = append(texts, *t)
	}
	return texts, nil
}

// plainText concatenates every text leaf below n.
func (c *blockConverter) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch leaf := child.(type) {
		case *ast.Text:
			b.Write(leaf.Segment.Value(c.source))
			if leaf.SoftLineBreak() || leaf.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(leaf.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// mergeTexts joins adjacent texts carrying the same styles.
func mergeTexts(contents []uniast.InlineContent) []uniast.InlineContent {
	var merged []uniast.InlineContent
	for _, content := range contents {
		t, ok := content.(*uniast.Text)
		if !ok {
			merged = append(merged, content)
			continue
		}
		if len(merged) > 0 {
			if prev, ok := merged[len(merged)-1].(*uniast.Text); ok && prev.Styles == t.Styles {
				merged[len(merged)-1] = &uniast.Text{Content: prev.Content + t.Content, Styles: t.Styles}
				continue
			}
		}
		merged = append(merged, t)
	}
	return merged
}
