// Package uniast defines the Universal AST: a source-agnostic document tree
// of blocks and inline contents exchanged between Markdown and other
// document representations.
//
// Block, InlineContent and LinkTarget are closed sum types: only the types of
// this package implement them, and consumers are expected to switch over them
// exhaustively.
package uniast

import "github.com/gerunddev/uniast/reference"

// UniAst is a whole document.
type UniAst struct {
	Blocks []Block
}

// Block is one of Paragraph, Heading, Quote, List, Code, Table, Image, Break
// or MacroBlock.
type Block interface {
	isBlock()
}

// InlineContent is one of Text, Link, InlineImage or InlineMacro.
type InlineContent interface {
	isInlineContent()
}

// LinkTarget is one of ExternalTarget or InternalTarget.
type LinkTarget interface {
	isLinkTarget()
}

// Alignment of a block or an image.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// BlockStyles are presentation attributes shared by most blocks.
type BlockStyles struct {
	TextColor       string
	BackgroundColor string
	TextAlignment   Alignment
}

// TextStyles are independent inline style flags.
type TextStyles struct {
	Bold          bool
	Italic        bool
	Strikethrough bool
	Code          bool
}

// ImageStyles are presentation attributes of an image.
type ImageStyles struct {
	Alignment Alignment
	WidthPx   int
	HeightPx  int
}

// Params holds macro parameters. Values are always strings; numbers are kept
// in their decimal form.
type Params map[string]string

type Paragraph struct {
	Content []InlineContent
	Styles  BlockStyles
}

type Heading struct {
	Level   int
	Content []InlineContent
	Styles  BlockStyles
}

type Quote struct {
	Content []Block
	Styles  BlockStyles
}

type List struct {
	Items  []ListItem
	Styles BlockStyles
}

// ListItem is an entry of a List. Number is set for ordered lists, Checked for
// task lists, neither for bullet lists.
type ListItem struct {
	Number  *int
	Checked *bool
	Content []Block
	Styles  BlockStyles
}

// Code is a code block. An empty Language means none was given.
type Code struct {
	Content  string
	Language string
}

// Table columns carry the header cells; Rows never repeat the header row.
type Table struct {
	Columns []TableColumn
	Rows    [][]TableCell
	Styles  BlockStyles
}

type TableColumn struct {
	HeaderCell TableCell
	WidthPx    *float64
}

type TableCell struct {
	Content []InlineContent
	Styles  BlockStyles
	ColSpan *int
	RowSpan *int
}

// Image is a standalone image block.
type Image struct {
	Target  LinkTarget
	Caption string
	Alt     string
	Styles  ImageStyles
}

// Break is a thematic break.
type Break struct{}

// MacroBlock is a macro standing on its own line.
type MacroBlock struct {
	Name   string
	Params Params
}

type Text struct {
	Content string
	Styles  TextStyles
}

// Link content only ever holds text.
type Link struct {
	Content []Text
	Target  LinkTarget
}

type InlineImage struct {
	Target LinkTarget
	Alt    string
	Styles ImageStyles
}

type InlineMacro struct {
	Name   string
	Params Params
}

type ExternalTarget struct {
	URL string
}

// InternalTarget points at a wiki entity. ParsedReference is nil when the raw
// reference could not be resolved; RawReference is always kept.
type InternalTarget struct {
	RawReference    string
	ParsedReference *reference.Reference
}

func (*Paragraph) isBlock()  {}
func (*Heading) isBlock()    {}
func (*Quote) isBlock()      {}
func (*List) isBlock()       {}
func (*Code) isBlock()       {}
func (*Table) isBlock()      {}
func (*Image) isBlock()      {}
func (*Break) isBlock()      {}
func (*MacroBlock) isBlock() {}

func (*Text) isInlineContent()        {}
func (*Link) isInlineContent()        {}
func (*InlineImage) isInlineContent() {}
func (*InlineMacro) isInlineContent() {}

func (*ExternalTarget) isLinkTarget() {}
func (*InternalTarget) isLinkTarget() {}

// IsZero reports whether no style is set.
func (s TextStyles) IsZero() bool {
	return s == TextStyles{}
}

// WithBold returns a copy of s with Bold set.
func (s TextStyles) WithBold() TextStyles {
	s.Bold = true
	return s
}

// WithItalic returns a copy of s with Italic set.
func (s TextStyles) WithItalic() TextStyles {
	s.Italic = true
	return s
}

// WithStrikethrough returns a copy of s with Strikethrough set.
func (s TextStyles) WithStrikethrough() TextStyles {
	s.Strikethrough = true
	return s
}

// WithCode returns a copy of s with Code set.
func (s TextStyles) WithCode() TextStyles {
	s.Code = true
	return s
}

// Int returns a pointer to v, for optional integer fields.
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v, for optional boolean fields.
func Bool(v bool) *bool {
	return &v
}
