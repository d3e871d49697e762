// Package htmldoc parses editor HTML into a small, closed document model
// that the DOCX builder consumes.
package htmldoc

import "github.com/tsawler/docxhtml/units"

// Kind identifies the node types of a parsed document. The set is closed:
// every HTML construct the parser accepts maps to one of these.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindList
	KindListItem
	KindTable
	KindRow
	KindCell
	KindHorizontalRule
	KindRun
	KindImage
	KindHyperlink
	KindLineBreak
	KindTab
	KindPageBreak
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindListItem:
		return "list item"
	case KindTable:
		return "table"
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	case KindHorizontalRule:
		return "horizontal rule"
	case KindRun:
		return "run"
	case KindImage:
		return "image"
	case KindHyperlink:
		return "hyperlink"
	case KindLineBreak:
		return "line break"
	case KindTab:
		return "tab"
	case KindPageBreak:
		return "page break"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// Document is a parsed HTML document.
type Document struct {
	Blocks []Block
}

// Block is a block-level node: *Paragraph, *List, *Table or
// *HorizontalRule.
type Block interface {
	Kind() Kind
}

// Inline is a node inside a paragraph: *Run, *Image, *Hyperlink,
// *LineBreak, *Tab, *PageBreak or *Field.
type Inline interface {
	Kind() Kind
}

// Paragraph is a <p>, heading or anonymous block of inline content.
type Paragraph struct {
	Level   int    // heading level 1-6, 0 for body paragraphs
	StyleID string // from data-style-id
	Style   ParagraphStyle
	Inlines []Inline
}

func (p *Paragraph) Kind() Kind {
	if p.Level > 0 {
		return KindHeading
	}
	return KindParagraph
}

// IsEmpty reports whether the paragraph has no content at all.
func (p *Paragraph) IsEmpty() bool {
	return len(p.Inlines) == 0
}

// List is a <ul> or <ol>.
type List struct {
	Ordered bool
	Start   int
	// Level is the nesting level recorded in data-level. Zero means the
	// level follows from how deep the list is nested.
	Level int
	Items []*ListItem
}

func (*List) Kind() Kind { return KindList }

// ListItem holds the paragraphs of an <li> and any lists nested in it, in
// document order.
type ListItem struct {
	Blocks []Block
}

func (*ListItem) Kind() Kind { return KindListItem }

// Table is a <table>.
type Table struct {
	Style TableStyle
	Rows  []*Row
}

func (*Table) Kind() Kind { return KindTable }

// Row is a <tr>.
type Row struct {
	Height int  // twips, 0 when unset
	Header bool // all cells are <th> or the row is inside <thead>
	Cells  []*Cell
}

func (*Row) Kind() Kind { return KindRow }

// Cell is a <td> or <th>.
type Cell struct {
	ColSpan int
	RowSpan int
	Style   CellStyle
	Blocks  []Block
}

func (*Cell) Kind() Kind { return KindCell }

// HorizontalRule is an <hr>.
type HorizontalRule struct{}

func (*HorizontalRule) Kind() Kind { return KindHorizontalRule }

// Run is a stretch of text with uniform formatting.
type Run struct {
	Text  string
	Style RunStyle
}

func (*Run) Kind() Kind { return KindRun }

// Image is an <img>. Data is set for data: URIs; Src keeps any other
// source. Sizes are zero when the markup does not carry them.
type Image struct {
	ID          string // data-image-id
	Src         string
	ContentType string
	Data        []byte
	Alt         string
	WidthEMU    int64
	HeightEMU   int64
	WidthPx     float64
	HeightPx    float64
}

func (*Image) Kind() Kind { return KindImage }

// Hyperlink is an <a href>.
type Hyperlink struct {
	URL     string
	Inlines []Inline
}

func (*Hyperlink) Kind() Kind { return KindHyperlink }

// LineBreak is a plain <br>.
type LineBreak struct{}

func (*LineBreak) Kind() Kind { return KindLineBreak }

// Tab is an em space written by the editor for a tab stop.
type Tab struct {
	Style RunStyle
}

func (*Tab) Kind() Kind { return KindTab }

// PageBreak is <br class="page-break">.
type PageBreak struct{}

func (*PageBreak) Kind() Kind { return KindPageBreak }

// FieldType names a dynamic field.
type FieldType int

const (
	FieldPage FieldType = iota + 1
	FieldPages
)

// Field is a {page} or {pages} placeholder.
type Field struct {
	Type  FieldType
	Style RunStyle
}

func (*Field) Kind() Kind { return KindField }

// RunStyle is resolved character formatting. Zero values mean "not set".
type RunStyle struct {
	Bold       bool
	Italic     bool
	Underline  bool
	Strike     bool
	VertAlign  string // superscript or subscript
	Font       string
	Size       units.HalfPoints
	Color      string // rrggbb
	Background string // rrggbb
	Caps       bool
	SmallCaps  bool
	Spacing    int // twips
}

// ParagraphStyle is resolved paragraph formatting. Lengths are twips.
type ParagraphStyle struct {
	Align           string // left, center, right, both
	IndentLeft      *int
	IndentRight     *int
	IndentFirst     *int // negative for a hanging indent
	SpaceBefore     *int
	SpaceAfter      *int
	Line            int    // 240ths of a line for auto, twips otherwise
	LineRule        string // auto or exact
	Background      string
	Borders         Borders
	PageBreakBefore bool
}

// Border is one side of a box border.
type Border struct {
	Style   string // single, double, dotted, dashed, none
	Eighths int    // width in eighths of a point
	Color   string // rrggbb
}

// Borders holds the four sides of a box; nil sides are unset.
type Borders struct {
	Top, Right, Bottom, Left *Border
}

// IsZero reports whether no side is set.
func (b Borders) IsZero() bool {
	return b.Top == nil && b.Right == nil && b.Bottom == nil && b.Left == nil
}

// Width is a table or cell width: twips, or a percentage of the available
// width.
type Width struct {
	Twips   int
	Percent float64
}

// IsZero reports whether the width is unset.
func (w Width) IsZero() bool {
	return w.Twips == 0 && w.Percent == 0
}

// TableStyle is resolved table formatting.
type TableStyle struct {
	Width   Width
	Align   string // center or right
	Borders Borders
}

// CellStyle is resolved cell formatting. Padding is in twips.
type CellStyle struct {
	Width         Width
	Background    string
	VAlign        string  // top, center, bottom
	Padding       [4]*int // top, right, bottom, left
	Borders       Borders
	NoWrap        bool
	TextDirection string // tbRl or btLr
}
