package htmldoc

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docxhtml/units"
)

// Placeholders written by the editor for page fields.
const (
	PagePlaceholder  = "{page}"
	PagesPlaceholder = "{pages}"
)

// tabText is the character the editor uses for a tab stop.
const tabText = "\u2003"

// Parse reads an HTML document or fragment. Any well-formed markup is
// accepted: unknown elements are descended into and script, style and head
// content is ignored.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	body := findElement(root, atom.Body)
	if body == nil {
		body = root
	}
	return &Document{Blocks: parseBlocks(body, blockContext{})}, nil
}

// ParseString is Parse for a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// blockContext is inherited by the blocks of a container.
type blockContext struct {
	run      RunStyle // character formatting inherited from ancestors
	styleID  string   // paragraph style applied to unstyled paragraphs
	preserve bool     // inside <pre>
}

// blockBuilder collects the blocks of one container. Loose inline content
// between blocks is gathered into anonymous paragraphs.
type blockBuilder struct {
	ctx     blockContext
	out     []Block
	pending *Paragraph
}

func parseBlocks(container *html.Node, ctx blockContext) []Block {
	b := &blockBuilder{ctx: ctx}
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		b.node(c)
	}
	b.flush()
	return b.out
}

func (b *blockBuilder) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.inline(n)
		return
	case html.ElementNode:
	default:
		return
	}

	if shouldSkipElement(n.DataAtom) {
		return
	}

	switch n.DataAtom {
	case atom.P, atom.Pre:
		b.flush()
		b.emit(b.paragraph(n, 0))
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.flush()
		b.emit(b.paragraph(n, int(n.Data[1]-'0')))
	case atom.Ul, atom.Ol:
		b.flush()
		b.emit(b.list(n))
	case atom.Table:
		b.flush()
		b.emit(b.table(n))
	case atom.Hr:
		b.flush()
		b.emit(&HorizontalRule{})
	case atom.Blockquote:
		b.flush()
		ctx := b.childContext(n)
		if ctx.styleID == "" {
			ctx.styleID = "Quote"
		}
		b.out = append(b.out, parseBlocks(n, ctx)...)
	default:
		if isBlockContainer(n) {
			b.flush()
			b.out = append(b.out, parseBlocks(n, b.childContext(n))...)
			return
		}
		b.inline(n)
	}
}

func (b *blockBuilder) emit(blk Block) {
	if blk != nil {
		b.out = append(b.out, blk)
	}
}

// inline adds loose inline content to the pending anonymous paragraph.
func (b *blockBuilder) inline(n *html.Node) {
	if b.pending == nil {
		b.pending = &Paragraph{StyleID: b.ctx.styleID}
	}
	ic := inlineContext{style: b.ctx.run, preserve: b.ctx.preserve}
	ic.node(n, &b.pending.Inlines)
}

// flush closes the pending anonymous paragraph; whitespace-only content is
// dropped.
func (b *blockBuilder) flush() {
	p := b.pending
	b.pending = nil
	if p == nil {
		return
	}
	p.Inlines = normalizeWhitespace(p.Inlines)
	if len(p.Inlines) > 0 {
		b.out = append(b.out, p)
	}
}

// childContext derives the context of a container element's children.
func (b *blockBuilder) childContext(n *html.Node) blockContext {
	ctx := b.ctx
	decls := parseStyle(getAttr(n, "style"))
	ctx.run = applyRunCSS(ctx.run, decls)
	if id := getAttr(n, "data-style-id"); id != "" {
		ctx.styleID = id
	}
	return ctx
}

// paragraph converts a <p>, <pre> or heading element.
func (b *blockBuilder) paragraph(n *html.Node, level int) *Paragraph {
	decls := parseStyle(getAttr(n, "style"))
	run := applyRunCSS(b.ctx.run, decls)
	p := &Paragraph{
		Level:   level,
		StyleID: firstNonEmpty(getAttr(n, "data-style-id"), b.ctx.styleID),
		Style:   paragraphStyle(decls, sizePt(run.Size)),
	}
	if level > 0 {
		p.StyleID = ""
	}
	if a := getAttr(n, "align"); a != "" && p.Style.Align == "" {
		p.Style.Align = alignment(a)
	}

	ic := inlineContext{style: run, preserve: b.ctx.preserve || n.DataAtom == atom.Pre}
	if n.DataAtom == atom.Pre && ic.style.Font == "" {
		ic.style.Font = "Courier New"
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ic.node(c, &p.Inlines)
	}
	if !ic.preserve {
		p.Inlines = normalizeWhitespace(p.Inlines)
	}
	if isPlaceholderParagraph(p.Inlines) {
		p.Inlines = nil
	}
	return p
}

// isPlaceholderParagraph reports whether inlines are the lone no-break
// space the editor writes into an empty paragraph.
func isPlaceholderParagraph(inlines []Inline) bool {
	if len(inlines) != 1 {
		return false
	}
	r, ok := inlines[0].(*Run)
	return ok && strings.Trim(r.Text, "\u00a0 ") == ""
}

// list converts a <ul> or <ol>. Lists nested directly in a list (without
// an enclosing <li>) attach to the preceding item.
func (b *blockBuilder) list(n *html.Node) *List {
	l := &List{Ordered: n.DataAtom == atom.Ol, Start: 1}
	if s, err := strconv.Atoi(getAttr(n, "start")); err == nil {
		l.Start = s
	}
	if lvl, err := strconv.Atoi(getAttr(n, "data-level")); err == nil && lvl > 0 {
		l.Level = lvl
	}
	ctx := b.childContext(n)
	ctx.styleID = ""

	lastItem := func() *ListItem {
		if len(l.Items) == 0 {
			l.Items = append(l.Items, &ListItem{})
		}
		return l.Items[len(l.Items)-1]
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.ElementNode && c.DataAtom == atom.Li:
			itemCtx := (&blockBuilder{ctx: ctx}).childContext(c)
			l.Items = append(l.Items, &ListItem{Blocks: parseBlocks(c, itemCtx)})
		case c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol):
			item := lastItem()
			item.Blocks = append(item.Blocks, (&blockBuilder{ctx: ctx}).list(c))
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		default:
			if blocks := parseBlocksOf(c, ctx); len(blocks) > 0 {
				l.Items = append(l.Items, &ListItem{Blocks: blocks})
			}
		}
	}
	return l
}

// parseBlocksOf parses a single node as if it were a container's only
// child.
func parseBlocksOf(n *html.Node, ctx blockContext) []Block {
	b := &blockBuilder{ctx: ctx}
	b.node(n)
	b.flush()
	return b.out
}

// table converts a <table>, descending through thead/tbody/tfoot.
func (b *blockBuilder) table(n *html.Node) *Table {
	decls := parseStyle(getAttr(n, "style"))
	t := &Table{}
	if v, ok := decls["width"]; ok {
		t.Style.Width = parseWidth(v)
	} else if v := getAttr(n, "width"); v != "" {
		t.Style.Width = parseWidth(v)
	}
	if decls["margin-left"] == "auto" && decls["margin-right"] == "auto" {
		t.Style.Align = "center"
	}
	switch strings.ToLower(getAttr(n, "align")) {
	case "center":
		t.Style.Align = "center"
	case "right":
		t.Style.Align = "right"
	}
	t.Style.Borders = parseBorders(decls)
	if t.Style.Borders.IsZero() {
		if w, err := strconv.Atoi(getAttr(n, "border")); err == nil && w > 0 {
			side := func() *Border {
				return &Border{Style: "single", Eighths: units.PxToEighths(float64(w)), Color: "000000"}
			}
			t.Style.Borders = Borders{Top: side(), Right: side(), Bottom: side(), Left: side()}
		}
	}

	ctx := b.childContext(n)
	ctx.styleID = ""
	var rows func(parent *html.Node, header bool)
	rows = func(parent *html.Node, header bool) {
		for c := parent.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Thead:
				rows(c, true)
			case atom.Tbody, atom.Tfoot:
				rows(c, header)
			case atom.Tr:
				t.Rows = append(t.Rows, tableRow(c, header, ctx))
			}
		}
	}
	rows(n, false)
	return t
}

func tableRow(tr *html.Node, header bool, ctx blockContext) *Row {
	row := &Row{Header: header}
	decls := parseStyle(getAttr(tr, "style"))
	if v, ok := decls["height"]; ok {
		row.Height, _ = ParseLength(v, DefaultFontSize)
	}

	allTH := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		if c.DataAtom == atom.Td {
			allTH = false
		}
		row.Cells = append(row.Cells, tableCell(c, ctx))
	}
	if allTH && len(row.Cells) > 0 {
		row.Header = true
	}
	return row
}

func tableCell(n *html.Node, ctx blockContext) *Cell {
	cell := &Cell{ColSpan: spanAttr(n, "colspan"), RowSpan: spanAttr(n, "rowspan")}
	decls := parseStyle(getAttr(n, "style"))
	st := &cell.Style

	if v, ok := decls["width"]; ok {
		st.Width = parseWidth(v)
	} else if v := getAttr(n, "width"); v != "" {
		st.Width = parseWidth(v)
	}
	for _, prop := range []string{"background", "background-color"} {
		if v, ok := decls[prop]; ok {
			if c, ok := ParseColor(v); ok {
				st.Background = c
			}
		}
	}
	if v := getAttr(n, "bgcolor"); v != "" && st.Background == "" {
		st.Background, _ = ParseColor(v)
	}
	valign := decls["vertical-align"]
	if valign == "" {
		valign = getAttr(n, "valign")
	}
	switch strings.ToLower(valign) {
	case "top":
		st.VAlign = "top"
	case "middle", "center":
		st.VAlign = "center"
	case "bottom":
		st.VAlign = "bottom"
	}
	st.Padding = lengthSides(decls, "padding", DefaultFontSize)
	st.Borders = parseBorders(decls)
	st.NoWrap = decls["white-space"] == "nowrap"
	switch decls["writing-mode"] {
	case "vertical-rl":
		st.TextDirection = "tbRl"
	case "vertical-lr":
		st.TextDirection = "btLr"
	}

	cellCtx := ctx
	cellCtx.run = applyRunCSS(ctx.run, decls)
	if n.DataAtom == atom.Th {
		cellCtx.run.Bold = true
	}
	cell.Blocks = parseBlocks(n, cellCtx)
	if align := alignment(decls["text-align"]); align != "" {
		for _, blk := range cell.Blocks {
			if p, ok := blk.(*Paragraph); ok && p.Style.Align == "" {
				p.Style.Align = align
			}
		}
	}
	return cell
}

func spanAttr(n *html.Node, key string) int {
	v, err := strconv.Atoi(getAttr(n, key))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// inlineContext carries inherited character formatting while walking
// inline content.
type inlineContext struct {
	style    RunStyle
	preserve bool
}

func (ic inlineContext) node(n *html.Node, out *[]Inline) {
	switch n.Type {
	case html.TextNode:
		ic.text(n.Data, out)
		return
	case html.ElementNode:
	default:
		return
	}
	if shouldSkipElement(n.DataAtom) {
		return
	}

	decls := parseStyle(getAttr(n, "style"))
	child := ic
	switch n.DataAtom {
	case atom.Br:
		if hasClass(n, "page-break") {
			*out = append(*out, &PageBreak{})
		} else {
			*out = append(*out, &LineBreak{})
		}
		return
	case atom.Img:
		if img := parseImage(n, decls); img != nil {
			*out = append(*out, img)
		}
		return
	case atom.A:
		if href := getAttr(n, "href"); href != "" {
			link := &Hyperlink{URL: href}
			child.style = applyRunCSS(child.style, decls)
			child.children(n, &link.Inlines)
			*out = append(*out, link)
			return
		}
	case atom.Span:
		switch {
		case hasClass(n, "field-page"):
			*out = append(*out, &Field{Type: FieldPage, Style: applyRunCSS(ic.style, decls)})
			return
		case hasClass(n, "field-numpages"):
			*out = append(*out, &Field{Type: FieldPages, Style: applyRunCSS(ic.style, decls)})
			return
		}
	case atom.Strong, atom.B:
		child.style.Bold = true
	case atom.Em, atom.I, atom.Cite, atom.Var, atom.Dfn:
		child.style.Italic = true
	case atom.U, atom.Ins:
		child.style.Underline = true
	case atom.S, atom.Strike, atom.Del:
		child.style.Strike = true
	case atom.Sup:
		child.style.VertAlign = "superscript"
	case atom.Sub:
		child.style.VertAlign = "subscript"
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		child.style.Font = "Courier New"
	case atom.Mark:
		child.style.Background = "FFFF00"
	case atom.Small:
		child.style.Size, _ = ParseFontSize("smaller", child.style.Size)
	case atom.Big:
		child.style.Size, _ = ParseFontSize("larger", child.style.Size)
	case atom.Font:
		if c, ok := ParseColor(getAttr(n, "color")); ok {
			child.style.Color = c
		}
		if f := fontFamily(getAttr(n, "face")); f != "" {
			child.style.Font = f
		}
	}
	child.style = applyRunCSS(child.style, decls)
	child.children(n, out)
}

func (ic inlineContext) children(n *html.Node, out *[]Inline) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		// Block elements nested in inline content contribute their text.
		ic.node(c, out)
	}
}

// text appends runs for s, splitting out tabs and field placeholders.
// Whitespace is collapsed unless preserved; the paragraph trims its ends
// afterwards.
func (ic inlineContext) text(s string, out *[]Inline) {
	s = norm.NFC.String(s)
	if ic.preserve {
		lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
		for i, line := range lines {
			if i > 0 {
				*out = append(*out, &LineBreak{})
			}
			ic.tokens(strings.ReplaceAll(line, "\t", tabText), out)
		}
		return
	}
	ic.tokens(collapseSpace(s), out)
}

func (ic inlineContext) tokens(s string, out *[]Inline) {
	for s != "" {
		i := strings.IndexAny(s, "{\u2003")
		if i < 0 {
			ic.appendRun(s, out)
			return
		}
		ic.appendRun(s[:i], out)
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, tabText):
			*out = append(*out, &Tab{Style: ic.style})
			s = rest[len(tabText):]
		case strings.HasPrefix(rest, PagePlaceholder):
			*out = append(*out, &Field{Type: FieldPage, Style: ic.style})
			s = rest[len(PagePlaceholder):]
		case strings.HasPrefix(rest, PagesPlaceholder):
			*out = append(*out, &Field{Type: FieldPages, Style: ic.style})
			s = rest[len(PagesPlaceholder):]
		default:
			ic.appendRun("{", out)
			s = rest[1:]
		}
	}
}

// appendRun adds text, merging with a preceding run of the same style.
func (ic inlineContext) appendRun(s string, out *[]Inline) {
	if s == "" {
		return
	}
	if n := len(*out); n > 0 {
		if prev, ok := (*out)[n-1].(*Run); ok && prev.Style == ic.style {
			prev.Text += s
			return
		}
	}
	*out = append(*out, &Run{Text: s, Style: ic.style})
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

// normalizeWhitespace trims collapsible space at the start and end of a
// paragraph and around line breaks, and drops runs left empty.
func normalizeWhitespace(inlines []Inline) []Inline {
	out := inlines[:0]
	lastSpace := true // at paragraph start
	for _, in := range inlines {
		switch v := in.(type) {
		case *Run:
			if lastSpace {
				v.Text = strings.TrimLeft(v.Text, " ")
			}
			if v.Text == "" {
				continue
			}
			lastSpace = strings.HasSuffix(v.Text, " ")
		case *LineBreak, *PageBreak:
			trimTrailing(out)
			lastSpace = true
		case *Hyperlink:
			v.Inlines = normalizeLinkWhitespace(v.Inlines, &lastSpace)
			if len(v.Inlines) == 0 {
				continue
			}
		default:
			lastSpace = false
		}
		out = append(out, in)
	}
	trimTrailing(out)
	// Trimming can empty the last run.
	for len(out) > 0 {
		if r, ok := out[len(out)-1].(*Run); ok && r.Text == "" {
			out = out[:len(out)-1]
			continue
		}
		break
	}
	return out
}

func normalizeLinkWhitespace(inlines []Inline, lastSpace *bool) []Inline {
	out := inlines[:0]
	for _, in := range inlines {
		if r, ok := in.(*Run); ok {
			if *lastSpace {
				r.Text = strings.TrimLeft(r.Text, " ")
			}
			if r.Text == "" {
				continue
			}
			*lastSpace = strings.HasSuffix(r.Text, " ")
		} else {
			*lastSpace = false
		}
		out = append(out, in)
	}
	return out
}

func trimTrailing(inlines []Inline) {
	if len(inlines) == 0 {
		return
	}
	if r, ok := inlines[len(inlines)-1].(*Run); ok {
		r.Text = strings.TrimRight(r.Text, " ")
	}
}

// parseImage converts an <img>. Sizes come from the EMU data attributes,
// the style, or the width/height attributes, in that order.
func parseImage(n *html.Node, decls map[string]string) *Image {
	src := strings.TrimSpace(getAttr(n, "src"))
	if src == "" {
		return nil
	}
	img := &Image{ID: getAttr(n, "data-image-id"), Alt: getAttr(n, "alt")}
	if strings.HasPrefix(src, "data:") {
		ct, data, ok := decodeDataURI(src)
		if !ok {
			return nil
		}
		img.ContentType, img.Data = ct, data
	} else {
		img.Src = src
	}

	img.WidthEMU, _ = strconv.ParseInt(getAttr(n, "data-width-emu"), 10, 64)
	img.HeightEMU, _ = strconv.ParseInt(getAttr(n, "data-height-emu"), 10, 64)
	img.WidthPx = pixelSize(decls["width"], getAttr(n, "width"))
	img.HeightPx = pixelSize(decls["height"], getAttr(n, "height"))
	return img
}

func pixelSize(css, attr string) float64 {
	if css != "" {
		if pt, ok := lengthToPt(css, DefaultFontSize); ok && pt > 0 {
			return units.PtToPx(pt)
		}
	}
	if n, err := strconv.ParseFloat(strings.TrimSuffix(attr, "px"), 64); err == nil && n > 0 {
		return n
	}
	return 0
}

// decodeDataURI splits a data: URI into its media type and payload.
func decodeDataURI(uri string) (string, []byte, bool) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return "", nil, false
	}
	params := strings.Split(header, ";")
	contentType := strings.ToLower(strings.TrimSpace(params[0]))
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if !isBase64 {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, false
		}
		return contentType, []byte(s), true
	}
	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, false
		}
	}
	return contentType, data, true
}

// shouldSkipElement returns true for elements without document content.
func shouldSkipElement(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Head, atom.Noscript, atom.Template, atom.Title, atom.Meta, atom.Link:
		return true
	}
	return false
}

// isBlockContainer returns true for elements whose children are laid out
// as blocks.
func isBlockContainer(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.Nav, atom.Aside, atom.Figure, atom.Figcaption, atom.Address, atom.Center, atom.Form,
		atom.Fieldset, atom.Details, atom.Summary, atom.Dl, atom.Dt, atom.Dd, atom.Li:
		return true
	}
	return false
}

// findElement finds the first element with the given tag.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
