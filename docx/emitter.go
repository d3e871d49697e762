package docx

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// highlightColors maps w:highlight names to CSS colors.
var highlightColors = map[string]string{
	"yellow":      "#ffff00",
	"green":       "#00ff00",
	"cyan":        "#00ffff",
	"magenta":     "#ff00ff",
	"blue":        "#0000ff",
	"red":         "#ff0000",
	"darkBlue":    "#000080",
	"darkCyan":    "#008080",
	"darkGreen":   "#008000",
	"darkMagenta": "#800080",
	"darkRed":     "#800000",
	"darkYellow":  "#808000",
	"darkGray":    "#808080",
	"lightGray":   "#c0c0c0",
	"black":       "#000000",
	"white":       "#ffffff",
}

// emitter converts the block content of one part (the main document, a
// header or a footer) to HTML. Relationship ids are resolved against that
// part.
type emitter struct {
	d      *decoder
	part   string
	fields *fieldMachine
}

func (d *decoder) newEmitter(part string) *emitter {
	return &emitter{
		d:      d,
		part:   part,
		fields: newFieldMachine(d.opts.Now, d.opts.DateLayout, d.opts.TimeLayout),
	}
}

// emitPart appends the HTML for a part's content to parent and reports
// unbalanced fields.
func (e *emitter) emitPart(body *bodyXML, parent *html.Node) {
	e.blocks(body.Elements, parent)
	if n := e.fields.finish(); n > 0 {
		e.d.warn(model.MalformedField, e.part, strconv.Itoa(n)+" unbalanced field marker(s); field contents dropped")
	}
}

// blocks emits paragraphs and tables in order, regrouping numbered
// paragraphs into lists.
func (e *emitter) blocks(elements []blockXML, parent *html.Node) {
	lists := newListGrouper(parent)
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			e.paragraph(el.Paragraph, parent, lists)
		case el.Table != nil:
			lists.close()
			parent.AppendChild(e.table(el.Table))
		}
	}
}

func (e *emitter) paragraph(p *paragraphXML, parent *html.Node, lists *listGrouper) {
	styleID := ""
	if p.Properties != nil && p.Properties.Style != nil {
		styleID = p.Properties.Style.Val
	}
	style := e.d.styles.Paragraph(styleID)

	para := e.d.styles.Defaults().Para
	para.merge(style.Para)
	para.merge(e.d.styles.ParaProps(p.Properties))

	var node *html.Node
	list := false
	switch {
	case style.HeadingLevel >= 1 && style.HeadingLevel <= 6:
		lists.close()
		node = element(headingAtoms[style.HeadingLevel-1])
		parent.AppendChild(node)
	case para.NumID != nil && IsList(*para.NumID):
		level := 0
		if para.ILvl != nil {
			level = *para.ILvl
		}
		def, ok := e.d.numbering.ResolveLevel(*para.NumID, level)
		if !ok {
			e.d.warnOnce(model.MissingNumbering, "numbering", "numId "+*para.NumID+" level "+strconv.Itoa(level)+" is not defined")
		}
		node = lists.item(*para.NumID, level, def)
		list = true
	default:
		lists.close()
		node = element(atom.P)
		parent.AppendChild(node)
	}

	decls := paragraphCSS(para, list)
	decls = append(decls, runCSS(style.Run)...)
	if len(decls) > 0 {
		setAttr(node, "style", strings.Join(decls, ";"))
	}
	if keepStyleID(styleID, style, e.d.styles.DefaultParagraphID()) {
		setAttr(node, "data-style-id", styleID)
	}

	e.inlines(p.Content, node)
	if node.FirstChild == nil {
		node.AppendChild(text("\u00a0"))
	}
}

var headingAtoms = [6]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// keepStyleID reports whether a paragraph style is worth recording as
// data-style-id. Headings and list paragraphs are implied by their tags.
func keepStyleID(id string, style *ResolvedStyle, defaultID string) bool {
	if id == "" || id == defaultID || style.HeadingLevel >= 1 && style.HeadingLevel <= 6 {
		return false
	}
	return id != "Normal" && id != "ListParagraph"
}

func (e *emitter) inlines(content []inlineXML, parent *html.Node) {
	for _, in := range content {
		switch {
		case in.Run != nil:
			e.run(in.Run, parent)
		case in.Hyperlink != nil:
			if e.fields.suppressed() {
				e.inlines(in.Hyperlink.Content, parent)
				continue
			}
			a := e.hyperlink(in.Hyperlink)
			parent.AppendChild(a)
			e.inlines(in.Hyperlink.Content, a)
			if a.FirstChild == nil {
				parent.RemoveChild(a)
			}
		case in.Field != nil:
			e.simpleField(in.Field, parent)
		}
	}
}

func (e *emitter) hyperlink(h *hyperlinkXML) *html.Node {
	a := element(atom.A)
	switch {
	case h.ID != "":
		if rel, ok := e.d.pkg.Relationship(e.part, h.ID); ok {
			href := rel.Target
			if h.Anchor != "" {
				href += "#" + h.Anchor
			}
			setAttr(a, "href", href)
		} else {
			e.d.warn(model.MissingRelationship, e.part, "hyperlink "+h.ID+" has no relationship")
		}
	case h.Anchor != "":
		setAttr(a, "href", "#"+h.Anchor)
	}
	setAttr(a, "target", "_blank")
	return a
}

// simpleField emits a w:fldSimple. Recognized instructions replace the
// cached result; others keep it.
func (e *emitter) simpleField(f *simpleFieldXML, parent *html.Node) {
	if e.fields.suppressed() {
		return
	}
	if s, ok := e.fields.interpret(f.Instr); ok {
		parent.AppendChild(text(s))
		return
	}
	e.inlines(f.Content, parent)
}

// run emits one w:r. Formatting wrappers are created lazily so runs that
// only carry field characters leave no empty markup behind.
func (e *emitter) run(r *runXML, parent *html.Node) {
	props := e.runProps(r.Properties)
	var inner *html.Node
	container := func() *html.Node {
		if inner == nil {
			inner = wrapRun(parent, props)
		}
		return inner
	}

	for _, c := range r.Content {
		switch c.Kind {
		case runFieldChar:
			var s string
			var ok bool
			switch c.FieldChar {
			case "begin":
				e.fields.begin()
			case "separate":
				s, ok = e.fields.separate()
			case "end":
				s, ok = e.fields.end()
			}
			if ok {
				container().AppendChild(text(s))
			}
			continue
		case runInstrText:
			e.fields.instruction(c.Text)
			continue
		}

		if e.fields.suppressed() {
			continue
		}

		switch c.Kind {
		case runText:
			if c.Text != "" {
				container().AppendChild(text(c.Text))
			}
		case runTab:
			container().AppendChild(text("\u2003"))
		case runBreak:
			br := element(atom.Br)
			if c.BreakType == "page" {
				setAttr(br, "class", "page-break")
			}
			container().AppendChild(br)
		case runDrawing:
			if img := e.drawing(c.Drawing); img != nil {
				container().AppendChild(img)
			}
		case runPict:
			if img := e.pict(c.Pict); img != nil {
				container().AppendChild(img)
			}
		}
	}
}

// runProps returns the properties a run carries itself: its character
// style chain overlaid with direct formatting. Paragraph-style run
// properties are emitted on the paragraph element instead.
func (e *emitter) runProps(rpr *runPropsXML) RunProps {
	var props RunProps
	if rpr == nil {
		return props
	}
	if rpr.Style != nil && rpr.Style.Val != "" {
		props = e.d.styles.Resolve(rpr.Style.Val).Run
	}
	props.merge(e.d.styles.RunProps(rpr))
	return props
}

// wrapRun appends <span style> and the semantic tags selected by props to
// parent and returns the innermost element. With no formatting at all the
// parent itself is returned.
func wrapRun(parent *html.Node, props RunProps) *html.Node {
	cur := parent
	if decls := runCSS(props); len(decls) > 0 {
		span := element(atom.Span)
		setAttr(span, "style", strings.Join(decls, ";"))
		cur.AppendChild(span)
		cur = span
	}
	wrap := func(a atom.Atom) {
		n := element(a)
		cur.AppendChild(n)
		cur = n
	}
	if isTrue(props.Bold) {
		wrap(atom.Strong)
	}
	if isTrue(props.Italic) {
		wrap(atom.Em)
	}
	if isTrue(props.Underline) {
		wrap(atom.U)
	}
	if isTrue(props.Strike) {
		wrap(atom.S)
	}
	if props.VertAlign != nil {
		switch *props.VertAlign {
		case "superscript":
			wrap(atom.Sup)
		case "subscript":
			wrap(atom.Sub)
		}
	}
	return cur
}

// runCSS returns the inline declarations for character properties. Boolean
// properties are expressed through semantic tags, not CSS.
func runCSS(r RunProps) []string {
	var decls []string
	if r.Font != nil && *r.Font != "" {
		decls = append(decls, "font-family:'"+*r.Font+"',sans-serif")
	}
	if r.Size != nil {
		decls = append(decls, "font-size:"+r.Size.String()+"pt")
	}
	if r.Color != nil && *r.Color != "" {
		decls = append(decls, "color:#"+strings.ToLower(*r.Color))
	}
	switch {
	case r.Highlight != nil && highlightColors[*r.Highlight] != "":
		decls = append(decls, "background-color:"+highlightColors[*r.Highlight])
	case r.Shading != nil:
		decls = append(decls, "background-color:#"+strings.ToLower(*r.Shading))
	}
	if isTrue(r.Caps) {
		decls = append(decls, "text-transform:uppercase")
	}
	if isTrue(r.SmallCaps) {
		decls = append(decls, "font-variant:small-caps")
	}
	if r.Spacing != nil && *r.Spacing != 0 {
		decls = append(decls, "letter-spacing:"+units.FormatFloat(units.TwipsToPt(*r.Spacing))+"pt")
	}
	return decls
}

// paragraphCSS returns the inline declarations for paragraph properties.
// List items take their indentation from the list markup.
func paragraphCSS(p ParaProps, list bool) []string {
	var decls []string
	if p.Alignment != nil {
		if a := cssAlignment(*p.Alignment); a != "" {
			decls = append(decls, "text-align:"+a)
		}
	}
	if !list {
		if p.IndentLeft != nil && *p.IndentLeft != 0 {
			decls = append(decls, "margin-left:"+px(*p.IndentLeft))
		}
		if p.IndentFirst != nil && *p.IndentFirst != 0 {
			decls = append(decls, "text-indent:"+px(*p.IndentFirst))
		}
	}
	if p.IndentRight != nil && *p.IndentRight != 0 {
		decls = append(decls, "margin-right:"+px(*p.IndentRight))
	}
	if p.SpaceBefore != nil {
		decls = append(decls, "margin-top:"+px(*p.SpaceBefore))
	}
	if p.SpaceAfter != nil {
		decls = append(decls, "margin-bottom:"+px(*p.SpaceAfter))
	}
	if p.Line != nil && *p.Line > 0 {
		if p.LineRule == nil || *p.LineRule == "auto" {
			decls = append(decls, "line-height:"+units.FormatFloat(float64(*p.Line)/singleLine))
		} else {
			decls = append(decls, "line-height:"+units.FormatFloat(units.TwipsToPt(*p.Line))+"pt")
		}
	}
	if p.Shading != nil {
		decls = append(decls, "background-color:#"+strings.ToLower(*p.Shading))
	}
	if b := p.Borders; b != nil {
		for _, side := range []struct {
			name   string
			border *borderXML
		}{{"top", b.Top}, {"right", b.right()}, {"bottom", b.Bottom}, {"left", b.left()}} {
			if side.border != nil {
				decls = append(decls, "border-"+side.name+":"+borderCSS(side.border))
			}
		}
	}
	if isTrue(p.PageBreakBefore) {
		decls = append(decls, "page-break-before:always")
	}
	return decls
}

// borderCSS renders a single OOXML border as a CSS border shorthand.
func borderCSS(b *borderXML) string {
	if b == nil || b.Val == "" || b.Val == "nil" || b.Val == "none" {
		return "none"
	}
	sz := 4
	if n, err := strconv.Atoi(b.Sz); err == nil && n > 0 {
		sz = n
	}
	style := "solid"
	switch b.Val {
	case "double", "dotted", "dashed":
		style = b.Val
	case "dotDash", "dotDotDash", "dashSmallGap":
		style = "dashed"
	}
	color := "#000000"
	if isHexColor(b.Color) {
		color = "#" + strings.ToLower(b.Color)
	}
	return units.FormatFloat(units.EighthsToPx(sz)) + "px " + style + " " + color
}

func cssAlignment(jc string) string {
	switch jc {
	case "left", "start":
		return "left"
	case "right", "end":
		return "right"
	case "center":
		return "center"
	case "both", "distribute":
		return "justify"
	}
	return ""
}

func px(tw int) string {
	return units.FormatFloat(units.TwipsToPx(tw)) + "px"
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func (e *emitter) debug(msg string, fields ...zap.Field) {
	e.d.log.Debug(msg, append(fields, zap.String("part", e.part))...)
}
