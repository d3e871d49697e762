package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/docxhtml/htmldoc"
	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// paragraph converts a paragraph or heading. num is set for the numbered
// paragraph of a list item.
func (p *partBuilder) paragraph(par *htmldoc.Paragraph, num *wNumPr) *wP {
	ppr := paragraphProps(par.Style)
	switch {
	case par.Level > 0:
		ppr.Style = val("Heading" + strconv.Itoa(min(par.Level, 6)))
	case par.StyleID != "" && p.b.styles[par.StyleID]:
		ppr.Style = val(par.StyleID)
	case num != nil:
		ppr.Style = val("ListParagraph")
	}
	if num != nil {
		ppr.NumPr = num
		// Indentation comes from the numbering level.
		ppr.Ind = nil
	}

	styleID := "Normal"
	if ppr.Style != nil {
		styleID = ppr.Style.Val
	}
	p.base = p.b.styleRuns[styleID]
	out := &wP{Content: p.inlines(par.Inlines, "")}
	p.base = htmldoc.RunStyle{}
	p.count("\n")
	if *ppr != (wPPr{}) {
		out.PPr = ppr
	}
	return out
}

// count feeds body text to the word count.
func (p *partBuilder) count(s string) {
	if p.name == mainDocumentPart {
		p.b.text.WriteString(s)
	}
}

// paragraphProps maps resolved paragraph formatting to w:pPr. The result is
// never nil; callers drop it when it stays empty.
func paragraphProps(st htmldoc.ParagraphStyle) *wPPr {
	ppr := &wPPr{}
	if st.PageBreakBefore {
		ppr.PageBreakBefore = &wOn{}
	}
	if !st.Borders.IsZero() {
		ppr.Borders = &wBorders{
			Top:    wordBorder(st.Borders.Top, 1),
			Left:   wordBorder(st.Borders.Left, 4),
			Bottom: wordBorder(st.Borders.Bottom, 1),
			Right:  wordBorder(st.Borders.Right, 4),
		}
	}
	if st.Background != "" {
		ppr.Shading = shading(st.Background)
	}
	if st.SpaceBefore != nil || st.SpaceAfter != nil || st.Line > 0 {
		ppr.Spacing = &wSpacing{Before: st.SpaceBefore, After: st.SpaceAfter}
		if st.Line > 0 {
			ppr.Spacing.Line = st.Line
			ppr.Spacing.LineRule = st.LineRule
			if ppr.Spacing.LineRule == "" {
				ppr.Spacing.LineRule = "auto"
			}
		}
	}
	if st.IndentLeft != nil || st.IndentRight != nil || st.IndentFirst != nil {
		ind := &wInd{Left: st.IndentLeft, Right: st.IndentRight}
		if st.IndentFirst != nil {
			if n := *st.IndentFirst; n < 0 {
				n = -n
				ind.Hanging = &n
			} else {
				ind.FirstLine = &n
			}
		}
		ppr.Ind = ind
	}
	if st.Align != "" && st.Align != "left" {
		ppr.Jc = val(st.Align)
	}
	return ppr
}

func wordBorder(b *htmldoc.Border, space int) *wBorder {
	if b == nil {
		return nil
	}
	out := &wBorder{Val: b.Style, Sz: b.Eighths, Space: space, Color: b.Color}
	if out.Val == "" {
		out.Val = "single"
	}
	if out.Val == "none" {
		out.Val = "nil"
		out.Sz = 0
	}
	if out.Color == "" && out.Val != "nil" {
		out.Color = "auto"
	}
	return out
}

// styleRunDefaults returns the character formatting of every paragraph
// style, with Normal filling what a style leaves unset.
func styleRunDefaults(set []model.DocumentStyle) map[string]htmldoc.RunStyle {
	var normal model.DocumentStyle
	if n := model.FindStyle(set, "Normal"); n != nil {
		normal = *n
	}
	out := make(map[string]htmldoc.RunStyle, len(set))
	for _, s := range set {
		if s.Type != "" && s.Type != model.StyleParagraph {
			continue
		}
		st := htmldoc.RunStyle{
			Font:      firstNonEmpty(s.FontFamily, normal.FontFamily),
			Color:     strings.ToUpper(strings.TrimPrefix(firstNonEmpty(s.Color, normal.Color), "#")),
			Bold:      s.IsBold || normal.IsBold,
			Italic:    s.IsItalic || normal.IsItalic,
			Underline: s.IsUnderline || normal.IsUnderline,
		}
		if size := s.FontSize; size != nil && *size > 0 {
			st.Size = units.HalfPointsFromPt(*size)
		} else if size := normal.FontSize; size != nil && *size > 0 {
			st.Size = units.HalfPointsFromPt(*size)
		}
		out[s.ID] = st
	}
	return out
}

// direct drops the run formatting the paragraph style already supplies, so
// decoded style values do not come back as direct formatting.
func (p *partBuilder) direct(st htmldoc.RunStyle) htmldoc.RunStyle {
	base := p.base
	if st.Font != "" && strings.EqualFold(st.Font, base.Font) {
		st.Font = ""
	}
	if st.Size != 0 && st.Size == base.Size {
		st.Size = 0
	}
	if st.Color != "" && st.Color == base.Color {
		st.Color = ""
	}
	st.Bold = st.Bold && !base.Bold
	st.Italic = st.Italic && !base.Italic
	st.Underline = st.Underline && !base.Underline
	return st
}

// horizontalRule is an empty paragraph with a bottom border.
func horizontalRule() *wP {
	return &wP{PPr: &wPPr{
		Borders: &wBorders{Bottom: &wBorder{Val: "single", Sz: 6, Space: 1, Color: "auto"}},
	}}
}

// inlines converts inline nodes to runs. charStyle applies a character
// style to every run, e.g. Hyperlink inside a link.
func (p *partBuilder) inlines(nodes []htmldoc.Inline, charStyle string) []any {
	var out []any
	for _, n := range nodes {
		switch v := n.(type) {
		case *htmldoc.Run:
			p.count(v.Text)
			out = append(out, &wR{RPr: runProps(p.direct(v.Style), charStyle), Content: []any{textElement(v.Text)}})
		case *htmldoc.Tab:
			p.count(" ")
			out = append(out, &wR{RPr: runProps(p.direct(v.Style), charStyle), Content: []any{wTab{}}})
		case *htmldoc.LineBreak:
			out = append(out, &wR{Content: []any{wBr{}}})
		case *htmldoc.PageBreak:
			out = append(out, &wR{Content: []any{wBr{Type: "page"}}})
		case *htmldoc.Field:
			out = append(out, fieldRuns(v, runProps(p.direct(v.Style), charStyle))...)
		case *htmldoc.Image:
			if r := p.image(v); r != nil {
				out = append(out, r)
			}
		case *htmldoc.Hyperlink:
			out = append(out, p.hyperlink(v))
		}
	}
	return out
}

// hyperlink writes an external link through a relationship and a
// fragment-only link as a bookmark anchor.
func (p *partBuilder) hyperlink(h *htmldoc.Hyperlink) *wHyperlink {
	link := &wHyperlink{History: "1"}
	if anchor, ok := strings.CutPrefix(h.URL, "#"); ok {
		link.Anchor = anchor
	} else {
		link.ID = p.relationship(relHyperlink, h.URL, true)
	}
	style := ""
	if p.b.styles["Hyperlink"] {
		style = "Hyperlink"
	}
	link.Content = p.inlines(h.Inlines, style)
	return link
}

// runProps maps resolved character formatting to w:rPr, or nil when
// nothing is set.
func runProps(st htmldoc.RunStyle, charStyle string) *wRPr {
	rpr := &wRPr{}
	if charStyle != "" {
		rpr.Style = val(charStyle)
	}
	if st.Font != "" {
		rpr.Fonts = fonts(st.Font)
	}
	if st.Bold {
		rpr.B, rpr.BCs = &wOn{}, &wOn{}
	}
	if st.Italic {
		rpr.I, rpr.ICs = &wOn{}, &wOn{}
	}
	if st.Caps {
		rpr.Caps = &wOn{}
	}
	if st.SmallCaps {
		rpr.SmallCaps = &wOn{}
	}
	if st.Strike {
		rpr.Strike = &wOn{}
	}
	if st.Color != "" {
		rpr.Color = val(st.Color)
	}
	if st.Spacing != 0 {
		rpr.Spacing = intVal(st.Spacing)
	}
	if st.Size > 0 {
		rpr.Sz = intVal(int(st.Size))
		rpr.SzCs = intVal(int(st.Size))
	}
	if st.Underline {
		rpr.U = val("single")
	}
	if st.Background != "" {
		rpr.Shd = shading(st.Background)
	}
	if st.VertAlign != "" {
		rpr.VertAlign = val(st.VertAlign)
	}
	if *rpr == (wRPr{}) {
		return nil
	}
	return rpr
}

// fieldRuns writes a complex field. The cached result is a placeholder that
// Word replaces when it updates fields.
func fieldRuns(f *htmldoc.Field, rpr *wRPr) []any {
	instr := " PAGE "
	if f.Type == htmldoc.FieldPages {
		instr = " NUMPAGES "
	}
	return []any{
		&wR{RPr: rpr, Content: []any{wFldChar{Type: "begin"}}},
		&wR{RPr: rpr, Content: []any{wInstrText{Space: "preserve", Text: instr}}},
		&wR{RPr: rpr, Content: []any{wFldChar{Type: "separate"}}},
		&wR{RPr: rpr, Content: []any{textElement("1")}},
		&wR{RPr: rpr, Content: []any{wFldChar{Type: "end"}}},
	}
}
