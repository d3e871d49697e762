package docx

import (
	"math"
	"strings"

	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// requiredStyles are written even when the caller's style set omits them;
// the builder references them by id.
var requiredStyles = map[string]bool{
	"Normal": true, "Heading1": true, "Heading2": true, "Heading3": true,
	"Heading4": true, "Heading5": true, "Heading6": true,
	"Hyperlink": true, "ListParagraph": true,
}

// completeStyles drops blank and repeated ids from a caller's style set and
// appends the required built-ins it lacks.
func completeStyles(styles []model.DocumentStyle) []model.DocumentStyle {
	set := make([]model.DocumentStyle, 0, len(styles)+len(requiredStyles))
	ids := make(map[string]bool)
	for _, s := range styles {
		if s.ID == "" || ids[s.ID] {
			continue
		}
		set = append(set, s)
		ids[s.ID] = true
	}
	for _, s := range model.DefaultStyles() {
		if requiredStyles[s.ID] && !ids[s.ID] {
			set = append(set, s)
			ids[s.ID] = true
		}
	}
	return set
}

// buildStyles converts a completed style set into the styles part and
// returns the set of ids it defines.
func buildStyles(set []model.DocumentStyle) (*wStyles, map[string]bool) {
	ids := make(map[string]bool, len(set))
	for _, s := range set {
		ids[s.ID] = true
	}

	out := &wStyles{Attrs: wordNamespaces()}
	if normal := model.FindStyle(set, "Normal"); normal != nil {
		rpr := styleRunProps(*normal)
		rpr.B, rpr.BCs, rpr.I, rpr.ICs, rpr.U = nil, nil, nil, nil, nil
		out.DocDefaults.RPr.RPr = rpr
		ppr := &wPPr{Spacing: styleSpacing(*normal)}
		out.DocDefaults.PPr.PPr = ppr
	}
	for _, s := range set {
		out.Styles = append(out.Styles, styleXML(s))
	}
	return out, ids
}

func styleXML(s model.DocumentStyle) *wStyle {
	typ := s.Type
	if typ == "" {
		typ = model.StyleParagraph
	}
	name := s.Name
	if name == "" {
		name = s.ID
	}
	ws := &wStyle{Type: typ, StyleID: s.ID, Name: wVal{Val: name}}
	if s.ID == "Normal" {
		ws.Default = "1"
		ws.QFormat = &wOn{}
	}
	if s.BasedOn != "" && s.BasedOn != s.ID {
		ws.BasedOn = val(s.BasedOn)
	}
	if s.NextStyle != "" {
		ws.Next = val(s.NextStyle)
	}
	if s.OutlineLevel > 0 {
		ws.UIPriority = intVal(9)
		ws.QFormat = &wOn{}
	}

	if typ == model.StyleParagraph {
		ppr := styleParaProps(s)
		if *ppr != (wPPr{}) {
			ws.PPr = ppr
		}
	}
	if rpr := styleRunProps(s); *rpr != (wRPr{}) {
		ws.RPr = rpr
	}
	return ws
}

func styleParaProps(s model.DocumentStyle) *wPPr {
	ppr := &wPPr{Spacing: styleSpacing(s)}
	if s.LeftIndent != nil || s.RightIndent != nil || s.FirstLineIndent != nil {
		ind := &wInd{Left: cmTwips(s.LeftIndent), Right: cmTwips(s.RightIndent)}
		if first := cmTwips(s.FirstLineIndent); first != nil {
			if *first < 0 {
				h := -*first
				ind.Hanging = &h
			} else {
				ind.FirstLine = first
			}
		}
		ppr.Ind = ind
	}
	if jc := styleJc(s.Alignment); jc != "" {
		ppr.Jc = val(jc)
	}
	if s.OutlineLevel > 0 {
		ppr.KeepNext = &wOn{}
		ppr.OutlineLvl = intVal(s.OutlineLevel - 1)
	}
	return ppr
}

func styleSpacing(s model.DocumentStyle) *wSpacing {
	if s.SpaceBefore == nil && s.SpaceAfter == nil && s.LineSpacing == nil {
		return nil
	}
	sp := &wSpacing{Before: ptTwips(s.SpaceBefore), After: ptTwips(s.SpaceAfter)}
	if s.LineSpacing != nil && *s.LineSpacing > 0 {
		sp.Line = int(math.Round(*s.LineSpacing * 240))
		sp.LineRule = "auto"
	}
	return sp
}

func styleRunProps(s model.DocumentStyle) *wRPr {
	rpr := &wRPr{}
	if s.FontFamily != "" {
		rpr.Fonts = &wFonts{ASCII: s.FontFamily, HAnsi: s.FontFamily, CS: s.FontFamily}
	}
	if s.IsBold {
		rpr.B, rpr.BCs = &wOn{}, &wOn{}
	}
	if s.IsItalic {
		rpr.I, rpr.ICs = &wOn{}, &wOn{}
	}
	if c := strings.ToUpper(strings.TrimPrefix(s.Color, "#")); c != "" {
		rpr.Color = val(c)
	}
	if s.FontSize != nil && *s.FontSize > 0 {
		hp := int(units.HalfPointsFromPt(*s.FontSize))
		rpr.Sz, rpr.SzCs = intVal(hp), intVal(hp)
	}
	if s.IsUnderline {
		rpr.U = val("single")
	}
	return rpr
}

// styleJc maps a CSS text-align value to w:jc.
func styleJc(align string) string {
	switch align {
	case "left", "start":
		return "left"
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "justify", "both":
		return "both"
	}
	return ""
}

func ptTwips(v *float64) *int {
	if v == nil {
		return nil
	}
	n := units.PtToTwips(*v)
	return &n
}

func cmTwips(v *float64) *int {
	if v == nil {
		return nil
	}
	n := units.CmToTwips(*v)
	return &n
}
