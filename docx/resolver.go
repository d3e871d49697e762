package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// RunProps holds character properties. A nil field is not set at this
// level and inherits; a set field overrides whatever it inherits.
type RunProps struct {
	Font      *string
	Size      *units.HalfPoints
	Color     *string // RRGGBB; "" means explicitly no color
	Highlight *string // highlight palette name
	Shading   *string // RRGGBB fill
	Bold      *bool
	Italic    *bool
	Underline *bool
	Strike    *bool
	Caps      *bool
	SmallCaps *bool
	VertAlign *string // superscript, subscript, baseline
	Spacing   *int    // letter spacing in twips
}

// merge overlays every property set in o.
func (r *RunProps) merge(o RunProps) {
	if o.Font != nil {
		r.Font = o.Font
	}
	if o.Size != nil {
		r.Size = o.Size
	}
	if o.Color != nil {
		r.Color = o.Color
	}
	if o.Highlight != nil {
		r.Highlight = o.Highlight
	}
	if o.Shading != nil {
		r.Shading = o.Shading
	}
	if o.Bold != nil {
		r.Bold = o.Bold
	}
	if o.Italic != nil {
		r.Italic = o.Italic
	}
	if o.Underline != nil {
		r.Underline = o.Underline
	}
	if o.Strike != nil {
		r.Strike = o.Strike
	}
	if o.Caps != nil {
		r.Caps = o.Caps
	}
	if o.SmallCaps != nil {
		r.SmallCaps = o.SmallCaps
	}
	if o.VertAlign != nil {
		r.VertAlign = o.VertAlign
	}
	if o.Spacing != nil {
		r.Spacing = o.Spacing
	}
}

// ParaProps holds paragraph properties with the same set/unset semantics
// as RunProps. Lengths are in twips.
type ParaProps struct {
	Alignment       *string
	SpaceBefore     *int
	SpaceAfter      *int
	Line            *int
	LineRule        *string
	IndentLeft      *int
	IndentRight     *int
	IndentFirst     *int // negative for a hanging indent
	OutlineLevel    *int // 0-based
	Shading         *string
	Borders         *bordersXML
	NumID           *string
	ILvl            *int
	PageBreakBefore *bool
}

func (p *ParaProps) merge(o ParaProps) {
	if o.Alignment != nil {
		p.Alignment = o.Alignment
	}
	if o.SpaceBefore != nil {
		p.SpaceBefore = o.SpaceBefore
	}
	if o.SpaceAfter != nil {
		p.SpaceAfter = o.SpaceAfter
	}
	if o.Line != nil {
		p.Line = o.Line
	}
	if o.LineRule != nil {
		p.LineRule = o.LineRule
	}
	if o.IndentLeft != nil {
		p.IndentLeft = o.IndentLeft
	}
	if o.IndentRight != nil {
		p.IndentRight = o.IndentRight
	}
	if o.IndentFirst != nil {
		p.IndentFirst = o.IndentFirst
	}
	if o.OutlineLevel != nil {
		p.OutlineLevel = o.OutlineLevel
	}
	if o.Shading != nil {
		p.Shading = o.Shading
	}
	if o.Borders != nil {
		p.Borders = o.Borders
	}
	if o.NumID != nil {
		p.NumID = o.NumID
	}
	if o.ILvl != nil {
		p.ILvl = o.ILvl
	}
	if o.PageBreakBefore != nil {
		p.PageBreakBefore = o.PageBreakBefore
	}
}

// ResolvedStyle contains the properties a style contributes once its
// BasedOn chain is flattened. Document defaults are not folded in; see
// StyleResolver.Defaults.
type ResolvedStyle struct {
	ID      string
	Name    string
	Type    string // paragraph, character, table
	BasedOn string
	Next    string

	// HeadingLevel is 1-9 for Heading<N> styles and paragraph styles whose
	// chain sets an outline level, 0 otherwise.
	HeadingLevel int

	Para ParaProps
	Run  RunProps
}

// StyleResolver resolves styles with inheritance support. It caches per
// instance and is owned by a single conversion.
type StyleResolver struct {
	styles    map[string]*styleDefXML
	order     []string
	defaults  ResolvedStyle
	resolved  map[string]*ResolvedStyle
	defaultID string // default paragraph style
	theme     *Theme
	warn      warnFunc
	missing   map[string]bool
}

type warnFunc func(kind model.WarningKind, part, msg string)

// NewStyleResolver creates a resolver from a parsed styles part. Both
// arguments may be nil.
func NewStyleResolver(styles *stylesXML, theme *Theme) *StyleResolver {
	sr := &StyleResolver{
		styles:   make(map[string]*styleDefXML),
		resolved: make(map[string]*ResolvedStyle),
		theme:    theme,
		missing:  make(map[string]bool),
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		if style.StyleID == "" {
			continue
		}
		if _, dup := sr.styles[style.StyleID]; !dup {
			sr.order = append(sr.order, style.StyleID)
		}
		sr.styles[style.StyleID] = style
		if style.Type == model.StyleParagraph && (style.Default == "1" || style.Default == "true") {
			sr.defaultID = style.StyleID
		}
	}

	if rpr := styles.DocDefaults.RPrDefault.RPr; rpr != nil {
		sr.defaults.Run = sr.RunProps(rpr)
	}
	if ppr := styles.DocDefaults.PPrDefault.PPr; ppr != nil {
		sr.defaults.Para = sr.ParaProps(ppr)
	}

	return sr
}

// Defaults returns the document default properties (w:docDefaults).
func (sr *StyleResolver) Defaults() ResolvedStyle {
	return sr.defaults
}

// Resolve returns the flattened style for styleID. Unknown ids resolve to
// an empty style that contributes nothing beyond the document defaults.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := &ResolvedStyle{ID: styleID, HeadingLevel: headingLevel(styleID)}
	def, ok := sr.styles[styleID]
	if !ok {
		if styleID != "" && !sr.missing[styleID] {
			sr.missing[styleID] = true
			sr.warnf(model.MissingStyle, "styles", "style "+strconv.Quote(styleID)+" is not defined")
		}
		sr.resolved[styleID] = resolved
		return resolved
	}

	resolved.Type = def.Type
	if def.Name != nil {
		resolved.Name = def.Name.Val
	}
	if def.BasedOn != nil {
		resolved.BasedOn = def.BasedOn.Val
	}
	if def.Next != nil {
		resolved.Next = def.Next.Val
	}

	// Apply properties from base to derived
	for _, sid := range sr.buildInheritanceChain(styleID) {
		d := sr.styles[sid]
		if d.PPr != nil {
			resolved.Para.merge(sr.ParaProps(d.PPr))
		}
		if d.RPr != nil {
			resolved.Run.merge(sr.RunProps(d.RPr))
		}
	}
	if lvl := resolved.Para.OutlineLevel; resolved.HeadingLevel == 0 && resolved.Type == model.StyleParagraph && lvl != nil && *lvl >= 0 && *lvl < 9 {
		resolved.HeadingLevel = *lvl + 1
	}

	sr.resolved[styleID] = resolved
	return resolved
}

// Paragraph resolves a paragraph's style, using the default paragraph
// style when styleID is empty or undefined.
func (sr *StyleResolver) Paragraph(styleID string) *ResolvedStyle {
	if styleID != "" {
		if _, ok := sr.styles[styleID]; ok {
			return sr.Resolve(styleID)
		}
		sr.Resolve(styleID) // records the miss
		if lvl := headingLevel(styleID); lvl > 0 {
			return &ResolvedStyle{ID: styleID, HeadingLevel: lvl}
		}
	}
	return sr.Resolve(sr.defaultID)
}

// DefaultParagraphID returns the id of the default paragraph style, if any.
func (sr *StyleResolver) DefaultParagraphID() string {
	return sr.defaultID
}

// buildInheritanceChain returns style IDs from base to derived. A visited
// set stops cyclic BasedOn references; undefined bases end the chain.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		def, ok := sr.styles[current]
		if !ok {
			break
		}
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend

		if def.BasedOn == nil {
			break
		}
		current = def.BasedOn.Val
	}

	return chain
}

// RunProps converts a w:rPr element. Theme colors are resolved here; an
// unresolvable reference sets Color to "" so no color is emitted.
func (sr *StyleResolver) RunProps(rpr *runPropsXML) RunProps {
	var r RunProps
	if rpr == nil {
		return r
	}

	if rpr.Font != nil {
		switch {
		case rpr.Font.ASCII != "":
			r.Font = str(rpr.Font.ASCII)
		case rpr.Font.HAnsi != "":
			r.Font = str(rpr.Font.HAnsi)
		case rpr.Font.ASCIITheme != "" || rpr.Font.HAnsiTheme != "":
			ref := rpr.Font.ASCIITheme
			if ref == "" {
				ref = rpr.Font.HAnsiTheme
			}
			if name := sr.theme.Font(ref); name != "" {
				r.Font = str(name)
			}
		}
	}
	if rpr.FontSize != nil {
		if hp, ok := units.ParseHalfPoints(rpr.FontSize.Val); ok {
			r.Size = &hp
		}
	}
	if rpr.Color != nil {
		r.Color = sr.color(rpr.Color)
	}
	if rpr.Highlight != nil && rpr.Highlight.Val != "" {
		r.Highlight = str(rpr.Highlight.Val)
	}
	if rpr.Shading != nil {
		if fill := shadingFill(rpr.Shading); fill != "" {
			r.Shading = str(fill)
		}
	}
	r.Bold = toggle(rpr.Bold)
	r.Italic = toggle(rpr.Italic)
	r.Caps = toggle(rpr.Caps)
	r.SmallCaps = toggle(rpr.SmallCaps)
	if rpr.Strike != nil || rpr.DStrike != nil {
		on := rpr.Strike.on() || rpr.DStrike.on()
		r.Strike = &on
	}
	if rpr.Underline != nil {
		on := rpr.Underline.Val != "none" && rpr.Underline.Val != "0"
		r.Underline = &on
	}
	if rpr.VertAlign != nil && rpr.VertAlign.Val != "" {
		r.VertAlign = str(rpr.VertAlign.Val)
	}
	if rpr.Spacing != nil {
		if n, err := strconv.Atoi(rpr.Spacing.Val); err == nil {
			r.Spacing = &n
		}
	}
	return r
}

func (sr *StyleResolver) color(c *colorXML) *string {
	if c.ThemeColor != "" {
		if hex, ok := sr.theme.Color(c.ThemeColor, c.ThemeTint, c.ThemeShade); ok {
			return &hex
		}
		sr.warnf(model.UnresolvedThemeColor, "theme", "theme color "+strconv.Quote(c.ThemeColor)+" is not defined")
		return str("")
	}
	if c.Val == "" || strings.EqualFold(c.Val, "auto") || !isHexColor(c.Val) {
		return nil
	}
	return str(strings.ToUpper(c.Val))
}

// ParaProps converts a w:pPr element.
func (sr *StyleResolver) ParaProps(ppr *paragraphPropsXML) ParaProps {
	var p ParaProps
	if ppr == nil {
		return p
	}

	if ppr.Justification != nil && ppr.Justification.Val != "" {
		p.Alignment = str(ppr.Justification.Val)
	}
	if s := ppr.Spacing; s != nil {
		p.SpaceBefore = twips(s.Before)
		p.SpaceAfter = twips(s.After)
		p.Line = twips(s.Line)
		if s.LineRule != "" {
			p.LineRule = str(s.LineRule)
		}
	}
	if ind := ppr.Indent; ind != nil {
		p.IndentLeft = twips(firstNonEmpty(ind.Left, ind.Start))
		p.IndentRight = twips(firstNonEmpty(ind.Right, ind.End))
		p.IndentFirst = twips(ind.FirstLine)
		if h := twips(ind.Hanging); h != nil {
			neg := -*h
			p.IndentFirst = &neg
		}
	}
	if ppr.OutlineLvl != nil {
		p.OutlineLevel = twips(ppr.OutlineLvl.Val)
	}
	if ppr.Shading != nil {
		if fill := shadingFill(ppr.Shading); fill != "" {
			p.Shading = str(fill)
		}
	}
	p.Borders = ppr.Borders
	if n := ppr.NumPr; n != nil {
		if n.NumID != nil {
			p.NumID = str(n.NumID.Val)
		}
		if n.ILvl != nil {
			p.ILvl = twips(n.ILvl.Val)
		}
	}
	p.PageBreakBefore = toggle(ppr.PageBreakBefore)
	return p
}

func (sr *StyleResolver) warnf(kind model.WarningKind, part, msg string) {
	if sr.warn != nil {
		sr.warn(kind, part, msg)
	}
}

// Styles exports paragraph and character styles with their BasedOn chain
// and the document defaults flattened in. Semi-hidden styles are skipped.
// When the package defines none, the built-in defaults are returned.
func (sr *StyleResolver) Styles() []model.DocumentStyle {
	var out []model.DocumentStyle
	for _, id := range sr.order {
		def := sr.styles[id]
		if def.Type != model.StyleParagraph && def.Type != model.StyleCharacter {
			continue
		}
		if def.SemiHidden.on() {
			continue
		}

		rs := sr.Resolve(id)
		flat := ResolvedStyle{Para: rs.Para, Run: rs.Run}
		if def.Type == model.StyleParagraph {
			flat = sr.defaults
			flat.Para.merge(rs.Para)
			flat.Run.merge(rs.Run)
		}
		out = append(out, exportStyle(rs, flat))
	}
	if len(out) == 0 {
		return model.DefaultStyles()
	}
	return out
}

func exportStyle(rs *ResolvedStyle, flat ResolvedStyle) model.DocumentStyle {
	ds := model.DocumentStyle{
		ID:        rs.ID,
		Name:      rs.Name,
		Type:      rs.Type,
		BasedOn:   rs.BasedOn,
		NextStyle: rs.Next,
	}
	if ds.Name == "" {
		ds.Name = rs.ID
	}

	run := flat.Run
	if run.Font != nil {
		ds.FontFamily = *run.Font
	}
	if run.Size != nil {
		ds.FontSize = float(run.Size.Pt())
	}
	if run.Color != nil && *run.Color != "" {
		ds.Color = "#" + *run.Color
	}
	ds.IsBold = isTrue(run.Bold)
	ds.IsItalic = isTrue(run.Italic)
	ds.IsUnderline = isTrue(run.Underline)

	para := flat.Para
	if para.Alignment != nil {
		ds.Alignment = cssAlignment(*para.Alignment)
	}
	if para.SpaceBefore != nil {
		ds.SpaceBefore = float(units.TwipsToPt(*para.SpaceBefore))
	}
	if para.SpaceAfter != nil {
		ds.SpaceAfter = float(units.TwipsToPt(*para.SpaceAfter))
	}
	if para.Line != nil && (para.LineRule == nil || *para.LineRule == "auto") {
		ds.LineSpacing = float(units.Round2(float64(*para.Line) / singleLine))
	}
	if para.IndentLeft != nil {
		ds.LeftIndent = float(units.TwipsToCm(*para.IndentLeft))
	}
	if para.IndentRight != nil {
		ds.RightIndent = float(units.TwipsToCm(*para.IndentRight))
	}
	if para.IndentFirst != nil {
		ds.FirstLineIndent = float(units.TwipsToCm(*para.IndentFirst))
	}
	if para.OutlineLevel != nil && *para.OutlineLevel < 9 {
		ds.OutlineLevel = *para.OutlineLevel + 1
	}
	return ds
}

// singleLine is the w:spacing/@w:line value of single line spacing.
const singleLine = 240

// headingStylePrefixes are the built-in heading style ids of English and
// Polish Word, lower-cased.
var headingStylePrefixes = []string{"heading", "nagwek"}

// headingLevel returns N for Heading<N> and Nagwek<N> style ids
// (case-insensitive).
func headingLevel(styleID string) int {
	id := strings.ToLower(strings.TrimSpace(styleID))
	rest, ok := "", false
	for _, prefix := range headingStylePrefixes {
		if rest, ok = strings.CutPrefix(id, prefix); ok {
			break
		}
	}
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || n < 1 || n > 9 {
		return 0
	}
	return n
}

func shadingFill(s *shadingXML) string {
	if s.Fill != "" && !strings.EqualFold(s.Fill, "auto") && isHexColor(s.Fill) {
		return strings.ToUpper(s.Fill)
	}
	return ""
}

func toggle(o *onOffXML) *bool {
	if o == nil {
		return nil
	}
	on := o.on()
	return &on
}

// twips parses an integer attribute; empty or malformed values are unset.
func twips(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int(f)
	}
	return &n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func str(s string) *string { return &s }

func float(f float64) *float64 { return &f }

func isTrue(b *bool) bool { return b != nil && *b }
