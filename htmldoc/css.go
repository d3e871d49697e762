package htmldoc

import (
	"math"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"

	"github.com/tsawler/docxhtml/units"
)

// DefaultFontSize is the size rem units and unsized text resolve against.
const DefaultFontSize = 11.0

// parseStyle parses an inline style attribute into lower-cased property
// names and trimmed values. Later declarations win; !important is ignored.
// Declarations before a syntax error are kept.
func parseStyle(style string) map[string]string {
	decls := make(map[string]string)
	style = strings.TrimSpace(style)
	if style == "" {
		return decls
	}
	// The parser only closes a declaration on ';' or '}'.
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	parsed, _ := parser.ParseDeclarations(style)
	for _, d := range parsed {
		name := strings.ToLower(strings.TrimSpace(d.Property))
		value := strings.TrimSpace(d.Value)
		if name == "" || value == "" {
			continue
		}
		decls[name] = value
	}
	return decls
}

var namedColors = map[string]string{
	"black":   "000000",
	"white":   "FFFFFF",
	"red":     "FF0000",
	"green":   "008000",
	"lime":    "00FF00",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"aqua":    "00FFFF",
	"magenta": "FF00FF",
	"fuchsia": "FF00FF",
	"gray":    "808080",
	"grey":    "808080",
	"silver":  "C0C0C0",
	"maroon":  "800000",
	"olive":   "808000",
	"purple":  "800080",
	"teal":    "008080",
	"navy":    "000080",
	"orange":  "FFA500",
}

// ParseColor converts a CSS color to six upper-case hex digits. It accepts
// #rgb, #rrggbb, rgb(), rgba() and the basic color names. Transparent and
// unrecognized values report false.
func ParseColor(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if hex, ok := namedColors[v]; ok {
		return hex, true
	}

	if strings.HasPrefix(v, "#") {
		h := v[1:]
		if len(h) == 3 {
			h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
		}
		if len(h) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(h, 16, 32); err != nil {
			return "", false
		}
		return strings.ToUpper(h), true
	}

	if strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba(") {
		open, closing := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
		if closing < open {
			return "", false
		}
		parts := strings.FieldsFunc(v[open+1:closing], func(r rune) bool {
			return r == ',' || r == ' ' || r == '/'
		})
		if len(parts) < 3 {
			return "", false
		}
		if len(parts) == 4 {
			if a, err := strconv.ParseFloat(parts[3], 64); err == nil && a == 0 {
				return "", false
			}
		}
		var b strings.Builder
		for _, p := range parts[:3] {
			var c float64
			var err error
			if strings.HasSuffix(p, "%") {
				c, err = strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
				c = c * 255 / 100
			} else {
				c, err = strconv.ParseFloat(p, 64)
			}
			if err != nil {
				return "", false
			}
			c = math.Max(0, math.Min(255, math.Round(c)))
			b.WriteString(strings.ToUpper(strconv.FormatInt(int64(c)+0x100, 16)[1:]))
		}
		return b.String(), true
	}
	return "", false
}

// splitNumber splits "12.5px" into 12.5 and "px".
func splitNumber(v string) (float64, string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	i := 0
	for i < len(v) && (v[i] == '-' || v[i] == '+' || v[i] == '.' || (v[i] >= '0' && v[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	n, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0, "", false
	}
	return n, strings.TrimSpace(v[i:]), true
}

// lengthToPt converts a CSS length to points. em resolves against fontPt,
// rem against DefaultFontSize. Unitless values other than zero are
// rejected.
func lengthToPt(v string, fontPt float64) (float64, bool) {
	n, unit, ok := splitNumber(v)
	if !ok {
		return 0, false
	}
	switch unit {
	case "px":
		return units.PxToPt(n), true
	case "pt":
		return n, true
	case "pc":
		return n * 12, true
	case "in":
		return n * units.PtPerInch, true
	case "cm":
		return n / units.CmPerInch * units.PtPerInch, true
	case "mm":
		return n / 10 / units.CmPerInch * units.PtPerInch, true
	case "em":
		return n * fontPt, true
	case "rem":
		return n * DefaultFontSize, true
	case "":
		if n == 0 {
			return 0, true
		}
	}
	return 0, false
}

// ParseLength converts a CSS length to twips.
func ParseLength(v string, fontPt float64) (int, bool) {
	pt, ok := lengthToPt(v, fontPt)
	if !ok {
		return 0, false
	}
	// px goes through units.PxToTwips, the inverse of decode's conversion.
	if n, unit, _ := splitNumber(v); unit == "px" {
		return units.PxToTwips(n), true
	}
	return units.PtToTwips(pt), true
}

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   16,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// ParseFontSize converts a CSS font-size to half-points. Relative units
// (em, %, smaller, larger) scale the inherited size.
func ParseFontSize(v string, inherited units.HalfPoints) (units.HalfPoints, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	base := DefaultFontSize
	if inherited > 0 {
		base = inherited.Pt()
	}

	if px, ok := fontSizeKeywords[v]; ok {
		return units.HalfPointsFromPt(units.PxToPt(px)), true
	}
	switch v {
	case "smaller":
		return units.HalfPointsFromPt(base / 1.2), true
	case "larger":
		return units.HalfPointsFromPt(base * 1.2), true
	}

	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return units.HalfPointsFromPt(base * n / 100), true
	}

	pt, ok := lengthToPt(v, base)
	if !ok || pt <= 0 {
		return 0, false
	}
	return units.HalfPointsFromPt(pt), true
}

// ParseLineHeight converts a CSS line-height. Unitless numbers and
// percentages are multipliers of single spacing (rule auto, 240 per line);
// lengths are exact heights in twips.
func ParseLineHeight(v string, fontPt float64) (line int, rule string, ok bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "normal" || v == "" {
		return 0, "", false
	}
	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil || n <= 0 {
			return 0, "", false
		}
		return int(math.Round(n / 100 * 240)), "auto", true
	}
	n, unit, ok := splitNumber(v)
	if !ok || n <= 0 {
		return 0, "", false
	}
	if unit == "" {
		return int(math.Round(n * 240)), "auto", true
	}
	tw, ok := ParseLength(v, fontPt)
	if !ok || tw <= 0 {
		return 0, "", false
	}
	return tw, "exact", true
}

// boxSides expands a 1-4 value margin/padding shorthand to top, right,
// bottom, left.
func boxSides(v string) [4]string {
	f := strings.Fields(v)
	switch len(f) {
	case 1:
		return [4]string{f[0], f[0], f[0], f[0]}
	case 2:
		return [4]string{f[0], f[1], f[0], f[1]}
	case 3:
		return [4]string{f[0], f[1], f[2], f[1]}
	case 4:
		return [4]string{f[0], f[1], f[2], f[3]}
	}
	return [4]string{}
}

var sideNames = [4]string{"top", "right", "bottom", "left"}

// lengthSides resolves prop (margin or padding) and its per-side longhands
// to twips. Unset sides are nil.
func lengthSides(decls map[string]string, prop string, fontPt float64) [4]*int {
	var out [4]*int
	if v, ok := decls[prop]; ok {
		for i, s := range boxSides(v) {
			if tw, ok := ParseLength(s, fontPt); ok {
				out[i] = intPtr(tw)
			}
		}
	}
	for i, side := range sideNames {
		if v, ok := decls[prop+"-"+side]; ok {
			if tw, ok := ParseLength(v, fontPt); ok {
				out[i] = intPtr(tw)
			}
		}
	}
	return out
}

// ParseBorder parses a border shorthand such as "1px solid #000".
func ParseBorder(v string) (*Border, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, false
	}
	b := &Border{Style: "single", Eighths: 4, Color: "000000"}
	for _, tok := range strings.Fields(normalizeColorFunctions(v)) {
		lt := strings.ToLower(tok)
		switch lt {
		case "none", "hidden":
			return &Border{Style: "none"}, true
		case "solid":
			b.Style = "single"
			continue
		case "double", "dotted", "dashed":
			b.Style = lt
			continue
		case "groove", "ridge", "inset", "outset":
			b.Style = "single"
			continue
		case "thin":
			b.Eighths = units.PxToEighths(1)
			continue
		case "medium":
			b.Eighths = units.PxToEighths(3)
			continue
		case "thick":
			b.Eighths = units.PxToEighths(5)
			continue
		}
		if c, ok := ParseColor(tok); ok {
			b.Color = c
			continue
		}
		if pt, ok := lengthToPt(tok, DefaultFontSize); ok {
			if n, unit, _ := splitNumber(tok); unit == "px" {
				b.Eighths = units.PxToEighths(n)
			} else {
				b.Eighths = int(math.Round(pt * 8))
			}
			if b.Eighths <= 0 {
				return &Border{Style: "none"}, true
			}
		}
	}
	return b, true
}

// normalizeColorFunctions removes the spaces inside rgb()/rgba() so a
// border shorthand can be split on whitespace.
func normalizeColorFunctions(v string) string {
	var b strings.Builder
	depth := 0
	for _, r := range v {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ' ' && depth > 0:
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseBorders resolves the border shorthand and its per-side longhands.
func parseBorders(decls map[string]string) Borders {
	var sides [4]*Border
	if v, ok := decls["border"]; ok {
		if b, ok := ParseBorder(v); ok {
			for i := range sides {
				c := *b
				sides[i] = &c
			}
		}
	}
	for i, side := range sideNames {
		if v, ok := decls["border-"+side]; ok {
			if b, ok := ParseBorder(v); ok {
				sides[i] = b
			}
		}
	}
	return Borders{Top: sides[0], Right: sides[1], Bottom: sides[2], Left: sides[3]}
}

// alignment maps text-align to a w:jc value.
func alignment(v string) string {
	switch strings.ToLower(v) {
	case "left", "start":
		return "left"
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "justify":
		return "both"
	}
	return ""
}

// fontFamily returns the first family of a font-family list.
func fontFamily(v string) string {
	first, _, _ := strings.Cut(v, ",")
	first = strings.Trim(strings.TrimSpace(first), `'"`)
	switch strings.ToLower(first) {
	case "serif", "sans-serif", "monospace", "cursive", "fantasy", "system-ui", "inherit", "initial":
		return ""
	}
	return first
}

// applyRunCSS overlays the character properties of decls on st.
func applyRunCSS(st RunStyle, decls map[string]string) RunStyle {
	if v, ok := decls["font-weight"]; ok {
		switch strings.ToLower(v) {
		case "bold", "bolder":
			st.Bold = true
		case "normal", "lighter":
			st.Bold = false
		default:
			if n, err := strconv.Atoi(v); err == nil {
				st.Bold = n >= 600
			}
		}
	}
	if v, ok := decls["font-style"]; ok {
		lv := strings.ToLower(v)
		st.Italic = lv == "italic" || lv == "oblique"
	}
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		if v, ok := decls[prop]; ok {
			lv := strings.ToLower(v)
			if lv == "none" {
				st.Underline, st.Strike = false, false
				continue
			}
			if strings.Contains(lv, "underline") {
				st.Underline = true
			}
			if strings.Contains(lv, "line-through") {
				st.Strike = true
			}
		}
	}
	if v, ok := decls["vertical-align"]; ok {
		switch strings.ToLower(v) {
		case "super":
			st.VertAlign = "superscript"
		case "sub":
			st.VertAlign = "subscript"
		case "baseline":
			st.VertAlign = ""
		}
	}
	if v, ok := decls["font-family"]; ok {
		if f := fontFamily(v); f != "" {
			st.Font = f
		}
	}
	if v, ok := decls["font-size"]; ok {
		if hp, ok := ParseFontSize(v, st.Size); ok {
			st.Size = hp
		}
	}
	if v, ok := decls["color"]; ok {
		if c, ok := ParseColor(v); ok {
			st.Color = c
		}
	}
	for _, prop := range []string{"background", "background-color"} {
		if v, ok := decls[prop]; ok {
			if c, ok := ParseColor(v); ok {
				st.Background = c
			}
		}
	}
	if v, ok := decls["text-transform"]; ok {
		st.Caps = strings.EqualFold(v, "uppercase")
	}
	if v, ok := decls["font-variant"]; ok {
		st.SmallCaps = strings.EqualFold(v, "small-caps")
	}
	if v, ok := decls["letter-spacing"]; ok {
		if tw, ok := ParseLength(v, sizePt(st.Size)); ok {
			st.Spacing = tw
		}
	}
	return st
}

// paragraphStyle resolves the paragraph properties of decls.
func paragraphStyle(decls map[string]string, fontPt float64) ParagraphStyle {
	var ps ParagraphStyle
	if v, ok := decls["text-align"]; ok {
		ps.Align = alignment(v)
	}
	margins := lengthSides(decls, "margin", fontPt)
	ps.SpaceBefore, ps.IndentRight, ps.SpaceAfter, ps.IndentLeft = margins[0], margins[1], margins[2], margins[3]
	if v, ok := decls["text-indent"]; ok {
		if tw, ok := ParseLength(v, fontPt); ok {
			ps.IndentFirst = intPtr(tw)
		}
	}
	if v, ok := decls["line-height"]; ok {
		ps.Line, ps.LineRule, _ = ParseLineHeight(v, fontPt)
	}
	for _, prop := range []string{"background", "background-color"} {
		if v, ok := decls[prop]; ok {
			if c, ok := ParseColor(v); ok {
				ps.Background = c
			}
		}
	}
	ps.Borders = parseBorders(decls)
	for _, prop := range []string{"page-break-before", "break-before"} {
		if v, ok := decls[prop]; ok && (v == "always" || v == "page") {
			ps.PageBreakBefore = true
		}
	}
	return ps
}

// parseWidth parses a width declaration or attribute.
func parseWidth(v string) Width {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		if n, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil && n > 0 {
			return Width{Percent: n}
		}
		return Width{}
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
		return Width{Twips: units.PxToTwips(n)}
	}
	if tw, ok := ParseLength(v, DefaultFontSize); ok && tw > 0 {
		return Width{Twips: tw}
	}
	return Width{}
}

// sizePt returns h in points, or DefaultFontSize when h is unset.
func sizePt(h units.HalfPoints) float64 {
	if h <= 0 {
		return DefaultFontSize
	}
	return h.Pt()
}

func intPtr(n int) *int { return &n }
