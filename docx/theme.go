package docx

import (
	"fmt"
	"strconv"
	"strings"
)

// Theme holds the color and font scheme of a document theme.
type Theme struct {
	colors    map[string]string // clrScheme slot -> RRGGBB
	majorFont string
	minorFont string
}

// themeSlots maps w:themeColor values onto a:clrScheme slot names.
var themeSlots = map[string]string{
	"dark1": "dk1", "text1": "dk1",
	"light1": "lt1", "background1": "lt1",
	"dark2": "dk2", "text2": "dk2",
	"light2": "lt2", "background2": "lt2",
	"accent1": "accent1", "accent2": "accent2", "accent3": "accent3",
	"accent4": "accent4", "accent5": "accent5", "accent6": "accent6",
	"hyperlink": "hlink", "followedHyperlink": "folHlink",
}

func newTheme(t *themeXML) *Theme {
	th := &Theme{colors: make(map[string]string)}
	if t == nil {
		return th
	}
	for slot, c := range t.ColorScheme.Colors {
		if isHexColor(c) {
			th.colors[slot] = strings.ToUpper(c)
		}
	}
	if t.MajorLatin != nil {
		th.majorFont = t.MajorLatin.Typeface
	}
	if t.MinorLatin != nil {
		th.minorFont = t.MinorLatin.Typeface
	}
	return th
}

// Color resolves a theme color reference to RRGGBB, applying the optional
// tint and shade bytes. It reports false when the theme has no such slot.
func (t *Theme) Color(name, tint, shade string) (string, bool) {
	if t == nil {
		return "", false
	}
	slot, ok := themeSlots[name]
	if !ok {
		slot = name
	}
	hex, ok := t.colors[slot]
	if !ok {
		return "", false
	}
	if tint == "" && shade == "" {
		return hex, true
	}

	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", false
	}
	ch := [3]float64{float64(rgb >> 16 & 0xff), float64(rgb >> 8 & 0xff), float64(rgb & 0xff)}
	if v, err := strconv.ParseUint(shade, 16, 8); shade != "" && err == nil {
		for i := range ch {
			ch[i] = ch[i] * float64(v) / 255
		}
	}
	if v, err := strconv.ParseUint(tint, 16, 8); tint != "" && err == nil {
		for i := range ch {
			ch[i] = 255 - (255-ch[i])*float64(v)/255
		}
	}
	return fmt.Sprintf("%02X%02X%02X", int(ch[0]+0.5), int(ch[1]+0.5), int(ch[2]+0.5)), true
}

// Font resolves an rFonts theme reference such as minorHAnsi.
func (t *Theme) Font(ref string) string {
	if t == nil {
		return ""
	}
	switch {
	case strings.HasPrefix(ref, "major"):
		return t.majorFont
	case strings.HasPrefix(ref, "minor"):
		return t.minorFont
	}
	return ""
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}
