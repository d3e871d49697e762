package model

// Style types.
const (
	StyleParagraph = "paragraph"
	StyleCharacter = "character"
)

// DocumentStyle is a style definition with its BasedOn chain already
// flattened. Optional measurements are nil when the chain never sets them.
type DocumentStyle struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	BasedOn   string `json:"basedOn,omitempty"`
	NextStyle string `json:"nextStyle,omitempty"`

	FontFamily  string   `json:"fontFamily,omitempty"`
	FontSize    *float64 `json:"fontSize,omitempty"` // points
	Color       string   `json:"color,omitempty"`    // #rrggbb
	IsBold      bool     `json:"isBold,omitempty"`
	IsItalic    bool     `json:"isItalic,omitempty"`
	IsUnderline bool     `json:"isUnderline,omitempty"`

	Alignment       string   `json:"alignment,omitempty"`
	SpaceBefore     *float64 `json:"spaceBefore,omitempty"` // points
	SpaceAfter      *float64 `json:"spaceAfter,omitempty"`  // points
	LineSpacing     *float64 `json:"lineSpacing,omitempty"` // multiplier of single spacing
	LeftIndent      *float64 `json:"leftIndent,omitempty"`  // cm
	RightIndent     *float64 `json:"rightIndent,omitempty"` // cm
	FirstLineIndent *float64 `json:"firstLineIndent,omitempty"`
	OutlineLevel    int      `json:"outlineLevel,omitempty"` // 1-based, 0 for body text
}

func f(v float64) *float64 { return &v }

// DefaultStyles returns the built-in style set. It is used when a package
// defines no styles of its own and to seed the styles part on encode.
func DefaultStyles() []DocumentStyle {
	styles := []DocumentStyle{
		{
			ID: "Normal", Name: "Normal", Type: StyleParagraph,
			FontFamily: "Calibri", FontSize: f(11), Color: "#000000",
			Alignment: "left", SpaceAfter: f(8), LineSpacing: f(1.08),
		},
	}

	headings := []struct {
		size         float64
		color        string
		bold, italic bool
		before       float64
	}{
		{16, "#2F5496", true, false, 12},
		{13, "#2F5496", true, false, 2},
		{12, "#1F3763", true, false, 2},
		{11, "#2F5496", true, true, 2},
		{11, "#2F5496", false, false, 2},
		{11, "#1F3763", false, true, 2},
	}
	for i, h := range headings {
		level := i + 1
		styles = append(styles, DocumentStyle{
			ID:           "Heading" + string(rune('0'+level)),
			Name:         "heading " + string(rune('0'+level)),
			Type:         StyleParagraph,
			BasedOn:      "Normal",
			NextStyle:    "Normal",
			FontFamily:   "Calibri Light",
			FontSize:     f(h.size),
			Color:        h.color,
			IsBold:       h.bold,
			IsItalic:     h.italic,
			SpaceBefore:  f(h.before),
			SpaceAfter:   f(0),
			OutlineLevel: level,
		})
	}

	return append(styles,
		DocumentStyle{
			ID: "Title", Name: "Title", Type: StyleParagraph, BasedOn: "Normal", NextStyle: "Normal",
			FontFamily: "Calibri Light", FontSize: f(28), Color: "#000000",
			SpaceAfter: f(0), LineSpacing: f(1),
		},
		DocumentStyle{
			ID: "Subtitle", Name: "Subtitle", Type: StyleParagraph, BasedOn: "Normal", NextStyle: "Normal",
			FontFamily: "Calibri", FontSize: f(11), Color: "#5A5A5A",
			IsItalic: true, SpaceAfter: f(8),
		},
		DocumentStyle{
			ID: "Quote", Name: "Quote", Type: StyleParagraph, BasedOn: "Normal", NextStyle: "Normal",
			FontFamily: "Calibri", FontSize: f(11), Color: "#404040", IsItalic: true,
			LeftIndent: f(1.27), RightIndent: f(1.27), SpaceBefore: f(10), SpaceAfter: f(10),
		},
		DocumentStyle{
			ID: "ListParagraph", Name: "List Paragraph", Type: StyleParagraph, BasedOn: "Normal",
			LeftIndent: f(1.27),
		},
		DocumentStyle{
			ID: "Hyperlink", Name: "Hyperlink", Type: StyleCharacter,
			Color: "#0563C1", IsUnderline: true,
		},
	)
}

// FindStyle returns the style with the given id, or nil.
func FindStyle(styles []DocumentStyle, id string) *DocumentStyle {
	for i := range styles {
		if styles[i].ID == id {
			return &styles[i]
		}
	}
	return nil
}
