package docx

import (
	"encoding/xml"
	"io"
	"strconv"
)

// XML namespaces used in DOCX files
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsDC  = "http://purl.org/dc/elements/1.1/"
	nsCP  = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
)

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// bodyXML holds block content in document order. It is used for w:body,
// w:hdr, w:ftr and the block part of w:tc.
type bodyXML struct {
	Elements []blockXML
	SectPr   *sectPrXML
}

// blockXML is one block-level element: exactly one field is set.
type blockXML struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, func(t xml.StartElement) error {
		return b.decodeBlock(d, t)
	})
}

// decodeBlock decodes one child of a block container. Structured document
// tags and custom XML wrappers are flattened into the container.
func (b *bodyXML) decodeBlock(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "p":
		p := &paragraphXML{}
		if err := d.DecodeElement(p, &t); err != nil {
			return err
		}
		b.Elements = append(b.Elements, blockXML{Paragraph: p})
	case "tbl":
		tbl := &tableXML{}
		if err := d.DecodeElement(tbl, &t); err != nil {
			return err
		}
		b.Elements = append(b.Elements, blockXML{Table: tbl})
	case "sectPr":
		b.SectPr = &sectPrXML{}
		return d.DecodeElement(b.SectPr, &t)
	case "sdt", "customXml":
		return decodeChildren(d, func(c xml.StartElement) error {
			if c.Name.Local == "sdtContent" {
				return decodeChildren(d, func(cc xml.StartElement) error {
					return b.decodeBlock(d, cc)
				})
			}
			if t.Name.Local == "customXml" {
				return b.decodeBlock(d, c)
			}
			return d.Skip()
		})
	default:
		return d.Skip()
	}
	return nil
}

// decodeChildren calls fn for every direct child element until the matching
// end element. fn must consume the child completely.
func decodeChildren(d *xml.Decoder, fn func(xml.StartElement) error) error {
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// paragraphXML represents a paragraph element (<w:p>).
type paragraphXML struct {
	Properties *paragraphPropsXML
	Content    []inlineXML
}

// inlineXML is one paragraph child: exactly one field is set.
type inlineXML struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
	Field     *simpleFieldXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, func(t xml.StartElement) error {
		if t.Name.Local == "pPr" {
			p.Properties = &paragraphPropsXML{}
			return d.DecodeElement(p.Properties, &t)
		}
		return decodeInline(d, t, &p.Content)
	})
}

// decodeInline decodes a run-level element. Inserted text, smart tags and
// inline content controls are flattened; deleted text is skipped.
func decodeInline(d *xml.Decoder, t xml.StartElement, out *[]inlineXML) error {
	switch t.Name.Local {
	case "r":
		r := &runXML{}
		if err := d.DecodeElement(r, &t); err != nil {
			return err
		}
		*out = append(*out, inlineXML{Run: r})
	case "hyperlink":
		h := &hyperlinkXML{}
		for _, a := range t.Attr {
			switch a.Name.Local {
			case "id":
				h.ID = a.Value
			case "anchor":
				h.Anchor = a.Value
			}
		}
		if err := decodeChildren(d, func(c xml.StartElement) error {
			return decodeInline(d, c, &h.Content)
		}); err != nil {
			return err
		}
		*out = append(*out, inlineXML{Hyperlink: h})
	case "fldSimple":
		f := &simpleFieldXML{}
		for _, a := range t.Attr {
			if a.Name.Local == "instr" {
				f.Instr = a.Value
			}
		}
		if err := decodeChildren(d, func(c xml.StartElement) error {
			return decodeInline(d, c, &f.Content)
		}); err != nil {
			return err
		}
		*out = append(*out, inlineXML{Field: f})
	case "ins", "smartTag", "customXml", "sdtContent":
		return decodeChildren(d, func(c xml.StartElement) error {
			return decodeInline(d, c, out)
		})
	case "sdt":
		return decodeChildren(d, func(c xml.StartElement) error {
			if c.Name.Local == "sdtContent" {
				return decodeInline(d, c, out)
			}
			return d.Skip()
		})
	default:
		return d.Skip()
	}
	return nil
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style           *valXML     `xml:"pStyle"`
	NumPr           *numPrXML   `xml:"numPr"`
	Justification   *valXML     `xml:"jc"`
	Spacing         *spacingXML `xml:"spacing"`
	Indent          *indentXML  `xml:"ind"`
	OutlineLvl      *valXML     `xml:"outlineLvl"`
	Shading         *shadingXML `xml:"shd"`
	Borders         *bordersXML `xml:"pBdr"`
	KeepNext        *onOffXML   `xml:"keepNext"`
	PageBreakBefore *onOffXML   `xml:"pageBreakBefore"`
	SectPr          *sectPrXML  `xml:"sectPr"`
}

// valXML is the common single-attribute element (w:val).
type valXML struct {
	Val string `xml:"val,attr"`
}

// onOffXML is a toggle property. Presence means on unless val says otherwise.
type onOffXML struct {
	Val string `xml:"val,attr"`
}

func (o *onOffXML) on() bool {
	if o == nil {
		return false
	}
	switch o.Val {
	case "false", "0", "off", "none":
		return false
	}
	return true
}

// numPrXML represents numbering properties for lists.
type numPrXML struct {
	ILvl  *valXML `xml:"ilvl"`
	NumID *valXML `xml:"numId"`
}

// spacingXML represents paragraph spacing.
type spacingXML struct {
	Before   string `xml:"before,attr"` // twips
	After    string `xml:"after,attr"`  // twips
	Line     string `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"` // auto, exact, atLeast
}

// indentXML represents paragraph indentation. start/end are the
// bidi-neutral spellings of left/right.
type indentXML struct {
	Left      string `xml:"left,attr"`
	Start     string `xml:"start,attr"`
	Right     string `xml:"right,attr"`
	End       string `xml:"end,attr"`
	FirstLine string `xml:"firstLine,attr"`
	Hanging   string `xml:"hanging,attr"`
}

// runXML represents a text run (<w:r>).
type runXML struct {
	Properties *runPropsXML
	Content    []runContentXML
}

type runContentKind int

const (
	runText runContentKind = iota
	runTab
	runBreak
	runDrawing
	runPict
	runFieldChar
	runInstrText
)

// runContentXML is one run child in document order.
type runContentXML struct {
	Kind      runContentKind
	Text      string // text, instruction text or symbol
	BreakType string // page, column, textWrapping
	FieldChar string // begin, separate, end
	Drawing   *drawingXML
	Pict      *pictXML
}

func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, func(t xml.StartElement) error {
		return r.decodeContent(d, t)
	})
}

func (r *runXML) decodeContent(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "rPr":
		r.Properties = &runPropsXML{}
		return d.DecodeElement(r.Properties, &t)
	case "t":
		var s string
		if err := d.DecodeElement(&s, &t); err != nil {
			return err
		}
		r.Content = append(r.Content, runContentXML{Kind: runText, Text: s})
		return nil
	case "instrText":
		var s string
		if err := d.DecodeElement(&s, &t); err != nil {
			return err
		}
		r.Content = append(r.Content, runContentXML{Kind: runInstrText, Text: s})
		return nil
	case "tab", "ptab":
		r.Content = append(r.Content, runContentXML{Kind: runTab})
	case "br":
		r.Content = append(r.Content, runContentXML{Kind: runBreak, BreakType: attr(t, "type")})
	case "cr":
		r.Content = append(r.Content, runContentXML{Kind: runBreak})
	case "noBreakHyphen":
		r.Content = append(r.Content, runContentXML{Kind: runText, Text: "\u2011"})
	case "softHyphen":
		r.Content = append(r.Content, runContentXML{Kind: runText, Text: "\u00ad"})
	case "sym":
		if s := symbolText(attr(t, "char")); s != "" {
			r.Content = append(r.Content, runContentXML{Kind: runText, Text: s})
		}
	case "fldChar":
		r.Content = append(r.Content, runContentXML{Kind: runFieldChar, FieldChar: attr(t, "fldCharType")})
	case "drawing":
		dr := &drawingXML{}
		if err := d.DecodeElement(dr, &t); err != nil {
			return err
		}
		r.Content = append(r.Content, runContentXML{Kind: runDrawing, Drawing: dr})
		return nil
	case "pict", "object":
		p := &pictXML{}
		if err := d.DecodeElement(p, &t); err != nil {
			return err
		}
		if p.Shape != nil && p.Shape.ImageData != nil {
			r.Content = append(r.Content, runContentXML{Kind: runPict, Pict: p})
		}
		return nil
	case "AlternateContent":
		return r.decodeAlternate(d)
	}
	return d.Skip()
}

// decodeAlternate takes the first mc:Choice that yields content and falls
// back to mc:Fallback otherwise.
func (r *runXML) decodeAlternate(d *xml.Decoder) error {
	done := false
	return decodeChildren(d, func(t xml.StartElement) error {
		if done || (t.Name.Local != "Choice" && t.Name.Local != "Fallback") {
			return d.Skip()
		}
		before := len(r.Content)
		err := decodeChildren(d, func(c xml.StartElement) error {
			return r.decodeContent(d, c)
		})
		done = len(r.Content) > before
		return err
	})
}

// symbolText converts a w:sym character code to text. Codes in the
// private-use range F000-F0FF address the symbol font's own glyphs and are
// mapped back to their base code point.
func symbolText(code string) string {
	n, err := strconv.ParseUint(code, 16, 32)
	if err != nil || n == 0 {
		return ""
	}
	if n >= 0xF000 && n <= 0xF0FF {
		n -= 0xF000
	}
	return string(rune(n))
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     *valXML     `xml:"rStyle"`
	Bold      *onOffXML   `xml:"b"`
	Italic    *onOffXML   `xml:"i"`
	Underline *valXML     `xml:"u"`
	Strike    *onOffXML   `xml:"strike"`
	DStrike   *onOffXML   `xml:"dstrike"`
	Caps      *onOffXML   `xml:"caps"`
	SmallCaps *onOffXML   `xml:"smallCaps"`
	FontSize  *valXML     `xml:"sz"`
	Font      *fontXML    `xml:"rFonts"`
	Color     *colorXML   `xml:"color"`
	Highlight *valXML     `xml:"highlight"`
	Shading   *shadingXML `xml:"shd"`
	VertAlign *valXML     `xml:"vertAlign"`
	Spacing   *valXML     `xml:"spacing"` // character spacing in twips
}

// fontXML represents font settings.
type fontXML struct {
	ASCII      string `xml:"ascii,attr"`
	HAnsi      string `xml:"hAnsi,attr"`
	CS         string `xml:"cs,attr"`
	EastAsia   string `xml:"eastAsia,attr"`
	ASCIITheme string `xml:"asciiTheme,attr"`
	HAnsiTheme string `xml:"hAnsiTheme,attr"`
}

// colorXML represents text color, either literal or theme-symbolic.
type colorXML struct {
	Val        string `xml:"val,attr"` // hex or "auto"
	ThemeColor string `xml:"themeColor,attr"`
	ThemeTint  string `xml:"themeTint,attr"`
	ThemeShade string `xml:"themeShade,attr"`
}

// drawingXML represents an embedded drawing/image.
type drawingXML struct {
	Inline *drawingObjectXML `xml:"inline"`
	Anchor *drawingObjectXML `xml:"anchor"`
}

func (d *drawingXML) object() *drawingObjectXML {
	if d.Inline != nil {
		return d.Inline
	}
	return d.Anchor
}

// drawingObjectXML is the common part of wp:inline and wp:anchor.
type drawingObjectXML struct {
	Extent extentXML `xml:"extent"`
	DocPr  docPrXML  `xml:"docPr"`
	Blip   *blipXML  `xml:"graphic>graphicData>pic>blipFill>blip"`
}

// extentXML represents image dimensions.
type extentXML struct {
	CX string `xml:"cx,attr"` // Width in EMUs
	CY string `xml:"cy,attr"` // Height in EMUs
}

// docPrXML represents document properties of an image.
type docPrXML struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"` // Alt text
}

// blipXML represents an image reference.
type blipXML struct {
	Embed string `xml:"embed,attr"` // Relationship ID
}

// pictXML is a legacy VML picture (<w:pict>).
type pictXML struct {
	Shape *vmlShapeXML `xml:"shape"`
}

type vmlShapeXML struct {
	Style     string `xml:"style,attr"`
	ImageData *struct {
		ID    string `xml:"id,attr"`
		Title string `xml:"title,attr"`
	} `xml:"imagedata"`
}

// hyperlinkXML represents a hyperlink.
type hyperlinkXML struct {
	ID      string // relationship id of an external target
	Anchor  string // bookmark name of an internal target
	Content []inlineXML
}

// simpleFieldXML is a w:fldSimple field with its cached result.
type simpleFieldXML struct {
	Instr   string
	Content []inlineXML
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName    xml.Name      `xml:"tbl"`
	Properties tablePropsXML `xml:"tblPr"`
	Grid       tableGridXML  `xml:"tblGrid"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style         *valXML         `xml:"tblStyle"`
	Width         *tableSizeXML   `xml:"tblW"`
	Justification *valXML         `xml:"jc"`
	Borders       *bordersXML     `xml:"tblBorders"`
	CellMargins   *cellMarginsXML `xml:"tblCellMar"`
	Layout        *struct {
		Type string `xml:"type,attr"`
	} `xml:"tblLayout"`
}

// tableSizeXML represents table/cell size.
type tableSizeXML struct {
	W    string `xml:"w,attr"`    // Width value
	Type string `xml:"type,attr"` // dxa (twips), pct, auto
}

// bordersXML represents table, cell or paragraph borders.
type bordersXML struct {
	Top     *borderXML `xml:"top"`
	Bottom  *borderXML `xml:"bottom"`
	Left    *borderXML `xml:"left"`
	Start   *borderXML `xml:"start"`
	Right   *borderXML `xml:"right"`
	End     *borderXML `xml:"end"`
	InsideH *borderXML `xml:"insideH"`
	InsideV *borderXML `xml:"insideV"`
}

func (b *bordersXML) left() *borderXML {
	if b.Left != nil {
		return b.Left
	}
	return b.Start
}

func (b *bordersXML) right() *borderXML {
	if b.Right != nil {
		return b.Right
	}
	return b.End
}

// borderXML represents a single border.
type borderXML struct {
	Val   string `xml:"val,attr"`   // Border style: single, double, etc.
	Sz    string `xml:"sz,attr"`    // Size in eighths of a point
	Space string `xml:"space,attr"` // Space from text
	Color string `xml:"color,attr"` // Color
}

// cellMarginsXML represents default or per-cell padding.
type cellMarginsXML struct {
	Top    *tableSizeXML `xml:"top"`
	Bottom *tableSizeXML `xml:"bottom"`
	Left   *tableSizeXML `xml:"left"`
	Start  *tableSizeXML `xml:"start"`
	Right  *tableSizeXML `xml:"right"`
	End    *tableSizeXML `xml:"end"`
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"` // Width in twips
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Height *rowHeightXML `xml:"trHeight"`
	Header *onOffXML     `xml:"tblHeader"`
}

// rowHeightXML represents row height.
type rowHeightXML struct {
	Val  string `xml:"val,attr"`
	Rule string `xml:"hRule,attr"` // exact, atLeast, auto
}

// tableCellXML represents a table cell (<w:tc>).
type tableCellXML struct {
	Properties cellPropsXML
	Content    bodyXML
}

func (c *tableCellXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return decodeChildren(d, func(t xml.StartElement) error {
		if t.Name.Local == "tcPr" {
			return d.DecodeElement(&c.Properties, &t)
		}
		return c.Content.decodeBlock(d, t)
	})
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	Width         *tableSizeXML   `xml:"tcW"`
	GridSpan      *valXML         `xml:"gridSpan"`
	VMerge        *valXML         `xml:"vMerge"` // "restart", or empty/"continue"
	Borders       *bordersXML     `xml:"tcBorders"`
	Shading       *shadingXML     `xml:"shd"`
	VAlign        *valXML         `xml:"vAlign"`
	Margins       *cellMarginsXML `xml:"tcMar"`
	NoWrap        *onOffXML       `xml:"noWrap"`
	TextDirection *valXML         `xml:"textDirection"`
}

// shadingXML represents shading.
type shadingXML struct {
	Val   string `xml:"val,attr"`   // Pattern
	Color string `xml:"color,attr"` // Pattern color
	Fill  string `xml:"fill,attr"`  // Background color
}

// sectPrXML represents section properties.
type sectPrXML struct {
	HeaderRefs []headerFooterRefXML `xml:"headerReference"`
	FooterRefs []headerFooterRefXML `xml:"footerReference"`
	PgSz       *struct {
		W string `xml:"w,attr"`
		H string `xml:"h,attr"`
	} `xml:"pgSz"`
	PgMar   *pageMarginsXML `xml:"pgMar"`
	TitlePg *onOffXML       `xml:"titlePg"`
}

// headerFooterRefXML points at a header or footer part.
type headerFooterRefXML struct {
	Type string `xml:"type,attr"` // default, first, even
	ID   string `xml:"id,attr"`
}

type pageMarginsXML struct {
	Top    string `xml:"top,attr"`
	Bottom string `xml:"bottom,attr"`
	Left   string `xml:"left,attr"`
	Right  string `xml:"right,attr"`
	Header string `xml:"header,attr"`
	Footer string `xml:"footer,attr"`
}
