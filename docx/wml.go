package docx

import (
	"encoding/xml"
	"strconv"
)

// Output model for the parts the builder writes. Element and attribute
// names carry their prefixes literally; the root elements declare the
// namespaces. Field order follows the schema sequence of each element.

const (
	nsMC       = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	nsDCTerms  = "http://purl.org/dc/terms/"
	nsDCMIType = "http://purl.org/dc/dcmitype/"
	nsXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	nsExtended = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
	nsVT       = "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"
	uriPicture = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// wordNamespaces are declared on document, header and footer roots.
func wordNamespaces() []xml.Attr {
	return []xml.Attr{
		{Name: xml.Name{Local: "xmlns:w"}, Value: nsW},
		{Name: xml.Name{Local: "xmlns:r"}, Value: nsR},
		{Name: xml.Name{Local: "xmlns:wp"}, Value: nsWP},
		{Name: xml.Name{Local: "xmlns:a"}, Value: nsA},
		{Name: xml.Name{Local: "xmlns:pic"}, Value: nsPic},
		{Name: xml.Name{Local: "xmlns:mc"}, Value: nsMC},
	}
}

type wDocument struct {
	XMLName xml.Name   `xml:"w:document"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Body    wBody      `xml:"w:body"`
}

// wBody is block content in document order followed by the section
// properties.
type wBody struct {
	Blocks []any
	SectPr *wSectPr
}

func (b wBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, blk := range b.Blocks {
		if err := e.Encode(blk); err != nil {
			return err
		}
	}
	if b.SectPr != nil {
		if err := e.EncodeElement(b.SectPr, xml.StartElement{Name: xml.Name{Local: "w:sectPr"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// wHeaderFooter is a w:hdr or w:ftr root.
type wHeaderFooter struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Blocks  []any      `xml:",any"`
}

type wOn struct{}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

func val(s string) *wVal { return &wVal{Val: s} }

func intVal(n int) *wVal { return &wVal{Val: strconv.Itoa(n)} }

type wP struct {
	XMLName xml.Name `xml:"w:p"`
	PPr     *wPPr    `xml:"w:pPr"`
	Content []any    `xml:",any"`
}

type wPPr struct {
	Style           *wVal     `xml:"w:pStyle"`
	KeepNext        *wOn      `xml:"w:keepNext"`
	PageBreakBefore *wOn      `xml:"w:pageBreakBefore"`
	NumPr           *wNumPr   `xml:"w:numPr"`
	Borders         *wBorders `xml:"w:pBdr"`
	Shading         *wShd     `xml:"w:shd"`
	Spacing         *wSpacing `xml:"w:spacing"`
	Ind             *wInd     `xml:"w:ind"`
	Jc              *wVal     `xml:"w:jc"`
	OutlineLvl      *wVal     `xml:"w:outlineLvl"`
	RPr             *wRPr     `xml:"w:rPr"`
	SectPr          *wSectPr  `xml:"w:sectPr"`
}

type wNumPr struct {
	ILvl  *wVal `xml:"w:ilvl"`
	NumID *wVal `xml:"w:numId"`
}

type wSpacing struct {
	Before   *int   `xml:"w:before,attr"`
	After    *int   `xml:"w:after,attr"`
	Line     int    `xml:"w:line,attr,omitempty"`
	LineRule string `xml:"w:lineRule,attr,omitempty"`
}

type wInd struct {
	Left      *int `xml:"w:left,attr"`
	Right     *int `xml:"w:right,attr"`
	FirstLine *int `xml:"w:firstLine,attr"`
	Hanging   *int `xml:"w:hanging,attr"`
}

type wShd struct {
	Val   string `xml:"w:val,attr"`
	Color string `xml:"w:color,attr"`
	Fill  string `xml:"w:fill,attr"`
}

func shading(fill string) *wShd {
	return &wShd{Val: "clear", Color: "auto", Fill: fill}
}

type wBorders struct {
	Top     *wBorder `xml:"w:top"`
	Left    *wBorder `xml:"w:left"`
	Bottom  *wBorder `xml:"w:bottom"`
	Right   *wBorder `xml:"w:right"`
	InsideH *wBorder `xml:"w:insideH"`
	InsideV *wBorder `xml:"w:insideV"`
}

type wBorder struct {
	Val   string `xml:"w:val,attr"`
	Sz    int    `xml:"w:sz,attr,omitempty"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr,omitempty"`
}

type wRPr struct {
	Style     *wVal   `xml:"w:rStyle"`
	Fonts     *wFonts `xml:"w:rFonts"`
	B         *wOn    `xml:"w:b"`
	BCs       *wOn    `xml:"w:bCs"`
	I         *wOn    `xml:"w:i"`
	ICs       *wOn    `xml:"w:iCs"`
	Caps      *wOn    `xml:"w:caps"`
	SmallCaps *wOn    `xml:"w:smallCaps"`
	Strike    *wOn    `xml:"w:strike"`
	Color     *wVal   `xml:"w:color"`
	Spacing   *wVal   `xml:"w:spacing"`
	Sz        *wVal   `xml:"w:sz"`
	SzCs      *wVal   `xml:"w:szCs"`
	U         *wVal   `xml:"w:u"`
	Shd       *wShd   `xml:"w:shd"`
	VertAlign *wVal   `xml:"w:vertAlign"`
}

type wFonts struct {
	ASCII    string `xml:"w:ascii,attr,omitempty"`
	HAnsi    string `xml:"w:hAnsi,attr,omitempty"`
	CS       string `xml:"w:cs,attr,omitempty"`
	EastAsia string `xml:"w:eastAsia,attr,omitempty"`
}

func fonts(name string) *wFonts {
	return &wFonts{ASCII: name, HAnsi: name, CS: name, EastAsia: name}
}

type wR struct {
	XMLName xml.Name `xml:"w:r"`
	RPr     *wRPr    `xml:"w:rPr"`
	Content []any    `xml:",any"`
}

type wT struct {
	XMLName xml.Name `xml:"w:t"`
	Space   string   `xml:"xml:space,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

func textElement(s string) wT {
	t := wT{Text: s}
	if s != "" && (s[0] == ' ' || s[len(s)-1] == ' ') {
		t.Space = "preserve"
	}
	return t
}

type wBr struct {
	XMLName xml.Name `xml:"w:br"`
	Type    string   `xml:"w:type,attr,omitempty"`
}

type wTab struct {
	XMLName xml.Name `xml:"w:tab"`
}

type wFldChar struct {
	XMLName xml.Name `xml:"w:fldChar"`
	Type    string   `xml:"w:fldCharType,attr"`
}

type wInstrText struct {
	XMLName xml.Name `xml:"w:instrText"`
	Space   string   `xml:"xml:space,attr"`
	Text    string   `xml:",chardata"`
}

type wHyperlink struct {
	XMLName xml.Name `xml:"w:hyperlink"`
	ID      string   `xml:"r:id,attr,omitempty"`
	Anchor  string   `xml:"w:anchor,attr,omitempty"`
	History string   `xml:"w:history,attr,omitempty"`
	Content []any    `xml:",any"`
}

// Drawing.

type wDrawing struct {
	XMLName xml.Name `xml:"w:drawing"`
	Inline  wpInline `xml:"wp:inline"`
}

type wpInline struct {
	DistT        int            `xml:"distT,attr"`
	DistB        int            `xml:"distB,attr"`
	DistL        int            `xml:"distL,attr"`
	DistR        int            `xml:"distR,attr"`
	Extent       wpExtent       `xml:"wp:extent"`
	EffectExtent wpEffectExtent `xml:"wp:effectExtent"`
	DocPr        wpDocPr        `xml:"wp:docPr"`
	FramePr      wpFramePr      `xml:"wp:cNvGraphicFramePr"`
	Graphic      aGraphic       `xml:"a:graphic"`
}

type wpExtent struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type wpEffectExtent struct {
	L int `xml:"l,attr"`
	T int `xml:"t,attr"`
	R int `xml:"r,attr"`
	B int `xml:"b,attr"`
}

type wpDocPr struct {
	ID    int    `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr,omitempty"`
}

type wpFramePr struct {
	Locks struct {
		NoChangeAspect int `xml:"noChangeAspect,attr"`
	} `xml:"a:graphicFrameLocks"`
}

type aGraphic struct {
	Data aGraphicData `xml:"a:graphicData"`
}

type aGraphicData struct {
	URI string `xml:"uri,attr"`
	Pic picPic `xml:"pic:pic"`
}

type picPic struct {
	NvPicPr  picNvPicPr  `xml:"pic:nvPicPr"`
	BlipFill picBlipFill `xml:"pic:blipFill"`
	SpPr     picSpPr     `xml:"pic:spPr"`
}

type picNvPicPr struct {
	CNvPr    wpDocPr  `xml:"pic:cNvPr"`
	CNvPicPr struct{} `xml:"pic:cNvPicPr"`
}

type picBlipFill struct {
	Blip struct {
		Embed string `xml:"r:embed,attr"`
	} `xml:"a:blip"`
	Stretch struct {
		FillRect struct{} `xml:"a:fillRect"`
	} `xml:"a:stretch"`
}

type picSpPr struct {
	Xfrm struct {
		Off struct {
			X int `xml:"x,attr"`
			Y int `xml:"y,attr"`
		} `xml:"a:off"`
		Ext wpExtent `xml:"a:ext"`
	} `xml:"a:xfrm"`
	Geom struct {
		Prst  string   `xml:"prst,attr"`
		AvLst struct{} `xml:"a:avLst"`
	} `xml:"a:prstGeom"`
}

// Tables.

type wTbl struct {
	XMLName xml.Name `xml:"w:tbl"`
	TblPr   wTblPr   `xml:"w:tblPr"`
	Grid    wTblGrid `xml:"w:tblGrid"`
	Rows    []*wTr   `xml:"w:tr"`
}

type wTblPr struct {
	Style   *wVal     `xml:"w:tblStyle"`
	W       *wWidth   `xml:"w:tblW"`
	Jc      *wVal     `xml:"w:jc"`
	Borders *wBorders `xml:"w:tblBorders"`
	Layout  *struct {
		Type string `xml:"w:type,attr"`
	} `xml:"w:tblLayout"`
	CellMar *wCellMar `xml:"w:tblCellMar"`
	Look    *wTblLook `xml:"w:tblLook"`
}

type wTblLook struct {
	Val         string `xml:"w:val,attr"`
	FirstRow    int    `xml:"w:firstRow,attr"`
	LastRow     int    `xml:"w:lastRow,attr"`
	FirstColumn int    `xml:"w:firstColumn,attr"`
	LastColumn  int    `xml:"w:lastColumn,attr"`
	NoHBand     int    `xml:"w:noHBand,attr"`
	NoVBand     int    `xml:"w:noVBand,attr"`
}

type wWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type wCellMar struct {
	Top    *wWidth `xml:"w:top"`
	Left   *wWidth `xml:"w:left"`
	Bottom *wWidth `xml:"w:bottom"`
	Right  *wWidth `xml:"w:right"`
}

type wTblGrid struct {
	Cols []wGridCol `xml:"w:gridCol"`
}

type wGridCol struct {
	W int `xml:"w:w,attr"`
}

type wTr struct {
	TrPr  *wTrPr `xml:"w:trPr"`
	Cells []*wTc `xml:"w:tc"`
}

type wTrPr struct {
	Height *struct {
		Val  int    `xml:"w:val,attr"`
		Rule string `xml:"w:hRule,attr"`
	} `xml:"w:trHeight"`
	Header *wOn `xml:"w:tblHeader"`
}

type wTc struct {
	TcPr   *wTcPr `xml:"w:tcPr"`
	Blocks []any  `xml:",any"`
}

type wTcPr struct {
	W             *wWidth   `xml:"w:tcW"`
	GridSpan      *wVal     `xml:"w:gridSpan"`
	VMerge        *wVal     `xml:"w:vMerge"`
	Borders       *wBorders `xml:"w:tcBorders"`
	Shd           *wShd     `xml:"w:shd"`
	NoWrap        *wOn      `xml:"w:noWrap"`
	Mar           *wCellMar `xml:"w:tcMar"`
	TextDirection *wVal     `xml:"w:textDirection"`
	VAlign        *wVal     `xml:"w:vAlign"`
}

// Sections.

type wSectPr struct {
	HeaderRefs []wHFRef `xml:"w:headerReference"`
	FooterRefs []wHFRef `xml:"w:footerReference"`
	PgSz       struct {
		W int `xml:"w:w,attr"`
		H int `xml:"w:h,attr"`
	} `xml:"w:pgSz"`
	PgMar struct {
		Top    int `xml:"w:top,attr"`
		Right  int `xml:"w:right,attr"`
		Bottom int `xml:"w:bottom,attr"`
		Left   int `xml:"w:left,attr"`
		Header int `xml:"w:header,attr"`
		Footer int `xml:"w:footer,attr"`
		Gutter int `xml:"w:gutter,attr"`
	} `xml:"w:pgMar"`
	Cols struct {
		Space int `xml:"w:space,attr"`
	} `xml:"w:cols"`
	TitlePg *wOn `xml:"w:titlePg"`
}

type wHFRef struct {
	Type string `xml:"w:type,attr"`
	ID   string `xml:"r:id,attr"`
}

// Styles.

type wStyles struct {
	XMLName     xml.Name     `xml:"w:styles"`
	Attrs       []xml.Attr   `xml:",any,attr"`
	DocDefaults wDocDefaults `xml:"w:docDefaults"`
	Styles      []*wStyle    `xml:"w:style"`
}

type wDocDefaults struct {
	RPr struct {
		RPr *wRPr `xml:"w:rPr"`
	} `xml:"w:rPrDefault"`
	PPr struct {
		PPr *wPPr `xml:"w:pPr"`
	} `xml:"w:pPrDefault"`
}

type wStyle struct {
	Type       string `xml:"w:type,attr"`
	Default    string `xml:"w:default,attr,omitempty"`
	StyleID    string `xml:"w:styleId,attr"`
	Name       wVal   `xml:"w:name"`
	BasedOn    *wVal  `xml:"w:basedOn"`
	Next       *wVal  `xml:"w:next"`
	UIPriority *wVal  `xml:"w:uiPriority"`
	QFormat    *wOn   `xml:"w:qFormat"`
	PPr        *wPPr  `xml:"w:pPr"`
	RPr        *wRPr  `xml:"w:rPr"`
}

// Numbering.

type wNumbering struct {
	XMLName  xml.Name        `xml:"w:numbering"`
	Attrs    []xml.Attr      `xml:",any,attr"`
	Abstract []*wAbstractNum `xml:"w:abstractNum"`
	Nums     []*wNum         `xml:"w:num"`
}

type wAbstractNum struct {
	ID             int     `xml:"w:abstractNumId,attr"`
	MultiLevelType *wVal   `xml:"w:multiLevelType"`
	Levels         []*wLvl `xml:"w:lvl"`
}

type wLvl struct {
	ILvl    int   `xml:"w:ilvl,attr"`
	Start   *wVal `xml:"w:start"`
	NumFmt  *wVal `xml:"w:numFmt"`
	LvlText *wVal `xml:"w:lvlText"`
	LvlJc   *wVal `xml:"w:lvlJc"`
	PPr     *wPPr `xml:"w:pPr"`
	RPr     *wRPr `xml:"w:rPr"`
}

type wNum struct {
	NumID         int  `xml:"w:numId,attr"`
	AbstractNumID wVal `xml:"w:abstractNumId"`
}

// Settings.

type wSettings struct {
	XMLName           xml.Name   `xml:"w:settings"`
	Attrs             []xml.Attr `xml:",any,attr"`
	DefaultTabStop    wVal       `xml:"w:defaultTabStop"`
	EvenAndOddHeaders *wOn       `xml:"w:evenAndOddHeaders"`
	Compat            struct {
		Setting struct {
			Name string `xml:"w:name,attr"`
			URI  string `xml:"w:uri,attr"`
			Val  string `xml:"w:val,attr"`
		} `xml:"w:compatSetting"`
	} `xml:"w:compat"`
}

// Document properties.

type cpCoreProperties struct {
	XMLName        xml.Name   `xml:"cp:coreProperties"`
	Attrs          []xml.Attr `xml:",any,attr"`
	Title          string     `xml:"dc:title,omitempty"`
	Subject        string     `xml:"dc:subject,omitempty"`
	Creator        string     `xml:"dc:creator,omitempty"`
	Keywords       string     `xml:"cp:keywords,omitempty"`
	Description    string     `xml:"dc:description,omitempty"`
	LastModifiedBy string     `xml:"cp:lastModifiedBy,omitempty"`
	Revision       string     `xml:"cp:revision,omitempty"`
	Created        *w3cdtf    `xml:"dcterms:created"`
	Modified       *w3cdtf    `xml:"dcterms:modified"`
	Category       string     `xml:"cp:category,omitempty"`
	ContentStatus  string     `xml:"cp:contentStatus,omitempty"`
	Version        string     `xml:"cp:version,omitempty"`
}

type w3cdtf struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type extendedProperties struct {
	XMLName     xml.Name `xml:"Properties"`
	Xmlns       string   `xml:"xmlns,attr"`
	XmlnsVT     string   `xml:"xmlns:vt,attr"`
	Application string   `xml:"Application"`
	Pages       int      `xml:"Pages"`
	Words       int      `xml:"Words"`
	Manager     string   `xml:"Manager,omitempty"`
	Company     string   `xml:"Company,omitempty"`
	AppVersion  string   `xml:"AppVersion"`
}
