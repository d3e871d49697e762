package docx

import "encoding/xml"

// stylesXML represents word/styles.xml
type stylesXML struct {
	XMLName     xml.Name       `xml:"styles"`
	DocDefaults docDefaultsXML `xml:"docDefaults"`
	Styles      []styleDefXML  `xml:"style"`
}

// docDefaultsXML represents document default properties.
type docDefaultsXML struct {
	RPrDefault struct {
		RPr *runPropsXML `xml:"rPr"`
	} `xml:"rPrDefault"`
	PPrDefault struct {
		PPr *paragraphPropsXML `xml:"pPr"`
	} `xml:"pPrDefault"`
}

// styleDefXML represents a style definition.
type styleDefXML struct {
	Type       string             `xml:"type,attr"` // paragraph, character, table, numbering
	StyleID    string             `xml:"styleId,attr"`
	Default    string             `xml:"default,attr"`
	Name       *valXML            `xml:"name"`
	BasedOn    *valXML            `xml:"basedOn"`
	Next       *valXML            `xml:"next"`
	SemiHidden *onOffXML          `xml:"semiHidden"`
	PPr        *paragraphPropsXML `xml:"pPr"`
	RPr        *runPropsXML       `xml:"rPr"`
}

// numberingXML represents word/numbering.xml
type numberingXML struct {
	XMLName      xml.Name         `xml:"numbering"`
	AbstractNums []abstractNumXML `xml:"abstractNum"`
	Nums         []numXML         `xml:"num"`
}

// abstractNumXML represents an abstract numbering definition.
type abstractNumXML struct {
	AbstractNumID string   `xml:"abstractNumId,attr"`
	Levels        []lvlXML `xml:"lvl"`
}

// lvlXML represents a numbering level.
type lvlXML struct {
	ILvl    string             `xml:"ilvl,attr"`
	Start   *valXML            `xml:"start"`
	NumFmt  *valXML            `xml:"numFmt"`  // decimal, bullet, lowerLetter, etc.
	LvlText *valXML            `xml:"lvlText"` // e.g. "%1." or a bullet glyph
	LvlJc   *valXML            `xml:"lvlJc"`
	PPr     *paragraphPropsXML `xml:"pPr"`
	RPr     *runPropsXML       `xml:"rPr"`
}

// numXML represents a numbering instance.
type numXML struct {
	NumID         string           `xml:"numId,attr"`
	AbstractNumID valXML           `xml:"abstractNumId"`
	Overrides     []lvlOverrideXML `xml:"lvlOverride"`
}

type lvlOverrideXML struct {
	ILvl          string  `xml:"ilvl,attr"`
	StartOverride *valXML `xml:"startOverride"`
}

// relationshipsXML represents a .rels part.
type relationshipsXML struct {
	XMLName       xml.Name          `xml:"Relationships"`
	Relationships []relationshipXML `xml:"Relationship"`
}

// relationshipXML represents a single relationship.
type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// contentTypesXML represents [Content_Types].xml
type contentTypesXML struct {
	XMLName  xml.Name `xml:"Types"`
	Defaults []struct {
		Extension   string `xml:"Extension,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Default"`
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// corePropertiesXML represents docProps/core.xml
type corePropertiesXML struct {
	XMLName        xml.Name `xml:"coreProperties"`
	Title          string   `xml:"title"`
	Subject        string   `xml:"subject"`
	Creator        string   `xml:"creator"`
	Keywords       string   `xml:"keywords"`
	Description    string   `xml:"description"`
	LastModifiedBy string   `xml:"lastModifiedBy"`
	Revision       string   `xml:"revision"`
	Created        string   `xml:"created"`
	Modified       string   `xml:"modified"`
	Category       string   `xml:"category"`
	ContentStatus  string   `xml:"contentStatus"`
	Version        string   `xml:"version"`
}

// appPropertiesXML represents docProps/app.xml
type appPropertiesXML struct {
	XMLName     xml.Name `xml:"Properties"`
	Application string   `xml:"Application"`
	Pages       int      `xml:"Pages"`
	Words       int      `xml:"Words"`
	Company     string   `xml:"Company"`
	Manager     string   `xml:"Manager"`
}

// settingsXML represents the parts of word/settings.xml the converter reads.
type settingsXML struct {
	XMLName           xml.Name  `xml:"settings"`
	EvenAndOddHeaders *onOffXML `xml:"evenAndOddHeaders"`
}

// themeXML represents word/theme/theme1.xml
type themeXML struct {
	XMLName     xml.Name       `xml:"theme"`
	ColorScheme colorSchemeXML `xml:"themeElements>clrScheme"`
	MajorLatin  *struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"themeElements>fontScheme>majorFont>latin"`
	MinorLatin *struct {
		Typeface string `xml:"typeface,attr"`
	} `xml:"themeElements>fontScheme>minorFont>latin"`
}

// colorSchemeXML collects a:clrScheme entries (dk1, lt1, accent1, ...) by
// element name.
type colorSchemeXML struct {
	Colors map[string]string
}

func (c *colorSchemeXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	c.Colors = make(map[string]string)
	return decodeChildren(d, func(t xml.StartElement) error {
		name := t.Name.Local
		return decodeChildren(d, func(v xml.StartElement) error {
			switch v.Name.Local {
			case "srgbClr":
				c.Colors[name] = attr(v, "val")
			case "sysClr":
				c.Colors[name] = attr(v, "lastClr")
			}
			return d.Skip()
		})
	})
}
