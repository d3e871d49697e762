package docx

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/docxhtml/htmldoc"
	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// A4 portrait with one-inch side margins. Header and footer sit 720 twips
// from the page edge; the top and bottom margins grow to fit the strip.
const (
	pageWidth      = 11906
	pageHeight     = 16838
	pageMargin     = 1440
	headerDistance = 720
	textWidth      = pageWidth - 2*pageMargin
)

const applicationName = "docxhtml"

// section builds the final section properties and writes the header and
// footer parts. It reports whether odd and even pages differ, which needs
// the settings part.
func (b *builder) section(main *partBuilder, header, footer *model.HeaderFooterContent) (*wSectPr, bool, error) {
	sect := &wSectPr{}
	sect.PgSz.W, sect.PgSz.H = pageWidth, pageHeight
	sect.PgMar.Top = stripMargin(header)
	sect.PgMar.Bottom = stripMargin(footer)
	sect.PgMar.Left, sect.PgMar.Right = pageMargin, pageMargin
	sect.PgMar.Header, sect.PgMar.Footer = headerDistance, headerDistance
	sect.Cols.Space = 720

	var err error
	if sect.HeaderRefs, err = b.headerFooter(main, header, true); err != nil {
		return nil, false, err
	}
	if sect.FooterRefs, err = b.headerFooter(main, footer, false); err != nil {
		return nil, false, err
	}

	if hasFlag(header, footer, func(h *model.HeaderFooterContent) bool { return h.DifferentFirstPage }) {
		sect.TitlePg = &wOn{}
	}
	oddEven := hasFlag(header, footer, func(h *model.HeaderFooterContent) bool { return h.DifferentOddEven })
	return sect, oddEven, nil
}

func hasFlag(header, footer *model.HeaderFooterContent, flag func(*model.HeaderFooterContent) bool) bool {
	for _, h := range []*model.HeaderFooterContent{header, footer} {
		if !h.IsEmpty() && flag(h) {
			return true
		}
	}
	return false
}

// stripMargin is the top or bottom page margin for a header or footer
// strip: its height plus the edge distance, never less than one inch.
func stripMargin(h *model.HeaderFooterContent) int {
	reserved := headerDistance
	if !h.IsEmpty() {
		reserved = units.CmToTwips(h.HeightOrDefault())
	}
	return max(pageMargin, reserved+headerDistance)
}

// headerFooter writes one part per variant and returns the references the
// section needs.
func (b *builder) headerFooter(main *partBuilder, h *model.HeaderFooterContent, isHeader bool) ([]wHFRef, error) {
	if h.IsEmpty() {
		return nil, nil
	}

	variants := []struct{ typ, html string }{{"default", h.HTML}}
	if h.DifferentFirstPage {
		variants = append(variants, struct{ typ, html string }{"first", h.FirstPageHTML})
	}
	if h.DifferentOddEven {
		variants = append(variants, struct{ typ, html string }{"even", h.EvenPageHTML})
	}

	var refs []wHFRef
	for _, v := range variants {
		var name, root, ct, relType string
		if isHeader {
			b.headerN++
			name, root, ct, relType = fmt.Sprintf("word/header%d.xml", b.headerN), "w:hdr", ctHeader, relHeader
		} else {
			b.footerN++
			name, root, ct, relType = fmt.Sprintf("word/footer%d.xml", b.footerN), "w:ftr", ctFooter, relFooter
		}

		blocks, err := b.headerFooterBlocks(name, v.html)
		if err != nil {
			return nil, err
		}
		part := wHeaderFooter{XMLName: xml.Name{Local: root}, Attrs: wordNamespaces(), Blocks: blocks}
		if err := b.w.AddXMLPart(name, ct, part); err != nil {
			return nil, err
		}
		refs = append(refs, wHFRef{Type: v.typ, ID: main.relationship(relType, name, false)})
		b.log.Debug("header/footer part written", zap.String("part", name), zap.String("type", v.typ))
	}
	return refs, nil
}

// headerFooterBlocks converts strip HTML. {page} and {pages} placeholders
// become PAGE and NUMPAGES fields.
func (b *builder) headerFooterBlocks(name, src string) ([]any, error) {
	var blocks []any
	if strings.TrimSpace(src) != "" {
		doc, err := htmldoc.ParseString(src)
		if err != nil {
			return nil, &PartError{Op: "parse", Part: name, Err: err}
		}
		blocks = b.newPart(name).blocks(doc.Blocks)
	}
	if len(blocks) == 0 {
		blocks = append(blocks, &wP{})
	}
	return blocks, nil
}

func buildSettings(oddEven bool) *wSettings {
	s := &wSettings{
		Attrs:          []xml.Attr{{Name: xml.Name{Local: "xmlns:w"}, Value: nsW}},
		DefaultTabStop: *intVal(720),
	}
	if oddEven {
		s.EvenAndOddHeaders = &wOn{}
	}
	s.Compat.Setting.Name = "compatibilityMode"
	s.Compat.Setting.URI = "http://schemas.microsoft.com/office/word"
	s.Compat.Setting.Val = "15"
	return s
}

// coreProperties fills docProps/core.xml. Created keeps the caller's value
// when given; Modified is always the encode time.
func (b *builder) coreProperties(md *model.DocumentMetadata) *cpCoreProperties {
	if md == nil {
		md = &model.DocumentMetadata{}
	}
	created := b.now
	if md.Created != nil {
		created = md.Created.UTC()
	}
	revision := md.Revision
	if revision == "" {
		revision = "1"
	}
	lastBy := md.LastModifiedBy
	if lastBy == "" {
		lastBy = md.Author
	}
	return &cpCoreProperties{
		Attrs: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:cp"}, Value: nsCP},
			{Name: xml.Name{Local: "xmlns:dc"}, Value: nsDC},
			{Name: xml.Name{Local: "xmlns:dcterms"}, Value: nsDCTerms},
			{Name: xml.Name{Local: "xmlns:dcmitype"}, Value: nsDCMIType},
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXSI},
		},
		Title:          md.Title,
		Subject:        md.Subject,
		Creator:        md.Author,
		Keywords:       md.Keywords,
		Description:    md.Description,
		LastModifiedBy: lastBy,
		Revision:       revision,
		Created:        &w3cdtf{Type: "dcterms:W3CDTF", Value: created.Format(time.RFC3339)},
		Modified:       &w3cdtf{Type: "dcterms:W3CDTF", Value: b.now.Format(time.RFC3339)},
		Category:       md.Category,
		ContentStatus:  md.ContentStatus,
		Version:        md.Version,
	}
}

// appProperties fills docProps/app.xml. Page count is unknown before
// layout, so one page is claimed unless the caller says otherwise.
func (b *builder) appProperties(md *model.DocumentMetadata) *extendedProperties {
	pages := 1
	var company, manager string
	if md != nil {
		if md.PageCount > 0 {
			pages = md.PageCount
		}
		company, manager = md.Company, md.Manager
	}
	return &extendedProperties{
		Xmlns:       nsExtended,
		XmlnsVT:     nsVT,
		Application: applicationName,
		Pages:       pages,
		Words:       len(strings.Fields(b.text.String())),
		Manager:     manager,
		Company:     company,
		AppVersion:  "16.0000",
	}
}
