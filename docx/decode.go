package docx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/docxhtml/model"
	"github.com/tsawler/docxhtml/units"
)

// Default layouts for DATE and TIME fields without a \@ picture.
const (
	DefaultDateLayout = "2006-01-02"
	DefaultTimeLayout = "15:04"
)

// DecodeOptions configures a single Decode call. Zero values select
// defaults: a no-op logger, time.Now and the default date layouts.
type DecodeOptions struct {
	Logger     *zap.Logger
	Now        func() time.Time
	DateLayout string
	TimeLayout string
}

func (o DecodeOptions) withDefaults() DecodeOptions {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.TimeLayout == "" {
		o.TimeLayout = DefaultTimeLayout
	}
	return o
}

// decoder holds the state of one Decode call.
type decoder struct {
	opts      DecodeOptions
	log       *zap.Logger
	pkg       *Package
	styles    *StyleResolver
	numbering *NumberingResolver
	images    *imageSet
	warnings  []model.Warning
	warned    map[string]bool
}

// Decode converts a .docx package to editor HTML with its metadata,
// images, styles and header/footer content. Recoverable problems are
// returned as warnings; only an unreadable package or main document is an
// error.
func Decode(data []byte, opts DecodeOptions) (*model.DocumentContent, []model.Warning, error) {
	opts = opts.withDefaults()
	pkg, err := Open(data)
	if err != nil {
		return nil, nil, err
	}

	d := &decoder{
		opts:   opts,
		log:    opts.Logger,
		pkg:    pkg,
		images: newImageSet(),
		warned: make(map[string]bool),
	}
	main := pkg.MainDocument()
	d.log.Debug("decoding package", zap.String("main", main), zap.Int("parts", len(pkg.Parts())))

	d.loadResolvers(main)

	var doc documentXML
	if err := pkg.decodeXML(main, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	if doc.Body == nil {
		return nil, nil, fmt.Errorf("%w: %s has no body", ErrUnreadableDocument, main)
	}

	root := element(atom.Div)
	setAttr(root, "class", "document-content")
	if decls := runCSS(d.styles.Defaults().Run); len(decls) > 0 {
		setAttr(root, "style", strings.Join(decls, ";"))
	}
	d.newEmitter(main).emitPart(doc.Body, root)

	body, err := render(root)
	if err != nil {
		return nil, nil, err
	}

	content := &model.DocumentContent{
		HTML:     body,
		Metadata: d.metadata(root),
		Styles:   d.styles.Styles(),
	}

	sect := finalSection(doc.Body)
	content.Header, content.Footer = d.headersFooters(main, sect)
	content.Images = d.images.images()

	d.log.Debug("decoded package",
		zap.Int("images", len(content.Images)),
		zap.Int("styles", len(content.Styles)),
		zap.Int("warnings", len(d.warnings)))
	return content, d.warnings, nil
}

// loadResolvers reads the theme, styles and numbering parts related to the
// main document. Each falls back to its conventional location and a broken
// part degrades to defaults with a logged error.
func (d *decoder) loadResolvers(main string) {
	var theme *Theme
	if name := d.related(main, relTheme, "word/theme/theme1.xml"); name != "" {
		var t themeXML
		if err := d.pkg.decodeXML(name, &t); err != nil {
			d.log.Warn("theme part unreadable", zap.String("part", name), zap.Error(err))
		} else {
			theme = newTheme(&t)
		}
	}

	var styles *stylesXML
	if name := d.related(main, relStyles, "word/styles.xml"); name != "" {
		styles = &stylesXML{}
		if err := d.pkg.decodeXML(name, styles); err != nil {
			d.log.Warn("styles part unreadable", zap.String("part", name), zap.Error(err))
			styles = nil
		}
	}
	d.styles = NewStyleResolver(styles, theme)
	d.styles.warn = d.warnOnce

	var numbering *numberingXML
	if name := d.related(main, relNumbering, "word/numbering.xml"); name != "" {
		numbering = &numberingXML{}
		if err := d.pkg.decodeXML(name, numbering); err != nil {
			d.log.Warn("numbering part unreadable", zap.String("part", name), zap.Error(err))
			numbering = nil
		}
	}
	d.numbering = NewNumberingResolver(numbering)
}

func (d *decoder) related(source, relType, fallback string) string {
	if name := d.pkg.relatedPart(source, relType); name != "" && d.pkg.HasPart(name) {
		return name
	}
	if d.pkg.HasPart(fallback) {
		return fallback
	}
	return ""
}

// finalSection returns the document's last section properties: the body's
// own sectPr, or one carried by the last paragraph.
func finalSection(body *bodyXML) *sectPrXML {
	if body.SectPr != nil {
		return body.SectPr
	}
	for i := len(body.Elements) - 1; i >= 0; i-- {
		if p := body.Elements[i].Paragraph; p != nil && p.Properties != nil && p.Properties.SectPr != nil {
			return p.Properties.SectPr
		}
	}
	return nil
}

// headersFooters decodes the header and footer parts referenced by the
// final section.
func (d *decoder) headersFooters(main string, sect *sectPrXML) (header, footer *model.HeaderFooterContent) {
	if sect == nil {
		return nil, nil
	}
	oddEven := false
	if name := d.related(main, relSettings, "word/settings.xml"); name != "" {
		var s settingsXML
		if err := d.pkg.decodeXML(name, &s); err == nil {
			oddEven = s.EvenAndOddHeaders.on()
		}
	}
	titlePg := sect.TitlePg.on()

	var top, bottom string
	if sect.PgMar != nil {
		top, bottom = sect.PgMar.Top, sect.PgMar.Bottom
	}
	header = d.headerFooter(main, sect.HeaderRefs, titlePg, oddEven, stripHeight(top))
	footer = d.headerFooter(main, sect.FooterRefs, titlePg, oddEven, stripHeight(bottom))
	return header, footer
}

func (d *decoder) headerFooter(main string, refs []headerFooterRefXML, titlePg, oddEven bool, height float64) *model.HeaderFooterContent {
	if len(refs) == 0 {
		return nil
	}
	hf := &model.HeaderFooterContent{Height: height}
	for _, ref := range refs {
		markup, ok := d.decodeHeaderFooterPart(main, ref.ID)
		if !ok {
			continue
		}
		switch ref.Type {
		case "first":
			hf.FirstPageHTML = markup
		case "even":
			hf.EvenPageHTML = markup
		default:
			hf.HTML = markup
		}
	}
	hf.DifferentFirstPage = titlePg && hf.FirstPageHTML != ""
	hf.DifferentOddEven = oddEven && hf.EvenPageHTML != ""
	if hf.IsEmpty() {
		return nil
	}
	return hf
}

func (d *decoder) decodeHeaderFooterPart(main, relID string) (string, bool) {
	rel, ok := d.pkg.Relationship(main, relID)
	if !ok || rel.External {
		d.warn(model.MissingRelationship, main, "header/footer "+relID+" has no relationship")
		return "", false
	}
	var body bodyXML
	if err := d.pkg.decodeXML(rel.Target, &body); err != nil {
		d.log.Warn("header/footer part unreadable", zap.String("part", rel.Target), zap.Error(err))
		return "", false
	}

	container := element(atom.Div)
	d.newEmitter(rel.Target).emitPart(&body, container)
	var b strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			d.log.Warn("header/footer render failed", zap.String("part", rel.Target), zap.Error(err))
			return "", false
		}
	}
	return b.String(), true
}

// stripHeight recovers the header/footer strip height in centimetres from
// a page margin: the margin less the 720-twip edge distance when the margin
// exceeds one inch, otherwise the default.
func stripHeight(margin string) float64 {
	tw, err := strconv.Atoi(margin)
	if err != nil || tw <= units.TwipsPerInch {
		return model.DefaultHeaderHeight
	}
	return units.TwipsToCm(tw - headerDistance)
}

// metadata reads the core and extended properties. The word count falls
// back to the rendered body text when app.xml does not carry one.
func (d *decoder) metadata(root *html.Node) model.DocumentMetadata {
	var md model.DocumentMetadata

	if name := d.related("", relCoreProps, "docProps/core.xml"); name != "" {
		var core corePropertiesXML
		if err := d.pkg.decodeXML(name, &core); err != nil {
			d.log.Warn("core properties unreadable", zap.String("part", name), zap.Error(err))
		} else {
			md.Title = core.Title
			md.Author = core.Creator
			md.Subject = core.Subject
			md.Keywords = core.Keywords
			md.Description = core.Description
			md.Category = core.Category
			md.ContentStatus = core.ContentStatus
			md.LastModifiedBy = core.LastModifiedBy
			md.Revision = core.Revision
			md.Version = core.Version
			md.Created = parseW3CDTF(core.Created)
			md.Modified = parseW3CDTF(core.Modified)
		}
	}

	if name := d.related("", relExtendedProps, "docProps/app.xml"); name != "" {
		var app appPropertiesXML
		if err := d.pkg.decodeXML(name, &app); err != nil {
			d.log.Warn("extended properties unreadable", zap.String("part", name), zap.Error(err))
		} else {
			md.Company = app.Company
			md.Manager = app.Manager
			md.PageCount = app.Pages
			md.WordCount = app.Words
		}
	}

	if md.WordCount == 0 {
		md.WordCount = len(strings.Fields(textContent(root)))
	}
	return md
}

func parseW3CDTF(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.ReplaceAll(b.String(), "\u00a0", " ")
}

func render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("docx: rendering html: %w", err)
	}
	return b.String(), nil
}

// warn records a warning and logs it.
func (d *decoder) warn(kind model.WarningKind, part, msg string) {
	d.warnings = append(d.warnings, model.Warning{Kind: kind, Part: part, Message: msg})
	d.log.Warn(msg, zap.Stringer("kind", kind), zap.String("part", part))
}

// warnOnce is warn for problems that would otherwise repeat for every
// paragraph or run referring to the same definition.
func (d *decoder) warnOnce(kind model.WarningKind, part, msg string) {
	key := strconv.Itoa(int(kind)) + "\x00" + part + "\x00" + msg
	if d.warned[key] {
		return
	}
	d.warned[key] = true
	d.warn(kind, part, msg)
}
