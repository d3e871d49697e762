package docx

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/docxhtml/htmldoc"
	"github.com/tsawler/docxhtml/model"
)

// EncodeRequest is the input of Encode. Header, Footer and Styles are
// optional; without Styles the built-in set is written.
type EncodeRequest struct {
	HTML     string                     `json:"html" validate:"required"`
	Metadata *model.DocumentMetadata    `json:"metadata,omitempty"`
	Header   *model.HeaderFooterContent `json:"header,omitempty"`
	Footer   *model.HeaderFooterContent `json:"footer,omitempty"`
	Styles   []model.DocumentStyle      `json:"styles,omitempty"`
}

// EncodeOptions configures a single Encode call. Zero values select a
// no-op logger and time.Now.
type EncodeOptions struct {
	Logger *zap.Logger
	Now    func() time.Time
}

const mainDocumentPart = "word/document.xml"

// builder holds the state of one Encode call: the package being written,
// the numbering definitions minted so far and the media already embedded.
type builder struct {
	log    *zap.Logger
	now    time.Time
	w      *Writer
	styles map[string]bool
	// styleRuns holds the character formatting each paragraph style
	// supplies, keyed by style id.
	styleRuns map[string]htmldoc.RunStyle
	lists     *numberingBuilder
	media     map[string]string // payload digest -> media part
	mediaN    int
	docPrID   int
	headerN   int
	footerN   int
	text      strings.Builder // body text, for the word count
	warnings  []model.Warning
}

// Encode builds a .docx package from editor HTML.
func Encode(req EncodeRequest, opts EncodeOptions) ([]byte, []model.Warning, error) {
	if strings.TrimSpace(req.HTML) == "" {
		return nil, nil, fmt.Errorf("%w: no HTML content", ErrEmptyInput)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	doc, err := htmldoc.ParseString(req.HTML)
	if err != nil {
		return nil, nil, fmt.Errorf("docx: %w", err)
	}

	b := &builder{
		log:   opts.Logger,
		now:   opts.Now().UTC(),
		w:     NewWriter(),
		lists: newNumberingBuilder(),
		media: make(map[string]string),
	}

	styleSet := req.Styles
	if len(styleSet) == 0 {
		styleSet = model.DefaultStyles()
	}
	styleSet = completeStyles(styleSet)
	stylesPart, ids := buildStyles(styleSet)
	b.styles = ids
	b.styleRuns = styleRunDefaults(styleSet)

	main := b.newPart(mainDocumentPart)
	body := wBody{Blocks: main.blocks(doc.Blocks)}
	if len(body.Blocks) == 0 {
		body.Blocks = append(body.Blocks, &wP{})
	}
	b.log.Debug("body built", zap.Int("blocks", len(doc.Blocks)), zap.Int("elements", len(body.Blocks)))

	sect, oddEven, err := b.section(main, req.Header, req.Footer)
	if err != nil {
		return nil, nil, err
	}
	body.SectPr = sect

	if err := b.writeParts(body, stylesPart, oddEven, req.Metadata); err != nil {
		return nil, nil, err
	}

	data, err := b.w.Bytes()
	if err != nil {
		return nil, nil, err
	}
	b.log.Debug("package written",
		zap.Int("bytes", len(data)),
		zap.Int("media", b.mediaN),
		zap.Int("lists", len(b.lists.nums)),
		zap.Int("warnings", len(b.warnings)))
	return data, b.warnings, nil
}

// writeParts adds the main document and its supporting parts with their
// relationships.
func (b *builder) writeParts(body wBody, styles *wStyles, oddEven bool, md *model.DocumentMetadata) error {
	doc := wDocument{Attrs: wordNamespaces(), Body: body}
	if err := b.w.AddXMLPart(mainDocumentPart, ctDocument, doc); err != nil {
		return err
	}
	b.w.AddRelationship("", relOfficeDocument, mainDocumentPart, false)

	if err := b.w.AddXMLPart("word/styles.xml", ctStyles, styles); err != nil {
		return err
	}
	b.w.AddRelationship(mainDocumentPart, relStyles, "word/styles.xml", false)

	if !b.lists.empty() {
		if err := b.w.AddXMLPart("word/numbering.xml", ctNumbering, b.lists.part()); err != nil {
			return err
		}
		b.w.AddRelationship(mainDocumentPart, relNumbering, "word/numbering.xml", false)
	}

	if oddEven {
		if err := b.w.AddXMLPart("word/settings.xml", ctSettings, buildSettings(oddEven)); err != nil {
			return err
		}
		b.w.AddRelationship(mainDocumentPart, relSettings, "word/settings.xml", false)
	}

	if err := b.w.AddXMLPart("docProps/core.xml", ctCoreProps, b.coreProperties(md)); err != nil {
		return err
	}
	b.w.AddRelationship("", relCoreProps, "docProps/core.xml", false)

	if err := b.w.AddXMLPart("docProps/app.xml", ctExtendedProps, b.appProperties(md)); err != nil {
		return err
	}
	b.w.AddRelationship("", relExtendedProps, "docProps/app.xml", false)
	return nil
}

// warn records a warning and logs it.
func (b *builder) warn(kind model.WarningKind, part, msg string) {
	b.warnings = append(b.warnings, model.Warning{Kind: kind, Part: part, Message: msg})
	b.log.Warn(msg, zap.Stringer("kind", kind), zap.String("part", part))
}

// partBuilder converts blocks for one part. Relationship ids are minted
// against that part.
type partBuilder struct {
	b    *builder
	name string
	rels map[string]string // relationship key -> rId
	base htmldoc.RunStyle  // formatting of the current paragraph's style
}

func (b *builder) newPart(name string) *partBuilder {
	return &partBuilder{b: b, name: name, rels: make(map[string]string)}
}

// relationship returns the id of a relationship from this part, adding it
// on first use.
func (p *partBuilder) relationship(relType, target string, external bool) string {
	key := relType + "\x00" + target
	if id, ok := p.rels[key]; ok {
		return id
	}
	id := p.b.w.AddRelationship(p.name, relType, target, external)
	p.rels[key] = id
	return id
}

// blocks converts block nodes to w:p and w:tbl elements.
func (p *partBuilder) blocks(blocks []htmldoc.Block) []any {
	var out []any
	for _, blk := range blocks {
		switch v := blk.(type) {
		case *htmldoc.Paragraph:
			out = append(out, p.paragraph(v, nil))
		case *htmldoc.List:
			out = append(out, p.list(v, 0, nil)...)
		case *htmldoc.Table:
			out = append(out, p.table(v))
		case *htmldoc.HorizontalRule:
			out = append(out, horizontalRule())
		}
	}
	return out
}
