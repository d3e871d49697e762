package docx

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/tsawler/docxhtml/model"
)

func TestDecode_FormattedRun(t *testing.T) {
	got, warnings := decodeBody(t, `<w:p><w:r>
<w:rPr><w:b/><w:sz w:val="28"/><w:color w:val="FF0000"/></w:rPr>
<w:t>Hello</w:t></w:r></w:p>`)

	want := `<div class="document-content"><p><span style="font-size:14pt;color:#ff0000"><strong>Hello</strong></span></p></div>`
	if got != want {
		t.Errorf("Decode() HTML\ngot:  %s\nwant: %s", got, want)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestDecode_RunFormatting(t *testing.T) {
	tests := []struct {
		name string
		rPr  string
		want string
	}{
		{"nested tags", `<w:i/><w:u w:val="single"/><w:strike/><w:vertAlign w:val="superscript"/>`, `<em><u><s><sup>x</sup></s></u></em>`},
		{"subscript", `<w:vertAlign w:val="subscript"/>`, `<sub>x</sub>`},
		{"underline none", `<w:u w:val="none"/>`, `<p>x</p>`},
		{"bold off", `<w:b w:val="0"/>`, `<p>x</p>`},
		{"highlight", `<w:highlight w:val="yellow"/>`, `<span style="background-color:#ffff00">x</span>`},
		{"shading", `<w:shd w:val="clear" w:fill="CCFFCC"/>`, `<span style="background-color:#ccffcc">x</span>`},
		{"font", `<w:rFonts w:ascii="Georgia"/>`, `<span style="font-family:&#39;Georgia&#39;,sans-serif">x</span>`},
		{"caps", `<w:caps/><w:spacing w:val="40"/>`, `<span style="text-transform:uppercase;letter-spacing:2pt">x</span>`},
		{"auto color", `<w:color w:val="auto"/>`, `<p>x</p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := decodeBody(t, `<w:p><w:r><w:rPr>`+tt.rPr+`</w:rPr><w:t>x</w:t></w:r></w:p>`)
			assertContains(t, got, tt.want)
		})
	}
}

func TestDecode_ParagraphFormatting(t *testing.T) {
	got, _ := decodeBody(t, `<w:p><w:pPr>
<w:jc w:val="both"/>
<w:spacing w:before="240" w:after="120" w:line="360" w:lineRule="auto"/>
<w:ind w:left="720" w:hanging="360"/>
</w:pPr><w:r><w:t>Body</w:t></w:r></w:p>
<w:p><w:pPr><w:pageBreakBefore/><w:shd w:val="clear" w:fill="FFFF00"/>
<w:pBdr><w:bottom w:val="single" w:sz="6" w:color="auto"/></w:pBdr></w:pPr></w:p>`)

	assertContains(t, got,
		`<p style="text-align:justify;margin-left:48px;text-indent:-24px;margin-top:16px;margin-bottom:8px;line-height:1.5">Body</p>`,
		`<p style="background-color:#ffff00;border-bottom:1px solid #000000;page-break-before:always">`+"\u00a0"+`</p>`,
	)
}

func TestDecode_RunContent(t *testing.T) {
	got, _ := decodeBody(t, `<w:p><w:r>
<w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t><w:br w:type="page"/>
<w:sym w:font="Symbol" w:char="F061"/>
</w:r>
<w:ins><w:r><w:t>added</w:t></w:r></w:ins>
<w:del><w:r><w:delText>gone</w:delText></w:r></w:del>
</w:p>`)

	assertContains(t, got, "<p>a\u2003b<br/>c<br class=\"page-break\"/>aadded</p>")
	assertNotContains(t, got, "gone")
}

func TestDecode_Hyperlinks(t *testing.T) {
	content, warnings := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(`<w:p>
<w:hyperlink r:id="rId3"><w:r><w:t>site</w:t></w:r></w:hyperlink>
<w:hyperlink w:anchor="intro"><w:r><w:t>jump</w:t></w:r></w:hyperlink>
<w:hyperlink r:id="rId99"><w:r><w:t>broken</w:t></w:r></w:hyperlink>
</w:p>`),
		"word/_rels/document.xml.rels": testRels(
			`<Relationship Id="rId3" Type="` + relHyperlink + `" Target="https://example.com/" TargetMode="External"/>`,
		),
	})

	assertContains(t, content.HTML,
		`<a href="https://example.com/" target="_blank">site</a>`,
		`<a href="#intro" target="_blank">jump</a>`,
		`<a target="_blank">broken</a>`,
	)
	if !hasWarning(warnings, model.MissingRelationship) {
		t.Errorf("expected a MissingRelationship warning, got %v", warnings)
	}
}

func TestDecode_Styles(t *testing.T) {
	content, warnings := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(`
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t>Body</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Quote"/></w:pPr><w:r><w:t>Cited</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Ghost"/></w:pPr><w:r><w:t>Lost</w:t></w:r></w:p>`),
		"word/styles.xml": testStyles(`
<w:docDefaults><w:rPrDefault><w:rPr><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>
  <w:rPr><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Quote"><w:name w:val="Quote"/><w:basedOn w:val="Normal"/>
  <w:rPr><w:color w:val="404040"/></w:rPr></w:style>`),
	})

	assertContains(t, content.HTML,
		`<div class="document-content" style="font-size:11pt">`,
		`<h1 style="font-size:16pt">Title</h1>`,
		`<p>Body</p>`,
		`<p style="color:#404040" data-style-id="Quote">Cited</p>`,
		`<p data-style-id="Ghost">Lost</p>`,
	)
	if !hasWarning(warnings, model.MissingStyle) {
		t.Errorf("expected a MissingStyle warning, got %v", warnings)
	}
	if len(content.Styles) != 3 {
		t.Errorf("len(Styles) = %d, want 3", len(content.Styles))
	}
}

func TestDecode_Metadata(t *testing.T) {
	core := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
  xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>Report</dc:title>
  <dc:creator>Ada</dc:creator>
  <cp:keywords>alpha, beta</cp:keywords>
  <cp:lastModifiedBy>Grace</cp:lastModifiedBy>
  <cp:revision>4</cp:revision>
  <dcterms:created xsi:type="dcterms:W3CDTF">2024-01-02T03:04:05Z</dcterms:created>
</cp:coreProperties>`
	app := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
  <Pages>3</Pages><Words>42</Words><Company>ACME</Company>
</Properties>`

	content, _ := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(plainPara("one two")),
		"docProps/core.xml": core,
		"docProps/app.xml":  app,
	})
	md := content.Metadata
	if md.Title != "Report" || md.Author != "Ada" || md.Keywords != "alpha, beta" || md.LastModifiedBy != "Grace" || md.Revision != "4" {
		t.Errorf("core properties = %+v", md)
	}
	if md.Created == nil || md.Created.Year() != 2024 || md.Created.Second() != 5 {
		t.Errorf("Created = %v", md.Created)
	}
	if md.Modified != nil {
		t.Errorf("Modified = %v, want nil", md.Modified)
	}
	if md.PageCount != 3 || md.WordCount != 42 || md.Company != "ACME" {
		t.Errorf("extended properties = %+v", md)
	}

	t.Run("word count fallback", func(t *testing.T) {
		content, _ := decodeParts(t, map[string]string{
			"word/document.xml": testDocument(plainPara("one two three") + plainPara("four") + `<w:p/>`),
		})
		if got := content.Metadata.WordCount; got != 4 {
			t.Errorf("WordCount = %d, want 4", got)
		}
	})
}

func TestDecode_HeadersFooters(t *testing.T) {
	content, _ := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(plainPara("Body") + `<w:sectPr>
<w:headerReference w:type="default" r:id="rId5"/>
<w:headerReference w:type="first" r:id="rId6"/>
<w:footerReference w:type="default" r:id="rId7"/>
<w:pgMar w:top="2160" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720"/>
<w:titlePg/>
</w:sectPr>`),
		"word/_rels/document.xml.rels": testRels(
			`<Relationship Id="rId5" Type="`+relHeader+`" Target="header1.xml"/>`,
			`<Relationship Id="rId6" Type="`+relHeader+`" Target="header2.xml"/>`,
			`<Relationship Id="rId7" Type="`+relFooter+`" Target="footer1.xml"/>`,
		),
		"word/header1.xml": `<w:hdr ` + testNamespaces + `>` + plainPara("Head") + `</w:hdr>`,
		"word/header2.xml": `<w:hdr ` + testNamespaces + `>` + plainPara("First") + `</w:hdr>`,
		"word/footer1.xml": `<w:ftr ` + testNamespaces + `><w:p><w:r><w:t xml:space="preserve">Page </w:t></w:r>` +
			`<w:fldSimple w:instr=" PAGE "><w:r><w:t>1</w:t></w:r></w:fldSimple></w:p></w:ftr>`,
	})

	h := content.Header
	if h == nil {
		t.Fatal("Header is nil")
	}
	if h.HTML != "<p>Head</p>" || h.FirstPageHTML != "<p>First</p>" || !h.DifferentFirstPage {
		t.Errorf("Header = %+v", h)
	}
	if h.Height != 2.54 {
		t.Errorf("Header.Height = %v, want 2.54", h.Height)
	}
	if h.DifferentOddEven {
		t.Error("DifferentOddEven needs evenAndOddHeaders in settings")
	}

	f := content.Footer
	if f == nil {
		t.Fatal("Footer is nil")
	}
	if f.HTML != "<p>Page {page}</p>" || f.Height != model.DefaultHeaderHeight || f.DifferentFirstPage {
		t.Errorf("Footer = %+v", f)
	}
	assertNotContains(t, content.HTML, "Head", "Page")
}

func TestDecode_Images(t *testing.T) {
	png := tinyPNG(t, 4, 2)
	drawing := func(id string) string {
		return `<w:r><w:drawing><wp:inline>
<wp:extent cx="952500" cy="476250"/>
<wp:docPr id="1" name="Picture 1" descr="Logo"/>
<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">
<pic:pic><pic:blipFill><a:blip r:embed="` + id + `"/></pic:blipFill></pic:pic>
</a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
	}

	content, warnings := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(`<w:p>` + drawing("rId7") + drawing("rId7") + `</w:p>` +
			`<w:p>` + drawing("rId8") + drawing("rId9") + `</w:p>`),
		"word/_rels/document.xml.rels": testRels(
			`<Relationship Id="rId7" Type="`+relImage+`" Target="media/image1.png"/>`,
			`<Relationship Id="rId8" Type="`+relImage+`" Target="media/notes.bin"/>`,
		),
		"word/media/image1.png": string(png),
		"word/media/notes.bin":  "just some plain text, not a picture",
	})

	assertContains(t, content.HTML,
		`src="data:image/png;base64,`+base64.StdEncoding.EncodeToString(png)+`"`,
		`data-image-id="rId7"`,
		`data-width-emu="952500"`,
		`style="width:100px;height:50px"`,
		`alt="Logo"`,
	)
	if len(content.Images) != 1 {
		t.Fatalf("len(Images) = %d, want 1", len(content.Images))
	}
	img := content.Images[0]
	if img.ID != "rId7" || img.ContentType != "image/png" || len(img.Data) != len(png) {
		t.Errorf("Images[0] = {%s %s %d bytes}", img.ID, img.ContentType, len(img.Data))
	}
	if !hasWarning(warnings, model.UnsupportedMediaType) {
		t.Errorf("expected an UnsupportedMediaType warning, got %v", warnings)
	}
	if !hasWarning(warnings, model.MissingRelationship) {
		t.Errorf("expected a MissingRelationship warning, got %v", warnings)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
		want error
	}{
		{"garbage", func(*testing.T) []byte { return []byte("PK but not really") }, ErrInvalidPackage},
		{"malformed document", func(t *testing.T) []byte {
			return createTestDOCX(t, map[string]string{"word/document.xml": "<w:document><w:body><w:p>"})
		}, ErrUnreadableDocument},
		{"no body", func(t *testing.T) []byte {
			return createTestDOCX(t, map[string]string{"word/document.xml": `<w:document ` + testNamespaces + `/>`})
		}, ErrUnreadableDocument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data(t), DecodeOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_SectionInLastParagraph(t *testing.T) {
	content, _ := decodeParts(t, map[string]string{
		"word/document.xml":            testDocument(`<w:p><w:pPr><w:sectPr><w:footerReference w:type="default" r:id="rId1"/></w:sectPr></w:pPr></w:p>`),
		"word/_rels/document.xml.rels": testRels(`<Relationship Id="rId1" Type="` + relFooter + `" Target="footer1.xml"/>`),
		"word/footer1.xml":             `<w:ftr ` + testNamespaces + `>` + plainPara("Foot") + `</w:ftr>`,
	})
	if content.Footer == nil || content.Footer.HTML != "<p>Foot</p>" {
		t.Errorf("Footer = %+v", content.Footer)
	}
}
