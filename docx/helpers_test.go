package docx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/tsawler/docxhtml/model"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// testFixedTime is the clock used by tests that render dates.
var testFixedTime = time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

// createTestDOCX builds a package in memory. [Content_Types].xml and
// _rels/.rels are added unless parts supplies them.
func createTestDOCX(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	if _, ok := parts[contentTypesPart]; !ok {
		parts[contentTypesPart] = testContentTypes
	}
	if _, ok := parts["_rels/.rels"]; !ok {
		parts["_rels/.rels"] = testPackageRels
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var rest []string
	for name := range parts {
		if name != contentTypesPart && name != "_rels/.rels" {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range append([]string{contentTypesPart, "_rels/.rels"}, rest...) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// testDocument wraps body content in a w:document part.
func testDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + testNamespaces + `><w:body>` + body + `</w:body></w:document>`
}

func testStyles(content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles ` + testNamespaces + `>` + content + `</w:styles>`
}

func testNumbering(content string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering ` + testNamespaces + `>` + content + `</w:numbering>`
}

func testRels(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		strings.Join(rels, "") + `</Relationships>`
}

// decodeParts decodes a package built from parts with a fixed clock.
func decodeParts(t *testing.T, parts map[string]string) (*model.DocumentContent, []model.Warning) {
	t.Helper()

	content, warnings, err := Decode(createTestDOCX(t, parts), DecodeOptions{
		Now: func() time.Time { return testFixedTime },
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return content, warnings
}

// decodeBody decodes a package holding only a main document.
func decodeBody(t *testing.T, body string) (string, []model.Warning) {
	t.Helper()

	content, warnings := decodeParts(t, map[string]string{"word/document.xml": testDocument(body)})
	return content.HTML, warnings
}

func hasWarning(warnings []model.Warning, kind model.WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func assertContains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output missing %q\ngot: %s", w, got)
		}
	}
}

func assertNotContains(t *testing.T, got string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(got, u) {
			t.Errorf("output unexpectedly contains %q\ngot: %s", u, got)
		}
	}
}

// tinyPNG encodes a solid w x h PNG.
func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 0xc0, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}
