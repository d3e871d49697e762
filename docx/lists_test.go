package docx

import (
	"encoding/xml"
	"strconv"
	"strings"
	"testing"

	"github.com/tsawler/docxhtml/model"
)

const testNumberingDefs = `
<w:abstractNum w:abstractNumId="0">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="lowerLetter"/><w:lvlText w:val="%2)"/></w:lvl>
  <w:lvl w:ilvl="2"><w:numFmt w:val="bullet"/><w:lvlText w:val="o"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="1">
  <w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="` + "\uf0b7" + `"/></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>
<w:num w:numId="3"><w:abstractNumId w:val="0"/>
  <w:lvlOverride w:ilvl="0"><w:startOverride w:val="5"/></w:lvlOverride>
</w:num>`

// listPara is a numbered paragraph holding text.
func listPara(numID string, level int, text string) string {
	return `<w:p><w:pPr><w:numPr><w:ilvl w:val="` + strconv.Itoa(level) + `"/><w:numId w:val="` + numID +
		`"/></w:numPr></w:pPr><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func plainPara(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func decodeLists(t *testing.T, body ...string) (string, []model.Warning) {
	t.Helper()
	content, warnings := decodeParts(t, map[string]string{
		"word/document.xml":  testDocument(strings.Join(body, "")),
		"word/numbering.xml": testNumbering(testNumberingDefs),
	})
	return content.HTML, warnings
}

func TestDecode_NestedList(t *testing.T) {
	got, warnings := decodeLists(t,
		listPara("1", 0, "A"),
		listPara("1", 1, "B"),
		listPara("1", 1, "C"),
		listPara("1", 2, "D"),
		listPara("1", 0, "E"),
		listPara("1", 0, "F"),
	)

	want := `<div class="document-content"><ol><li>A<ol style="list-style-type:lower-alpha"><li>B</li><li>C<ul><li>D</li></ul></li></ol></li><li>E</li><li>F</li></ol></div>`
	if got != want {
		t.Errorf("Decode() HTML\ngot:  %s\nwant: %s", got, want)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestDecode_SkippedListLevel(t *testing.T) {
	got, _ := decodeLists(t,
		listPara("1", 0, "a"),
		listPara("1", 2, "b"),
		listPara("1", 1, "c"),
	)

	want := `<div class="document-content"><ol><li>a<ul data-level="2"><li>b</li></ul>` +
		`<ol style="list-style-type:lower-alpha"><li>c</li></ol></li></ol></div>`
	if got != want {
		t.Errorf("Decode() HTML\ngot:  %s\nwant: %s", got, want)
	}
}

func TestDecode_ListBoundaries(t *testing.T) {
	t.Run("paragraph ends the list", func(t *testing.T) {
		got, _ := decodeLists(t,
			listPara("1", 0, "one"),
			plainPara("between"),
			listPara("1", 0, "two"),
		)
		if n := strings.Count(got, "<ol>"); n != 2 {
			t.Errorf("want two lists, got %d: %s", n, got)
		}
		assertContains(t, got, "</ol><p>between</p><ol>")
	})

	t.Run("different list at the same level", func(t *testing.T) {
		got, _ := decodeLists(t,
			listPara("1", 0, "ordered"),
			listPara("2", 0, "bullet"),
		)
		assertContains(t, got, "<ol><li>ordered</li></ol><ul><li>bullet</li></ul>")
	})

	t.Run("start override", func(t *testing.T) {
		got, _ := decodeLists(t, listPara("3", 0, "fifth"))
		assertContains(t, got, `<ol start="5"><li>fifth</li></ol>`)
	})

	t.Run("numId zero is not a list", func(t *testing.T) {
		got, _ := decodeLists(t, listPara("0", 0, "plain"))
		assertContains(t, got, "<p>plain</p>")
		assertNotContains(t, got, "<li>")
	})

	t.Run("numbered heading keeps its tag", func(t *testing.T) {
		got, _ := decodeLists(t,
			listPara("1", 0, "item"),
			`<w:p><w:pPr><w:pStyle w:val="Heading2"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>`,
		)
		assertContains(t, got, "<ol><li>item</li></ol><h2>Title</h2>")
	})

	t.Run("table closes the list", func(t *testing.T) {
		got, _ := decodeLists(t,
			listPara("2", 0, "before"),
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			listPara("2", 0, "after"),
		)
		if n := strings.Count(got, "<ul>"); n != 2 {
			t.Errorf("want two lists around the table, got %d: %s", n, got)
		}
	})
}

func TestDecode_MissingNumbering(t *testing.T) {
	content, warnings := decodeParts(t, map[string]string{
		"word/document.xml": testDocument(listPara("7", 0, "orphan") + listPara("7", 0, "again")),
	})
	assertContains(t, content.HTML, "<ul><li>orphan</li><li>again</li></ul>")

	n := 0
	for _, w := range warnings {
		if w.Kind == model.MissingNumbering {
			n++
		}
	}
	if n != 1 {
		t.Errorf("want one MissingNumbering warning, got %v", warnings)
	}
}

func TestNumberingResolver_ResolveLevel(t *testing.T) {
	var numbering numberingXML
	if err := xml.Unmarshal([]byte(testNumbering(testNumberingDefs)), &numbering); err != nil {
		t.Fatalf("failed to parse numbering: %v", err)
	}
	nr := NewNumberingResolver(&numbering)

	tests := []struct {
		numID   string
		level   int
		want    LevelDef
		defined bool
	}{
		{"1", 0, LevelDef{Format: "decimal", Text: "%1.", Start: 1, Ordered: true}, true},
		{"1", 1, LevelDef{Format: "lowerLetter", Text: "%2)", Start: 1, Ordered: true}, true},
		{"1", 2, LevelDef{Format: "bullet", Text: "o", Start: 1}, true},
		{"3", 0, LevelDef{Format: "decimal", Text: "%1.", Start: 5, Ordered: true}, true},
		{"1", 5, fallbackLevel, false},
		{"99", 0, fallbackLevel, false},
	}
	for _, tt := range tests {
		got, ok := nr.ResolveLevel(tt.numID, tt.level)
		if got != tt.want || ok != tt.defined {
			t.Errorf("ResolveLevel(%q, %d) = %+v, %v; want %+v, %v", tt.numID, tt.level, got, ok, tt.want, tt.defined)
		}
	}
}

func TestListStyleType(t *testing.T) {
	tests := map[string]string{
		"decimal":     "",
		"lowerLetter": "lower-alpha",
		"upperLetter": "upper-alpha",
		"lowerRoman":  "lower-roman",
		"upperRoman":  "upper-roman",
		"bullet":      "",
	}
	for format, want := range tests {
		if got := listStyleType(format); got != want {
			t.Errorf("listStyleType(%q) = %q, want %q", format, got, want)
		}
	}
}
