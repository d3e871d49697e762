package docx

import (
	"strconv"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// docShape summarizes the structure of decoded HTML.
type docShape struct {
	paragraphs int
	headings   [7]int
	listItems  int
	listDepth  int
	tables     []string // per table, the colspan sum of each row
}

func shapeOf(t *testing.T, src string) docShape {
	t.Helper()

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("html.Parse() error = %v", err)
	}

	var s docShape
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.P:
				s.paragraphs++
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				s.headings[n.Data[1]-'0']++
			case atom.Li:
				s.listItems++
			case atom.Ul, atom.Ol:
				depth++
				s.listDepth = max(s.listDepth, depth)
			case atom.Table:
				s.tables = append(s.tables, tableShape(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth)
		}
	}
	walk(root, 0)
	return s
}

func tableShape(tbl *html.Node) string {
	var rows []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.DataAtom == atom.Table {
				continue
			}
			if c.DataAtom != atom.Tr {
				walk(c)
				continue
			}
			cols := 0
			for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.DataAtom != atom.Td && cell.DataAtom != atom.Th {
					continue
				}
				span := 1
				for _, a := range cell.Attr {
					if a.Key == "colspan" {
						if n, err := strconv.Atoi(a.Val); err == nil && n > 0 {
							span = n
						}
					}
				}
				cols += span
			}
			rows = append(rows, strconv.Itoa(cols))
		}
	}
	walk(tbl)
	return strings.Join(rows, ",")
}

func headingPara(level int, text string) string {
	return `<w:p><w:pPr><w:pStyle w:val="Heading` + strconv.Itoa(level) + `"/></w:pPr><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func TestRoundTrip_PreservesStructure(t *testing.T) {
	var body strings.Builder
	for level := 1; level <= 6; level++ {
		body.WriteString(headingPara(level, "Heading "+strconv.Itoa(level)))
	}
	body.WriteString(plainPara("Intro"))
	body.WriteString(`<w:p/>`)
	body.WriteString(listPara("1", 0, "one"))
	body.WriteString(listPara("1", 1, "two"))
	body.WriteString(listPara("1", 2, "three"))
	body.WriteString(listPara("1", 0, "four"))
	body.WriteString(plainPara("Between"))
	body.WriteString(table("",
		row(cell(`<w:gridSpan w:val="2"/><w:vMerge w:val="restart"/>`, "A"), cell("", "B")),
		row(cell(`<w:gridSpan w:val="2"/><w:vMerge/>`, ""), cell("", "C")),
		row(cell("", "D"), cell("", "E"), cell("", "F")),
	))
	body.WriteString(plainPara("End"))

	first, _ := decodeParts(t, map[string]string{
		"word/document.xml":  testDocument(body.String()),
		"word/numbering.xml": testNumbering(testNumberingDefs),
		"word/styles.xml": testStyles(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal">` +
			`<w:name w:val="Normal"/><w:rPr><w:sz w:val="22"/></w:rPr></w:style>`),
	})

	want := docShape{
		paragraphs: 10, // Intro, the empty one, Between, End and six cells
		headings:   [7]int{0, 1, 1, 1, 1, 1, 1},
		listItems:  4,
		listDepth:  3,
		tables:     []string{"3,1,3"},
	}
	got := shapeOf(t, first.HTML)
	if !shapesEqual(got, want) {
		t.Fatalf("first decode shape = %+v, want %+v\nHTML: %s", got, want, first.HTML)
	}

	second, _ := roundTrip(t, EncodeRequest{HTML: first.HTML, Styles: first.Styles})
	if again := shapeOf(t, second.HTML); !shapesEqual(again, got) {
		t.Errorf("round trip shape = %+v, want %+v\nfirst:  %s\nsecond: %s", again, got, first.HTML, second.HTML)
	}
}

func shapesEqual(a, b docShape) bool {
	return a.paragraphs == b.paragraphs && a.headings == b.headings &&
		a.listItems == b.listItems && a.listDepth == b.listDepth &&
		strings.Join(a.tables, "|") == strings.Join(b.tables, "|")
}
