package htmldoc

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() failed: %v", err)
	}
	return doc
}

func paragraphAt(t *testing.T, blocks []Block, i int) *Paragraph {
	t.Helper()
	if i >= len(blocks) {
		t.Fatalf("got %d blocks, want more than %d", len(blocks), i)
	}
	p, ok := blocks[i].(*Paragraph)
	if !ok {
		t.Fatalf("block %d is %s, want paragraph", i, blocks[i].Kind())
	}
	return p
}

func runAt(t *testing.T, inlines []Inline, i int) *Run {
	t.Helper()
	if i >= len(inlines) {
		t.Fatalf("got %d inlines, want more than %d", len(inlines), i)
	}
	r, ok := inlines[i].(*Run)
	if !ok {
		t.Fatalf("inline %d is %s, want run", i, inlines[i].Kind())
	}
	return r
}

// kinds lists the node kinds of inlines for compact comparisons.
func kinds(inlines []Inline) string {
	var parts []string
	for _, in := range inlines {
		parts = append(parts, in.Kind().String())
	}
	return strings.Join(parts, ",")
}

func TestParse_Headings(t *testing.T) {
	doc := mustParse(t, `<h1>Main Heading</h1><h3 data-style-id="Custom">Sub</h3><p>Body</p>`)

	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	h1 := paragraphAt(t, doc.Blocks, 0)
	if h1.Level != 1 || h1.Kind() != KindHeading {
		t.Errorf("h1 level = %d, kind = %s", h1.Level, h1.Kind())
	}
	if got := runAt(t, h1.Inlines, 0).Text; got != "Main Heading" {
		t.Errorf("h1 text = %q", got)
	}
	h3 := paragraphAt(t, doc.Blocks, 1)
	if h3.Level != 3 || h3.StyleID != "" {
		t.Errorf("h3 level = %d, style = %q; headings take their style from the level", h3.Level, h3.StyleID)
	}
	if p := paragraphAt(t, doc.Blocks, 2); p.Level != 0 || p.Kind() != KindParagraph {
		t.Errorf("p level = %d, kind = %s", p.Level, p.Kind())
	}
}

func TestParse_Runs(t *testing.T) {
	doc := mustParse(t, `<p>Hello <strong>bold</strong> and <em><u>both</u></em><s>gone</s><sup>2</sup></p>`)
	p := paragraphAt(t, doc.Blocks, 0)

	if got := kinds(p.Inlines); got != "run,run,run,run,run,run" {
		t.Fatalf("inlines = %s", got)
	}
	want := []struct {
		text  string
		style RunStyle
	}{
		{"Hello ", RunStyle{}},
		{"bold", RunStyle{Bold: true}},
		{" and ", RunStyle{}},
		{"both", RunStyle{Italic: true, Underline: true}},
		{"gone", RunStyle{Strike: true}},
		{"2", RunStyle{VertAlign: "superscript"}},
	}
	for i, w := range want {
		r := runAt(t, p.Inlines, i)
		if r.Text != w.text || r.Style != w.style {
			t.Errorf("run %d = %q %+v, want %q %+v", i, r.Text, r.Style, w.text, w.style)
		}
	}
}

func TestParse_Whitespace(t *testing.T) {
	doc := mustParse(t, "<p>\n  one   two\n\tthree  </p><p> <b> lead</b> tail </p>")

	p := paragraphAt(t, doc.Blocks, 0)
	if len(p.Inlines) != 1 || runAt(t, p.Inlines, 0).Text != "one two three" {
		t.Errorf("collapsed text = %+v", p.Inlines)
	}

	p = paragraphAt(t, doc.Blocks, 1)
	if got := runAt(t, p.Inlines, 0).Text; got != "lead" {
		t.Errorf("first run = %q, want leading space trimmed", got)
	}
	if got := runAt(t, p.Inlines, 1).Text; got != " tail" {
		t.Errorf("second run = %q", got)
	}
}

func TestParse_EmptyParagraph(t *testing.T) {
	doc := mustParse(t, "<p>\u00a0</p><p></p><p>x</p>")

	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	for i := 0; i < 2; i++ {
		if p := paragraphAt(t, doc.Blocks, i); !p.IsEmpty() {
			t.Errorf("paragraph %d inlines = %+v, want empty", i, p.Inlines)
		}
	}
	if paragraphAt(t, doc.Blocks, 2).IsEmpty() {
		t.Error("paragraph with text reported empty")
	}
}

func TestParse_LooseInlineContent(t *testing.T) {
	doc := mustParse(t, `text <b>x</b><p>para</p>tail<div>inside <i>div</i></div>   `)

	if len(doc.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(doc.Blocks))
	}
	first := paragraphAt(t, doc.Blocks, 0)
	if got := kinds(first.Inlines); got != "run,run" {
		t.Errorf("anonymous paragraph inlines = %s", got)
	}
	if got := runAt(t, paragraphAt(t, doc.Blocks, 2).Inlines, 0).Text; got != "tail" {
		t.Errorf("trailing text = %q", got)
	}
	if got := runAt(t, paragraphAt(t, doc.Blocks, 3).Inlines, 1).Style; !got.Italic {
		t.Errorf("div content lost formatting: %+v", got)
	}
}

func TestParse_Breaks(t *testing.T) {
	doc := mustParse(t, `<p>a <br> b<br class="page-break">c</p>`)
	p := paragraphAt(t, doc.Blocks, 0)

	if got := kinds(p.Inlines); got != "run,line break,run,page break,run" {
		t.Fatalf("inlines = %s", got)
	}
	if got := runAt(t, p.Inlines, 0).Text; got != "a" {
		t.Errorf("text before break = %q, want trailing space trimmed", got)
	}
	if got := runAt(t, p.Inlines, 2).Text; got != "b" {
		t.Errorf("text after break = %q, want leading space trimmed", got)
	}
}

func TestParse_TabsAndFields(t *testing.T) {
	doc := mustParse(t, "<p>a\u2003b {page} of {pages} {x}</p>"+
		`<p><span class="field-page">1</span>/<span class="field-numpages" style="font-weight:bold">9</span></p>`)

	p := paragraphAt(t, doc.Blocks, 0)
	if got := kinds(p.Inlines); got != "run,tab,run,field,run,field,run" {
		t.Fatalf("inlines = %s", got)
	}
	if f := p.Inlines[3].(*Field); f.Type != FieldPage {
		t.Errorf("field 1 type = %d", f.Type)
	}
	if f := p.Inlines[5].(*Field); f.Type != FieldPages {
		t.Errorf("field 2 type = %d", f.Type)
	}
	if got := runAt(t, p.Inlines, 4).Text; got != " of " {
		t.Errorf("text between fields = %q", got)
	}
	if got := runAt(t, p.Inlines, 6).Text; got != " {x}" {
		t.Errorf("unknown placeholder = %q, want kept as text", got)
	}

	p = paragraphAt(t, doc.Blocks, 1)
	if got := kinds(p.Inlines); got != "field,run,field" {
		t.Fatalf("span fields = %s", got)
	}
	if f := p.Inlines[2].(*Field); f.Type != FieldPages || !f.Style.Bold {
		t.Errorf("numpages field = %+v", f)
	}
}

func TestParse_Preformatted(t *testing.T) {
	doc := mustParse(t, "<pre>a  b\n\tc</pre>")
	p := paragraphAt(t, doc.Blocks, 0)

	if got := kinds(p.Inlines); got != "run,line break,tab,run" {
		t.Fatalf("inlines = %s", got)
	}
	r := runAt(t, p.Inlines, 0)
	if r.Text != "a  b" {
		t.Errorf("preformatted text = %q, want spaces kept", r.Text)
	}
	if r.Style.Font != "Courier New" {
		t.Errorf("pre font = %q", r.Style.Font)
	}
}

func TestParse_SkipsNonContent(t *testing.T) {
	doc := mustParse(t, `<!DOCTYPE html><html><head><title>T</title><style>p{}</style></head>
<body><p>a<script>alert(1)</script></p><noscript>n</noscript><template><p>t</p></template></body></html>`)

	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	p := paragraphAt(t, doc.Blocks, 0)
	if len(p.Inlines) != 1 || runAt(t, p.Inlines, 0).Text != "a" {
		t.Errorf("inlines = %+v", p.Inlines)
	}
}

func TestParse_StyleInheritance(t *testing.T) {
	doc := mustParse(t, `<div style="font-family:'Georgia', serif;color:#333">
<p style="font-size:16px">x <span style="font-weight:700;font-size:150%">y</span></p></div>`)
	p := paragraphAt(t, doc.Blocks, 0)

	x := runAt(t, p.Inlines, 0)
	if x.Style.Font != "Georgia" || x.Style.Color != "333333" || x.Style.Size != 24 {
		t.Errorf("x style = %+v", x.Style)
	}
	y := runAt(t, p.Inlines, 1)
	if !y.Style.Bold || y.Style.Size != 36 || y.Style.Font != "Georgia" {
		t.Errorf("y style = %+v", y.Style)
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  map[string]string
	}{
		{"empty", "  ", map[string]string{}},
		{"no trailing semicolon", "color:red", map[string]string{"color": "red"}},
		{"case and spacing", " Font-Weight : bold ; COLOR:#f00;", map[string]string{"font-weight": "bold", "color": "#f00"}},
		{"quoted semicolon", `font-family:"Foo;Bar", serif; color:#f00`, map[string]string{"font-family": `"Foo;Bar", serif`, "color": "#f00"}},
		{"important", "color:blue !important", map[string]string{"color": "blue"}},
		{"comment", "/* editor */ color:red; /* x */ font-style:italic", map[string]string{"color": "red", "font-style": "italic"}},
		{"later wins", "color:red;color:blue", map[string]string{"color": "blue"}},
		{"url", "background-image:url(data:image/png;base64,AAAA);color:red", map[string]string{"background-image": "url(data:image/png;base64,AAAA)", "color": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStyle(tt.style)
			if len(got) != len(tt.want) {
				t.Fatalf("parseStyle(%q) = %v, want %v", tt.style, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("parseStyle(%q)[%q] = %q, want %q", tt.style, k, got[k], v)
				}
			}
		})
	}
}

func TestParse_QuotedFontFamily(t *testing.T) {
	doc := mustParse(t, `<p style='font-family:"Foo;Bar", serif; color:#f00'>x</p>`)
	st := runAt(t, paragraphAt(t, doc.Blocks, 0).Inlines, 0).Style

	if st.Font != "Foo;Bar" || st.Color != "FF0000" {
		t.Errorf("style = %+v", st)
	}
}

func TestParse_ParagraphStyle(t *testing.T) {
	doc := mustParse(t, `<p align="right" style="margin:12pt 0;text-indent:-18pt;line-height:1.5;`+
		`border-bottom:1px solid #000;page-break-before:always;background:#eee">x</p>`)
	st := paragraphAt(t, doc.Blocks, 0).Style

	if st.Align != "right" {
		t.Errorf("Align = %q", st.Align)
	}
	checkInt := func(name string, got *int, want int) {
		t.Helper()
		if got == nil || *got != want {
			t.Errorf("%s = %v, want %d", name, got, want)
		}
	}
	checkInt("SpaceBefore", st.SpaceBefore, 240)
	checkInt("SpaceAfter", st.SpaceAfter, 240)
	checkInt("IndentLeft", st.IndentLeft, 0)
	checkInt("IndentRight", st.IndentRight, 0)
	checkInt("IndentFirst", st.IndentFirst, -360)
	if st.Line != 360 || st.LineRule != "auto" {
		t.Errorf("line = %d %q", st.Line, st.LineRule)
	}
	if b := st.Borders.Bottom; b == nil || *b != (Border{Style: "single", Eighths: 6, Color: "000000"}) {
		t.Errorf("bottom border = %+v", b)
	}
	if st.Borders.Top != nil {
		t.Errorf("top border = %+v, want unset", st.Borders.Top)
	}
	if !st.PageBreakBefore || st.Background != "EEEEEE" {
		t.Errorf("PageBreakBefore = %v, Background = %q", st.PageBreakBefore, st.Background)
	}
}

func TestParse_StyleIDs(t *testing.T) {
	doc := mustParse(t, `<p data-style-id="Brand">a</p><blockquote>quoted<p>inner</p></blockquote>`+
		`<blockquote data-style-id="IntenseQuote"><p>b</p></blockquote><div data-style-id="Caption">c</div>`)

	want := []string{"Brand", "Quote", "Quote", "IntenseQuote", "Caption"}
	if len(doc.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(doc.Blocks), len(want))
	}
	for i, id := range want {
		if got := paragraphAt(t, doc.Blocks, i).StyleID; got != id {
			t.Errorf("block %d style = %q, want %q", i, got, id)
		}
	}
}

func TestParse_Lists(t *testing.T) {
	doc := mustParse(t, `<ol start="3"><li>one</li><li>two<ul><li>inner</li></ul></li></ol>`)

	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	l, ok := doc.Blocks[0].(*List)
	if !ok {
		t.Fatalf("block is %s, want list", doc.Blocks[0].Kind())
	}
	if !l.Ordered || l.Start != 3 || len(l.Items) != 2 {
		t.Fatalf("list = ordered %v, start %d, %d items", l.Ordered, l.Start, len(l.Items))
	}

	second := l.Items[1]
	if len(second.Blocks) != 2 {
		t.Fatalf("second item has %d blocks, want 2", len(second.Blocks))
	}
	if got := runAt(t, paragraphAt(t, second.Blocks, 0).Inlines, 0).Text; got != "two" {
		t.Errorf("item text = %q", got)
	}
	nested, ok := second.Blocks[1].(*List)
	if !ok || nested.Ordered || nested.Start != 1 || len(nested.Items) != 1 {
		t.Errorf("nested list = %+v", second.Blocks[1])
	}
}

func TestParse_ListNestedWithoutItem(t *testing.T) {
	doc := mustParse(t, `<ul><li>a</li><ol><li>b</li></ol><li>c</li></ul>`)
	l := doc.Blocks[0].(*List)

	if len(l.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(l.Items))
	}
	if len(l.Items[0].Blocks) != 2 {
		t.Fatalf("first item has %d blocks, want the stray list attached", len(l.Items[0].Blocks))
	}
	if nested, ok := l.Items[0].Blocks[1].(*List); !ok || !nested.Ordered {
		t.Errorf("attached block = %+v", l.Items[0].Blocks[1])
	}
}

func TestParse_Tables(t *testing.T) {
	doc := mustParse(t, `<table style="width:50%;margin-left:auto;margin-right:auto">
<thead><tr><th>H</th><th>I</th></tr></thead>
<tbody><tr style="height:20px">
<td colspan="2" rowspan="3" style="background-color:#ffcc00;vertical-align:middle;padding:4px;text-align:center">c</td>
</tr></tbody></table>`)

	tbl, ok := doc.Blocks[0].(*Table)
	if !ok {
		t.Fatalf("block is %s, want table", doc.Blocks[0].Kind())
	}
	if tbl.Style.Width.Percent != 50 || tbl.Style.Align != "center" {
		t.Errorf("table style = %+v", tbl.Style)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(tbl.Rows))
	}

	head := tbl.Rows[0]
	if !head.Header || len(head.Cells) != 2 {
		t.Errorf("header row = %+v", head)
	}
	if r := runAt(t, paragraphAt(t, head.Cells[0].Blocks, 0).Inlines, 0); !r.Style.Bold {
		t.Error("th content should be bold")
	}

	body := tbl.Rows[1]
	if body.Header || body.Height != 300 {
		t.Errorf("body row header = %v, height = %d", body.Header, body.Height)
	}
	c := body.Cells[0]
	if c.ColSpan != 2 || c.RowSpan != 3 {
		t.Errorf("spans = %d x %d", c.ColSpan, c.RowSpan)
	}
	if c.Style.Background != "FFCC00" || c.Style.VAlign != "center" {
		t.Errorf("cell style = %+v", c.Style)
	}
	for i, side := range c.Style.Padding {
		if side == nil || *side != 60 {
			t.Errorf("padding[%d] = %v, want 60", i, side)
		}
	}
	if got := paragraphAt(t, c.Blocks, 0).Style.Align; got != "center" {
		t.Errorf("cell paragraph align = %q", got)
	}
}

func TestParse_TableAttributes(t *testing.T) {
	doc := mustParse(t, `<table border="1" width="240" align="right"><tr><td bgcolor="navy" valign="bottom" colspan="x">a</td></tr></table>`)
	tbl := doc.Blocks[0].(*Table)

	if tbl.Style.Width.Twips != 3600 || tbl.Style.Align != "right" {
		t.Errorf("table style = %+v", tbl.Style)
	}
	want := Border{Style: "single", Eighths: 6, Color: "000000"}
	for _, b := range []*Border{tbl.Style.Borders.Top, tbl.Style.Borders.Right, tbl.Style.Borders.Bottom, tbl.Style.Borders.Left} {
		if b == nil || *b != want {
			t.Errorf("border = %+v, want %+v", b, want)
		}
	}
	c := tbl.Rows[0].Cells[0]
	if c.Style.Background != "000080" || c.Style.VAlign != "bottom" || c.ColSpan != 1 {
		t.Errorf("cell = %+v", c)
	}
}

func TestParse_Hyperlinks(t *testing.T) {
	doc := mustParse(t, `<p>see <a href="https://example.com" style="color:red">link <b>here</b></a>. <a name="x">plain</a></p>`)
	p := paragraphAt(t, doc.Blocks, 0)

	if got := kinds(p.Inlines); got != "run,hyperlink,run" {
		t.Fatalf("inlines = %s", got)
	}
	link := p.Inlines[1].(*Hyperlink)
	if link.URL != "https://example.com" || len(link.Inlines) != 2 {
		t.Fatalf("link = %+v", link)
	}
	if r := runAt(t, link.Inlines, 1); r.Text != "here" || !r.Style.Bold || r.Style.Color != "FF0000" {
		t.Errorf("link run = %+v", r)
	}
	if got := runAt(t, p.Inlines, 2).Text; got != ". plain" {
		t.Errorf("anchor without href = %q, want plain text", got)
	}
}

func TestParse_Images(t *testing.T) {
	doc := mustParse(t, `<p><img src="data:image/png;base64,iVBORw0KGgo=" alt="logo" width="10" style="height:30px" data-image-id="rId4">`+
		`<img src="https://example.com/a.png" data-width-emu="95250" data-height-emu="47625">`+
		`<img src="data:image/png;base64">`+
		`<img src="data:text/plain,hello%20world"><img></p>`)
	p := paragraphAt(t, doc.Blocks, 0)

	if got := kinds(p.Inlines); got != "image,image,image" {
		t.Fatalf("inlines = %s", got)
	}

	img := p.Inlines[0].(*Image)
	if img.ContentType != "image/png" || img.Alt != "logo" || img.ID != "rId4" {
		t.Errorf("image = %+v", img)
	}
	if !bytes.Equal(img.Data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("image data = %x", img.Data)
	}
	if img.WidthPx != 10 || math.Abs(img.HeightPx-30) > 1e-9 {
		t.Errorf("image size = %v x %v", img.WidthPx, img.HeightPx)
	}

	remote := p.Inlines[1].(*Image)
	if remote.Src != "https://example.com/a.png" || remote.Data != nil {
		t.Errorf("remote image = %+v", remote)
	}
	if remote.WidthEMU != 95250 || remote.HeightEMU != 47625 {
		t.Errorf("remote extent = %d x %d", remote.WidthEMU, remote.HeightEMU)
	}

	text := p.Inlines[2].(*Image)
	if text.ContentType != "text/plain" || string(text.Data) != "hello world" {
		t.Errorf("percent-encoded payload = %q (%s)", text.Data, text.ContentType)
	}
}

func TestParse_InlineElements(t *testing.T) {
	doc := mustParse(t, `<p><code>c</code><mark>m</mark><font color="blue" face="Arial">f</font><small>s</small></p>`)
	p := paragraphAt(t, doc.Blocks, 0)

	want := []RunStyle{
		{Font: "Courier New"},
		{Background: "FFFF00"},
		{Color: "0000FF", Font: "Arial"},
		{Size: 18},
	}
	for i, w := range want {
		if got := runAt(t, p.Inlines, i).Style; got != w {
			t.Errorf("run %d style = %+v, want %+v", i, got, w)
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindParagraph, "paragraph"},
		{KindHeading, "heading"},
		{KindListItem, "list item"},
		{KindHorizontalRule, "horizontal rule"},
		{KindPageBreak, "page break"},
		{KindField, "field"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParse_HorizontalRule(t *testing.T) {
	doc := mustParse(t, `<p>keep</p><hr><p>also</p>`)
	if len(doc.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(doc.Blocks))
	}
	if _, ok := doc.Blocks[1].(*HorizontalRule); !ok {
		t.Errorf("block 1 is %s, want horizontal rule", doc.Blocks[1].Kind())
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString(`<p>Paragraph with <strong>bold</strong> and <a href="https://example.com">a link</a>.</p>`)
		sb.WriteString(`<ul><li>one</li><li>two</li></ul>`)
	}
	src := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseString(src); err != nil {
			b.Fatal(err)
		}
	}
}
