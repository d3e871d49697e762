package docx

import (
	"math"

	"github.com/tsawler/docxhtml/htmldoc"
)

// placedCell is a cell at its grid column. Continuations stand in for the
// rows covered by a cell that spans downwards.
type placedCell struct {
	cell         *htmldoc.Cell
	col          int
	continuation bool
}

// placeCells assigns grid columns, inserting a continuation wherever a
// rowspan from an earlier row occupies the slot. It returns the rows and
// the column count.
func placeCells(rows []*htmldoc.Row) ([][]placedCell, int) {
	occupied := make(map[[2]int]*htmldoc.Cell)
	out := make([][]placedCell, len(rows))
	cols := 0

	for r, row := range rows {
		col := 0
		skipOccupied := func() {
			for {
				owner, ok := occupied[[2]int{r, col}]
				if !ok {
					return
				}
				out[r] = append(out[r], placedCell{cell: owner, col: col, continuation: true})
				col += span(owner.ColSpan)
			}
		}
		for _, c := range row.Cells {
			skipOccupied()
			out[r] = append(out[r], placedCell{cell: c, col: col})
			for dr := 1; dr < span(c.RowSpan) && r+dr < len(rows); dr++ {
				occupied[[2]int{r + dr, col}] = c
			}
			col += span(c.ColSpan)
		}
		skipOccupied()
		cols = max(cols, col)
	}
	return out, cols
}

func span(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// table converts a table. Columns share the table width equally; with no
// width given the table spans the text column.
func (p *partBuilder) table(t *htmldoc.Table) *wTbl {
	placed, cols := placeCells(t.Rows)
	if cols == 0 {
		cols = 1
	}

	total := textWidth
	switch {
	case t.Style.Width.Twips > 0:
		total = t.Style.Width.Twips
	case t.Style.Width.Percent > 0:
		total = int(math.Round(float64(textWidth) * t.Style.Width.Percent / 100))
	}
	colWidth := total / cols

	tbl := &wTbl{}
	for i := 0; i < cols; i++ {
		tbl.Grid.Cols = append(tbl.Grid.Cols, wGridCol{W: colWidth})
	}

	tbl.TblPr.W = tableWidthXML(t.Style.Width)
	if t.Style.Align == "center" || t.Style.Align == "right" {
		tbl.TblPr.Jc = val(t.Style.Align)
	}
	tbl.TblPr.Borders = tableBorders(t)
	tbl.TblPr.Layout = &struct {
		Type string `xml:"w:type,attr"`
	}{Type: "fixed"}

	for r, row := range t.Rows {
		tr := &wTr{}
		if row.Height > 0 || row.Header {
			tr.TrPr = &wTrPr{}
			if row.Height > 0 {
				tr.TrPr.Height = &struct {
					Val  int    `xml:"w:val,attr"`
					Rule string `xml:"w:hRule,attr"`
				}{Val: row.Height, Rule: "atLeast"}
			}
			if row.Header {
				tr.TrPr.Header = &wOn{}
			}
		}
		for _, pc := range placed[r] {
			tr.Cells = append(tr.Cells, p.cell(pc, colWidth))
		}
		tbl.Rows = append(tbl.Rows, tr)
	}
	return tbl
}

func tableWidthXML(w htmldoc.Width) *wWidth {
	switch {
	case w.Percent > 0:
		return &wWidth{W: int(math.Round(w.Percent * 50)), Type: "pct"}
	case w.Twips > 0:
		return &wWidth{W: w.Twips, Type: "dxa"}
	default:
		return &wWidth{W: 0, Type: "auto"}
	}
}

// tableBorders returns the table borders. A table where neither the table
// nor any cell declares a border gets a plain single-line grid.
func tableBorders(t *htmldoc.Table) *wBorders {
	if !t.Style.Borders.IsZero() {
		b := t.Style.Borders
		return &wBorders{
			Top:    wordBorder(b.Top, 0),
			Left:   wordBorder(b.Left, 0),
			Bottom: wordBorder(b.Bottom, 0),
			Right:  wordBorder(b.Right, 0),
		}
	}
	for _, row := range t.Rows {
		for _, c := range row.Cells {
			if !c.Style.Borders.IsZero() {
				return nil
			}
		}
	}
	line := func() *wBorder { return &wBorder{Val: "single", Sz: 4, Color: "auto"} }
	return &wBorders{
		Top: line(), Left: line(), Bottom: line(), Right: line(),
		InsideH: line(), InsideV: line(),
	}
}

func (p *partBuilder) cell(pc placedCell, colWidth int) *wTc {
	c := pc.cell
	tcPr := &wTcPr{}

	switch {
	case c.Style.Width.Twips > 0:
		tcPr.W = &wWidth{W: c.Style.Width.Twips, Type: "dxa"}
	case c.Style.Width.Percent > 0:
		tcPr.W = &wWidth{W: int(math.Round(c.Style.Width.Percent * 50)), Type: "pct"}
	default:
		tcPr.W = &wWidth{W: colWidth * span(c.ColSpan), Type: "dxa"}
	}
	if c.ColSpan > 1 {
		tcPr.GridSpan = intVal(c.ColSpan)
	}
	switch {
	case pc.continuation:
		tcPr.VMerge = val("continue")
	case c.RowSpan > 1:
		tcPr.VMerge = val("restart")
	}
	if b := c.Style.Borders; !b.IsZero() {
		tcPr.Borders = &wBorders{
			Top:    wordBorder(b.Top, 0),
			Left:   wordBorder(b.Left, 0),
			Bottom: wordBorder(b.Bottom, 0),
			Right:  wordBorder(b.Right, 0),
		}
	}
	if c.Style.Background != "" {
		tcPr.Shd = shading(c.Style.Background)
	}
	if c.Style.NoWrap {
		tcPr.NoWrap = &wOn{}
	}
	tcPr.Mar = cellMargins(c.Style.Padding)
	if c.Style.TextDirection != "" {
		tcPr.TextDirection = val(c.Style.TextDirection)
	}
	if c.Style.VAlign != "" && c.Style.VAlign != "top" {
		tcPr.VAlign = val(c.Style.VAlign)
	}

	tc := &wTc{TcPr: tcPr}
	if !pc.continuation {
		tc.Blocks = p.blocks(c.Blocks)
	}
	// A cell must end with a paragraph.
	if n := len(tc.Blocks); n == 0 {
		tc.Blocks = append(tc.Blocks, &wP{})
	} else if _, ok := tc.Blocks[n-1].(*wP); !ok {
		tc.Blocks = append(tc.Blocks, &wP{})
	}
	return tc
}

func cellMargins(padding [4]*int) *wCellMar {
	side := func(v *int) *wWidth {
		if v == nil {
			return nil
		}
		return &wWidth{W: *v, Type: "dxa"}
	}
	m := &wCellMar{Top: side(padding[0]), Right: side(padding[1]), Bottom: side(padding[2]), Left: side(padding[3])}
	if *m == (wCellMar{}) {
		return nil
	}
	return m
}
