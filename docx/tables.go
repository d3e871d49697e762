package docx

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tsawler/docxhtml/units"
)

// layoutCell is a w:tc positioned on the table grid.
type layoutCell struct {
	xml     *tableCellXML
	col     int // first grid column
	colSpan int
	rowSpan int

	// continuation cells belong to a vertical merge above them and produce
	// no output.
	continuation bool
	restart      bool
}

type layoutRow struct {
	xml   *tableRowXML
	cells []*layoutCell
}

// tableLayout is a table with grid positions and row spans computed.
type tableLayout struct {
	rows     []layoutRow
	colCount int
}

// layoutTable places every cell on the grid and folds vertical merges:
// a restart cell's row span counts the contiguous continuation cells
// below it in the same grid column.
func layoutTable(tbl *tableXML) *tableLayout {
	lt := &tableLayout{colCount: len(tbl.Grid.Cols)}

	for ri := range tbl.Rows {
		row := &tbl.Rows[ri]
		lr := layoutRow{xml: row}
		col := 0
		for ci := range row.Cells {
			cell := &row.Cells[ci]
			lc := &layoutCell{xml: cell, col: col, colSpan: 1, rowSpan: 1}
			props := cell.Properties
			if props.GridSpan != nil {
				if span, err := strconv.Atoi(props.GridSpan.Val); err == nil && span > 0 {
					lc.colSpan = span
				}
			}
			if props.VMerge != nil {
				if props.VMerge.Val == "restart" {
					lc.restart = true
				} else {
					lc.continuation = true
				}
			}
			lr.cells = append(lr.cells, lc)
			col += lc.colSpan
		}
		if col > lt.colCount {
			lt.colCount = col
		}
		lt.rows = append(lt.rows, lr)
	}

	lt.processVerticalMerges()
	return lt
}

func (lt *tableLayout) processVerticalMerges() {
	owned := make(map[*layoutCell]bool)
	for ri, row := range lt.rows {
		for _, cell := range row.cells {
			if !cell.restart {
				continue
			}
			for below := ri + 1; below < len(lt.rows); below++ {
				next := lt.rows[below].cellAtColumn(cell.col)
				if next == nil || !next.continuation {
					break
				}
				owned[next] = true
				cell.rowSpan++
			}
		}
	}

	// A continuation with no restart above it keeps its content.
	for _, row := range lt.rows {
		for _, cell := range row.cells {
			if cell.continuation && !owned[cell] {
				cell.continuation = false
			}
		}
	}
}

// cellAtColumn returns the cell starting at grid column col, or nil.
func (r layoutRow) cellAtColumn(col int) *layoutCell {
	for _, c := range r.cells {
		if c.col == col {
			return c
		}
		if c.col > col {
			break
		}
	}
	return nil
}

// table emits a w:tbl as <table>.
func (e *emitter) table(tbl *tableXML) *html.Node {
	lt := layoutTable(tbl)
	props := tbl.Properties

	table := element(atom.Table)
	decls := []string{"border-collapse:collapse", "width:" + tableWidth(props.Width)}
	if props.Justification != nil && props.Justification.Val == "center" {
		decls = append(decls, "margin-left:auto", "margin-right:auto")
	}
	setAttr(table, "style", strings.Join(decls, ";"))

	defaults := props.Borders
	if defaults == nil && props.Style != nil && props.Style.Val == "TableGrid" {
		defaults = gridBorders
	}

	tbody := element(atom.Tbody)
	table.AppendChild(tbody)
	for ri, row := range lt.rows {
		tr := element(atom.Tr)
		if h := row.xml.Properties.Height; h != nil {
			if n, err := strconv.Atoi(h.Val); err == nil && n > 0 {
				setAttr(tr, "style", "height:"+px(n))
			}
		}
		cellTag := atom.Td
		if row.xml.Properties.Header.on() {
			cellTag = atom.Th
		}

		for _, cell := range row.cells {
			if cell.continuation {
				continue
			}
			td := element(cellTag)
			if cell.colSpan > 1 {
				setAttr(td, "colspan", strconv.Itoa(cell.colSpan))
			}
			if cell.rowSpan > 1 {
				setAttr(td, "rowspan", strconv.Itoa(cell.rowSpan))
			}
			pos := cellPosition{
				firstRow: ri == 0,
				lastRow:  ri+cell.rowSpan >= len(lt.rows),
				firstCol: cell.col == 0,
				lastCol:  cell.col+cell.colSpan >= lt.colCount,
			}
			if css := cellCSS(cell.xml.Properties, defaults, props.CellMargins, pos); len(css) > 0 {
				setAttr(td, "style", strings.Join(css, ";"))
			}
			e.blocks(cell.xml.Content.Elements, td)
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	return table
}

// gridBorders stands in for the built-in "Table Grid" style.
var gridBorders = &bordersXML{
	Top:     &borderXML{Val: "single", Sz: "4", Color: "000000"},
	Bottom:  &borderXML{Val: "single", Sz: "4", Color: "000000"},
	Left:    &borderXML{Val: "single", Sz: "4", Color: "000000"},
	Right:   &borderXML{Val: "single", Sz: "4", Color: "000000"},
	InsideH: &borderXML{Val: "single", Sz: "4", Color: "000000"},
	InsideV: &borderXML{Val: "single", Sz: "4", Color: "000000"},
}

type cellPosition struct {
	firstRow, lastRow, firstCol, lastCol bool
}

// cellCSS resolves a cell's declarations. Each border side comes from the
// cell's own tcBorders or, failing that, the table default: the outer
// border on the table edge and insideH/insideV elsewhere.
func cellCSS(props cellPropsXML, table *bordersXML, tableMargins *cellMarginsXML, pos cellPosition) []string {
	var decls []string

	if w := props.Width; w != nil {
		if v := sizeCSS(w); v != "" {
			decls = append(decls, "width:"+v)
		}
	}
	if props.Shading != nil {
		if fill := shadingFill(props.Shading); fill != "" {
			decls = append(decls, "background-color:#"+strings.ToLower(fill))
		}
	}
	if props.VAlign != nil {
		switch props.VAlign.Val {
		case "center":
			decls = append(decls, "vertical-align:middle")
		case "bottom":
			decls = append(decls, "vertical-align:bottom")
		case "top":
			decls = append(decls, "vertical-align:top")
		}
	}

	var own bordersXML
	if props.Borders != nil {
		own = *props.Borders
	}
	var tbl bordersXML
	if table != nil {
		tbl = *table
	}
	sides := []struct {
		name        string
		cell, outer *borderXML
		inner       *borderXML
		edge        bool
	}{
		{"top", own.Top, tbl.Top, tbl.InsideH, pos.firstRow},
		{"right", own.right(), tbl.right(), tbl.InsideV, pos.lastCol},
		{"bottom", own.Bottom, tbl.Bottom, tbl.InsideH, pos.lastRow},
		{"left", own.left(), tbl.left(), tbl.InsideV, pos.firstCol},
	}
	for _, s := range sides {
		b := s.cell
		if b == nil {
			if s.edge {
				b = s.outer
			} else {
				b = s.inner
			}
		}
		if b != nil {
			decls = append(decls, "border-"+s.name+":"+borderCSS(b))
		}
	}

	margins := mergeMargins(tableMargins, props.Margins)
	for _, m := range []struct {
		name string
		size *tableSizeXML
	}{{"top", margins.Top}, {"right", margins.Right}, {"bottom", margins.Bottom}, {"left", margins.Left}} {
		if m.size == nil {
			continue
		}
		if n, err := strconv.Atoi(m.size.W); err == nil && (m.size.Type == "" || m.size.Type == "dxa") {
			decls = append(decls, "padding-"+m.name+":"+px(n))
		}
	}

	if props.NoWrap.on() {
		decls = append(decls, "white-space:nowrap")
	}
	if props.TextDirection != nil {
		switch props.TextDirection.Val {
		case "tbRl", "tbRlV":
			decls = append(decls, "writing-mode:vertical-rl")
		case "btLr":
			decls = append(decls, "writing-mode:vertical-lr")
		}
	}
	return decls
}

// mergeMargins overlays cell margins on the table's default cell margins,
// normalising start/end to left/right.
func mergeMargins(table, cell *cellMarginsXML) cellMarginsXML {
	var out cellMarginsXML
	for _, m := range []*cellMarginsXML{table, cell} {
		if m == nil {
			continue
		}
		if m.Top != nil {
			out.Top = m.Top
		}
		if m.Bottom != nil {
			out.Bottom = m.Bottom
		}
		if m.Left != nil {
			out.Left = m.Left
		} else if m.Start != nil {
			out.Left = m.Start
		}
		if m.Right != nil {
			out.Right = m.Right
		} else if m.End != nil {
			out.Right = m.End
		}
	}
	return out
}

// tableWidth renders tblW; auto and missing widths span the page.
func tableWidth(w *tableSizeXML) string {
	if w == nil {
		return "100%"
	}
	if v := sizeCSS(w); v != "" {
		return v
	}
	return "100%"
}

// sizeCSS renders a w:tblW/w:tcW value. pct values are fiftieths of a
// percent unless written with an explicit % sign.
func sizeCSS(w *tableSizeXML) string {
	switch w.Type {
	case "pct":
		if strings.HasSuffix(w.W, "%") {
			return w.W
		}
		if n, err := strconv.ParseFloat(w.W, 64); err == nil && n > 0 {
			return units.FormatFloat(n/50) + "%"
		}
	case "dxa", "":
		if n, err := strconv.Atoi(w.W); err == nil && n > 0 {
			return px(n)
		}
	}
	return ""
}
