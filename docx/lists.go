package docx

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LevelDef is the resolved definition of one numbering level.
type LevelDef struct {
	Format  string // decimal, bullet, lowerLetter, upperRoman, ...
	Text    string // level text, e.g. "%1." or a bullet glyph
	Start   int
	Ordered bool
}

// fallbackLevel is used when a numbering reference cannot be resolved.
var fallbackLevel = LevelDef{Format: "bullet", Start: 1}

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	nums         map[string]*numXML         // numId -> instance
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		nums:         make(map[string]*numXML),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}
	for i := range numbering.Nums {
		num := &numbering.Nums[i]
		nr.nums[num.NumID] = num
	}

	return nr
}

// IsList reports whether numID refers to numbering at all. numId 0 removes
// inherited numbering.
func IsList(numID string) bool {
	return numID != "" && numID != "0"
}

// ResolveLevel returns the level definition for (numID, level). It reports
// false when the instance, its abstract definition or the level is missing.
func (nr *NumberingResolver) ResolveLevel(numID string, level int) (LevelDef, bool) {
	num, ok := nr.nums[numID]
	if !ok {
		return fallbackLevel, false
	}
	abstractNum, ok := nr.abstractNums[num.AbstractNumID.Val]
	if !ok {
		return fallbackLevel, false
	}

	levelStr := strconv.Itoa(level)
	for _, lvl := range abstractNum.Levels {
		if lvl.ILvl != levelStr {
			continue
		}
		def := LevelDef{Start: 1}
		if lvl.NumFmt != nil {
			def.Format = lvl.NumFmt.Val
		}
		if lvl.LvlText != nil {
			def.Text = lvl.LvlText.Val
		}
		if lvl.Start != nil {
			if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
				def.Start = s
			}
		}
		for _, o := range num.Overrides {
			if o.ILvl == levelStr && o.StartOverride != nil {
				if s, err := strconv.Atoi(o.StartOverride.Val); err == nil {
					def.Start = s
				}
			}
		}
		def.Ordered = def.Format != "bullet" && def.Format != "none" && def.Format != ""
		return def, true
	}

	return fallbackLevel, false
}

// listStyleType maps an ordered numFmt to a CSS list-style-type.
func listStyleType(format string) string {
	switch format {
	case "lowerLetter":
		return "lower-alpha"
	case "upperLetter":
		return "upper-alpha"
	case "lowerRoman":
		return "lower-roman"
	case "upperRoman":
		return "upper-roman"
	}
	return ""
}

// listFrame is one open <ul>/<ol> in a listGrouper.
type listFrame struct {
	list    *html.Node
	item    *html.Node // most recent <li>
	level   int
	numID   string
	ordered bool
}

// listGrouper regroups a flat sequence of numbered paragraphs into nested
// list markup. Open lists live on an explicit stack, so nesting depth does
// not grow the Go call stack.
type listGrouper struct {
	parent *html.Node
	stack  []listFrame
}

func newListGrouper(parent *html.Node) *listGrouper {
	return &listGrouper{parent: parent}
}

// item returns a fresh <li> for a paragraph at (numID, level). A deeper
// level opens a nested list inside the current item; a shallower level
// closes lists down to it; a different list at the same level starts a
// sibling list. A list opened deeper than its nesting depth records its
// level in data-level.
func (g *listGrouper) item(numID string, level int, def LevelDef) *html.Node {
	for len(g.stack) > 0 && g.top().level > level {
		g.stack = g.stack[:len(g.stack)-1]
	}
	if len(g.stack) > 0 {
		if top := g.top(); top.level == level && (top.numID != numID || top.ordered != def.Ordered) {
			g.stack = g.stack[:len(g.stack)-1]
		}
	}

	if len(g.stack) == 0 || g.top().level < level {
		list := newListNode(def)
		if level > len(g.stack) {
			setAttr(list, "data-level", strconv.Itoa(level))
		}
		if len(g.stack) == 0 {
			g.parent.AppendChild(list)
		} else {
			top := g.top()
			if top.item == nil {
				top.item = element(atom.Li)
				top.list.AppendChild(top.item)
			}
			top.item.AppendChild(list)
		}
		g.stack = append(g.stack, listFrame{list: list, level: level, numID: numID, ordered: def.Ordered})
	}

	top := g.top()
	li := element(atom.Li)
	top.list.AppendChild(li)
	top.item = li
	return li
}

// close ends every open list. The next item starts a new top-level list.
func (g *listGrouper) close() {
	g.stack = g.stack[:0]
}

func (g *listGrouper) top() *listFrame {
	return &g.stack[len(g.stack)-1]
}

func newListNode(def LevelDef) *html.Node {
	if !def.Ordered {
		return element(atom.Ul)
	}
	ol := element(atom.Ol)
	if def.Start != 1 {
		setAttr(ol, "start", strconv.Itoa(def.Start))
	}
	if t := listStyleType(def.Format); t != "" {
		setAttr(ol, "style", "list-style-type:"+t)
	}
	return ol
}
