package docx

import (
	"strconv"

	"github.com/tsawler/docxhtml/htmldoc"
)

const maxListDepth = 8

// bulletGlyphs cycle by level, the way Word's default bullet list does.
var bulletGlyphs = []struct{ text, font string }{
	{"\uf0b7", "Symbol"},
	{"o", "Courier New"},
	{"\uf0a7", "Wingdings"},
}

// numberingBuilder mints one abstract definition and one instance per
// top-level list.
type numberingBuilder struct {
	abstract []*wAbstractNum
	nums     []*wNum
}

func newNumberingBuilder() *numberingBuilder {
	return &numberingBuilder{}
}

func (nb *numberingBuilder) empty() bool { return len(nb.nums) == 0 }

func (nb *numberingBuilder) part() *wNumbering {
	return &wNumbering{
		Attrs:    wordNamespaces(),
		Abstract: nb.abstract,
		Nums:     nb.nums,
	}
}

// listInstance is a numbering instance under construction. A level's kind
// is fixed by the first list seen at that depth.
type listInstance struct {
	numID   int
	def     *wAbstractNum
	defined [maxListDepth + 1]bool
	ordered [maxListDepth + 1]bool
}

func (nb *numberingBuilder) newInstance() *listInstance {
	def := &wAbstractNum{ID: len(nb.abstract), MultiLevelType: val("hybridMultilevel")}
	for lvl := 0; lvl <= maxListDepth; lvl++ {
		def.Levels = append(def.Levels, bulletLevel(lvl))
	}
	nb.abstract = append(nb.abstract, def)

	inst := &listInstance{numID: len(nb.nums) + 1, def: def}
	nb.nums = append(nb.nums, &wNum{NumID: inst.numID, AbstractNumID: *intVal(def.ID)})
	return inst
}

// fits reports whether a list of the given kind can use depth.
func (li *listInstance) fits(depth int, ordered bool) bool {
	return !li.defined[depth] || li.ordered[depth] == ordered
}

func (li *listInstance) define(depth int, l *htmldoc.List) {
	if li.defined[depth] {
		return
	}
	li.defined[depth] = true
	li.ordered[depth] = l.Ordered
	if l.Ordered {
		li.def.Levels[depth] = orderedLevel(depth, l.Start)
	}
}

func (li *listInstance) numPr(depth int) *wNumPr {
	return &wNumPr{ILvl: intVal(depth), NumID: intVal(li.numID)}
}

func levelIndent(lvl int) *wPPr {
	left, hanging := 720*(lvl+1), 360
	return &wPPr{Ind: &wInd{Left: &left, Hanging: &hanging}}
}

func orderedLevel(lvl, start int) *wLvl {
	if start < 1 {
		start = 1
	}
	return &wLvl{
		ILvl:    lvl,
		Start:   intVal(start),
		NumFmt:  val("decimal"),
		LvlText: val("%" + strconv.Itoa(lvl+1) + "."),
		LvlJc:   val("left"),
		PPr:     levelIndent(lvl),
	}
}

func bulletLevel(lvl int) *wLvl {
	g := bulletGlyphs[lvl%len(bulletGlyphs)]
	return &wLvl{
		ILvl:    lvl,
		Start:   intVal(1),
		NumFmt:  val("bullet"),
		LvlText: val(g.text),
		LvlJc:   val("left"),
		PPr:     levelIndent(lvl),
		RPr:     &wRPr{Fonts: &wFonts{ASCII: g.font, HAnsi: g.font}},
	}
}

// list writes a list as numbered paragraphs. The first paragraph of an item
// carries the number; later paragraphs are indented continuations. A nested
// list whose kind clashes with its level gets a fresh instance.
func (p *partBuilder) list(l *htmldoc.List, depth int, inst *listInstance) []any {
	depth = min(max(depth, l.Level), maxListDepth)
	if inst == nil || !inst.fits(depth, l.Ordered) {
		inst = p.b.lists.newInstance()
	}
	inst.define(depth, l)

	var out []any
	for _, item := range l.Items {
		numbered := false
		for _, blk := range item.Blocks {
			switch v := blk.(type) {
			case *htmldoc.Paragraph:
				if !numbered {
					out = append(out, p.paragraph(v, inst.numPr(depth)))
					numbered = true
					continue
				}
				out = append(out, p.continuation(v, depth))
			case *htmldoc.List:
				out = append(out, p.list(v, depth+1, inst)...)
			default:
				out = append(out, p.blocks([]htmldoc.Block{blk})...)
			}
		}
		if !numbered && len(item.Blocks) == 0 {
			out = append(out, p.paragraph(&htmldoc.Paragraph{}, inst.numPr(depth)))
		}
	}
	return out
}

// continuation is an unnumbered paragraph aligned with the item text.
func (p *partBuilder) continuation(par *htmldoc.Paragraph, depth int) *wP {
	out := p.paragraph(par, nil)
	if out.PPr == nil {
		out.PPr = &wPPr{}
	}
	if out.PPr.Style == nil {
		out.PPr.Style = val("ListParagraph")
	}
	if out.PPr.Ind == nil {
		left := 720 * (depth + 1)
		out.PPr.Ind = &wInd{Left: &left}
	}
	return out
}
