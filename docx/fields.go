package docx

import (
	"strings"
	"time"
)

// Editor placeholder tokens for page fields.
const (
	PagePlaceholder  = "{page}"
	PagesPlaceholder = "{pages}"
)

type fieldPhase int

const (
	phaseInstruction fieldPhase = iota // between begin and separate
	phaseResult                        // between separate and end
)

type openField struct {
	instr    strings.Builder
	phase    fieldPhase
	replaced bool // a placeholder stands in for the cached result
}

// fieldMachine tracks complex fields (w:fldChar begin/separate/end with
// w:instrText runs in between) across the runs of one part.
type fieldMachine struct {
	stack      []*openField
	now        func() time.Time
	dateLayout string
	timeLayout string
	malformed  int
}

func newFieldMachine(now func() time.Time, dateLayout, timeLayout string) *fieldMachine {
	return &fieldMachine{now: now, dateLayout: dateLayout, timeLayout: timeLayout}
}

func (m *fieldMachine) begin() {
	m.stack = append(m.stack, &openField{})
}

// instruction accumulates instruction text for the innermost field.
func (m *fieldMachine) instruction(text string) {
	if f := m.top(); f != nil && f.phase == phaseInstruction {
		f.instr.WriteString(text)
	}
}

// separate switches the innermost field to its result and returns the
// replacement text when the instruction is recognized.
func (m *fieldMachine) separate() (string, bool) {
	f := m.top()
	if f == nil || f.phase != phaseInstruction {
		m.malformed++
		return "", false
	}
	f.phase = phaseResult
	if m.outerSuppressed() {
		return "", false
	}
	text, ok := m.interpret(f.instr.String())
	f.replaced = ok
	return text, ok
}

// end closes the innermost field. A field that never reached separate is
// interpreted from its accumulated instruction here.
func (m *fieldMachine) end() (string, bool) {
	f := m.top()
	if f == nil {
		m.malformed++
		return "", false
	}
	m.stack = m.stack[:len(m.stack)-1]
	if f.phase == phaseResult || m.suppressed() {
		return "", false
	}
	return m.interpret(f.instr.String())
}

// suppressed reports whether run content is currently hidden: either it is
// instruction text, or the cached result of a field already replaced by a
// placeholder.
func (m *fieldMachine) suppressed() bool {
	for _, f := range m.stack {
		if f.phase == phaseInstruction || f.replaced {
			return true
		}
	}
	return false
}

// outerSuppressed is suppressed() ignoring the innermost field.
func (m *fieldMachine) outerSuppressed() bool {
	for _, f := range m.stack[:len(m.stack)-1] {
		if f.phase == phaseInstruction || f.replaced {
			return true
		}
	}
	return false
}

// finish reports how many structural problems the part had, counting
// fields still open at its end, and resets the machine.
func (m *fieldMachine) finish() int {
	n := m.malformed + len(m.stack)
	m.stack = nil
	m.malformed = 0
	return n
}

func (m *fieldMachine) top() *openField {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// interpret maps a field instruction to its editor representation.
// Unrecognized instructions report false.
func (m *fieldMachine) interpret(instr string) (string, bool) {
	words := strings.Fields(instr)
	if len(words) == 0 {
		return "", false
	}

	switch strings.ToUpper(words[0]) {
	case "PAGE":
		return PagePlaceholder, true
	case "NUMPAGES", "SECTIONPAGES":
		return PagesPlaceholder, true
	case "DATE", "CREATEDATE", "SAVEDATE", "PRINTDATE":
		return m.renderDate(instr, m.dateLayout), true
	case "TIME":
		return m.renderDate(instr, m.timeLayout), true
	}
	return "", false
}

func (m *fieldMachine) renderDate(instr, fallback string) string {
	layout := fallback
	if pic := datePicture(instr); pic != "" {
		layout = pictureToLayout(pic)
	}
	return m.now().Format(layout)
}

// datePicture extracts the argument of a \@ switch, e.g.
// DATE \@ "d MMMM yyyy".
func datePicture(instr string) string {
	i := strings.Index(instr, `\@`)
	if i < 0 {
		return ""
	}
	rest := strings.TrimSpace(instr[i+2:])
	if strings.HasPrefix(rest, `"`) {
		if j := strings.Index(rest[1:], `"`); j >= 0 {
			return rest[1 : j+1]
		}
		return strings.Trim(rest, `"`)
	}
	if fields := strings.Fields(rest); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// pictureTokens maps Word date-picture tokens to Go layout elements,
// longest first.
var pictureTokens = []struct{ word, layout string }{
	{"yyyy", "2006"}, {"yy", "06"},
	{"MMMM", "January"}, {"MMM", "Jan"}, {"MM", "01"}, {"M", "1"},
	{"dddd", "Monday"}, {"ddd", "Mon"}, {"dd", "02"}, {"d", "2"},
	{"HH", "15"}, {"H", "15"}, {"hh", "03"}, {"h", "3"},
	{"mm", "04"}, {"m", "4"}, {"ss", "05"}, {"s", "5"},
	{"AM/PM", "PM"}, {"am/pm", "pm"},
}

func pictureToLayout(pic string) string {
	var b strings.Builder
	for i := 0; i < len(pic); {
		if pic[i] == '\'' {
			if j := strings.IndexByte(pic[i+1:], '\''); j >= 0 {
				b.WriteString(pic[i+1 : i+1+j])
				i += j + 2
				continue
			}
		}
		matched := false
		for _, t := range pictureTokens {
			if strings.HasPrefix(pic[i:], t.word) {
				b.WriteString(t.layout)
				i += len(t.word)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pic[i])
			i++
		}
	}
	return b.String()
}
