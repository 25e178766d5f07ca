package surface

import (
	"strings"
	"unicode/utf8"
)

// Mark is a set of inline styles.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkStrike
	MarkHighlight
	MarkCode
)

// Span is one styled text run.
type Span struct {
	Text  string
	Marks Mark
	Href  string
}

// Align is the paragraph alignment of a buffer.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Command names a host formatting command.
type Command string

const (
	CmdBold          Command = "bold"
	CmdItalic        Command = "italic"
	CmdUnderline     Command = "underline"
	CmdStrikeThrough Command = "strikeThrough"
	CmdHiliteColor   Command = "hiliteColor"
	CmdInsertHTML    Command = "insertHTML"
	CmdCreateLink    Command = "createLink"
	CmdUnlink        Command = "unlink"
	CmdJustifyLeft   Command = "justifyLeft"
	CmdJustifyCenter Command = "justifyCenter"
	CmdJustifyRight  Command = "justifyRight"
)

// Layout places a buffer on screen. Text is laid out monospaced, one row
// per line.
type Layout struct {
	X, Y       float64
	CellWidth  float64
	LineHeight float64
}

// DefaultLayout is used by NewBuffer.
var DefaultLayout = Layout{CellWidth: 8, LineHeight: 20}

// Buffer is an in-memory surface for hosts that keep their own text model
// instead of a browser DOM. It always holds at least one span.
type Buffer struct {
	spans  []Span
	anchor int
	focus  int
	hasSel bool
	align  Align
	layout Layout
}

// NewBuffer creates a buffer holding plain text with no selection.
func NewBuffer(text string) *Buffer {
	b := &Buffer{align: AlignLeft, layout: DefaultLayout}
	b.SetText(text)
	return b
}

// SetText replaces the content with unstyled text and drops the selection.
func (b *Buffer) SetText(text string) {
	b.spans = []Span{{Text: text}}
	b.hasSel = false
}

// Spans returns a copy of the styled runs.
func (b *Buffer) Spans() []Span {
	return append([]Span(nil), b.spans...)
}

// SetLayout moves the buffer on screen.
func (b *Buffer) SetLayout(l Layout) { b.layout = l }

// Align returns the current alignment.
func (b *Buffer) Align() Align { return b.align }

// Blur drops the selection, as when focus leaves the region.
func (b *Buffer) Blur() { b.hasSel = false }

// ── Surface ────────────────────────────────────────────────

func (b *Buffer) TextNodes() []string {
	out := make([]string, len(b.spans))
	for i, s := range b.spans {
		out[i] = s.Text
	}
	return out
}

func (b *Buffer) Selection() (Range, bool) {
	if !b.hasSel {
		return Range{}, false
	}
	nodes := b.TextNodes()
	return Range{Anchor: PointAt(nodes, b.anchor), Focus: PointAt(nodes, b.focus)}, true
}

func (b *Buffer) Select(r Range) {
	nodes := b.TextNodes()
	b.anchor = OffsetOf(nodes, r.Anchor)
	b.focus = OffsetOf(nodes, r.Focus)
	b.hasSel = true
}

// SelectOffsets selects the runes in [start, end).
func (b *Buffer) SelectOffsets(start, end int) {
	n := Len(b)
	b.anchor = clamp(start, 0, n)
	b.focus = clamp(end, 0, n)
	b.hasSel = true
}

func (b *Buffer) bounds() (int, int) {
	if b.anchor <= b.focus {
		return b.anchor, b.focus
	}
	return b.focus, b.anchor
}

// SelectedText returns the text covered by the selection.
func (b *Buffer) SelectedText() string {
	if !b.hasSel {
		return ""
	}
	start, end := b.bounds()
	runes := []rune(Text(b))
	return string(runes[start:end])
}

// LinkAt returns the link target under the start of the selection.
func (b *Buffer) LinkAt() string {
	if !b.hasSel {
		return ""
	}
	start, end := b.bounds()
	if start < end {
		start++
	}
	p := PointAt(b.TextNodes(), start)
	if p.Offset == 0 && p.Node > 0 {
		p.Node--
	}
	return b.spans[p.Node].Href
}

// ── Geometry ───────────────────────────────────────────────

func (b *Buffer) Bounds() Rect {
	lines := strings.Split(Text(b), "\n")
	cols := 0
	for _, l := range lines {
		cols = max(cols, utf8.RuneCountInString(l))
	}
	return Rect{
		X:      b.layout.X,
		Y:      b.layout.Y,
		Width:  float64(cols) * b.layout.CellWidth,
		Height: float64(len(lines)) * b.layout.LineHeight,
	}
}

func (b *Buffer) SelectionBounds() (Rect, bool) {
	if !b.hasSel {
		return Rect{}, false
	}
	start, end := b.bounds()
	sl, sc := b.lineCol(start)
	el, ec := b.lineCol(end)
	l := b.layout
	if sl == el {
		return Rect{
			X:      l.X + float64(sc)*l.CellWidth,
			Y:      l.Y + float64(sl)*l.LineHeight,
			Width:  float64(ec-sc) * l.CellWidth,
			Height: l.LineHeight,
		}, true
	}
	full := b.Bounds()
	return Rect{
		X:      l.X,
		Y:      l.Y + float64(sl)*l.LineHeight,
		Width:  full.Width,
		Height: float64(el-sl+1) * l.LineHeight,
	}, true
}

func (b *Buffer) lineCol(offset int) (int, int) {
	line, col, n := 0, 0, 0
	for _, r := range Text(b) {
		if n == offset {
			break
		}
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		n++
	}
	return line, col
}

// ── Formatting ─────────────────────────────────────────────

// Exec runs a host formatting command against the live selection. Unknown
// commands and commands without a selection are ignored.
func (b *Buffer) Exec(cmd Command, value string) {
	switch cmd {
	case CmdJustifyLeft:
		b.align = AlignLeft
		return
	case CmdJustifyCenter:
		b.align = AlignCenter
		return
	case CmdJustifyRight:
		b.align = AlignRight
		return
	}
	if !b.hasSel {
		return
	}
	start, end := b.bounds()
	switch cmd {
	case CmdBold:
		b.toggle(start, end, MarkBold)
	case CmdItalic:
		b.toggle(start, end, MarkItalic)
	case CmdUnderline:
		b.toggle(start, end, MarkUnderline)
	case CmdStrikeThrough:
		b.toggle(start, end, MarkStrike)
	case CmdHiliteColor:
		b.toggle(start, end, MarkHighlight)
	case CmdCreateLink:
		if start == end || value == "" {
			return
		}
		b.each(start, end, func(s *Span) { s.Href = value })
	case CmdUnlink:
		if start == end {
			start, end = b.linkRun(start)
		}
		b.each(start, end, func(s *Span) { s.Href = "" })
	case CmdInsertHTML:
		b.insertSpans(start, end, ParseInline(value))
		return
	default:
		return
	}
	b.normalize()
}

func (b *Buffer) toggle(start, end int, m Mark) {
	if start == end {
		return
	}
	all := true
	b.each(start, end, func(s *Span) {
		if s.Marks&m == 0 {
			all = false
		}
	})
	b.each(start, end, func(s *Span) {
		if all {
			s.Marks &^= m
		} else {
			s.Marks |= m
		}
	})
}

// each calls fn for every span inside [start, end), splitting spans at the
// edges first.
func (b *Buffer) each(start, end int, fn func(*Span)) {
	b.splitAt(start)
	b.splitAt(end)
	acc := 0
	for i := range b.spans {
		n := utf8.RuneCountInString(b.spans[i].Text)
		if acc >= start && acc+n <= end && n > 0 {
			fn(&b.spans[i])
		}
		acc += n
	}
}

func (b *Buffer) splitAt(offset int) {
	acc := 0
	for i, s := range b.spans {
		n := utf8.RuneCountInString(s.Text)
		if offset > acc && offset < acc+n {
			head, tail := splitRunes(s.Text, offset-acc)
			left, right := s, s
			left.Text, right.Text = head, tail
			b.spans = append(b.spans[:i], append([]Span{left, right}, b.spans[i+1:]...)...)
			return
		}
		acc += n
	}
}

// linkRun widens a caret to the contiguous run of spans sharing its link.
func (b *Buffer) linkRun(at int) (int, int) {
	href := b.LinkAt()
	if href == "" {
		return at, at
	}
	acc, start, end := 0, -1, -1
	for _, s := range b.spans {
		n := utf8.RuneCountInString(s.Text)
		if s.Href == href && acc <= at && at <= acc+n && start < 0 {
			start, end = acc, acc+n
		} else if start >= 0 && s.Href == href && acc == end {
			end = acc + n
		}
		acc += n
	}
	if start < 0 {
		return at, at
	}
	return start, end
}

func (b *Buffer) insertSpans(start, end int, ins []Span) {
	b.splitAt(start)
	b.splitAt(end)
	var out []Span
	acc, inserted := 0, false
	for _, s := range b.spans {
		n := utf8.RuneCountInString(s.Text)
		if acc >= start && !inserted {
			out = append(out, ins...)
			inserted = true
		}
		if acc < start || acc >= end {
			out = append(out, s)
		}
		acc += n
	}
	if !inserted {
		out = append(out, ins...)
	}
	b.spans = out
	b.normalize()
	caret := start
	for _, s := range ins {
		caret += utf8.RuneCountInString(s.Text)
	}
	b.anchor, b.focus = caret, caret
}

// normalize merges identical neighbors and drops empty spans, keeping one.
func (b *Buffer) normalize() {
	out := b.spans[:0]
	for _, s := range b.spans {
		if s.Text == "" {
			continue
		}
		if k := len(out) - 1; k >= 0 && out[k].Marks == s.Marks && out[k].Href == s.Href {
			out[k].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		out = append(out, Span{})
	}
	b.spans = out
}

func splitRunes(text string, offset int) (string, string) {
	n := 0
	for i := range text {
		if n == offset {
			return text[:i], text[i:]
		}
		n++
	}
	return text, ""
}
