// Package surface adapts an editable text region to the caret arithmetic
// the editor needs. A surface is seen as an ordered list of inline text
// nodes plus an optional selection; the walk over those nodes is the only
// place caret offsets are computed.
//
// Offsets are counted in runes. Callers must read a surface only after the
// store change that produced its content has been rendered into it.
package surface

import "unicode/utf8"

// Point addresses a rune offset inside one text node. Node may equal the
// node count to mean "after the last node".
type Point struct {
	Node   int
	Offset int
}

// Range is a selection. Anchor is where it started, Focus where the caret is.
type Range struct {
	Anchor Point
	Focus  Point
}

// Collapsed reports whether the range is a bare caret.
func (r Range) Collapsed() bool { return r.Anchor == r.Focus }

// Caret returns a collapsed range at p.
func Caret(p Point) Range { return Range{Anchor: p, Focus: p} }

// Surface is an editable region.
type Surface interface {
	// TextNodes returns the inline text runs in document order.
	TextNodes() []string
	// Selection returns the live selection. ok is false when there is no
	// selection or it lies outside this surface.
	Selection() (r Range, ok bool)
	// Select replaces the live selection.
	Select(r Range)
}

// Rect is an axis-aligned box in host coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether r has neither width nor height.
func (r Rect) Empty() bool { return r.Width == 0 && r.Height == 0 }

// Geometry exposes layout boxes for a surface.
type Geometry interface {
	Bounds() Rect
	SelectionBounds() (Rect, bool)
}

// Text returns the flattened text of s.
func Text(s Surface) string {
	var n int
	nodes := s.TextNodes()
	for _, t := range nodes {
		n += len(t)
	}
	buf := make([]byte, 0, n)
	for _, t := range nodes {
		buf = append(buf, t...)
	}
	return string(buf)
}

// Len returns the rune length of the flattened text of s.
func Len(s Surface) int {
	n := 0
	for _, t := range s.TextNodes() {
		n += utf8.RuneCountInString(t)
	}
	return n
}

// CaretOffset returns the caret position within the flattened text of s.
// Without a usable selection it returns the full length.
func CaretOffset(s Surface) int {
	nodes := s.TextNodes()
	total := 0
	for _, t := range nodes {
		total += utf8.RuneCountInString(t)
	}
	r, ok := s.Selection()
	if !ok {
		return total
	}
	p := r.Focus
	if p.Node < 0 || p.Node > len(nodes) {
		return total
	}
	offset := 0
	for i := 0; i < p.Node; i++ {
		offset += utf8.RuneCountInString(nodes[i])
	}
	if p.Node < len(nodes) {
		offset += clamp(p.Offset, 0, utf8.RuneCountInString(nodes[p.Node]))
	}
	return offset
}

// SetCaretOffset collapses the selection at pos. Positions past the end
// land at the very end; negative positions land at the start.
func SetCaretOffset(s Surface, pos int) {
	s.Select(Caret(PointAt(s.TextNodes(), pos)))
}

// IsCaretAtStart reports whether the caret sits at offset 0.
func IsCaretAtStart(s Surface) bool {
	return CaretOffset(s) == 0
}

// PointAt walks nodes accumulating rune lengths and returns the node and
// offset holding pos. A boundary between two nodes resolves to the end of
// the earlier node.
func PointAt(nodes []string, pos int) Point {
	if pos < 0 {
		pos = 0
	}
	acc := 0
	for i, t := range nodes {
		n := utf8.RuneCountInString(t)
		if pos <= acc+n {
			return Point{Node: i, Offset: pos - acc}
		}
		acc += n
	}
	if len(nodes) == 0 {
		return Point{}
	}
	last := len(nodes) - 1
	return Point{Node: last, Offset: utf8.RuneCountInString(nodes[last])}
}

// OffsetOf converts a point back into an absolute rune offset, clamping
// out-of-range points.
func OffsetOf(nodes []string, p Point) int {
	offset := 0
	for i := 0; i < p.Node && i < len(nodes); i++ {
		offset += utf8.RuneCountInString(nodes[i])
	}
	if p.Node >= 0 && p.Node < len(nodes) {
		offset += clamp(p.Offset, 0, utf8.RuneCountInString(nodes[p.Node]))
	}
	return offset
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
