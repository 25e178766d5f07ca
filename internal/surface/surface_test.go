package surface_test

import (
	"testing"

	"blockedit/internal/surface"
)

// fakeSurface is a bare Surface with fixed nodes.
type fakeSurface struct {
	nodes []string
	sel   *surface.Range
}

func (f *fakeSurface) TextNodes() []string { return f.nodes }
func (f *fakeSurface) Selection() (surface.Range, bool) {
	if f.sel == nil {
		return surface.Range{}, false
	}
	return *f.sel, true
}
func (f *fakeSurface) Select(r surface.Range) { f.sel = &r }

func TestCaretOffset_NoSelectionReturnsLength(t *testing.T) {
	s := &fakeSurface{nodes: []string{"Hello", " ", "World"}}
	if got := surface.CaretOffset(s); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
}

func TestCaretOffset_OutsideSurfaceReturnsLength(t *testing.T) {
	r := surface.Caret(surface.Point{Node: 9, Offset: 1})
	s := &fakeSurface{nodes: []string{"abc"}, sel: &r}
	if got := surface.CaretOffset(s); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestCaretOffset_WalksNodes(t *testing.T) {
	r := surface.Caret(surface.Point{Node: 2, Offset: 2})
	s := &fakeSurface{nodes: []string{"Hello", " ", "World"}, sel: &r}
	if got := surface.CaretOffset(s); got != 8 {
		t.Errorf("expected 8, got %d", got)
	}
}

func TestSetCaretOffset_PlacesInsideNode(t *testing.T) {
	s := &fakeSurface{nodes: []string{"ab", "cde", "f"}}
	surface.SetCaretOffset(s, 4)
	want := surface.Caret(surface.Point{Node: 1, Offset: 2})
	if s.sel == nil || *s.sel != want {
		t.Fatalf("expected %v, got %v", want, s.sel)
	}
	if got := surface.CaretOffset(s); got != 4 {
		t.Errorf("round trip: expected 4, got %d", got)
	}
}

func TestSetCaretOffset_PastEndCollapsesToEnd(t *testing.T) {
	s := &fakeSurface{nodes: []string{"ab", "cd"}}
	surface.SetCaretOffset(s, 99)
	if got := surface.CaretOffset(s); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if !s.sel.Collapsed() {
		t.Error("expected collapsed selection")
	}
}

func TestSetCaretOffset_EmptySurface(t *testing.T) {
	s := &fakeSurface{}
	surface.SetCaretOffset(s, 3)
	if !surface.IsCaretAtStart(s) {
		t.Error("caret on an empty surface should be at start")
	}
}

func TestCaretOffset_CountsRunes(t *testing.T) {
	r := surface.Caret(surface.Point{Node: 1, Offset: 1})
	s := &fakeSurface{nodes: []string{"日本", "語x"}, sel: &r}
	if got := surface.CaretOffset(s); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestSplitInline_KeepsMarksOnEachHalf(t *testing.T) {
	head, tail := surface.SplitInline(`<strong>Hello</strong>World <a href="https://e.io">x</a>`, 3)
	if head != "<strong>Hel</strong>" {
		t.Errorf("unexpected head %q", head)
	}
	if tail != `<strong>lo</strong>World <a href="https://e.io">x</a>` {
		t.Errorf("unexpected tail %q", tail)
	}
	if h, tl := surface.SplitInline("abc", 99); h != "abc" || tl != "" {
		t.Errorf("out of range split: %q %q", h, tl)
	}
}

func TestSanitizeInline_LinksMatchBufferRendering(t *testing.T) {
	in := `<a href="https://e.io">e</a>`
	clean := surface.SanitizeInline(in)
	if clean != in {
		t.Errorf("sanitizer rewrote link: %q", clean)
	}
	b := surface.NewBuffer("")
	b.SetHTML(clean)
	if got := b.HTML(); got != clean {
		t.Errorf("buffer renders %q, stored %q", got, clean)
	}
}
