package toolbar_test

import (
	"testing"

	"blockedit/internal/surface"
	"blockedit/internal/toolbar"
)

func newBuffer(text string) *surface.Buffer {
	b := surface.NewBuffer(text)
	b.SetLayout(surface.Layout{X: 10, Y: 100, CellWidth: 10, LineHeight: 20})
	return b
}

func TestEvaluate_PositionAboveSelection(t *testing.T) {
	b := newBuffer("abcdef")
	b.SelectOffsets(1, 4)
	c := toolbar.New(0, nil)
	if !c.Evaluate(b, surface.Rect{X: 0, Y: 0, Width: 400, Height: 400}) {
		t.Fatal("expected toolbar visible")
	}
	want := toolbar.Position{Top: 52, Left: 35}
	if c.Position() != want {
		t.Errorf("expected %+v, got %+v", want, c.Position())
	}
}

func TestEvaluate_ClampedToContainerTop(t *testing.T) {
	b := newBuffer("abcdef")
	b.SelectOffsets(1, 4)
	c := toolbar.New(0, nil)
	c.Evaluate(b, surface.Rect{X: 0, Y: 80, Width: 400, Height: 400})
	if got := c.Position().Top; got != 0 {
		t.Errorf("expected top clamped to 0, got %v", got)
	}
}

func TestEvaluate_HiddenCases(t *testing.T) {
	c := toolbar.New(0, nil)
	container := surface.Rect{Width: 100, Height: 100}

	b := newBuffer("abc")
	if c.Evaluate(b, container) {
		t.Error("visible without selection")
	}
	b.SelectOffsets(2, 2)
	if c.Evaluate(b, container) {
		t.Error("visible with collapsed selection")
	}
	if c.Evaluate(nil, container) {
		t.Error("visible with selection outside container")
	}

	b.SelectOffsets(0, 2)
	c.Evaluate(b, container)
	c.Hide()
	if c.Visible() {
		t.Error("Hide did not hide")
	}
}

func TestApply_RestoresSelectionBeforeCommand(t *testing.T) {
	b := newBuffer("Hello World")
	b.SelectOffsets(6, 11)
	prompt := func(current string) (string, bool) {
		b.Blur() // focus moved to the prompt
		return "https://example.com", true
	}
	c := toolbar.New(0, prompt)
	c.Apply(b, toolbar.Link)
	if got := b.HTML(); got != `Hello <a href="https://example.com">World</a>` {
		t.Errorf("unexpected html %q", got)
	}
	if !c.Visible() {
		t.Error("expected toolbar re-evaluated as visible")
	}
}

func TestApply_EmptyURLRemovesLink(t *testing.T) {
	b := newBuffer("")
	b.SetHTML(`go <a href="https://go.dev">here</a>`)
	b.SelectOffsets(3, 7)
	var offered string
	c := toolbar.New(0, func(current string) (string, bool) {
		offered = current
		return "", true
	})
	c.Apply(b, toolbar.Link)
	if offered != "https://go.dev" {
		t.Errorf("expected current link offered, got %q", offered)
	}
	if got := b.HTML(); got != "go here" {
		t.Errorf("expected link removed, got %q", got)
	}
}

func TestApply_CancelledPromptChangesNothing(t *testing.T) {
	b := newBuffer("text")
	b.SelectOffsets(0, 4)
	c := toolbar.New(0, func(string) (string, bool) { return "x", false })
	c.Apply(b, toolbar.Link)
	if got := b.HTML(); got != "text" {
		t.Errorf("unexpected html %q", got)
	}
}

func TestApply_CodeEscapesSelection(t *testing.T) {
	b := newBuffer("a <b> c")
	b.SelectOffsets(2, 5)
	c := toolbar.New(0, nil)
	c.Apply(b, toolbar.Code)
	if got := b.HTML(); got != "a <code>&lt;b&gt;</code> c" {
		t.Errorf("unexpected html %q", got)
	}
	if got := surface.Text(b); got != "a <b> c" {
		t.Errorf("text changed: %q", got)
	}
	if c.Visible() {
		t.Error("caret collapsed after insert; toolbar should hide")
	}
}

func TestApply_BoldAndAlign(t *testing.T) {
	b := newBuffer("bold me")
	b.SelectOffsets(0, 4)
	c := toolbar.New(0, nil)
	c.Apply(b, toolbar.Bold)
	c.Apply(b, toolbar.AlignRight)
	if got := b.HTML(); got != "<strong>bold</strong> me" {
		t.Errorf("unexpected html %q", got)
	}
	if b.Align() != surface.AlignRight {
		t.Errorf("expected right alignment, got %s", b.Align())
	}
}

func TestCommand_Valid(t *testing.T) {
	for _, cmd := range toolbar.Commands {
		if !cmd.Valid() {
			t.Errorf("%s should be valid", cmd)
		}
	}
	if toolbar.Command("shout").Valid() {
		t.Error("unknown command reported valid")
	}
}
