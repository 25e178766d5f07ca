package editor_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
	"time"

	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/editor"
	"blockedit/internal/markup"
	"blockedit/internal/surface"
	"blockedit/internal/toolbar"
)

// fakeHost keeps one buffer per rendered block and runs deferred work on
// paint, the way a real host would after reflecting the store.
type fakeHost struct {
	bufs     map[string]*surface.Buffer
	items    map[string][]*surface.Buffer
	deferred []func()
}

func (h *fakeHost) Surface(id string) surface.Surface {
	if b, ok := h.bufs[id]; ok {
		return b
	}
	return nil
}

func (h *fakeHost) ItemSurface(id string, item int) surface.Surface {
	if bs, ok := h.items[id]; ok && item >= 0 && item < len(bs) {
		return bs[item]
	}
	return nil
}

func (h *fakeHost) Defer(fn func()) {
	h.deferred = append(h.deferred, fn)
}

func (h *fakeHost) paint(e *editor.Editor) {
	h.bufs = map[string]*surface.Buffer{}
	h.items = map[string][]*surface.Buffer{}
	for _, b := range e.Blocks() {
		buf := surface.NewBuffer("")
		if b.Type == domain.BlockTypeCode {
			buf.SetText(b.Content)
		} else {
			buf.SetHTML(b.Content)
		}
		h.bufs[b.ID] = buf
		if lm, ok := b.Metadata.(domain.ListMeta); ok {
			for _, item := range lm.Items {
				ib := surface.NewBuffer("")
				ib.SetHTML(item)
				h.items[b.ID] = append(h.items[b.ID], ib)
			}
		}
	}
	pending := h.deferred
	h.deferred = nil
	for _, fn := range pending {
		fn()
	}
}

// typeText simulates the user leaving text in a block with the caret at
// its end.
func (h *fakeHost) typeText(e *editor.Editor, id, text string) {
	b := h.bufs[id]
	b.SetText(text)
	n := len([]rune(text))
	b.SelectOffsets(n, n)
	e.Input(id)
}

func counterIDs() blocks.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func open(t *testing.T, text string, opts editor.Options) (*editor.Editor, *fakeHost) {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = counterIDs()
	}
	if opts.AutosaveDelay == 0 {
		opts.AutosaveDelay = time.Hour
	}
	h := &fakeHost{}
	e := editor.New(text, h, markup.Codec{}, opts)
	t.Cleanup(e.Close)
	h.paint(e)
	return e, h
}

func contents(e *editor.Editor) []string {
	var out []string
	for _, b := range e.Blocks() {
		out = append(out, b.Content)
	}
	return out
}

func TestEnter_SplitsAtCaretAndFocusesNewBlock(t *testing.T) {
	e, h := open(t, "HelloWorld", editor.Options{})
	id := e.Blocks()[0].ID
	surface.SetCaretOffset(h.bufs[id], 5)

	if !e.KeyDown(id, editor.KeyEnter) {
		t.Fatal("enter not handled")
	}
	bs := e.Blocks()
	if len(bs) != 2 || bs[0].Content != "Hello" || bs[1].Content != "World" {
		t.Fatalf("unexpected blocks %v", contents(e))
	}
	h.paint(e)
	s := h.bufs[bs[1].ID]
	if _, ok := s.Selection(); !ok || surface.CaretOffset(s) != 0 {
		t.Errorf("caret not placed at start of new block")
	}
}

func TestEnter_EscapesMarkupInSplitHalves(t *testing.T) {
	e, h := open(t, "a &lt; b", editor.Options{})
	id := e.Blocks()[0].ID
	surface.SetCaretOffset(h.bufs[id], 2)
	e.KeyDown(id, editor.KeyEnter)
	if got := contents(e); got[0] != "a " || got[1] != "&lt; b" {
		t.Errorf("unexpected contents %q", got)
	}
}

func TestEnter_KeepsFormattingOnBothSides(t *testing.T) {
	e, h := open(t, "**Hello**World", editor.Options{})
	id := e.Blocks()[0].ID
	surface.SetCaretOffset(h.bufs[id], 3)
	e.KeyDown(id, editor.KeyEnter)
	if got := contents(e); len(got) != 2 || got[0] != "<strong>Hel</strong>" || got[1] != "<strong>lo</strong>World" {
		t.Errorf("unexpected contents %q", got)
	}
}

func TestShiftEnter_NotHandled(t *testing.T) {
	e, _ := open(t, "text", editor.Options{})
	if e.KeyDown(e.Blocks()[0].ID, editor.KeyShiftEnter) {
		t.Error("shift+enter should be left to the host")
	}
}

func TestBackspace_MergesAndRestoresCaret(t *testing.T) {
	e, h := open(t, "Hello\n\nWorld", editor.Options{})
	bs := e.Blocks()
	surface.SetCaretOffset(h.bufs[bs[1].ID], 0)

	if !e.KeyDown(bs[1].ID, editor.KeyBackspace) {
		t.Fatal("backspace not handled")
	}
	if got := contents(e); len(got) != 1 || got[0] != "HelloWorld" {
		t.Fatalf("unexpected contents %v", got)
	}
	h.paint(e)
	if got := surface.CaretOffset(h.bufs[bs[0].ID]); got != 5 {
		t.Errorf("expected caret at 5, got %d", got)
	}
}

func TestBackspace_CodeIntoParagraphKeepsText(t *testing.T) {
	e, h := open(t, "intro\n\n```\na<b\n```\n", editor.Options{})
	bs := e.Blocks()
	surface.SetCaretOffset(h.bufs[bs[1].ID], 0)
	if !e.KeyDown(bs[1].ID, editor.KeyBackspace) {
		t.Fatal("backspace not handled")
	}
	if got := contents(e); len(got) != 1 || got[0] != "introa&lt;b" {
		t.Errorf("unexpected contents %q", got)
	}
}

func TestBackspace_NotAtStartIsLeftToHost(t *testing.T) {
	e, h := open(t, "Hello\n\nWorld", editor.Options{})
	bs := e.Blocks()
	surface.SetCaretOffset(h.bufs[bs[1].ID], 2)
	if e.KeyDown(bs[1].ID, editor.KeyBackspace) {
		t.Error("backspace mid-text should not be handled")
	}
	if e.KeyDown(bs[0].ID, editor.KeyBackspace) {
		t.Error("backspace in first block should not be handled")
	}
}

func TestMenu_TriggerSearchAndConfirm(t *testing.T) {
	e, h := open(t, "", editor.Options{})
	id := e.Blocks()[0].ID

	h.typeText(e, id, "/")
	if !e.Menu().Open {
		t.Fatal("trigger did not open menu")
	}
	h.typeText(e, id, "/head")
	m := e.Menu()
	if m.Search != "head" || len(m.Options) != 3 {
		t.Fatalf("unexpected menu %+v", m)
	}
	e.KeyDown(id, editor.KeyArrowDown)
	if !e.KeyDown(id, editor.KeyEnter) {
		t.Fatal("enter not consumed by menu")
	}

	b, _ := e.Block(id)
	if b.Type != domain.BlockTypeHeading2 || b.Content != "" {
		t.Errorf("expected empty heading-2, got %s %q", b.Type, b.Content)
	}
	if e.Menu().Open {
		t.Error("menu still open")
	}
	if r := e.RecentTypes(); len(r) != 1 || r[0] != domain.BlockTypeHeading2 {
		t.Errorf("unexpected recent %v", r)
	}
}

func TestMenu_EscapeLeavesBlockAlone(t *testing.T) {
	e, h := open(t, "", editor.Options{})
	id := e.Blocks()[0].ID
	h.typeText(e, id, "/")
	h.typeText(e, id, "/co")
	if !e.KeyDown(id, editor.KeyEscape) {
		t.Fatal("escape not consumed")
	}
	b, _ := e.Block(id)
	if e.Menu().Open || b.Type != domain.BlockTypeParagraph || b.Content != "/co" {
		t.Errorf("unexpected state: open=%v %s %q", e.Menu().Open, b.Type, b.Content)
	}
}

func TestMenu_TriggerMidTextDoesNotOpen(t *testing.T) {
	e, h := open(t, "", editor.Options{})
	id := e.Blocks()[0].ID
	h.typeText(e, id, "a/")
	if e.Menu().Open {
		t.Error("menu opened for trigger not at block start")
	}
}

func TestMenu_ToggleAndChooseKeepsText(t *testing.T) {
	e, _ := open(t, "milk", editor.Options{})
	id := e.Blocks()[0].ID
	e.ToggleMenu(id)
	e.SetMenuSearch("bul")
	if m := e.Menu(); len(m.Options) != 1 || m.Options[0].Type != domain.BlockTypeBulletList {
		t.Fatalf("unexpected options %+v", m.Options)
	}
	e.ChooseType(domain.BlockTypeBulletList)

	b, _ := e.Block(id)
	lm, ok := b.Metadata.(domain.ListMeta)
	if b.Type != domain.BlockTypeBulletList || !ok || len(lm.Items) != 1 || lm.Items[0] != "milk" {
		t.Errorf("unexpected block %+v", b)
	}
}

func TestPaste_StructuredReplacesBlock(t *testing.T) {
	e, _ := open(t, "before\n\ntarget", editor.Options{})
	target := e.Blocks()[1].ID
	text := "# Title\n\nBody text here that is definitely over fifty characters long"
	if !e.Paste(target, text) {
		t.Fatal("structured paste not handled")
	}
	bs := e.Blocks()
	if len(bs) != 3 || bs[1].Type != domain.BlockTypeHeading1 || bs[1].Content != "Title" || bs[2].Type != domain.BlockTypeParagraph {
		t.Errorf("unexpected blocks %+v", bs)
	}
	if e.Paste(bs[0].ID, "short reply") {
		t.Error("plain paste should be left to the host")
	}
}

func TestDrag_ReordersAndClears(t *testing.T) {
	e, _ := open(t, "a\n\nb\n\nc", editor.Options{})
	bs := e.Blocks()
	e.DragStart(bs[0].ID)
	e.DragOver(bs[2].ID)
	if dragged, over := e.DragState(); dragged != bs[0].ID || over != bs[2].ID {
		t.Fatalf("unexpected drag state %q %q", dragged, over)
	}
	if !e.Drop(bs[2].ID) {
		t.Fatal("drop did nothing")
	}
	if got := strings.Join(contents(e), ","); got != "b,a,c" {
		t.Errorf("unexpected order %s", got)
	}
	if dragged, over := e.DragState(); dragged != "" || over != "" {
		t.Error("drag state not cleared")
	}
}

func TestToolbar_FormatSyncsBlock(t *testing.T) {
	e, h := open(t, "Hello World", editor.Options{})
	id := e.Blocks()[0].ID
	container := surface.Rect{Width: 800, Height: 600}

	h.bufs[id].SelectOffsets(0, 5)
	if st := e.SelectionChanged(id, container); !st.Visible {
		t.Fatal("toolbar hidden for a real selection")
	}
	e.Format(id, toolbar.Bold)
	b, _ := e.Block(id)
	if b.Content != "<strong>Hello</strong> World" {
		t.Errorf("unexpected content %q", b.Content)
	}
	if st := e.SelectionChanged("", container); st.Visible {
		t.Error("toolbar visible for selection outside editor")
	}
}

func TestAttachImage(t *testing.T) {
	var mu sync.Mutex
	var failed []string
	e, _ := open(t, "", editor.Options{OnImageError: func(id string, err error) {
		mu.Lock()
		failed = append(failed, id)
		mu.Unlock()
	}})
	img := e.AddBlock(e.Blocks()[0].ID, domain.BlockTypeImage)

	<-e.AttachImage(img, strings.NewReader("png"), "image/png")
	b, _ := e.Block(img)
	if url := b.Metadata.(domain.ImageMeta).URL; url != "data:image/png;base64,cG5n" {
		t.Errorf("unexpected url %q", url)
	}

	<-e.AttachImage(img, iotest.ErrReader(errors.New("boom")), "image/png")
	b, _ = e.Block(img)
	if url := b.Metadata.(domain.ImageMeta).URL; url != "data:image/png;base64,cG5n" {
		t.Errorf("failed read changed the block: %q", url)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(failed) != 1 || failed[0] != img {
		t.Errorf("expected one error report for %s, got %v", img, failed)
	}
}

func TestList_EnterAddsItemThenExits(t *testing.T) {
	e, h := open(t, "- a\n- b", editor.Options{})
	id := e.Blocks()[0].ID
	surface.SetCaretOffset(h.items[id][1], 1)

	if !e.ListKeyDown(id, 1, editor.KeyEnter) {
		t.Fatal("enter not handled")
	}
	b, _ := e.Block(id)
	if items := b.Metadata.(domain.ListMeta).Items; len(items) != 3 || items[2] != "" {
		t.Fatalf("unexpected items %q", items)
	}
	h.paint(e)
	if !e.ListKeyDown(id, 2, editor.KeyEnter) {
		t.Fatal("enter on empty item not handled")
	}
	bs := e.Blocks()
	if len(bs) != 2 || bs[1].Type != domain.BlockTypeParagraph {
		t.Fatalf("expected a paragraph after the list, got %+v", bs)
	}
	if items := bs[0].Metadata.(domain.ListMeta).Items; len(items) != 2 {
		t.Errorf("empty item kept: %q", items)
	}
}

func TestClose_FlushesPendingSave(t *testing.T) {
	var saved []string
	e, _ := open(t, "", editor.Options{OnChange: func(text string) { saved = append(saved, text) }})
	content := "Saved"
	e.UpdateBlock(e.Blocks()[0].ID, blocks.Patch{Content: &content})
	e.Close()
	if len(saved) != 1 || saved[0] != "Saved\n" {
		t.Errorf("unexpected saves %q", saved)
	}
}

func TestAutosave_FiresAfterQuietPeriod(t *testing.T) {
	saved := make(chan string, 4)
	e, _ := open(t, "start", editor.Options{
		AutosaveDelay: 10 * time.Millisecond,
		OnChange:      func(text string) { saved <- text },
	})
	e.AddBlock(e.Blocks()[0].ID, domain.BlockTypeDivider)
	select {
	case got := <-saved:
		if got != "start\n\n---\n" {
			t.Errorf("unexpected save %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("autosave never fired")
	}
}

func TestPlaceholder_UsesLocale(t *testing.T) {
	e, _ := open(t, "", editor.Options{Locale: "pt-BR"})
	if got := e.Placeholder(e.Blocks()[0].ID); got != "Digite '/' para comandos" {
		t.Errorf("unexpected placeholder %q", got)
	}
}
