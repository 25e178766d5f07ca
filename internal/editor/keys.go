package editor

import (
	"strings"

	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/menu"
	"blockedit/internal/surface"
)

// Key is a keystroke the editor may handle.
type Key string

const (
	KeyEnter      Key = "Enter"
	KeyShiftEnter Key = "Shift+Enter"
	KeyBackspace  Key = "Backspace"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyEscape     Key = "Escape"
)

// KeyDown handles a key pressed inside a block. It reports whether the
// editor consumed the key; when false the host applies its default.
func (e *Editor) KeyDown(id string, key Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.menu.IsOpen() {
		switch key {
		case KeyArrowDown:
			e.menu.Next(e.recent)
			return true
		case KeyArrowUp:
			e.menu.Prev(e.recent)
			return true
		case KeyEscape:
			e.menu.Close()
			return true
		case KeyEnter:
			e.confirmMenu()
			return true
		}
	}

	switch key {
	case KeyEnter:
		return e.enter(id)
	case KeyBackspace:
		return e.backspace(id)
	}
	return false
}

func (e *Editor) enter(id string) bool {
	b, ok := e.store.Get(id)
	if !ok {
		return false
	}
	if !domain.IsTextBearing(b.Type) {
		if b.Type.IsList() {
			return false
		}
		next := e.store.InsertAfter(id, domain.BlockTypeParagraph)
		e.focus(next, 0)
		return true
	}
	s := e.host.Surface(id)
	if s == nil {
		return false
	}
	e.syncFrom(id, s)
	b, _ = e.store.Get(id)
	next, ok := e.splitStored(b, surface.CaretOffset(s))
	if !ok {
		return false
	}
	e.focus(next, 0)
	return true
}

// splitStored splits a block at a caret offset of its text.
func (e *Editor) splitStored(b domain.Block, offset int) (string, bool) {
	if b.Type == domain.BlockTypeCode {
		return e.store.Split(b.ID, offset, b.Content)
	}
	head, tail := surface.SplitInline(b.Content, offset)
	return e.store.Split(b.ID, runeLen(head), head+tail)
}

// alignForMerge rewrites cur in prev's representation when one of them
// holds raw code and the other inline markup.
func (e *Editor) alignForMerge(prev, cur domain.Block) {
	if !domain.IsTextBearing(prev.Type) || !domain.IsTextBearing(cur.Type) {
		return
	}
	if (prev.Type == domain.BlockTypeCode) == (cur.Type == domain.BlockTypeCode) {
		return
	}
	content := encode(prev.Type, plainText(cur))
	e.store.Update(cur.ID, blocks.Patch{Content: &content})
}

func (e *Editor) backspace(id string) bool {
	s := e.host.Surface(id)
	if s == nil {
		return false
	}
	if r, ok := s.Selection(); ok && !r.Collapsed() {
		return false
	}
	if !surface.IsCaretAtStart(s) {
		return false
	}
	i := e.store.Index(id)
	if i <= 0 {
		return false
	}
	e.syncFrom(id, s)
	prev, _ := e.store.At(i - 1)
	cur, _ := e.store.At(i)
	e.alignForMerge(prev, cur)
	caret := textLen(prev.Type, prev.Content)
	res := e.store.Merge(id)
	if res.TargetID == "" {
		return false
	}
	e.focus(res.TargetID, caret)
	return true
}

// ListKeyDown handles a key pressed inside one item of a list block.
func (e *Editor) ListKeyDown(id string, item int, key Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.store.Get(id)
	if !ok || !b.Type.IsList() {
		return false
	}
	items := b.Metadata.(domain.ListMeta).Items
	if item < 0 || item >= len(items) {
		return false
	}
	s := e.host.ItemSurface(id, item)

	switch key {
	case KeyEnter:
		if items[item] == "" && item == len(items)-1 {
			if next := e.store.ExitList(id); next != "" {
				e.focus(next, 0)
			}
			return true
		}
		tail := ""
		if s != nil {
			head, rest := splitAt(surface.Text(s), surface.CaretOffset(s))
			e.store.UpdateListItem(id, item, escape(head))
			tail = escape(rest)
		}
		at := e.store.InsertListItem(id, item, tail)
		e.focusItem(id, at, 0)
		return true
	case KeyBackspace:
		if s == nil || !surface.IsCaretAtStart(s) || items[item] != "" {
			return false
		}
		if len(items) == 1 {
			if next := e.store.ExitList(id); next != "" {
				e.focus(next, 0)
			}
			return true
		}
		e.store.RemoveListItem(id, item)
		if item > 0 {
			e.focusItem(id, item-1, textLen(domain.BlockTypeParagraph, items[item-1]))
		} else {
			e.focusItem(id, 0, 0)
		}
		return true
	}
	return false
}

// ListInput syncs one list item from its surface.
func (e *Editor) ListInput(id string, item int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.host.ItemSurface(id, item)
	b, ok := e.store.Get(id)
	if s == nil || !ok || !b.Type.IsList() {
		return
	}
	items := b.Metadata.(domain.ListMeta).Items
	if item < 0 || item >= len(items) {
		return
	}
	if content := contentOf(b.Type, s); content != items[item] {
		e.store.UpdateListItem(id, item, content)
	}
}

// ── Input and the insert menu ──────────────────────────────

// Input syncs a block from its surface after the user typed into it. Typing
// the trigger at the start of a block opens the insert menu; what follows
// the trigger becomes the menu search.
func (e *Editor) Input(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.host.Surface(id)
	b, ok := e.store.Get(id)
	if s == nil || !ok {
		return
	}
	e.trackTrigger(b, s)
	e.syncFrom(id, s)
}

func (e *Editor) trackTrigger(b domain.Block, s surface.Surface) {
	if b.Type == domain.BlockTypeCode {
		return
	}
	text := surface.Text(s)
	trigger := e.opts.Trigger
	caret := surface.CaretOffset(s)

	if !e.menu.IsOpen() {
		if strings.HasPrefix(text, trigger) && caret == runeLen(trigger) {
			e.menu.Open(b.ID)
			e.typedMenu = true
		}
		return
	}
	if !e.typedMenu || e.menu.BlockID() != b.ID {
		return
	}
	if !strings.HasPrefix(text, trigger) || caret < runeLen(trigger) {
		e.menu.Close()
		return
	}
	search, _ := splitAt(string([]rune(text)[runeLen(trigger):]), caret-runeLen(trigger))
	e.menu.SetSearch(search, e.recent)
}

func (e *Editor) syncFrom(id string, s surface.Surface) {
	b, ok := e.store.Get(id)
	if !ok || !domain.IsTextBearing(b.Type) {
		return
	}
	if content := contentOf(b.Type, s); content != b.Content {
		e.store.Update(id, blocks.Patch{Content: &content})
	}
}

// ToggleMenu opens the insert menu for a block, or closes it.
func (e *Editor) ToggleMenu(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store.Index(id) < 0 && !e.menu.IsOpen() {
		return
	}
	e.menu.Toggle(id)
	e.typedMenu = false
}

// SetMenuSearch filters a menu opened with ToggleMenu, whose search is
// typed into the menu rather than into the block.
func (e *Editor) SetMenuSearch(search string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.typedMenu {
		return
	}
	e.menu.SetSearch(search, e.recent)
}

// CloseMenu dismisses the menu without touching the block, as when the
// user clicks outside it.
func (e *Editor) CloseMenu() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.menu.Close()
}

// MenuState is what the host needs to draw the insert menu.
type MenuState struct {
	Open     bool
	BlockID  string
	Search   string
	Selected int
	Options  []menu.Option
}

// Menu returns the insert menu as it should be drawn.
func (e *Editor) Menu() MenuState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.menu.IsOpen() {
		return MenuState{}
	}
	return MenuState{
		Open:     true,
		BlockID:  e.menu.BlockID(),
		Search:   e.menu.Search(),
		Selected: e.menu.Selected(),
		Options:  e.menu.Options(e.recent),
	}
}

// RecentTypes returns the recently chosen types, newest first.
func (e *Editor) RecentTypes() []domain.BlockType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recent.Types()
}

// ChooseType applies t from the open menu, as when an option is clicked.
func (e *Editor) ChooseType(t domain.BlockType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.menu.IsOpen() {
		return
	}
	id, typed := e.menu.BlockID(), e.typedSearch()
	e.menu.Close()
	e.applyChoice(id, t, typed)
}

func (e *Editor) confirmMenu() {
	typed := e.typedSearch()
	id, t, ok := e.menu.Confirm(e.recent)
	if !ok {
		return
	}
	e.applyChoice(id, t, typed)
}

// typedSearch is the text the user typed into the block to drive the
// menu, or "" when the menu was opened explicitly.
func (e *Editor) typedSearch() string {
	if !e.typedMenu {
		return ""
	}
	return e.opts.Trigger + e.menu.Search()
}

// applyChoice retypes a block picked from the menu. typed, the trigger
// plus search the user entered into the block, is removed from the
// content; remaining text moves into the first item when the block becomes
// a list.
func (e *Editor) applyChoice(id string, t domain.BlockType, typed string) {
	e.typedMenu = false
	b, ok := e.store.Get(id)
	if !ok || !t.Valid() {
		return
	}
	text := plainText(b)
	if typed != "" {
		if strings.HasPrefix(text, typed) {
			text = strings.TrimPrefix(text, typed)
		} else {
			text = strings.TrimPrefix(text, e.opts.Trigger)
		}
	}

	e.store.Retype(id, t)
	e.recent.Push(t)

	empty := ""
	switch {
	case t.IsList():
		e.store.Update(id, blocks.Patch{Content: &empty})
		e.store.UpdateListItem(id, 0, escape(text))
		e.focusItem(id, 0, runeLen(text))
	case domain.IsTextBearing(t):
		content := encode(t, text)
		e.store.Update(id, blocks.Patch{Content: &content})
		e.focus(id, runeLen(text))
	default:
		e.store.Update(id, blocks.Patch{Content: &empty})
	}
}

func plainText(b domain.Block) string {
	if b.Type == domain.BlockTypeCode {
		return b.Content
	}
	return surface.PlainText(b.Content)
}

func splitAt(text string, offset int) (string, string) {
	r := []rune(text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(r) {
		offset = len(r)
	}
	return string(r[:offset]), string(r[offset:])
}
