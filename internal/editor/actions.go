package editor

import (
	"encoding/base64"
	"fmt"
	"io"

	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/paste"
	"blockedit/internal/surface"
	"blockedit/internal/toolbar"
)

// ── Block actions ──────────────────────────────────────────

// AddBlock inserts a block of type t after afterID (at the end when
// afterID is unknown) and focuses it.
func (e *Editor) AddBlock(afterID string, t domain.BlockType) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.store.InsertAfter(afterID, t)
	e.focus(id, 0)
	return id
}

// UpdateBlock merges p into a block.
func (e *Editor) UpdateBlock(id string, p blocks.Patch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Update(id, p)
}

// SetMetadata replaces a block's metadata. Metadata of the wrong shape for
// the block's type resets it to the default.
func (e *Editor) SetMetadata(id string, m domain.Metadata) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Update(id, blocks.Patch{Metadata: m})
}

// DeleteBlock removes a block.
func (e *Editor) DeleteBlock(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.menu.BlockID() == id {
		e.menu.Close()
	}
	e.store.Delete(id)
}

// MoveBlock swaps a block with its neighbor.
func (e *Editor) MoveBlock(id string, dir blocks.Direction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Move(id, dir)
}

// RetypeBlock changes a block's type outside the menu.
func (e *Editor) RetypeBlock(id string, t domain.BlockType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Retype(id, t)
}

// ClearAll replaces the document with one empty paragraph and focuses it.
func (e *Editor) ClearAll() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.menu.Close()
	e.drag.Cancel()
	id := e.store.Clear()
	e.focus(id, 0)
	return id
}

// Paste decomposes structured text into blocks replacing id. It reports
// false for plain text, which the host should paste itself.
func (e *Editor) Paste(id string, text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if paste.Classify(text) != paste.Structured || e.store.Index(id) < 0 {
		return false
	}
	ids := e.store.ReplaceWith(id, e.codec.TextToBlocks(text, false))
	if len(ids) == 0 {
		return false
	}
	last := ids[len(ids)-1]
	if b, ok := e.store.Get(last); ok {
		e.focus(last, textLen(b.Type, b.Content))
	}
	return true
}

// ── Drag reorder ───────────────────────────────────────────

// DragStart begins dragging a block.
func (e *Editor) DragStart(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.store.Index(id) >= 0 {
		e.drag.Start(id)
	}
}

// DragOver records the block under the pointer.
func (e *Editor) DragOver(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.Over(id)
}

// Drop finishes the drag on targetID.
func (e *Editor) Drop(targetID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.Drop(targetID, e.store)
}

// DragCancel abandons the drag.
func (e *Editor) DragCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.Cancel()
}

// DragState returns the dragged and hovered block ids.
func (e *Editor) DragState() (dragged, over string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.Dragging(), e.drag.OverID()
}

// ── Selection toolbar ──────────────────────────────────────

// ToolbarState is what the host needs to draw the toolbar.
type ToolbarState struct {
	Visible  bool
	Position toolbar.Position
}

func (e *Editor) target(id string) toolbar.Target {
	if id == "" {
		return nil
	}
	t, _ := e.host.Surface(id).(toolbar.Target)
	return t
}

// SelectionChanged re-evaluates the toolbar. id is the block holding the
// selection, or "" when it lies outside the editor; container is the
// editing container's bounding box.
func (e *Editor) SelectionChanged(id string, container surface.Rect) ToolbarState {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toolbar.Evaluate(e.target(id), container)
	return e.toolbarState()
}

// HideToolbar hides the toolbar on scroll or blur.
func (e *Editor) HideToolbar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toolbar.Hide()
}

// Toolbar returns the current toolbar state.
func (e *Editor) Toolbar() ToolbarState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.toolbarState()
}

func (e *Editor) toolbarState() ToolbarState {
	return ToolbarState{Visible: e.toolbar.Visible(), Position: e.toolbar.Position()}
}

// Format applies a toolbar command to the selection in block id and syncs
// the block from the reformatted surface.
func (e *Editor) Format(id string, cmd toolbar.Command) ToolbarState {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.target(id)
	if t == nil {
		e.toolbar.Hide()
		return e.toolbarState()
	}
	e.toolbar.Apply(t, cmd)
	e.syncFrom(id, t)
	return e.toolbarState()
}

// ── Images ─────────────────────────────────────────────────

// AttachImage reads image data in the background and stores it as a data
// URL on an image block. The returned channel closes once the block has
// been updated or the read has failed. There is no timeout.
func (e *Editor) AttachImage(id string, r io.Reader, mime string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		data, err := io.ReadAll(r)
		if err != nil {
			if e.opts.OnImageError != nil {
				e.opts.OnImageError(id, fmt.Errorf("read image: %w", err))
			}
			return
		}
		url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

		e.mu.Lock()
		defer e.mu.Unlock()
		b, ok := e.store.Get(id)
		if !ok || b.Type != domain.BlockTypeImage {
			return
		}
		meta, _ := b.Metadata.(domain.ImageMeta)
		meta.URL = url
		e.store.Update(id, blocks.Patch{Metadata: meta})
	}()
	return done
}
