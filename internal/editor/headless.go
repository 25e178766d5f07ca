package editor

import (
	"blockedit/internal/domain"
	"blockedit/internal/surface"
)

// Headless is a Host with nothing rendered. Editors driven by tools or the
// CLI use it; caret placement is dropped.
type Headless struct{}

func (Headless) Surface(string) surface.Surface          { return nil }
func (Headless) ItemSurface(string, int) surface.Surface { return nil }
func (Headless) Defer(fn func())                         { fn() }

// SplitBlock splits a text-bearing block at a rune offset of its plain
// text, without a rendered surface. Inline formatting stays with each
// half. It returns the id of the new block.
func (e *Editor) SplitBlock(id string, offset int) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.store.Get(id)
	if !ok || !domain.IsTextBearing(b.Type) {
		return "", false
	}
	next, ok := e.splitStored(b, offset)
	if !ok {
		return "", false
	}
	e.focus(next, 0)
	return next, true
}

// MergeBlock merges a block into its predecessor, as Backspace at the start
// of the block would. It returns the block that now has focus and whether
// the two were merged; non-text blocks are never merged.
func (e *Editor) MergeBlock(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.store.Index(id)
	if i <= 0 {
		return "", false
	}
	prev, _ := e.store.At(i - 1)
	cur, _ := e.store.At(i)
	e.alignForMerge(prev, cur)
	caret := textLen(prev.Type, prev.Content)
	res := e.store.Merge(id)
	if res.TargetID == "" {
		return "", false
	}
	e.focus(res.TargetID, caret)
	return res.TargetID, res.Merged
}
