package blocks

import (
	"unicode/utf8"

	"blockedit/internal/domain"
)

// Patch carries the fields Update merges into a block. Nil fields are
// left untouched.
type Patch struct {
	Type     *domain.BlockType
	Content  *string
	Metadata domain.Metadata
}

// Direction is the neighbor Move swaps with.
type Direction int

const (
	Up Direction = iota
	Down
)

// MergeResult tells the caller where to put the caret after Merge.
type MergeResult struct {
	// TargetID is the block that should receive focus. Empty when the
	// merge was rejected outright (first block or unknown id).
	TargetID string
	// Caret is the rune length of the target's content before the merge.
	Caret  int
	Merged bool
}

// Update merges p into the block with the given id.
func (s *Store) Update(id string, p Patch) {
	i := s.Index(id)
	if i < 0 {
		return
	}
	b := s.blocks[i]
	if p.Type != nil && p.Type.Valid() {
		b.Type = *p.Type
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	if p.Metadata != nil {
		b.Metadata = domain.CloneMetadata(p.Metadata)
	}
	s.blocks[i] = domain.Normalize(b)
	s.changed()
}

// Delete removes a block. Deleting the only block leaves one fresh empty
// paragraph behind.
func (s *Store) Delete(id string) {
	i := s.Index(id)
	if i < 0 {
		return
	}
	if len(s.blocks) == 1 {
		s.blocks = []domain.Block{s.emptyParagraph()}
	} else {
		s.removeAt(i)
	}
	s.changed()
}

// Clear replaces the whole document with one fresh empty paragraph and
// returns its id.
func (s *Store) Clear() string {
	b := s.emptyParagraph()
	s.blocks = []domain.Block{b}
	s.changed()
	return b.ID
}

// Split cuts fullText at offset (in runes): the block keeps the head and a
// new block after it gets the tail. Checkbox and callout blocks continue
// as their own type; everything else continues as a paragraph. Returns the
// new block's id.
func (s *Store) Split(id string, offset int, fullText string) (string, bool) {
	i := s.Index(id)
	if i < 0 || !domain.IsTextBearing(s.blocks[i].Type) {
		return "", false
	}
	head, tail := splitRunes(fullText, offset)
	src := s.blocks[i]
	src.Content = head
	s.blocks[i] = src

	next := domain.NewBlock(s.newID(), domain.BlockTypeParagraph)
	switch src.Type {
	case domain.BlockTypeCheckbox:
		next = domain.NewBlock(next.ID, domain.BlockTypeCheckbox)
	case domain.BlockTypeCallout:
		next.Type = domain.BlockTypeCallout
		next.Metadata = domain.CloneMetadata(src.Metadata)
	}
	next.ID = s.uniqueID(next.ID)
	next.Content = tail
	s.insertAt(i+1, domain.Normalize(next))
	s.changed()
	return next.ID, true
}

// Merge folds a block into the one before it when both are text-bearing.
// The caret position is reported even when nothing was merged so the
// caller can still move focus to the previous block.
func (s *Store) Merge(id string) MergeResult {
	i := s.Index(id)
	if i <= 0 {
		return MergeResult{}
	}
	prev, cur := s.blocks[i-1], s.blocks[i]
	res := MergeResult{TargetID: prev.ID, Caret: utf8.RuneCountInString(prev.Content)}
	if !domain.IsTextBearing(prev.Type) || !domain.IsTextBearing(cur.Type) {
		return res
	}
	prev.Content += cur.Content
	s.blocks[i-1] = prev
	s.removeAt(i)
	res.Merged = true
	s.changed()
	return res
}

// Move swaps a block with its neighbor. Moving past either end is a no-op.
func (s *Store) Move(id string, dir Direction) {
	i := s.Index(id)
	if i < 0 {
		return
	}
	j := i - 1
	if dir == Down {
		j = i + 1
	}
	if j < 0 || j >= len(s.blocks) {
		return
	}
	s.blocks[i], s.blocks[j] = s.blocks[j], s.blocks[i]
	s.changed()
}

// Relocate removes a block and reinserts it at index, clamped to the
// resulting sequence.
func (s *Store) Relocate(id string, index int) {
	i := s.Index(id)
	if i < 0 {
		return
	}
	b := s.removeAt(i)
	if index < 0 {
		index = 0
	}
	if index > len(s.blocks) {
		index = len(s.blocks)
	}
	s.insertAt(index, b)
	if index != i {
		s.changed()
	}
}

// Retype changes a block's type and resets its metadata to the default.
func (s *Store) Retype(id string, t domain.BlockType) {
	i := s.Index(id)
	if i < 0 || !t.Valid() {
		return
	}
	b := s.blocks[i]
	b.Type = t
	b.Metadata = domain.DefaultMetadata(t)
	s.blocks[i] = b
	s.changed()
}

// InsertAfter adds a fresh block of type t after afterID, or at the end
// when afterID is unknown. Returns the new id.
func (s *Store) InsertAfter(afterID string, t domain.BlockType) string {
	if !t.Valid() {
		t = domain.BlockTypeParagraph
	}
	b := domain.NewBlock(s.uniqueID(s.newID()), t)
	i := s.Index(afterID)
	if i < 0 {
		i = len(s.blocks) - 1
	}
	s.insertAt(i+1, b)
	s.changed()
	return b.ID
}

// ReplaceWith swaps one block for a sequence of blocks in place. Ids that
// already exist elsewhere in the store are regenerated. Returns the ids
// actually inserted.
func (s *Store) ReplaceWith(id string, repl []domain.Block) []string {
	i := s.Index(id)
	if i < 0 || len(repl) == 0 {
		return nil
	}
	s.removeAt(i)
	ids := make([]string, 0, len(repl))
	for k, b := range repl {
		b = domain.Normalize(b.Clone())
		if !b.Type.Valid() {
			b.Type = domain.BlockTypeParagraph
			b = domain.Normalize(b)
		}
		b.ID = s.uniqueID(b.ID)
		s.insertAt(i+k, b)
		ids = append(ids, b.ID)
	}
	s.changed()
	return ids
}

func splitRunes(text string, offset int) (string, string) {
	if offset <= 0 {
		return "", text
	}
	n := 0
	for i := range text {
		if n == offset {
			return text[:i], text[i:]
		}
		n++
	}
	return text, ""
}
