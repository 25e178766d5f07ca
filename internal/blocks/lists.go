package blocks

import "blockedit/internal/domain"

// ── List items ─────────────────────────────────────────────

func (s *Store) listAt(id string) (int, domain.ListMeta, bool) {
	i := s.Index(id)
	if i < 0 || !s.blocks[i].Type.IsList() {
		return -1, domain.ListMeta{}, false
	}
	lm, _ := domain.CloneMetadata(s.blocks[i].Metadata).(domain.ListMeta)
	return i, lm, true
}

// InsertListItem adds text as a new item after position after (-1 for the
// front). Returns the index of the new item, or -1.
func (s *Store) InsertListItem(id string, after int, text string) int {
	i, lm, ok := s.listAt(id)
	if !ok {
		return -1
	}
	at := after + 1
	if at < 0 {
		at = 0
	}
	if at > len(lm.Items) {
		at = len(lm.Items)
	}
	lm.Items = append(lm.Items, "")
	copy(lm.Items[at+1:], lm.Items[at:])
	lm.Items[at] = text
	s.blocks[i].Metadata = lm
	s.changed()
	return at
}

// UpdateListItem replaces the text of one item.
func (s *Store) UpdateListItem(id string, item int, text string) {
	i, lm, ok := s.listAt(id)
	if !ok || item < 0 || item >= len(lm.Items) {
		return
	}
	lm.Items[item] = text
	s.blocks[i].Metadata = lm
	s.changed()
}

// RemoveListItem drops one item. The last remaining item is cleared
// instead of removed.
func (s *Store) RemoveListItem(id string, item int) {
	i, lm, ok := s.listAt(id)
	if !ok || item < 0 || item >= len(lm.Items) {
		return
	}
	if len(lm.Items) == 1 {
		lm.Items[0] = ""
	} else {
		lm.Items = append(lm.Items[:item], lm.Items[item+1:]...)
	}
	s.blocks[i].Metadata = lm
	s.changed()
}

// ExitList leaves a list whose trailing item is empty. With other items
// present the empty item is dropped and a paragraph is created after the
// list; a list holding only that empty item turns into a paragraph. Returns
// the id of the block that should receive focus, or "" when the list was
// left untouched.
func (s *Store) ExitList(id string) string {
	i, lm, ok := s.listAt(id)
	if !ok || lm.Items[len(lm.Items)-1] != "" {
		return ""
	}
	if len(lm.Items) == 1 {
		s.blocks[i] = domain.NewBlock(s.blocks[i].ID, domain.BlockTypeParagraph)
		s.changed()
		return s.blocks[i].ID
	}
	lm.Items = lm.Items[:len(lm.Items)-1]
	s.blocks[i].Metadata = lm
	next := domain.NewBlock(s.uniqueID(s.newID()), domain.BlockTypeParagraph)
	s.insertAt(i+1, next)
	s.changed()
	return next.ID
}
