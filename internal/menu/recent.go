package menu

import "blockedit/internal/domain"

// DefaultRecentLimit is how many recently used types Recent keeps.
const DefaultRecentLimit = 5

// Recent remembers the block types picked most recently, newest first and
// without duplicates. Each editor owns its own Recent.
type Recent struct {
	limit int
	types []domain.BlockType
}

// NewRecent creates an empty history. limit <= 0 uses DefaultRecentLimit.
func NewRecent(limit int) *Recent {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return &Recent{limit: limit}
}

// Push records t as the most recent pick.
func (r *Recent) Push(t domain.BlockType) {
	if r == nil || !t.Valid() {
		return
	}
	out := []domain.BlockType{t}
	for _, existing := range r.types {
		if existing != t && len(out) < r.limit {
			out = append(out, existing)
		}
	}
	r.types = out
}

// Types returns the history, newest first. A nil Recent is empty.
func (r *Recent) Types() []domain.BlockType {
	if r == nil {
		return nil
	}
	return append([]domain.BlockType(nil), r.types...)
}
