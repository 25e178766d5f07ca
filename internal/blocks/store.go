// Package blocks holds the ordered block sequence of a document and the
// operations that mutate it. Every operation is total: an unknown id is a
// no-op, and the store never ends up empty or with a duplicate id.
package blocks

import (
	"github.com/google/uuid"

	"blockedit/internal/domain"
)

// IDFunc generates a fresh block id.
type IDFunc func() string

// RandomID is the default IDFunc.
func RandomID() string { return uuid.NewString() }

// Store is the single source of truth for a document's blocks.
type Store struct {
	blocks   []domain.Block
	newID    IDFunc
	onMutate func([]domain.Block)
}

// New creates a store holding initial. An empty initial sequence yields a
// single empty paragraph. A nil idgen uses RandomID.
func New(initial []domain.Block, idgen IDFunc) *Store {
	if idgen == nil {
		idgen = RandomID
	}
	s := &Store{newID: idgen}
	s.blocks = s.sanitize(initial)
	return s
}

// OnMutate registers fn to receive a snapshot after every mutation.
func (s *Store) OnMutate(fn func([]domain.Block)) {
	s.onMutate = fn
}

// Blocks returns a deep copy of the current sequence.
func (s *Store) Blocks() []domain.Block {
	return domain.CloneBlocks(s.blocks)
}

// Len returns the number of blocks.
func (s *Store) Len() int { return len(s.blocks) }

// Index returns the position of id, or -1.
func (s *Store) Index(id string) int {
	for i := range s.blocks {
		if s.blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns a copy of the block with the given id.
func (s *Store) Get(id string) (domain.Block, bool) {
	i := s.Index(id)
	if i < 0 {
		return domain.Block{}, false
	}
	return s.blocks[i].Clone(), true
}

// At returns a copy of the block at index i.
func (s *Store) At(i int) (domain.Block, bool) {
	if i < 0 || i >= len(s.blocks) {
		return domain.Block{}, false
	}
	return s.blocks[i].Clone(), true
}

// Load replaces the whole sequence without notifying the mutation
// listener. Used when content arrives from persistence.
func (s *Store) Load(blocks []domain.Block) {
	s.blocks = s.sanitize(blocks)
}

func (s *Store) emptyParagraph() domain.Block {
	return domain.NewBlock(s.newID(), domain.BlockTypeParagraph)
}

// sanitize normalizes metadata and rewrites empty or duplicate ids.
func (s *Store) sanitize(in []domain.Block) []domain.Block {
	out := make([]domain.Block, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, b := range in {
		b = domain.Normalize(b.Clone())
		if !b.Type.Valid() {
			b = domain.Normalize(domain.Block{ID: b.ID, Type: domain.BlockTypeParagraph, Content: b.Content})
		}
		for b.ID == "" || seen[b.ID] {
			b.ID = s.newID()
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	if len(out) == 0 {
		out = append(out, s.emptyParagraph())
	}
	return out
}

// uniqueID returns id if no block uses it, otherwise a fresh one.
func (s *Store) uniqueID(id string) string {
	for id == "" || s.Index(id) >= 0 {
		id = s.newID()
	}
	return id
}

func (s *Store) changed() {
	if s.onMutate != nil {
		s.onMutate(s.Blocks())
	}
}

func (s *Store) insertAt(i int, b domain.Block) {
	s.blocks = append(s.blocks, domain.Block{})
	copy(s.blocks[i+1:], s.blocks[i:])
	s.blocks[i] = b
}

func (s *Store) removeAt(i int) domain.Block {
	b := s.blocks[i]
	s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
	return b
}
