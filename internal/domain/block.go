package domain

type BlockType string

const (
	BlockTypeParagraph   BlockType = "paragraph"
	BlockTypeHeading1    BlockType = "heading-1"
	BlockTypeHeading2    BlockType = "heading-2"
	BlockTypeHeading3    BlockType = "heading-3"
	BlockTypeBulletList  BlockType = "bullet-list"
	BlockTypeOrderedList BlockType = "ordered-list"
	BlockTypeCheckbox    BlockType = "checkbox"
	BlockTypeImage       BlockType = "image"
	BlockTypeCode        BlockType = "code"
	BlockTypeCallout     BlockType = "callout"
	BlockTypeDivider     BlockType = "divider"
)

// BlockTypes lists every block type in menu order.
var BlockTypes = []BlockType{
	BlockTypeParagraph,
	BlockTypeHeading1,
	BlockTypeHeading2,
	BlockTypeHeading3,
	BlockTypeBulletList,
	BlockTypeOrderedList,
	BlockTypeCheckbox,
	BlockTypeImage,
	BlockTypeCode,
	BlockTypeCallout,
	BlockTypeDivider,
}

// Valid reports whether t is a known block type.
func (t BlockType) Valid() bool {
	for _, bt := range BlockTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// IsList reports whether t keeps its content in ListMeta items.
func (t BlockType) IsList() bool {
	return t == BlockTypeBulletList || t == BlockTypeOrderedList
}

func (t BlockType) IsHeading() bool {
	return t == BlockTypeHeading1 || t == BlockTypeHeading2 || t == BlockTypeHeading3
}

// IsTextBearing reports whether Content is meaningful for t.
// Only text-bearing blocks take part in split and merge.
func IsTextBearing(t BlockType) bool {
	switch t {
	case BlockTypeParagraph, BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3,
		BlockTypeCheckbox, BlockTypeCode, BlockTypeCallout:
		return true
	}
	return false
}

// Block is the atomic unit of a document.
type Block struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Content  string    `json:"content"`
	Metadata Metadata  `json:"metadata,omitempty"`
}

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	if b.Metadata != nil {
		b.Metadata = b.Metadata.clone()
	}
	return b
}

// CloneBlocks deep-copies a block slice.
func CloneBlocks(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.Clone()
	}
	return out
}

// NewBlock returns a block of type t with default metadata.
func NewBlock(id string, t BlockType) Block {
	return Block{ID: id, Type: t, Metadata: DefaultMetadata(t)}
}
