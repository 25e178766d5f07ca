package domain

import "encoding/json"

// Metadata is the type-specific payload of a block. The set of
// implementations is closed: ListMeta, CheckboxMeta, ImageMeta, CodeMeta
// and CalloutMeta. Paragraphs, headings and dividers carry nil.
type Metadata interface {
	kind() string
	clone() Metadata
}

type ListMeta struct {
	Items []string `json:"items"`
}

type CheckboxMeta struct {
	Checked bool `json:"checked"`
}

type ImageMeta struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type CodeMeta struct {
	Language string `json:"language"`
}

type CalloutMeta struct {
	Variant string `json:"variant"`
}

const (
	CalloutInfo    = "info"
	CalloutWarning = "warning"
	CalloutSuccess = "success"
	CalloutError   = "error"
)

func (ListMeta) kind() string     { return "list" }
func (CheckboxMeta) kind() string { return "checkbox" }
func (ImageMeta) kind() string    { return "image" }
func (CodeMeta) kind() string     { return "code" }
func (CalloutMeta) kind() string  { return "callout" }

func (m ListMeta) clone() Metadata {
	m.Items = append([]string(nil), m.Items...)
	return m
}
func (m CheckboxMeta) clone() Metadata { return m }
func (m ImageMeta) clone() Metadata    { return m }
func (m CodeMeta) clone() Metadata     { return m }
func (m CalloutMeta) clone() Metadata  { return m }

// CloneMetadata deep-copies m. Nil stays nil.
func CloneMetadata(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	return m.clone()
}

// DefaultMetadata returns the metadata a fresh block of type t starts with.
func DefaultMetadata(t BlockType) Metadata {
	switch t {
	case BlockTypeBulletList, BlockTypeOrderedList:
		return ListMeta{Items: []string{""}}
	case BlockTypeCheckbox:
		return CheckboxMeta{}
	case BlockTypeImage:
		return ImageMeta{}
	case BlockTypeCode:
		return CodeMeta{}
	case BlockTypeCallout:
		return CalloutMeta{Variant: CalloutInfo}
	case BlockTypeParagraph, BlockTypeHeading1, BlockTypeHeading2, BlockTypeHeading3, BlockTypeDivider:
		return nil
	}
	return nil
}

// metadataKind is the Metadata.kind a block of type t must carry, or "".
func metadataKind(t BlockType) string {
	if m := DefaultMetadata(t); m != nil {
		return m.kind()
	}
	return ""
}

// Normalize makes b's metadata match its type: mismatched or missing
// metadata is replaced by the default, and list metadata always keeps at
// least one item.
func Normalize(b Block) Block {
	want := metadataKind(b.Type)
	switch {
	case want == "":
		b.Metadata = nil
	case b.Metadata == nil || b.Metadata.kind() != want:
		b.Metadata = DefaultMetadata(b.Type)
	}
	if lm, ok := b.Metadata.(ListMeta); ok && len(lm.Items) == 0 {
		b.Metadata = ListMeta{Items: []string{""}}
	}
	if cm, ok := b.Metadata.(CalloutMeta); ok && cm.Variant == "" {
		b.Metadata = CalloutMeta{Variant: CalloutInfo}
	}
	return b
}

// ── JSON ───────────────────────────────────────────────────

type blockJSON struct {
	ID       string          `json:"id"`
	Type     BlockType       `json:"type"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// UnmarshalJSON decodes metadata into the variant matching the block type.
func (b *Block) UnmarshalJSON(data []byte) error {
	var raw blockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.ID, b.Type, b.Content, b.Metadata = raw.ID, raw.Type, raw.Content, nil
	if len(raw.Metadata) > 0 && string(raw.Metadata) != "null" {
		var err error
		switch b.Type {
		case BlockTypeBulletList, BlockTypeOrderedList:
			var m ListMeta
			err = json.Unmarshal(raw.Metadata, &m)
			b.Metadata = m
		case BlockTypeCheckbox:
			var m CheckboxMeta
			err = json.Unmarshal(raw.Metadata, &m)
			b.Metadata = m
		case BlockTypeImage:
			var m ImageMeta
			err = json.Unmarshal(raw.Metadata, &m)
			b.Metadata = m
		case BlockTypeCode:
			var m CodeMeta
			err = json.Unmarshal(raw.Metadata, &m)
			b.Metadata = m
		case BlockTypeCallout:
			var m CalloutMeta
			err = json.Unmarshal(raw.Metadata, &m)
			b.Metadata = m
		}
		if err != nil {
			return err
		}
	}
	*b = Normalize(*b)
	return nil
}
