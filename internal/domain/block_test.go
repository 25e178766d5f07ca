package domain_test

import (
	"encoding/json"
	"testing"

	"blockedit/internal/domain"
)

func TestDefaultMetadata_EveryType(t *testing.T) {
	for _, bt := range domain.BlockTypes {
		m := domain.DefaultMetadata(bt)
		switch bt {
		case domain.BlockTypeBulletList, domain.BlockTypeOrderedList:
			lm, ok := m.(domain.ListMeta)
			if !ok || len(lm.Items) != 1 {
				t.Errorf("%s: expected one empty list item, got %#v", bt, m)
			}
		case domain.BlockTypeCheckbox:
			if _, ok := m.(domain.CheckboxMeta); !ok {
				t.Errorf("%s: expected CheckboxMeta, got %#v", bt, m)
			}
		case domain.BlockTypeImage:
			if _, ok := m.(domain.ImageMeta); !ok {
				t.Errorf("%s: expected ImageMeta, got %#v", bt, m)
			}
		case domain.BlockTypeCode:
			if _, ok := m.(domain.CodeMeta); !ok {
				t.Errorf("%s: expected CodeMeta, got %#v", bt, m)
			}
		case domain.BlockTypeCallout:
			cm, ok := m.(domain.CalloutMeta)
			if !ok || cm.Variant != domain.CalloutInfo {
				t.Errorf("%s: expected info callout, got %#v", bt, m)
			}
		default:
			if m != nil {
				t.Errorf("%s: expected nil metadata, got %#v", bt, m)
			}
		}
	}
}

func TestNormalize_DropsMismatchedMetadata(t *testing.T) {
	b := domain.Block{ID: "b1", Type: domain.BlockTypeParagraph, Metadata: domain.ListMeta{Items: []string{"a"}}}
	if got := domain.Normalize(b); got.Metadata != nil {
		t.Errorf("expected list items dropped for paragraph, got %#v", got.Metadata)
	}

	b = domain.Block{ID: "b2", Type: domain.BlockTypeCode, Metadata: domain.CheckboxMeta{Checked: true}}
	if got := domain.Normalize(b); got.Metadata != (domain.CodeMeta{}) {
		t.Errorf("expected default code metadata, got %#v", got.Metadata)
	}
}

func TestNormalize_ListKeepsOneItem(t *testing.T) {
	b := domain.Block{ID: "b1", Type: domain.BlockTypeBulletList, Metadata: domain.ListMeta{}}
	got := domain.Normalize(b).Metadata.(domain.ListMeta)
	if len(got.Items) != 1 || got.Items[0] != "" {
		t.Errorf("expected [\"\"], got %#v", got.Items)
	}
}

func TestIsTextBearing(t *testing.T) {
	text := map[domain.BlockType]bool{
		domain.BlockTypeParagraph: true,
		domain.BlockTypeHeading1:  true,
		domain.BlockTypeHeading2:  true,
		domain.BlockTypeHeading3:  true,
		domain.BlockTypeCheckbox:  true,
		domain.BlockTypeCode:      true,
		domain.BlockTypeCallout:   true,
	}
	for _, bt := range domain.BlockTypes {
		if got := domain.IsTextBearing(bt); got != text[bt] {
			t.Errorf("IsTextBearing(%s) = %v", bt, got)
		}
	}
	if domain.IsTextBearing(domain.BlockTypeImage) || domain.IsTextBearing(domain.BlockTypeBulletList) {
		t.Error("image and list blocks must not be text-bearing")
	}
}

func TestBlock_JSONKeepsMetadataVariant(t *testing.T) {
	in := []domain.Block{
		{ID: "a", Type: domain.BlockTypeOrderedList, Metadata: domain.ListMeta{Items: []string{"one", "two"}}},
		{ID: "b", Type: domain.BlockTypeImage, Metadata: domain.ImageMeta{URL: "https://x/y.png", Caption: "y"}},
		{ID: "c", Type: domain.BlockTypeParagraph, Content: "hi"},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out []domain.Block
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if lm, ok := out[0].Metadata.(domain.ListMeta); !ok || len(lm.Items) != 2 {
		t.Errorf("list metadata lost: %#v", out[0].Metadata)
	}
	if im, ok := out[1].Metadata.(domain.ImageMeta); !ok || im.Caption != "y" {
		t.Errorf("image metadata lost: %#v", out[1].Metadata)
	}
	if out[2].Metadata != nil || out[2].Content != "hi" {
		t.Errorf("paragraph changed: %#v", out[2])
	}
}

func TestClone_IsDeep(t *testing.T) {
	b := domain.Block{ID: "a", Type: domain.BlockTypeBulletList, Metadata: domain.ListMeta{Items: []string{"x"}}}
	c := b.Clone()
	c.Metadata.(domain.ListMeta).Items[0] = "changed"
	if b.Metadata.(domain.ListMeta).Items[0] != "x" {
		t.Error("Clone shared list items with the original")
	}
}
