package mcpserver

import (
	"encoding/json"
	"strings"

	"blockedit/internal/domain"
	"blockedit/internal/surface"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// parseMetadata decodes metadata JSON into the variant for t.
func parseMetadata(t domain.BlockType, data string) (domain.Metadata, error) {
	raw := json.RawMessage(data)
	env, err := json.Marshal(map[string]any{"type": t, "metadata": raw})
	if err != nil {
		return nil, err
	}
	var b domain.Block
	if err := parseJSON(string(env), &b); err != nil {
		return nil, err
	}
	return b.Metadata, nil
}

type blockSummary struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Metadata domain.Metadata `json:"metadata,omitempty"`
}

// summarizeBlock shows the plain text of a block; agents rarely need the
// inline markup.
func summarizeBlock(b domain.Block) blockSummary {
	text := b.Content
	if b.Type != domain.BlockTypeCode {
		text = surface.PlainText(b.Content)
	}
	return blockSummary{
		ID:       b.ID,
		Type:     string(b.Type),
		Text:     text,
		Metadata: b.Metadata,
	}
}

func blockTypeNames() string {
	names := make([]string, len(domain.BlockTypes))
	for i, t := range domain.BlockTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
