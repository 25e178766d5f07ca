// Package markup converts between blocks and their persisted markdown form.
// Text-bearing block content is inline HTML as produced by the editing
// surface; it is translated to and from markdown inline syntax here.
package markup

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"blockedit/internal/domain"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// idSpace namespaces deterministic block ids.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blockedit:block"))

// Options tunes TextToBlocks.
type Options struct {
	// Deterministic derives ids from position and content so that decoding
	// the same text twice yields the same ids.
	Deterministic bool
}

// calloutMarkers map the GitHub alert keywords onto callout variants.
var calloutMarkers = map[string]string{
	"NOTE":      domain.CalloutInfo,
	"IMPORTANT": domain.CalloutInfo,
	"TIP":       domain.CalloutSuccess,
	"WARNING":   domain.CalloutWarning,
	"CAUTION":   domain.CalloutError,
}

var calloutKeywords = map[string]string{
	domain.CalloutInfo:    "NOTE",
	domain.CalloutSuccess: "TIP",
	domain.CalloutWarning: "WARNING",
	domain.CalloutError:   "CAUTION",
}

func blockID(opts Options, index int, b domain.Block) string {
	if !opts.Deterministic {
		return uuid.NewString()
	}
	key := fmt.Sprintf("%d\x00%s\x00%s", index, b.Type, b.Content)
	return uuid.NewSHA1(idSpace, []byte(key)).String()
}

// Codec exposes the package functions as a value, for callers that take
// their codec as a dependency.
type Codec struct{}

func (Codec) TextToBlocks(text string, deterministic bool) []domain.Block {
	return TextToBlocks(text, Options{Deterministic: deterministic})
}

func (Codec) BlocksToText(blocks []domain.Block) string {
	return BlocksToText(blocks)
}
