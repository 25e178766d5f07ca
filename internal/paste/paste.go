// Package paste decides whether pasted text should be broken into blocks
// or left to the host's default paste.
package paste

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind is the outcome of Classify.
type Kind int

const (
	// Plain text is pasted by the host inside the current block.
	Plain Kind = iota
	// Structured text replaces the current block with decoded blocks.
	Structured
)

func (k Kind) String() string {
	if k == Structured {
		return "structured"
	}
	return "plain"
}

// MinStructuredLen is the rune length text must exceed to be decomposed.
const MinStructuredLen = 50

var (
	headingRe  = regexp.MustCompile(`(?m)^#{1,2} `)
	bulletRe   = regexp.MustCompile(`(?m)^[-*] `)
	numberedRe = regexp.MustCompile(`(?m)^\d+\. `)
	// a line holding only spaces or tabs still separates paragraphs
	blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// Classify reports whether text looks like structured markup.
func Classify(text string) Kind {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if utf8.RuneCountInString(text) <= MinStructuredLen {
		return Plain
	}
	switch {
	case headingRe.MatchString(text),
		strings.Contains(text, "```"),
		bulletRe.MatchString(text),
		numberedRe.MatchString(text),
		blankLineRe.MatchString(text):
		return Structured
	}
	return Plain
}
