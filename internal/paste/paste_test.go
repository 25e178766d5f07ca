package paste_test

import (
	"strings"
	"testing"

	"blockedit/internal/paste"
)

func TestClassify(t *testing.T) {
	long := strings.Repeat("word ", 12) // 60 runes, no markers
	cases := []struct {
		name string
		text string
		want paste.Kind
	}{
		{"heading and blank line", "# Title\n\nBody text here that is definitely over fifty characters long", paste.Structured},
		{"short reply", "short reply", paste.Plain},
		{"short but marked", "# Hi\n\nthere", paste.Plain},
		{"long plain", long, paste.Plain},
		{"level two heading", long + "\n## Next", paste.Structured},
		{"level three heading only", long + "\n### Deep", paste.Plain},
		{"fenced code", long + "\n```go\nx\n```", paste.Structured},
		{"dash bullet", long + "\n- item", paste.Structured},
		{"star bullet", long + "\n* item", paste.Structured},
		{"numbered", long + "\n12. item", paste.Structured},
		{"crlf paragraphs", long + "\r\n\r\nmore", paste.Structured},
		{"whitespace-only separator", long + "\n  \t\nmore", paste.Structured},
		{"crlf whitespace separator", long + "\r\n \r\nmore", paste.Structured},
		{"indented continuation", long + "\n  more", paste.Plain},
		{"hash mid line", long + " #1 issue", paste.Plain},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := paste.Classify(c.text); got != c.want {
				t.Errorf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestClassify_CountsRunes(t *testing.T) {
	// 62 bytes but only 32 runes
	text := strings.Repeat("é", 30) + "\n\n"
	if got := paste.Classify(text); got != paste.Plain {
		t.Errorf("expected plain, got %s", got)
	}
}
