package markup

import (
	"fmt"
	"strings"

	"blockedit/internal/domain"
	"blockedit/internal/surface"
)

// BlocksToText encodes blocks as markdown, one block per paragraph. Empty
// paragraphs are dropped; a document of only empty paragraphs encodes to
// the empty string.
func BlocksToText(blocks []domain.Block) string {
	var parts []string
	for _, b := range blocks {
		if s := encodeBlock(domain.Normalize(b)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

func encodeBlock(b domain.Block) string {
	switch b.Type {
	case domain.BlockTypeParagraph:
		return escapeLineStarts(inlineMarkdown(b.Content))
	case domain.BlockTypeHeading1:
		return "# " + singleLine(inlineMarkdown(b.Content))
	case domain.BlockTypeHeading2:
		return "## " + singleLine(inlineMarkdown(b.Content))
	case domain.BlockTypeHeading3:
		return "### " + singleLine(inlineMarkdown(b.Content))
	case domain.BlockTypeBulletList, domain.BlockTypeOrderedList:
		meta, _ := b.Metadata.(domain.ListMeta)
		lines := make([]string, len(meta.Items))
		for i, item := range meta.Items {
			marker := "- "
			if b.Type == domain.BlockTypeOrderedList {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			lines[i] = strings.TrimRight(marker+singleLine(inlineMarkdown(item)), " ")
		}
		return strings.Join(lines, "\n")
	case domain.BlockTypeCheckbox:
		meta, _ := b.Metadata.(domain.CheckboxMeta)
		box := "- [ ] "
		if meta.Checked {
			box = "- [x] "
		}
		return box + singleLine(inlineMarkdown(b.Content))
	case domain.BlockTypeImage:
		meta, _ := b.Metadata.(domain.ImageMeta)
		if meta.URL == "" && meta.Caption == "" {
			return ""
		}
		return "![" + escapeText(meta.Caption) + "](" + destination(meta.URL) + ")"
	case domain.BlockTypeCode:
		meta, _ := b.Metadata.(domain.CodeMeta)
		fence := strings.Repeat("`", max(3, longestRun(b.Content, '`')+1))
		return fence + meta.Language + "\n" + b.Content + "\n" + fence
	case domain.BlockTypeCallout:
		meta, _ := b.Metadata.(domain.CalloutMeta)
		kw, ok := calloutKeywords[meta.Variant]
		if !ok {
			kw = "NOTE"
		}
		var sb strings.Builder
		sb.WriteString("> [!" + kw + "]")
		for i, line := range strings.Split(inlineMarkdown(b.Content), "\n") {
			if i > 0 {
				sb.WriteString("\n>")
			}
			if line != "" {
				sb.WriteString("\n> " + escapeLineStart(line))
			}
		}
		return sb.String()
	case domain.BlockTypeDivider:
		return "---"
	}
	return ""
}

// ── Inline ─────────────────────────────────────────────────

var spanWrappers = []struct {
	mark        surface.Mark
	open, close string
}{
	{surface.MarkBold, "**", "**"},
	{surface.MarkItalic, "*", "*"},
	{surface.MarkStrike, "~~", "~~"},
	{surface.MarkUnderline, "<u>", "</u>"},
	{surface.MarkHighlight, "<mark>", "</mark>"},
}

// inlineMarkdown converts surface inline HTML to markdown. Line breaks are
// returned as bare newlines; callers decide how to encode them.
func inlineMarkdown(content string) string {
	var sb strings.Builder
	for _, s := range mergeSpans(surface.ParseInline(content)) {
		lead, core, trail := splitSpace(s.Text)
		sb.WriteString(lead)
		if core != "" {
			var text string
			if s.Marks&surface.MarkCode != 0 {
				text = codeSpan(core)
			} else {
				text = escapeText(core)
			}
			var open, close string
			for _, w := range spanWrappers {
				if s.Marks&w.mark != 0 {
					open += w.open
					close = w.close + close
				}
			}
			text = open + text + close
			if s.Href != "" {
				text = "[" + text + "](" + destination(s.Href) + ")"
			}
			sb.WriteString(text)
		}
		sb.WriteString(trail)
	}
	return strings.TrimSpace(sb.String())
}

func mergeSpans(spans []surface.Span) []surface.Span {
	var out []surface.Span
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if k := len(out) - 1; k >= 0 && out[k].Marks == s.Marks && out[k].Href == s.Href {
			out[k].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

func splitSpace(s string) (lead, core, trail string) {
	core = strings.TrimLeft(s, " \t\n")
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRight(core, " \t\n")
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`~`, `\~`,
	`&`, `\&`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// escapeLineStarts keeps paragraph lines from reading as headings, list
// items or thematic breaks, and encodes line breaks as hard breaks.
func escapeLineStarts(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = escapeLineStart(line)
	}
	return strings.Join(lines, "\\\n")
}

func escapeLineStart(line string) string {
	if line == "" {
		return line
	}
	switch line[0] {
	case '#', '-', '+', '=':
		return `\` + line
	}
	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		return line[:digits] + `\` + line[digits:]
	}
	return line
}

func singleLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func codeSpan(s string) string {
	fence := strings.Repeat("`", longestRun(s, '`')+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}

func destination(url string) string {
	if strings.ContainsAny(url, " ()") {
		return "<" + url + ">"
	}
	return url
}

func longestRun(s string, c rune) int {
	best, run := 0, 0
	for _, r := range s {
		if r == c {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	return best
}
