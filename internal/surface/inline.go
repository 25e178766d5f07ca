package surface

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlinePolicy keeps the inline formatting the toolbar can produce and
// nothing else.
var inlinePolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "s", "strike", "del", "mark", "code", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(false)
	return p
}()

// SanitizeInline strips everything but inline formatting from markup.
func SanitizeInline(markup string) string {
	return inlinePolicy.Sanitize(markup)
}

var tagMarks = map[atom.Atom]Mark{
	atom.B:      MarkBold,
	atom.Strong: MarkBold,
	atom.I:      MarkItalic,
	atom.Em:     MarkItalic,
	atom.U:      MarkUnderline,
	atom.S:      MarkStrike,
	atom.Strike: MarkStrike,
	atom.Del:    MarkStrike,
	atom.Mark:   MarkHighlight,
	atom.Code:   MarkCode,
}

// PlainText returns the text of inline markup without its formatting.
func PlainText(markup string) string {
	var sb strings.Builder
	for _, sp := range ParseInline(markup) {
		sb.WriteString(sp.Text)
	}
	return sb.String()
}

// SplitInline cuts markup at a rune offset of its text. Formatting on
// either side of the cut stays with its half.
func SplitInline(markup string, offset int) (head, tail string) {
	b := &Buffer{}
	b.SetHTML(markup)
	offset = clamp(offset, 0, Len(b))
	b.splitAt(offset)
	var h, t Buffer
	acc := 0
	for _, sp := range b.spans {
		if acc < offset {
			h.spans = append(h.spans, sp)
		} else {
			t.spans = append(t.spans, sp)
		}
		acc += utf8.RuneCountInString(sp.Text)
	}
	h.normalize()
	t.normalize()
	return h.HTML(), t.HTML()
}

// ParseInline sanitizes markup and converts it into styled spans.
func ParseInline(markup string) []Span {
	z := xhtml.NewTokenizer(strings.NewReader(SanitizeInline(markup)))
	counts := map[Mark]int{}
	var hrefs []string
	var out []Span

	current := func() (Mark, string) {
		var m Mark
		for mark, n := range counts {
			if n > 0 {
				m |= mark
			}
		}
		href := ""
		if len(hrefs) > 0 {
			href = hrefs[len(hrefs)-1]
		}
		return m, href
	}

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			return out
		case xhtml.TextToken:
			m, href := current()
			out = append(out, Span{Text: string(z.Text()), Marks: m, Href: href})
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.Br {
				m, href := current()
				out = append(out, Span{Text: "\n", Marks: m, Href: href})
				continue
			}
			if tok.DataAtom == atom.A {
				href := ""
				for _, a := range tok.Attr {
					if a.Key == "href" {
						href = a.Val
					}
				}
				hrefs = append(hrefs, href)
				continue
			}
			if m, ok := tagMarks[tok.DataAtom]; ok && tt == xhtml.StartTagToken {
				counts[m]++
			}
		case xhtml.EndTagToken:
			tok := z.Token()
			if tok.DataAtom == atom.A {
				if len(hrefs) > 0 {
					hrefs = hrefs[:len(hrefs)-1]
				}
				continue
			}
			if m, ok := tagMarks[tok.DataAtom]; ok && counts[m] > 0 {
				counts[m]--
			}
		}
	}
}

// SetHTML replaces the content with parsed inline markup and drops the
// selection.
func (b *Buffer) SetHTML(markup string) {
	b.spans = ParseInline(markup)
	b.hasSel = false
	b.normalize()
}

var markTags = []struct {
	mark Mark
	tag  string
}{
	{MarkBold, "strong"},
	{MarkItalic, "em"},
	{MarkUnderline, "u"},
	{MarkStrike, "s"},
	{MarkHighlight, "mark"},
	{MarkCode, "code"},
}

// HTML renders the buffer as inline markup.
func (b *Buffer) HTML() string {
	var sb strings.Builder
	for _, s := range b.spans {
		if s.Text == "" {
			continue
		}
		if s.Href != "" {
			sb.WriteString(`<a href="` + xhtml.EscapeString(s.Href) + `">`)
		}
		for _, mt := range markTags {
			if s.Marks&mt.mark != 0 {
				sb.WriteString("<" + mt.tag + ">")
			}
		}
		sb.WriteString(strings.ReplaceAll(xhtml.EscapeString(s.Text), "\n", "<br>"))
		for i := len(markTags) - 1; i >= 0; i-- {
			if s.Marks&markTags[i].mark != 0 {
				sb.WriteString("</" + markTags[i].tag + ">")
			}
		}
		if s.Href != "" {
			sb.WriteString("</a>")
		}
	}
	return sb.String()
}
