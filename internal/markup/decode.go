package markup

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	xhtml "golang.org/x/net/html"

	"blockedit/internal/domain"
	"blockedit/internal/surface"
)

// TextToBlocks decodes markdown into blocks. Empty input yields a single
// empty paragraph.
func TextToBlocks(src string, opts Options) []domain.Block {
	d := &decoder{source: []byte(src)}
	doc := md.Parser().Parse(text.NewReader(d.source))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		d.block(n)
	}
	if len(d.out) == 0 {
		d.emit(domain.BlockTypeParagraph, "", nil)
	}
	for i := range d.out {
		d.out[i] = domain.Normalize(d.out[i])
		d.out[i].ID = blockID(opts, i, d.out[i])
	}
	return d.out
}

type decoder struct {
	source []byte
	out    []domain.Block
}

func (d *decoder) emit(t domain.BlockType, content string, meta domain.Metadata) {
	d.out = append(d.out, domain.Block{Type: t, Content: content, Metadata: meta})
}

func (d *decoder) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		d.emit(headingType(n.Level), d.inline(n), nil)
	case *ast.Paragraph:
		if img, ok := loneImage(n); ok {
			d.emit(domain.BlockTypeImage, "", domain.ImageMeta{
				URL:     string(img.Destination),
				Caption: d.plain(img),
			})
			return
		}
		d.emit(domain.BlockTypeParagraph, d.inline(n), nil)
	case *ast.List:
		d.list(n)
	case *ast.FencedCodeBlock:
		d.emit(domain.BlockTypeCode, d.lines(n), domain.CodeMeta{Language: string(n.Language(d.source))})
	case *ast.CodeBlock:
		d.emit(domain.BlockTypeCode, d.lines(n), domain.CodeMeta{})
	case *ast.Blockquote:
		d.callout(n)
	case *ast.ThematicBreak:
		d.emit(domain.BlockTypeDivider, "", nil)
	case *ast.HTMLBlock:
		if s := surface.SanitizeInline(strings.TrimSpace(d.lines(n))); s != "" {
			d.emit(domain.BlockTypeParagraph, s, nil)
		}
	default:
		// tables and anything else GFM adds end up as plain paragraphs
		if t := strings.TrimSpace(d.plain(n)); t != "" {
			d.emit(domain.BlockTypeParagraph, strings.ReplaceAll(xhtml.EscapeString(t), "\n", "<br>"), nil)
		}
	}
}

func headingType(level int) domain.BlockType {
	switch level {
	case 1:
		return domain.BlockTypeHeading1
	case 2:
		return domain.BlockTypeHeading2
	default:
		return domain.BlockTypeHeading3
	}
}

func loneImage(p *ast.Paragraph) (*ast.Image, bool) {
	c := p.FirstChild()
	if c == nil || c.NextSibling() != nil {
		return nil, false
	}
	img, ok := c.(*ast.Image)
	return img, ok
}

// ── Lists ──────────────────────────────────────────────────

// list emits one list block per run of plain items. Task items become
// checkbox blocks and split the run. Nested lists are flattened into the
// enclosing list's items.
func (d *decoder) list(n *ast.List) {
	t := domain.BlockTypeBulletList
	if n.IsOrdered() {
		t = domain.BlockTypeOrderedList
	}
	var items []string
	flush := func() {
		if len(items) > 0 {
			d.emit(t, "", domain.ListMeta{Items: items})
			items = nil
		}
	}
	for li := n.FirstChild(); li != nil; li = li.NextSibling() {
		if box, ok := taskBox(li); ok {
			flush()
			d.emit(domain.BlockTypeCheckbox, d.itemText(li), domain.CheckboxMeta{Checked: box.IsChecked})
			continue
		}
		items = append(items, d.itemText(li))
		items = append(items, d.nestedItems(li)...)
	}
	flush()
}

func taskBox(li ast.Node) (*extast.TaskCheckBox, bool) {
	first := li.FirstChild()
	if first == nil || first.FirstChild() == nil {
		return nil, false
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	return box, ok
}

func (d *decoder) itemText(li ast.Node) string {
	var parts []string
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if _, ok := c.(*ast.List); ok {
			continue
		}
		if s := d.inline(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (d *decoder) nestedItems(li ast.Node) []string {
	var out []string
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		sub, ok := c.(*ast.List)
		if !ok {
			continue
		}
		for item := sub.FirstChild(); item != nil; item = item.NextSibling() {
			out = append(out, d.itemText(item))
			out = append(out, d.nestedItems(item)...)
		}
	}
	return out
}

// ── Callouts ───────────────────────────────────────────────

func (d *decoder) callout(bq *ast.Blockquote) {
	variant := domain.CalloutInfo
	var parts []string
	for c := bq.FirstChild(); c != nil; c = c.NextSibling() {
		p, ok := c.(*ast.Paragraph)
		if !ok {
			if t := strings.TrimSpace(d.plain(c)); t != "" {
				parts = append(parts, xhtml.EscapeString(t))
			}
			continue
		}
		if c == bq.FirstChild() {
			if v, rest, ok := d.alert(p); ok {
				variant = v
				if rest != "" {
					parts = append(parts, rest)
				}
				continue
			}
		}
		parts = append(parts, d.inline(p))
	}
	d.emit(domain.BlockTypeCallout, strings.Join(parts, "<br>"), domain.CalloutMeta{Variant: variant})
}

// alert recognizes a leading "[!NOTE]" style marker line. The rest of the
// paragraph is decoded on its own.
func (d *decoder) alert(p *ast.Paragraph) (variant, rest string, ok bool) {
	lines := p.Lines()
	if lines.Len() == 0 {
		return "", "", false
	}
	seg := lines.At(0)
	first := strings.TrimSpace(string(seg.Value(d.source)))
	if !strings.HasPrefix(first, "[!") || !strings.HasSuffix(first, "]") {
		return "", "", false
	}
	variant, ok = calloutMarkers[strings.ToUpper(first[2:len(first)-1])]
	if !ok {
		return "", "", false
	}
	var buf bytes.Buffer
	for i := 1; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(d.source))
	}
	return variant, inlineFragment(buf.String()), true
}

func inlineFragment(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	sub := &decoder{source: []byte(src)}
	doc := md.Parser().Parse(text.NewReader(sub.source))
	var parts []string
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if s := sub.inline(c); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "<br>")
}

// ── Inline ─────────────────────────────────────────────────

// inline renders the children of n as the inline HTML the editing surface
// understands.
func (d *decoder) inline(n ast.Node) string {
	var sb strings.Builder
	d.children(&sb, n)
	return surface.SanitizeInline(strings.TrimSpace(sb.String()))
}

func (d *decoder) children(sb *strings.Builder, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		d.renderInline(sb, c)
	}
}

func (d *decoder) wrap(sb *strings.Builder, tag string, n ast.Node) {
	sb.WriteString("<" + tag + ">")
	d.children(sb, n)
	sb.WriteString("</" + tag + ">")
}

func (d *decoder) renderInline(sb *strings.Builder, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		v := n.Segment.Value(d.source)
		if n.HardLineBreak() {
			v = bytes.TrimRight(v, " \\")
		}
		sb.WriteString(xhtml.EscapeString(string(unescape(v))))
		switch {
		case n.HardLineBreak():
			sb.WriteString("<br>")
		case n.SoftLineBreak():
			sb.WriteByte(' ')
		}
	case *ast.String:
		sb.WriteString(xhtml.EscapeString(string(n.Value)))
	case *ast.CodeSpan:
		sb.WriteString("<code>")
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.Text:
				sb.WriteString(xhtml.EscapeString(string(c.Segment.Value(d.source))))
			case *ast.String:
				sb.WriteString(xhtml.EscapeString(string(c.Value)))
			}
		}
		sb.WriteString("</code>")
	case *ast.Emphasis:
		if n.Level >= 2 {
			d.wrap(sb, "strong", n)
		} else {
			d.wrap(sb, "em", n)
		}
	case *extast.Strikethrough:
		d.wrap(sb, "s", n)
	case *ast.Link:
		sb.WriteString(`<a href="` + xhtml.EscapeString(string(n.Destination)) + `">`)
		d.children(sb, n)
		sb.WriteString("</a>")
	case *ast.AutoLink:
		url := string(n.URL(d.source))
		if n.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(url, "mailto:") {
			url = "mailto:" + url
		}
		sb.WriteString(`<a href="` + xhtml.EscapeString(url) + `">`)
		sb.WriteString(xhtml.EscapeString(string(n.Label(d.source))))
		sb.WriteString("</a>")
	case *ast.Image:
		sb.WriteString(xhtml.EscapeString(d.plain(n)))
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(d.source))
		}
	case *extast.TaskCheckBox:
	default:
		d.children(sb, n)
	}
}

// plain collects the text under n without any formatting.
func (d *decoder) plain(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch c.(type) {
			case *extast.TableCell:
				sb.WriteByte(' ')
			case *extast.TableHeader, *extast.TableRow:
				sb.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			sb.Write(unescape(c.Segment.Value(d.source)))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func (d *decoder) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(d.source))
	}
	return strings.TrimRight(buf.String(), "\r\n")
}

func unescape(v []byte) []byte {
	v = append([]byte(nil), v...)
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(v)))
}
