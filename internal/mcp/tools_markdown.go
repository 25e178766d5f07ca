package mcpserver

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/mark3labs/mcp-go/mcp"

	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/editor"
	"blockedit/internal/locale"
	"blockedit/internal/menu"
	"blockedit/internal/paste"
)

// Clipboard access, replaced in tests.
var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

func (s *Server) registerMarkdownTools() {
	s.mcp.AddTool(mcp.NewTool("paste_text",
		mcp.WithDescription("Paste text into a block. Structured Markdown (headings, lists, fences, paragraphs) becomes separate blocks replacing it; plain text is appended."),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("blockId", mcp.Description("Block to paste into"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Text to paste"), mcp.Required()),
	), s.handlePasteText)

	s.mcp.AddTool(mcp.NewTool("paste_clipboard",
		mcp.WithDescription("Paste the system clipboard into a block, like paste_text"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("blockId", mcp.Description("Block to paste into"), mcp.Required()),
	), s.handlePasteClipboard)

	s.mcp.AddTool(mcp.NewTool("export_markdown",
		mcp.WithDescription("Return a document as Markdown, optionally writing it to a file or the clipboard"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("path", mcp.Description("File to write (optional); relative paths land in the data directory")),
		mcp.WithBoolean("clipboard", mcp.Description("Also copy to the system clipboard")),
	), s.handleExportMarkdown)

	s.mcp.AddTool(mcp.NewTool("search_block_types",
		mcp.WithDescription("List the block types offered by the insert menu, filtered by a search string"),
		mcp.WithString("search", mcp.Description("Case-insensitive label filter (optional)")),
		mcp.WithString("locale", mcp.Description("Label language, e.g. en, pt-BR, es (optional)")),
	), s.handleSearchBlockTypes)
}

func (s *Server) handlePasteText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.paste(ctx, req, req.GetString("text", ""))
}

func (s *Server) handlePasteClipboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := readClipboard()
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	return s.paste(ctx, req, text)
}

func (s *Server) paste(ctx context.Context, req mcp.CallToolRequest, text string) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return textResult("Nothing to paste"), nil
	}

	kind := paste.Classify(text)
	if kind == paste.Structured && ed.Paste(id, text) {
		s.emitBlocksChanged(ctx, docID)
		return s.blocksResult(ed)
	}
	b, _ := ed.Block(id)
	if !domain.IsTextBearing(b.Type) {
		return nil, fmt.Errorf("cannot paste plain text into a %s block", b.Type)
	}
	content := b.Content + contentFor(b.Type, text, false)
	ed.UpdateBlock(id, blocks.Patch{Content: &content})
	s.emitBlocksChanged(ctx, docID)
	return s.blocksResult(ed)
}

func (s *Server) blocksResult(ed *editor.Editor) (*mcp.CallToolResult, error) {
	bs := ed.Blocks()
	summaries := make([]blockSummary, len(bs))
	for i, b := range bs {
		summaries[i] = summarizeBlock(b)
	}
	return jsonResult(summaries)
}

func (s *Server) handleExportMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	text, err := s.docs.Text(id)
	if err != nil {
		return nil, err
	}
	if path := req.GetString("path", ""); path != "" {
		if err := s.docs.Export(id, path); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	if req.GetBool("clipboard", false) {
		if err := writeClipboard(text); err != nil {
			return nil, fmt.Errorf("write clipboard: %w", err)
		}
	}
	return textResult(text), nil
}

func (s *Server) handleSearchBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loc := req.GetString("locale", s.locale)
	m := menu.New(locale.Labeler(loc))
	m.Open("")
	m.SetSearch(req.GetString("search", ""), nil)

	type option struct {
		Type        string `json:"type"`
		Label       string `json:"label"`
		Placeholder string `json:"placeholder,omitempty"`
	}
	out := []option{}
	for _, o := range m.Options(nil) {
		out = append(out, option{
			Type:        string(o.Type),
			Label:       o.Label,
			Placeholder: locale.PlaceholderFor(o.Type, loc),
		})
	}
	return jsonResult(out)
}
