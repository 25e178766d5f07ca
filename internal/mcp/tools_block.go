package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"blockedit/internal/blocks"
	"blockedit/internal/domain"
	"blockedit/internal/surface"

	"github.com/mark3labs/mcp-go/mcp"
	xhtml "golang.org/x/net/html"
)

func (s *Server) registerBlockTools() {
	docParam := mcp.WithString("documentId",
		mcp.Description("Document ID (optional, defaults to active document)"),
	)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List the blocks of a document in order, optionally filtered by type"),
		docParam,
		mcp.WithString("type", mcp.Description("Filter by block type (optional)")),
	), s.handleListBlocks)

	// ── add_block ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Insert a block after another one, or at the end"),
		docParam,
		mcp.WithString("type", mcp.Description("Block type: "+blockTypeNames()), mcp.Required()),
		mcp.WithString("afterBlockId", mcp.Description("Insert after this block (optional, appends when omitted)")),
		mcp.WithString("content", mcp.Description("Initial text (optional)")),
	), s.handleAddBlock)

	// ── update_block_content ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block_content",
		mcp.WithDescription("Replace the text of a block"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New text"), mcp.Required()),
		mcp.WithBoolean("html", mcp.Description("Treat content as inline HTML (strong, em, u, s, mark, code, a)")),
	), s.handleUpdateBlockContent)

	// ── set_block_metadata ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_block_metadata",
		mcp.WithDescription(`Replace a block's metadata. Shapes: lists {"items":[...]}, checkbox {"checked":true}, image {"url":"","caption":""}, code {"language":"go"}, callout {"variant":"info|warning|error|success"}`),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("metadata", mcp.Description("Metadata JSON"), mcp.Required()),
	), s.handleSetBlockMetadata)

	// ── split_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("split_block",
		mcp.WithDescription("Split a text block at a character offset, like pressing Enter there. Inline formatting is dropped."),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("offset", mcp.Description("Character offset"), mcp.Required()),
	), s.handleSplitBlock)

	// ── merge_block ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("merge_block",
		mcp.WithDescription("Merge a block into the previous one, like Backspace at its start"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
	), s.handleMergeBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Swap a block with its neighbor"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required()),
	), s.handleMoveBlock)

	// ── reorder_block ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_block",
		mcp.WithDescription("Drag a block and drop it onto another block's position"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block to move"), mcp.Required()),
		mcp.WithString("targetBlockId", mcp.Description("Block whose position it takes"), mcp.Required()),
	), s.handleReorderBlock)

	// ── retype_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("retype_block",
		mcp.WithDescription("Change a block's type, keeping its text where the new type has text"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("type", mcp.Description("Block type: "+blockTypeNames()), mcp.Required()),
	), s.handleRetypeBlock)

	// ── attach_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("attach_image",
		mcp.WithDescription("Embed an image file into an image block"),
		docParam,
		mcp.WithString("blockId", mcp.Description("Image block ID"), mcp.Required()),
		mcp.WithString("path", mcp.Description("Path to the image file"), mcp.Required()),
	), s.handleAttachImage)

	// ── delete_block (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a block. Requires user approval."),
		docParam,
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── clear_document (destructive) ───────────────────
	s.mcp.AddTool(mcp.NewTool("clear_document",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace every block with one empty paragraph. Requires user approval."),
		docParam,
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearDocument)
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, ed, err := s.editorForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	filter := req.GetString("type", "")
	summaries := []blockSummary{}
	for _, b := range ed.Blocks() {
		if filter != "" && string(b.Type) != filter {
			continue
		}
		summaries = append(summaries, summarizeBlock(b))
	}
	return jsonResult(summaries)
}

func parseType(v string) (domain.BlockType, error) {
	t := domain.BlockType(strings.TrimSpace(v))
	if !t.Valid() {
		return "", fmt.Errorf("unknown block type %q (want one of %s)", v, blockTypeNames())
	}
	return t, nil
}

// contentFor turns tool text into stored content for t.
func contentFor(t domain.BlockType, text string, html bool) string {
	switch {
	case t == domain.BlockTypeCode:
		return text
	case html:
		return surface.SanitizeInline(text)
	default:
		return xhtml.EscapeString(text)
	}
}

// setText writes text into a block the way its type stores it.
func setText(b domain.Block, text string, html bool) blocks.Patch {
	if b.Type.IsList() {
		items := strings.Split(text, "\n")
		for i := range items {
			items[i] = contentFor(b.Type, items[i], html)
		}
		return blocks.Patch{Metadata: domain.ListMeta{Items: items}}
	}
	content := contentFor(b.Type, text, html)
	return blocks.Patch{Content: &content}
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	t, err := parseType(req.GetString("type", ""))
	if err != nil {
		return nil, err
	}
	after := req.GetString("afterBlockId", "")
	if after == "" {
		if bs := ed.Blocks(); len(bs) > 0 {
			after = bs[len(bs)-1].ID
		}
	}
	id := ed.AddBlock(after, t)
	if text := req.GetString("content", ""); text != "" {
		if b, ok := ed.Block(id); ok && (domain.IsTextBearing(t) || t.IsList()) {
			ed.UpdateBlock(id, setText(b, text, false))
		}
	}
	s.emitBlocksChanged(ctx, docID)
	b, _ := ed.Block(id)
	return jsonResult(summarizeBlock(b))
}

func (s *Server) handleUpdateBlockContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	b, _ := ed.Block(id)
	if !domain.IsTextBearing(b.Type) && !b.Type.IsList() {
		return nil, fmt.Errorf("%s blocks have no text; use set_block_metadata", b.Type)
	}
	ed.UpdateBlock(id, setText(b, req.GetString("content", ""), req.GetBool("html", false)))
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Block %s updated", id)), nil
}

func (s *Server) handleSetBlockMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	b, _ := ed.Block(id)
	m, err := parseMetadata(b.Type, req.GetString("metadata", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid metadata: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%s blocks have no metadata", b.Type)
	}
	ed.SetMetadata(id, m)
	s.emitBlocksChanged(ctx, docID)
	b, _ = ed.Block(id)
	return jsonResult(summarizeBlock(b))
}

func (s *Server) handleSplitBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	next, ok := ed.SplitBlock(id, req.GetInt("offset", 0))
	if !ok {
		return nil, fmt.Errorf("block %s cannot be split", id)
	}
	s.emitBlocksChanged(ctx, docID)
	return jsonResult(map[string]string{"blockId": id, "newBlockId": next})
}

func (s *Server) handleMergeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	target, ok := ed.MergeBlock(id)
	if !ok {
		return textResult(fmt.Sprintf("Block %s was not merged", id)), nil
	}
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Merged into %s", target)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	var dir blocks.Direction
	switch strings.ToLower(req.GetString("direction", "")) {
	case "up":
		dir = blocks.Up
	case "down":
		dir = blocks.Down
	default:
		return nil, fmt.Errorf("direction must be up or down")
	}
	ed.MoveBlock(id, dir)
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Block %s moved %s", id, req.GetString("direction", ""))), nil
}

func (s *Server) handleReorderBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	target := req.GetString("targetBlockId", "")
	ed.DragStart(id)
	ed.DragOver(target)
	if !ed.Drop(target) {
		return nil, fmt.Errorf("cannot drop %s onto %q", id, target)
	}
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Block %s moved", id)), nil
}

func (s *Server) handleRetypeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	t, err := parseType(req.GetString("type", ""))
	if err != nil {
		return nil, err
	}
	ed.RetypeBlock(id, t)
	s.emitBlocksChanged(ctx, docID)
	b, _ := ed.Block(id)
	return jsonResult(summarizeBlock(b))
}

func (s *Server) handleAttachImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	if b, _ := ed.Block(id); b.Type != domain.BlockTypeImage {
		return nil, fmt.Errorf("block %s is a %s block, not an image", id, b.Type)
	}
	done, err := s.docs.AttachImage(docID, id, req.GetString("path", ""))
	if err != nil {
		return nil, err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Image attached to %s", id)), nil
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	docID, ed, err := s.editorForTool(args)
	if err != nil {
		return nil, err
	}
	id, err := blockIDArg(args, ed)
	if err != nil {
		return nil, err
	}
	b, _ := ed.Block(id)

	approved, err := s.approval.Request("delete_block",
		fmt.Sprintf("Delete %s block %s", b.Type, id),
		fmt.Sprintf(`{"blockIds":[%q]}`, id))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	ed.DeleteBlock(id)
	s.emitBlocksChanged(ctx, docID)
	return textResult(fmt.Sprintf("Block %s deleted", id)), nil
}

func (s *Server) handleClearDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docID, ed, err := s.editorForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	approved, err := s.approval.Request("clear_document",
		fmt.Sprintf("Clear all %d blocks", len(ed.Blocks())),
		fmt.Sprintf(`{"documentId":%q}`, docID))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	id := ed.ClearAll()
	s.emitBlocksChanged(ctx, docID)
	return jsonResult(map[string]string{"blockId": id})
}
