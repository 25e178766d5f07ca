package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List documents, most recently edited first"),
		mcp.WithString("kind", mcp.Description("Filter by kind: article, changelog, roadmap (optional)")),
	), s.handleListDocuments)

	// ── create_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a document and make it the active one"),
		mcp.WithString("title", mcp.Description("Title"), mcp.Required()),
		mcp.WithString("kind", mcp.Description("article (default), changelog or roadmap")),
		mcp.WithString("markdown", mcp.Description("Initial Markdown body (optional)")),
	), s.handleCreateDocument)

	// ── open_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open a document for editing. Block tools default to it afterwards."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
	), s.handleOpenDocument)

	// ── import_markdown_file ───────────────────────────
	s.mcp.AddTool(mcp.NewTool("import_markdown_file",
		mcp.WithDescription("Import a Markdown file as a document. Later saves are written back to the file."),
		mcp.WithString("path", mcp.Description("Path to the .md file"), mcp.Required()),
		mcp.WithString("kind", mcp.Description("article (default), changelog or roadmap")),
	), s.handleImportMarkdownFile)

	// ── list_revisions ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_revisions",
		mcp.WithDescription("List the autosaved revisions of a document, newest first"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
	), s.handleListRevisions)

	// ── restore_revision ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("restore_revision",
		mcp.WithDescription("Replace the document body with an earlier revision"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to active document)")),
		mcp.WithString("revisionId", mcp.Description("Revision ID"), mcp.Required()),
	), s.handleRestoreRevision)

	// ── delete_document (destructive) ──────────────────
	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a document and its revisions. Requires user approval."),
		mcp.WithString("documentId", mcp.Description("Document ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteDocument)
}

func boolPtr(v bool) *bool { return &v }

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List(req.GetString("kind", ""))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	type documentSummary struct {
		ID    string `json:"id"`
		Kind  string `json:"kind"`
		Title string `json:"title"`
		File  string `json:"file,omitempty"`
	}
	out := make([]documentSummary, len(docs))
	for i, d := range docs {
		out[i] = documentSummary{ID: d.ID, Kind: string(d.Kind), Title: d.Title, File: d.FilePath}
	}
	return jsonResult(out)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	d, err := s.docs.Create(req.GetString("kind", ""), title, req.GetString("markdown", ""))
	if err != nil {
		return nil, err
	}
	s.setActive(d.ID)
	return jsonResult(d)
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	if _, err := s.docs.Open(id); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	state, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	s.setActive(id)

	summaries := make([]blockSummary, len(state.Blocks))
	for i, b := range state.Blocks {
		summaries[i] = summarizeBlock(b)
	}
	return jsonResult(map[string]any{
		"id":     state.Document.ID,
		"title":  state.Document.Title,
		"kind":   state.Document.Kind,
		"blocks": summaries,
	})
}

func (s *Server) handleImportMarkdownFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	d, err := s.docs.Import(path, req.GetString("kind", ""))
	if err != nil {
		return nil, err
	}
	s.setActive(d.ID)
	return jsonResult(d)
}

func (s *Server) handleListRevisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	revs, err := s.docs.Revisions(id)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return jsonResult(revs)
}

func (s *Server) handleRestoreRevision(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := s.resolveDocumentID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	rev := req.GetString("revisionId", "")
	if rev == "" {
		return nil, fmt.Errorf("revisionId is required")
	}
	if err := s.docs.RestoreRevision(id, rev); err != nil {
		return nil, err
	}
	s.emitBlocksChanged(ctx, id)
	return textResult(fmt.Sprintf("Restored revision %s", rev)), nil
}

func (s *Server) handleDeleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	state, err := s.docs.Get(id)
	if err != nil {
		return nil, err
	}
	approved, err := s.approval.Request("delete_document",
		fmt.Sprintf("Delete %s %q", state.Document.Kind, state.Document.Title),
		fmt.Sprintf(`{"documentId":%q}`, id))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	if err := s.docs.Delete(id); err != nil {
		return nil, fmt.Errorf("delete document: %w", err)
	}
	s.mu.Lock()
	if s.activeDocumentID == id {
		s.activeDocumentID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Document %s deleted", id)), nil
}
