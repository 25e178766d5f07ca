package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"blockedit/internal/editor"
	"blockedit/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for blockedit.
// It exposes tools, resources, and prompts so AI agents can edit documents
// block by block through the same editor the UI uses.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue

	docs   *service.DocumentService
	locale string

	// Active document context (set by open_document)
	mu               sync.Mutex
	activeDocumentID string
}

// Deps holds all dependencies passed from the app layer to the MCP server.
type Deps struct {
	Emitter   EventEmitter
	Documents *service.DocumentService
	Locale    string
	// AutoApprove skips the approval round trip for destructive tools.
	AutoApprove bool
	// Approvals, when set, keeps pending approvals in SQLite so another
	// process can answer them.
	Approvals ApprovalStore
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	approval.SetAutoApprove(deps.AutoApprove)
	if deps.Approvals != nil {
		approval.SetStore(deps.Approvals)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		docs:     deps.Documents,
		locale:   deps.Locale,
	}

	s.mcp = server.NewMCPServer(
		"blockedit-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerBlockTools()
	s.registerMarkdownTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// emitBlocksChanged notifies listeners that a document's blocks changed.
func (s *Server) emitBlocksChanged(ctx context.Context, documentID string) {
	s.emitter.Emit(ctx, "mcp:blocks-changed", map[string]string{"documentId": documentID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func (s *Server) setActive(id string) {
	s.mu.Lock()
	s.activeDocumentID = id
	s.mu.Unlock()
}

// resolveDocumentID returns the documentId from tool args or falls back to
// the active document.
func (s *Server) resolveDocumentID(args map[string]any) (string, error) {
	if id, ok := args["documentId"].(string); ok && id != "" {
		return id, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeDocumentID != "" {
		return s.activeDocumentID, nil
	}
	return "", fmt.Errorf("no documentId provided and no active document (use open_document first)")
}

// editorForTool opens the document a tool call targets.
func (s *Server) editorForTool(args map[string]any) (string, *editor.Editor, error) {
	id, err := s.resolveDocumentID(args)
	if err != nil {
		return "", nil, err
	}
	ed, err := s.docs.Open(id)
	if err != nil {
		return "", nil, fmt.Errorf("open document: %w", err)
	}
	return id, ed, nil
}

// blockIDArg returns the required blockId argument, checked against ed.
func blockIDArg(args map[string]any, ed *editor.Editor) (string, error) {
	id, _ := args["blockId"].(string)
	if id == "" {
		return "", fmt.Errorf("blockId is required")
	}
	if _, ok := ed.Block(id); !ok {
		return "", fmt.Errorf("block %s not found", id)
	}
	return id, nil
}
