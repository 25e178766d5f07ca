package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── blockedit://documents ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"blockedit://documents",
		"All Documents",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── blockedit://document/{documentId}/markdown ─────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"blockedit://document/{documentId}/markdown",
			"Document as Markdown",
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleDocumentMarkdownResource,
	)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.docs.List("")
	if err != nil {
		return nil, err
	}

	type documentSummary struct {
		ID    string `json:"id"`
		Kind  string `json:"kind"`
		Title string `json:"title"`
	}
	summaries := make([]documentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = documentSummary{ID: d.ID, Kind: string(d.Kind), Title: d.Title}
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "blockedit://documents",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleDocumentMarkdownResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := documentIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract documentId from URI: %s", uri)
	}
	text, err := s.docs.Text(id)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

// documentIDFromURI extracts the id from "blockedit://document/{id}/markdown".
func documentIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "blockedit://document/")
	if !ok {
		return ""
	}
	id, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return id
}
