package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("draft_changelog",
		mcp.WithPromptDescription("Draft a changelog entry for a release as a new document"),
		mcp.WithArgument("version",
			mcp.ArgumentDescription("Release version, e.g. 2.4.0"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("changes",
			mcp.ArgumentDescription("Raw list of changes, one per line"),
			mcp.RequiredArgument(),
		),
	), s.handleChangelogPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("draft_roadmap",
		mcp.WithPromptDescription("Outline a roadmap with goals and to-do items"),
		mcp.WithArgument("period",
			mcp.ArgumentDescription("Time frame, e.g. Q3 2026"),
			mcp.RequiredArgument(),
		),
	), s.handleRoadmapPrompt)
}

func (s *Server) handleChangelogPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	version := req.Params.Arguments["version"]
	changes := req.Params.Arguments["changes"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Changelog for %s", version),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write the changelog for version %s from these changes:

%s

1. Use create_document with kind "changelog" and title "%s".
2. Paste the body with paste_text into the first block: an "## Added", "## Changed" and "## Fixed" heading, each followed by a bulleted list.
3. Put breaking changes in a callout (set_block_metadata with {"variant":"warning"}).
4. Finish with export_markdown and show the result.`, version, changes, version),
				},
			},
		},
	}, nil
}

func (s *Server) handleRoadmapPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	period := req.Params.Arguments["period"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Roadmap for %s", period),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Create a roadmap for %s.

1. Use create_document with kind "roadmap".
2. Add a heading-1 block with the period, then one heading-2 per theme.
3. Under each theme add checkbox blocks for the deliverables; mark finished ones with set_block_metadata {"checked":true}.
4. Separate themes with divider blocks.`, period),
				},
			},
		},
	}, nil
}
