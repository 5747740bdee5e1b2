// ABOUTME: MCP prompts for common note workflows.
// ABOUTME: Provides pre-configured prompts that drive the note tools.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-note",
		Description: "Generate a summary of an existing note",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "note_id",
				Description: "ID of the note to summarize",
				Required:    true,
			},
		},
	}, s.getSummarizeNotePrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "review-favourites",
		Description: "Review favourite notes and suggest which to keep starred",
	}, s.getReviewFavouritesPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getSummarizeNotePrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	noteID, ok := req.Params.Arguments["note_id"]
	if !ok || noteID == "" {
		return nil, fmt.Errorf("note_id argument is required")
	}

	return userPrompt(fmt.Sprintf(`Please summarize the note with ID: %s

1. Use the get_note tool to retrieve the note
2. Read and analyze the title and description
3. Create a concise summary highlighting:
   - Main topic or theme
   - Key points or takeaways
   - Important details or action items
4. Use the update_note tool to put the summary at the top of the description`, noteID)), nil
}

func (s *Server) getReviewFavouritesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return userPrompt(`Help me review my favourite notes:

1. Use the favourite_notes tool to list my favourites
2. Use favourite_notes with mode "all" to see everything else
3. Point out favourites that look stale or finished
4. Point out notes that are not favourites but probably should be

Use toggle_favourite only after I confirm each change.`), nil
}
