// ABOUTME: MCP resources for exposing notes as readable resources.
// ABOUTME: Allows AI agents to read a note as markdown via notely://note/{id}.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const noteURIPrefix = "notely://note/"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: noteURIPrefix + "{id}",
			Name:        "Note",
			Description: "Access individual notes by ID or ID prefix",
			MIMEType:    "text/markdown",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ref, ok := strings.CutPrefix(req.Params.URI, noteURIPrefix)
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	note, err := s.notes.Resolve(ctx, s.owner, ref)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", note.Title)
	if note.IsFavourite {
		b.WriteString("**Favourite**\n\n")
	}
	fmt.Fprintf(&b, "_Updated %s_\n\n", note.UpdatedAt.Format("2006-01-02 15:04"))
	b.WriteString(note.Description)

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     b.String(),
			},
		},
	}, nil
}
