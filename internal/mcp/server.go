// ABOUTME: MCP server exposing one user's notes to AI agents.
// ABOUTME: Provides tools, resources, and prompts backed by the note lifecycle service.

package mcp

import (
	"context"

	"github.com/harper/notely/internal/auth"
	"github.com/harper/notely/internal/notes"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Server struct {
	server *mcp.Server
	notes  *notes.Service
	owner  auth.Identity
}

// NewServer serves owner's notes. Every tool acts as that user.
func NewServer(svc *notes.Service, owner auth.Identity) *Server {
	s := &Server{notes: svc, owner: owner}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "notely",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
