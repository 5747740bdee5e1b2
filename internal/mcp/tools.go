// ABOUTME: MCP tools for the note lifecycle.
// ABOUTME: Maps create, update, delete, favourite and search onto tool calls.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/harper/notely/internal/models"
	"github.com/harper/notely/internal/notes"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, most recently updated first",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"limit": {"type": "integer", "description": "Max results (0 for all)", "default": 20}
			}
		}`),
	}, s.handleListNotes)

	// get_note
	s.server.AddTool(&mcp.Tool{
		Name:        "get_note",
		Description: "Get a note by ID or ID prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetNote)

	// create_note
	s.server.AddTool(&mcp.Tool{
		Name:        "create_note",
		Description: "Create a new note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Note title (required, max 255 characters)"},
				"description": {"type": "string", "description": "Note body"},
				"is_favourite": {"type": "boolean", "description": "Mark as favourite", "default": false}
			},
			"required": ["title"]
		}`),
	}, s.handleCreateNote)

	// update_note
	s.server.AddTool(&mcp.Tool{
		Name:        "update_note",
		Description: "Update a note's title, description or favourite flag; omitted fields are kept",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"title": {"type": "string", "description": "New title"},
				"description": {"type": "string", "description": "New description"},
				"is_favourite": {"type": "boolean", "description": "New favourite flag"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdateNote)

	// delete_note
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteNote)

	// toggle_favourite
	s.server.AddTool(&mcp.Tool{
		Name:        "toggle_favourite",
		Description: "Flip a note's favourite flag",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleToggleFavourite)

	// search_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "search_notes",
		Description: "Case-insensitive substring search over titles and descriptions",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search text"}
			},
			"required": ["query"]
		}`),
	}, s.handleSearchNotes)

	// favourite_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "favourite_notes",
		Description: "List favourite notes, or all notes when mode is \"all\"",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"mode": {"type": "string", "description": "\"all\" for every note, anything else for favourites only"}
			}
		}`),
	}, s.handleFavouriteNotes)
}

// bindArgs decodes tool arguments; a call without arguments leaves v as is.
func bindArgs(req *mcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	return json.Unmarshal(req.Params.Arguments, v)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

// formErrors flattens field errors into one line per field.
func formErrors(f *notes.Form) string {
	fields := make([]string, 0, len(f.Errors))
	for field := range f.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	lines := make([]string, 0, len(fields))
	for _, field := range fields {
		lines = append(lines, field+": "+strings.Join(f.Errors[field], " "))
	}
	return strings.Join(lines, "\n")
}

func (s *Server) resolve(ctx context.Context, ref string) (*models.Note, *mcp.CallToolResult) {
	note, err := s.notes.Resolve(ctx, s.owner, ref)
	if errors.Is(err, notes.ErrNotFound) {
		return nil, errorResult("note %s not found", ref)
	}
	if err != nil {
		return nil, errorResult("failed to find note: %v", err)
	}
	return note, nil
}

// Tool handlers.
func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Limit int `json:"limit"`
	}
	params.Limit = 20 // default
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	list, err := s.notes.List(ctx, s.owner)
	if err != nil {
		return errorResult("failed to list notes: %v", err), nil
	}
	if params.Limit > 0 && len(list) > params.Limit {
		list = list[:params.Limit]
	}
	return jsonResult(list), nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, errRes := s.resolve(ctx, params.ID)
	if errRes != nil {
		return errRes, nil
	}
	return jsonResult(note), nil
}

func (s *Server) handleCreateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params notes.Input
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	res, err := s.notes.Create(ctx, s.owner, params)
	if err != nil {
		return errorResult("failed to create note: %v", err), nil
	}
	if res.Kind == notes.KindInvalid {
		return errorResult("invalid note:\n%s", formErrors(res.Form)), nil
	}
	return textResult(fmt.Sprintf("%s Created note %s", res.Event.Message, res.Note.ID)), nil
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID          string  `json:"id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsFavourite *bool   `json:"is_favourite"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, errRes := s.resolve(ctx, params.ID)
	if errRes != nil {
		return errRes, nil
	}

	in := notes.Input{Title: note.Title, Description: note.Description, IsFavourite: note.IsFavourite}
	if params.Title != nil {
		in.Title = *params.Title
	}
	if params.Description != nil {
		in.Description = *params.Description
	}
	if params.IsFavourite != nil {
		in.IsFavourite = *params.IsFavourite
	}

	res, err := s.notes.Update(ctx, s.owner, note.ID, in)
	if errors.Is(err, notes.ErrNotFound) {
		return errorResult("note %s not found", params.ID), nil
	}
	if err != nil {
		return errorResult("failed to update note: %v", err), nil
	}
	if res.Kind == notes.KindInvalid {
		return errorResult("invalid note:\n%s", formErrors(res.Form)), nil
	}
	return textResult(fmt.Sprintf("%s Updated note %s", res.Event.Message, note.ID)), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, errRes := s.resolve(ctx, params.ID)
	if errRes != nil {
		return errRes, nil
	}
	if _, err := s.notes.Delete(ctx, s.owner, note.ID); err != nil {
		return errorResult("failed to delete note: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted note %s", note.ID)), nil
}

func (s *Server) handleToggleFavourite(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	note, errRes := s.resolve(ctx, params.ID)
	if errRes != nil {
		return errRes, nil
	}
	res, err := s.notes.ToggleFavourite(ctx, s.owner, note.ID)
	if err != nil {
		return errorResult("failed to toggle favourite: %v", err), nil
	}
	return jsonResult(map[string]any{"success": true, "is_favourite": res.Note.IsFavourite}), nil
}

// searchHit carries the matched note with plain text; highlights are for HTML views.
type searchHit struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsFavourite bool      `json:"is_favourite"`
}

func (s *Server) handleSearchNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	res, err := s.notes.Search(ctx, s.owner, params.Query)
	if err != nil {
		return errorResult("failed to search notes: %v", err), nil
	}
	if res.NoResults {
		return textResult(res.Message), nil
	}

	hits := make([]searchHit, 0, len(res.Matches))
	for _, n := range res.Matches {
		hits = append(hits, searchHit{
			ID:          n.ID,
			Title:       n.Title,
			Description: n.Description,
			IsFavourite: n.IsFavourite,
		})
	}
	return jsonResult(hits), nil
}

func (s *Server) handleFavouriteNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Mode string `json:"mode"`
	}
	if err := bindArgs(req, &params); err != nil {
		return nil, err
	}

	list, err := s.notes.FavouriteList(ctx, s.owner, notes.ParseMode(params.Mode))
	if err != nil {
		return errorResult("failed to list favourites: %v", err), nil
	}
	return jsonResult(list), nil
}
