// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jotter notes to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/mdnote"
	"github.com/starford/jotter/internal/viewmodel"
)

// Server wraps the MCP server with Jotter tools.
type Server struct {
	mcp     *server.MCPServer
	client  backend.Client
	session *backend.Session
}

// New creates a new MCP server acting through client. The client decides
// the identity; an anonymous client can only read public notes.
func New(client backend.Client, version string) *Server {
	s := &Server{client: client, session: backend.NewSession(client)}

	s.mcp = server.NewMCPServer(
		"Jotter",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes visible to you, most recently modified first. "+
			"Optionally filter by a case-insensitive search term and a visibility tab."),
		mcp.WithString("query", mcp.Description("Search term matched against every field")),
		mcp.WithString("tab", mcp.Description("Visibility filter"), mcp.Enum("all", "public", "private")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note as Markdown with YAML frontmatter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note owned by you. Read the "+NoteFormatURI+
			" resource for the field rules."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title, must not be blank")),
		mcp.WithString("content", mcp.Description("Note body")),
		mcp.WithBoolean("public", mcp.Description("Publish the note instead of keeping it private")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update one of your notes. Omitted title or content keep "+
			"their current value; visibility is always set from public."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New body")),
		mcp.WithBoolean("public", mcp.Description("Publish (true) or make private (false)")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Permanently delete one of your notes."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the Jotter note format and field rules."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("Fields, validation rules and Markdown form of Jotter notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.Message(err))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tab, err := viewmodel.ParseTab(req.GetString("tab", ""))
	if err != nil {
		return toolError(err), nil
	}
	list := viewmodel.NewNoteList(s.client, s.session)
	if err := list.Load(ctx); err != nil {
		return toolError(err), nil
	}
	list.SetSearch(req.GetString("query", ""))
	list.SetTab(tab)

	out, _ := json.MarshalIndent(list.VisibleNotes(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := viewmodel.OpenDetail(ctx, s.client, s.session, id)
	if err != nil {
		return toolError(err), nil
	}
	data, err := mdnote.Marshal(d.Note())
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e := viewmodel.NewCreateEditor(s.client, s.session)
	e.SetTitle(title)
	e.SetContent(req.GetString("content", ""))
	if _, err := e.Submit(ctx, req.GetBool("public", false)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", e.Saved().ID)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := viewmodel.OpenEditor(ctx, s.client, s.session, id)
	if err != nil {
		return toolError(err), nil
	}
	draft := e.Draft()
	e.SetTitle(req.GetString("title", draft.Title))
	e.SetContent(req.GetString("content", draft.Content))
	if _, err := e.Submit(ctx, req.GetBool("public", draft.IsPublic)); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := viewmodel.OpenDetail(ctx, s.client, s.session, id)
	if err != nil {
		return toolError(err), nil
	}
	if err := d.RequestDelete(); err != nil {
		return toolError(err), nil
	}
	if _, err := d.ConfirmDelete(ctx); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) getNoteFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
