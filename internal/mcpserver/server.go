// Package mcpserver exposes a read-only view of the notes over MCP (Model
// Context Protocol) on stdio, so an assistant running locally can look notes up.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/noteservice"
)

const layoutURI = "jot://note-layout"

// Notes is the subset of the note service the MCP tools read from.
type Notes interface {
	Find(ctx context.Context, q noteservice.FindQuery) ([]models.Note, error)
	Read(ctx context.Context, rel string) (models.Note, []byte, error)
	Export(ctx context.Context, w io.Writer) error
}

// Server wraps the MCP server with jot's tools.
type Server struct {
	mcp   *server.MCPServer
	notes Notes
}

// New creates an MCP server with every jot tool registered.
func New(notes Notes, version string) *Server {
	s := &Server{notes: notes}

	s.mcp = server.NewMCPServer(
		"jot",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("find_notes",
		mcp.WithDescription("Find notes by path or by tags. With neither, every note is returned. "+
			"A path with a directory (work/standup) matches exactly; a bare title (standup) matches in any directory. "+
			"Tags match notes carrying any of them."),
		mcp.WithString("path", mcp.Description("Note path or bare title, without the .md extension")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
	), s.findNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the Markdown content of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path of the note without extension (e.g. work/standup)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("export_notes",
		mcp.WithDescription("Export the metadata of every note as a JSON array."),
	), s.exportNotes)

	s.mcp.AddResource(
		mcp.NewResource(layoutURI, "Note Layout",
			mcp.WithResourceDescription("How jot lays notes out on disk and what metadata it keeps."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readLayoutResource,
	)

	return s
}

// Serve speaks MCP over in/out until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) findNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := noteservice.FindQuery{
		Path: strings.TrimSpace(req.GetString("path", "")),
		Tags: models.SplitTags(req.GetString("tags", "")),
	}
	if q.Path == "" && len(q.Tags) == 0 {
		q.All = true
	}
	notes, err := s.notes.Find(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no matching notes"), nil
	}
	out, _ := json.MarshalIndent(notes, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path = strings.TrimSuffix(path, ".md")
	_, data, err := s.notes.Read(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) exportNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := s.notes.Export(ctx, &buf); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) readLayoutResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      layoutURI,
			MIMEType: "text/markdown",
			Text:     NoteLayout,
		},
	}, nil
}
