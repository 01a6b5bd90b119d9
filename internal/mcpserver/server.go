// Package mcpserver exposes the planner's operations as MCP tools over
// stdio. One server process is spawned per chat session, pinned to the
// session's user so every tool call is scoped to that user's data.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ownplanner/ownplanner/internal/planner"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	// UserID scopes every tool call. Required.
	UserID string
	Tasks  *planner.TaskService
	Notes  *planner.NoteService
	Logger *slog.Logger
}

// Server wraps the MCP SDK server and the planner services.
type Server struct {
	mcpServer *mcp.Server
	userID    string
	tasks     *planner.TaskService
	notes     *planner.NoteService
	logger    *slog.Logger
}

// NewServer creates an MCP server with all planner tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("mcpserver: server name is required")
	}
	if cfg.Version == "" {
		return nil, errors.New("mcpserver: server version is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("mcpserver: user id is required")
	}
	if cfg.Tasks == nil || cfg.Notes == nil {
		return nil, errors.New("mcpserver: task and note services are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		userID: cfg.UserID,
		tasks:  cfg.Tasks,
		notes:  cfg.Notes,
		logger: cfg.Logger,
	}

	s.registerTaskTools()
	s.registerNoteTools()
	s.registerDatetimeTools()
	return s, nil
}

// Run serves MCP on the given transport. Blocks until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// Connect attaches the server to a transport without blocking. Used by
// tests with in-memory transports.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, transport, nil)
}

// jsonResult renders a value as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// textResult renders a plain confirmation message.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult reports a tool-level failure the model can react to, such
// as a missing entity or an invalid argument.
func errorResult(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}, nil, nil
}

// serviceResult routes a service outcome: domain errors go back to the
// model as error results, anything else is a system failure.
func serviceResult(v any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		if isDomainError(err) {
			return errorResult(err)
		}
		return nil, nil, err
	}
	return jsonResult(v)
}

func isDomainError(err error) bool {
	return errors.Is(err, planner.ErrNotFound) ||
		errors.Is(err, planner.ErrTitleRequired) ||
		errors.Is(err, planner.ErrTitleTooLong)
}

// parseID converts a tool-supplied id string.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
