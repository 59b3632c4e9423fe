package mcpserver

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tablemerge/internal/merge"
	"tablemerge/internal/service"
)

// Server is the stdio MCP server. It exposes the merge engine as
// tools so an agent can load tables, preview them, bind keys, and
// run merges or saved jobs.
type Server struct {
	mcp  *server.MCPServer
	jobs *service.MergeService

	// Session state: one primary table and one engine per server,
	// mirroring the engine's one-instance-per-primary model.
	session *merge.Merger
}

// Deps holds the dependencies passed to the server.
type Deps struct {
	Jobs *service.MergeService
}

// New creates and configures the MCP server with all tools.
func New(deps Deps) *Server {
	s := &Server{jobs: deps.Jobs}

	s.mcp = server.NewMCPServer(
		"tablemerge-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTableTools()
	s.registerJobTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[mcp] starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

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

// engine returns the session engine, failing if load_primary has not
// run yet.
func (s *Server) engine() (*merge.Merger, error) {
	if s.session == nil {
		return nil, fmt.Errorf("no primary table loaded (use load_primary first)")
	}
	return s.session, nil
}
