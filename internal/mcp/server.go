// ABOUTME: MCP server setup for the coach.
// ABOUTME: Wraps the MCP server with the coaching service and snapshot syncer.
package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/coach/internal/coach"
	"github.com/harperreed/coach/internal/interchange"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with coach access.
type Server struct {
	mcpServer *mcp.Server
	svc       *coach.Service
	syncer    *interchange.Syncer
	user      string
}

// NewServer creates a new MCP server. defaultUser answers tool calls that
// omit user_id and backs the resources.
func NewServer(svc *coach.Service, syncer *interchange.Syncer, defaultUser string) (*Server, error) {
	if svc == nil {
		return nil, errors.New("coach service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "coach",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		syncer:    syncer,
		user:      strings.TrimSpace(defaultUser),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// userOr returns id, or the default user when id is blank.
func (s *Server) userOr(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return s.user
}
