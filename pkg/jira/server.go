package jira

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates the MCP server that the toolsets register on.
func NewServer(name, version string) *server.MCPServer {
	return server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithLogging(),
	)
}
