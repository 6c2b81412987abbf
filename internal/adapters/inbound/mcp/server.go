// Package mcp exposes the validation gate to AI tooling over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewOpsgateMCPServer creates an MCP server with the opsgate tools
// registered. The targetPath is the directory the gate validates.
func NewOpsgateMCPServer(targetPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"opsgate",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, targetPath)

	return s
}
