package mcp

import (
	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "sheetgen"
	serverVersion = "1.0.0"
)

// NewServer builds the MCP server with every catalog tool registered.
func NewServer(svc *catalog.Service) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	registerTools(s, svc)
	return s
}

// Serve starts the MCP stdio server.
func Serve(svc *catalog.Service) error {
	return server.ServeStdio(NewServer(svc))
}
