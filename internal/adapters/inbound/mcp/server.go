package mcp

import (
	"log/slog"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/codegate/internal/application"
)

// NewCodegateMCPServer creates an MCP server with the codegate tools and
// resources registered. projectPath is the root of the project to scan.
func NewCodegateMCPServer(projectPath string, svc *application.ScanService, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	if abs, err := filepath.Abs(projectPath); err == nil {
		projectPath = abs
	}
	s := server.NewMCPServer(
		"codegate",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{projectPath: projectPath, svc: svc, logger: logger}
	registerTools(s, h)
	registerResources(s)

	return s
}
