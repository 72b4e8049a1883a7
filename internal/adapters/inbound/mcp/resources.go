package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/codegate/internal/application"
)

const rulesURI = "codegate://rules"

// registerResources registers all codegate MCP resources on the given server.
func registerResources(s *server.MCPServer) {
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"Scoring Rules",
			mcplib.WithResourceDescription("Rules version, bonus table, penalty table and finding categories"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRulesResource,
	)
}

func handleRulesResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(application.CurrentRules(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
