package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/adapters/outbound/scanner"
	"github.com/openkraft/codegate/internal/application"
	"github.com/openkraft/codegate/internal/domain"
)

const defaultHistoryLimit = 20

type handlers struct {
	projectPath string
	svc         *application.ScanService
	logger      *slog.Logger
}

// registerTools registers all codegate MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcplib.NewTool("codegate_scan",
			mcplib.WithDescription("Scan the whole project and return the scored report with its deployment decision as JSON"),
			mcplib.WithBoolean("no_cache", mcplib.Description("Ignore cached per-file results")),
		),
		h.scan,
	)

	s.AddTool(
		mcplib.NewTool("codegate_scan_file",
			mcplib.WithDescription("Analyze a single file and return its findings and the score it would get on its own"),
			mcplib.WithString("file",
				mcplib.Required(),
				mcplib.Description("Path of the file relative to the project root"),
			),
		),
		h.scanFile,
	)

	s.AddTool(
		mcplib.NewTool("codegate_history",
			mcplib.WithDescription("Return recent score history for the project, oldest first"),
			mcplib.WithNumber("limit", mcplib.Description("Maximum number of entries (default 20)")),
		),
		h.history,
	)
}

func (h *handlers) scan(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	noCache, _ := request.GetArguments()["no_cache"].(bool)
	out, err := h.svc.Scan(ctx, application.ScanRequest{
		ProjectPath: h.projectPath,
		NewSource: func(cfg domain.ProjectConfig) domain.SourceProvider {
			return scanner.NewDirSource(h.projectPath, scanner.OptionsFrom(cfg, h.logger))
		},
		NoCache: noCache,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(out.Report)
}

func (h *handlers) scanFile(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	absPath, err := h.resolve(file)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return errorResult(fmt.Sprintf("reading file: %v", err)), nil
	}

	cfg, err := config.New().Load(h.projectPath)
	if err != nil {
		return errorResult(fmt.Sprintf("loading config: %v", err)), nil
	}

	report := h.svc.ScanContent(filepath.ToSlash(filepath.Clean(file)), string(data), cfg.SkipAnalyzers)
	return jsonResult(report)
}

func (h *handlers) history(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	limit := defaultHistoryLimit
	if v, ok := request.GetArguments()["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	entries, err := h.svc.History(ctx, h.projectPath, limit)
	if err != nil {
		return errorResult(fmt.Sprintf("loading history: %v", err)), nil
	}
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}
	return jsonResult(entries)
}

// resolve maps a project-relative path to an absolute one inside the project.
func (h *handlers) resolve(rel string) (string, error) {
	root := h.projectPath
	abs := filepath.Join(root, rel)
	if abs != root && !strings.HasPrefix(abs, root+string(filepath.Separator)) {
		return "", fmt.Errorf("file %q is outside the project", rel)
	}
	return abs, nil
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
