package mcp_test

import (
	"testing"

	mcpadapter "github.com/openkraft/codegate/internal/adapters/inbound/mcp"
	"github.com/openkraft/codegate/internal/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodegateMCPServer(t *testing.T) {
	s := mcpadapter.NewCodegateMCPServer(".", application.NewScanService(nil, nil, nil, nil, nil), nil)
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewCodegateMCPServer(".", application.NewScanService(nil, nil, nil, nil, nil), nil)
	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"codegate_scan",
		"codegate_scan_file",
		"codegate_history",
	}
	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}
	assert.Len(t, tools, len(expectedTools))
}
