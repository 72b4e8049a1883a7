package analysis

import (
	"log/slog"
	"testing"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChecks_PanicIsIsolated(t *testing.T) {
	ok := domain.Finding{Category: domain.CategoryCORS, LineNumber: 1}
	checks := []check{
		{"before", func() []domain.Finding { return []domain.Finding{ok} }},
		{"broken", func() []domain.Finding { panic("boom") }},
		{"after", func() []domain.Finding { return []domain.Finding{ok} }},
	}

	found := runChecks(slog.New(slog.DiscardHandler), "x.js", checks)
	require.Len(t, found, 2)
	assert.Equal(t, ok, found[0])
	assert.Equal(t, ok, found[1])
}

func TestSourceFinding_ClampsLine(t *testing.T) {
	src := newSource("x.js", "")
	f := src.finding(domain.SeverityLow, domain.CategorySpelling, 0, issue{description: "d"})
	assert.Equal(t, 1, f.LineNumber)
	assert.Equal(t, "x.js", f.FilePath)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path      string
		script    bool
		component bool
		comments  CommentStyle
	}{
		{"a.py", true, false, CommentHash},
		{"a.js", true, true, CommentCStyle},
		{"a.ts", true, true, CommentCStyle},
		{"a.jsx", false, true, CommentCStyle},
		{"a.TSX", false, true, CommentCStyle},
		{"a.go", false, false, CommentCStyle},
		{"a.sh", false, false, CommentHash},
		{"a.md", false, false, CommentNone},
		{"Makefile", false, false, CommentNone},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			c := Classify(tt.path)
			assert.Equal(t, tt.script, c.Script)
			assert.Equal(t, tt.component, c.Component)
			assert.Equal(t, tt.comments, c.Comments)
		})
	}
}

func TestIsDependencyManifest(t *testing.T) {
	assert.True(t, IsDependencyManifest("svc/requirements.txt"))
	assert.True(t, IsDependencyManifest("Cargo.toml"))
	assert.False(t, IsDependencyManifest("src/package.js"))
}
