package analysis_test

import (
	"testing"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeContent(t *testing.T, path, content string) ([]domain.Finding, domain.ContentMetrics) {
	t.Helper()
	var m domain.ContentMetrics
	a := &analysis.ContentAnalyzer{}
	return a.AnalyzeFile(&m, path, content), m
}

func TestContentAnalyzer_TwoMisspellingsInOneComment(t *testing.T) {
	findings, m := analyzeContent(t, "api.js", "// value recieved from teh server\nconst v = 1;\n")

	require.Len(t, findings, 2)
	for _, f := range findings {
		assert.Equal(t, domain.SeverityLow, f.Severity)
		assert.Equal(t, domain.CategorySpelling, f.Category)
		assert.Equal(t, 1, f.LineNumber)
	}
	assert.Equal(t, `Misspelled word: "teh" should be "the"`, findings[0].Description)
	assert.Equal(t, "Correct spelling to: received", findings[1].FixSuggestion)

	assert.Equal(t, 1, m.CommentCount)
	assert.Equal(t, 2, m.SpellingErrors)
	assert.Equal(t, 0, m.Snapshot().DocumentationQuality)
}

func TestContentAnalyzer_CamelCaseWordsAreSplit(t *testing.T) {
	findings, _ := analyzeContent(t, "a.ts", "// see recievedPayload\n")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Description, "recieved")
}

func TestContentAnalyzer_GrammarInHashComments(t *testing.T) {
	content := `x = 1  # it's cached here
# you should of called close
`
	findings, m := analyzeContent(t, "cache.py", content)
	grammar := byCategory(findings, domain.CategoryGrammar)
	require.Len(t, grammar, 2)
	assert.Equal(t, 1, grammar[0].LineNumber)
	assert.Equal(t, "Use: its", grammar[0].FixSuggestion)
	assert.Equal(t, 2, grammar[1].LineNumber)
	assert.Equal(t, "Use: should have", grammar[1].FixSuggestion)
	assert.Equal(t, 2, m.GrammarIssues)
	assert.Equal(t, 2, m.CommentCount)
}

func TestContentAnalyzer_URLIsNotAComment(t *testing.T) {
	_, m := analyzeContent(t, "link.js", `const home = "https://example.com/teh";`)
	assert.Equal(t, 0, m.CommentCount)
	assert.Equal(t, domain.NeutralDocumentationQuality, m.Snapshot().DocumentationQuality)
}

func TestContentAnalyzer_BlockCommentsAndDocumentation(t *testing.T) {
	content := `/**
 * Loads the user.
 */
function load() {}
`
	findings, m := analyzeContent(t, "load.js", content)
	assert.Empty(t, findings)
	assert.True(t, m.HasDocumentation)
	assert.Equal(t, 1, m.CommentCount)
	assert.Equal(t, 100, m.Snapshot().DocumentationQuality)
}

func TestContentAnalyzer_Docstrings(t *testing.T) {
	content := `def f():
    """Return the seperate parts."""
    return 1
`
	findings, m := analyzeContent(t, "f.py", content)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].LineNumber)
	assert.True(t, m.HasDocumentation)
}

func TestContentAnalyzer_MarkdownIsDocumentation(t *testing.T) {
	findings, m := analyzeContent(t, "docs/README.md", "# Title\n\nteh text")
	assert.Empty(t, findings)
	assert.True(t, m.HasDocumentation)
	assert.Equal(t, 0, m.CommentCount)
}
