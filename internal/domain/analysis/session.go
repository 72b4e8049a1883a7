// Package analysis holds the four rule-based analyzers and the scan
// session that dispatches files to them.
//
// Analyzers are stateless; every call receives the metrics accumulator it
// contributes to. A Session owns one scan's accumulators and findings, and
// independent sessions may be merged, so files can be sharded across workers.
package analysis

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/openkraft/codegate/internal/domain"
)

// RulesVersion identifies the current rule set. Cached per-file results
// computed under a different version are discarded.
const RulesVersion = "2026.10.1"

// Analyzers bundles one instance of each analyzer.
type Analyzers struct {
	UI       *UIComponentAnalyzer
	Server   *ServerSideAnalyzer
	Security *SecurityAnalyzer
	Content  *ContentAnalyzer

	skip map[string]bool
}

// NewAnalyzers builds the analyzer set. Names in skip disable an analyzer.
func NewAnalyzers(logger *slog.Logger, skip []string) *Analyzers {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Analyzers{
		UI:       &UIComponentAnalyzer{Logger: logger},
		Server:   &ServerSideAnalyzer{Logger: logger},
		Security: &SecurityAnalyzer{Logger: logger},
		Content:  &ContentAnalyzer{Logger: logger},
		skip:     make(map[string]bool, len(skip)),
	}
	for _, s := range skip {
		a.skip[s] = true
	}
	return a
}

// AnalyzeFile runs the applicable analyzers on one file and returns its
// findings together with the metric contributions of this file alone.
func (a *Analyzers) AnalyzeFile(path, content string) domain.FileResult {
	var res domain.FileResult
	class := Classify(path)

	if class.Component && !a.skip[domain.AnalyzerUI] {
		res.Findings = append(res.Findings, a.UI.AnalyzeFile(&res.Metrics.UI, path, content)...)
	}
	if class.Script && !a.skip[domain.AnalyzerServer] {
		res.Findings = append(res.Findings, a.Server.AnalyzeFile(&res.Metrics.Server, path, content)...)
	}
	if !a.skip[domain.AnalyzerSecurity] {
		res.Findings = append(res.Findings, a.Security.AnalyzeFile(&res.Metrics.Security, path, content)...)
	}
	if !a.skip[domain.AnalyzerContent] {
		res.Findings = append(res.Findings, a.Content.AnalyzeFile(&res.Metrics.Content, path, content)...)
	}
	return res
}

// Session is the explicit context of one scan job.
type Session struct {
	analyzers *Analyzers
	findings  []domain.Finding
	metrics   domain.MetricsSet
	files     int
}

// NewSession starts an empty scan context using the given analyzers.
func NewSession(analyzers *Analyzers) *Session {
	return &Session{analyzers: analyzers}
}

// AnalyzeFile analyzes one file, records its result and returns it.
func (s *Session) AnalyzeFile(path, content string) domain.FileResult {
	res := s.analyzers.AnalyzeFile(path, content)
	s.Add(res)
	return res
}

// Add records a result produced elsewhere, e.g. read from the cache.
func (s *Session) Add(res domain.FileResult) {
	s.findings = append(s.findings, res.Findings...)
	s.metrics.Merge(res.Metrics)
	s.files++
}

// Merge folds another session's results into s.
func (s *Session) Merge(o *Session) {
	s.findings = append(s.findings, o.findings...)
	s.metrics.Merge(o.metrics)
	s.files += o.files
}

// Findings returns all findings in canonical order.
func (s *Session) Findings() []domain.Finding {
	out := slices.Clone(s.findings)
	SortFindings(out)
	return out
}

// Metrics returns the merged metrics with derived fields computed.
func (s *Session) Metrics() domain.MetricsSet {
	return s.metrics.Snapshot()
}

// FilesSeen is the number of files recorded, analyzed or cached.
func (s *Session) FilesSeen() int { return s.files }

// SortFindings orders findings by file path then line number. The sort is
// stable so findings on the same line keep their check order.
func SortFindings(findings []domain.Finding) {
	slices.SortStableFunc(findings, func(a, b domain.Finding) int {
		if c := cmp.Compare(a.FilePath, b.FilePath); c != 0 {
			return c
		}
		return cmp.Compare(a.LineNumber, b.LineNumber)
	})
}
