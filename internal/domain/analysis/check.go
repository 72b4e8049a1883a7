package analysis

import (
	"log/slog"
	"regexp"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/pattern"
)

// source is the per-call view of one file shared by an analyzer's checks.
type source struct {
	path    string
	content string
	lines   *pattern.LineIndex
}

func newSource(path, content string) *source {
	return &source{path: path, content: content, lines: pattern.NewLineIndex(content)}
}

func (s *source) line(offset int) int { return s.lines.Line(offset) }

func (s *source) find(re *regexp.Regexp) []pattern.Match { return pattern.FindAll(re, s.content) }

// issue holds the remediation text of a finding.
type issue struct {
	description string
	impact      string
	fix         string
}

func (s *source) finding(sev domain.Severity, cat domain.Category, line int, is issue) domain.Finding {
	return domain.Finding{
		Severity:      sev,
		Category:      cat,
		FilePath:      s.path,
		LineNumber:    max(line, 1),
		Description:   is.description,
		Impact:        is.impact,
		FixSuggestion: is.fix,
	}
}

// lineSet records which lines a check already reported.
type lineSet map[int]bool

func (ls lineSet) add(line int) bool {
	if ls[line] {
		return false
	}
	ls[line] = true
	return true
}

// check is one isolated rule within an analyzer.
type check struct {
	name string
	run  func() []domain.Finding
}

// runChecks executes checks in order. A check that panics contributes no
// findings and does not affect the others.
func runChecks(logger *slog.Logger, path string, checks []check) []domain.Finding {
	var out []domain.Finding
	for _, c := range checks {
		out = append(out, runCheck(logger, path, c)...)
	}
	return out
}

func runCheck(logger *slog.Logger, path string, c check) (found []domain.Finding) {
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("check failed", "check", c.name, "file", path, "panic", r)
			found = nil
		}
	}()
	return c.run()
}
