package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/pattern"
)

// maxComponentLines is the line count above which a component file is
// reported as too complex.
const maxComponentLines = 300

var (
	effectRe      = regexp.MustCompile(`useEffect\s*\(\s*(?:async\s*)?\(\s*\)\s*=>\s*\{`)
	stateSetterRe = regexp.MustCompile(`\bset[A-Z]\w*\s*\(`)
	depsArgRe     = regexp.MustCompile(`^\s*,`)
	listRenderRe  = regexp.MustCompile(`\.map\s*\(\s*(?:\([^)]*\)|\w+)\s*=>\s*\(?\s*<`)
	domWriteRe    = regexp.MustCompile(`\.(?:innerHTML|outerHTML)\s*(?:\+=|=(?:[^=]|$))|\binsertAdjacentHTML\s*\(|\bdocument\.write(?:ln)?\s*\(`)
	evalRe        = regexp.MustCompile(`\beval\s*\(`)
	iconButtonRe  = regexp.MustCompile(`<button\b`)
	imageRe       = regexp.MustCompile(`<img\s`)
)

var expensiveOps = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`\.sort\(`), "array sorting"},
	{regexp.MustCompile(`\.filter\(`), "array filtering"},
	{regexp.MustCompile(`\.map\(.*\.map\(`), "nested array mapping"},
	{regexp.MustCompile(`new Date\(`), "date creation"},
}

var uiSecretPatterns = []struct {
	re   *regexp.Regexp
	kind string
}{
	{regexp.MustCompile(`(?i)api[_-]?key\s*=\s*["'][^"']+["']`), "API key"},
	{regexp.MustCompile(`(?i)secret\s*=\s*["'][^"']+["']`), "secret"},
	{regexp.MustCompile(`(?i)password\s*=\s*["'][^"']+["']`), "password"},
	{regexp.MustCompile(`(?i)token\s*=\s*["'][^"']+["']`), "token"},
}

var (
	memoTokens          = []string{"useMemo", "useCallback", "React.memo", "memo("}
	uiErrorTokens       = []string{"try {", "catch (", ".catch(", "ErrorBoundary", "onError"}
	iconIndicators      = []string{"Icon", "icon", "svg", "SVG"}
	accessibleLabelAttr = []string{"aria-label", "aria-labelledby"}
)

// UIComponentAnalyzer checks component-dialect files for rendering,
// security and accessibility defects.
type UIComponentAnalyzer struct {
	Logger *slog.Logger
}

// AnalyzeFile runs every UI check on one file and accumulates into m.
func (a *UIComponentAnalyzer) AnalyzeFile(m *domain.UIMetrics, path, content string) []domain.Finding {
	src := newSource(path, content)
	class := Classify(path)
	lineCount := pattern.LineCount(content)

	if class.Dialect.IsTyped() {
		m.HasTypeScript = true
	}
	m.TotalLines += lineCount
	m.TotalFiles++

	react := class.Dialect.IsComponentExt() || strings.Contains(strings.ToLower(content), "react")

	checks := []check{
		{"complexity", func() []domain.Finding { return checkComponentSize(src, lineCount) }},
	}
	if react {
		checks = append(checks,
			check{"infinite-loop", func() []domain.Finding { return checkEffectLoops(src) }},
			check{"list-key", func() []domain.Finding { return checkListKeys(src) }},
			check{"render-cost", func() []domain.Finding { return checkRenderCost(src) }},
		)
	}
	checks = append(checks,
		check{"xss", func() []domain.Finding { return checkHTMLInjection(src) }},
		check{"eval", func() []domain.Finding { return checkUIEval(src) }},
		check{"window-open", func() []domain.Finding { return checkWindowOpen(src) }},
		check{"secrets", func() []domain.Finding { return checkUISecrets(src) }},
		check{"accessibility", func() []domain.Finding { return checkAccessibility(src) }},
		check{"memo", func() []domain.Finding { return checkExportedMemo(src) }},
	)

	findings := runChecks(a.Logger, path, checks)

	for _, f := range findings {
		switch f.Category {
		case domain.CategoryXSS, domain.CategoryCodeInjection, domain.CategoryWindowOpener, domain.CategoryExposedSecrets:
			m.HasSecurityIssues = true
		case domain.CategoryAccessibility:
			m.HasAccessibility = true
		}
	}
	if pattern.ContainsAny(content, memoTokens...) {
		m.HasPerformanceOptimizations = true
	}
	if pattern.ContainsAny(content, uiErrorTokens...) {
		m.HasErrorHandling = true
	}
	return findings
}

func checkComponentSize(src *source, lineCount int) []domain.Finding {
	if lineCount <= maxComponentLines {
		return nil
	}
	return []domain.Finding{src.finding(domain.SeverityMedium, domain.CategoryCodeComplexity, 1, issue{
		description: fmt.Sprintf("File has %d lines (>%d), consider breaking into smaller components", lineCount, maxComponentLines),
		impact:      "Reduced maintainability and readability",
		fix:         "Split into smaller, focused components with single responsibilities",
	})}
}

// checkEffectLoops flags effect hooks whose callback sets state while the
// hook has no dependency list, so it re-runs after every render.
func checkEffectLoops(src *source) []domain.Finding {
	var out []domain.Finding
	for _, m := range src.find(effectRe) {
		open := m.End - 1
		closing := pattern.MatchingBrace(src.content, open)
		if closing < 0 {
			continue
		}
		body := src.content[open+1 : closing]
		if depsArgRe.MatchString(src.content[closing+1:]) {
			continue
		}
		if !stateSetterRe.MatchString(body) {
			continue
		}
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryInfiniteLoop, src.line(m.Start), issue{
			description: "useEffect without dependency array that calls a state setter creates an infinite loop",
			impact:      "Application crash, browser freeze, poor user experience",
			fix:         "Add a dependency array to useEffect: useEffect(() => { ... }, [dependencies])",
		}))
	}
	return out
}

func checkListKeys(src *source) []domain.Finding {
	var out []domain.Finding
	for _, m := range src.find(listRenderRe) {
		if strings.Contains(pattern.After(src.content, m.End, 100), "key=") {
			continue
		}
		out = append(out, src.finding(domain.SeverityMedium, domain.CategoryListKey, src.line(m.Start), issue{
			description: "Missing key prop in mapped component",
			impact:      "Poor rendering performance, potential bugs with component state",
			fix:         "Add unique key prop: .map(item => <Component key={item.id} />)",
		}))
	}
	return out
}

// checkRenderCost reports at most one finding per operation kind: the first
// occurrence that is not preceded by a memo hook and is followed by JSX output.
func checkRenderCost(src *source) []domain.Finding {
	var out []domain.Finding
	for _, op := range expensiveOps {
		for _, m := range src.find(op.re) {
			if pattern.ContainsAny(pattern.Before(src.content, m.Start, 200), "useMemo", "useCallback") {
				continue
			}
			if !strings.Contains(pattern.After(src.content, m.Start, 500), "return (") {
				continue
			}
			out = append(out, src.finding(domain.SeverityMedium, domain.CategoryPerformance, src.line(m.Start), issue{
				description: fmt.Sprintf("Expensive %s operation in render without memoization", op.name),
				impact:      "Component re-renders trigger expensive recalculations",
				fix:         fmt.Sprintf("Wrap in useMemo: const result = useMemo(() => /* %s */, [deps])", op.name),
			}))
			break
		}
	}
	return out
}

func checkHTMLInjection(src *source) []domain.Finding {
	var out []domain.Finding
	for i, line := range strings.Split(src.content, "\n") {
		switch {
		case strings.Contains(line, "dangerouslySetInnerHTML"):
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryXSS, i+1, issue{
				description: "Using dangerouslySetInnerHTML without sanitization",
				impact:      "Cross-Site Scripting (XSS) attack vector - malicious scripts can be injected",
				fix:         "Sanitize HTML first: dangerouslySetInnerHTML={{__html: DOMPurify.sanitize(html)}}",
			}))
		case domWriteRe.MatchString(line):
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryXSS, i+1, issue{
				description: "Direct DOM HTML write detected",
				impact:      "XSS vulnerability - user input can execute malicious scripts",
				fix:         "Use textContent or React rendering instead, or sanitize with DOMPurify",
			}))
		}
	}
	return out
}

func checkUIEval(src *source) []domain.Finding {
	var out []domain.Finding
	for i, line := range strings.Split(src.content, "\n") {
		if !evalRe.MatchString(line) {
			continue
		}
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryCodeInjection, i+1, issue{
			description: "Use of eval() detected",
			impact:      "Arbitrary code execution vulnerability",
			fix:         "Remove eval() and use safe alternatives like JSON.parse",
		}))
	}
	return out
}

func checkWindowOpen(src *source) []domain.Finding {
	var out []domain.Finding
	for i, line := range strings.Split(src.content, "\n") {
		if !strings.Contains(line, "window.open") || strings.Contains(line, "noopener") {
			continue
		}
		out = append(out, src.finding(domain.SeverityHigh, domain.CategoryWindowOpener, i+1, issue{
			description: "window.open without noopener/noreferrer",
			impact:      "Tabnabbing vulnerability - opened window can access parent window",
			fix:         `Pass "noopener,noreferrer" as window features to cut access to window.opener`,
		}))
	}
	return out
}

func checkUISecrets(src *source) []domain.Finding {
	var out []domain.Finding
	for _, p := range uiSecretPatterns {
		for _, m := range src.find(p.re) {
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryExposedSecrets, src.line(m.Start), issue{
				description: fmt.Sprintf("Hardcoded %s detected in source code", p.kind),
				impact:      "Credential exposure - secrets visible in version control and deployments",
				fix:         fmt.Sprintf("Move to environment variables: process.env.%s", envName(p.kind)),
			}))
		}
	}
	return out
}

func checkAccessibility(src *source) []domain.Finding {
	var out []domain.Finding
	for _, m := range src.find(iconButtonRe) {
		next := pattern.After(src.content, m.Start, 200)
		if pattern.ContainsAny(next, accessibleLabelAttr...) || !strings.Contains(next, ">") {
			continue
		}
		if !pattern.ContainsAny(next, iconIndicators...) {
			continue
		}
		out = append(out, src.finding(domain.SeverityMedium, domain.CategoryAccessibility, src.line(m.Start), issue{
			description: "Interactive element <button missing aria-label",
			impact:      "Screen readers cannot describe element to visually impaired users",
			fix:         `Add aria-label: <button aria-label="description">`,
		}))
	}
	for _, m := range src.find(imageRe) {
		if strings.Contains(openingTag(src.content, m.Start), "alt=") {
			continue
		}
		out = append(out, src.finding(domain.SeverityMedium, domain.CategoryAccessibility, src.line(m.Start), issue{
			description: "Image missing alt attribute",
			impact:      "Screen readers cannot describe image content",
			fix:         `Add alt text: <img alt="descriptive text" />`,
		}))
	}
	return out
}

func checkExportedMemo(src *source) []domain.Finding {
	c := src.content
	if !strings.Contains(c, "export") || !strings.Contains(c, "const") {
		return nil
	}
	if strings.Contains(c, "React.memo") || strings.Contains(c, "memo(") {
		return nil
	}
	if !strings.Contains(c, "return (") && !strings.Contains(c, "return <") {
		return nil
	}
	return []domain.Finding{src.finding(domain.SeverityLow, domain.CategoryPerformance, 1, issue{
		description: "Component could benefit from React.memo to prevent unnecessary re-renders",
		impact:      "Component re-renders even when props haven't changed",
		fix:         "Wrap component with React.memo: export default React.memo(Component)",
	})}
}

// openingTag returns the markup from start up to and including the next
// '>', bounded to 300 bytes.
func openingTag(content string, start int) string {
	tag := pattern.After(content, start, 300)
	if i := strings.IndexByte(tag, '>'); i >= 0 {
		return tag[:i+1]
	}
	return tag
}

func envName(kind string) string {
	return strings.ToUpper(strings.ReplaceAll(kind, " ", "_"))
}
