package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/pattern"
)

type labeledPattern struct {
	re    *regexp.Regexp
	label string
}

var pythonSQLPatterns = []labeledPattern{
	{regexp.MustCompile(`execute\s*\(\s*f["']`), "f-string in execute()"},
	{regexp.MustCompile(`execute\s*\(\s*["'].*%s.*["'].*%`), "% formatting in SQL"},
	{regexp.MustCompile(`execute\s*\(\s*["'].*\.format\(`), ".format() in SQL"},
	{regexp.MustCompile(`cursor\.execute\s*\([^)]*\+`), "string concatenation in SQL"},
}

var scriptSQLPatterns = []labeledPattern{
	{regexp.MustCompile("query\\s*\\(\\s*`[^`]*\\$\\{"), "template literal in query"},
	{regexp.MustCompile(`query\s*\([^)]*\+.*\)`), "string concatenation in query"},
	{regexp.MustCompile(`execute\s*\([^)]*\+.*\)`), "string concatenation in execute"},
}

var rawSQLKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "DROP"}

var rawSQLPatterns = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(rawSQLKeywords))
	for i, kw := range rawSQLKeywords {
		out[i] = regexp.MustCompile(`(?i)["'].*` + kw + `.*WHERE.*["'].*\+`)
	}
	return out
}()

var plaintextPasswordPatterns = []labeledPattern{
	{regexp.MustCompile(`(?i)password\s*=\s*(?:request|req)\.(?:body|data|params|form|json)`), "storing plaintext password"},
	{regexp.MustCompile(`(?i)\.save\(\{[^}]*password:`), "saving plaintext password to database"},
}

var serverSecretPatterns = []labeledPattern{
	{regexp.MustCompile(`(?i)api_key\s*=\s*["'][a-zA-Z0-9_-]{20,}["']`), "API key"},
	{regexp.MustCompile(`(?i)secret_key\s*=\s*["'][^"']{16,}["']`), "secret key"},
	{regexp.MustCompile(`(?i)private_key\s*=\s*["']-----BEGIN`), "private key"},
	{regexp.MustCompile(`(?i)aws_secret_access_key\s*=\s*["'][^"']+["']`), "AWS secret key"},
	{regexp.MustCompile(`(?i)database_url\s*=\s*["'][^"'\n]*://[^"'\n]*:[^"'\n]*@`), "database URL with credentials"},
}

var (
	pythonMutatingRouteRe = regexp.MustCompile(`@(?:app|router|bp|blueprint)\.(?:route|post|put|delete|patch)\b`)
	scriptMutatingRouteRe = regexp.MustCompile(`\b(?:app|router)\.(?:post|put|delete|patch)\s*\(`)
	pythonEndpointRe      = regexp.MustCompile(`@(?:app|router)\.(?:get|post|put|delete|patch|route)\b`)
	scriptEndpointRe      = regexp.MustCompile(`\b(?:app|router)\.(?:get|post|put|delete|patch)\(`)
	tokenIssueRe          = regexp.MustCompile(`\bjwt\.(?:sign|encode)\s*\(|\bcreate_access_token\s*\(`)
	tokenExpiryRe         = regexp.MustCompile(`(?i)expires|\bexp\b|expiry`)
	corsWildcardRe        = regexp.MustCompile(`Access-Control-Allow-Origin[^\n*]{0,12}\*|\borigin\s*:\s*["']\*["']`)
	deleteFromRe          = regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+[\w."` + "`" + `]+`)
	whereClauseRe         = regexp.MustCompile(`(?i)^\s+WHERE\b`)
	bareDeleteRe          = regexp.MustCompile(`\.delete\(\)`)
	chainedWhereRe        = regexp.MustCompile(`^\s*\.where\b`)
	pythonExecRe          = regexp.MustCompile(`\bexec\s*\(`)
	pythonAwaitRe         = regexp.MustCompile(`\bawait `)
	pythonAsyncDefRe      = regexp.MustCompile(`\basync def\b`)
	scriptThenRe          = regexp.MustCompile(`\.then\([^)]+\)`)
	scriptAwaitCallRe     = regexp.MustCompile(`await [a-zA-Z_][a-zA-Z0-9_.]*\(`)
)

var (
	hashingTokens      = []string{"bcrypt", "hash", "argon", "scrypt", "pbkdf2"}
	authIndicators     = []string{"authenticate", "auth", "verify", "token", "jwt", "session"}
	validationTokens   = []string{"joi.", "zod", "yup.", "express-validator", "validationresult", "pydantic", "marshmallow", "wtforms", "validate("}
	authorizationToken = []string{"authorize", "permission", "hasrole", "require_role", "is_admin", "rbac"}
)

// ServerSideAnalyzer checks script-dialect files for injection,
// authentication and unsafe-operation defects.
type ServerSideAnalyzer struct {
	Logger *slog.Logger
}

// AnalyzeFile runs every server-side check on one file and accumulates into m.
func (a *ServerSideAnalyzer) AnalyzeFile(m *domain.ServerMetrics, path, content string) []domain.Finding {
	src := newSource(path, content)
	class := Classify(path)
	python := class.Dialect == DialectPython
	script := class.Script && !python

	m.TotalFiles++

	checks := []check{
		{"sql-injection", func() []domain.Finding { return checkSQLInjection(src, python, m) }},
		{"plaintext-password", func() []domain.Finding { return checkPlaintextPasswords(src) }},
		{"route-auth", func() []domain.Finding { return checkRouteAuthentication(src, python, m) }},
		{"token-expiry", func() []domain.Finding { return checkTokenExpiry(src) }},
		{"cors", func() []domain.Finding { return checkCORS(src) }},
		{"unsafe-delete", func() []domain.Finding { return checkUnsafeDelete(src) }},
		{"code-exec", func() []domain.Finding { return checkServerEval(src, python) }},
		{"secrets", func() []domain.Finding { return checkServerSecrets(src, m) }},
		{"error-handling", func() []domain.Finding { return checkAsyncErrorHandling(src, python, script, m) }},
	}
	findings := runChecks(a.Logger, path, checks)

	lower := strings.ToLower(content)
	if pattern.ContainsAny(lower, validationTokens...) {
		m.HasInputValidation = true
	}
	if pattern.ContainsAny(lower, authorizationToken...) {
		m.HasAuthorization = true
	}
	m.TotalEndpoints += countEndpoints(content, python, script)
	return findings
}

// checkSQLInjection reports at most one finding per line: recognized query
// calls first, then raw SQL keywords built with concatenation.
func checkSQLInjection(src *source, python bool, m *domain.ServerMetrics) []domain.Finding {
	patterns := scriptSQLPatterns
	if python {
		patterns = pythonSQLPatterns
	}

	var out []domain.Finding
	seen := lineSet{}
	for _, p := range patterns {
		for _, match := range src.find(p.re) {
			line := src.line(match.Start)
			if !seen.add(line) {
				continue
			}
			out = append(out, src.finding(domain.SeverityCritical, domain.CategorySQLInjection, line, issue{
				description: "SQL injection vulnerability: " + p.label,
				impact:      "Attackers can execute arbitrary SQL commands, steal/modify/delete data",
				fix:         `Use parameterized queries: execute("SELECT * FROM users WHERE id = ?", [user_id])`,
			}))
		}
	}
	for i, re := range rawSQLPatterns {
		for _, match := range src.find(re) {
			line := src.line(match.Start)
			if !seen.add(line) {
				continue
			}
			out = append(out, src.finding(domain.SeverityCritical, domain.CategorySQLInjection, line, issue{
				description: rawSQLKeywords[i] + " query with string concatenation",
				impact:      "SQL injection vulnerability - user input can manipulate query structure",
				fix:         "Use parameterized queries with placeholders instead of string concatenation",
			}))
		}
	}
	if len(out) > 0 {
		m.HasSQLInjectionRisk = true
	}
	return out
}

func checkPlaintextPasswords(src *source) []domain.Finding {
	var out []domain.Finding
	for _, p := range plaintextPasswordPatterns {
		for _, match := range src.find(p.re) {
			ctx := pattern.Window(src.content, match.Start, match.End, 300)
			if pattern.ContainsAnyFold(ctx, hashingTokens...) {
				continue
			}
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryPlaintextPassword, src.line(match.Start), issue{
				description: "Password stored in plaintext: " + p.label,
				impact:      "Passwords exposed in database - catastrophic security breach if compromised",
				fix:         "Hash passwords with bcrypt: await bcrypt.hash(password, 10)",
			}))
		}
	}
	return out
}

func checkRouteAuthentication(src *source, python bool, m *domain.ServerMetrics) []domain.Finding {
	re := scriptMutatingRouteRe
	if python {
		re = pythonMutatingRouteRe
	}
	loc := re.FindStringIndex(src.content)
	if loc == nil {
		return nil
	}
	if pattern.ContainsAnyFold(src.content, authIndicators...) {
		m.HasAuthentication = true
		return nil
	}
	return []domain.Finding{src.finding(domain.SeverityHigh, domain.CategoryMissingAuthentication, src.line(loc[0]), issue{
		description: "API endpoints without authentication middleware",
		impact:      "Unauthorized users can access protected resources",
		fix:         `Add authentication middleware: app.post("/api/resource", authenticate, handler)`,
	})}
}

func checkTokenExpiry(src *source) []domain.Finding {
	var out []domain.Finding
	for _, match := range src.find(tokenIssueRe) {
		if tokenExpiryRe.MatchString(pattern.After(src.content, match.Start, 200)) {
			continue
		}
		out = append(out, src.finding(domain.SeverityHigh, domain.CategoryTokenExpiry, src.line(match.Start), issue{
			description: "JWT token created without expiration",
			impact:      "Tokens remain valid indefinitely, cannot revoke compromised tokens",
			fix:         `Add expiration: jwt.sign(payload, secret, { expiresIn: "1h" })`,
		}))
	}
	return out
}

func checkCORS(src *source) []domain.Finding {
	var out []domain.Finding
	for _, match := range src.find(corsWildcardRe) {
		out = append(out, src.finding(domain.SeverityHigh, domain.CategoryCORS, src.line(match.Start), issue{
			description: "CORS configured to allow all origins (*)",
			impact:      "Any website can make requests to your API, potential CSRF attacks",
			fix:         "Restrict CORS to specific origins: Access-Control-Allow-Origin: https://yourdomain.com",
		}))
	}
	return out
}

// checkUnsafeDelete flags DELETE statements and ORM delete calls that carry
// no qualifying clause.
func checkUnsafeDelete(src *source) []domain.Finding {
	unsafe := issue{
		description: "DELETE operation without WHERE clause",
		impact:      "All data in table will be deleted - catastrophic data loss",
		fix:         "Add WHERE clause to limit deletion: DELETE FROM table WHERE id = ?",
	}
	var out []domain.Finding
	for _, match := range src.find(deleteFromRe) {
		if whereClauseRe.MatchString(src.content[match.End:]) {
			continue
		}
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryUnsafeOperation, src.line(match.Start), unsafe))
	}
	for _, match := range src.find(bareDeleteRe) {
		if chainedWhereRe.MatchString(src.content[match.End:]) {
			continue
		}
		prefix := pattern.LineOf(src.content, match.Start)
		if pattern.ContainsAnyFold(prefix, "filter", "where", "get(", "find") {
			continue
		}
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryUnsafeOperation, src.line(match.Start), unsafe))
	}
	return out
}

func checkServerEval(src *source, python bool) []domain.Finding {
	var out []domain.Finding
	for _, match := range src.find(evalRe) {
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryCodeInjection, src.line(match.Start), issue{
			description: "Use of eval() function",
			impact:      "Arbitrary code execution - attacker can run any code",
			fix:         "Remove eval() and use safe alternatives like JSON.parse()",
		}))
	}
	if !python {
		return out
	}
	for _, match := range src.find(pythonExecRe) {
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryCodeInjection, src.line(match.Start), issue{
			description: "Use of exec() function",
			impact:      "Arbitrary code execution vulnerability",
			fix:         "Remove exec() and refactor to use safe alternatives",
		}))
	}
	return out
}

func checkServerSecrets(src *source, m *domain.ServerMetrics) []domain.Finding {
	var out []domain.Finding
	for _, p := range serverSecretPatterns {
		for _, match := range src.find(p.re) {
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryExposedSecrets, src.line(match.Start), issue{
				description: fmt.Sprintf("Hardcoded %s in source code", p.label),
				impact:      "Credentials exposed in version control, accessible to anyone with code access",
				fix:         fmt.Sprintf(`Move to environment variables: os.environ.get("%s")`, envName(p.label)),
			}))
		}
	}
	if len(out) > 0 {
		m.HasSecretsExposure = true
	}
	return out
}

// asyncSite is an async construct and the test that decides whether it is
// covered by error handling.
type asyncSite struct {
	re      *regexp.Regexp
	guarded func(content string, m pattern.Match) bool
}

var pythonAsyncSites = []asyncSite{
	{pythonAwaitRe, func(c string, m pattern.Match) bool {
		return strings.Contains(pattern.Before(c, m.Start, 500), "try:")
	}},
	{pythonAsyncDefRe, func(c string, m pattern.Match) bool {
		return strings.Contains(pattern.After(c, m.End, 500), "try:")
	}},
}

var scriptAsyncSites = []asyncSite{
	{scriptThenRe, func(c string, m pattern.Match) bool {
		return strings.Contains(pattern.After(c, m.End, 50), ".catch")
	}},
	{scriptAwaitCallRe, func(c string, m pattern.Match) bool {
		return strings.Contains(pattern.Before(c, m.Start, 500), "try {")
	}},
}

// checkAsyncErrorHandling walks async sites in order. Guarded sites mark
// the file as handling errors; the first unguarded site per pattern is
// reported and ends that pattern's walk.
func checkAsyncErrorHandling(src *source, python, script bool, m *domain.ServerMetrics) []domain.Finding {
	var sites []asyncSite
	unguarded := issue{
		description: "Async operation without error handling",
		impact:      "Unhandled promise rejections can crash Node.js process",
		fix:         "Add error handling: try { await operation() } catch (error) { handleError(error) }",
	}
	switch {
	case python:
		sites = pythonAsyncSites
		unguarded = issue{
			description: "Async operation without try/except block",
			impact:      "Unhandled exceptions crash the application",
			fix:         "Wrap in try/except: try: await operation() except Exception as e: handle_error(e)",
		}
	case script:
		sites = scriptAsyncSites
	}

	var out []domain.Finding
	for _, site := range sites {
		for _, match := range src.find(site.re) {
			if site.guarded(src.content, match) {
				m.HasErrorHandling = true
				continue
			}
			out = append(out, src.finding(domain.SeverityHigh, domain.CategoryErrorHandling, src.line(match.Start), unguarded))
			break
		}
	}
	return out
}

func countEndpoints(content string, python, script bool) int {
	switch {
	case python:
		return len(pythonEndpointRe.FindAllStringIndex(content, -1))
	case script:
		return len(scriptEndpointRe.FindAllStringIndex(content, -1))
	}
	return 0
}
