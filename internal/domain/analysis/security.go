package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/pattern"
)

var commandExecPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bexec(?:Sync)?\s*\([^)]*\+`),
	regexp.MustCompile(`\bspawn(?:Sync)?\s*\([^)]*\+`),
	regexp.MustCompile(`\bsystem\s*\([^)]*\+`),
	regexp.MustCompile(`\bsubprocess\.\w+\s*\([^)]*\+`),
	regexp.MustCompile(`\bos\.(?:system|popen)\s*\([^)]*\+`),
}

var fileAccessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bopen\s*\([^)]*\+`),
	regexp.MustCompile(`\breadFile(?:Sync)?\s*\([^)]*\+`),
	regexp.MustCompile(`\bfs\.\w+\s*\([^)]*\+`),
}

var weakAlgorithms = []struct {
	re   *regexp.Regexp
	name string
	fix  string
}{
	{regexp.MustCompile(`(?i)\bmd5\b`), "MD5", "Use SHA-256 or stronger"},
	{regexp.MustCompile(`(?i)\bsha-?1\b`), "SHA1", "Use SHA-256 or stronger"},
	{regexp.MustCompile(`(?i)\bdes\b`), "DES", "Use AES-256"},
	{regexp.MustCompile(`(?i)\brc4\b`), "RC4", "Use AES-256"},
}

var weakRandomPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Math\.random\(\)`),
	regexp.MustCompile(`\brandom\.random\(\)`),
	regexp.MustCompile(`\brandom\.randint\(`),
	regexp.MustCompile(`\brandom\.choice\(`),
}

var uploadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmulter\s*\(`),
	regexp.MustCompile(`\bupload\.`),
	regexp.MustCompile(`\bFileField\b`),
	regexp.MustCompile(`\brequest\.files\b`),
}

var (
	ldapSearchRe      = regexp.MustCompile(`\bsearch(?:_s)?\s*\([^)]*\+`)
	hardcodedKeyRe    = regexp.MustCompile(`(?i)key\s*=\s*["'][a-zA-Z0-9+/=]{16,}["']`)
	pathSafeTokens    = []string{"path.resolve", "path.normalize", "normalize(", "abspath", "realpath", "secure_filename"}
	sensitiveTokens   = []string{"token", "password", "secret", "key", "session", "nonce"}
	uploadCheckTokens = []string{"filefilter", "mimetype", "extension", "allowed_extensions", "content_type"}
)

// SecurityAnalyzer runs cross-cutting vulnerability checks on every textual
// file regardless of dialect.
type SecurityAnalyzer struct {
	Logger *slog.Logger
}

// AnalyzeFile runs every security check on one file and records each
// finding's severity in m.
func (a *SecurityAnalyzer) AnalyzeFile(m *domain.SecurityMetrics, path, content string) []domain.Finding {
	src := newSource(path, content)
	lower := strings.ToLower(content)

	checks := []check{
		{"command-injection", func() []domain.Finding { return checkCommandInjection(src) }},
		{"path-traversal", func() []domain.Finding { return checkPathTraversal(src) }},
		{"ldap-injection", func() []domain.Finding { return checkLDAPInjection(src, lower) }},
		{"weak-crypto", func() []domain.Finding { return checkWeakCrypto(src) }},
		{"hardcoded-key", func() []domain.Finding { return checkHardcodedKey(src) }},
		{"weak-random", func() []domain.Finding { return checkWeakRandom(src, lower) }},
		{"file-upload", func() []domain.Finding { return checkFileUpload(src) }},
		{"dependencies", func() []domain.Finding { return checkDependencyManifest(src) }},
	}
	findings := runChecks(a.Logger, path, checks)
	for _, f := range findings {
		m.Record(f.Severity)
	}
	return findings
}

func checkCommandInjection(src *source) []domain.Finding {
	var out []domain.Finding
	seen := lineSet{}
	for _, re := range commandExecPatterns {
		for _, match := range src.find(re) {
			line := src.line(match.Start)
			if !seen.add(line) {
				continue
			}
			out = append(out, src.finding(domain.SeverityCritical, domain.CategoryCommandInjection, line, issue{
				description: "Command execution with string concatenation",
				impact:      "Attackers can execute arbitrary system commands on the server",
				fix:         "Use parameterized commands with an argument list, never build shell strings from input",
			}))
		}
	}
	return out
}

func checkPathTraversal(src *source) []domain.Finding {
	var out []domain.Finding
	seen := lineSet{}
	for _, re := range fileAccessPatterns {
		for _, match := range src.find(re) {
			if pattern.ContainsAny(pattern.Window(src.content, match.Start, match.End, 200), pathSafeTokens...) {
				continue
			}
			line := src.line(match.Start)
			if !seen.add(line) {
				continue
			}
			out = append(out, src.finding(domain.SeverityHigh, domain.CategoryPathTraversal, line, issue{
				description: "File path built with string concatenation",
				impact:      "Attackers can read or write files outside the intended directory using ../ sequences",
				fix:         "Validate and normalize paths: path.resolve(baseDir, name) and check it stays under baseDir",
			}))
		}
	}
	return out
}

func checkLDAPInjection(src *source, lower string) []domain.Finding {
	if !strings.Contains(lower, "ldap") {
		return nil
	}
	var out []domain.Finding
	for _, match := range src.find(ldapSearchRe) {
		out = append(out, src.finding(domain.SeverityHigh, domain.CategoryLDAPInjection, src.line(match.Start), issue{
			description: "LDAP query built with string concatenation",
			impact:      "Attackers can alter directory queries to bypass authentication or leak entries",
			fix:         "Escape LDAP filter values or use a parameterized filter builder",
		}))
	}
	return out
}

func checkWeakCrypto(src *source) []domain.Finding {
	var out []domain.Finding
	for _, alg := range weakAlgorithms {
		for _, match := range src.find(alg.re) {
			out = append(out, src.finding(domain.SeverityHigh, domain.CategoryWeakCryptography, src.line(match.Start), issue{
				description: fmt.Sprintf("Weak cryptographic algorithm: %s", alg.name),
				impact:      "Data protected by broken algorithms can be forged or decrypted",
				fix:         alg.fix,
			}))
		}
	}
	return out
}

func checkHardcodedKey(src *source) []domain.Finding {
	var out []domain.Finding
	for _, match := range src.find(hardcodedKeyRe) {
		out = append(out, src.finding(domain.SeverityCritical, domain.CategoryHardcodedKey, src.line(match.Start), issue{
			description: "Encryption key hardcoded in source code",
			impact:      "Anyone with code access can decrypt protected data",
			fix:         "Load keys from a secrets manager or environment variable",
		}))
	}
	return out
}

func checkWeakRandom(src *source, lower string) []domain.Finding {
	if !pattern.ContainsAny(lower, sensitiveTokens...) {
		return nil
	}
	var out []domain.Finding
	for _, re := range weakRandomPatterns {
		for _, match := range src.find(re) {
			out = append(out, src.finding(domain.SeverityHigh, domain.CategoryWeakRandomness, src.line(match.Start), issue{
				description: "Non-cryptographic random source used in security-sensitive code",
				impact:      "Generated tokens or secrets are predictable",
				fix:         "Use crypto.randomBytes() or the secrets module",
			}))
		}
	}
	return out
}

// checkFileUpload reports the first upload handler per pattern that has no
// type validation in the following 500 bytes.
func checkFileUpload(src *source) []domain.Finding {
	var out []domain.Finding
	for _, re := range uploadPatterns {
		for _, match := range src.find(re) {
			if pattern.ContainsAnyFold(pattern.After(src.content, match.Start, 500), uploadCheckTokens...) {
				continue
			}
			out = append(out, src.finding(domain.SeverityHigh, domain.CategoryFileUpload, src.line(match.Start), issue{
				description: "File upload without type validation",
				impact:      "Attackers can upload executable or malicious files",
				fix:         "Validate mimetype and extension against an allowlist and cap the file size",
			}))
			break
		}
	}
	return out
}

func checkDependencyManifest(src *source) []domain.Finding {
	if !IsDependencyManifest(src.path) {
		return nil
	}
	return []domain.Finding{src.finding(domain.SeverityMedium, domain.CategoryDependencyManagement, 1, issue{
		description: "Dependency manifest found, dependencies should be audited for known vulnerabilities",
		impact:      "Outdated dependencies may carry published vulnerabilities",
		fix:         "Run npm audit, pip-audit or govulncheck regularly and pin versions",
	})}
}
