package analysis_test

import (
	"testing"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzeSecurity(t *testing.T, path, content string) ([]domain.Finding, domain.SecurityMetrics) {
	t.Helper()
	var m domain.SecurityMetrics
	a := &analysis.SecurityAnalyzer{}
	return a.AnalyzeFile(&m, path, content), m
}

func TestSecurityAnalyzer_CommandInjectionOncePerLine(t *testing.T) {
	content := `os.system("rm -rf " + path)
subprocess.run(["ls", path])
`
	findings, m := analyzeSecurity(t, "ops.py", content)
	cmd := byCategory(findings, domain.CategoryCommandInjection)
	require.Len(t, cmd, 1)
	assert.Equal(t, 1, cmd[0].LineNumber)
	assert.Equal(t, domain.SeverityCritical, cmd[0].Severity)
	assert.Equal(t, 1, m.CriticalVulns)
}

func TestSecurityAnalyzer_PathTraversal(t *testing.T) {
	findings, _ := analyzeSecurity(t, "files.js", `fs.readFile('/uploads/' + name, cb);`)
	pt := byCategory(findings, domain.CategoryPathTraversal)
	require.Len(t, pt, 1)
	assert.Equal(t, domain.SeverityHigh, pt[0].Severity)

	safe := "const full = path.resolve(base, name);\nfs.readFile(base + name, cb);"
	findings, _ = analyzeSecurity(t, "files.js", safe)
	assert.Empty(t, byCategory(findings, domain.CategoryPathTraversal))
}

func TestSecurityAnalyzer_LDAPInjectionNeedsLDAPContext(t *testing.T) {
	query := `conn.search_s(base, scope, "(uid=" + user + ")")`
	findings, _ := analyzeSecurity(t, "dir.py", "import ldap\n"+query)
	ldap := byCategory(findings, domain.CategoryLDAPInjection)
	require.Len(t, ldap, 1)
	assert.Equal(t, 2, ldap[0].LineNumber)

	findings, _ = analyzeSecurity(t, "dir.py", query)
	assert.Empty(t, byCategory(findings, domain.CategoryLDAPInjection))
}

func TestSecurityAnalyzer_WeakCryptography(t *testing.T) {
	content := `h = hashlib.md5(data)
d = crypto.createHash('sha1')
`
	findings, m := analyzeSecurity(t, "crypto.py", content)
	weak := byCategory(findings, domain.CategoryWeakCryptography)
	require.Len(t, weak, 2)
	assert.Contains(t, weak[0].Description, "MD5")
	assert.Equal(t, "Use SHA-256 or stronger", weak[0].FixSuggestion)
	assert.Contains(t, weak[1].Description, "SHA1")
	assert.Equal(t, 2, m.HighVulns)
}

func TestSecurityAnalyzer_HardcodedKey(t *testing.T) {
	findings, _ := analyzeSecurity(t, "enc.js", `const key = "c2VjcmV0a2V5MTIzNDU2Nzg5MA==";`)
	keys := byCategory(findings, domain.CategoryHardcodedKey)
	require.Len(t, keys, 1)
	assert.Equal(t, domain.SeverityCritical, keys[0].Severity)

	findings, _ = analyzeSecurity(t, "enc.js", `const key = "short";`)
	assert.Empty(t, byCategory(findings, domain.CategoryHardcodedKey))
}

func TestSecurityAnalyzer_HardcodedKeyNamedVariables(t *testing.T) {
	tests := []struct {
		path string
		line string
	}{
		{"settings.py", `ENCRYPTION_KEY = "c2VjcmV0a2V5MTIzNDU2Nzg5"`},
		{"crypto.py", `aes_key = "c2VjcmV0a2V5MTIzNDU2Nzg5"`},
		{"crypto.js", `const secretKey = "c2VjcmV0a2V5MTIzNDU2Nzg5";`},
		{"settings.py", `SECRET_KEY='c2VjcmV0a2V5MTIzNDU2Nzg5'`},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			findings, _ := analyzeSecurity(t, tt.path, tt.line)
			keys := byCategory(findings, domain.CategoryHardcodedKey)
			require.Len(t, keys, 1)
			assert.Equal(t, 1, keys[0].LineNumber)
		})
	}
}

func TestSecurityAnalyzer_WeakRandomnessNeedsSensitiveContext(t *testing.T) {
	findings, _ := analyzeSecurity(t, "t.js", `const token = Math.random().toString(36);`)
	require.Len(t, byCategory(findings, domain.CategoryWeakRandomness), 1)

	findings, _ = analyzeSecurity(t, "t.js", `const jitter = Math.random() * 100;`)
	assert.Empty(t, byCategory(findings, domain.CategoryWeakRandomness))
}

func TestSecurityAnalyzer_FileUpload(t *testing.T) {
	findings, _ := analyzeSecurity(t, "up.js", `const store = multer({ dest: 'uploads/' });`)
	require.Len(t, byCategory(findings, domain.CategoryFileUpload), 1)

	findings, _ = analyzeSecurity(t, "up.js", `const store = multer({ dest: 'uploads/', fileFilter: onlyImages });`)
	assert.Empty(t, byCategory(findings, domain.CategoryFileUpload))
}

func TestSecurityAnalyzer_DependencyManifest(t *testing.T) {
	findings, m := analyzeSecurity(t, "web/package.json", `{"name": "web"}`)
	require.Len(t, findings, 1)
	assert.Equal(t, domain.CategoryDependencyManagement, findings[0].Category)
	assert.Equal(t, domain.SeverityMedium, findings[0].Severity)
	assert.Equal(t, 1, m.MediumVulns)
	assert.Equal(t, 1, m.TotalVulnerabilities)
}

func TestSecurityAnalyzer_CleanFile(t *testing.T) {
	findings, m := analyzeSecurity(t, "ok.go", "package ok\n\nfunc Add(a, b int) int { return a + b }\n")
	assert.Empty(t, findings)
	assert.Equal(t, domain.SecurityMetrics{}, m)
}
