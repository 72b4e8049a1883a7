package e2e_test

import (
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "codegate-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "codegate")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/codegate")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

// fixture copies a sample project so scans can write cache and history.
func fixture(t *testing.T, name string) string {
	t.Helper()
	src, err := filepath.Abs(filepath.Join("../../testdata/projects", name))
	require.NoError(t, err)
	dst := t.TempDir()
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(src, p)
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dst, rel), data, 0644)
	})
	require.NoError(t, err)
	return dst
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.Output()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

func TestE2E_ScanClean(t *testing.T) {
	out, code := run(t, "scan", fixture(t, "clean"))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "codegate")
	assert.Contains(t, out, "APPROVED")
}

func TestE2E_ScanJSON(t *testing.T) {
	out, code := run(t, "scan", fixture(t, "vulnerable"), "--json")
	assert.Equal(t, 0, code)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StatusBlocked, report.Result.DeploymentStatus)
	assert.GreaterOrEqual(t, report.Counts.Critical, 1)
	assert.True(t, report.Result.Score >= 0 && report.Result.Score <= 100)
}

func TestE2E_ScanCIBlocks(t *testing.T) {
	_, code := run(t, "scan", fixture(t, "vulnerable"), "--ci")
	assert.Equal(t, 1, code, "should exit 1 when deployment is blocked")
}

func TestE2E_ScanCIPasses(t *testing.T) {
	_, code := run(t, "scan", fixture(t, "clean"), "--ci", "--min", "60")
	assert.Equal(t, 0, code)
}

func TestE2E_WorkerCountDoesNotChangeResult(t *testing.T) {
	dir := fixture(t, "vulnerable")
	one, code := run(t, "scan", dir, "--json", "--no-cache", "--workers", "1")
	require.Equal(t, 0, code)
	many, code := run(t, "scan", dir, "--json", "--no-cache", "--workers", "8")
	require.Equal(t, 0, code)

	var a, b domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(one), &a))
	require.NoError(t, json.Unmarshal([]byte(many), &b))
	assert.Equal(t, a.Findings, b.Findings)
	assert.Equal(t, a.Result, b.Result)
}

func TestE2E_History(t *testing.T) {
	dir := fixture(t, "clean")
	run(t, "scan", dir)
	run(t, "scan", dir)

	out, code := run(t, "history", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Score History")
}

func TestE2E_Rules(t *testing.T) {
	out, code := run(t, "rules")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Infinite Loop")
}

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "codegate")
}
