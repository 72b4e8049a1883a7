package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/openkraft/codegate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCommand_JSON(t *testing.T) {
	dir := copyProject(t, "clean")
	out, err := execute(t, "scan", dir, "--json")
	require.NoError(t, err)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StatusApproved, report.Result.DeploymentStatus)
	assert.Empty(t, report.Findings)
	assert.NotEmpty(t, report.ID)
}

func TestScanCommand_DefaultReport(t *testing.T) {
	dir := copyProject(t, "vulnerable")
	out, err := execute(t, "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "codegate")
	assert.Contains(t, out, "BLOCKED")
	assert.Contains(t, out, "api/db.py")
}

func TestScanCommand_CIFailsWhenBlocked(t *testing.T) {
	dir := copyProject(t, "vulnerable")
	_, err := execute(t, "scan", dir, "--ci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOCKED")
}

func TestScanCommand_CIRespectsFailOnNever(t *testing.T) {
	dir := copyProject(t, "vulnerable")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codegate.yaml"), []byte("fail_on: never\n"), 0644))
	_, err := execute(t, "scan", dir, "--ci")
	assert.NoError(t, err)
}

func TestScanCommand_CIMin(t *testing.T) {
	dir := copyProject(t, "clean")
	_, err := execute(t, "scan", dir, "--ci", "--min", "100")
	assert.ErrorContains(t, err, "below minimum 100")

	_, err = execute(t, "scan", dir, "--ci", "--min", "1")
	assert.NoError(t, err)
}

func TestScanCommand_CIMinFromConfig(t *testing.T) {
	dir := copyProject(t, "clean")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codegate.yaml"), []byte("min_score: 99\n"), 0644))
	_, err := execute(t, "scan", dir, "--ci")
	assert.ErrorContains(t, err, "below minimum 99")
}

func TestScanCommand_Badge(t *testing.T) {
	dir := copyProject(t, "clean")
	out, err := execute(t, "scan", dir, "--badge")
	require.NoError(t, err)
	assert.Contains(t, out, "img.shields.io")
}

func TestScanCommand_Assessment(t *testing.T) {
	dir := copyProject(t, "vulnerable")
	out, err := execute(t, "scan", dir, "--assessment")
	require.NoError(t, err)
	assert.Contains(t, out, "Role level")
	assert.Contains(t, out, "SQL injection vulnerability")
}

func TestScanCommand_WritesHistory(t *testing.T) {
	dir := copyProject(t, "clean")
	_, err := execute(t, "scan", dir)
	require.NoError(t, err)
	out, err := execute(t, "scan", dir, "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "Score History")

	out, err = execute(t, "history", dir, "--json")
	require.NoError(t, err)
	var entries []domain.ScoreEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 2)
}

func TestScanCommand_NoCache(t *testing.T) {
	dir := copyProject(t, "clean")
	_, err := execute(t, "scan", dir, "--no-cache")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".codegate", "cache", "files.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = execute(t, "scan", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".codegate", "cache", "files.json"))
	assert.NoError(t, err)
}

func TestScanCommand_Archive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("api/db.py")
	require.NoError(t, err)
	_, err = w.Write([]byte(`cursor.execute("SELECT * FROM users WHERE id=" + user_id)` + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	out, err := execute(t, "scan", "--archive", archive, "--json")
	require.NoError(t, err)

	var report domain.ScanReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, archive, report.Source)
	assert.Equal(t, domain.CategorySQLInjection, report.Findings[0].Category)
}

func TestScanCommand_S3RequiresEndpoint(t *testing.T) {
	t.Setenv("CODEGATE_S3_ENDPOINT", "")
	_, err := execute(t, "scan", "--s3", "s3://uploads/app.zip")
	assert.ErrorContains(t, err, "CODEGATE_S3_ENDPOINT")
}

func TestScanCommand_PersistRequiresDatabase(t *testing.T) {
	t.Setenv("CODEGATE_DATABASE_URL", "")
	dir := copyProject(t, "clean")
	_, err := execute(t, "scan", dir, "--persist")
	assert.ErrorContains(t, err, "CODEGATE_DATABASE_URL")
}

func TestScanCommand_EmptyProject(t *testing.T) {
	_, err := execute(t, "scan", t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoSources)
}

func TestScanCommand_ExclusiveFormats(t *testing.T) {
	_, err := execute(t, "scan", t.TempDir(), "--json", "--badge")
	assert.Error(t, err)
}

func TestScanCommand_ResetCache(t *testing.T) {
	dir := copyProject(t, "clean")
	cacheFile := filepath.Join(dir, ".codegate", "cache", "files.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(cacheFile), 0755))
	require.NoError(t, os.WriteFile(cacheFile, []byte("{corrupt"), 0644))

	_, err := execute(t, "scan", dir, "--reset-cache")
	require.NoError(t, err)

	data, err := os.ReadFile(cacheFile)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
