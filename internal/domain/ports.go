package domain

import "context"

// SourceProvider enumerates the files of one scan job. Implementations
// filter binary and dependency files and enforce the per-file size cap.
type SourceProvider interface {
	Walk(ctx context.Context, fn func(SourceFile) error) error
	// Describe names the source for reports, e.g. a directory or archive path.
	Describe() string
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// ResultCache stores per-file analysis results keyed by content hash.
type ResultCache interface {
	Load(projectPath string) (*FileCache, error)
	Save(projectPath string, cache *FileCache) error
}

// ScoreHistory persists score entries for a project.
type ScoreHistory interface {
	Save(projectPath string, entry ScoreEntry) error
	Load(projectPath string) ([]ScoreEntry, error)
}

// ReportStore persists finished scan reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *ScanReport) error
	RecentReports(ctx context.Context, source string, limit int) ([]ScoreEntry, error)
}

// GitInfo reads version-control metadata for a project.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
	Branch(projectPath string) (string, error)
}

// ArchiveFetcher downloads a remote archive to a local file.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, bucket, key, dst string) error
}
