package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkraft/codegate/internal/domain"
)

// ErrNotConfigured is returned when no database URL is set.
var ErrNotConfigured = errors.New("database not configured (set CODEGATE_DATABASE_URL)")

const schema = `
CREATE TABLE IF NOT EXISTS scan_reports (
	id                uuid PRIMARY KEY,
	source            text NOT NULL,
	commit_hash       text NOT NULL DEFAULT '',
	branch            text NOT NULL DEFAULT '',
	score             int NOT NULL,
	grade             text NOT NULL,
	role_level        text NOT NULL,
	deployment_status text NOT NULL,
	total_files       int NOT NULL,
	critical_count    int NOT NULL,
	high_count        int NOT NULL,
	medium_count      int NOT NULL,
	low_count         int NOT NULL,
	strengths         jsonb NOT NULL,
	weaknesses        jsonb NOT NULL,
	metrics           jsonb NOT NULL,
	analyzed_at       timestamptz NOT NULL,
	duration_ms       bigint NOT NULL
);
CREATE INDEX IF NOT EXISTS scan_reports_source_idx ON scan_reports (source, analyzed_at DESC);
CREATE TABLE IF NOT EXISTS scan_findings (
	id             bigserial PRIMARY KEY,
	report_id      uuid NOT NULL REFERENCES scan_reports(id) ON DELETE CASCADE,
	severity       text NOT NULL,
	category       text NOT NULL,
	file_path      text NOT NULL,
	line_number    int NOT NULL,
	description    text NOT NULL,
	impact         text NOT NULL,
	fix_suggestion text NOT NULL
);
CREATE INDEX IF NOT EXISTS scan_findings_report_idx ON scan_findings (report_id);
`

// batchSize bounds how many finding inserts are pipelined per round trip.
const batchSize = 100

// Store implements domain.ReportStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}
	p, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// EnsureSchema creates the report tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// SaveReport writes the report row and its findings in one transaction.
func (s *Store) SaveReport(ctx context.Context, r *domain.ScanReport) error {
	strengths, err := json.Marshal(r.Result.Strengths)
	if err != nil {
		return err
	}
	weaknesses, err := json.Marshal(r.Result.Weaknesses)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(r.Metrics)
	if err != nil {
		return err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO scan_reports (
			id, source, commit_hash, branch, score, grade, role_level, deployment_status,
			total_files, critical_count, high_count, medium_count, low_count,
			strengths, weaknesses, metrics, analyzed_at, duration_ms
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, r.ID, r.Source, r.CommitHash, r.Branch, r.Result.Score, string(r.Result.Grade),
		string(r.Result.RoleLevel), string(r.Result.DeploymentStatus),
		r.TotalFiles, r.Counts.Critical, r.Counts.High, r.Counts.Medium, r.Counts.Low,
		strengths, weaknesses, metrics, r.AnalyzedAt, r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	if err := insertFindings(ctx, tx, r.ID, r.Findings); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertFindings(ctx context.Context, tx pgx.Tx, reportID string, findings []domain.Finding) error {
	for start := 0; start < len(findings); start += batchSize {
		end := min(start+batchSize, len(findings))
		batch := &pgx.Batch{}
		for _, f := range findings[start:end] {
			batch.Queue(`
				INSERT INTO scan_findings (
					report_id, severity, category, file_path, line_number, description, impact, fix_suggestion
				) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8)
			`, reportID, string(f.Severity), f.Category.String(), f.FilePath, f.LineNumber,
				f.Description, f.Impact, f.FixSuggestion)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting findings: %w", err)
		}
	}
	return nil
}

// RecentReports returns the newest entries for source, oldest first. A
// limit of zero or less returns every entry.
func (s *Store) RecentReports(ctx context.Context, source string, limit int) ([]domain.ScoreEntry, error) {
	var lim any = limit
	if limit <= 0 {
		lim = nil // LIMIT NULL
	}
	rows, err := s.pool.Query(ctx, `
		SELECT analyzed_at, commit_hash, score, grade, deployment_status, critical_count, high_count
		FROM scan_reports
		WHERE source = $1
		ORDER BY analyzed_at DESC
		LIMIT $2
	`, source, lim)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScoreEntry
	for rows.Next() {
		var (
			e          domain.ScoreEntry
			analyzedAt time.Time
			grade      string
			status     string
		)
		if err := rows.Scan(&analyzedAt, &e.CommitHash, &e.Score, &grade, &status, &e.Critical, &e.High); err != nil {
			return nil, err
		}
		e.Timestamp = analyzedAt.UTC().Format(time.RFC3339)
		e.Grade = domain.Grade(grade)
		e.DeploymentStatus = domain.DeploymentStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
