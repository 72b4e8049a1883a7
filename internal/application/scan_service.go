package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/analysis"
	"github.com/openkraft/codegate/internal/domain/scoring"
)

// ScanService orchestrates the scan pipeline:
// load config → walk source → analyze (sharded, cached) → score → record.
type ScanService struct {
	configLoader domain.ConfigLoader
	cache        domain.ResultCache
	history      domain.ScoreHistory
	git          domain.GitInfo
	reports      domain.ReportStore
	logger       *slog.Logger
	now          func() time.Time
}

// NewScanService wires the service. cache, history and git may be nil.
func NewScanService(
	configLoader domain.ConfigLoader,
	cache domain.ResultCache,
	history domain.ScoreHistory,
	git domain.GitInfo,
	logger *slog.Logger,
) *ScanService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanService{
		configLoader: configLoader,
		cache:        cache,
		history:      history,
		git:          git,
		logger:       logger,
		now:          time.Now,
	}
}

// WithReportStore enables persistence of reports for requests that ask for it.
func (s *ScanService) WithReportStore(store domain.ReportStore) *ScanService {
	s.reports = store
	return s
}

// ScanRequest describes one scan job.
type ScanRequest struct {
	// ProjectPath is where config, cache, history and git metadata live.
	// Empty for sources without a project directory, such as uploaded archives.
	ProjectPath string
	// NewSource builds the source provider once the project config is known.
	NewSource func(cfg domain.ProjectConfig) domain.SourceProvider
	// Workers overrides the configured worker count when positive.
	Workers int
	NoCache bool
	Persist bool
}

// ScanOutcome is a finished report together with the config it ran under.
type ScanOutcome struct {
	Report *domain.ScanReport
	Config domain.ProjectConfig
	// CachedFiles counts files whose result came from the cache.
	CachedFiles int
}

type shard struct {
	session *analysis.Session
	fresh   map[string]domain.CachedFile
	cached  int
}

func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanOutcome, error) {
	start := s.now()

	cfg := domain.DefaultConfig()
	if req.ProjectPath != "" {
		loaded, err := s.configLoader.Load(req.ProjectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	src := req.NewSource(cfg)
	configHash := ConfigHash(cfg)
	prev := s.loadCache(req, configHash)

	workers := req.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	analyzers := analysis.NewAnalyzers(s.logger, cfg.SkipAnalyzers)
	files := make(chan domain.SourceFile)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(files)
		return src.Walk(gctx, func(f domain.SourceFile) error {
			select {
			case files <- f:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	shards := make([]*shard, workers)
	for i := range shards {
		sh := &shard{
			session: analysis.NewSession(analyzers),
			fresh:   make(map[string]domain.CachedFile),
		}
		shards[i] = sh
		g.Go(func() error {
			for f := range files {
				hash := ContentHash(f.Content)
				res, ok := prev.Lookup(f.Path, hash)
				if ok {
					sh.session.Add(res)
					sh.cached++
				} else {
					res = sh.session.AnalyzeFile(f.Path, f.Content)
				}
				sh.fresh[f.Path] = domain.CachedFile{Hash: hash, Result: res}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("scan of %s exceeded timeout %s: %w", src.Describe(), cfg.Timeout, err)
		}
		return nil, fmt.Errorf("scanning %s: %w", src.Describe(), err)
	}

	session := analysis.NewSession(analyzers)
	next := domain.NewFileCache(analysis.RulesVersion, configHash)
	cached := 0
	for _, sh := range shards {
		session.Merge(sh.session)
		for path, cf := range sh.fresh {
			next.Files[path] = cf
		}
		cached += sh.cached
	}
	if session.FilesSeen() == 0 {
		return nil, fmt.Errorf("%s: %w", src.Describe(), domain.ErrNoSources)
	}

	findings := session.Findings()
	metrics := session.Metrics()
	report := &domain.ScanReport{
		ID:         uuid.NewString(),
		Source:     src.Describe(),
		Result:     scoring.Calculate(findings, metrics),
		TotalFiles: metrics.TotalFiles(),
		Counts:     domain.CountSeverities(findings),
		Findings:   findings,
		Metrics:    metrics,
		AnalyzedAt: start.UTC(),
	}
	s.attachGitInfo(req.ProjectPath, report)
	report.Duration = s.now().Sub(start)

	s.saveCache(req, next)
	s.recordHistory(req.ProjectPath, report)

	if req.Persist {
		if s.reports == nil {
			return nil, errors.New("persistence requested but no report store is configured")
		}
		if err := s.reports.SaveReport(ctx, report); err != nil {
			return nil, fmt.Errorf("persisting report: %w", err)
		}
	}

	s.logger.Info("scan complete",
		"source", report.Source,
		"files", session.FilesSeen(),
		"cached", cached,
		"findings", len(findings),
		"score", report.Result.Score,
		"status", report.Result.DeploymentStatus,
		"duration", report.Duration,
	)

	return &ScanOutcome{Report: report, Config: cfg, CachedFiles: cached}, nil
}

// ScanContent analyzes a single in-memory file under the default rules and
// scores it as if it were the whole submission.
func (s *ScanService) ScanContent(path, content string, skip []string) *domain.ScanReport {
	session := analysis.NewSession(analysis.NewAnalyzers(s.logger, skip))
	session.AnalyzeFile(path, content)

	findings := session.Findings()
	metrics := session.Metrics()
	return &domain.ScanReport{
		ID:         uuid.NewString(),
		Source:     path,
		Result:     scoring.Calculate(findings, metrics),
		TotalFiles: metrics.TotalFiles(),
		Counts:     domain.CountSeverities(findings),
		Findings:   findings,
		Metrics:    metrics,
		AnalyzedAt: s.now().UTC(),
	}
}

// History returns up to limit score entries for a project, oldest first.
// The report store is preferred when one is configured.
func (s *ScanService) History(ctx context.Context, projectPath string, limit int) ([]domain.ScoreEntry, error) {
	if s.reports != nil {
		return s.reports.RecentReports(ctx, projectPath, limit)
	}
	if s.history == nil {
		return nil, nil
	}
	entries, err := s.history.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (s *ScanService) loadCache(req ScanRequest, configHash string) *domain.FileCache {
	if req.NoCache || s.cache == nil || req.ProjectPath == "" {
		return nil
	}
	c, err := s.cache.Load(req.ProjectPath)
	if err != nil {
		s.logger.Warn("ignoring unreadable cache", "project", req.ProjectPath, "error", err)
		return nil
	}
	if c == nil || c.IsInvalidated(analysis.RulesVersion, configHash) {
		return nil
	}
	return c
}

func (s *ScanService) saveCache(req ScanRequest, c *domain.FileCache) {
	if req.NoCache || s.cache == nil || req.ProjectPath == "" {
		return
	}
	if err := s.cache.Save(req.ProjectPath, c); err != nil {
		s.logger.Warn("saving cache failed", "project", req.ProjectPath, "error", err)
	}
}

func (s *ScanService) attachGitInfo(projectPath string, r *domain.ScanReport) {
	if s.git == nil || projectPath == "" || !s.git.IsGitRepo(projectPath) {
		return
	}
	if hash, err := s.git.CommitHash(projectPath); err == nil {
		r.CommitHash = hash
	}
	if branch, err := s.git.Branch(projectPath); err == nil {
		r.Branch = branch
	}
}

func (s *ScanService) recordHistory(projectPath string, r *domain.ScanReport) {
	if s.history == nil || projectPath == "" {
		return
	}
	if err := s.history.Save(projectPath, domain.EntryFor(r)); err != nil {
		s.logger.Warn("saving history failed", "project", projectPath, "error", err)
	}
}

// ConfigHash fingerprints the config fields that change per-file results.
func ConfigHash(cfg domain.ProjectConfig) string {
	data, _ := json.Marshal(struct {
		Skip         []string `json:"skip"`
		Exclude      []string `json:"exclude"`
		MaxFileBytes int64    `json:"max_file_bytes"`
	}{cfg.SkipAnalyzers, cfg.ExcludePaths, cfg.MaxFileBytes})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentHash is the cache key for file content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
