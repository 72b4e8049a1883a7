package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/adapters/outbound/cache"
	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/adapters/outbound/objectstore"
	"github.com/openkraft/codegate/internal/adapters/outbound/postgres"
	"github.com/openkraft/codegate/internal/adapters/outbound/tui"
	"github.com/openkraft/codegate/internal/application"
	"github.com/openkraft/codegate/internal/domain"
)

type scanFlags struct {
	jsonOutput  bool
	badge       bool
	assessment  bool
	ciMode      bool
	minScore    int
	archive     string
	s3URL       string
	persist     bool
	noCache     bool
	resetCache  bool
	workers     int
	showHistory bool
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a codebase and decide whether it may deploy",
		Long: "Analyze a project directory, a zip archive or an archive in object storage " +
			"and produce a scored report with a deployment decision.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runScan(cmd, absPath, f)
		},
	}

	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&f.badge, "badge", false, "Output shields.io badge URL")
	cmd.Flags().BoolVar(&f.assessment, "assessment", false, "Show the management assessment instead of the technical report")
	cmd.Flags().BoolVar(&f.ciMode, "ci", false, "CI mode: exit 1 when the gate fails or the score is below --min")
	cmd.Flags().IntVar(&f.minScore, "min", 0, "Minimum score for CI mode (defaults to min_score from config)")
	cmd.Flags().StringVar(&f.archive, "archive", "", "Scan a zip archive instead of a directory")
	cmd.Flags().StringVar(&f.s3URL, "s3", "", "Fetch and scan an archive from object storage (s3://bucket/key)")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "Store the report in the database")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Ignore and do not update the per-file result cache")
	cmd.Flags().BoolVar(&f.resetCache, "reset-cache", false, "Delete the per-file result cache before scanning")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Number of analysis workers (defaults to config, then CPU count)")
	cmd.Flags().BoolVar(&f.showHistory, "history", false, "Show score history after scanning")
	cmd.MarkFlagsMutuallyExclusive("archive", "s3")
	cmd.MarkFlagsMutuallyExclusive("json", "badge", "assessment")

	return cmd
}

func runScan(cmd *cobra.Command, absPath string, f scanFlags) error {
	ctx := cmd.Context()
	logger := slog.Default()
	env := config.ReadEnvironment()
	svc := newScanService(logger)

	req := application.ScanRequest{
		ProjectPath: absPath,
		NewSource:   dirSource(absPath, logger),
		Workers:     f.workers,
		NoCache:     f.noCache,
		Persist:     f.persist,
	}

	switch {
	case f.s3URL != "":
		client, err := objectstore.New(env)
		if err != nil {
			return err
		}
		local, cleanup, err := fetchArchive(ctx, client, f.s3URL)
		if err != nil {
			return err
		}
		defer cleanup()
		req.ProjectPath = ""
		req.NewSource = zipSource(local, logger)
	case f.archive != "":
		req.ProjectPath = ""
		req.NewSource = zipSource(f.archive, logger)
	}

	if f.resetCache && req.ProjectPath != "" {
		if err := cache.New().Invalidate(req.ProjectPath); err != nil {
			return fmt.Errorf("resetting cache: %w", err)
		}
	}

	if f.persist {
		store, err := openStore(ctx, env)
		if err != nil {
			return err
		}
		defer store.Close()
		svc.WithReportStore(store)
	}

	out, err := svc.Scan(ctx, req)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	report := out.Report

	w := cmd.OutOrStdout()
	switch {
	case f.jsonOutput:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case f.badge:
		fmt.Fprintln(w, tui.BadgeURL(report))
	case f.assessment:
		fmt.Fprint(w, tui.RenderAssessment(report))
	default:
		fmt.Fprint(w, tui.RenderReport(report))
	}

	if f.showHistory && req.ProjectPath != "" {
		entries, err := svc.History(ctx, req.ProjectPath, 0)
		if err != nil {
			return err
		}
		fmt.Fprint(w, tui.RenderHistory(entries))
	}

	if f.ciMode {
		minScore := out.Config.MinScore
		if cmd.Flags().Changed("min") {
			minScore = f.minScore
		}
		return gate(report, out.Config, minScore)
	}
	return nil
}

// gate turns the report into a CI verdict.
func gate(r *domain.ScanReport, cfg domain.ProjectConfig, minScore int) error {
	if cfg.Fails(r.Result.DeploymentStatus) {
		return fmt.Errorf("deployment %s (%d critical, %d high)", r.Result.DeploymentStatus, r.Counts.Critical, r.Counts.High)
	}
	if r.Result.Score < minScore {
		return fmt.Errorf("score %d is below minimum %d", r.Result.Score, minScore)
	}
	return nil
}

// fetchArchive downloads rawURL to a temp file. The returned cleanup
// removes it.
func fetchArchive(ctx context.Context, fetcher domain.ArchiveFetcher, rawURL string) (string, func(), error) {
	bucket, key, err := objectstore.ParseURL(rawURL)
	if err != nil {
		return "", nil, err
	}

	tmp, err := os.CreateTemp("", "codegate-*.zip")
	if err != nil {
		return "", nil, err
	}
	local := tmp.Name()
	tmp.Close()
	cleanup := func() { os.Remove(local) }

	if err := fetcher.Fetch(ctx, bucket, key, local); err != nil {
		cleanup()
		return "", nil, err
	}
	return local, cleanup, nil
}

func openStore(ctx context.Context, env domain.Environment) (*postgres.Store, error) {
	store, err := postgres.Open(ctx, env.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
