package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/adapters/outbound/scanner"
	"github.com/openkraft/codegate/internal/adapters/outbound/tui"
	"github.com/openkraft/codegate/internal/application"
)

func newWatchCmd() *cobra.Command {
	var (
		debounce time.Duration
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Rescan whenever files change",
		Long:  "Scan once, then rescan after each burst of file changes and print one summary line per run.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := slog.Default()
			cfg, err := config.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			svc := newScanService(logger)
			req := application.ScanRequest{
				ProjectPath: absPath,
				NewSource:   dirSource(absPath, logger),
				Workers:     workers,
			}
			w := cmd.OutOrStdout()
			scanOnce := func() {
				stamp := time.Now().Format("15:04:05")
				out, err := svc.Scan(ctx, req)
				if err != nil {
					fmt.Fprintf(w, "%s  error: %v\n", stamp, err)
					return
				}
				fmt.Fprintf(w, "%s  %s\n", stamp, tui.RenderSummary(out.Report))
			}

			scanOnce()
			return watchTree(ctx, absPath, scanner.OptionsFrom(cfg, logger), debounce, scanOnce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Quiet period before rescanning")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of analysis workers")

	return cmd
}

// watchTree calls onChange once each burst of events under root has been
// quiet for the debounce interval. It returns when ctx is done.
func watchTree(ctx context.Context, root string, opts scanner.Options, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root, root, opts); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod || ignoredEvent(root, ev.Name, opts) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, root, ev.Name, opts); err != nil {
						slog.Warn("watching new directory failed", "dir", ev.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

func addTree(w *fsnotify.Watcher, root, dir string, opts scanner.Options) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if opts.IgnoresDir(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

func ignoredEvent(root, name string, opts scanner.Options) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)
	return opts.IgnoresDir(rel) || opts.IgnoresDir(path.Dir(rel))
}
