package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/adapters/outbound/tui"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
		fromDB     bool
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show score history for a project",
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

			ctx := cmd.Context()
			svc := newScanService(slog.Default())
			if fromDB {
				store, err := openStore(ctx, config.ReadEnvironment())
				if err != nil {
					return err
				}
				defer store.Close()
				svc.WithReportStore(store)
			}

			entries, err := svc.History(ctx, absPath, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().BoolVar(&fromDB, "db", false, "Read history from the report database")

	return cmd
}
