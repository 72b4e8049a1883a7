package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/domain"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a " + config.FileName + " configuration file",
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

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			if err := os.WriteFile(dest, []byte(generateConfig(domain.DefaultConfig())), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing "+config.FileName)

	return cmd
}

func generateConfig(cfg domain.ProjectConfig) string {
	return fmt.Sprintf(`# codegate configuration

# Deployment status that fails "codegate scan --ci": blocked, caution or never.
fail_on: %s

# Minimum score for "codegate scan --ci".
min_score: %d

# Files larger than this many bytes are skipped.
max_file_bytes: %d

# Per-scan deadline.
timeout: %s

# workers: 4

# exclude_paths:
#   - generated
#   - "**/*.min.js"

# skip_analyzers:
#   - content
`, cfg.FailOn, cfg.MinScore, cfg.MaxFileBytes, cfg.Timeout)
}
