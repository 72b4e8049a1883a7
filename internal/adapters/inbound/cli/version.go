package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/domain/analysis"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show codegate version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "codegate %s (%s) rules %s\n", version, commit, analysis.RulesVersion)
			return nil
		},
	}
}
