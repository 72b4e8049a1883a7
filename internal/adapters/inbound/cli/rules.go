package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/codegate/internal/adapters/outbound/tui"
	"github.com/openkraft/codegate/internal/application"
	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/scoring"
)

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List finding categories and the penalty table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(application.CurrentRules())
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(domain.AllCategories(), scoring.Rules()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")
	return cmd
}
