package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/adapters/outbound/tui"
)

func newRulesCmd() *cobra.Command {
	var (
		path       string
		jsonOutput bool
		opts       checkOptions
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the loaded rule set",
		Long:  "Load and validate the configured rule files, then list every rule with its framework, category, severity and check type.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, _, err := buildGate(path, opts)
			if err != nil {
				return err
			}

			rules := svc.Rules()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rules)
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(rules))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Target directory holding the config")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringSliceVar(&opts.rulePaths, "rules", nil, "Rule file or directory (repeatable, overrides config)")

	return cmd
}
