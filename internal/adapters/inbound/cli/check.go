package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configloader "github.com/opsgate/opsgate/internal/adapters/outbound/config"
	"github.com/opsgate/opsgate/internal/adapters/outbound/gitinfo"
	"github.com/opsgate/opsgate/internal/adapters/outbound/report"
	resourceadapter "github.com/opsgate/opsgate/internal/adapters/outbound/resources"
	"github.com/opsgate/opsgate/internal/adapters/outbound/rulesource"
	"github.com/opsgate/opsgate/internal/adapters/outbound/scanners"
	"github.com/opsgate/opsgate/internal/adapters/outbound/tui"
	"github.com/opsgate/opsgate/internal/application"
	"github.com/opsgate/opsgate/internal/domain"
)

// checkOptions are the flag overrides layered on top of .opsgate.yaml.
type checkOptions struct {
	rulePaths  []string
	resources  string
	env        string
	frameworks []string
	jsonPath   string
	htmlPath   string
}

func newCheckCmd() *cobra.Command {
	var (
		path       string
		jsonOutput bool
		opts       checkOptions
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the validation gate against a target directory",
		Long: "Evaluate the target's resource definitions with every configured validator and " +
			"external scanner, then fail with a non-zero exit code if any result is an error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, tools, err := buildGate(path, opts)
			if err != nil {
				return err
			}

			rep, err := svc.Run(cmd.Context(), path, cfg, tools)
			if err != nil {
				return fmt.Errorf("running gate: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(rep); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(rep))
			}

			if err := writeArtifacts(rep, path, cfg); err != nil {
				return err
			}

			if !rep.OverallStatus {
				return fmt.Errorf("validation failed: %d errors", rep.Summary[domain.SeverityError])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Target directory to validate")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON instead of the console summary")
	cmd.Flags().StringSliceVar(&opts.rulePaths, "rules", nil, "Rule file or directory (repeatable, overrides config)")
	cmd.Flags().StringVar(&opts.resources, "resources", "", "Resources file (overrides config)")
	cmd.Flags().StringVar(&opts.env, "env", "", "Deployment environment (overrides config)")
	cmd.Flags().StringSliceVar(&opts.frameworks, "framework", nil, "Compliance framework to evaluate (repeatable, overrides config)")
	cmd.Flags().StringVar(&opts.jsonPath, "json-out", "", "Write the JSON report artifact to this path")
	cmd.Flags().StringVar(&opts.htmlPath, "html-out", "", "Write the HTML report artifact to this path")

	return cmd
}

// buildGate loads configuration, applies flag overrides, assembles the
// service with its outbound adapters, and installs the rule registry.
func buildGate(path string, opts checkOptions) (domain.GateConfig, *application.GateService, []domain.Tool, error) {
	cfg, err := configloader.New().Load(path)
	if err != nil {
		return domain.GateConfig{}, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if len(opts.rulePaths) > 0 {
		cfg.RulePaths = opts.rulePaths
	}
	if opts.resources != "" {
		cfg.ResourcesFile = opts.resources
	}
	if opts.env != "" {
		cfg.Environment = opts.env
	}
	if len(opts.frameworks) > 0 {
		cfg.Frameworks = opts.frameworks
	}
	if opts.jsonPath != "" {
		cfg.Output.JSON = opts.jsonPath
	}
	if opts.htmlPath != "" {
		cfg.Output.HTML = opts.htmlPath
	}

	svc := application.NewGateService(
		rulesource.New(),
		resourceadapter.New(),
		func(dir string) domain.FileSet { return resourceadapter.NewDirFileSet(dir) },
		gitinfo.New(),
		nil,
		log.Logger,
	)

	if len(cfg.RulePaths) > 0 {
		rulePaths := make([]string, 0, len(cfg.RulePaths))
		for _, p := range cfg.RulePaths {
			rulePaths = append(rulePaths, resolvePath(path, p))
		}
		if err := svc.LoadRules(rulePaths); err != nil {
			return domain.GateConfig{}, nil, nil, err
		}
	}

	tools, err := scanners.FromConfig(cfg.Tools)
	if err != nil {
		return domain.GateConfig{}, nil, nil, fmt.Errorf("configuring tools: %w", err)
	}

	return cfg, svc, tools, nil
}

func writeArtifacts(rep *domain.ValidationReport, path string, cfg domain.GateConfig) error {
	if cfg.Output.JSON != "" {
		if err := report.WriteJSON(rep, resolvePath(path, cfg.Output.JSON)); err != nil {
			return err
		}
	}
	if cfg.Output.HTML != "" {
		if err := report.WriteHTML(rep, resolvePath(path, cfg.Output.HTML)); err != nil {
			return err
		}
	}
	return nil
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
