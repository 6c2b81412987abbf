package scanners

import (
	"fmt"
	"time"

	"github.com/opsgate/opsgate/internal/domain"
)

// specs maps tool names to their invocation and parsing behavior. The
// severity tables live in the per-tool parse functions and are fixed, so
// roll-ups stay consistent regardless of which tools are enabled.
var specs = map[string]toolSpec{
	"bandit": {
		name: "bandit",
		bin:  "bandit",
		args: func(target, _ string) []string {
			return []string{"-r", target, "-f", "json", "-q"}
		},
		parse: parseBandit,
	},
	"semgrep": {
		name: "semgrep",
		bin:  "semgrep",
		args: func(target, _ string) []string {
			return []string{"scan", "--config=auto", "--json", "--quiet", target}
		},
		parse: parseSemgrep,
	},
	"safety": {
		name: "safety",
		bin:  "safety",
		args: func(target, _ string) []string {
			return []string{"check", "--json", "-r", requirementsPath(target)}
		},
		parse: parseSafety,
	},
	"checkov": {
		name: "checkov",
		bin:  "checkov",
		args: func(target, _ string) []string {
			return []string{"-d", target, "-o", "json", "--quiet"}
		},
		parse: parseCheckov,
	},
	"cfn-lint": {
		name: "cfn-lint",
		bin:  "cfn-lint",
		args: func(target, _ string) []string {
			return []string{"--format", "json", target}
		},
		parse: parseCfnLint,
	},
	"gitleaks": {
		name: "gitleaks",
		bin:  "gitleaks",
		args: func(target, report string) []string {
			return []string{
				"detect", "--source", target, "--no-banner",
				"--report-format", "json", "--report-path", report,
			}
		},
		reportFile: true,
		parse:      parseGitleaks,
	},
}

// New builds the tool named in cfg, or an error for an unknown name.
func New(cfg domain.ToolConfig) (domain.Tool, error) {
	spec, ok := specs[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unsupported tool %q", cfg.Name)
	}
	return &execTool{
		spec:    spec,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// FromConfig builds every configured tool.
func FromConfig(cfgs []domain.ToolConfig) ([]domain.Tool, error) {
	tools := make([]domain.Tool, 0, len(cfgs))
	for _, cfg := range cfgs {
		tool, err := New(cfg)
		if err != nil {
			return nil, err
		}
		tools = append(tools, tool)
	}
	return tools, nil
}
