package domain

import "fmt"

// ValidValidators enumerates the evaluation layers in their default order.
var ValidValidators = []string{
	"input", "security", "compliance", "cost", "operational",
}

// ValidTools enumerates the external scanners with a built-in adapter.
var ValidTools = []string{
	"bandit", "semgrep", "safety", "checkov", "cfn-lint", "gitleaks",
}

// ValidFrameworks enumerates the regulatory frameworks rules may target.
// Rule files may introduce others; these are the documented defaults.
var ValidFrameworks = []string{"soc2", "iso27001", "gdpr", "hipaa"}

// GateConfig holds project-level configuration loaded from .opsgate.yaml.
type GateConfig struct {
	Environment        string       `yaml:"environment"         json:"environment,omitempty"`
	RulePaths          []string     `yaml:"rule_paths"          json:"rule_paths,omitempty"`
	ResourcesFile      string       `yaml:"resources"           json:"resources,omitempty"`
	Frameworks         []string     `yaml:"frameworks"          json:"frameworks,omitempty"`
	Validators         []string     `yaml:"validators"          json:"validators,omitempty"`
	Tools              []ToolConfig `yaml:"tools"               json:"tools,omitempty"`
	Workers            int          `yaml:"workers"             json:"workers,omitempty"`
	TimeoutSeconds     int          `yaml:"timeout_seconds"     json:"timeout_seconds,omitempty"`
	IncompleteSeverity Severity     `yaml:"incomplete_severity" json:"incomplete_severity,omitempty"`
	Output             OutputConfig `yaml:"output"              json:"output,omitempty"`
}

// ToolConfig configures one external scanner invocation.
type ToolConfig struct {
	Name           string `yaml:"name"            json:"name"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds,omitempty"`
}

// OutputConfig names the report artifacts to write.
type OutputConfig struct {
	JSON string `yaml:"json" json:"json,omitempty"`
	HTML string `yaml:"html" json:"html,omitempty"`
}

// DefaultConfig returns the configuration used when .opsgate.yaml is absent.
func DefaultConfig() GateConfig {
	return GateConfig{
		Environment:        "dev",
		Validators:         append([]string(nil), ValidValidators...),
		Workers:            4,
		TimeoutSeconds:     300,
		IncompleteSeverity: SeverityError,
	}
}

// Validate checks the config for invalid values and returns a descriptive
// error. Unset fields are filled by ApplyDefaults, not flagged here.
func (c GateConfig) Validate() error {
	for _, v := range c.Validators {
		if !contains(ValidValidators, v) {
			return fmt.Errorf("unknown validator %q (valid: input, security, compliance, cost, operational)", v)
		}
	}

	for i, t := range c.Tools {
		if t.Name == "" {
			return fmt.Errorf("tools[%d].name must not be empty", i)
		}
		if !contains(ValidTools, t.Name) {
			return fmt.Errorf("unknown tool %q (valid: %v)", t.Name, ValidTools)
		}
		if t.TimeoutSeconds < 0 {
			return fmt.Errorf("tools[%d].timeout_seconds must be >= 0 (got %d)", i, t.TimeoutSeconds)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0 (got %d)", c.TimeoutSeconds)
	}

	// INCOMPLETE defaults to ERROR and may only be downgraded.
	switch c.IncompleteSeverity {
	case "", SeverityError, SeverityWarning, SeverityInfo:
	default:
		return fmt.Errorf("incomplete_severity must be one of ERROR, WARNING, INFO (got %q)", c.IncompleteSeverity)
	}

	return nil
}

// ApplyDefaults fills unset fields from DefaultConfig. Explicit values win.
func (c GateConfig) ApplyDefaults() GateConfig {
	def := DefaultConfig()
	if c.Environment == "" {
		c.Environment = def.Environment
	}
	if len(c.Validators) == 0 {
		c.Validators = def.Validators
	}
	if c.Workers == 0 {
		c.Workers = def.Workers
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.IncompleteSeverity == "" {
		c.IncompleteSeverity = def.IncompleteSeverity
	}
	return c
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
