package domain

import "context"

// RuleSource loads declarative rule definitions from one path.
type RuleSource interface {
	Load(path string) ([]Rule, error)
}

// ResourceLoader loads the collaborator-supplied resource property bags
// under evaluation, keyed by resource name.
type ResourceLoader interface {
	Load(path string) (map[string]ResourceConfig, error)
}

// FileSet is the collaborator-supplied view of the files under evaluation,
// consumed by file_exists and file_content compliance checks.
type FileSet interface {
	Exists(name string) bool
	Read(name string) ([]byte, error)
}

// ConfigLoader reads project configuration from a directory.
type ConfigLoader interface {
	Load(dir string) (GateConfig, error)
}

// GitInfo resolves version-control metadata for audit stamping.
type GitInfo interface {
	CommitHash(path string) (string, error)
}

// Tool is one external scanner: it invokes the underlying process against
// the target and returns findings already normalized onto the canonical
// severity scale. A failed invocation returns a *ToolInvocationError.
type Tool interface {
	Name() string
	Run(ctx context.Context, target string) ([]ValidationResult, error)
}

// CheckFunc is a custom-check hook with a fixed signature. Hooks are
// registered by name; a rule referencing an unregistered hook downgrades to
// an INFO "manual review required" outcome rather than failing.
type CheckFunc func(rc ResourceConfig) []ValidationResult
