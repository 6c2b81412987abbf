package domain

import (
	"time"
)

// Severity is the canonical three-level scale used to gate deployments.
// External scanner vocabularies are normalized onto it by tool adapters.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// ValidSeverities enumerates the canonical scale, worst first.
var ValidSeverities = []Severity{SeverityError, SeverityWarning, SeverityInfo}

// Rank orders severities for worst-of comparisons. Higher is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// WorstSeverity returns the higher-ranked of two severities.
func WorstSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// CheckType selects the evaluator for a declarative rule. It is runtime
// data: adding a check type means adding a dispatch-table entry, not a type.
type CheckType string

const (
	CheckFileExists       CheckType = "file_exists"
	CheckFileContent      CheckType = "file_content"
	CheckResourceProperty CheckType = "resource_property"
	CheckDataGovernance   CheckType = "data_governance"
	CheckSecurityPolicy   CheckType = "security_policy"
	CheckCustom           CheckType = "custom"
)

// ValidCheckTypes enumerates all recognized check types.
var ValidCheckTypes = []CheckType{
	CheckFileExists, CheckFileContent, CheckResourceProperty,
	CheckDataGovernance, CheckSecurityPolicy, CheckCustom,
}

// Rule is one declarative check definition. Rules are immutable once loaded;
// the registry rejects an entire load on any malformed entry.
type Rule struct {
	ID          string         `yaml:"id"          json:"id"`
	Name        string         `yaml:"name"        json:"name"`
	Description string         `yaml:"description" json:"description,omitempty"`
	Framework   string         `yaml:"framework"   json:"framework,omitempty"`
	Category    string         `yaml:"category"    json:"category,omitempty"`
	Severity    Severity       `yaml:"severity"    json:"severity"`
	CheckType   CheckType      `yaml:"check_type"  json:"check_type"`
	Parameters  map[string]any `yaml:"parameters"  json:"parameters,omitempty"`
	Remediation string         `yaml:"remediation" json:"remediation,omitempty"`
}

// RuleIDInternalError tags the single ERROR result synthesized when a
// validator panics mid-run.
const RuleIDInternalError = "internal_validation_error"

// RuleIDIncomplete tags results for work still in flight when the global
// timeout expired.
const RuleIDIncomplete = "incomplete_evaluation"

// ValidationResult is the outcome of evaluating one rule (or ad hoc check)
// against one resource. Produced fresh per evaluation, never reused.
type ValidationResult struct {
	Valid             bool     `json:"is_valid"`
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	PropertyName      string   `json:"property_name,omitempty"`
	SuggestedFix      string   `json:"suggested_fix,omitempty"`
	DocumentationLink string   `json:"documentation_link,omitempty"`
	RuleID            string   `json:"rule_id,omitempty"`
	Source            string   `json:"source,omitempty"`
	File              string   `json:"file,omitempty"`
	Line              int      `json:"line,omitempty"`
	Incomplete        bool     `json:"incomplete,omitempty"`
}

// Summary counts results per severity. The aggregator guarantees the counts
// sum to the number of results in the report.
type Summary map[Severity]int

// Add merges other into s.
func (s Summary) Add(other Summary) {
	for sev, n := range other {
		s[sev] += n
	}
}

// Total returns the sum of all counts.
func (s Summary) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// ValidationReport is the aggregated outcome for one target: ordered results,
// per-severity rollup, and the overall pass/fail that drives the exit code.
type ValidationReport struct {
	Target        string             `json:"target"`
	RunID         string             `json:"run_id,omitempty"`
	Commit        string             `json:"commit,omitempty"`
	OverallStatus bool               `json:"overall_status"`
	Results       []ValidationResult `json:"results"`
	Summary       Summary            `json:"summary"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ScanFinding is a raw result from an external scanning tool, prior to
// severity normalization by the tool's adapter.
type ScanFinding struct {
	Tool        string `json:"tool"`
	RawSeverity string `json:"raw_severity"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Description string `json:"description"`
	FindingID   string `json:"finding_id"`
}

// ResourceConfig is the opaque property bag under evaluation: one synthesized
// infrastructure resource or file set. Validators only read it.
type ResourceConfig map[string]any

// Has reports whether the key is present with a non-nil value.
func (rc ResourceConfig) Has(key string) bool {
	v, ok := rc[key]
	return ok && v != nil
}

// GetString returns the value for key if it is a string.
func (rc ResourceConfig) GetString(key string) (string, bool) {
	v, ok := rc[key].(string)
	return v, ok
}

// GetBool returns the value for key if it is a bool.
func (rc ResourceConfig) GetBool(key string) (bool, bool) {
	v, ok := rc[key].(bool)
	return v, ok
}

// GetFloat returns the value for key as float64, converting the numeric
// types yaml and json decoders produce.
func (rc ResourceConfig) GetFloat(key string) (float64, bool) {
	switch v := rc[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetMap returns the value for key if it is a nested map.
func (rc ResourceConfig) GetMap(key string) (map[string]any, bool) {
	v, ok := rc[key].(map[string]any)
	return v, ok
}

// GetSlice returns the value for key if it is a list.
func (rc ResourceConfig) GetSlice(key string) ([]any, bool) {
	v, ok := rc[key].([]any)
	return v, ok
}

// GetStringSlice returns the value for key as a list of strings, ignoring
// non-string elements.
func (rc ResourceConfig) GetStringSlice(key string) ([]string, bool) {
	raw, ok := rc[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// Environment returns the deployment environment declared on the resource,
// or empty if none is set. Operational severity escalation keys on "prod".
func (rc ResourceConfig) Environment() string {
	env, _ := rc.GetString("environment")
	return env
}
