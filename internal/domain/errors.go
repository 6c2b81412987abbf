package domain

import "fmt"

// Load-time errors abort the entire rule load; nothing ambiguous reaches
// evaluation. Evaluation-time errors are recovered into results instead.

// RuleParseError reports a rule definition that failed schema validation.
type RuleParseError struct {
	RuleID string
	Field  string
	Reason string
}

func (e *RuleParseError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("invalid rule: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid rule %q: %s: %s", e.RuleID, e.Field, e.Reason)
}

// DuplicateRuleIDError reports the same rule id loaded twice. The registry
// never silently prefers one definition over the other.
type DuplicateRuleIDError struct {
	RuleID string
}

func (e *DuplicateRuleIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q", e.RuleID)
}

// ToolInvocationError reports an external scanner that failed to execute.
// The gate degrades it to one ERROR result tagged by tool; the run continues.
type ToolInvocationError struct {
	Tool string
	Err  error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }
