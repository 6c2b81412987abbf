// Package registry holds the immutable rule snapshot the whole engine reads.
// A snapshot is built once from rule sources and swapped atomically on
// reload; a running evaluation always completes against the snapshot it
// started with.
package registry

import (
	"fmt"
	"sync/atomic"

	"github.com/opsgate/opsgate/internal/domain"
)

// Snapshot is an immutable, indexed view of a fully validated rule set.
type Snapshot struct {
	rules       []domain.Rule
	byID        map[string]domain.Rule
	byFramework map[string][]domain.Rule
}

// paramCheck validates the parameter shape required by one check type.
// Violations are load-time schema errors, never runtime ones.
type paramCheck func(r domain.Rule) *domain.RuleParseError

var paramChecks = map[domain.CheckType]paramCheck{
	domain.CheckFileExists:       checkFileExistsParams,
	domain.CheckFileContent:      checkFileContentParams,
	domain.CheckResourceProperty: checkResourcePropertyParams,
	domain.CheckDataGovernance:   checkNamedHookParams,
	domain.CheckSecurityPolicy:   checkNamedHookParams,
	domain.CheckCustom:           checkNamedHookParams,
}

// Build validates every rule and constructs a snapshot. The load is
// all-or-nothing: any schema violation or duplicate id fails the whole
// build and no partial registry is ever returned.
func Build(rules []domain.Rule) (*Snapshot, error) {
	snap := &Snapshot{
		rules:       make([]domain.Rule, 0, len(rules)),
		byID:        make(map[string]domain.Rule, len(rules)),
		byFramework: make(map[string][]domain.Rule),
	}

	for _, r := range rules {
		if err := validateRule(r); err != nil {
			return nil, err
		}
		if _, exists := snap.byID[r.ID]; exists {
			return nil, &domain.DuplicateRuleIDError{RuleID: r.ID}
		}
		if r.Severity == "" {
			r.Severity = domain.SeverityError
		}
		snap.rules = append(snap.rules, r)
		snap.byID[r.ID] = r
		snap.byFramework[r.Framework] = append(snap.byFramework[r.Framework], r)
	}

	return snap, nil
}

func validateRule(r domain.Rule) error {
	if r.ID == "" {
		return &domain.RuleParseError{Field: "id", Reason: "must not be empty"}
	}
	if r.Name == "" {
		return &domain.RuleParseError{RuleID: r.ID, Field: "name", Reason: "must not be empty"}
	}

	switch r.Severity {
	case "", domain.SeverityError, domain.SeverityWarning, domain.SeverityInfo:
	default:
		return &domain.RuleParseError{
			RuleID: r.ID, Field: "severity",
			Reason: fmt.Sprintf("must be one of ERROR, WARNING, INFO (got %q)", r.Severity),
		}
	}

	check, ok := paramChecks[r.CheckType]
	if !ok {
		return &domain.RuleParseError{
			RuleID: r.ID, Field: "check_type",
			Reason: fmt.Sprintf("unknown check type %q", r.CheckType),
		}
	}
	if err := check(r); err != nil {
		return err
	}
	return nil
}

func checkFileExistsParams(r domain.Rule) *domain.RuleParseError {
	files := stringList(r.Parameters, "files")
	if len(files) == 0 {
		return &domain.RuleParseError{RuleID: r.ID, Field: "parameters.files", Reason: "must be a non-empty list of file names"}
	}
	return nil
}

func checkFileContentParams(r domain.Rule) *domain.RuleParseError {
	if s, ok := r.Parameters["file"].(string); !ok || s == "" {
		return &domain.RuleParseError{RuleID: r.ID, Field: "parameters.file", Reason: "must be a file name"}
	}
	if len(stringList(r.Parameters, "patterns")) == 0 {
		return &domain.RuleParseError{RuleID: r.ID, Field: "parameters.patterns", Reason: "must be a non-empty list of patterns"}
	}
	return nil
}

func checkResourcePropertyParams(r domain.Rule) *domain.RuleParseError {
	if s, ok := r.Parameters["property"].(string); !ok || s == "" {
		return &domain.RuleParseError{RuleID: r.ID, Field: "parameters.property", Reason: "must be a property name"}
	}
	return nil
}

func checkNamedHookParams(r domain.Rule) *domain.RuleParseError {
	if s, ok := r.Parameters["check"].(string); !ok || s == "" {
		return &domain.RuleParseError{RuleID: r.ID, Field: "parameters.check", Reason: "must name a registered check function"}
	}
	return nil
}

// stringList extracts params[key] as a list of strings, tolerating the
// []any shape yaml decoding produces.
func stringList(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Len returns the number of registered rules.
func (s *Snapshot) Len() int { return len(s.rules) }

// Rule returns the rule with the given id.
func (s *Snapshot) Rule(id string) (domain.Rule, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// All returns every rule in load order.
func (s *Snapshot) All() []domain.Rule {
	out := make([]domain.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Rules returns the rules matching the given framework and category, in
// load order. Empty selectors match everything.
func (s *Snapshot) Rules(framework, category string) []domain.Rule {
	var out []domain.Rule
	source := s.rules
	if framework != "" {
		source = s.byFramework[framework]
	}
	for _, r := range source {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Store is the process-wide registry handle. Reload builds a new snapshot
// and swaps it in; concurrent readers keep the snapshot they grabbed.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates a store holding the given snapshot.
func NewStore(s *Snapshot) *Store {
	st := &Store{}
	st.snap.Store(s)
	return st
}

// Current returns the installed snapshot.
func (st *Store) Current() *Snapshot {
	return st.snap.Load()
}

// Swap atomically installs a new snapshot.
func (st *Store) Swap(s *Snapshot) {
	st.snap.Store(s)
}
