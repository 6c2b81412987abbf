// Package validators implements the evaluation layers of the gate. Every
// validator is a pure function of (resource config, rules) with no shared
// mutable state, so independent resources can be evaluated concurrently
// without synchronization.
package validators

import (
	"github.com/opsgate/opsgate/internal/domain"
)

// Validator is the shared contract for all evaluation layers.
type Validator interface {
	Name() string
	Validate(rc domain.ResourceConfig, rules []domain.Rule) []domain.ValidationResult
}

// Hooks is a named registry of externally supplied check functions used by
// data_governance, security_policy and custom rules. Absence of a hook is
// not an error; the rule downgrades to a manual-review outcome.
type Hooks map[string]domain.CheckFunc
