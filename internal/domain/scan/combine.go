// Package scan merges normalized external-tool findings with construct-level
// validation results. It never branches on tool identity; tools are just the
// Source tag their adapters stamped on each result.
package scan

import (
	"github.com/opsgate/opsgate/internal/domain"
	"github.com/opsgate/opsgate/internal/domain/aggregate"
)

type findingKey struct {
	file   string
	line   int
	ruleID string
}

// Dedup collapses findings sharing the same (file, line, rule_id) tuple,
// keeping the first occurrence's position and the worst mapped severity seen
// for the tuple. The reporting tool is not part of the key: two scanners
// flagging the same rule at the same location describe one issue, not two.
// Findings without a rule id, and incomplete-run markers, carry no stable
// identity and are passed through uncollapsed.
func Dedup(findings []domain.ValidationResult) []domain.ValidationResult {
	out := make([]domain.ValidationResult, 0, len(findings))
	seen := make(map[findingKey]int, len(findings))

	for _, f := range findings {
		if f.RuleID == "" || f.Incomplete {
			out = append(out, f)
			continue
		}
		key := findingKey{file: f.File, line: f.Line, ruleID: f.RuleID}
		if idx, ok := seen[key]; ok {
			out[idx].Severity = domain.WorstSeverity(out[idx].Severity, f.Severity)
			if f.Severity == out[idx].Severity && !f.Valid {
				out[idx].Valid = false
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, f)
	}
	return out
}

// Combine merges deduplicated tool findings into the construct-level report,
// producing one consolidated report for the same target.
func Combine(report domain.ValidationReport, findings []domain.ValidationResult) domain.ValidationReport {
	deduped := Dedup(findings)
	all := make([]domain.ValidationResult, 0, len(report.Results)+len(deduped))
	all = append(all, report.Results...)
	all = append(all, deduped...)
	return aggregate.Build(report.Target, all)
}
