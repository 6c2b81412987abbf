// Package aggregate rolls validation results into reports and merges
// reports. Both operations are pure folds: order of results is preserved,
// and merging is associative and commutative over summaries and status.
package aggregate

import (
	"time"

	"github.com/opsgate/opsgate/internal/domain"
)

// Build rolls a result sequence into a report for one target.
// overall_status is true iff no result carries ERROR severity.
func Build(target string, results []domain.ValidationResult) domain.ValidationReport {
	summary := domain.Summary{
		domain.SeverityError:   0,
		domain.SeverityWarning: 0,
		domain.SeverityInfo:    0,
	}
	for _, r := range results {
		summary[r.Severity]++
	}

	return domain.ValidationReport{
		Target:        target,
		OverallStatus: summary[domain.SeverityError] == 0,
		Results:       results,
		Summary:       summary,
		Timestamp:     time.Now().UTC(),
	}
}

// Merge combines per-resource reports into one project-level report:
// results concatenate in input order, summaries sum, status ANDs.
func Merge(target string, reports ...domain.ValidationReport) domain.ValidationReport {
	var results []domain.ValidationResult
	for _, r := range reports {
		results = append(results, r.Results...)
	}
	return Build(target, results)
}
