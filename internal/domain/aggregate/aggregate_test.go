package aggregate_test

import (
	"testing"

	"github.com/opsgate/opsgate/internal/domain"
	"github.com/opsgate/opsgate/internal/domain/aggregate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(sev domain.Severity, msg string) domain.ValidationResult {
	return domain.ValidationResult{Valid: sev == domain.SeverityInfo, Severity: sev, Message: msg}
}

func TestBuild_SummaryMatchesResults(t *testing.T) {
	results := []domain.ValidationResult{
		result(domain.SeverityError, "a"),
		result(domain.SeverityWarning, "b"),
		result(domain.SeverityWarning, "c"),
		result(domain.SeverityInfo, "d"),
	}

	report := aggregate.Build("stack", results)

	assert.Equal(t, "stack", report.Target)
	assert.False(t, report.OverallStatus)
	assert.Equal(t, 2, report.Summary[domain.SeverityWarning])
	assert.Equal(t, report.Summary.Total(), len(report.Results),
		"summary counts sum to the number of results")
	assert.False(t, report.Timestamp.IsZero())
}

func TestBuild_StatusTracksErrorCount(t *testing.T) {
	clean := aggregate.Build("stack", []domain.ValidationResult{
		result(domain.SeverityWarning, "w"),
		result(domain.SeverityInfo, "i"),
	})
	assert.True(t, clean.OverallStatus, "warnings alone do not fail the gate")

	failing := aggregate.Build("stack", []domain.ValidationResult{
		result(domain.SeverityError, "e"),
	})
	assert.False(t, failing.OverallStatus)
}

func TestBuild_EmptyInputPasses(t *testing.T) {
	report := aggregate.Build("stack", nil)

	assert.True(t, report.OverallStatus)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Summary.Total())
	// All three severities are present even when zero.
	_, ok := report.Summary[domain.SeverityError]
	assert.True(t, ok)
}

func TestBuild_PreservesResultOrder(t *testing.T) {
	results := []domain.ValidationResult{
		result(domain.SeverityInfo, "first"),
		result(domain.SeverityError, "second"),
		result(domain.SeverityWarning, "third"),
	}

	report := aggregate.Build("stack", results)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "first", report.Results[0].Message)
	assert.Equal(t, "second", report.Results[1].Message)
	assert.Equal(t, "third", report.Results[2].Message)
}

func TestMerge_SumsSummariesAndAndsStatus(t *testing.T) {
	passing := aggregate.Build("a", []domain.ValidationResult{result(domain.SeverityInfo, "ok")})
	failing := aggregate.Build("b", []domain.ValidationResult{result(domain.SeverityError, "bad")})

	merged := aggregate.Merge("project", passing, failing)

	assert.False(t, merged.OverallStatus)
	assert.Equal(t, 2, merged.Summary.Total())
	assert.Equal(t, 1, merged.Summary[domain.SeverityError])
	assert.Equal(t, 1, merged.Summary[domain.SeverityInfo])
}

func TestMerge_Associative(t *testing.T) {
	a := aggregate.Build("a", []domain.ValidationResult{result(domain.SeverityError, "1")})
	b := aggregate.Build("b", []domain.ValidationResult{result(domain.SeverityWarning, "2")})
	c := aggregate.Build("c", []domain.ValidationResult{result(domain.SeverityInfo, "3")})

	left := aggregate.Merge("p", aggregate.Merge("p", a, b), c)
	right := aggregate.Merge("p", a, aggregate.Merge("p", b, c))

	assert.Equal(t, left.Summary, right.Summary)
	assert.Equal(t, left.OverallStatus, right.OverallStatus)
	assert.Equal(t, len(left.Results), len(right.Results))
}

func TestMerge_CommutativeOverSummary(t *testing.T) {
	a := aggregate.Build("a", []domain.ValidationResult{result(domain.SeverityError, "1")})
	b := aggregate.Build("b", []domain.ValidationResult{result(domain.SeverityWarning, "2")})

	ab := aggregate.Merge("p", a, b)
	ba := aggregate.Merge("p", b, a)

	assert.Equal(t, ab.Summary, ba.Summary)
	assert.Equal(t, ab.OverallStatus, ba.OverallStatus)
}
