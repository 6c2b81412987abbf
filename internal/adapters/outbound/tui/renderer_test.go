package tui_test

import (
	"strings"
	"testing"
	"time"

	"github.com/opsgate/opsgate/internal/adapters/outbound/tui"
	"github.com/opsgate/opsgate/internal/domain"
	"github.com/stretchr/testify/assert"
)

func sampleReport() *domain.ValidationReport {
	return &domain.ValidationReport{
		Target:        "payments-api",
		RunID:         "7f3c9a2e-11aa-22bb-33cc-000000000000",
		Commit:        "abc1234def",
		OverallStatus: false,
		Results: []domain.ValidationResult{
			{
				Valid:    true,
				Severity: domain.SeverityInfo,
				Message:  "soc2 policy document present",
				RuleID:   "SOC2-POLICY",
				Source:   "compliance:soc2",
			},
			{
				Valid:        false,
				Severity:     domain.SeverityWarning,
				Message:      "no lifecycle policy configured",
				PropertyName: "lifecyclePolicy",
				RuleID:       "COST-LIFECYCLE",
				Source:       "cost",
			},
			{
				Valid:        false,
				Severity:     domain.SeverityError,
				Message:      "bucket is not encrypted at rest",
				SuggestedFix: "enable server-side encryption",
				RuleID:       "S3-ENC",
				Source:       "security",
				File:         "resources.yaml",
				Line:         12,
			},
		},
		Summary: domain.Summary{
			domain.SeverityError:   1,
			domain.SeverityWarning: 1,
			domain.SeverityInfo:    1,
		},
		Timestamp: time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderReport_ShowsStatusAndTarget(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "payments-api")
	assert.Contains(t, output, "FAILED")
}

func TestRenderReport_ShowsSummaryCounts(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "1 errors")
	assert.Contains(t, output, "1 warnings")
	assert.Contains(t, output, "1 info")
}

func TestRenderReport_ShowsFindingsWithLocation(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "S3-ENC")
	assert.Contains(t, output, "resources.yaml:12")
	assert.Contains(t, output, "bucket is not encrypted at rest")
	assert.Contains(t, output, "enable server-side encryption")
}

func TestRenderReport_HidesPassingResults(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.NotContains(t, output, "soc2 policy document present")
}

func TestRenderReport_ErrorsBeforeWarnings(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	errIdx := strings.Index(output, "bucket is not encrypted")
	warnIdx := strings.Index(output, "no lifecycle policy")
	assert.True(t, errIdx >= 0 && errIdx < warnIdx, "errors should appear before warnings")
}

func TestRenderReport_HumanizesPropertyNames(t *testing.T) {
	output := tui.RenderReport(sampleReport())
	assert.Contains(t, output, "lifecycle policy")
}

func TestRenderReport_PassingReport(t *testing.T) {
	rep := sampleReport()
	rep.OverallStatus = true
	rep.Results = rep.Results[:1]
	rep.Summary = domain.Summary{
		domain.SeverityError:   0,
		domain.SeverityWarning: 0,
		domain.SeverityInfo:    1,
	}

	output := tui.RenderReport(rep)
	assert.Contains(t, output, "PASSED")
	assert.Contains(t, output, "All checks passed.")
}

func TestRenderRules_ListsRuleMetadata(t *testing.T) {
	rules := []domain.Rule{
		{
			ID:          "S3-ENC",
			Description: "S3 buckets must be encrypted",
			Framework:   "soc2",
			Category:    "security",
			Severity:    domain.SeverityError,
			CheckType:   domain.CheckResourceProperty,
		},
	}

	output := tui.RenderRules(rules)
	assert.Contains(t, output, "Rules (1)")
	assert.Contains(t, output, "S3-ENC")
	assert.Contains(t, output, "S3 buckets must be encrypted")
	assert.Contains(t, output, "soc2")
}

func TestRenderRules_Empty(t *testing.T) {
	output := tui.RenderRules(nil)
	assert.Contains(t, output, "No rules loaded.")
}
