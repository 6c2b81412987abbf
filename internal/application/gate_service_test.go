package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsgate/opsgate/internal/application"
	"github.com/opsgate/opsgate/internal/domain"
	"github.com/opsgate/opsgate/internal/domain/validators"
)

type stubRules struct {
	rules []domain.Rule
	err   error
}

func (s stubRules) Load(string) ([]domain.Rule, error) { return s.rules, s.err }

type stubResources map[string]domain.ResourceConfig

func (s stubResources) Load(string) (map[string]domain.ResourceConfig, error) { return s, nil }

type stubFiles map[string]string

func (s stubFiles) Exists(name string) bool { _, ok := s[name]; return ok }

func (s stubFiles) Read(name string) ([]byte, error) {
	content, ok := s[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return []byte(content), nil
}

type stubGit struct{ hash string }

func (s stubGit) CommitHash(string) (string, error) {
	if s.hash == "" {
		return "", errors.New("not a git repo")
	}
	return s.hash, nil
}

type stubTool struct {
	name     string
	findings []domain.ValidationResult
	err      error
}

func (s stubTool) Name() string { return s.name }

func (s stubTool) Run(context.Context, string) ([]domain.ValidationResult, error) {
	return s.findings, s.err
}

func newService(t *testing.T, rules []domain.Rule, resources stubResources, hooks validators.Hooks) *application.GateService {
	t.Helper()
	svc := application.NewGateService(
		stubRules{rules: rules},
		resources,
		func(string) domain.FileSet { return stubFiles{} },
		stubGit{hash: "abc1234abc1234abc1234abc1234abc1234abc12"},
		hooks,
		zerolog.Nop(),
	)
	require.NoError(t, svc.LoadRules([]string{"rules.yaml"}))
	return svc
}

func testConfig() domain.GateConfig {
	return domain.GateConfig{}.ApplyDefaults()
}

func TestRun_EmptyInputsPass(t *testing.T) {
	svc := newService(t, nil, stubResources{}, nil)

	report, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err)

	assert.True(t, report.OverallStatus)
	assert.Empty(t, report.Results)
	assert.Equal(t, 0, report.Summary[domain.SeverityError])
	assert.Equal(t, 0, report.Summary[domain.SeverityWarning])
	assert.Equal(t, 0, report.Summary[domain.SeverityInfo])
}

func TestRun_StampsRunIDAndCommit(t *testing.T) {
	svc := newService(t, nil, stubResources{}, nil)

	report, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "abc1234abc1234abc1234abc1234abc1234abc12", report.Commit)
	assert.Equal(t, "proj", report.Target)
}

func TestRun_SummaryMatchesResults(t *testing.T) {
	resources := stubResources{
		"api": domain.ResourceConfig{
			"resource_type":      "bucket",
			"encryption_enabled": false,
		},
	}
	svc := newService(t, nil, resources, nil)

	report, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err)

	total := report.Summary[domain.SeverityError] +
		report.Summary[domain.SeverityWarning] +
		report.Summary[domain.SeverityInfo]
	assert.Equal(t, len(report.Results), total)
	assert.False(t, report.OverallStatus, "unencrypted bucket must gate")
}

func TestRun_PanickingHookBecomesSingleInternalError(t *testing.T) {
	resources := stubResources{
		"api": domain.ResourceConfig{"monitoring_enabled": true},
	}
	hooks := validators.Hooks{
		"input": func(domain.ResourceConfig) []domain.ValidationResult {
			panic("boom")
		},
	}
	svc := newService(t, nil, resources, hooks)

	report, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err, "a panicking layer must not abort the run")

	var internal []domain.ValidationResult
	var others int
	for _, r := range report.Results {
		if r.RuleID == domain.RuleIDInternalError {
			internal = append(internal, r)
		} else {
			others++
		}
	}

	require.Len(t, internal, 1, "exactly one internal error result per panicking unit")
	assert.Equal(t, domain.SeverityError, internal[0].Severity)
	assert.Equal(t, "input", internal[0].Source)
	assert.Positive(t, others, "remaining layers still report")
	assert.False(t, report.OverallStatus)
}

func TestRun_ToolFailureIsTaggedFinding(t *testing.T) {
	svc := newService(t, nil, stubResources{}, nil)
	tools := []domain.Tool{
		stubTool{name: "bandit", err: &domain.ToolInvocationError{Tool: "bandit", Err: errors.New("exec: not found")}},
		stubTool{name: "gitleaks", findings: []domain.ValidationResult{{
			Valid:    false,
			Severity: domain.SeverityError,
			Message:  "potential secret",
			RuleID:   "aws-access-key-id",
			Source:   "gitleaks",
			File:     "env.sh",
			Line:     3,
		}}},
	}

	report, err := svc.Run(context.Background(), "proj", testConfig(), tools)
	require.NoError(t, err)

	bySource := map[string]int{}
	for _, r := range report.Results {
		bySource[r.Source]++
	}
	assert.Equal(t, 1, bySource["bandit"], "failed tool yields one tagged ERROR")
	assert.Equal(t, 1, bySource["gitleaks"], "other tools are unaffected")
	assert.False(t, report.OverallStatus)
}

func TestRun_DeduplicatesToolFindings(t *testing.T) {
	svc := newService(t, nil, stubResources{}, nil)
	finding := domain.ValidationResult{
		Valid:    false,
		Severity: domain.SeverityWarning,
		Message:  "weak hash",
		RuleID:   "B303",
		Source:   "bandit",
		File:     "app.py",
		Line:     10,
	}
	worse := finding
	worse.Severity = domain.SeverityError
	tools := []domain.Tool{
		stubTool{name: "bandit", findings: []domain.ValidationResult{finding, worse}},
	}

	report, err := svc.Run(context.Background(), "proj", testConfig(), tools)
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.SeverityError, report.Results[0].Severity, "worst severity wins")
}

func TestRun_ComplianceRulesSelectedByFramework(t *testing.T) {
	rules := []domain.Rule{
		{
			ID: "SOC2-ENC", Name: "encryption required", Framework: "soc2",
			Severity: domain.SeverityError, CheckType: domain.CheckResourceProperty,
			Parameters: map[string]any{"property": "encryption", "expected": true},
		},
		{
			ID: "GDPR-RET", Name: "retention declared", Framework: "gdpr",
			Severity: domain.SeverityError, CheckType: domain.CheckResourceProperty,
			Parameters: map[string]any{"property": "retention_days", "expected": 30},
		},
	}
	resources := stubResources{
		"store": domain.ResourceConfig{"resource_type": "bucket", "encryption_enabled": true,
			"encryption": true, "lifecycle_policy": true,
			"monitoring_enabled": true, "alerting_enabled": true, "backup_schedule": "daily",
			"log_retention_days": 30},
	}
	svc := newService(t, rules, resources, nil)

	cfg := testConfig()
	cfg.Frameworks = []string{"soc2"}

	report, err := svc.Run(context.Background(), "proj", cfg, nil)
	require.NoError(t, err)

	for _, r := range report.Results {
		assert.NotEqual(t, "GDPR-RET", r.RuleID, "unconfigured framework must not run")
	}
	assert.True(t, report.OverallStatus)
}

func TestRun_IdempotentUpToRunMetadata(t *testing.T) {
	resources := stubResources{
		"api": domain.ResourceConfig{"resource_type": "function", "memory_mb": 1024.0, "timeout_seconds": 900.0},
	}
	svc := newService(t, nil, resources, nil)

	first, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), "proj", testConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.OverallStatus, second.OverallStatus)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_TimeoutMarksRemainingWorkIncomplete(t *testing.T) {
	resources := stubResources{
		"a": domain.ResourceConfig{"monitoring_enabled": true},
		"b": domain.ResourceConfig{"monitoring_enabled": true},
	}
	hooks := validators.Hooks{
		"input": func(domain.ResourceConfig) []domain.ValidationResult {
			time.Sleep(1500 * time.Millisecond)
			return nil
		},
	}
	svc := newService(t, nil, resources, hooks)

	cfg := testConfig()
	cfg.Validators = []string{"input"}
	cfg.Workers = 1
	cfg.TimeoutSeconds = 1
	cfg.IncompleteSeverity = domain.SeverityWarning

	report, err := svc.Run(context.Background(), "proj", cfg, nil)
	require.NoError(t, err)

	var incomplete []domain.ValidationResult
	for _, r := range report.Results {
		if r.Incomplete {
			incomplete = append(incomplete, r)
		}
	}
	require.NotEmpty(t, incomplete, "work not started before the deadline must be reported")
	for _, r := range incomplete {
		assert.Equal(t, domain.RuleIDIncomplete, r.RuleID)
		assert.Equal(t, domain.SeverityWarning, r.Severity, "configured downgrade applies")
	}
}

// slowTool blocks until the run context is cancelled, the shape of a scanner
// process cut off by the global deadline.
type slowTool struct{ name string }

func (s slowTool) Name() string { return s.name }

func (s slowTool) Run(ctx context.Context, _ string) ([]domain.ValidationResult, error) {
	<-ctx.Done()
	return nil, &domain.ToolInvocationError{Tool: s.name, Err: ctx.Err()}
}

func TestRun_TimeoutMarksInFlightToolIncomplete(t *testing.T) {
	svc := newService(t, nil, stubResources{}, nil)

	cfg := testConfig()
	cfg.TimeoutSeconds = 1
	cfg.IncompleteSeverity = domain.SeverityWarning

	report, err := svc.Run(context.Background(), "proj", cfg, []domain.Tool{slowTool{name: "checkov"}})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	r := report.Results[0]
	assert.True(t, r.Incomplete, "a tool still running at the deadline is incomplete, not failed")
	assert.Equal(t, domain.RuleIDIncomplete, r.RuleID)
	assert.Equal(t, "checkov", r.Source)
	assert.Equal(t, domain.SeverityWarning, r.Severity, "configured downgrade applies to tools too")
}

type switchRules struct {
	rules []domain.Rule
	err   error
}

func (s *switchRules) Load(string) ([]domain.Rule, error) { return s.rules, s.err }

func TestLoadRules_FailureKeepsPreviousSnapshot(t *testing.T) {
	good := domain.Rule{
		ID: "R1", Name: "rule one",
		Severity: domain.SeverityError, CheckType: domain.CheckResourceProperty,
		Parameters: map[string]any{"property": "encryption"},
	}
	loader := &switchRules{rules: []domain.Rule{good}}

	svc := application.NewGateService(
		loader,
		stubResources{},
		func(string) domain.FileSet { return stubFiles{} },
		stubGit{},
		nil,
		zerolog.Nop(),
	)
	require.NoError(t, svc.LoadRules([]string{"rules.yaml"}))
	require.Len(t, svc.Rules(), 1)

	loader.rules = []domain.Rule{good, good}
	err := svc.LoadRules([]string{"rules.yaml"})
	var dup *domain.DuplicateRuleIDError
	require.ErrorAs(t, err, &dup)

	assert.Len(t, svc.Rules(), 1, "failed reload must not disturb the active snapshot")
}
