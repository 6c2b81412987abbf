// Package application orchestrates the validation pipeline:
// load rules -> build registry -> evaluate resources -> run scanners ->
// aggregate -> stamp -> report.
package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/opsgate/opsgate/internal/domain"
	"github.com/opsgate/opsgate/internal/domain/aggregate"
	"github.com/opsgate/opsgate/internal/domain/registry"
	"github.com/opsgate/opsgate/internal/domain/scan"
	"github.com/opsgate/opsgate/internal/domain/validators"
)

// FileSetFactory opens the file view of a target directory for the
// compliance file checks.
type FileSetFactory func(dir string) domain.FileSet

// GateService runs the full gate for one target directory.
type GateService struct {
	rules     domain.RuleSource
	resources domain.ResourceLoader
	fileSets  FileSetFactory
	git       domain.GitInfo
	store     *registry.Store
	hooks     validators.Hooks
	log       zerolog.Logger
}

// NewGateService creates a GateService with an empty rule registry installed.
func NewGateService(
	rules domain.RuleSource,
	resources domain.ResourceLoader,
	fileSets FileSetFactory,
	git domain.GitInfo,
	hooks validators.Hooks,
	log zerolog.Logger,
) *GateService {
	empty, _ := registry.Build(nil)
	return &GateService{
		rules:     rules,
		resources: resources,
		fileSets:  fileSets,
		git:       git,
		store:     registry.NewStore(empty),
		hooks:     hooks,
		log:       log,
	}
}

// LoadRules reads every rule path, validates the combined set and installs it
// as the active snapshot. The load is all-or-nothing: on any error the
// previously installed snapshot stays active, which is what keeps watch mode
// safe against half-edited rule files.
func (s *GateService) LoadRules(paths []string) error {
	var all []domain.Rule
	for _, p := range paths {
		rules, err := s.rules.Load(p)
		if err != nil {
			return fmt.Errorf("loading rules from %s: %w", p, err)
		}
		all = append(all, rules...)
	}

	snap, err := registry.Build(all)
	if err != nil {
		return fmt.Errorf("building rule registry: %w", err)
	}

	s.store.Swap(snap)
	s.log.Info().Int("rules", snap.Len()).Msg("rule registry installed")
	return nil
}

// Rules returns the active rule set in load order.
func (s *GateService) Rules() []domain.Rule {
	return s.store.Current().All()
}

// evalJob is one (resource, validator) unit of work.
type evalJob struct {
	resource string
	rc       domain.ResourceConfig
	val      validators.Validator
	rules    []domain.Rule
}

// Run evaluates every resource against every configured validator, runs the
// configured external tools, and returns one consolidated report for target.
// Evaluation failures are data in the report; Run itself errors only on
// infrastructure problems such as an unreadable resources file.
func (s *GateService) Run(ctx context.Context, target string, cfg domain.GateConfig, tools []domain.Tool) (*domain.ValidationReport, error) {
	started := time.Now()
	snap := s.store.Current()

	resourceMap, err := s.resources.Load(s.resourcesPath(target, cfg))
	if err != nil {
		return nil, fmt.Errorf("loading resources: %w", err)
	}

	// Deterministic evaluation order regardless of map iteration.
	names := make([]string, 0, len(resourceMap))
	for name := range resourceMap {
		names = append(names, name)
	}
	sort.Strings(names)

	vals := s.buildValidators(target, cfg)

	var jobs []evalJob
	for _, name := range names {
		rc := resourceMap[name]
		if rc.Environment() == "" && cfg.Environment != "" {
			rc = withEnvironment(rc, cfg.Environment)
		}
		for _, v := range vals {
			jobs = append(jobs, evalJob{
				resource: name,
				rc:       rc,
				val:      v,
				rules:    rulesFor(snap, v),
			})
		}
	}

	runCtx := ctx
	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	// Slots keep per-job results so the final report preserves resource and
	// validator order no matter which worker finished first.
	slots := make([][]domain.ValidationResult, len(jobs))

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	g, _ := errgroup.WithContext(runCtx)
	g.SetLimit(workers)
	for i, job := range jobs {
		g.Go(func() error {
			if runCtx.Err() != nil {
				slots[i] = []domain.ValidationResult{incompleteResult(job, cfg.IncompleteSeverity)}
				return nil
			}
			slots[i] = s.runValidator(job)
			return nil
		})
	}
	_ = g.Wait() // jobs report failure as results, never as errors

	var results []domain.ValidationResult
	for _, r := range slots {
		results = append(results, r...)
	}
	report := aggregate.Build(target, results)

	findings := s.runTools(runCtx, target, cfg, tools)
	report = scan.Combine(report, findings)

	report.RunID = uuid.NewString()
	if commit, err := s.git.CommitHash(target); err == nil {
		report.Commit = commit
	}

	s.log.Info().
		Str("target", target).
		Int("resources", len(names)).
		Int("results", len(report.Results)).
		Bool("passed", report.OverallStatus).
		Dur("elapsed", time.Since(started)).
		Msg("gate evaluated")

	return &report, nil
}

// runValidator executes one job, converting a panic into exactly one ERROR
// result so a buggy layer cannot take down the run or mask other layers.
func (s *GateService) runValidator(job evalJob) (results []domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("validator", job.val.Name()).
				Str("resource", job.resource).
				Interface("panic", r).
				Msg("validator panicked")
			results = []domain.ValidationResult{{
				Valid:    false,
				Severity: domain.SeverityError,
				Message:  fmt.Sprintf("validator %s panicked evaluating %s: %v", job.val.Name(), job.resource, r),
				RuleID:   domain.RuleIDInternalError,
				Source:   job.val.Name(),
				File:     job.resource,
			}}
		}
	}()

	results = job.val.Validate(job.rc, job.rules)
	for i := range results {
		if results[i].File == "" {
			results[i].File = job.resource
		}
	}
	return results
}

// runTools invokes the external scanners on the same bounded pool. A failed
// invocation becomes one ERROR finding tagged by the tool; a tool cut off by
// the run deadline becomes one incomplete marker instead. Other tools are
// unaffected either way.
func (s *GateService) runTools(ctx context.Context, target string, cfg domain.GateConfig, tools []domain.Tool) []domain.ValidationResult {
	if len(tools) == 0 {
		return nil
	}

	slots := make([][]domain.ValidationResult, len(tools))
	g, _ := errgroup.WithContext(ctx)
	for i, tool := range tools {
		g.Go(func() error {
			findings, err := tool.Run(ctx, target)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
					s.log.Warn().Str("tool", tool.Name()).Msg("tool cut off by run deadline")
					slots[i] = []domain.ValidationResult{incompleteToolResult(tool.Name(), cfg.IncompleteSeverity)}
					return nil
				}
				s.log.Error().Str("tool", tool.Name()).Err(err).Msg("tool invocation failed")
				slots[i] = []domain.ValidationResult{{
					Valid:    false,
					Severity: domain.SeverityError,
					Message:  fmt.Sprintf("tool invocation failed: %v", err),
					Source:   tool.Name(),
				}}
				return nil
			}
			slots[i] = findings
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.ValidationResult
	for _, f := range slots {
		out = append(out, f...)
	}
	return out
}

// buildValidators instantiates the configured layers in configured order.
// The compliance layer expands to one validator per configured framework.
func (s *GateService) buildValidators(target string, cfg domain.GateConfig) []validators.Validator {
	files := s.fileSets(target)

	var out []validators.Validator
	for _, name := range cfg.Validators {
		switch name {
		case "input":
			out = append(out, validators.NewInputValidator(s.hooks["input"]))
		case "security":
			out = append(out, validators.NewSecurityValidator())
		case "compliance":
			if len(cfg.Frameworks) == 0 {
				out = append(out, validators.NewComplianceValidator("", files, s.hooks))
				continue
			}
			for _, fw := range cfg.Frameworks {
				out = append(out, validators.NewComplianceValidator(fw, files, s.hooks))
			}
		case "cost":
			out = append(out, validators.NewCostOptimizationValidator())
		case "operational":
			out = append(out, validators.NewOperationalValidator())
		}
	}
	return out
}

// rulesFor selects the registry slice a validator consumes. Compliance
// validators get their framework's rules; the input layer gets property
// rules across frameworks; the remaining layers carry built-in checks.
func rulesFor(snap *registry.Snapshot, v validators.Validator) []domain.Rule {
	name := v.Name()
	switch {
	case name == "input":
		var out []domain.Rule
		for _, r := range snap.All() {
			if r.CheckType == domain.CheckResourceProperty && r.Framework == "" {
				out = append(out, r)
			}
		}
		return out
	case strings.HasPrefix(name, "compliance:"):
		return snap.Rules(strings.TrimPrefix(name, "compliance:"), "")
	case name == "compliance":
		// No frameworks configured: evaluate every framework-tagged rule,
		// leaving framework-less property rules to the input layer.
		var out []domain.Rule
		for _, r := range snap.All() {
			if r.Framework != "" {
				out = append(out, r)
			}
		}
		return out
	default:
		return nil
	}
}

func incompleteResult(job evalJob, severity domain.Severity) domain.ValidationResult {
	if severity == "" {
		severity = domain.SeverityError
	}
	return domain.ValidationResult{
		Valid:      false,
		Severity:   severity,
		Message:    fmt.Sprintf("%s evaluation of %s did not run before the deadline", job.val.Name(), job.resource),
		RuleID:     domain.RuleIDIncomplete,
		Source:     job.val.Name(),
		File:       job.resource,
		Incomplete: true,
	}
}

func incompleteToolResult(tool string, severity domain.Severity) domain.ValidationResult {
	if severity == "" {
		severity = domain.SeverityError
	}
	return domain.ValidationResult{
		Valid:      false,
		Severity:   severity,
		Message:    fmt.Sprintf("%s scan did not finish before the deadline", tool),
		RuleID:     domain.RuleIDIncomplete,
		Source:     tool,
		Incomplete: true,
	}
}

func (s *GateService) resourcesPath(target string, cfg domain.GateConfig) string {
	file := cfg.ResourcesFile
	if file == "" {
		file = "resources.yaml"
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(target, file)
}

func withEnvironment(rc domain.ResourceConfig, env string) domain.ResourceConfig {
	out := make(domain.ResourceConfig, len(rc)+1)
	for k, v := range rc {
		out[k] = v
	}
	out["environment"] = env
	return out
}
