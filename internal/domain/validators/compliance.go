package validators

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

// ComplianceValidator evaluates the declarative rules of one regulatory
// framework, dispatching on check_type through an enum-keyed table.
// Satisfied checks are recorded as INFO results so the report doubles as
// audit evidence.
type ComplianceValidator struct {
	Framework string
	Files     domain.FileSet
	Hooks     Hooks

	dispatch map[domain.CheckType]func(rc domain.ResourceConfig, rule domain.Rule) []domain.ValidationResult
}

func NewComplianceValidator(framework string, files domain.FileSet, hooks Hooks) *ComplianceValidator {
	v := &ComplianceValidator{Framework: framework, Files: files, Hooks: hooks}
	v.dispatch = map[domain.CheckType]func(domain.ResourceConfig, domain.Rule) []domain.ValidationResult{
		domain.CheckFileExists:       v.checkFileExists,
		domain.CheckFileContent:      v.checkFileContent,
		domain.CheckResourceProperty: v.checkResourceProperty,
		domain.CheckDataGovernance:   v.checkNamedHook,
		domain.CheckSecurityPolicy:   v.checkNamedHook,
		domain.CheckCustom:           v.checkNamedHook,
	}
	return v
}

func (v *ComplianceValidator) Name() string {
	if v.Framework == "" {
		return "compliance"
	}
	return "compliance:" + v.Framework
}

func (v *ComplianceValidator) Validate(rc domain.ResourceConfig, rules []domain.Rule) []domain.ValidationResult {
	var results []domain.ValidationResult
	for _, rule := range rules {
		if v.Framework != "" && rule.Framework != v.Framework {
			continue
		}
		eval, ok := v.dispatch[rule.CheckType]
		if !ok {
			// Registry validation makes this unreachable for loaded rules.
			continue
		}
		results = append(results, eval(rc, rule)...)
	}
	return results
}

func (v *ComplianceValidator) checkFileExists(_ domain.ResourceConfig, rule domain.Rule) []domain.ValidationResult {
	files := stringListParam(rule.Parameters, "files")
	for _, name := range files {
		if v.Files != nil && v.Files.Exists(name) {
			return []domain.ValidationResult{v.pass(rule, fmt.Sprintf("found %s", name))}
		}
	}
	return []domain.ValidationResult{v.fail(rule, domain.SeverityError,
		fmt.Sprintf("none of the required files exist: %s", strings.Join(files, ", ")))}
}

func (v *ComplianceValidator) checkFileContent(_ domain.ResourceConfig, rule domain.Rule) []domain.ValidationResult {
	name, _ := rule.Parameters["file"].(string)
	patterns := stringListParam(rule.Parameters, "patterns")

	if v.Files == nil || !v.Files.Exists(name) {
		return []domain.ValidationResult{v.fail(rule, domain.SeverityError,
			fmt.Sprintf("required file %s is missing", name))}
	}

	content, err := v.Files.Read(name)
	if err != nil {
		return []domain.ValidationResult{v.fail(rule, domain.SeverityError,
			fmt.Sprintf("cannot read %s: %v", name, err))}
	}

	for _, pattern := range patterns {
		if matchPattern(string(content), pattern) {
			return []domain.ValidationResult{v.pass(rule, fmt.Sprintf("%s matches %q", name, pattern))}
		}
	}
	return []domain.ValidationResult{v.fail(rule, domain.SeverityWarning,
		fmt.Sprintf("%s exists but matches none of the expected patterns", name))}
}

func (v *ComplianceValidator) checkResourceProperty(rc domain.ResourceConfig, rule domain.Rule) []domain.ValidationResult {
	property, _ := rule.Parameters["property"].(string)
	expected, hasExpected := rule.Parameters["expected"]

	if !rc.Has(property) {
		return []domain.ValidationResult{v.failProperty(rule, property,
			fmt.Sprintf("property %q is not set", property))}
	}
	if hasExpected && !valuesEqual(rc[property], expected) {
		return []domain.ValidationResult{v.failProperty(rule, property,
			fmt.Sprintf("property %q is %v, expected %v", property, rc[property], expected))}
	}
	return []domain.ValidationResult{v.pass(rule, fmt.Sprintf("property %q satisfied", property))}
}

func (v *ComplianceValidator) checkNamedHook(rc domain.ResourceConfig, rule domain.Rule) []domain.ValidationResult {
	name, _ := rule.Parameters["check"].(string)
	hook, ok := v.Hooks[name]
	if !ok {
		return []domain.ValidationResult{{
			Valid:    true,
			Severity: domain.SeverityInfo,
			Message:  fmt.Sprintf("%s: not evaluated - manual review required (no %q check registered)", rule.Name, name),
			RuleID:   rule.ID,
			Source:   v.Name(),
		}}
	}

	results := hook(rc)
	for i := range results {
		if results[i].RuleID == "" {
			results[i].RuleID = rule.ID
		}
		if results[i].Source == "" {
			results[i].Source = v.Name()
		}
	}
	return results
}

func (v *ComplianceValidator) pass(rule domain.Rule, detail string) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:    true,
		Severity: domain.SeverityInfo,
		Message:  fmt.Sprintf("%s: %s", rule.Name, detail),
		RuleID:   rule.ID,
		Source:   v.Name(),
	}
}

func (v *ComplianceValidator) fail(rule domain.Rule, severity domain.Severity, message string) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:        false,
		Severity:     severity,
		Message:      fmt.Sprintf("%s: %s", rule.Name, message),
		SuggestedFix: rule.Remediation,
		RuleID:       rule.ID,
		Source:       v.Name(),
	}
}

func (v *ComplianceValidator) failProperty(rule domain.Rule, property, message string) domain.ValidationResult {
	res := v.fail(rule, rule.Severity, message)
	res.PropertyName = property
	return res
}

// matchPattern tries the pattern as a regex; one that does not compile is
// demoted to a case-insensitive substring match, since rule files are
// authored by hand.
func matchPattern(content, pattern string) bool {
	re, err := regexp.Compile("(?i)" + pattern)
	if err == nil {
		return re.MatchString(content)
	}
	return strings.Contains(strings.ToLower(content), strings.ToLower(pattern))
}

// valuesEqual compares a resource value with a rule expectation, tolerating
// the int/float mismatch between yaml-decoded rules and resource bags.
func valuesEqual(actual, expected any) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}
	af, aok := toFloat(actual)
	ef, eok := toFloat(expected)
	return aok && eok && af == ef
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
