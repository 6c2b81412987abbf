package validators

import (
	"fmt"
	"regexp"

	"github.com/opsgate/opsgate/internal/domain"
)

// InputValidator enforces declared property constraints: presence, type,
// numeric range, pattern and allowed values. Every violation is an ERROR.
// An optional custom hook runs last and its results are merged in.
type InputValidator struct {
	Hook domain.CheckFunc
}

func NewInputValidator(hook domain.CheckFunc) *InputValidator {
	return &InputValidator{Hook: hook}
}

func (v *InputValidator) Name() string { return "input" }

func (v *InputValidator) Validate(rc domain.ResourceConfig, rules []domain.Rule) []domain.ValidationResult {
	var results []domain.ValidationResult

	for _, rule := range rules {
		if rule.CheckType != domain.CheckResourceProperty {
			continue
		}
		property, _ := rule.Parameters["property"].(string)
		if res := v.checkProperty(rc, rule, property); res != nil {
			results = append(results, *res)
		}
	}

	if v.Hook != nil {
		for _, res := range v.Hook(rc) {
			if res.Source == "" {
				res.Source = v.Name()
			}
			results = append(results, res)
		}
	}

	return results
}

func (v *InputValidator) checkProperty(rc domain.ResourceConfig, rule domain.Rule, property string) *domain.ValidationResult {
	required, _ := rule.Parameters["required"].(bool)

	if !rc.Has(property) {
		if !required {
			return nil
		}
		return v.fail(rule, property,
			fmt.Sprintf("required property %q is missing", property),
			fmt.Sprintf("set %q on the resource", property))
	}

	if wantType, ok := rule.Parameters["type"].(string); ok && wantType != "" {
		if got := typeName(rc[property]); got != wantType {
			return v.fail(rule, property,
				fmt.Sprintf("property %q has type %s, expected %s", property, got, wantType),
				fmt.Sprintf("change %q to a %s value", property, wantType))
		}
	}

	if num, ok := rc.GetFloat(property); ok {
		if min, ok := floatParam(rule.Parameters, "min"); ok && num < min {
			return v.fail(rule, property,
				fmt.Sprintf("property %q is %v, below minimum %v", property, num, min), "")
		}
		if max, ok := floatParam(rule.Parameters, "max"); ok && num > max {
			return v.fail(rule, property,
				fmt.Sprintf("property %q is %v, above maximum %v", property, num, max), "")
		}
	}

	if str, ok := rc.GetString(property); ok {
		if pattern, ok := rule.Parameters["pattern"].(string); ok && pattern != "" {
			re, err := regexp.Compile(pattern)
			if err == nil && !re.MatchString(str) {
				return v.fail(rule, property,
					fmt.Sprintf("property %q value %q does not match pattern %q", property, str, pattern), "")
			}
		}
		if allowed := stringListParam(rule.Parameters, "allowed_values"); len(allowed) > 0 {
			if !containsString(allowed, str) {
				return v.fail(rule, property,
					fmt.Sprintf("property %q value %q is not one of %v", property, str, allowed), "")
			}
		}
	}

	return nil
}

func (v *InputValidator) fail(rule domain.Rule, property, message, fix string) *domain.ValidationResult {
	if fix == "" {
		fix = rule.Remediation
	}
	return &domain.ValidationResult{
		Valid:        false,
		Severity:     domain.SeverityError,
		Message:      message,
		PropertyName: property,
		SuggestedFix: fix,
		RuleID:       rule.ID,
		Source:       v.Name(),
	}
}

// typeName maps Go dynamic types onto the vocabulary rule authors use.
func typeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float32, float64:
		return "number"
	case []any, []string:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func floatParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringListParam(params map[string]any, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
