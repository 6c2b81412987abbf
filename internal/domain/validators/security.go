package validators

import (
	"fmt"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

// Resource types that hold data at rest and must declare encryption.
var encryptedTypes = map[string]bool{
	"bucket": true, "database": true, "table": true,
	"queue": true, "volume": true, "filesystem": true,
}

// Inbound ports that must never be reachable from the open internet.
var sensitivePorts = map[int]string{
	22:    "SSH",
	3389:  "RDP",
	3306:  "MySQL",
	5432:  "PostgreSQL",
	6379:  "Redis",
	9200:  "Elasticsearch",
	27017: "MongoDB",
}

// SecurityValidator applies security best-practice checks: encryption
// presence, IAM least-privilege, trust-policy conditions and network
// exposure. It takes no declarative rules; its checks are built in.
type SecurityValidator struct{}

func NewSecurityValidator() *SecurityValidator { return &SecurityValidator{} }

func (v *SecurityValidator) Name() string { return "security" }

func (v *SecurityValidator) Validate(rc domain.ResourceConfig, _ []domain.Rule) []domain.ValidationResult {
	var results []domain.ValidationResult
	results = append(results, v.checkEncryption(rc)...)
	results = append(results, v.checkIAMPolicies(rc)...)
	results = append(results, v.checkTrustPolicy(rc)...)
	results = append(results, v.checkNetworkExposure(rc)...)
	return results
}

func (v *SecurityValidator) checkEncryption(rc domain.ResourceConfig) []domain.ValidationResult {
	var results []domain.ValidationResult
	resourceType, _ := rc.GetString("resource_type")

	if enabled, ok := rc.GetBool("encryption_enabled"); ok && !enabled {
		results = append(results, v.fail("encryption_enabled",
			"encryption at rest is explicitly disabled",
			"set encryption_enabled to true"))
	} else if !ok && encryptedTypes[resourceType] {
		results = append(results, v.fail("encryption_enabled",
			fmt.Sprintf("%s resource does not declare encryption at rest", resourceType),
			"set encryption_enabled to true"))
	}

	if enabled, ok := rc.GetBool("encryption_in_transit"); ok && !enabled {
		results = append(results, v.fail("encryption_in_transit",
			"encryption in transit is explicitly disabled",
			"set encryption_in_transit to true"))
	}

	return results
}

func (v *SecurityValidator) checkIAMPolicies(rc domain.ResourceConfig) []domain.ValidationResult {
	policies, ok := rc.GetSlice("iam_policies")
	if !ok {
		return nil
	}

	var results []domain.ValidationResult
	for _, raw := range policies {
		policy, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := policy["name"].(string)
		for _, stmt := range statements(policy) {
			effect, _ := stmt["effect"].(string)
			if effect != "" && !strings.EqualFold(effect, "allow") {
				continue
			}
			if hasWildcard(stmt, "actions") && hasWildcard(stmt, "resources") {
				results = append(results, v.fail("iam_policies",
					fmt.Sprintf("policy %q allows all actions on all resources", name),
					"scope actions and resources to what the workload needs"))
			}
		}
	}
	return results
}

func (v *SecurityValidator) checkTrustPolicy(rc domain.ResourceConfig) []domain.ValidationResult {
	trust, ok := rc.GetMap("trust_policy")
	if !ok {
		return nil
	}

	accountID, _ := rc.GetString("account_id")

	var results []domain.ValidationResult
	for _, stmt := range statements(trust) {
		principal, _ := stmt["principal"].(string)
		if principal == "" || !isCrossAccount(principal, accountID) {
			continue
		}
		if hasAssumeCondition(stmt) {
			continue
		}
		results = append(results, v.fail("trust_policy",
			fmt.Sprintf("cross-account trust for %s has no external-id or MFA condition", principal),
			"add an sts:ExternalId or aws:MultiFactorAuthPresent condition"))
	}
	return results
}

func (v *SecurityValidator) checkNetworkExposure(rc domain.ResourceConfig) []domain.ValidationResult {
	ingress, ok := rc.GetSlice("ingress_rules")
	if !ok {
		return nil
	}

	var results []domain.ValidationResult
	for _, raw := range ingress {
		rule, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		open := openCIDRs(rule)
		if len(open) == 0 {
			continue
		}

		fromPort, toPort := portRange(rule)
		protocol, _ := rule["protocol"].(string)
		allPorts := protocol == "-1" || protocol == "all"

		for port, service := range sensitivePorts {
			if allPorts || (port >= fromPort && port <= toPort) {
				results = append(results, v.fail("ingress_rules",
					fmt.Sprintf("%s port %d open to %s", service, port, strings.Join(open, ", ")),
					fmt.Sprintf("restrict %s access to known CIDR ranges or a bastion", service)))
			}
		}
	}
	return results
}

func (v *SecurityValidator) fail(property, message, fix string) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:        false,
		Severity:     domain.SeverityError,
		Message:      message,
		PropertyName: property,
		SuggestedFix: fix,
		Source:       v.Name(),
	}
}

func statements(policy map[string]any) []map[string]any {
	raw, ok := policy["statements"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func hasWildcard(stmt map[string]any, key string) bool {
	list, ok := stmt[key].([]any)
	if !ok {
		return false
	}
	for _, e := range list {
		if s, ok := e.(string); ok && s == "*" {
			return true
		}
	}
	return false
}

// isCrossAccount reports whether the principal ARN refers to a different
// account than the resource's own. With no account on the resource, any
// ARN principal is treated as cross-account.
func isCrossAccount(principal, accountID string) bool {
	if !strings.HasPrefix(principal, "arn:") {
		return false
	}
	if accountID == "" {
		return true
	}
	return !strings.Contains(principal, ":"+accountID+":")
}

func hasAssumeCondition(stmt map[string]any) bool {
	condition, ok := stmt["condition"].(map[string]any)
	if !ok {
		return false
	}
	return containsKeyDeep(condition, "sts:ExternalId") ||
		containsKeyDeep(condition, "aws:MultiFactorAuthPresent")
}

func containsKeyDeep(m map[string]any, key string) bool {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return true
		}
		if nested, ok := v.(map[string]any); ok && containsKeyDeep(nested, key) {
			return true
		}
	}
	return false
}

func openCIDRs(rule map[string]any) []string {
	raw, ok := rule["cidr_blocks"].([]any)
	if !ok {
		return nil
	}
	var open []string
	for _, e := range raw {
		if s, ok := e.(string); ok && (s == "0.0.0.0/0" || s == "::/0") {
			open = append(open, s)
		}
	}
	return open
}

func portRange(rule map[string]any) (int, int) {
	if port, ok := intField(rule, "port"); ok {
		return port, port
	}
	from, _ := intField(rule, "from_port")
	to, ok := intField(rule, "to_port")
	if !ok {
		to = from
	}
	return from, to
}

func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
