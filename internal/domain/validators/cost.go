package validators

import (
	"fmt"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

// Heuristic sizing thresholds. Cost findings are advisory: this validator
// never emits ERROR.
const (
	// memory_mb x timeout_seconds budget for function-style resources.
	memoryTimeoutBudget = 512 * 300
	// log retention beyond this is flagged as paying for cold logs.
	maxLogRetentionDays = 365
)

var oversizedSuffixes = []string{
	"2xlarge", "4xlarge", "8xlarge", "12xlarge", "16xlarge", "24xlarge", "metal",
}

// Resource types expected to carry a lifecycle policy.
var lifecycleTypes = map[string]bool{
	"bucket": true, "volume": true, "filesystem": true,
}

// CostOptimizationValidator applies sizing heuristics: memory/timeout
// products, missing lifecycle policies and oversized instance classes.
type CostOptimizationValidator struct{}

func NewCostOptimizationValidator() *CostOptimizationValidator {
	return &CostOptimizationValidator{}
}

func (v *CostOptimizationValidator) Name() string { return "cost" }

func (v *CostOptimizationValidator) Validate(rc domain.ResourceConfig, _ []domain.Rule) []domain.ValidationResult {
	var results []domain.ValidationResult

	memory, hasMem := rc.GetFloat("memory_mb")
	timeout, hasTimeout := rc.GetFloat("timeout_seconds")
	if hasMem && hasTimeout && memory*timeout > memoryTimeoutBudget {
		results = append(results, v.warn("memory_mb",
			fmt.Sprintf("memory (%v MB) x timeout (%v s) exceeds the sizing budget", memory, timeout),
			"lower the memory allocation or the timeout"))
	}

	resourceType, _ := rc.GetString("resource_type")
	if lifecycleTypes[resourceType] && !rc.Has("lifecycle_policy") {
		results = append(results, v.warn("lifecycle_policy",
			fmt.Sprintf("%s resource has no lifecycle policy; stale data accrues cost indefinitely", resourceType),
			"add a lifecycle policy with expiration or tiering"))
	}

	if instance, ok := rc.GetString("instance_type"); ok {
		for _, suffix := range oversizedSuffixes {
			if strings.HasSuffix(instance, suffix) && rc.Environment() != "prod" {
				results = append(results, v.warn("instance_type",
					fmt.Sprintf("instance type %s is oversized for the %s environment", instance, rc.Environment()),
					"use a smaller instance class outside prod"))
				break
			}
		}
	}

	if retention, ok := rc.GetFloat("log_retention_days"); ok && retention > maxLogRetentionDays {
		results = append(results, domain.ValidationResult{
			Valid:        false,
			Severity:     domain.SeverityInfo,
			Message:      fmt.Sprintf("log retention of %v days exceeds %d; consider archival storage", retention, maxLogRetentionDays),
			PropertyName: "log_retention_days",
			Source:       v.Name(),
		})
	}

	return results
}

func (v *CostOptimizationValidator) warn(property, message, fix string) domain.ValidationResult {
	return domain.ValidationResult{
		Valid:        false,
		Severity:     domain.SeverityWarning,
		Message:      message,
		PropertyName: property,
		SuggestedFix: fix,
		Source:       v.Name(),
	}
}
