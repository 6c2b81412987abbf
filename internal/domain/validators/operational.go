package validators

import (
	"fmt"

	"github.com/opsgate/opsgate/internal/domain"
)

// operationalChecks lists the presence checks applied to every resource.
// The same missing field escalates from WARNING to ERROR in prod.
var operationalChecks = []struct {
	property string
	message  string
	fix      string
}{
	{"monitoring_enabled", "no monitoring is configured", "enable monitoring for the resource"},
	{"alerting_enabled", "no alerting is configured", "wire the resource into the alerting channel"},
	{"backup_schedule", "no backup schedule is configured", "define a backup_schedule"},
	{"log_retention_days", "no log retention is configured", "set log_retention_days"},
}

// OperationalValidator checks monitoring, alerting, backup and log-retention
// presence with environment-sensitive severity escalation.
type OperationalValidator struct{}

func NewOperationalValidator() *OperationalValidator { return &OperationalValidator{} }

func (v *OperationalValidator) Name() string { return "operational" }

func (v *OperationalValidator) Validate(rc domain.ResourceConfig, _ []domain.Rule) []domain.ValidationResult {
	severity := domain.SeverityWarning
	if rc.Environment() == "prod" {
		severity = domain.SeverityError
	}

	var results []domain.ValidationResult
	for _, check := range operationalChecks {
		if rc.Has(check.property) {
			if enabled, ok := rc.GetBool(check.property); !ok || enabled {
				continue
			}
			// Explicitly disabled counts the same as absent.
		}
		results = append(results, domain.ValidationResult{
			Valid:        false,
			Severity:     severity,
			Message:      fmt.Sprintf("%s (%s environment)", check.message, environmentLabel(rc)),
			PropertyName: check.property,
			SuggestedFix: check.fix,
			Source:       v.Name(),
		})
	}
	return results
}

func environmentLabel(rc domain.ResourceConfig) string {
	if env := rc.Environment(); env != "" {
		return env
	}
	return "unspecified"
}
