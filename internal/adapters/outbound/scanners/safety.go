package scanners

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

type safetyJSON struct {
	Vulnerabilities []struct {
		PackageName     string `json:"package_name"`
		AnalyzedVersion string `json:"analyzed_version"`
		VulnerabilityID string `json:"vulnerability_id"`
		Advisory        string `json:"advisory"`
		Severity        string `json:"severity"`
		MoreInfoURL     string `json:"more_info_url"`
	} `json:"vulnerabilities"`
}

func parseSafety(raw []byte) ([]domain.ValidationResult, error) {
	var doc safetyJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc.Vulnerabilities))
	for _, v := range doc.Vulnerabilities {
		out = append(out, domain.ValidationResult{
			Valid:             false,
			Severity:          safetySeverity(v.Severity),
			Message:           fmt.Sprintf("%s %s: %s", v.PackageName, v.AnalyzedVersion, v.Advisory),
			SuggestedFix:      fmt.Sprintf("upgrade %s to a patched release", v.PackageName),
			DocumentationLink: v.MoreInfoURL,
			RuleID:            v.VulnerabilityID,
			Source:            "safety",
			File:              "requirements.txt",
		})
	}
	return out, nil
}

// safety: CRITICAL/HIGH -> ERROR, MEDIUM -> WARNING, LOW and unrated -> INFO.
func safetySeverity(s string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL", "HIGH":
		return domain.SeverityError
	case "MEDIUM":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
