package scanners

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

type banditJSON struct {
	Results []struct {
		Filename      string `json:"filename"`
		IssueSeverity string `json:"issue_severity"`
		IssueText     string `json:"issue_text"`
		LineNumber    int    `json:"line_number"`
		TestID        string `json:"test_id"`
		TestName      string `json:"test_name"`
		MoreInfo      string `json:"more_info"`
	} `json:"results"`
}

func parseBandit(raw []byte) ([]domain.ValidationResult, error) {
	var doc banditJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc.Results))
	for _, r := range doc.Results {
		out = append(out, domain.ValidationResult{
			Valid:             false,
			Severity:          banditSeverity(r.IssueSeverity),
			Message:           r.IssueText,
			DocumentationLink: r.MoreInfo,
			RuleID:            r.TestID,
			Source:            "bandit",
			File:              filepath.ToSlash(r.Filename),
			Line:              r.LineNumber,
		})
	}
	return out, nil
}

// bandit: HIGH -> ERROR, MEDIUM -> WARNING, LOW and everything else -> INFO.
func banditSeverity(s string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return domain.SeverityError
	case "MEDIUM":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
