package scanners

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

type checkovJSON struct {
	Results struct {
		FailedChecks []struct {
			CheckID       string `json:"check_id"`
			CheckName     string `json:"check_name"`
			FilePath      string `json:"file_path"`
			FileLineRange []int  `json:"file_line_range"`
			Severity      string `json:"severity"`
			Guideline     string `json:"guideline"`
		} `json:"failed_checks"`
	} `json:"results"`
}

func parseCheckov(raw []byte) ([]domain.ValidationResult, error) {
	var doc checkovJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc.Results.FailedChecks))
	for _, c := range doc.Results.FailedChecks {
		line := 0
		if len(c.FileLineRange) > 0 {
			line = c.FileLineRange[0]
		}
		out = append(out, domain.ValidationResult{
			Valid:             false,
			Severity:          checkovSeverity(c.Severity),
			Message:           c.CheckName,
			DocumentationLink: c.Guideline,
			RuleID:            c.CheckID,
			Source:            "checkov",
			File:              filepath.ToSlash(strings.TrimPrefix(c.FilePath, "/")),
			Line:              line,
		})
	}
	return out, nil
}

// checkov: CRITICAL/HIGH -> ERROR; open-source output carries no severity on
// most checks, so unrated failed checks map to WARNING.
func checkovSeverity(s string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CRITICAL", "HIGH":
		return domain.SeverityError
	case "LOW", "INFO":
		return domain.SeverityInfo
	default:
		return domain.SeverityWarning
	}
}
