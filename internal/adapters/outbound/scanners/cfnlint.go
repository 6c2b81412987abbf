package scanners

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

type cfnLintJSON []struct {
	Rule struct {
		ID string `json:"Id"`
	} `json:"Rule"`
	Level    string `json:"Level"`
	Message  string `json:"Message"`
	Filename string `json:"Filename"`
	Location struct {
		Start struct {
			LineNumber int `json:"LineNumber"`
		} `json:"Start"`
	} `json:"Location"`
}

func parseCfnLint(raw []byte) ([]domain.ValidationResult, error) {
	var doc cfnLintJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc))
	for _, m := range doc {
		out = append(out, domain.ValidationResult{
			Valid:    false,
			Severity: cfnLintSeverity(m.Level, m.Rule.ID),
			Message:  m.Message,
			RuleID:   m.Rule.ID,
			Source:   "cfn-lint",
			File:     filepath.ToSlash(m.Filename),
			Line:     m.Location.Start.LineNumber,
		})
	}
	return out, nil
}

// cfn-lint: Error -> ERROR, Warning -> WARNING, Informational -> INFO.
// Rule id prefixes (E/W/I) decide when the level is absent.
func cfnLintSeverity(level, ruleID string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return domain.SeverityError
	case "WARNING":
		return domain.SeverityWarning
	case "INFORMATIONAL":
		return domain.SeverityInfo
	}
	switch {
	case strings.HasPrefix(ruleID, "E"):
		return domain.SeverityError
	case strings.HasPrefix(ruleID, "W"):
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
