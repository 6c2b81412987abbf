package scanners

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

type semgrepJSON struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
			Metadata struct {
				Refs []string `json:"refs"`
			} `json:"metadata"`
		} `json:"extra"`
	} `json:"results"`
}

func parseSemgrep(raw []byte) ([]domain.ValidationResult, error) {
	var doc semgrepJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc.Results))
	for _, r := range doc.Results {
		link := ""
		if len(r.Extra.Metadata.Refs) > 0 {
			link = r.Extra.Metadata.Refs[0]
		}
		out = append(out, domain.ValidationResult{
			Valid:             false,
			Severity:          semgrepSeverity(r.Extra.Severity),
			Message:           r.Extra.Message,
			DocumentationLink: link,
			RuleID:            r.CheckID,
			Source:            "semgrep",
			File:              filepath.ToSlash(r.Path),
			Line:              r.Start.Line,
		})
	}
	return out, nil
}

// semgrep already speaks the canonical vocabulary:
// ERROR -> ERROR, WARNING -> WARNING, everything else -> INFO.
func semgrepSeverity(s string) domain.Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return domain.SeverityError
	case "WARNING":
		return domain.SeverityWarning
	default:
		return domain.SeverityInfo
	}
}
