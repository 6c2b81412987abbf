package scanners

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/opsgate/opsgate/internal/domain"
)

type gitleaksJSON []struct {
	RuleID      string `json:"RuleID"`
	Description string `json:"Description"`
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
}

func parseGitleaks(raw []byte) ([]domain.ValidationResult, error) {
	var doc gitleaksJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	out := make([]domain.ValidationResult, 0, len(doc))
	for _, f := range doc {
		out = append(out, domain.ValidationResult{
			Valid:        false,
			Severity:     domain.SeverityError, // a leaked secret always gates
			Message:      fmt.Sprintf("potential secret: %s", f.Description),
			SuggestedFix: "rotate the credential and purge it from history",
			RuleID:       f.RuleID,
			Source:       "gitleaks",
			File:         filepath.ToSlash(f.File),
			Line:         f.StartLine,
		})
	}
	return out, nil
}
