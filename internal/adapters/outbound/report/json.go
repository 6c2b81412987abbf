// Package report writes validation reports as pipeline artifacts.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opsgate/opsgate/internal/domain"
)

// WriteJSON writes the report to path as indented JSON, creating parent
// directories as needed. The file is written atomically via a temp file so a
// crashed run never leaves a half-written artifact for the pipeline to parse.
func WriteJSON(report *domain.ValidationReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
