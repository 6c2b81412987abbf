// Package scanners invokes external scanning tools as isolated processes and
// normalizes their findings onto the canonical severity scale. Each tool is
// one adapter with a fixed, non-configurable severity table; adding a tool
// means adding a spec entry, not branching engine logic.
package scanners

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opsgate/opsgate/internal/domain"
)

// toolSpec describes how to invoke one scanner and parse its output.
type toolSpec struct {
	name string
	bin  string
	// args builds the command line. report is a scratch file path, empty
	// unless reportFile is set.
	args       func(target, report string) []string
	reportFile bool
	parse      func(raw []byte) ([]domain.ValidationResult, error)
}

// execTool implements domain.Tool by shelling out to the scanner binary.
type execTool struct {
	spec    toolSpec
	timeout time.Duration
}

func (t *execTool) Name() string { return t.spec.name }

// Run executes the tool against target. Scanners conventionally exit
// non-zero when they find issues, so a failed exit still parses the output;
// only an unparseable run becomes a *domain.ToolInvocationError.
func (t *execTool) Run(ctx context.Context, target string) ([]domain.ValidationResult, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	report := ""
	if t.spec.reportFile {
		f, err := os.CreateTemp("", "opsgate-"+t.spec.name+"-*.json")
		if err != nil {
			return nil, &domain.ToolInvocationError{Tool: t.spec.name, Err: err}
		}
		report = f.Name()
		f.Close()
		defer os.Remove(report)
	}

	args := t.spec.args(target, report)
	cmd := exec.CommandContext(ctx, t.spec.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	log.Debug().
		Str("tool", t.spec.name).
		Dur("elapsed", time.Since(start)).
		Bool("exited_clean", runErr == nil).
		Msg("scanner finished")

	if ctx.Err() != nil {
		return nil, &domain.ToolInvocationError{Tool: t.spec.name, Err: ctx.Err()}
	}

	raw := stdout.Bytes()
	if t.spec.reportFile {
		data, err := os.ReadFile(report)
		if err == nil && len(data) > 0 {
			raw = data
		}
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		results, parseErr := t.spec.parse(raw)
		if parseErr == nil {
			return results, nil
		}
		if runErr == nil {
			return nil, &domain.ToolInvocationError{Tool: t.spec.name, Err: parseErr}
		}
	}

	if runErr != nil {
		return nil, &domain.ToolInvocationError{
			Tool: t.spec.name,
			Err:  fmt.Errorf("%w\nstderr: %s", runErr, stderr.String()),
		}
	}
	return nil, nil
}

// requirementsPath locates the dependency manifest safety scans.
func requirementsPath(target string) string {
	return filepath.Join(target, "requirements.txt")
}
