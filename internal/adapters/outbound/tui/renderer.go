// Package tui renders validation reports for the terminal.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"
	"github.com/opsgate/opsgate/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sourceStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport renders a ValidationReport as a styled TUI string.
func RenderReport(report *domain.ValidationReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("opsgate")
	subtitle := dimStyle.Render(report.Target)
	status := passStyle.Bold(true).Render("PASSED")
	if !report.OverallStatus {
		status = failStyle.Bold(true).Render("FAILED")
	}
	meta := faintStyle.Render(metaLine(report))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + status + "\n" + meta))
	b.WriteString("\n\n")

	// ── Summary ──
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Summary"))
	b.WriteString("  ")
	b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", report.Summary[domain.SeverityError])))
	b.WriteString("  ")
	b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", report.Summary[domain.SeverityWarning])))
	b.WriteString("  ")
	b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", report.Summary[domain.SeverityInfo])))
	b.WriteString("\n")

	failures := failingResults(report.Results)
	if len(failures) == 0 {
		b.WriteString("\n  " + passStyle.Render("All checks passed.") + "\n")
		return b.String()
	}

	// ── Findings, grouped by source ──
	for _, source := range sourceOrder(failures) {
		b.WriteString("\n  " + separatorLine + "\n")
		b.WriteString("  " + sourceStyle.Render(source) + "\n\n")
		for _, r := range failures {
			if r.Source != source {
				continue
			}
			renderResult(&b, r)
		}
	}

	b.WriteString("\n")
	return b.String()
}

func metaLine(report *domain.ValidationReport) string {
	parts := []string{"run " + shortID(report.RunID)}
	if report.Commit != "" {
		parts = append(parts, "commit "+shortID(report.Commit))
	}
	return strings.Join(parts, "  ")
}

func renderResult(b *strings.Builder, r domain.ValidationResult) {
	tag := severityTag(r.Severity)

	loc := r.File
	if loc != "" && r.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, r.Line)
	}

	head := "    " + tag + " "
	if r.RuleID != "" {
		head += titleStyle.Render(r.RuleID)
		if loc != "" {
			head += "  " + fileStyle.Render(loc)
		}
	} else if loc != "" {
		head += fileStyle.Render(loc)
	}
	b.WriteString(head + "\n")

	msg := r.Message
	if r.PropertyName != "" {
		msg = humanizeProperty(r.PropertyName) + ": " + msg
	}
	b.WriteString("         " + dimStyle.Render(msg) + "\n")

	if r.SuggestedFix != "" {
		b.WriteString("         " + hintStyle.Render("fix: "+r.SuggestedFix) + "\n")
	}
	if r.DocumentationLink != "" {
		b.WriteString("         " + faintStyle.Render(r.DocumentationLink) + "\n")
	}
}

// RenderRules formats the active rule set for terminal output.
func RenderRules(rules []domain.Rule) string {
	if len(rules) == 0 {
		return "  " + dimStyle.Render("No rules loaded.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(fmt.Sprintf("Rules (%d)", len(rules))) + "\n")
	b.WriteString("  " + separatorLine + "\n\n")

	for _, r := range rules {
		tag := severityTag(r.Severity)
		line := fmt.Sprintf("  %s %s  %s",
			tag,
			titleStyle.Render(padRight(r.ID, 24)),
			dimStyle.Render(r.Description),
		)
		b.WriteString(line + "\n")
		b.WriteString(fmt.Sprintf("         %s\n",
			faintStyle.Render(fmt.Sprintf("%s · %s · %s", r.Framework, r.Category, r.CheckType)),
		))
	}

	return b.String()
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func failingResults(results []domain.ValidationResult) []domain.ValidationResult {
	var out []domain.ValidationResult
	for _, r := range results {
		if !r.Valid {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}

func sourceOrder(results []domain.ValidationResult) []string {
	var order []string
	seen := map[string]bool{}
	for _, r := range results {
		if !seen[r.Source] {
			seen[r.Source] = true
			order = append(order, r.Source)
		}
	}
	return order
}

// humanizeProperty turns "encryptionAtRest" or "backup_schedule" into a
// readable label.
func humanizeProperty(name string) string {
	var words []string
	for _, chunk := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '.' || r == '-'
	}) {
		words = append(words, camelcase.Split(chunk)...)
	}
	return strings.ToLower(strings.Join(words, " "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
