package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsgate/opsgate/internal/domain"
)

var auditTemplate = template.Must(template.New("audit").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>opsgate report · {{.Target}}</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 64rem; color: #1f2937; }
  h1 { font-size: 1.4rem; }
  .meta { color: #6b7280; font-size: 0.85rem; margin-bottom: 1.5rem; }
  .pass { color: #16a34a; font-weight: 600; }
  .fail { color: #dc2626; font-weight: 600; }
  table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
  th, td { border: 1px solid #e5e7eb; padding: 0.4rem 0.6rem; text-align: left; vertical-align: top; }
  th { background: #f9fafb; }
  tr.sev-error td:first-child { color: #dc2626; font-weight: 600; }
  tr.sev-warning td:first-child { color: #d97706; font-weight: 600; }
  tr.sev-info td:first-child { color: #6b7280; }
  .fix { color: #6b7280; font-style: italic; }
</style>
</head>
<body>
<h1>opsgate · {{.Target}}
{{- if .OverallStatus}} <span class="pass">PASSED</span>
{{- else}} <span class="fail">FAILED</span>{{end}}</h1>
<p class="meta">
run {{.RunID}}{{if .Commit}} · commit {{.Commit}}{{end}} · {{.Timestamp.Format "2006-01-02 15:04:05 MST"}}<br>
{{range $sev, $count := .Summary}}{{$count}} {{lower (printf "%s" $sev)}} &nbsp;{{end}}
</p>
<table>
<tr><th>Severity</th><th>Rule</th><th>Source</th><th>Location</th><th>Message</th></tr>
{{range .Results}}
<tr class="sev-{{lower (printf "%s" .Severity)}}">
  <td>{{.Severity}}</td>
  <td>{{.RuleID}}</td>
  <td>{{.Source}}</td>
  <td>{{.File}}{{if .Line}}:{{.Line}}{{end}}</td>
  <td>{{.Message}}
    {{- if .SuggestedFix}}<br><span class="fix">{{.SuggestedFix}}</span>{{end}}
    {{- if .DocumentationLink}}<br><a href="{{.DocumentationLink}}">docs</a>{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))

// WriteHTML renders the report as a standalone audit page. Messages and rule
// metadata come from user-authored rule files, so everything goes through
// html/template escaping.
func WriteHTML(report *domain.ValidationReport, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := auditTemplate.Execute(&buf, report); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
