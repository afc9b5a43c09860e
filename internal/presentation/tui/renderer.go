package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/tabula/pkg/report"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() (func(string) (string, error), error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}

// ReportMarkdown formats a report as a markdown document: a status line,
// per-column counts and a table of findings.
func ReportMarkdown(rep *report.Report) string {
	var b strings.Builder

	name := rep.Schema()
	if name == "" {
		name = "table"
	}
	fmt.Fprintf(&b, "# %s\n\n", name)

	status := "**valid**"
	if !rep.IsValid() {
		status = "**invalid**"
	}
	fmt.Fprintf(&b, "%s: %d rows, %d findings (%d errors, %d warnings)\n\n",
		status, rep.Rows(), rep.Len(), rep.ErrorCount(), rep.WarningCount())
	if rep.RunID() != "" {
		fmt.Fprintf(&b, "Run `%s`\n\n", rep.RunID())
	}

	if rep.Len() == 0 {
		return b.String()
	}

	order, byColumn := rep.ByColumn()
	b.WriteString("## Columns\n\n")
	for _, col := range order {
		label := col
		if label == "" {
			label = "(table)"
		}
		fmt.Fprintf(&b, "- `%s`: %d\n", label, len(byColumn[col]))
	}

	b.WriteString("\n## Findings\n\n")
	b.WriteString("| Column | Row | Kind | Severity | Message |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range rep.Findings() {
		row := "-"
		if f.Row != report.NoRow {
			row = fmt.Sprintf("%d", f.Row)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(f.Column), row, f.Kind, f.Severity, cell(f.Message))
	}
	return b.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
