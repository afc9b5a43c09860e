package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/tabula/internal/presentation/tui"
	"github.com/aretw0/tabula/pkg/report"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// WriteReport writes rep to w in the given format. Markdown is rendered with
// glamour when w is a terminal and written raw otherwise.
func WriteReport(w io.Writer, rep *report.Report, format string) error {
	switch format {
	case FormatText, "":
		tui.PrintStatus(w, rep)
		for _, f := range rep.Findings() {
			if _, err := fmt.Fprintf(w, "  %s\n", f.Error()); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)

	case FormatMarkdown:
		md := tui.ReportMarkdown(rep)
		if tui.IsTerminal(w) {
			render, err := tui.NewRenderer()
			if err != nil {
				return err
			}
			if md, err = render(md); err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
		}
		_, err := io.WriteString(w, md)
		return err
	}
	return fmt.Errorf("unknown format %q (want text, json or markdown)", format)
}
