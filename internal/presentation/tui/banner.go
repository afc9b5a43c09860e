package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/tabula/pkg/report"
)

// Status returns a one-line, coloured verdict for a report.
func Status(rep *report.Report, p termenv.Profile) string {
	name := rep.Schema()
	if name == "" {
		name = "table"
	}

	if rep.IsValid() {
		mark := p.String("✔ PASS").Foreground(p.Color("#22c55e")).Bold()
		line := fmt.Sprintf("%s %s (%d rows", mark, name, rep.Rows())
		if w := rep.WarningCount(); w > 0 {
			line += fmt.Sprintf(", %d warnings", w)
		}
		return line + ")"
	}

	mark := p.String("✘ FAIL").Foreground(p.Color("#ef4444")).Bold()
	return fmt.Sprintf("%s %s (%d rows, %d errors, %d warnings)",
		mark, name, rep.Rows(), rep.ErrorCount(), rep.WarningCount())
}

// PrintStatus writes the verdict line to w, coloured only when w is a terminal.
func PrintStatus(w io.Writer, rep *report.Report) {
	p := termenv.Ascii
	if IsTerminal(w) {
		p = termenv.ColorProfile()
	}
	fmt.Fprintln(w, Status(rep, p))
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
