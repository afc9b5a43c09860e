package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tabula/pkg/report"
	"github.com/aretw0/tabula/pkg/schema"
)

// GenerateMermaid produces a Mermaid flowchart of a table schema.
// Shapes:
// - Table: [(Cylinder)]
// - Column: [Rectangle], labelled "name: type" with one line per check
// - Table-level check: {{Hexagon}}, linked from every column it reads
//
// When rep is not nil, columns with error findings are styled "failed"
// and columns with only warnings "warned". Table-level findings style the
// table node.
func GenerateMermaid(s *schema.Table, rep *report.Report) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	tableID := "table_" + sanitizeMermaidID(s.Name())
	fmt.Fprintf(&sb, "    %s[(\"%s\")]\n", tableID, escapeLabel(s.Name()))

	for _, col := range s.Columns() {
		colID := columnID(col.Name())
		label := col.Name() + ": " + col.Type().Name()
		if col.Nullable() {
			label += "?"
		}
		for _, chk := range col.Checks() {
			label += "<br/>" + chk.String()
		}

		arrow := "-->"
		if !col.Required() {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", colID, escapeLabel(label))
		fmt.Fprintf(&sb, "    %s %s %s\n", tableID, arrow, colID)
	}

	for i, chk := range s.Checks() {
		chkID := fmt.Sprintf("check_%d", i)
		fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", chkID, escapeLabel(chk.String()))
		cols := chk.Columns()
		if len(cols) == 0 {
			fmt.Fprintf(&sb, "    %s --- %s\n", tableID, chkID)
			continue
		}
		for _, name := range cols {
			fmt.Fprintf(&sb, "    %s --- %s\n", columnID(name), chkID)
		}
	}

	if rep != nil && rep.Len() > 0 {
		writeOverlay(&sb, tableID, rep)
	}

	return sb.String()
}

func writeOverlay(sb *strings.Builder, tableID string, rep *report.Report) {
	sb.WriteString("\n    %% Findings\n")
	// Force black text (color:#000) for contrast on both light and dark themes.
	sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef warned fill:#fff9c4,stroke:#f9a825,stroke-width:2px,color:#000;\n")

	order, groups := rep.ByColumn()
	for _, col := range order {
		class := "warned"
		for _, f := range groups[col] {
			if f.Severity == report.SeverityError {
				class = "failed"
				break
			}
		}
		id := tableID
		if col != report.TableLabel {
			id = columnID(col)
		}
		fmt.Fprintf(sb, "    class %s %s;\n", id, class)
	}
}

func columnID(name string) string {
	return "col_" + sanitizeMermaidID(name)
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}
