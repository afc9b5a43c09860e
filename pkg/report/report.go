package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// TableLabel is how table-level findings are grouped in summaries.
const TableLabel = "<table>"

// Report is the immutable result of one validation run.
// It is created once and never mutated; accessors return copies.
type Report struct {
	schema   string
	runID    string
	rows     int
	findings []Finding
}

// New creates a report over a table of the given row count.
// The findings slice is copied.
func New(schema string, rows int, findings []Finding) *Report {
	fs := make([]Finding, len(findings))
	copy(fs, findings)
	return &Report{
		schema:   schema,
		rows:     rows,
		findings: fs,
	}
}

// WithRunID returns a copy of the report stamped with the given run identifier.
func (r *Report) WithRunID(id string) *Report {
	cp := *r
	cp.runID = id
	return &cp
}

// Schema returns the name of the schema the table was validated against.
func (r *Report) Schema() string { return r.schema }

// RunID returns the run identifier, empty if the report was never stamped.
func (r *Report) RunID() string { return r.runID }

// Rows returns the number of rows that were validated.
func (r *Report) Rows() int { return r.rows }

// Len returns the number of findings.
func (r *Report) Len() int { return len(r.findings) }

// IsValid reports whether the report holds no error-severity finding.
func (r *Report) IsValid() bool {
	return r.ErrorCount() == 0
}

// ErrorCount returns the number of error findings.
func (r *Report) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning findings.
func (r *Report) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(sev Severity) int {
	n := 0
	for _, f := range r.findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Findings returns the ordered findings.
func (r *Report) Findings() []Finding {
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// ByColumn groups findings by column, in order of first appearance.
// Table-level findings are grouped under TableLabel.
func (r *Report) ByColumn() ([]string, map[string][]Finding) {
	var order []string
	groups := make(map[string][]Finding)
	for _, f := range r.findings {
		key := f.Column
		if key == "" {
			key = TableLabel
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], f)
	}
	return order, groups
}

// Summary renders a human-readable overview: findings grouped by column
// with counts per kind.
func (r *Report) Summary() string {
	var b strings.Builder

	name := r.schema
	if name == "" {
		name = "(unnamed)"
	}

	if len(r.findings) == 0 {
		fmt.Fprintf(&b, "schema %s: valid (%d rows, no findings)", name, r.rows)
		return b.String()
	}

	status := "valid"
	if !r.IsValid() {
		status = "invalid"
	}
	fmt.Fprintf(&b, "schema %s: %s (%d rows, %d findings: %d errors, %d warnings)",
		name, status, r.rows, len(r.findings), r.ErrorCount(), r.WarningCount())

	order, groups := r.ByColumn()
	for _, col := range order {
		fs := groups[col]
		kinds := make(map[Kind]int)
		for _, f := range fs {
			kinds[f.Kind]++
		}
		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, string(k))
		}
		sort.Strings(names)

		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = fmt.Sprintf("%s=%d", k, kinds[Kind(k)])
		}
		fmt.Fprintf(&b, "\n  %s: %d (%s)", col, len(fs), strings.Join(parts, ", "))
	}
	return b.String()
}

// String implements fmt.Stringer.
func (r *Report) String() string { return r.Summary() }

type reportJSON struct {
	Schema   string    `json:"schema,omitempty"`
	RunID    string    `json:"run_id,omitempty"`
	Rows     int       `json:"rows"`
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings"`
}

// MarshalJSON implements json.Marshaler.
func (r *Report) MarshalJSON() ([]byte, error) {
	fs := r.findings
	if fs == nil {
		fs = []Finding{}
	}
	return json.Marshal(reportJSON{
		Schema:   r.schema,
		RunID:    r.runID,
		Rows:     r.rows,
		Valid:    r.IsValid(),
		Findings: fs,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// The "valid" field is derived from the findings and ignored on input.
func (r *Report) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("report: UnmarshalJSON on nil pointer")
	}
	var raw reportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.schema = raw.Schema
	r.runID = raw.RunID
	r.rows = raw.Rows
	r.findings = raw.Findings
	return nil
}
