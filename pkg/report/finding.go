package report

import (
	"encoding/json"
	"fmt"
	"math"
)

// Severity indicates how severe a finding is.
type Severity string

const (
	// SeverityError marks a finding that makes the report invalid.
	SeverityError Severity = "error"
	// SeverityWarning marks a finding that should be reviewed but does not fail validation.
	SeverityWarning Severity = "warning"
)

// NoRow is the Row of findings that are not tied to a particular row.
const NoRow = -1

// Kind identifies the check that produced a finding.
type Kind string

// Presence kinds.
const (
	KindColumnMissing Kind = "column_missing"
	KindColumnUnknown Kind = "column_unknown"
)

// Column-level kinds.
const (
	KindTypeError   Kind = "type_error"
	KindNullability Kind = "not_null"
	KindRange       Kind = "range"
	KindInSet       Kind = "in_set"
	KindNotInSet    Kind = "not_in_set"
	KindRegex       Kind = "regex"
	KindStrLength   Kind = "str_length"
	KindUnique      Kind = "unique"
	KindCustom      Kind = "custom"
)

// Table-level kinds.
const (
	KindRowCount       Kind = "table_row_count"
	KindTableCustom    Kind = "table_custom"
	KindUniqueTogether Kind = "unique_together"
)

// IsPresence reports whether k describes a column presence problem.
func (k Kind) IsPresence() bool {
	return k == KindColumnMissing || k == KindColumnUnknown
}

// Finding is one reported validation problem.
// An empty Column means the finding is about the whole table.
type Finding struct {
	Column   string   `json:"column,omitempty"`
	Row      int      `json:"row"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Value    any      `json:"value,omitempty"`
}

// Error implements error so findings can be surfaced through AggregateError.
func (f Finding) Error() string {
	loc := "table"
	if f.Column != "" {
		loc = fmt.Sprintf("column %q", f.Column)
	}
	if f.Row != NoRow {
		loc += fmt.Sprintf(" row %d", f.Row)
	}
	return fmt.Sprintf("%s: %s (%s)", loc, f.Message, f.Kind)
}

// MarshalJSON implements json.Marshaler. Values JSON cannot carry, such as
// infinities, NaN, channels or functions, are written as their fmt.Sprint form.
func (f Finding) MarshalJSON() ([]byte, error) {
	type plain Finding
	p := plain(f)
	p.Value = jsonValue(f.Value)
	return json.Marshal(p)
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return fmt.Sprint(x)
		}
		return x
	case float32:
		if math.IsInf(float64(x), 0) || math.IsNaN(float64(x)) {
			return fmt.Sprint(x)
		}
		return x
	case string, bool, int, int64:
		return x
	}
	if _, err := json.Marshal(v); err != nil {
		return fmt.Sprint(v)
	}
	return v
}
