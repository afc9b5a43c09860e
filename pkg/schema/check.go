package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

// Check is a single checkable rule. Every check is immutable once built and
// must be a pure function of its input and its own parameters.
//
// A check is evaluated through one of ValueCheck, ColumnCheck or TableCheck.
type Check interface {
	// Kind names the rule; it becomes the Kind of the findings it produces.
	Kind() report.Kind
	// String describes the rule, e.g. "range [0, 120]".
	String() string
}

// ValueCheck is evaluated once per present, type-correct cell.
type ValueCheck interface {
	Check
	CheckValue(value any) bool
}

// ColumnCheck is evaluated over a whole column, e.g. uniqueness.
// It returns the violating row indices in ascending order; rows for which
// skip returns true must be ignored.
type ColumnCheck interface {
	Check
	CheckColumn(values []any, skip func(row int) bool) []int
}

// SkipFunc reports whether the cell at (column, row) must be ignored by
// table-level checks, because it is missing or failed its type check.
type SkipFunc func(column string, row int) bool

// TableCheck is evaluated after all column checks.
// It returns violating row indices, or report.NoRow for a table-wide violation.
type TableCheck interface {
	Check
	// Columns lists the columns the check reads; it is skipped when one of
	// them is absent from the table.
	Columns() []string
	CheckTable(t frame.Table, skip SkipFunc) []int
}

// Params exposes a check's parameters for serialization.
type Params interface {
	Params() map[string]any
}

// CheckOption configures the common behavior of built-in checks.
type CheckOption func(*base)

// WithMessage overrides the finding message. The template may reference
// {column}, {value} and {check}.
func WithMessage(template string) CheckOption {
	return func(b *base) {
		b.template = template
	}
}

// AsWarning marks the check's findings as warnings: they are reported but do
// not make the report invalid.
func AsWarning() CheckOption {
	return func(b *base) {
		b.severity = report.SeverityWarning
	}
}

// base carries the fields shared by all built-in checks.
type base struct {
	kind     report.Kind
	severity report.Severity
	template string
	err      error
}

func newBase(kind report.Kind, opts []CheckOption) base {
	b := base{kind: kind, severity: report.SeverityError}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Kind implements Check.
func (b *base) Kind() report.Kind { return b.kind }

// Severity returns the severity of findings produced by the check.
func (b *base) Severity() report.Severity { return b.severity }

// MessageTemplate returns the custom message template, if any.
func (b *base) MessageTemplate() string { return b.template }

func (b *base) definitionError() error { return b.err }

func (b *base) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// common fields written by Params implementations
func (b *base) params(kind string) map[string]any {
	p := map[string]any{"kind": kind}
	if b.severity == report.SeverityWarning {
		p["severity"] = string(report.SeverityWarning)
	}
	if b.template != "" {
		p["message"] = b.template
	}
	return p
}

type severityer interface {
	Severity() report.Severity
}

type templater interface {
	MessageTemplate() string
}

type definer interface {
	definitionError() error
}

type describer interface {
	describe(value any) string
}

func severityOf(c Check) report.Severity {
	if s, ok := c.(severityer); ok && s.Severity() != "" {
		return s.Severity()
	}
	return report.SeverityError
}

func messageFor(c Check, column string, value any) string {
	if t, ok := c.(templater); ok && t.MessageTemplate() != "" {
		return strings.NewReplacer(
			"{column}", column,
			"{value}", fmt.Sprint(value),
			"{check}", c.String(),
		).Replace(t.MessageTemplate())
	}
	if d, ok := c.(describer); ok {
		return d.describe(value)
	}
	return fmt.Sprintf("value %v failed %s", value, c)
}

func newFinding(c Check, column string, row int, value any) report.Finding {
	return report.Finding{
		Column:   column,
		Row:      row,
		Kind:     c.Kind(),
		Message:  messageFor(c, column, value),
		Severity: severityOf(c),
		Value:    value,
	}
}

// The safe* helpers keep a panicking user predicate from aborting a run;
// a panic counts as a failed check.

func safeCheckValue(c ValueCheck, v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.CheckValue(v)
}

// safeValidateType turns a panicking type check into a type error.
func safeValidateType(t DataType, v any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s type check panicked: %v", t.Name(), r)
		}
	}()
	return t.Validate(v)
}

func safeCoerce(t DataType, v any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("cannot coerce %v to %s: %v", v, t.Name(), r)
		}
	}()
	return t.Coerce(v)
}

func safeCheckColumn(c ColumnCheck, values []any, skip func(int) bool) (rows []int, panicked bool) {
	defer func() {
		if recover() != nil {
			rows, panicked = nil, true
		}
	}()
	return c.CheckColumn(values, skip), false
}

func safeCheckTable(c TableCheck, t frame.Table, skip SkipFunc) (rows []int) {
	defer func() {
		if recover() != nil {
			rows = []int{report.NoRow}
		}
	}()
	return c.CheckTable(t, skip)
}
