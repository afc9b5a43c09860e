package schema

import (
	"fmt"
	"strings"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

// UniqueCheck requires every present value in the column to be distinct.
// The first occurrence passes; each later duplicate is a violation.
type UniqueCheck struct {
	base
}

// Unique creates a within-column uniqueness check.
func Unique(opts ...CheckOption) *UniqueCheck {
	return &UniqueCheck{base: newBase(report.KindUnique, opts)}
}

// CheckColumn implements ColumnCheck.
func (c *UniqueCheck) CheckColumn(values []any, skip func(row int) bool) []int {
	seen := make(map[any]struct{}, len(values))
	var dups []int
	for i, v := range values {
		if skip != nil && skip(i) {
			continue
		}
		k := key(v)
		if _, ok := seen[k]; ok {
			dups = append(dups, i)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

func (c *UniqueCheck) String() string { return "unique" }

func (c *UniqueCheck) describe(value any) string {
	return fmt.Sprintf("duplicate value %v", value)
}

// Params implements Params.
func (c *UniqueCheck) Params() map[string]any { return c.params("unique") }

// RowCountCheck bounds the number of rows in the table.
type RowCountCheck struct {
	base
	min, max int
}

// RowCount requires min <= rows <= max. Use Unbounded for no maximum.
func RowCount(min, max int, opts ...CheckOption) *RowCountCheck {
	c := &RowCountCheck{
		base: newBase(report.KindRowCount, opts),
		min:  min,
		max:  max,
	}
	switch {
	case min < 0:
		c.fail("minimum row count %d is negative", min)
	case max != Unbounded && max < 0:
		c.fail("maximum row count %d is negative", max)
	case max != Unbounded && max < min:
		c.fail("minimum row count %d is greater than maximum %d", min, max)
	}
	return c
}

// Columns implements TableCheck.
func (c *RowCountCheck) Columns() []string { return nil }

// CheckTable implements TableCheck.
func (c *RowCountCheck) CheckTable(t frame.Table, _ SkipFunc) []int {
	n := t.Len()
	if n < c.min || (c.max != Unbounded && n > c.max) {
		return []int{report.NoRow}
	}
	return nil
}

func (c *RowCountCheck) String() string {
	if c.max == Unbounded {
		return fmt.Sprintf("row count >= %d", c.min)
	}
	return fmt.Sprintf("row count in [%d, %d]", c.min, c.max)
}

func (c *RowCountCheck) describe(value any) string {
	return fmt.Sprintf("table has %v rows, want %s", value, c)
}

func (c *RowCountCheck) violationValue(t frame.Table, _ int) any { return t.Len() }

// Params implements Params.
func (c *RowCountCheck) Params() map[string]any {
	p := c.params("row_count")
	p["min"] = c.min
	if c.max != Unbounded {
		p["max"] = c.max
	}
	return p
}

// RowPredicateCheck evaluates a user-supplied pure function over the named
// columns of every row. Rows where one of the columns is missing or failed
// its type check are skipped.
type RowPredicateCheck struct {
	base
	name    string
	columns []string
	fn      func(row map[string]any) bool
}

// RowPredicate creates a cross-column check.
func RowPredicate(name string, columns []string, fn func(row map[string]any) bool, opts ...CheckOption) *RowPredicateCheck {
	c := &RowPredicateCheck{
		base:    newBase(report.KindTableCustom, opts),
		name:    name,
		columns: append([]string(nil), columns...),
		fn:      fn,
	}
	switch {
	case name == "":
		c.fail("row check name is empty")
	case fn == nil:
		c.fail("row check %q has no function", name)
	case len(columns) == 0:
		c.fail("row check %q references no columns", name)
	}
	return c
}

// Name returns the name the check was registered under.
func (c *RowPredicateCheck) Name() string { return c.name }

// Columns implements TableCheck.
func (c *RowPredicateCheck) Columns() []string {
	return append([]string(nil), c.columns...)
}

// CheckTable implements TableCheck.
func (c *RowPredicateCheck) CheckTable(t frame.Table, skip SkipFunc) []int {
	cols := loadColumns(t, c.columns)
	var bad []int
	for row := 0; row < t.Len(); row++ {
		rec, ok := rowRecord(t, c.columns, cols, row, skip)
		if !ok {
			continue
		}
		if !c.eval(rec) {
			bad = append(bad, row)
		}
	}
	return bad
}

func (c *RowPredicateCheck) eval(rec map[string]any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.fn(rec)
}

func (c *RowPredicateCheck) String() string {
	return fmt.Sprintf("row check %s(%s)", c.name, strings.Join(c.columns, ", "))
}

func (c *RowPredicateCheck) describe(value any) string {
	return fmt.Sprintf("row %v failed %s", value, c)
}

func (c *RowPredicateCheck) violationValue(t frame.Table, row int) any {
	rec, _ := rowRecord(t, c.columns, loadColumns(t, c.columns), row, nil)
	return rec
}

// Params implements Params.
func (c *RowPredicateCheck) Params() map[string]any {
	p := c.params("row_predicate")
	p["name"] = c.name
	p["columns"] = c.Columns()
	return p
}

// UniqueTogetherCheck requires the combination of the named columns to be
// distinct across rows.
type UniqueTogetherCheck struct {
	base
	columns []string
}

// UniqueTogether creates a multi-column uniqueness check.
func UniqueTogether(columns []string, opts ...CheckOption) *UniqueTogetherCheck {
	c := &UniqueTogetherCheck{
		base:    newBase(report.KindUniqueTogether, opts),
		columns: append([]string(nil), columns...),
	}
	if len(columns) == 0 {
		c.fail("unique_together references no columns")
	}
	return c
}

// Columns implements TableCheck.
func (c *UniqueTogetherCheck) Columns() []string {
	return append([]string(nil), c.columns...)
}

// CheckTable implements TableCheck.
func (c *UniqueTogetherCheck) CheckTable(t frame.Table, skip SkipFunc) []int {
	cols := loadColumns(t, c.columns)
	seen := make(map[string]struct{})
	var dups []int
	for row := 0; row < t.Len(); row++ {
		if _, ok := rowRecord(t, c.columns, cols, row, skip); !ok {
			continue
		}
		k := tupleKey(c.columns, cols, row)
		if _, ok := seen[k]; ok {
			dups = append(dups, row)
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}

func (c *UniqueTogetherCheck) String() string {
	return fmt.Sprintf("unique together (%s)", strings.Join(c.columns, ", "))
}

func (c *UniqueTogetherCheck) describe(value any) string {
	return fmt.Sprintf("duplicate combination %v for %s", value, c)
}

func (c *UniqueTogetherCheck) violationValue(t frame.Table, row int) any {
	cols := loadColumns(t, c.columns)
	tuple := make([]any, len(c.columns))
	for i, name := range c.columns {
		vals := cols[name]
		if row < 0 || row >= len(vals) {
			return nil
		}
		tuple[i] = vals[row]
	}
	return tuple
}

// Params implements Params.
func (c *UniqueTogetherCheck) Params() map[string]any {
	p := c.params("unique_together")
	p["columns"] = c.Columns()
	return p
}

func loadColumns(t frame.Table, names []string) map[string][]any {
	cols := make(map[string][]any, len(names))
	for _, name := range names {
		vals, _ := t.Column(name)
		cols[name] = vals
	}
	return cols
}

// rowRecord collects the named cells of row. It reports false when one of
// them is missing or must be skipped.
func rowRecord(t frame.Table, names []string, cols map[string][]any, row int, skip SkipFunc) (map[string]any, bool) {
	rec := make(map[string]any, len(names))
	for _, name := range names {
		vals := cols[name]
		if row >= len(vals) || t.IsMissing(name, row) {
			return nil, false
		}
		if skip != nil && skip(name, row) {
			return nil, false
		}
		rec[name] = vals[row]
	}
	return rec, true
}

func tupleKey(names []string, cols map[string][]any, row int) string {
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%#v\x00", key(cols[name][row]))
	}
	return b.String()
}
