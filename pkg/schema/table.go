package schema

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

// Table is the schema of a whole table: ordered columns, table-level checks
// and the strictness policy for unknown columns. Build it with NewTable.
type Table struct {
	name    string
	strict  bool
	columns []*Column
	index   map[string]int
	checks  []TableCheck
}

// Name returns the schema name.
func (s *Table) Name() string { return s.name }

// Strict reports whether table columns without a schema are rejected.
func (s *Table) Strict() bool { return s.strict }

// Columns returns the column schemas in declaration order.
func (s *Table) Columns() []*Column { return append([]*Column(nil), s.columns...) }

// Column returns the schema of the named column.
func (s *Table) Column(name string) (*Column, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.columns[i], true
}

// Checks returns the table-level checks in declaration order.
func (s *Table) Checks() []TableCheck { return append([]TableCheck(nil), s.checks...) }

// ValidateOption tunes a single validation run.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	parallelism int
}

// WithParallelism validates up to n columns concurrently. The findings are
// identical to a sequential run.
func WithParallelism(n int) ValidateOption {
	return func(c *validateConfig) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// Validate checks t against the schema. The findings are ordered:
//  1. presence findings (missing required columns, then unknown columns when strict),
//  2. column findings, by column declaration order then row order,
//  3. table-level findings, by check declaration order.
//
// Table-level checks skip the rows where one of their columns failed its
// type check, and are skipped entirely when one of their columns is absent.
func (s *Table) Validate(t frame.Table, opts ...ValidateOption) *report.Report {
	cfg := validateConfig{parallelism: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	present := make(map[string]bool)
	for _, name := range t.Columns() {
		present[name] = true
	}

	// 1. Presence
	var findings []report.Finding
	for _, col := range s.columns {
		if col.required && !present[col.name] {
			findings = append(findings, report.Finding{
				Column:   col.name,
				Row:      report.NoRow,
				Kind:     report.KindColumnMissing,
				Message:  "required column is missing",
				Severity: report.SeverityError,
			})
		}
	}
	if s.strict {
		for _, name := range t.Columns() {
			if _, ok := s.index[name]; !ok {
				findings = append(findings, report.Finding{
					Column:   name,
					Row:      report.NoRow,
					Kind:     report.KindColumnUnknown,
					Message:  "column is not declared in the schema",
					Severity: report.SeverityError,
				})
			}
		}
	}

	// 2. Columns. Each column writes its own slot so the merge below follows
	// declaration order whatever the completion order.
	results := make([]*columnResult, len(s.columns))
	validateColumn := func(i int) {
		col := s.columns[i]
		vals, ok := t.Column(col.name)
		if !ok {
			return
		}
		res := col.validate(vals, func(row int) bool { return t.IsMissing(col.name, row) })
		results[i] = &res
	}

	if cfg.parallelism > 1 && len(s.columns) > 1 {
		var g errgroup.Group
		g.SetLimit(cfg.parallelism)
		for i := range s.columns {
			g.Go(func() error {
				validateColumn(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range s.columns {
			validateColumn(i)
		}
	}

	for _, res := range results {
		if res != nil {
			findings = append(findings, res.findings...)
		}
	}

	// 3. Table-level checks
	if len(s.checks) > 0 {
		view := &validatedView{Table: t, values: make(map[string][]any)}
		for i, res := range results {
			if res != nil && s.columns[i].coerce {
				view.values[s.columns[i].name] = res.values
			}
		}
		skip := func(column string, row int) bool {
			i, ok := s.index[column]
			if !ok || results[i] == nil {
				return false
			}
			return results[i].typeFailed[row]
		}

		for _, chk := range s.checks {
			if !allPresent(chk.Columns(), present) {
				continue
			}
			for _, row := range safeCheckTable(chk, view, skip) {
				findings = append(findings, newFinding(chk, "", row, violationValue(chk, view, row)))
			}
		}
	}

	return report.New(s.name, t.Len(), findings)
}

type violationValuer interface {
	violationValue(t frame.Table, row int) any
}

// violationValue returns the offending value of row, or nil for table-wide
// findings and when the check cannot tell.
func violationValue(c TableCheck, t frame.Table, row int) (value any) {
	v, ok := c.(violationValuer)
	if !ok || row == report.NoRow {
		return nil
	}
	defer func() {
		if recover() != nil {
			value = nil
		}
	}()
	return v.violationValue(t, row)
}

func allPresent(names []string, present map[string]bool) bool {
	for _, name := range names {
		if !present[name] {
			return false
		}
	}
	return true
}

// validatedView exposes coerced column values to table-level checks.
type validatedView struct {
	frame.Table
	values map[string][]any
}

func (v *validatedView) Column(name string) ([]any, bool) {
	if vals, ok := v.values[name]; ok {
		return append([]any(nil), vals...), true
	}
	return v.Table.Column(name)
}

// TableBuilder provides a fluent API for declaring a table schema.
type TableBuilder struct {
	name    string
	strict  bool
	columns []ColumnDef
	checks  []TableCheck
}

// NewTable starts the declaration of a table schema.
func NewTable(name string) *TableBuilder {
	return &TableBuilder{name: name}
}

// Strict rejects table columns that have no schema.
func (b *TableBuilder) Strict() *TableBuilder {
	b.strict = true
	return b
}

// Column appends column declarations, in order.
func (b *TableBuilder) Column(cols ...ColumnDef) *TableBuilder {
	b.columns = append(b.columns, cols...)
	return b
}

// Check appends table-level checks, evaluated in the order given.
func (b *TableBuilder) Check(checks ...TableCheck) *TableBuilder {
	b.checks = append(b.checks, checks...)
	return b
}

// Build validates the declaration and returns the immutable schema.
// All definition problems are reported, joined into one error.
func (b *TableBuilder) Build() (*Table, error) {
	s := &Table{
		name:   b.name,
		strict: b.strict,
		index:  make(map[string]int, len(b.columns)),
	}

	var errs []error
	for i, def := range b.columns {
		if def == nil {
			errs = append(errs, &DefinitionError{Reason: fmt.Sprintf("column %d is nil", i)})
			continue
		}
		col, err := def.build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := s.index[col.name]; dup {
			errs = append(errs, &DefinitionError{Column: col.name, Reason: "duplicate column name"})
			continue
		}
		s.index[col.name] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	for _, chk := range b.checks {
		if chk == nil {
			errs = append(errs, &DefinitionError{Reason: "table check is nil"})
			continue
		}
		if err := checkDefinition("", chk); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, name := range chk.Columns() {
			if _, ok := s.index[name]; !ok {
				errs = append(errs, &DefinitionError{
					Check:  chk.String(),
					Reason: fmt.Sprintf("references undeclared column %q", name),
				})
			}
		}
		s.checks = append(s.checks, chk)
	}

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return s, nil
}

// MustBuild is like Build but panics on a definition error.
func (b *TableBuilder) MustBuild() *Table {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
