package schema

import (
	"fmt"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/report"
)

// Column is the schema of a single column: its name, element type, checks
// and nullability. Columns are immutable; build them with NewColumn.
type Column struct {
	name     string
	dtype    DataType
	checks   []Check
	nullable bool
	required bool
	coerce   bool
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the declared element type.
func (c *Column) Type() DataType { return c.dtype }

// Checks returns the column checks in declaration order.
func (c *Column) Checks() []Check { return append([]Check(nil), c.checks...) }

// Nullable reports whether missing values are allowed.
func (c *Column) Nullable() bool { return c.nullable }

// Required reports whether the column must be present in the table.
func (c *Column) Required() bool { return c.required }

// Coerces reports whether values are converted to the declared type before checking.
func (c *Column) Coerces() bool { return c.coerce }

func (c *Column) build() (*Column, error) { return c, nil }

// Validate checks the values of a column in row order and returns one
// finding per problem.
//
// A missing value is only checked for nullability. A present value is first
// type-checked; a mismatch yields a single type_error finding for that value.
// Otherwise every check runs in declaration order, so a value failing several
// checks gets one finding per failed check.
//
// missing may be nil, in which case nil and NaN values are missing.
func (c *Column) Validate(values []any, missing func(row int) bool) []report.Finding {
	return c.validate(values, missing).findings
}

type columnResult struct {
	findings   []report.Finding
	values     []any
	typeFailed map[int]bool
}

func (c *Column) validate(values []any, missing func(row int) bool) columnResult {
	if missing == nil {
		missing = func(row int) bool { return frame.IsMissingValue(values[row]) }
	}

	res := columnResult{
		values:     make([]any, len(values)),
		typeFailed: make(map[int]bool),
	}
	absent := make([]bool, len(values))
	typeErrs := make(map[int]error)

	for i, v := range values {
		if missing(i) {
			absent[i] = true
			continue
		}
		if c.coerce {
			cv, err := safeCoerce(c.dtype, v)
			if err != nil {
				res.typeFailed[i] = true
				typeErrs[i] = err
				res.values[i] = v
				continue
			}
			v = cv
		}
		if err := safeValidateType(c.dtype, v); err != nil {
			res.typeFailed[i] = true
			typeErrs[i] = err
		}
		res.values[i] = v
	}

	skip := func(row int) bool { return absent[row] || res.typeFailed[row] }

	// Column checks see the whole column at once; their violations are
	// emitted in row order together with the value checks below.
	colHits := make([]map[int]bool, len(c.checks))
	for j, chk := range c.checks {
		cc, ok := chk.(ColumnCheck)
		if !ok {
			continue
		}
		if _, isValue := chk.(ValueCheck); isValue {
			continue
		}
		rows, panicked := safeCheckColumn(cc, res.values, skip)
		if panicked {
			res.findings = append(res.findings, newFinding(chk, c.name, report.NoRow, nil))
			continue
		}
		colHits[j] = make(map[int]bool, len(rows))
		for _, r := range rows {
			colHits[j][r] = true
		}
	}

	for i := range values {
		if absent[i] {
			if !c.nullable {
				res.findings = append(res.findings, report.Finding{
					Column:   c.name,
					Row:      i,
					Kind:     report.KindNullability,
					Message:  "missing value in non-nullable column",
					Severity: report.SeverityError,
				})
			}
			continue
		}
		if res.typeFailed[i] {
			res.findings = append(res.findings, report.Finding{
				Column:   c.name,
				Row:      i,
				Kind:     report.KindTypeError,
				Message:  typeErrs[i].Error(),
				Severity: report.SeverityError,
				Value:    values[i],
			})
			continue
		}

		v := res.values[i]
		for j, chk := range c.checks {
			failed := false
			if vc, ok := chk.(ValueCheck); ok {
				failed = !safeCheckValue(vc, v)
			} else if colHits[j] != nil {
				failed = colHits[j][i]
			}
			if failed {
				res.findings = append(res.findings, newFinding(chk, c.name, i, v))
			}
		}
	}

	return res
}

// ColumnDef is anything a table can be built from: a *Column or a
// *ColumnBuilder.
type ColumnDef interface {
	build() (*Column, error)
}

// ColumnBuilder provides a fluent API for declaring a column.
// Columns are required and non-nullable unless stated otherwise.
type ColumnBuilder struct {
	col Column
}

// NewColumn starts the declaration of a column.
func NewColumn(name string, dtype DataType) *ColumnBuilder {
	return &ColumnBuilder{
		col: Column{
			name:     name,
			dtype:    dtype,
			required: true,
		},
	}
}

// Nullable allows missing values.
func (b *ColumnBuilder) Nullable() *ColumnBuilder {
	b.col.nullable = true
	return b
}

// Optional allows the column to be absent from the table.
func (b *ColumnBuilder) Optional() *ColumnBuilder {
	b.col.required = false
	return b
}

// Coerce converts values to the declared type before checking them.
func (b *ColumnBuilder) Coerce() *ColumnBuilder {
	b.col.coerce = true
	return b
}

// Check appends value or column checks, evaluated in the order given.
func (b *ColumnBuilder) Check(checks ...Check) *ColumnBuilder {
	b.col.checks = append(b.col.checks, checks...)
	return b
}

// Build validates the declaration and returns the immutable column.
// All definition problems are reported, joined into one error.
func (b *ColumnBuilder) Build() (*Column, error) {
	return b.build()
}

// MustBuild is like Build but panics on a definition error.
func (b *ColumnBuilder) MustBuild() *Column {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func (b *ColumnBuilder) build() (*Column, error) {
	var errs []error
	if b.col.name == "" {
		errs = append(errs, &DefinitionError{Reason: "column name is empty"})
	}
	if b.col.dtype == nil {
		errs = append(errs, &DefinitionError{Column: b.col.name, Reason: "column type is nil"})
	} else if ct, ok := b.col.dtype.(*CustomType); ok && ct.validate == nil {
		errs = append(errs, &DefinitionError{Column: b.col.name, Reason: fmt.Sprintf("custom type %q has no validate function", ct.name)})
	}
	for _, chk := range b.col.checks {
		if err := checkDefinition(b.col.name, chk); err != nil {
			errs = append(errs, err)
			continue
		}
		_, isValue := chk.(ValueCheck)
		_, isColumn := chk.(ColumnCheck)
		if !isValue && !isColumn {
			errs = append(errs, &DefinitionError{
				Column: b.col.name,
				Check:  chk.String(),
				Reason: "not a value or column check",
			})
		}
	}
	if err := joinErrors(errs); err != nil {
		return nil, err
	}

	col := b.col
	col.checks = append([]Check(nil), b.col.checks...)
	return &col, nil
}
