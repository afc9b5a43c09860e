// Package schema declares what a table must look like and checks tables
// against that declaration.
//
// A Table schema is an ordered list of Column schemas plus table-level checks.
// Each column has a DataType, a nullability flag and an ordered list of
// checks. Schemas are built with fluent builders and are immutable once
// built:
//
//	people := schema.NewTable("people").
//	    Strict().
//	    Column(
//	        schema.NewColumn("id", schema.Int()).Check(schema.Unique()),
//	        schema.NewColumn("age", schema.Int()).Check(schema.InRange(0, 120)),
//	        schema.NewColumn("email", schema.String()).Nullable().
//	            Check(schema.Contains(`@`)),
//	    ).
//	    Check(schema.RowCount(1, schema.Unbounded)).
//	    MustBuild()
//
//	rep := people.Validate(tbl)
//	if !rep.IsValid() {
//	    fmt.Println(rep.Summary())
//	}
//
// Validation never stops at the first problem: every violation becomes a
// report.Finding. Findings are ordered by presence problems first, then by
// column declaration order and row order, then by table-level check order.
//
// Invalid declarations (inverted ranges, empty sets, bad patterns, duplicate
// column names) are rejected by Build with a *DefinitionError.
package schema
