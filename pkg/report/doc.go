// Package report holds the result types of a validation run.
//
// A Report is an immutable, ordered collection of Findings. Each Finding
// carries its location (column and row, either of which may be absent), the
// kind of check that failed, a message and a severity. Reports are valid when
// they contain no error-severity finding; warnings are informational.
//
// When the engine runs in fail-fast mode the report is delivered wrapped in an
// AggregateError instead:
//
//	rep, err := eng.Validate(ctx, s, tbl)
//	if rep, ok := report.FromError(err); ok {
//	    fmt.Println(rep.Summary())
//	}
package report
