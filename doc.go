/*
Package tabula validates tabular data against declared schemas.

A caller declares expected column types, value constraints and structural
invariants for a table, then validates concrete tables against that schema
and receives a structured report of every violation. Validation never stops
at the first problem.

# Concept

The schema (package schema) describes columns and checks. The data is any
frame.Table: an in-memory frame, a CSV file, or the result of a SQL query.
The Engine runs the schema over the table and returns a report.Report whose
findings are ordered deterministically: presence problems first, then
per-column findings in declaration and row order, then table-level findings.

# Usage

	people := schema.NewTable("people").
		Column(
			schema.NewColumn("id", schema.Int()).Check(schema.Unique()),
			schema.NewColumn("age", schema.Int()).Check(schema.InRange(0, 120)),
		).
		MustBuild()

	engine := tabula.New(tabula.WithLogger(logger))
	rep, err := engine.Validate(ctx, people, tbl)
	if err != nil {
		return err
	}
	if !rep.IsValid() {
		fmt.Println(rep.Summary())
	}

With WithFailFast(true) an invalid report is returned as a
*report.AggregateError instead, which is convenient in pipelines that treat
bad data as an error.

# Adapters

Schemas can be loaded by name from a ports.SchemaLoader (in-memory or Loam
repositories of YAML/JSON/Markdown documents), and reports persisted to a
ports.ReportStore (memory, file or Redis). The tabula command exposes the
engine as a CLI, an HTTP API and an MCP tool server.
*/
package tabula
