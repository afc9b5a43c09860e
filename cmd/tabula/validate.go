package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tabula/internal/cli"
	"github.com/aretw0/tabula/pkg/report"
	"github.com/aretw0/tabula/pkg/schemafile"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		schemaFile string
		schemaName string
		src        cli.SourceOptions
		failFast   bool
		parallel   int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a table against a schema",
		Long: `Validates a CSV file, JSON records or a SQL query result against a schema
file (--schema) or a schema of the catalog (--name). Exits with status 1 when
the report has errors.`,
		Example: `  tabula validate --schema people.yaml --csv people.csv
  tabula validate --name people --json people.json --format markdown
  tabula validate --schema people.yaml --driver sqlite3 --dsn app.db --query "SELECT * FROM people"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (schemaFile == "") == (schemaName == "") {
				return fmt.Errorf("exactly one of --schema or --name is required")
			}
			if cmd.Flags().Changed("fail-fast") {
				a.cfg.FailFast = failFast
			}
			if cmd.Flags().Changed("parallel") {
				a.cfg.Parallelism = parallel
			}

			rt, err := cli.NewRuntime(a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := cmd.Context()
			tbl, err := cli.LoadTable(ctx, src, cmd.InOrStdin())
			if err != nil {
				return err
			}

			var rep *report.Report
			if schemaFile != "" {
				s, err := schemafile.LoadFile(schemaFile, nil)
				if err != nil {
					return err
				}
				rep, err = rt.Engine.Validate(ctx, s, tbl)
				if err != nil {
					return reportOrError(err, cmd, format)
				}
			} else {
				rep, err = rt.Engine.ValidateNamed(ctx, schemaName, tbl)
				if err != nil {
					return reportOrError(err, cmd, format)
				}
			}

			if err := cli.WriteReport(cmd.OutOrStdout(), rep, format); err != nil {
				return err
			}
			if !rep.IsValid() {
				return errInvalid
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&schemaFile, "schema", "", "Schema file (YAML or JSON)")
	f.StringVar(&schemaName, "name", "", "Schema name in the catalog")
	f.StringVar(&src.CSV, "csv", "", "CSV file to validate (- for stdin)")
	f.StringVar(&src.JSON, "json", "", "JSON array of records to validate (- for stdin)")
	f.StringVar(&src.Driver, "driver", "", "database/sql driver: sqlite3, pgx or duckdb")
	f.StringVar(&src.DSN, "dsn", "", "Data source name for --driver")
	f.StringVar(&src.Query, "query", "", "SQL query whose result is validated")
	f.StringSliceVar(&src.NullValues, "null", nil, "Extra CSV cell values read as missing")
	f.BoolVar(&src.Infer, "infer", true, "Infer int, float and bool values in CSV cells")
	f.BoolVar(&failFast, "fail-fast", false, "Return an error as soon as the report is invalid")
	f.IntVar(&parallel, "parallel", 1, "Columns validated concurrently")
	f.StringVarP(&format, "format", "o", cli.FormatText, "Output format: text, json or markdown")

	return cmd
}

// reportOrError prints the report carried by a fail-fast error.
func reportOrError(err error, cmd *cobra.Command, format string) error {
	rep, ok := report.FromError(err)
	if !ok {
		return err
	}
	if werr := cli.WriteReport(cmd.OutOrStdout(), rep, format); werr != nil {
		return werr
	}
	return errInvalid
}
