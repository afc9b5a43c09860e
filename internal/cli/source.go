package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tabula/pkg/adapters/csv"
	sqlsource "github.com/aretw0/tabula/pkg/adapters/sql"
	"github.com/aretw0/tabula/pkg/frame"
)

// SourceOptions selects the table to validate. Exactly one of CSV, JSON or
// Query is set; "-" reads CSV or JSON from stdin.
type SourceOptions struct {
	CSV  string
	JSON string

	Driver string
	DSN    string
	Query  string

	NullValues []string
	Infer      bool
}

// LoadTable reads the table described by opts.
func LoadTable(ctx context.Context, opts SourceOptions, stdin io.Reader) (*frame.Frame, error) {
	set := 0
	for _, s := range []string{opts.CSV, opts.JSON, opts.Query} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --csv, --json or --query is required")
	}

	switch {
	case opts.CSV != "":
		var csvOpts []csv.Option
		if len(opts.NullValues) > 0 {
			csvOpts = append(csvOpts, csv.WithNullValues(opts.NullValues...))
		}
		if opts.Infer {
			csvOpts = append(csvOpts, csv.WithTypeInference())
		}
		if strings.EqualFold(filepath.Ext(opts.CSV), ".tsv") {
			csvOpts = append(csvOpts, csv.WithComma('\t'))
		}
		if opts.CSV == "-" {
			return csv.Read(stdin, csvOpts...)
		}
		return csv.ReadFile(opts.CSV, csvOpts...)

	case opts.JSON != "":
		var (
			data []byte
			err  error
		)
		if opts.JSON == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(opts.JSON)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read json: %w", err)
		}
		return frame.FromJSON(data)

	default:
		if opts.Driver == "" || opts.DSN == "" {
			return nil, fmt.Errorf("--query needs --driver and --dsn")
		}
		db, err := sql.Open(opts.Driver, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
		}
		defer db.Close()
		return sqlsource.Query(ctx, db, opts.Query)
	}
}
