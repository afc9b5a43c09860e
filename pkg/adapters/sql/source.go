// Package sql materialises database/sql query results into a frame.Table.
// Any registered driver works; NULL becomes a missing cell.
package sql

import (
	"context"
	stdsql "database/sql"
	"fmt"

	"github.com/aretw0/tabula/pkg/frame"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*stdsql.Rows, error)
}

// Query runs query and reads every row into a Frame.
func Query(ctx context.Context, db Querier, query string, args ...any) (*frame.Frame, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	return FromRows(rows)
}

// FromRows reads the remaining rows into a Frame. It does not close rows.
func FromRows(rows *stdsql.Rows) (*frame.Frame, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	cols := make([][]any, len(names))
	dest := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range dest {
			cols[i] = append(cols[i], normalize(v))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	series := make([]frame.Series, len(names))
	for i, name := range names {
		series[i] = frame.Series{Name: name, Values: cols[i]}
	}
	return frame.New(series...)
}

// normalize maps driver values onto the types the schema package checks.
// Drivers reuse byte buffers between rows, so bytes are copied into strings.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case float32:
		return float64(x)
	}
	return v
}
