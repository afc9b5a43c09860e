package frame

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Table is the read-only view of tabular data consumed by the validator.
// It does not care whether the data came from a file, a database or memory.
type Table interface {
	// Columns returns the column names in table order.
	Columns() []string
	// Column returns the values of the named column in row order.
	Column(name string) ([]any, bool)
	// IsMissing reports whether the cell at (column, row) holds no value.
	IsMissing(column string, row int) bool
	// Len returns the number of rows.
	Len() int
}

// Series is a named column of values used to build a Frame.
type Series struct {
	Name   string
	Values []any
}

// Frame is an in-memory, column-major Table.
type Frame struct {
	names []string
	cols  map[string][]any
	rows  int
}

var _ Table = (*Frame)(nil)

// New builds a Frame from the given columns.
// All columns must have the same length and distinct, non-empty names.
func New(series ...Series) (*Frame, error) {
	f := &Frame{
		names: make([]string, 0, len(series)),
		cols:  make(map[string][]any, len(series)),
	}
	for i, s := range series {
		if s.Name == "" {
			return nil, fmt.Errorf("column %d: name is empty", i)
		}
		if _, dup := f.cols[s.Name]; dup {
			return nil, fmt.Errorf("column %q: duplicate name", s.Name)
		}
		if i == 0 {
			f.rows = len(s.Values)
		} else if len(s.Values) != f.rows {
			return nil, fmt.Errorf("column %q: has %d rows, want %d", s.Name, len(s.Values), f.rows)
		}
		vals := make([]any, len(s.Values))
		copy(vals, s.Values)
		f.names = append(f.names, s.Name)
		f.cols[s.Name] = vals
	}
	return f, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(series ...Series) *Frame {
	f, err := New(series...)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRecords builds a Frame from row-oriented records.
// If columns is empty the union of record keys is used, sorted by name.
// A key absent from a record becomes a missing cell.
func FromRecords(columns []string, records []map[string]any) (*Frame, error) {
	if len(columns) == 0 {
		seen := make(map[string]bool)
		for _, rec := range records {
			for k := range rec {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
		sort.Strings(columns)
	}

	series := make([]Series, len(columns))
	for i, name := range columns {
		vals := make([]any, len(records))
		for r, rec := range records {
			vals[r] = rec[name]
		}
		series[i] = Series{Name: name, Values: vals}
	}
	return New(series...)
}

// FromJSON decodes a JSON array of objects into a Frame.
// Numbers become int64 when integral and float64 otherwise.
func FromJSON(data []byte) (*Frame, error) {
	var records []map[string]any
	if err := decodeNumbers(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	for _, rec := range records {
		for k, v := range rec {
			rec[k] = NormalizeNumber(v)
		}
	}
	return FromRecords(nil, records)
}

// Columns implements Table.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Column implements Table. The returned slice is a copy.
func (f *Frame) Column(name string) ([]any, bool) {
	vals, ok := f.cols[name]
	if !ok {
		return nil, false
	}
	out := make([]any, len(vals))
	copy(out, vals)
	return out, true
}

// IsMissing implements Table. Out of range rows and unknown columns are missing.
func (f *Frame) IsMissing(column string, row int) bool {
	vals, ok := f.cols[column]
	if !ok || row < 0 || row >= len(vals) {
		return true
	}
	return IsMissingValue(vals[row])
}

// Len implements Table.
func (f *Frame) Len() int { return f.rows }

// IsMissingValue reports whether v represents an absent cell: nil or NaN.
func IsMissingValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// NormalizeNumber converts json.Number into int64 or float64.
// Other values are returned unchanged.
func NormalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
