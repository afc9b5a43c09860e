// Package frame defines the minimal read-only view of tabular data that the
// validator consumes, plus an in-memory column-major implementation.
//
// A Table only needs to expose ordered column names, per-column ordered
// values and a way to test whether a cell is missing. Adapters for CSV files
// and SQL result sets live under pkg/adapters.
package frame
