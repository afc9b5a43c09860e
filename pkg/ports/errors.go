package ports

import "errors"

// ErrReportNotFound is returned when a run ID cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrSchemaNotFound is returned when a schema name cannot be resolved.
var ErrSchemaNotFound = errors.New("schema not found")
