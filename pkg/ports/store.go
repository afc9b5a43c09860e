package ports

import (
	"context"

	"github.com/aretw0/tabula/pkg/report"
)

// ReportStore defines the interface for persisting validation reports.
// Reports are keyed by the run ID the engine stamps on them.
type ReportStore interface {
	// Save persists the report under the given run ID.
	Save(ctx context.Context, runID string, rep *report.Report) error

	// Load retrieves the report for a given run ID.
	// Returns ErrReportNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*report.Report, error)

	// Delete removes the report for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the run IDs of the stored reports.
	List(ctx context.Context) ([]string, error)
}
