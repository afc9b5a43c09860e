package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula/pkg/report"
)

func contractReport(runID string) *report.Report {
	return report.New("people", 4, []report.Finding{
		{Column: "age", Row: 1, Kind: report.KindRange, Message: "value -1 not in range [0, 120]", Severity: report.SeverityError, Value: -1},
		{Column: "age", Row: 2, Kind: report.KindNullability, Message: "missing value in non-nullable column", Severity: report.SeverityError},
		{Row: report.NoRow, Kind: report.KindRowCount, Message: "table has 4 rows, want row count >= 10", Severity: report.SeverityWarning, Value: 4},
	}).WithRunID(runID)
}

// RunReportStoreContract runs a suite of tests to verify that a ReportStore implementation
// adheres to the defined interface contract.
func RunReportStoreContract(t *testing.T, store ReportStore) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rep := contractReport(runID)

		err := store.Save(ctx, runID, rep)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, runID, loaded.RunID())
		assert.Equal(t, "people", loaded.Schema())
		assert.Equal(t, 4, loaded.Rows())
		assert.False(t, loaded.IsValid())
		require.Equal(t, rep.Len(), loaded.Len())

		got := loaded.Findings()
		assert.Equal(t, report.KindRange, got[0].Kind)
		assert.Equal(t, report.SeverityWarning, got[2].Severity)
		// Persistent stores round-trip through JSON, so only the presence
		// of values is checked, not their Go type.
		assert.NotNil(t, got[0].Value)
		assert.Equal(t, rep.Summary(), loaded.Summary())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, runID, contractReport(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, ErrReportNotFound, "Load after Delete should return ErrReportNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, id1, contractReport(id1))
		_ = store.Save(ctx, id2, contractReport(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
