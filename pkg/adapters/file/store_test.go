package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula/pkg/adapters/file"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/report"
)

var _ ports.ReportStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunReportStoreContract(t, store)
}

func TestFileStore_Overwrite(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	first := report.New("people", 1, nil).WithRunID("run-1")
	second := report.New("people", 2, []report.Finding{
		{Column: "age", Row: 0, Kind: report.KindRange, Message: "bad", Severity: report.SeverityError},
	}).WithRunID("run-1")

	require.NoError(t, store.Save(ctx, "run-1", first))
	require.NoError(t, store.Save(ctx, "run-1", second))

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Rows())
	assert.False(t, loaded.IsValid())

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", report.New("s", 0, nil)))
	require.NoError(t, store.Save(ctx, "a", report.New("s", 0, nil)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-c-123.json"), []byte("{}"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, runs)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "does-not-exist"))

	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileStore_InvalidRunIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, store.Save(ctx, id, report.New("s", 0, nil)), "Save(%q)", id)
		_, err := store.Load(ctx, id)
		assert.Error(t, err, "Load(%q)", id)
		assert.NotErrorIs(t, err, ports.ErrReportNotFound)
	}
}

func TestFileStore_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".tabula", "reports"), file.New("").BasePath)
}
