package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula/internal/config"
	"github.com/aretw0/tabula/internal/logging"
	"github.com/aretw0/tabula/pkg/adapters/file"
	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/adapters/redis"
	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/ports"
)

const peopleYAML = `name: people
columns:
  - name: id
    type: int
    checks:
      - kind: unique
  - name: age
    type: int
    checks:
      - kind: range
        min: 0
        max: 120
`

func schemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "people.yaml"), []byte(peopleYAML), 0644))
	return dir
}

func TestNewStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.StoreConfig
		check   func(t *testing.T, s ports.ReportStore)
		wantErr bool
	}{
		{"none", config.StoreConfig{Kind: config.StoreNone}, func(t *testing.T, s ports.ReportStore) { assert.Nil(t, s) }, false},
		{"memory", config.StoreConfig{Kind: config.StoreMemory}, func(t *testing.T, s ports.ReportStore) { assert.IsType(t, &memory.Store{}, s) }, false},
		{"file", config.StoreConfig{Kind: config.StoreFile, Path: t.TempDir()}, func(t *testing.T, s ports.ReportStore) { assert.IsType(t, &file.Store{}, s) }, false},
		{"redis", config.StoreConfig{Kind: config.StoreRedis, RedisAddr: mr.Addr(), Prefix: "t:"}, func(t *testing.T, s ports.ReportStore) {
			assert.IsType(t, &redis.Store{}, s)
			ports.RunReportStoreContract(t, s)
		}, false},
		{"redacted", config.StoreConfig{Kind: config.StoreMemory, Redact: []string{"email"}}, func(t *testing.T, s ports.ReportStore) {
			assert.NotNil(t, s)
			_, plain := s.(*memory.Store)
			assert.False(t, plain, "redaction wraps the store")
			ports.RunReportStoreContract(t, s)
		}, false},
		{"bad redact pattern", config.StoreConfig{Kind: config.StoreMemory, Redact: []string{"("}}, nil, true},
		{"unknown", config.StoreConfig{Kind: "s3"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := NewStore(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
			if closeFn != nil {
				assert.NoError(t, closeFn())
			}
		})
	}
}

func TestNewLoader(t *testing.T) {
	logger := logging.NewNop()
	ctx := context.Background()

	loader, err := NewLoader(schemaDir(t), nil, logger)
	require.NoError(t, err)
	names, err := loader.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, names)

	loader, err = NewLoader(filepath.Join(t.TempDir(), "missing"), nil, logger)
	require.NoError(t, err)
	names, err = loader.ListSchemas(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	notDir := filepath.Join(t.TempDir(), "file.yaml")
	require.NoError(t, os.WriteFile(notDir, []byte(peopleYAML), 0644))
	_, err = NewLoader(notDir, nil, logger)
	assert.Error(t, err)
}

func TestNewRuntime(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.SchemaDir = schemaDir(t)

	rt, err := NewRuntime(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	defer rt.Close()

	ctx := context.Background()
	tbl := frame.MustNew(
		frame.Series{Name: "id", Values: []any{1, 1}},
		frame.Series{Name: "age", Values: []any{30, 200}},
	)
	rep, err := rt.Engine.ValidateNamed(ctx, "people", tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Len())

	stored, err := rt.Engine.Report(ctx, rep.RunID())
	require.NoError(t, err)
	assert.Equal(t, rep.Summary(), stored.Summary())

	n, err := testutil.GatherAndCount(rt.Registry, "tabula_validation_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewRuntime_FailFast(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.SchemaDir = schemaDir(t)
	cfg.FailFast = true
	cfg.Store.Kind = config.StoreNone

	rt, err := NewRuntime(cfg, logging.NewNop(), nil)
	require.NoError(t, err)
	assert.Nil(t, rt.Store)

	tbl := frame.MustNew(
		frame.Series{Name: "id", Values: []any{1}},
		frame.Series{Name: "age", Values: []any{-1}},
	)
	_, err = rt.Engine.ValidateNamed(context.Background(), "people", tbl)
	assert.Error(t, err)
	assert.NoError(t, rt.Close())
}
