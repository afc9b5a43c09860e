package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "schemas", cfg.SchemaDir)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.False(t, cfg.FailFast)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr())
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, time.Duration(0), cfg.Store.TTL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TABULA_LOG_LEVEL", "debug")
	t.Setenv("TABULA_PARALLELISM", "4")
	t.Setenv("TABULA_STORE", "redis")
	t.Setenv("TABULA_STORE_TTL", "1h")
	t.Setenv("TABULA_REDIS_PASSWORD", "s3cret")
	t.Setenv("TABULA_HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TABULA_STORE_REDACT", "email,^ssn$")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, StoreRedis, cfg.Store.Kind)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "s3cret", cfg.Store.RedisPassword)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, []string{"email", "^ssn$"}, cfg.Store.Redact)
	assert.Equal(t, "DEBUG", cfg.Level().String())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabula.yaml")
	err := os.WriteFile(path, []byte(`
log_level: warn
schema_dir: ./catalog
fail_fast: true
http:
  port: 9090
store:
  kind: file
  path: /tmp/reports
`), 0644)
	require.NoError(t, err)

	t.Setenv("TABULA_HTTP_PORT", "9999")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./catalog", cfg.SchemaDir)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, StoreFile, cfg.Store.Kind)
	assert.Equal(t, "/tmp/reports", cfg.Store.Path)
	// Environment wins over the file.
	assert.Equal(t, 9999, cfg.HTTP.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"log level", map[string]string{"TABULA_LOG_LEVEL": "loud"}},
		{"parallelism", map[string]string{"TABULA_PARALLELISM": "0"}},
		{"store kind", map[string]string{"TABULA_STORE": "s3"}},
		{"port", map[string]string{"TABULA_HTTP_PORT": "70000"}},
		{"ttl", map[string]string{"TABULA_STORE_TTL": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
