// Package cli wires configuration, adapters and the engine for cmd/tabula.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/internal/config"
	"github.com/aretw0/tabula/pkg/adapters/file"
	"github.com/aretw0/tabula/pkg/adapters/loam"
	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/adapters/redis"
	"github.com/aretw0/tabula/pkg/observability"
	"github.com/aretw0/tabula/pkg/persistence/middleware"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/registry"
)

// Runtime is a fully wired engine plus the resources it owns.
type Runtime struct {
	Engine   *tabula.Engine
	Loader   ports.SchemaLoader
	Store    ports.ReportStore
	Metrics  *observability.Metrics
	Registry *prometheus.Registry

	closers []func() error
}

// NewRuntime builds the engine described by cfg. Extra options are applied
// after the configured ones.
func NewRuntime(cfg *config.Config, logger *slog.Logger, reg *registry.Registry, extra ...tabula.Option) (*Runtime, error) {
	rt := &Runtime{Registry: prometheus.NewRegistry()}

	metrics, err := observability.NewMetrics(rt.Registry)
	if err != nil {
		return nil, err
	}
	rt.Metrics = metrics

	loader, err := NewLoader(cfg.SchemaDir, reg, logger)
	if err != nil {
		return nil, err
	}
	rt.Loader = loader

	store, closeStore, err := NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	rt.Store = store
	if closeStore != nil {
		rt.closers = append(rt.closers, closeStore)
	}

	opts := []tabula.Option{
		tabula.WithLogger(logger),
		tabula.WithFailFast(cfg.FailFast),
		tabula.WithParallelism(cfg.Parallelism),
		tabula.WithSchemaLoader(loader),
		tabula.WithHooks(tabula.ChainHooks(createDebugHooks(logger), metrics.Hooks())),
	}
	if store != nil {
		opts = append(opts, tabula.WithStore(store))
	}
	rt.Engine = tabula.New(append(opts, extra...)...)
	return rt, nil
}

// Close releases the resources of the runtime.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewStore creates the report store selected by c. The returned close
// function may be nil. StoreNone yields a nil store.
func NewStore(c config.StoreConfig) (ports.ReportStore, func() error, error) {
	var (
		store   ports.ReportStore
		closeFn func() error
	)
	switch c.Kind {
	case config.StoreNone:
		return nil, nil, nil
	case config.StoreMemory, "":
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(c.Path)
	case config.StoreRedis:
		s := redis.New(c.RedisAddr, c.RedisPassword, c.RedisDB,
			redis.WithTTL(c.TTL),
			redis.WithPrefix(c.Prefix),
		)
		store, closeFn = s, s.Close
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", c.Kind)
	}

	if len(c.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(c.Redact)
		if err != nil {
			if closeFn != nil {
				_ = closeFn()
			}
			return nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return store, closeFn, nil
}

// NewLoader opens the schema catalog in dir. A missing directory yields an
// empty catalog so single-file commands work anywhere.
func NewLoader(dir string, reg *registry.Registry, logger *slog.Logger) (ports.SchemaLoader, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("schema directory not found, catalog is empty", "dir", dir)
		return memory.NewLoader()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema directory %s is not a directory", dir)
	}
	return loam.Open(dir, reg)
}

func createDebugHooks(logger *slog.Logger) tabula.Hooks {
	return tabula.Hooks{
		OnValidationFinish: func(ctx context.Context, e *tabula.RunEvent) {
			if e.Report == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return
			}
			for _, f := range e.Report.Findings() {
				logger.Debug("finding",
					"run_id", e.RunID,
					"column", f.Column,
					"row", f.Row,
					"kind", f.Kind,
					"severity", f.Severity,
				)
			}
		},
	}
}
