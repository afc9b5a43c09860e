package tabula

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/report"
	"github.com/aretw0/tabula/pkg/schema"
)

// ErrNoStore is returned by Report when the engine was built without a ReportStore.
var ErrNoStore = errors.New("no report store configured")

// ErrNoLoader is returned by named lookups when the engine was built without a SchemaLoader.
var ErrNoLoader = errors.New("no schema loader configured")

// Engine is the high-level entry point for validating tables.
// It runs a schema over a table and wraps the outcome: run IDs, logging,
// lifecycle hooks, report persistence and the fail-fast error shape.
// An Engine is safe for concurrent use.
type Engine struct {
	logger      *slog.Logger
	failFast    bool
	parallelism int
	hooks       Hooks
	store       ports.ReportStore
	loader      ports.SchemaLoader
	newRunID    func() string
	now         func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithFailFast makes Validate return a *report.AggregateError instead of a
// report whenever the report holds error findings.
func WithFailFast(enabled bool) Option {
	return func(e *Engine) {
		e.failFast = enabled
	}
}

// WithParallelism validates up to n columns concurrently.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore persists every report under its run ID.
func WithStore(store ports.ReportStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithSchemaLoader injects the catalog used by ValidateNamed.
func WithSchemaLoader(loader ports.SchemaLoader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// New initializes a new Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		parallelism: 1,
		newRunID:    uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

// Validate checks t against s.
//
// Findings never produce an error: the returned report lists them all. The
// only errors are a cancelled context, nil arguments, and, with
// WithFailFast, a *report.AggregateError carrying the invalid report.
func (e *Engine) Validate(ctx context.Context, s *schema.Table, t frame.Table) (*report.Report, error) {
	if s == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if t == nil {
		return nil, fmt.Errorf("table is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ev := &RunEvent{
		Timestamp: e.now(),
		RunID:     e.newRunID(),
		Schema:    s.Name(),
		Rows:      t.Len(),
	}
	logger := e.logger.With("schema", ev.Schema, "run_id", ev.RunID)
	logger.Debug("validation started", "rows", ev.Rows, "columns", len(t.Columns()))
	if e.hooks.OnValidationStart != nil {
		e.hooks.OnValidationStart(ctx, ev)
	}

	rep := s.Validate(t, schema.WithParallelism(e.parallelism)).WithRunID(ev.RunID)

	ev.Duration = e.now().Sub(ev.Timestamp)
	ev.Report = rep

	if e.store != nil {
		if err := e.store.Save(ctx, ev.RunID, rep); err != nil {
			logger.Warn("failed to store report", "error", err)
		}
	}

	logger.Info("validation finished",
		"rows", rep.Rows(),
		"findings", rep.Len(),
		"errors", rep.ErrorCount(),
		"warnings", rep.WarningCount(),
		"valid", rep.IsValid(),
		"duration", ev.Duration,
	)
	if e.hooks.OnValidationFinish != nil {
		e.hooks.OnValidationFinish(ctx, ev)
	}

	if e.failFast && !rep.IsValid() {
		return nil, &report.AggregateError{Report: rep}
	}
	return rep, nil
}

// ValidateNamed resolves the schema through the configured SchemaLoader and
// validates t against it.
func (e *Engine) ValidateNamed(ctx context.Context, name string, t frame.Table) (*report.Report, error) {
	s, err := e.Schema(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.Validate(ctx, s, t)
}

// Schema resolves a schema by name through the configured SchemaLoader.
func (e *Engine) Schema(ctx context.Context, name string) (*schema.Table, error) {
	if e.loader == nil {
		return nil, ErrNoLoader
	}
	return e.loader.GetSchema(ctx, name)
}

// Schemas lists the schemas of the configured SchemaLoader.
func (e *Engine) Schemas(ctx context.Context) ([]string, error) {
	if e.loader == nil {
		return nil, ErrNoLoader
	}
	return e.loader.ListSchemas(ctx)
}

// Report loads a stored report by run ID.
func (e *Engine) Report(ctx context.Context, runID string) (*report.Report, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.Load(ctx, runID)
}
