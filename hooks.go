package tabula

import (
	"context"
	"time"

	"github.com/aretw0/tabula/pkg/report"
)

// RunEvent describes one validation run.
type RunEvent struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Schema    string    `json:"schema"`
	Rows      int       `json:"rows"`

	// Set on finish only.
	Duration time.Duration  `json:"duration,omitempty"`
	Report   *report.Report `json:"report,omitempty"`
}

// Hooks defines callbacks for engine observability.
// Callbacks run synchronously on the validating goroutine.
type Hooks struct {
	OnValidationStart  func(context.Context, *RunEvent)
	OnValidationFinish func(context.Context, *RunEvent)
}

// ChainHooks combines several Hooks; callbacks run in the order given.
func ChainHooks(hooks ...Hooks) Hooks {
	var out Hooks
	for _, h := range hooks {
		out.OnValidationStart = chain(out.OnValidationStart, h.OnValidationStart)
		out.OnValidationFinish = chain(out.OnValidationFinish, h.OnValidationFinish)
	}
	return out
}

func chain(a, b func(context.Context, *RunEvent)) func(context.Context, *RunEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, ev *RunEvent) {
		a(ctx, ev)
		b(ctx, ev)
	}
}
