package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tabula"
)

// Metrics records validation runs as Prometheus metrics.
type Metrics struct {
	runs     *prometheus.CounterVec
	findings *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_validation_runs_total",
				Help: "Total number of validation runs by outcome",
			},
			[]string{"schema", "result"},
		),
		findings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_findings_total",
				Help: "Total number of findings reported",
			},
			[]string{"schema", "kind", "severity"},
		),
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tabula_rows_validated_total",
				Help: "Total number of rows validated",
			},
			[]string{"schema"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tabula_validation_duration_seconds",
				Help:    "Duration of validation runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"schema"},
		),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.runs, m.findings, m.rows, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register metrics: %w", err)
			}
		}
	}
	return m, nil
}

// Hooks returns engine hooks feeding the metrics.
func (m *Metrics) Hooks() tabula.Hooks {
	return tabula.Hooks{
		OnValidationFinish: func(_ context.Context, ev *tabula.RunEvent) {
			m.Observe(ev)
		},
	}
}

// Observe records a finished run.
func (m *Metrics) Observe(ev *tabula.RunEvent) {
	if ev == nil || ev.Report == nil {
		return
	}
	rep := ev.Report

	result := "valid"
	if !rep.IsValid() {
		result = "invalid"
	}
	m.runs.WithLabelValues(ev.Schema, result).Inc()
	m.rows.WithLabelValues(ev.Schema).Add(float64(rep.Rows()))
	m.duration.WithLabelValues(ev.Schema).Observe(ev.Duration.Seconds())

	for _, f := range rep.Findings() {
		m.findings.WithLabelValues(ev.Schema, string(f.Kind), string(f.Severity)).Inc()
	}
}
