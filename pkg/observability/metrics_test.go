package observability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/observability"
	"github.com/aretw0/tabula/pkg/schema"
)

func TestMetrics_RecordsRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	engine := tabula.New(tabula.WithHooks(m.Hooks()))
	s := schema.NewTable("people").
		Column(schema.NewColumn("age", schema.Int()).Check(schema.InRange(0, 120))).
		MustBuild()
	ctx := context.Background()

	_, err = engine.Validate(ctx, s, frame.MustNew(frame.Series{Name: "age", Values: []any{25, -1, nil, 130}}))
	require.NoError(t, err)
	_, err = engine.Validate(ctx, s, frame.MustNew(frame.Series{Name: "age", Values: []any{1, 2}}))
	require.NoError(t, err)

	expected := `
# HELP tabula_findings_total Total number of findings reported
# TYPE tabula_findings_total counter
tabula_findings_total{kind="not_null",schema="people",severity="error"} 1
tabula_findings_total{kind="range",schema="people",severity="error"} 2
# HELP tabula_rows_validated_total Total number of rows validated
# TYPE tabula_rows_validated_total counter
tabula_rows_validated_total{schema="people"} 6
# HELP tabula_validation_runs_total Total number of validation runs by outcome
# TYPE tabula_validation_runs_total counter
tabula_validation_runs_total{result="invalid",schema="people"} 1
tabula_validation_runs_total{result="valid",schema="people"} 1
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"tabula_findings_total", "tabula_rows_validated_total", "tabula_validation_runs_total")
	assert.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "tabula_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(nil)
	assert.NoError(t, err)
}

func TestMetrics_IgnoresIncompleteEvents(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.Observe(nil)
		m.Observe(&tabula.RunEvent{Schema: "x"})
	})
}
