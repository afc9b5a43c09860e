package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/tabula"
	tabulahttp "github.com/aretw0/tabula/pkg/adapters/http"
	"github.com/aretw0/tabula/pkg/adapters/memory"
	"github.com/aretw0/tabula/pkg/observability"
	"github.com/aretw0/tabula/pkg/schema"
)

func people() *schema.Table {
	return schema.NewTable("people").
		Column(
			schema.NewColumn("id", schema.Int()).Check(schema.Unique()),
			schema.NewColumn("age", schema.Int()).Check(schema.InRange(0, 120)),
		).
		MustBuild()
}

func newServer(t *testing.T, opts ...tabula.Option) (http.Handler, *memory.Store) {
	t.Helper()
	loader, err := memory.NewLoader(people())
	require.NoError(t, err)
	store := memory.NewStore()

	opts = append([]tabula.Option{tabula.WithSchemaLoader(loader), tabula.WithStore(store)}, opts...)
	return tabulahttp.NewHandler(tabula.New(opts...)), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type reportBody struct {
	Schema   string `json:"schema"`
	RunID    string `json:"run_id"`
	Rows     int    `json:"rows"`
	Valid    bool   `json:"valid"`
	Findings []struct {
		Column string `json:"column"`
		Row    int    `json:"row"`
		Kind   string `json:"kind"`
	} `json:"findings"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) reportBody {
	t.Helper()
	var rb reportBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rb))
	return rb
}

func TestHealth(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tabula.Version)
}

func TestListSchemas(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, "GET", "/v1/schemas", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"schemas":["people"]}`, w.Body.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKinds  []string
	}{
		{
			name:       "valid records",
			body:       `{"records":[{"id":1,"age":30},{"id":2,"age":40}]}`,
			wantStatus: http.StatusOK,
			wantKinds:  []string{},
		},
		{
			name:       "invalid records",
			body:       `{"records":[{"id":1,"age":-1},{"id":1,"age":40}]}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKinds:  []string{"unique", "range"},
		},
		{
			name:       "columns",
			body:       `{"columns":{"id":[1,2,3],"age":[1,2,300]}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKinds:  []string{"range"},
		},
		{
			name:       "missing column",
			body:       `{"columns":{"id":[1]}}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantKinds:  []string{"column_missing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newServer(t)

			w := do(t, h, "POST", "/v1/schemas/people/validate", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			rb := decode(t, w)
			assert.Equal(t, "people", rb.Schema)
			assert.NotEmpty(t, rb.RunID)
			assert.Equal(t, tt.wantStatus == http.StatusOK, rb.Valid)

			kinds := []string{}
			for _, f := range rb.Findings {
				kinds = append(kinds, f.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestValidate_FailFastEngine(t *testing.T) {
	h, _ := newServer(t, tabula.WithFailFast(true))

	w := do(t, h, "POST", "/v1/schemas/people/validate", `{"records":[{"id":1,"age":500}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, decode(t, w).Valid)
}

func TestValidate_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"malformed json", "/v1/schemas/people/validate", `{"records":`, http.StatusBadRequest},
		{"empty body", "/v1/schemas/people/validate", `{}`, http.StatusBadRequest},
		{"both shapes", "/v1/schemas/people/validate", `{"records":[],"columns":{}}`, http.StatusBadRequest},
		{"ragged columns", "/v1/schemas/people/validate", `{"columns":{"id":[1,2],"age":[1]}}`, http.StatusBadRequest},
		{"unknown order column", "/v1/schemas/people/validate", `{"columns":{"id":[1]},"order":["nope"]}`, http.StatusBadRequest},
		{"unknown schema", "/v1/schemas/nope/validate", `{"records":[]}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newServer(t)
			w := do(t, h, "POST", tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestGetReport(t *testing.T) {
	h, store := newServer(t)

	w := do(t, h, "POST", "/v1/schemas/people/validate", `{"records":[{"id":1,"age":-5}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	runID := decode(t, w).RunID

	runs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{runID}, runs)

	w = do(t, h, "GET", "/v1/reports/"+runID, "")
	require.Equal(t, http.StatusOK, w.Code)
	rb := decode(t, w)
	assert.Equal(t, runID, rb.RunID)
	assert.Len(t, rb.Findings, 1)

	w = do(t, h, "GET", "/v1/reports/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoStoreOrLoader(t *testing.T) {
	h := tabulahttp.NewHandler(tabula.New())

	assert.Equal(t, http.StatusNotImplemented, do(t, h, "GET", "/v1/schemas", "").Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, h, "GET", "/v1/reports/x", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	loader, err := memory.NewLoader(people())
	require.NoError(t, err)
	engine := tabula.New(tabula.WithSchemaLoader(loader), tabula.WithHooks(m.Hooks()))
	h := tabulahttp.NewHandler(engine, tabulahttp.WithMetrics(reg))

	do(t, h, "POST", "/v1/schemas/people/validate", `{"records":[{"id":1,"age":1}]}`)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tabula_validation_runs_total{result="valid",schema="people"} 1`)

	// Without a gatherer the route does not exist.
	h = tabulahttp.NewHandler(engine)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/metrics", "").Code)
}

func TestCORS(t *testing.T) {
	h := tabulahttp.NewHandler(tabula.New(), tabulahttp.WithAllowedOrigins("https://example.com"))

	req := httptest.NewRequest("OPTIONS", "/v1/schemas", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidateRequest_ColumnOrder(t *testing.T) {
	req := tabulahttp.ValidateRequest{
		Columns: map[string][]any{"b": {1}, "a": {2}},
	}
	f, err := req.Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.Columns())

	req.Order = []string{"b", "a"}
	f, err = req.Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, f.Columns())
}
