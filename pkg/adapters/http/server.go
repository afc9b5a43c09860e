package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/pkg/frame"
	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/report"
)

// DefaultMaxBodyBytes caps validation request bodies.
const DefaultMaxBodyBytes = 32 << 20

// Engine is the validation surface the HTTP API needs.
// *tabula.Engine implements it.
type Engine interface {
	ValidateNamed(ctx context.Context, name string, t frame.Table) (*report.Report, error)
	Schemas(ctx context.Context) ([]string, error)
	Report(ctx context.Context, runID string) (*report.Report, error)
}

var _ Engine = (*tabula.Engine)(nil)

// Server serves the validation API.
type Server struct {
	engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	origins  []string
	maxBody  int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithAllowedOrigins sets the CORS origins. Defaults to "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithMaxBodyBytes caps the size of validation request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:  engine,
		logger:  slog.New(slog.DiscardHandler),
		origins: []string{"*"},
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/schemas", s.ListSchemas)
		r.Post("/schemas/{name}/validate", s.Validate)
		r.Get("/reports/{id}", s.GetReport)
	})
	return r
}

// ValidateRequest is the body of POST /v1/schemas/{name}/validate.
// Exactly one of Records (row objects) or Columns (column arrays) is set.
type ValidateRequest struct {
	Records []map[string]any `json:"records,omitempty"`
	Columns map[string][]any `json:"columns,omitempty"`
	// Order fixes the column order of Columns. Defaults to sorted names.
	Order []string `json:"order,omitempty"`
}

// Table converts the request into a frame.Table.
func (req *ValidateRequest) Table() (*frame.Frame, error) {
	switch {
	case req.Records != nil && req.Columns != nil:
		return nil, fmt.Errorf("set either records or columns, not both")
	case req.Records != nil:
		for _, rec := range req.Records {
			for k, v := range rec {
				rec[k] = frame.NormalizeNumber(v)
			}
		}
		return frame.FromRecords(req.Order, req.Records)
	case req.Columns != nil:
		order := req.Order
		if len(order) == 0 {
			for name := range req.Columns {
				order = append(order, name)
			}
			sort.Strings(order)
		}
		series := make([]frame.Series, 0, len(order))
		for _, name := range order {
			vals, ok := req.Columns[name]
			if !ok {
				return nil, fmt.Errorf("order names unknown column %q", name)
			}
			for i, v := range vals {
				vals[i] = frame.NormalizeNumber(v)
			}
			series = append(series, frame.Series{Name: name, Values: vals})
		}
		return frame.New(series...)
	default:
		return nil, fmt.Errorf("records or columns are required")
	}
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "tabula-http",
		"version": strings.TrimSpace(tabula.Version),
	})
}

// ListSchemas handles GET /v1/schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.Schemas(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"schemas": names})
}

// Validate handles POST /v1/schemas/{name}/validate. It answers 200 with a
// valid report and 422 with an invalid one.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body ValidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid request body: %v", err)))
		s.logger.Warn("validate: invalid request body", "schema", name, "error", err)
		return
	}
	tbl, err := body.Table()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	rep, err := s.engine.ValidateNamed(r.Context(), name, tbl)
	if err != nil {
		// A fail-fast engine returns the invalid report inside the error.
		if failed, ok := report.FromError(err); ok {
			rep = failed
		} else {
			s.writeError(w, r, err)
			return
		}
	}

	status := http.StatusOK
	if !rep.IsValid() {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, rep)
}

// GetReport handles GET /v1/reports/{id}.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrSchemaNotFound), errors.Is(err, ports.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, tabula.ErrNoLoader), errors.Is(err, tabula.ErrNoStore):
		status = http.StatusNotImplemented
	case errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()), "error", err)
	}
	s.writeJSON(w, status, errorBody(err.Error()))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
