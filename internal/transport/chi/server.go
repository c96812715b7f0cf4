// Package chi exposes search and operational endpoints over a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/request"
	"github.com/kailas-cloud/marketindex/internal/domain/search/result"
	"github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/metrics"
	healthuc "github.com/kailas-cloud/marketindex/internal/usecase/health"
)

// Error codes in ErrorResponse.Code.
const (
	CodeBadRequest   = "bad_request"
	CodeInvalidSort  = "invalid_sort"
	CodeInvalidQuery = "invalid_query"
	CodeUnknownType  = "unknown_type"
	CodeInternal     = "internal_error"
)

// Searcher runs a validated search request.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// SearchResponse is the body of GET /v1/search/{type}.
type SearchResponse struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Options tune the router.
type Options struct {
	// DefaultLimit applies when a request carries no limit parameter.
	DefaultLimit int
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	opts          Options
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger, opts Options) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = request.DefaultLimit
	}
	s := &Server{search: search, health: health, logger: logger, opts: opts}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownType, http.StatusNotFound, CodeUnknownType),
		sentinelHandler(domain.ErrInvalidSort, http.StatusBadRequest, CodeInvalidSort),
		sentinelHandler(domain.ErrQuery, http.StatusBadRequest, CodeInvalidQuery),
	}
	return s
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/v1/search/{type}", s.Search)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// Search handles GET /v1/search/{type}.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	t := indexable.Type(chi.URLParam(r, "type"))
	req, err := parseSearch(t, r.URL.Query(), s.opts.DefaultLimit)
	if err != nil {
		if !s.handleDomainError(w, r, err) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		}
		return
	}

	res, err := s.search.Search(r.Context(), req)
	if err != nil {
		if !s.handleDomainError(w, r, err) {
			logger.FromContext(r.Context()).Error("search failed", zap.String("type", t.String()), zap.Error(err))
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
		}
		return
	}

	ids := res.IDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{IDs: ids, Total: res.Total()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) bool {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			logger.FromContext(r.Context()).Debug("request rejected", zap.Error(err))
			return true
		}
	}
	return false
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The message is the error text: domain errors carry only caller-supplied input.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
