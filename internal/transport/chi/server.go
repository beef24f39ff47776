// Package chi exposes the document catalog over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/domain"
	domdoc "github.com/kailas-cloud/srcdex/internal/domain/document"
	"github.com/kailas-cloud/srcdex/internal/domain/search/order"
	"github.com/kailas-cloud/srcdex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/srcdex/internal/logger"
	"github.com/kailas-cloud/srcdex/internal/metrics"
	healthuc "github.com/kailas-cloud/srcdex/internal/usecase/health"
)

// Catalog is the read and cleanup surface of the document table.
type Catalog interface {
	Search(ctx context.Context, opts request.Options) ([]domdoc.Document, error)
	GetShortpath(ctx context.Context, shortpath string) (domdoc.Document, error)
	GetShortpathBelow(ctx context.Context, shortpath string) ([]domdoc.Document, error)
	Cleanup(ctx context.Context, onEach func(domdoc.Document)) (int, error)
	CleanupPackageName(ctx context.Context, pkg string, onEach func(domdoc.Document)) (int, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog API.
type Server struct {
	catalog       Catalog
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(catalog Catalog, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrInvalidShortpath, http.StatusBadRequest, ErrorCodeInvalidShortpath),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrEncoding, http.StatusUnprocessableEntity, ErrorCodeEncodingError),
		sentinelHandler(domain.ErrIO, http.StatusInternalServerError, ErrorCodeIOError),
	}
	return s
}

// Handler returns the router with the standard middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())
	s.Routes(r)
	return r
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/search", s.SearchDocuments)
	r.Get("/files/*", s.GetFile)
	r.Get("/tree", s.GetTree)
	r.Get("/tree/*", s.GetTree)
	r.Post("/cleanup", s.Cleanup)
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

// SearchDocuments handles GET /search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}
	opts := searchOptionsFromParams(&params)

	docs, err := s.catalog.Search(r.Context(), opts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentListResponse{
		Items:  documentsToAPI(docs, derefBool(params.Content)),
		Offset: opts.Offset,
		Limit:  opts.Limit,
		Count:  len(docs),
	})
}

// GetFile handles GET /files/{shortpath}.
func (s *Server) GetFile(w http.ResponseWriter, r *http.Request) {
	doc, err := s.catalog.GetShortpath(r.Context(), wildcard(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToAPI(&doc, true))
}

// GetTree handles GET /tree and GET /tree/{shortpath}.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	docs, err := s.catalog.GetShortpathBelow(r.Context(), wildcard(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{
		Items: documentsToAPI(docs, false),
		Count: len(docs),
	})
}

// Cleanup handles POST /cleanup[?package=name].
func (s *Server) Cleanup(w http.ResponseWriter, r *http.Request) {
	var pkg *string
	if err := runtime.BindQueryParameter("form", true, false, "package", r.URL.Query(), &pkg); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid query parameter: "+err.Error())
		return
	}

	resp := CleanupResponse{Paths: []string{}}
	collect := func(d domdoc.Document) { resp.Paths = append(resp.Paths, d.Path()) }

	var err error
	if pkg != nil && *pkg != "" {
		resp.Removed, err = s.catalog.CleanupPackageName(r.Context(), *pkg, collect)
	} else {
		resp.Removed, err = s.catalog.Cleanup(r.Context(), collect)
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	})
}

func bindSearchParams(q url.Values) (SearchParams, error) {
	var p SearchParams
	lists := []struct {
		name string
		dest **[]string
	}{
		{"pattern", &p.Pattern},
		{"keyword", &p.Keyword},
		{"package", &p.Package},
		{"path", &p.Path},
		{"restpath", &p.Restpath},
		{"suffix", &p.Suffix},
	}
	for _, l := range lists {
		if err := runtime.BindQueryParameter("form", true, false, l.name, q, l.dest); err != nil {
			return p, err
		}
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", q, &p.Offset); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &p.Limit); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "order", q, &p.Order); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "content", q, &p.Content); err != nil {
		return p, err
	}
	return p, nil
}

func searchOptionsFromParams(p *SearchParams) request.Options {
	opts := request.Options{
		Patterns:  derefStrings(p.Pattern),
		Keywords:  derefStrings(p.Keyword),
		Packages:  derefStrings(p.Package),
		Paths:     derefStrings(p.Path),
		Restpaths: derefStrings(p.Restpath),
		Suffixes:  derefStrings(p.Suffix),
		Offset:    derefInt(p.Offset),
		Limit:     derefInt(p.Limit),
	}
	if p.Order != nil {
		opts.Order = order.Mode(*p.Order)
	}
	return opts
}

// wildcard returns the decoded shortpath captured by a trailing "/*".
func wildcard(r *http.Request) string {
	raw := chi.URLParam(r, "*")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

func derefStrings(p *[]string) []string {
	if p == nil {
		return nil
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns the sentinel text, never the wrapped details.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidShortpath,
		domain.ErrInvalidRequest,
		domain.ErrEncoding,
		domain.ErrIO,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
