// Package chi exposes the search service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/domain"
)

// SearchService is the search use case surface the transport consumes.
type SearchService interface {
	HybridSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error)
	SemanticSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error)
	LexicalSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error)
	SearchWithPriceFilter(ctx context.Context, query string, limit int, maxPrice float64) (domain.SearchResponse, error)
	Stats() cache.Stats
}

// IndexAdmin rebuilds the vector index on demand.
type IndexAdmin interface {
	Rebuild(ctx context.Context) (int, error)
}

// IndexInfo reports live index state for stats and health.
type IndexInfo interface {
	Size() int
	Loaded() bool
}

// Pinger checks document store liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorCode is the machine-readable error identifier in error bodies.
type errorCode string

const (
	codeBadRequest      errorCode = "bad_request"
	codeEmptyQuery      errorCode = "empty_query"
	codeSearchDegraded  errorCode = "search_degraded"
	codeIndexNotLoaded  errorCode = "index_not_loaded"
	codeProviderError   errorCode = "embedding_provider_error"
	codeRetrievalFailed errorCode = "retrieval_failed"
	codeInternalError   errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes the HTTP API.
type Server struct {
	search        SearchService
	indexer       IndexAdmin
	index         IndexInfo
	store         Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, indexer IndexAdmin, index IndexInfo, store Pinger, logger *zap.Logger) *Server {
	s := &Server{
		search:  search,
		indexer: indexer,
		index:   index,
		store:   store,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeEmptyQuery),
		sentinelHandler(domain.ErrSearchDegraded, http.StatusServiceUnavailable, codeSearchDegraded),
		sentinelHandler(domain.ErrIndexNotLoaded, http.StatusServiceUnavailable, codeIndexNotLoaded),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrRetrieval, http.StatusBadGateway, codeRetrievalFailed),
	}
	return s
}

// Routes mounts all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/semantic", s.handleSemanticSearch)
		r.Post("/search/lexical", s.handleLexicalSearch)
		r.Post("/search/price", s.handlePriceSearch)
		r.Post("/admin/reindex", s.handleReindex)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type priceSearchRequest struct {
	Query    string  `json:"query"`
	Limit    int     `json:"limit"`
	MaxPrice float64 `json:"max_price"`
}

// handleSearch handles POST /v1/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.search.HybridSearch)
}

// handleSemanticSearch handles POST /v1/search/semantic.
func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.search.SemanticSearch)
}

// handleLexicalSearch handles POST /v1/search/lexical.
func (s *Server) handleLexicalSearch(w http.ResponseWriter, r *http.Request) {
	s.runSearch(w, r, s.search.LexicalSearch)
}

func (s *Server) runSearch(
	w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, query string, limit int) (domain.SearchResponse, error),
) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := fn(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handlePriceSearch handles POST /v1/search/price.
func (s *Server) handlePriceSearch(w http.ResponseWriter, r *http.Request) {
	var req priceSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.MaxPrice <= 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "max_price must be positive")
		return
	}

	resp, err := s.search.SearchWithPriceFilter(r.Context(), req.Query, req.Limit, req.MaxPrice)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type reindexResponse struct {
	IndexedListings int `json:"indexed_listings"`
}

// handleReindex handles POST /v1/admin/reindex.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.indexer.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{IndexedListings: count})
}

type statsResponse struct {
	CachedQueries int  `json:"cached_queries"`
	CacheTTLSec   int  `json:"cache_ttl_sec"`
	IndexedCount  int  `json:"indexed_count"`
	IndexLoaded   bool `json:"index_loaded"`
}

// handleStats handles GET /v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.search.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		CachedQueries: stats.Count,
		CacheTTLSec:   int(stats.TTL.Seconds()),
		IndexedCount:  s.index.Size(),
		IndexLoaded:   s.index.Loaded(),
	})
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles GET /healthz. The store must answer; a missing index
// degrades but does not fail, since the lexical path still serves.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "index": "ok"}
	status := "healthy"
	httpStatus := http.StatusOK

	if err := s.store.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}
	if !s.index.Loaded() {
		checks["index"] = "not loaded"
		if status == "healthy" {
			status = "degraded"
		}
	}

	writeJSON(w, httpStatus, healthResponse{Status: status, Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyQuery,
		domain.ErrSearchDegraded,
		domain.ErrIndexNotLoaded,
		domain.ErrEmbeddingProviderError,
		domain.ErrRetrieval,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
