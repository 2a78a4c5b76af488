// Package search implements the hybrid retrieval-cache-rerank engine:
// query normalization and caching, lexical matching, vector retrieval with
// optional LLM-driven expansion, result fusion, and heuristic rescoring.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/domain"
	"github.com/bazaria-cloud/searchd/internal/domain/scoring"
	"github.com/bazaria-cloud/searchd/internal/metrics"
)

const defaultLimit = 10

// Service orchestrates the hybrid search pipeline.
type Service struct {
	lexical     *LexicalMatcher
	expander    *QueryExpander
	store       ListingStore
	scorer      scoring.Model
	reranker    *Reranker
	resultCache ResultCache
	topK        int
	logger      *zap.Logger
}

// New creates a search service. topK is the semantic retrieval depth per
// query variant.
func New(
	lexical *LexicalMatcher,
	expander *QueryExpander,
	store ListingStore,
	reranker *Reranker,
	resultCache ResultCache,
	topK int,
	logger *zap.Logger,
) *Service {
	if topK <= 0 {
		topK = 10
	}
	return &Service{
		lexical:     lexical,
		expander:    expander,
		store:       store,
		scorer:      scoring.NewModel(),
		reranker:    reranker,
		resultCache: resultCache,
		topK:        topK,
		logger:      logger,
	}
}

// HybridSearch runs the full pipeline: result cache, then lexical and
// expanded semantic retrieval, fusion, reranking, and caching of the final
// list. Either retrieval path failing alone degrades the response; both
// failing is domain.ErrSearchDegraded.
func (s *Service) HybridSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error) {
	return s.instrumented(ctx, "hybrid", func(ctx context.Context) (domain.SearchResponse, error) {
		return s.search(ctx, query, limit, 0, true)
	})
}

// SearchWithPriceFilter runs the hybrid pipeline and drops every fused
// candidate priced above maxPrice before truncation. Bypasses the result
// cache, whose key space carries no price bound.
func (s *Service) SearchWithPriceFilter(ctx context.Context, query string, limit int, maxPrice float64) (domain.SearchResponse, error) {
	return s.instrumented(ctx, "price", func(ctx context.Context) (domain.SearchResponse, error) {
		return s.search(ctx, query, limit, maxPrice, false)
	})
}

// SemanticSearch exposes the semantic stage alone: expanded vector
// retrieval, scoring, ordering, truncation.
func (s *Service) SemanticSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error) {
	return s.instrumented(ctx, "semantic", func(ctx context.Context) (domain.SearchResponse, error) {
		query, limit, err := validate(query, limit)
		if err != nil {
			return domain.SearchResponse{}, err
		}

		scored, err := s.semanticCandidates(ctx, query)
		if err != nil {
			return domain.SearchResponse{}, err
		}
		results := fuse(nil, scored, limit, 0)
		return domain.SearchResponse{
			Query:           query,
			TotalResults:    len(results),
			SemanticResults: len(scored),
			Results:         results,
		}, nil
	})
}

// LexicalSearch exposes the lexical stage alone.
func (s *Service) LexicalSearch(ctx context.Context, query string, limit int) (domain.SearchResponse, error) {
	return s.instrumented(ctx, "lexical", func(ctx context.Context) (domain.SearchResponse, error) {
		query, limit, err := validate(query, limit)
		if err != nil {
			return domain.SearchResponse{}, err
		}

		matches, err := s.lexical.Match(ctx, query)
		if err != nil {
			return domain.SearchResponse{}, fmt.Errorf("lexical search: %w", err)
		}
		results := fuse(matches, nil, limit, 0)
		return domain.SearchResponse{
			Query:        query,
			TotalResults: len(results),
			TextResults:  len(matches),
			Results:      results,
		}, nil
	})
}

// Stats reports result-cache state for the stats endpoint.
func (s *Service) Stats() cache.Stats {
	return s.resultCache.Stats()
}

func (s *Service) search(ctx context.Context, query string, limit int, maxPrice float64, useCache bool) (domain.SearchResponse, error) {
	query, limit, err := validate(query, limit)
	if err != nil {
		return domain.SearchResponse{}, err
	}

	key := cache.NormalizeKey(query)
	if useCache {
		if cached, ok := s.resultCache.Get(key); ok {
			metrics.CacheTotal.WithLabelValues("result", "hit").Inc()
			return domain.SearchResponse{
				Query:           query,
				TotalResults:    len(cached.Results),
				TextResults:     cached.TextMatches,
				SemanticResults: cached.SemanticMatches,
				Results:         cached.Results,
			}, nil
		}
		metrics.CacheTotal.WithLabelValues("result", "miss").Inc()
	}

	lexMatches, lexErr := s.lexical.Match(ctx, query)
	if lexErr != nil {
		s.logger.Warn("Lexical path failed", zap.String("query", query), zap.Error(lexErr))
	}

	semScored, semErr := s.semanticCandidates(ctx, query)
	if semErr != nil {
		s.logger.Warn("Semantic path failed", zap.String("query", query), zap.Error(semErr))
	}

	if lexErr != nil && semErr != nil {
		return domain.SearchResponse{}, fmt.Errorf("%w: lexical: %v; semantic: %v",
			domain.ErrSearchDegraded, lexErr, semErr)
	}

	results := fuse(lexMatches, semScored, limit, maxPrice)
	results = s.reranker.Rerank(query, results, limit)

	resp := domain.SearchResponse{
		Query:           query,
		TotalResults:    len(results),
		TextResults:     len(lexMatches),
		SemanticResults: len(semScored),
		Results:         results,
	}
	switch {
	case lexErr != nil:
		resp.Note = "text search unavailable, semantic results only"
	case semErr != nil:
		resp.Note = "semantic search unavailable, text results only"
	}

	// Only a fully computed, undegraded list is eligible for caching, and
	// never on behalf of a cancelled request.
	if useCache && lexErr == nil && semErr == nil && ctx.Err() == nil {
		s.resultCache.Set(key, domain.CachedResultSet{
			Results:         results,
			TextMatches:     len(lexMatches),
			SemanticMatches: len(semScored),
		})
	}
	return resp, nil
}

// semanticCandidates retrieves, resolves, and scores semantic candidates.
// Stale index entries pointing at vanished listings are dropped silently.
func (s *Service) semanticCandidates(ctx context.Context, query string) ([]scoredListing, error) {
	candidates, err := s.expander.ExpandAndRetrieve(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}

	scored := make([]scoredListing, 0, len(candidates))
	for _, c := range candidates {
		l, err := s.store.GetByID(ctx, c.ListingID)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				s.logger.Debug("Dropping stale index entry", zap.String("listing_id", c.ListingID))
				continue
			}
			return nil, fmt.Errorf("resolve listing %s: %w", c.ListingID, err)
		}
		scored = append(scored, scoredListing{
			listing: l,
			score:   s.scorer.Score(c.Distance, c.Rank, s.topK),
		})
	}
	return scored, nil
}

func (s *Service) instrumented(
	ctx context.Context, mode string,
	fn func(ctx context.Context) (domain.SearchResponse, error),
) (domain.SearchResponse, error) {
	start := time.Now()
	resp, err := fn(ctx)
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case resp.Note != "":
		status = "degraded"
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, status).Inc()
	return resp, err
}

func validate(query string, limit int) (string, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", 0, domain.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return query, limit, nil
}
