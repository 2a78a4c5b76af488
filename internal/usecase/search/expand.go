package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
	"github.com/bazaria-cloud/searchd/internal/metrics"
)

// QueryExpander broadens semantic recall by retrieving for LLM-generated
// paraphrase variants alongside the original query. Any failure inside the
// expansion abandons it in favor of a single-query retrieval, so expansion
// can only ever widen a result set, never break one.
type QueryExpander struct {
	retriever   *VectorRetriever
	paraphraser domain.Paraphraser
	timeout     time.Duration
	logger      *zap.Logger
}

// NewQueryExpander creates a query expander. A nil paraphraser disables
// expansion entirely.
func NewQueryExpander(retriever *VectorRetriever, paraphraser domain.Paraphraser, timeout time.Duration, logger *zap.Logger) *QueryExpander {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &QueryExpander{
		retriever:   retriever,
		paraphraser: paraphraser,
		timeout:     timeout,
		logger:      logger,
	}
}

// ExpandAndRetrieve returns deduplicated semantic candidates for the query
// and its paraphrase variants, each carrying the best rank and best distance
// observed across variants.
func (e *QueryExpander) ExpandAndRetrieve(ctx context.Context, query string, kPerVariant int) ([]domain.Candidate, error) {
	if e.paraphraser == nil {
		return e.retriever.Retrieve(ctx, query, kPerVariant)
	}

	candidates, err := e.expanded(ctx, query, kPerVariant)
	if err != nil {
		metrics.ExpansionFallbacksTotal.Inc()
		e.logger.Warn("Query expansion failed, falling back to single-query retrieval",
			zap.String("query", query), zap.Error(err))
		return e.retriever.Retrieve(ctx, query, kPerVariant)
	}
	return candidates, nil
}

func (e *QueryExpander) expanded(ctx context.Context, query string, k int) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	variants, err := e.paraphraser.GenerateVariants(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrExpansion, err)
	}

	queries := append([]string{query}, variants...)
	best := make(map[string]domain.Candidate)
	for _, q := range queries {
		cands, err := e.retriever.Retrieve(ctx, q, k)
		if err != nil {
			return nil, fmt.Errorf("variant %q: %w: %w", q, domain.ErrExpansion, err)
		}
		for _, c := range cands {
			b, ok := best[c.ListingID]
			if !ok {
				best[c.ListingID] = c
				continue
			}
			if c.Rank < b.Rank {
				b.Rank = c.Rank
			}
			if c.Distance < b.Distance {
				b.Distance = c.Distance
			}
			best[c.ListingID] = b
		}
	}

	merged := make([]domain.Candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	// Deterministic order: best rank, then distance, then id.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Rank != merged[j].Rank {
			return merged[i].Rank < merged[j].Rank
		}
		if merged[i].Distance != merged[j].Distance {
			return merged[i].Distance < merged[j].Distance
		}
		return merged[i].ListingID < merged[j].ListingID
	})
	return merged, nil
}
