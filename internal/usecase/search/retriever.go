package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/domain"
	"github.com/bazaria-cloud/searchd/internal/metrics"
)

// VectorRetriever resolves a query to a vector (via the embedding cache or
// the embedding provider) and returns top-k ANN candidates.
type VectorRetriever struct {
	index    Index
	embedder domain.Embedder
	embCache EmbeddingCache
	logger   *zap.Logger
}

// NewVectorRetriever creates a vector retriever.
func NewVectorRetriever(index Index, embedder domain.Embedder, embCache EmbeddingCache, logger *zap.Logger) *VectorRetriever {
	return &VectorRetriever{index: index, embedder: embedder, embCache: embCache, logger: logger}
}

// Retrieve returns up to k semantic candidates for query, ranked by cosine
// distance. Embedding provider and index failures both surface as
// domain.ErrRetrieval.
func (r *VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Candidate, error) {
	vector, err := r.resolveVector(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := r.index.Search(vector, k)
	if err != nil {
		return nil, fmt.Errorf("index search %q: %w: %w", query, domain.ErrRetrieval, err)
	}

	candidates := make([]domain.Candidate, len(hits))
	for i, h := range hits {
		candidates[i] = domain.Candidate{
			ListingID: h.ListingID,
			MatchType: domain.MatchSemantic,
			Distance:  h.Distance,
			Rank:      i,
		}
	}
	return candidates, nil
}

// resolveVector returns the query embedding, calling the provider only on a
// cache miss. The cached value is always the provider's real vector.
func (r *VectorRetriever) resolveVector(ctx context.Context, query string) ([]float32, error) {
	key := cache.NormalizeKey(query)

	if vector, ok := r.embCache.Get(key); ok {
		metrics.CacheTotal.WithLabelValues("embedding", "hit").Inc()
		return vector, nil
	}
	metrics.CacheTotal.WithLabelValues("embedding", "miss").Inc()

	result, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query %q: %w: %w", query, domain.ErrRetrieval, err)
	}

	r.embCache.Set(key, result.Embedding)
	return result.Embedding, nil
}
