package search

import (
	"context"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/domain"
)

// Index is the ANN index contract.
type Index interface {
	Search(vector []float32, k int) ([]domain.VectorHit, error)
}

// ListingStore reads listings from the document store.
type ListingStore interface {
	GetByID(ctx context.Context, id string) (domain.Listing, error)
	ListPaginated(ctx context.Context, offset, limit int) ([]domain.Listing, error)
}

// EmbeddingCache stores query vectors by normalized query key.
type EmbeddingCache interface {
	Get(key string) ([]float32, bool)
	Set(key string, value []float32)
	Stats() cache.Stats
}

// ResultCache stores final result sets by normalized query key.
type ResultCache interface {
	Get(key string) (domain.CachedResultSet, bool)
	Set(key string, value domain.CachedResultSet)
	Stats() cache.Stats
}
