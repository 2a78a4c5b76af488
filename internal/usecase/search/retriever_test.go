package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

func TestRetrieve_RanksHitsInIndexOrder(t *testing.T) {
	index := &mockIndex{hits: []domain.VectorHit{
		{ListingID: "near", Distance: 0.1},
		{ListingID: "far", Distance: 0.7},
	}}
	r := NewVectorRetriever(index, &mockEmbedder{vec: []float32{1, 0}}, newEmbCache(), zap.NewNop())

	cands, err := r.Retrieve(context.Background(), "vélo", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 2 {
		t.Fatalf("len = %d, want 2", len(cands))
	}
	if cands[0].ListingID != "near" || cands[0].Rank != 0 || cands[0].Distance != 0.1 {
		t.Fatalf("unexpected first candidate: %+v", cands[0])
	}
	if cands[1].Rank != 1 || cands[1].MatchType != domain.MatchSemantic {
		t.Fatalf("unexpected second candidate: %+v", cands[1])
	}
}

func TestRetrieve_EmbeddingCacheHitSkipsProvider(t *testing.T) {
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	r := NewVectorRetriever(&mockIndex{}, embedder, newEmbCache(), zap.NewNop())

	if _, err := r.Retrieve(context.Background(), "Vélo  électrique", 5); err != nil {
		t.Fatal(err)
	}
	// Same query after normalization: different case and spacing.
	if _, err := r.Retrieve(context.Background(), "vélo électrique", 5); err != nil {
		t.Fatal(err)
	}
	if embedder.calls != 1 {
		t.Fatalf("embedder called %d times, want 1 with a cache hit", embedder.calls)
	}
}

func TestRetrieve_ProviderFailureNotCached(t *testing.T) {
	embedder := &mockEmbedder{err: errors.New("rate limited")}
	cache := newEmbCache()
	r := NewVectorRetriever(&mockIndex{}, embedder, cache, zap.NewNop())

	if _, err := r.Retrieve(context.Background(), "vélo", 5); !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}

	// Recovery: the failed attempt must not have poisoned the cache.
	embedder.err = nil
	embedder.vec = []float32{0, 1}
	if _, err := r.Retrieve(context.Background(), "vélo", 5); err != nil {
		t.Fatal(err)
	}
	vec, ok := cache.Get("vélo")
	if !ok || len(vec) != 2 || vec[1] != 1 {
		t.Fatalf("cache holds %v, want the provider's real vector", vec)
	}
}

func TestRetrieve_IndexFailure(t *testing.T) {
	index := &mockIndex{err: errors.New("no snapshot")}
	r := NewVectorRetriever(index, &mockEmbedder{vec: []float32{1, 0}}, newEmbCache(), zap.NewNop())

	_, err := r.Retrieve(context.Background(), "vélo", 5)
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval, got %v", err)
	}
}
