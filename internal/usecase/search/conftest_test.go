package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/cache"
	"github.com/bazaria-cloud/searchd/internal/domain"
)

// --- Mocks shared across the package tests ---

type mockStore struct {
	listings []domain.Listing
	listErr  error
	getErr   error

	listCalls int
	getCalls  int
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.Listing, error) {
	m.getCalls++
	if m.getErr != nil {
		return domain.Listing{}, m.getErr
	}
	for _, l := range m.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrListingNotFound
}

func (m *mockStore) ListPaginated(_ context.Context, offset, limit int) ([]domain.Listing, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if offset >= len(m.listings) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.listings) {
		end = len(m.listings)
	}
	return m.listings[offset:end], nil
}

type mockIndex struct {
	hits  []domain.VectorHit
	err   error
	calls int
}

func (m *mockIndex) Search(_ []float32, k int) ([]domain.VectorHit, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.hits) > k {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockParaphraser struct {
	variants []string
	err      error
	calls    int
}

func (m *mockParaphraser) GenerateVariants(_ context.Context, _ string) ([]string, error) {
	m.calls++
	return m.variants, m.err
}

// --- Fixture helpers ---

func newEmbCache() EmbeddingCache {
	return cache.New[[]float32]("", 24*time.Hour, zap.NewNop())
}

func newResultCache() ResultCache {
	return cache.New[domain.CachedResultSet]("", 2*time.Hour, zap.NewNop())
}

type fixture struct {
	store       *mockStore
	index       *mockIndex
	embedder    *mockEmbedder
	paraphraser *mockParaphraser
	svc         *Service
}

func newFixture(store *mockStore, index *mockIndex, embedder *mockEmbedder, paraphraser *mockParaphraser) *fixture {
	logger := zap.NewNop()
	retriever := NewVectorRetriever(index, embedder, newEmbCache(), logger)

	var p domain.Paraphraser
	if paraphraser != nil {
		p = paraphraser
	}
	expander := NewQueryExpander(retriever, p, time.Second, logger)
	lexical := NewLexicalMatcher(store, 2, 100)
	svc := New(lexical, expander, store, NewReranker(DefaultRerankConfig()), newResultCache(), 10, logger)

	return &fixture{store: store, index: index, embedder: embedder, paraphraser: paraphraser, svc: svc}
}

func listingFixture() []domain.Listing {
	return []domain.Listing{
		{ID: "L1", Title: "Villa de luxe", Description: "Grande villa avec piscine", Price: 450000, Location: "Nice"},
		{ID: "L2", Title: "Appartement centre-ville", Description: "Deux pièces lumineux", Price: 180000, Location: "Lyon"},
		{ID: "L3", Title: "Vélo électrique", Description: "Très bon état, batterie neuve", Price: 800, Location: "Paris",
			Criteria: []domain.Criterion{{Label: "Autonomie", Value: "80 km"}}},
		{ID: "L4", Title: "Samsung Galaxy S23", Description: "Téléphone comme neuf", Price: 420, Location: "Marseille"},
	}
}
