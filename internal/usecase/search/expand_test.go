package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

func newExpander(index *mockIndex, embedder *mockEmbedder, p domain.Paraphraser) *QueryExpander {
	retriever := NewVectorRetriever(index, embedder, newEmbCache(), zap.NewNop())
	return NewQueryExpander(retriever, p, time.Second, zap.NewNop())
}

func TestExpandAndRetrieve_NilParaphraser(t *testing.T) {
	index := &mockIndex{hits: []domain.VectorHit{{ListingID: "a", Distance: 0.2}}}
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	e := newExpander(index, embedder, nil)

	cands, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].ListingID != "a" || cands[0].Rank != 0 {
		t.Fatalf("unexpected candidates: %+v", cands)
	}
	if embedder.calls != 1 {
		t.Fatalf("embedder called %d times, want 1", embedder.calls)
	}
}

func TestExpandAndRetrieve_MergesBestRankAndDistance(t *testing.T) {
	index := &mockIndex{hits: []domain.VectorHit{
		{ListingID: "a", Distance: 0.3},
		{ListingID: "b", Distance: 0.5},
	}}
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	p := &mockParaphraser{variants: []string{"bicyclette", "vtt"}}
	e := newExpander(index, embedder, p)

	cands, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 2 {
		t.Fatalf("len = %d, want 2 deduplicated candidates", len(cands))
	}
	// Every variant sees the same hits, so "a" keeps rank 0 and its distance.
	if cands[0].ListingID != "a" || cands[0].Rank != 0 || cands[0].Distance != 0.3 {
		t.Fatalf("unexpected first candidate: %+v", cands[0])
	}
	if cands[1].ListingID != "b" || cands[1].Rank != 1 {
		t.Fatalf("unexpected second candidate: %+v", cands[1])
	}
	// Original query plus two variants, and the embedding cache dedupes
	// nothing here since the queries differ.
	if embedder.calls != 3 {
		t.Fatalf("embedder called %d times, want 3", embedder.calls)
	}
}

func TestExpandAndRetrieve_ParaphraserFailureFallsBack(t *testing.T) {
	index := &mockIndex{hits: []domain.VectorHit{{ListingID: "a", Distance: 0.2}}}
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	p := &mockParaphraser{err: errors.New("llm down")}
	e := newExpander(index, embedder, p)

	cands, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
	if err != nil {
		t.Fatalf("fallback must absorb the expansion failure: %v", err)
	}
	if len(cands) != 1 || cands[0].ListingID != "a" {
		t.Fatalf("unexpected candidates: %+v", cands)
	}
	if p.calls != 1 {
		t.Fatalf("paraphraser called %d times, want 1", p.calls)
	}
}

func TestExpandAndRetrieve_VariantRetrievalFailureFallsBack(t *testing.T) {
	index := &mockIndex{err: errors.New("index unavailable")}
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	p := &mockParaphraser{variants: []string{"bicyclette"}}
	e := newExpander(index, embedder, p)

	// The fallback retrieval hits the same broken index, so the single-query
	// error surfaces as ErrRetrieval rather than ErrExpansion.
	_, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
	if !errors.Is(err, domain.ErrRetrieval) {
		t.Fatalf("expected ErrRetrieval from the fallback, got %v", err)
	}
}

func TestExpandAndRetrieve_DeterministicOrder(t *testing.T) {
	index := &mockIndex{hits: []domain.VectorHit{
		{ListingID: "z", Distance: 0.4},
		{ListingID: "m", Distance: 0.4},
	}}
	embedder := &mockEmbedder{vec: []float32{1, 0}}
	p := &mockParaphraser{variants: []string{"variant"}}
	e := newExpander(index, embedder, p)

	first, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := e.ExpandAndRetrieve(context.Background(), "vélo", 5)
		if err != nil {
			t.Fatal(err)
		}
		for j := range first {
			if again[j].ListingID != first[j].ListingID {
				t.Fatalf("merge order changed between runs: %+v vs %+v", first, again)
			}
		}
	}
}
