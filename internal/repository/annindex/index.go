// Package annindex holds the in-process vector index the semantic path
// queries. The active snapshot is swapped atomically, so a rebuild never
// mutates an index that live searches are reading.
package annindex

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

// Entry is one indexed listing vector.
type Entry struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// snapshot is an immutable generation of the index.
type snapshot struct {
	Dimensions int     `json:"dimensions"`
	Entries    []Entry `json:"entries"`
}

// Index serves top-k similarity queries against the active snapshot.
type Index struct {
	path   string
	logger *zap.Logger
	active atomic.Pointer[snapshot]
}

// New creates an index bound to a snapshot file. Call Load to activate it.
func New(path string, logger *zap.Logger) *Index {
	return &Index{path: path, logger: logger}
}

// Search returns the k nearest entries to vector by cosine distance,
// closest first.
func (ix *Index) Search(vector []float32, k int) ([]domain.VectorHit, error) {
	snap := ix.active.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotLoaded
	}
	if len(vector) != snap.Dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(vector), snap.Dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]domain.VectorHit, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		hits = append(hits, domain.VectorHit{ListingID: e.ID, Distance: cosineDistance(vector, e.Vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of entries in the active snapshot.
func (ix *Index) Size() int {
	snap := ix.active.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Entries)
}

// Loaded reports whether a snapshot is active.
func (ix *Index) Loaded() bool {
	return ix.active.Load() != nil
}

// cosineDistance computes 1 - cosine similarity. A zero-length vector is
// maximally distant from everything.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
