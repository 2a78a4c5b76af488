// Package scoring converts raw (distance, rank) retrieval signals into
// bounded relevance scores. Every semantic retrieval path shares this model;
// there is deliberately no other scoring formula in the codebase.
package scoring

import "math"

// Component weights and squash steepness. Distance dominates; rank decay is
// capped by its weight so list position alone cannot outrank a closer vector.
const (
	distanceWeight = 0.7
	rankWeight     = 0.3
	steepness      = 6.0
)

// Model scores semantic candidates into the [0.5, 1.0] band. Every retrieved
// candidate stays "plausible" (>= 0.5) while remaining strictly ordered by
// the underlying distance/rank blend.
type Model struct{}

// NewModel creates the canonical score model.
func NewModel() Model { return Model{} }

// Score maps a cosine distance and a zero-based rank among maxRank retrieved
// candidates into [0.5, 1.0]. Distance 0 at rank 0 yields exactly 1.0.
func (Model) Score(distance float64, rank, maxRank int) float64 {
	if distance < 0 {
		distance = 0
	}
	if maxRank < 1 {
		maxRank = 1
	}
	if rank < 0 {
		rank = 0
	}
	if rank > maxRank {
		rank = maxRank
	}

	distComp := 1.0 / (1.0 + distance)
	rankComp := 1.0 - float64(rank)/float64(maxRank)
	blend := distanceWeight*distComp + rankWeight*rankComp

	// Logistic squash centered at the blend midpoint, normalized so the
	// blend extremes map to exactly 0 and 1 before rescaling into the band.
	lo, hi := logistic(0), logistic(1)
	squashed := (logistic(blend) - lo) / (hi - lo)

	return 0.5 + 0.5*squashed
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(x-0.5)))
}
