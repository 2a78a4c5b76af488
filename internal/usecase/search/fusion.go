package search

import (
	"sort"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

// scoredListing pairs a resolved listing with its semantic score.
type scoredListing struct {
	listing domain.Listing
	score   float64
}

// fuse merges lexical and semantic candidates into one ranked list. Lexical
// matches enter first at the fixed score 1.0, so an exact textual match
// always outranks a purely semantic match for the same listing. Semantic
// candidates join only when their id is unseen. The stable sort keeps tied
// lexical matches in insertion order. maxPrice > 0 drops pricier listings
// before truncation, so filtering never costs result slots.
func fuse(lexical []domain.Listing, semantic []scoredListing, limit int, maxPrice float64) []domain.SearchResult {
	seen := make(map[string]bool, len(lexical)+len(semantic))
	results := make([]domain.SearchResult, 0, len(lexical)+len(semantic))

	for _, l := range lexical {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		if maxPrice > 0 && l.Price > maxPrice {
			continue
		}
		results = append(results, toResult(l, domain.MatchLexical, 1.0))
	}

	for _, s := range semantic {
		if seen[s.listing.ID] {
			continue
		}
		seen[s.listing.ID] = true
		if maxPrice > 0 && s.listing.Price > maxPrice {
			continue
		}
		results = append(results, toResult(s.listing, domain.MatchSemantic, s.score))
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func toResult(l domain.Listing, matchType domain.MatchType, score float64) domain.SearchResult {
	return domain.SearchResult{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Location:    l.Location,
		MatchType:   matchType,
		Score:       score,
	}
}
