package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

// RerankConfig holds heuristic rescoring settings.
type RerankConfig struct {
	Enabled bool
	// TokenBonus is added per query token literally present in the title or
	// description, up to TokenBonusCap.
	TokenBonus    float64
	TokenBonusCap float64
	// PriceIntentBonus rewards cheap listings when the query carries
	// price-sensitivity language. Listings under LowPrice get the full bonus,
	// listings under MidPrice half of it.
	PriceIntentBonus float64
	LowPrice         float64
	MidPrice         float64
	// LocationBonus rewards listings whose location appears in the query.
	LocationBonus float64
	// PositionPenalty is subtracted per position in the incoming list so the
	// reranker cannot fully reorder around noise.
	PositionPenalty float64
}

// DefaultRerankConfig returns the production rescoring weights.
func DefaultRerankConfig() RerankConfig {
	return RerankConfig{
		Enabled:          true,
		TokenBonus:       0.05,
		TokenBonusCap:    0.15,
		PriceIntentBonus: 0.1,
		LowPrice:         100,
		MidPrice:         500,
		LocationBonus:    0.1,
		PositionPenalty:  0.01,
	}
}

// priceIntentTerms signal price sensitivity in a query; the corpus is French
// with occasional English queries.
var priceIntentTerms = []string{
	"pas cher", "pas chère", "abordable", "économique", "bon marché", "petit prix",
	"cheap", "affordable", "budget", "inexpensive",
}

// Reranker applies a heuristic rescoring pass after fusion. It only
// reorders and rescales: no result is dropped unless limit is exceeded.
type Reranker struct {
	cfg RerankConfig
}

// NewReranker creates a reranker.
func NewReranker(cfg RerankConfig) *Reranker {
	return &Reranker{cfg: cfg}
}

// Rerank adjusts each result's score by literal token presence, price
// intent, and location intent, minus a small position penalty, clamped into
// [0.5, 1.0]. With reranking disabled the input passes through unchanged
// apart from truncation.
func (r *Reranker) Rerank(query string, results []domain.SearchResult, limit int) []domain.SearchResult {
	if len(results) > limit {
		results = results[:limit]
	}
	if !r.cfg.Enabled || len(results) == 0 {
		return results
	}

	queryLower := strings.ToLower(query)
	tokens := queryTokens(queryLower)
	priceIntent := hasPriceIntent(queryLower)

	out := make([]domain.SearchResult, len(results))
	copy(out, results)

	for i := range out {
		adjusted := out[i].Score

		text := strings.ToLower(out[i].Title + " " + out[i].Description)
		var tokenBonus float64
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				tokenBonus += r.cfg.TokenBonus
			}
		}
		if tokenBonus > r.cfg.TokenBonusCap {
			tokenBonus = r.cfg.TokenBonusCap
		}
		adjusted += tokenBonus

		if priceIntent {
			switch {
			case out[i].Price < r.cfg.LowPrice:
				adjusted += r.cfg.PriceIntentBonus
			case out[i].Price < r.cfg.MidPrice:
				adjusted += r.cfg.PriceIntentBonus / 2
			}
		}

		if loc := strings.ToLower(strings.TrimSpace(out[i].Location)); loc != "" && strings.Contains(queryLower, loc) {
			adjusted += r.cfg.LocationBonus
		}

		adjusted -= r.cfg.PositionPenalty * float64(i)

		if adjusted > 1.0 {
			adjusted = 1.0
		}
		if adjusted < 0.5 {
			adjusted = 0.5
		}
		out[i].Score = adjusted
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// queryTokens splits a lowercased query into match tokens, skipping
// single-character noise.
func queryTokens(queryLower string) []string {
	fields := strings.Fields(queryLower)
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func hasPriceIntent(queryLower string) bool {
	for _, term := range priceIntentTerms {
		if strings.Contains(queryLower, term) {
			return true
		}
	}
	return false
}
