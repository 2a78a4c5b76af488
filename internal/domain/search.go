package domain

// MatchType distinguishes how a result was found.
type MatchType string

const (
	// MatchLexical marks an exact substring hit on the listing text.
	MatchLexical MatchType = "lexical"
	// MatchSemantic marks a vector-similarity hit.
	MatchSemantic MatchType = "semantic"
)

// VectorHit is one ANN similarity hit. Distance is cosine distance, smaller
// is closer.
type VectorHit struct {
	ListingID string
	Distance  float64
}

// Candidate is a retrieval hit before scoring and fusion. Distance and Rank
// are meaningful for semantic candidates only; lexical candidates carry the
// fixed exact-match signal.
type Candidate struct {
	ListingID string
	MatchType MatchType
	Distance  float64
	Rank      int
}

// SearchResult is the externally visible, scored, deduplicated unit.
type SearchResult struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Location    string    `json:"location"`
	MatchType   MatchType `json:"match_type"`
	Score       float64   `json:"score"`
}

// SearchResponse is the ranked, bounded answer to one query.
// Results contains no duplicate IDs and is ordered by non-increasing score.
type SearchResponse struct {
	Query           string         `json:"query"`
	TotalResults    int            `json:"total_results"`
	TextResults     int            `json:"text_results"`
	SemanticResults int            `json:"semantic_results"`
	Note            string         `json:"note,omitempty"`
	Results         []SearchResult `json:"results"`
}

// CachedResultSet is the unit stored in the result cache: the final scored
// list plus the pre-fusion match counts, so a hit reproduces the original
// response exactly without re-running any retrieval.
type CachedResultSet struct {
	Results         []SearchResult `json:"results"`
	TextMatches     int            `json:"text_matches"`
	SemanticMatches int            `json:"semantic_matches"`
}
