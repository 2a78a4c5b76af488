package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

const (
	defaultPageSize = 25
	defaultMaxScan  = 500
)

// LexicalMatcher finds exact substring matches of a query over the full
// listing text. The corpus slice comes from bounded document-store
// pagination, so the lexical path works even when the embedding provider or
// the index is down.
type LexicalMatcher struct {
	store    ListingStore
	pageSize int
	maxScan  int
}

// NewLexicalMatcher creates a lexical matcher. pageSize and maxScan fall back
// to defaults when non-positive.
func NewLexicalMatcher(store ListingStore, pageSize, maxScan int) *LexicalMatcher {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if maxScan <= 0 {
		maxScan = defaultMaxScan
	}
	return &LexicalMatcher{store: store, pageSize: pageSize, maxScan: maxScan}
}

// Match returns every listing in the corpus slice whose canonical text
// contains the case-folded query as a substring. Title, location, price,
// structured criteria lines, and description all participate in the match.
func (m *LexicalMatcher) Match(ctx context.Context, query string) ([]domain.Listing, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var matches []domain.Listing
	for offset := 0; offset < m.maxScan; offset += m.pageSize {
		page, err := m.store.ListPaginated(ctx, offset, m.pageSize)
		if err != nil {
			return nil, fmt.Errorf("lexical corpus slice at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		for _, l := range page {
			if strings.Contains(strings.ToLower(l.Document()), needle) {
				matches = append(matches, l)
			}
		}
		if len(page) < m.pageSize {
			break
		}
	}
	return matches, nil
}
