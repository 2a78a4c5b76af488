// Package indexer builds vector index snapshots from the document store.
// A build embeds every listing's canonical text into a fresh snapshot file
// and activates it with an atomic rename plus hot reload, so live searches
// never observe a half-written index.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
	"github.com/bazaria-cloud/searchd/internal/repository/annindex"
)

const defaultPageSize = 25

// ListingSource pages through the document store.
type ListingSource interface {
	ListPaginated(ctx context.Context, offset, limit int) ([]domain.Listing, error)
}

// Reloader activates the freshly written snapshot.
type Reloader interface {
	Load() error
}

// Service rebuilds the ANN index from the document store.
type Service struct {
	source   ListingSource
	embedder domain.Embedder
	index    Reloader
	path     string
	pageSize int
	logger   *zap.Logger
}

// New creates an indexer writing snapshots to path.
func New(source ListingSource, embedder domain.Embedder, index Reloader, path string, logger *zap.Logger) *Service {
	return &Service{
		source:   source,
		embedder: embedder,
		index:    index,
		path:     path,
		pageSize: defaultPageSize,
		logger:   logger,
	}
}

// Rebuild embeds every listing and swaps in the new snapshot. Returns the
// number of indexed listings.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	var entries []annindex.Entry
	dimensions := 0

	for offset := 0; ; offset += s.pageSize {
		page, err := s.source.ListPaginated(ctx, offset, s.pageSize)
		if err != nil {
			return 0, fmt.Errorf("page listings at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		for _, l := range page {
			result, err := s.embedder.Embed(ctx, l.Document())
			if err != nil {
				return 0, fmt.Errorf("embed listing %s: %w", l.ID, err)
			}
			if dimensions == 0 {
				dimensions = len(result.Embedding)
			}
			entries = append(entries, annindex.Entry{ID: l.ID, Vector: result.Embedding})
		}

		if len(page) < s.pageSize {
			break
		}
	}

	if len(entries) == 0 {
		return 0, fmt.Errorf("no listings to index")
	}

	if err := annindex.WriteSnapshot(s.path, dimensions, entries); err != nil {
		return 0, err
	}
	if err := s.index.Load(); err != nil {
		return 0, fmt.Errorf("activate rebuilt index: %w", err)
	}

	s.logger.Info("Vector index rebuilt",
		zap.Int("listings", len(entries)),
		zap.Int("dimensions", dimensions),
		zap.String("path", s.path),
	)
	return len(entries), nil
}
