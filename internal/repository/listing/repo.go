// Package listing is the document-store repository for marketplace listings.
// Listings live as JSON values under a key prefix; their insertion order is
// kept in a Redis list so offset pagination stays stable across requests.
package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bazaria-cloud/searchd/internal/db"
	"github.com/bazaria-cloud/searchd/internal/domain"
)

const (
	keyPrefix = "searchd:listing:"
	idListKey = "searchd:listings"
)

// store is the consumer interface for listings (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
	RPush(ctx context.Context, key string, values ...string) error
}

// Repo implements the document-store boundary consumed by the search core.
type Repo struct {
	store store
}

// New creates a listing repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// GetByID returns one listing. A missing key maps to domain.ErrListingNotFound
// so stale index entries can be dropped silently upstream.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	data, err := r.store.Get(ctx, keyPrefix+id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}

	var l domain.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		return domain.Listing{}, fmt.Errorf("parse listing %s: %w", id, err)
	}
	l.ID = id
	return l, nil
}

// ListPaginated returns up to limit listings starting at offset, in insertion
// order. Listings whose JSON key has vanished since being listed are skipped.
func (r *Repo) ListPaginated(ctx context.Context, offset, limit int) ([]domain.Listing, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := r.store.LRange(ctx, idListKey, int64(offset), int64(offset+limit-1))
	if err != nil {
		return nil, fmt.Errorf("list listing ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}
	values, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	listings := make([]domain.Listing, 0, len(values))
	for i, data := range values {
		if data == nil {
			continue
		}
		var l domain.Listing
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("parse listing %s: %w", ids[i], err)
		}
		l.ID = ids[i]
		listings = append(listings, l)
	}
	return listings, nil
}

// Count returns the total number of listings.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.LLen(ctx, idListKey)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return int(n), nil
}

// Put stores a listing and registers its ID for pagination. Used by seed
// tooling; the live service only reads.
func (r *Repo) Put(ctx context.Context, l domain.Listing) error {
	if l.ID == "" {
		return fmt.Errorf("listing id is required")
	}
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal listing %s: %w", l.ID, err)
	}

	existing, err := r.store.Get(ctx, keyPrefix+l.ID)
	if err != nil && !errors.Is(err, db.ErrKeyNotFound) {
		return fmt.Errorf("check listing %s: %w", l.ID, err)
	}

	if err := r.store.Set(ctx, keyPrefix+l.ID, data); err != nil {
		return fmt.Errorf("store listing %s: %w", l.ID, err)
	}
	if existing == nil {
		if err := r.store.RPush(ctx, idListKey, l.ID); err != nil {
			return fmt.Errorf("register listing %s: %w", l.ID, err)
		}
	}
	return nil
}
