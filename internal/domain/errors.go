package domain

import "errors"

var (
	// ErrListingNotFound signals a retrieved ID that no longer resolves in the
	// document store (stale index entry).
	ErrListingNotFound = errors.New("listing not found")
	// ErrRetrieval signals an ANN index or embedding provider failure.
	ErrRetrieval = errors.New("semantic retrieval failed")
	// ErrExpansion signals a paraphraser or variant retrieval failure.
	ErrExpansion = errors.New("query expansion failed")
	// ErrSearchDegraded signals that both the lexical and the semantic path
	// failed, so no result set could be produced at all.
	ErrSearchDegraded = errors.New("search degraded: all retrieval paths failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrIndexNotLoaded signals that no vector index snapshot is active.
	ErrIndexNotLoaded = errors.New("vector index not loaded")
)
