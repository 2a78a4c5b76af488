package searchd

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes.
// Use errors.Is() to check.
var (
	ErrEmptyQuery     = errors.New("query must not be empty")
	ErrSearchDegraded = errors.New("search degraded: all retrieval paths failed")
	ErrIndexNotLoaded = errors.New("vector index not loaded")
	ErrProvider       = errors.New("embedding provider error")
	ErrRetrieval      = errors.New("semantic retrieval failed")
	ErrUnauthorized   = errors.New("unauthorized")
)

// APIError carries the raw error payload of a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("searchd: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps known error codes to sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "empty_query":
		return ErrEmptyQuery
	case "search_degraded":
		return ErrSearchDegraded
	case "index_not_loaded":
		return ErrIndexNotLoaded
	case "embedding_provider_error":
		return ErrProvider
	case "retrieval_failed":
		return ErrRetrieval
	}
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}
