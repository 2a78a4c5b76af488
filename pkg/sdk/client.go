// Package searchd is a small HTTP client for the searchd API.
package searchd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Result is one scored search hit.
type Result struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Location    string  `json:"location"`
	MatchType   string  `json:"match_type"`
	Score       float64 `json:"score"`
}

// Response is the ranked answer to one query.
type Response struct {
	Query           string   `json:"query"`
	TotalResults    int      `json:"total_results"`
	TextResults     int      `json:"text_results"`
	SemanticResults int      `json:"semantic_results"`
	Note            string   `json:"note,omitempty"`
	Results         []Result `json:"results"`
}

// Stats reports server-side cache and index state.
type Stats struct {
	CachedQueries int  `json:"cached_queries"`
	CacheTTLSec   int  `json:"cache_ttl_sec"`
	IndexedCount  int  `json:"indexed_count"`
	IndexLoaded   bool `json:"index_loaded"`
}

// Health is the server liveness report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Client is the searchd SDK entry point.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("searchd: base URL required")
	}

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		httpClient: cfg.httpClient,
	}, nil
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type priceSearchRequest struct {
	Query    string  `json:"query"`
	Limit    int     `json:"limit,omitempty"`
	MaxPrice float64 `json:"max_price"`
}

// Search runs a hybrid lexical plus semantic search.
func (c *Client) Search(ctx context.Context, query string, limit int) (Response, error) {
	var resp Response
	err := c.post(ctx, "/v1/search", searchRequest{Query: query, Limit: limit}, &resp)
	return resp, err
}

// SemanticSearch runs vector retrieval only.
func (c *Client) SemanticSearch(ctx context.Context, query string, limit int) (Response, error) {
	var resp Response
	err := c.post(ctx, "/v1/search/semantic", searchRequest{Query: query, Limit: limit}, &resp)
	return resp, err
}

// LexicalSearch runs exact text matching only.
func (c *Client) LexicalSearch(ctx context.Context, query string, limit int) (Response, error) {
	var resp Response
	err := c.post(ctx, "/v1/search/lexical", searchRequest{Query: query, Limit: limit}, &resp)
	return resp, err
}

// PriceSearch runs a hybrid search keeping only listings at or below maxPrice.
func (c *Client) PriceSearch(ctx context.Context, query string, limit int, maxPrice float64) (Response, error) {
	var resp Response
	err := c.post(ctx, "/v1/search/price", priceSearchRequest{Query: query, Limit: limit, MaxPrice: maxPrice}, &resp)
	return resp, err
}

type reindexResponse struct {
	IndexedListings int `json:"indexed_listings"`
}

// Reindex rebuilds the server's vector index. Returns the number of indexed
// listings.
func (c *Client) Reindex(ctx context.Context) (int, error) {
	var resp reindexResponse
	err := c.post(ctx, "/v1/admin/reindex", nil, &resp)
	return resp.IndexedListings, err
}

// Stats fetches cache and index statistics.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var resp Stats
	err := c.get(ctx, "/v1/stats", &resp)
	return resp, err
}

// Health fetches the server health report. A degraded server still returns
// a report and a nil error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var resp Health
	err := c.get(ctx, "/healthz", &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("searchd: encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("searchd: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("searchd: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("searchd: %w", err)
	}
	defer resp.Body.Close()

	// Health reports ride on 503 with a valid body.
	if resp.StatusCode >= 400 && !(req.URL.Path == "/healthz" && resp.StatusCode == http.StatusServiceUnavailable) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("searchd: decode response: %w", err)
	}
	return nil
}
