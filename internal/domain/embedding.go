package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Paraphraser generates alternative phrasings of a query for multi-query
// retrieval. The returned slice excludes the original query.
type Paraphraser interface {
	GenerateVariants(ctx context.Context, query string) ([]string, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}
