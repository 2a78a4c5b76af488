package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bazaria-cloud/searchd/internal/domain"
)

// Paraphraser generates query variants via chat completions.
type Paraphraser struct {
	client      *openai.Client
	model       string
	maxVariants int
	logger      *zap.Logger
}

// ParaphraserConfig holds the paraphraser settings.
type ParaphraserConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxVariants int
	Logger      *zap.Logger
}

// NewParaphraser creates an LLM-backed query paraphraser.
func NewParaphraser(cfg *ParaphraserConfig) *Paraphraser {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	maxVariants := cfg.MaxVariants
	if maxVariants <= 0 {
		maxVariants = 4
	}

	return &Paraphraser{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxVariants: maxVariants,
		logger:      cfg.Logger,
	}
}

const variantPrompt = `You rewrite marketplace search queries. Generate %d alternative phrasings of the query below, covering synonyms and register variants, in the query's language. Return one phrasing per line with no numbering and no extra text.

Query: %s`

// GenerateVariants implements domain.Paraphraser. The returned slice holds at
// most the configured variant count and never includes the original query.
func (p *Paraphraser) GenerateVariants(ctx context.Context, query string) ([]string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(variantPrompt, p.maxVariants, query),
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("paraphrase %q: %w: %w", query, domain.ErrExpansion, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("paraphrase %q: empty completion: %w", query, domain.ErrExpansion)
	}

	variants := parseVariants(resp.Choices[0].Message.Content, query, p.maxVariants)
	p.logger.Debug("Generated query variants",
		zap.String("query", query),
		zap.Strings("variants", variants),
	)
	return variants, nil
}

// parseVariants splits a one-per-line completion into clean variant strings,
// dropping blanks, list markers, duplicates, and echoes of the original query.
func parseVariants(content, original string, limit int) []string {
	seen := map[string]bool{strings.ToLower(strings.TrimSpace(original)): true}
	var variants []string

	for _, line := range strings.Split(content, "\n") {
		v := strings.TrimSpace(line)
		v = strings.TrimLeft(v, "-*0123456789. ")
		v = strings.Trim(v, `"`)
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		variants = append(variants, v)
		if len(variants) == limit {
			break
		}
	}
	return variants
}
