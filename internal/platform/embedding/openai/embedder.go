package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "text-embedding-3-small"

// Embedder uses the same vectors for documents and queries.
type Embedder struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) (*Embedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai embedder: missing api key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if u := strings.TrimSpace(baseURL); u != "" {
		cfg.BaseURL = strings.TrimRight(u, "/")
	}
	return &Embedder{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text)
}

func (e *Embedder) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("openai embed: empty response")
	}
	return resp.Data[0].Embedding, nil
}
