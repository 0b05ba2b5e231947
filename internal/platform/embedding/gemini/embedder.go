package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "models/embedding-001"

type Embedder struct {
	client *genai.Client
	doc    *genai.EmbeddingModel
	query  *genai.EmbeddingModel
}

func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Embedder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini embedder: missing api key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	doc := client.EmbeddingModel(model)
	doc.TaskType = genai.TaskTypeRetrievalDocument
	query := client.EmbeddingModel(model)
	query.TaskType = genai.TaskTypeRetrievalQuery
	return &Embedder{client: client, doc: doc, query: query}, nil
}

func (e *Embedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return embed(ctx, e.doc, text)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embed(ctx, e.query, text)
}

func (e *Embedder) Close() error {
	return e.client.Close()
}

func embed(ctx context.Context, m *genai.EmbeddingModel, text string) ([]float32, error) {
	rsp, err := m.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if rsp == nil || rsp.Embedding == nil || len(rsp.Embedding.Values) == 0 {
		return nil, errors.New("gemini embed: empty response")
	}
	return rsp.Embedding.Values, nil
}
