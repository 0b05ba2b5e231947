package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

type Generator struct {
	client *genai.Client
	model  string
}

// New dials Gemini with apiKey. opts are appended after the key.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini generator: missing api key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if rsp == nil || len(rsp.Candidates) == 0 {
		return "", errors.New("gemini generate: no candidates")
	}
	if rsp.Candidates[0].Content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func (g *Generator) Close() error {
	return g.client.Close()
}
