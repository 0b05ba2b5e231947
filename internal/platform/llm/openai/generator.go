package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

type Generator struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai generator: missing api key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if u := strings.TrimSpace(baseURL); u != "" {
		cfg.BaseURL = strings.TrimRight(u, "/")
	}
	return &Generator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(rsp.Choices) == 0 {
		return "", errors.New("openai generate: no choices")
	}
	return rsp.Choices[0].Message.Content, nil
}
