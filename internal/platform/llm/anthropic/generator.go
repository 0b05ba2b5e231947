package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

type Generator struct {
	client *anthropic.Client
	model  string
}

func New(apiKey, model string, opts ...option.RequestOption) (*Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("anthropic generator: missing api key")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Generator{client: &client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	rsp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}
	var b strings.Builder
	for _, block := range rsp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String(), nil
}
