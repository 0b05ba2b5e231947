package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yungbote/docqa-backend/internal/platform/embedding"
	geminiembed "github.com/yungbote/docqa-backend/internal/platform/embedding/gemini"
	openaiembed "github.com/yungbote/docqa-backend/internal/platform/embedding/openai"
	"github.com/yungbote/docqa-backend/internal/platform/llm"
	anthropicllm "github.com/yungbote/docqa-backend/internal/platform/llm/anthropic"
	geminillm "github.com/yungbote/docqa-backend/internal/platform/llm/gemini"
	openaillm "github.com/yungbote/docqa-backend/internal/platform/llm/openai"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type ProviderConfigErrorCode string

const (
	ProviderConfigErrorUnsupported   ProviderConfigErrorCode = "unsupported_provider"
	ProviderConfigErrorMissingAPIKey ProviderConfigErrorCode = "missing_api_key"
	ProviderConfigErrorInitFailed    ProviderConfigErrorCode = "init_failed"
)

// ProviderConfigError reports why an embedding or chat provider could not be
// selected at boot. Kind is "embedding" or "chat".
type ProviderConfigError struct {
	Code     ProviderConfigErrorCode
	Kind     string
	Provider string
	EnvVar   string
	Cause    error
}

func (e *ProviderConfigError) Error() string {
	if e == nil {
		return "provider config error"
	}
	switch e.Code {
	case ProviderConfigErrorUnsupported:
		return fmt.Sprintf("unsupported %s provider %q", e.Kind, e.Provider)
	case ProviderConfigErrorMissingAPIKey:
		return fmt.Sprintf("%s provider %q requires %s", e.Kind, e.Provider, e.EnvVar)
	default:
		return fmt.Sprintf("init %s provider %q: %v", e.Kind, e.Provider, e.Cause)
	}
}

func (e *ProviderConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Clients holds the hosted model clients. Closers are the ones that own
// network resources (the genai clients).
type Clients struct {
	Embedder  embedding.Embedder
	Generator llm.Generator

	closers []io.Closer
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	var out Clients
	emb, err := newEmbedder(ctx, cfg)
	if err != nil {
		return Clients{}, err
	}
	out.Embedder = emb
	out.track(emb)

	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Generator = gen
	out.track(gen)

	log.Info(
		"Model providers selected",
		"embedding_provider", cfg.EmbeddingProvider,
		"embedding_model", cfg.EmbeddingModel,
		"chat_provider", cfg.ChatProvider,
		"chat_model", cfg.ChatModel,
	)
	return out, nil
}

func newEmbedder(ctx context.Context, cfg Config) (embedding.Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.EmbeddingProvider))
	switch provider {
	case ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, missingKey("embedding", provider, "GOOGLE_API_KEY")
		}
		e, err := geminiembed.New(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			return nil, initFailed("embedding", provider, err)
		}
		return e, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, missingKey("embedding", provider, "OPENAI_API_KEY")
		}
		e, err := openaiembed.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)
		if err != nil {
			return nil, initFailed("embedding", provider, err)
		}
		return e, nil
	default:
		return nil, &ProviderConfigError{Code: ProviderConfigErrorUnsupported, Kind: "embedding", Provider: provider}
	}
}

func newGenerator(ctx context.Context, cfg Config) (llm.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.ChatProvider))
	switch provider {
	case ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, missingKey("chat", provider, "GOOGLE_API_KEY")
		}
		g, err := geminillm.New(ctx, cfg.GoogleAPIKey, cfg.ChatModel)
		if err != nil {
			return nil, initFailed("chat", provider, err)
		}
		return g, nil
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, missingKey("chat", provider, "OPENAI_API_KEY")
		}
		g, err := openaillm.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.ChatModel)
		if err != nil {
			return nil, initFailed("chat", provider, err)
		}
		return g, nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, missingKey("chat", provider, "ANTHROPIC_API_KEY")
		}
		g, err := anthropicllm.New(cfg.AnthropicAPIKey, cfg.ChatModel)
		if err != nil {
			return nil, initFailed("chat", provider, err)
		}
		return g, nil
	default:
		return nil, &ProviderConfigError{Code: ProviderConfigErrorUnsupported, Kind: "chat", Provider: provider}
	}
}

func missingKey(kind, provider, env string) error {
	return &ProviderConfigError{Code: ProviderConfigErrorMissingAPIKey, Kind: kind, Provider: provider, EnvVar: env}
}

func initFailed(kind, provider string, err error) error {
	return &ProviderConfigError{Code: ProviderConfigErrorInitFailed, Kind: kind, Provider: provider, Cause: err}
}

func (c *Clients) track(v any) {
	if cl, ok := v.(io.Closer); ok {
		c.closers = append(c.closers, cl)
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
}
