package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/docqa-backend/internal/platform/embedding"
	"github.com/yungbote/docqa-backend/internal/platform/llm"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore"
)

const tracerName = "github.com/yungbote/docqa-backend/internal/app"

// probe opens a span and returns a func that closes it, recording err and
// logging the duration at debug level.
type probe struct {
	log    *logger.Logger
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

func newProbe(log *logger.Logger, component, provider string) probe {
	return probe{
		log:    log.With("service", component, "provider", provider),
		tracer: otel.Tracer(tracerName),
		attrs: []attribute.KeyValue{
			attribute.String("docqa.component", component),
			attribute.String("docqa.provider", provider),
		},
	}
}

func (p probe) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := p.tracer.Start(ctx, op, trace.WithAttributes(append(attrs, p.attrs...)...))
	began := time.Now()
	return ctx, func(err error) {
		dur := time.Since(began)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.log.Warn("call failed", "op", op, "duration_ms", dur.Milliseconds(), "error", err)
		} else {
			p.log.Debug("call finished", "op", op, "duration_ms", dur.Milliseconds())
		}
		span.End()
	}
}

type instrumentedVectorStore struct {
	inner vectorstore.VectorStore
	probe probe
}

func instrumentVectorStore(log *logger.Logger, provider string, inner vectorstore.VectorStore) vectorstore.VectorStore {
	if inner == nil {
		return nil
	}
	return &instrumentedVectorStore{inner: inner, probe: newProbe(log, "VectorStore", provider)}
}

func (s *instrumentedVectorStore) Upsert(ctx context.Context, namespace string, vectors []vectorstore.Vector) (err error) {
	ctx, done := s.probe.start(ctx, "vectorstore.upsert",
		attribute.String("vector.namespace", namespace),
		attribute.Int("vector.count", len(vectors)),
	)
	defer func() { done(err) }()
	return s.inner.Upsert(ctx, namespace, vectors)
}

func (s *instrumentedVectorStore) QueryMatches(ctx context.Context, namespace string, q []float32, topK int) (out []vectorstore.VectorMatch, err error) {
	ctx, done := s.probe.start(ctx, "vectorstore.query_matches",
		attribute.String("vector.namespace", namespace),
		attribute.Int("vector.top_k", topK),
	)
	defer func() { done(err) }()
	return s.inner.QueryMatches(ctx, namespace, q, topK)
}

func (s *instrumentedVectorStore) DeleteNamespace(ctx context.Context, namespace string) (err error) {
	ctx, done := s.probe.start(ctx, "vectorstore.delete_namespace",
		attribute.String("vector.namespace", namespace),
	)
	defer func() { done(err) }()
	return s.inner.DeleteNamespace(ctx, namespace)
}

type instrumentedEmbedder struct {
	inner embedding.Embedder
	probe probe
}

func instrumentEmbedder(log *logger.Logger, provider string, inner embedding.Embedder) embedding.Embedder {
	if inner == nil {
		return nil
	}
	return &instrumentedEmbedder{inner: inner, probe: newProbe(log, "Embedder", provider)}
}

func (e *instrumentedEmbedder) EmbedDocument(ctx context.Context, text string) (out []float32, err error) {
	ctx, done := e.probe.start(ctx, "embedding.document", attribute.Int("text.runes", len([]rune(text))))
	defer func() { done(err) }()
	return e.inner.EmbedDocument(ctx, text)
}

func (e *instrumentedEmbedder) EmbedQuery(ctx context.Context, text string) (out []float32, err error) {
	ctx, done := e.probe.start(ctx, "embedding.query", attribute.Int("text.runes", len([]rune(text))))
	defer func() { done(err) }()
	return e.inner.EmbedQuery(ctx, text)
}

type instrumentedGenerator struct {
	inner llm.Generator
	probe probe
}

func instrumentGenerator(log *logger.Logger, provider string, inner llm.Generator) llm.Generator {
	if inner == nil {
		return nil
	}
	return &instrumentedGenerator{inner: inner, probe: newProbe(log, "Generator", provider)}
}

func (g *instrumentedGenerator) Generate(ctx context.Context, prompt string) (out string, err error) {
	ctx, done := g.probe.start(ctx, "llm.generate", attribute.Int("prompt.runes", len([]rune(prompt))))
	defer func() { done(err) }()
	return g.inner.Generate(ctx, prompt)
}
