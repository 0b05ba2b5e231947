package vectorstore

import "context"

type VectorStore interface {
	// Upsert writes vectors into namespace, replacing any with the same ID.
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	// QueryMatches returns up to topK vectors by similarity (higher is better).
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int) ([]VectorMatch, error)
	DeleteNamespace(ctx context.Context, namespace string) error
}

type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

type VectorMatch struct {
	ID       string
	Score    float64
	Metadata map[string]any
}
