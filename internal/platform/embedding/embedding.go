// Package embedding defines the text embedding seam. Documents and queries are
// embedded separately because some providers tune vectors per task.
package embedding

import "context"

type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
