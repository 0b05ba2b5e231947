// Package llm defines the single-prompt text generation seam used for answers.
package llm

import "context"

type Generator interface {
	// Generate returns the model text as is. Empty text is not an error.
	Generate(ctx context.Context, prompt string) (string, error)
}
