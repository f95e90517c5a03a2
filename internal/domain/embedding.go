package domain

import (
	"context"
)

// EmbeddingService turns texts into vectors, one per input, in order.
type EmbeddingService interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
