package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	// Generate embeds a single text.
	Generate(ctx context.Context, text string) ([]float32, error)

	// GenerateBatch embeds a batch of texts, returning vectors in input order.
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
}
