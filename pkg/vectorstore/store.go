// Package vectorstore persists chunk embeddings partitioned by collection and
// answers nearest-neighbour queries over them.
package vectorstore

import (
	"context"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
)

// Entry is one embedded chunk to persist.
type Entry struct {
	Content  string
	Metadata document.Metadata
	Vector   []float32
}

// SearchResult is one nearest-neighbour hit. Distance semantics depend on the
// backend metric; convert to a similarity with the store's converter.
type SearchResult struct {
	Content  string
	Metadata document.Metadata
	Distance float64
}

// DistanceConverter maps a backend distance to a similarity in [0, 1].
type DistanceConverter func(distance float64) float64

// InverseDistanceSimilarity converts an unbounded distance (e.g. L2) with
// 1/(1+d): distance 0 scores 1.0 and large distances approach 0.
func InverseDistanceSimilarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// CosineSimilarity converts a cosine distance, which pgvector defines as
// 1 - cosine_similarity.
func CosineSimilarity(distance float64) float64 {
	return 1.0 - distance
}

// VectorStore is the contract for any embedding storage backend.
type VectorStore interface {
	// Upsert writes entries into a collection.
	Upsert(ctx context.Context, collection string, entries []Entry) error

	// Search returns the topK nearest entries in a collection, closest first.
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error)

	// Count reports how many entries a collection holds.
	Count(ctx context.Context, collection string) (int64, error)

	// DropCollection removes a collection and all its entries.
	DropCollection(ctx context.Context, collection string) error

	// Collections lists all collection names present in the store.
	Collections(ctx context.Context) ([]string, error)

	// Converter returns the distance-to-similarity conversion matching the
	// backend's metric.
	Converter() DistanceConverter
}
