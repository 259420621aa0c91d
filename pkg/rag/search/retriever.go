// Package search retrieves the chunks most relevant to a question from one
// collection of the vector store.
package search

import (
	"context"
	"log"
	"sort"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/embedding"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

// RetrievalResult is one retrieved chunk with its similarity score in [0, 1].
type RetrievalResult struct {
	Content  string
	Metadata document.Metadata
	Score    float64
}

// Config encapsulates search parameters
type Config struct {
	TopK           int
	ScoreThreshold float64
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK:           5,
		ScoreThreshold: 0.5,
	}
}

// Retriever runs vector search and score filtering over one collection.
type Retriever struct {
	store    vectorstore.VectorStore
	embedder embedding.EmbeddingProvider
	logger   *log.Logger
}

func NewRetriever(store vectorstore.VectorStore, embedder embedding.EmbeddingProvider, logger *log.Logger) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve returns the chunks most similar to question, filtered by the score
// threshold and sorted by descending score. If version is non-empty, chunks
// whose stored metadata carries a different version are dropped (stale or
// mixed index contents). Index-layer failures are absorbed into an empty
// result; only a failure to embed the question itself is returned as an error.
func (r *Retriever) Retrieve(ctx context.Context, collection, question, version string, config Config) ([]RetrievalResult, error) {
	vector, err := r.embedder.Generate(ctx, question)
	if err != nil {
		r.logger.Printf("[ERROR] Question embedding failed: %v", err)
		return nil, err
	}

	raw, err := r.store.Search(ctx, collection, vector, config.TopK)
	if err != nil {
		r.logger.Printf("[ERROR] Vector search failed on %s: %v", collection, err)
		return []RetrievalResult{}, nil
	}

	convert := r.store.Converter()

	var results []RetrievalResult
	for i, hit := range raw {
		score := convert(hit.Distance)
		if score < config.ScoreThreshold {
			r.logger.Printf("[DEBUG] Candidate %d: score=%.4f [FILTERED]", i+1, score)
			continue
		}
		if version != "" && hit.Metadata.Version != "" && hit.Metadata.Version != version {
			r.logger.Printf("[DEBUG] Candidate %d: version %q != %q [DROPPED]", i+1, hit.Metadata.Version, version)
			continue
		}
		results = append(results, RetrievalResult{
			Content:  hit.Content,
			Metadata: hit.Metadata,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	r.logger.Printf("[SEARCH] %s: %d/%d candidates kept", collection, len(results), len(raw))
	return results, nil
}
