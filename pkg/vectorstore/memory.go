package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using Euclidean distance. It backs
// tests and small single-node deployments that cannot run PostgreSQL.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Entry
}

var _ VectorStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]Entry),
	}
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = append(s.collections[collection], entries...)
	return nil
}

func (s *MemoryStore) Search(_ context.Context, collection string, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.collections[collection]
	results := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		d, err := euclideanDistance(vector, e.Vector)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{
			Content:  e.Content,
			Metadata: e.Metadata,
			Distance: d,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collections[collection])), nil
}

func (s *MemoryStore) DropCollection(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *MemoryStore) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Converter() DistanceConverter {
	return InverseDistanceSimilarity
}

func euclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
