package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
)

// ChunkEmbedding is the persistence model for one embedded chunk.
type ChunkEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection     string          `gorm:"type:varchar(255);not null;index"`
	Content        string          `gorm:"type:text"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text dimension
}

func (ChunkEmbedding) TableName() string {
	return "chunk_embeddings"
}

// PgVectorStore implements VectorStore on PostgreSQL with the pgvector
// extension, using cosine distance.
type PgVectorStore struct {
	db *gorm.DB
}

var _ VectorStore = &PgVectorStore{}

func NewPgVectorStore(db *gorm.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// Migrate ensures the pgvector extension and the embeddings table exist.
func (s *PgVectorStore) Migrate() error {
	if err := s.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	return s.db.AutoMigrate(&ChunkEmbedding{})
}

func (s *PgVectorStore) Upsert(ctx context.Context, collection string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	models := make([]*ChunkEmbedding, len(entries))
	for i, e := range entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal chunk metadata: %w", err)
		}
		models[i] = &ChunkEmbedding{
			Collection:     collection,
			Content:        e.Content,
			Metadata:       meta,
			EmbeddingValue: pgvector.NewVector(e.Vector),
		}
	}

	return s.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (s *PgVectorStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	type row struct {
		Content  string
		Metadata datatypes.JSON
		Distance float64
	}
	var rows []row

	queryVector := pgvector.NewVector(vector)

	err := s.db.WithContext(ctx).
		Table("chunk_embeddings").
		Select("content, metadata, embedding_value <=> ? as distance", queryVector).
		Where("collection = ?", collection).
		Order("distance ASC").
		Limit(topK).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(rows))
	for i, r := range rows {
		var meta document.Metadata
		if len(r.Metadata) > 0 {
			if err := json.Unmarshal(r.Metadata, &meta); err != nil {
				return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
			}
		}
		results[i] = SearchResult{
			Content:  r.Content,
			Metadata: meta,
			Distance: r.Distance,
		}
	}
	return results, nil
}

func (s *PgVectorStore) Count(ctx context.Context, collection string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&ChunkEmbedding{}).
		Where("collection = ?", collection).
		Count(&count).Error
	return count, err
}

func (s *PgVectorStore) DropCollection(ctx context.Context, collection string) error {
	return s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&ChunkEmbedding{}).Error
}

func (s *PgVectorStore) Collections(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Model(&ChunkEmbedding{}).
		Distinct("collection").
		Order("collection").
		Pluck("collection", &names).Error
	return names, err
}

// Converter reflects the <=> operator: pgvector cosine distance is
// 1 - cosine_similarity.
func (s *PgVectorStore) Converter() DistanceConverter {
	return CosineSimilarity
}
