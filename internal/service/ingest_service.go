package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/logger"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/embedding"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

const embedBatchSize = 32

type IIngestService interface {
	// IngestAll indexes every (book, version) in the catalog. One failing
	// document is isolated in its report; the batch continues.
	IngestAll(ctx context.Context, force bool) []dto.IngestReport

	// IngestBook indexes one edition. With force the existing collection is
	// dropped first; without it a populated collection is skipped.
	IngestBook(ctx context.Context, bookName, version string, force bool) dto.IngestReport
}

type ingestService struct {
	catalog  *catalog.Catalog
	resolver *catalog.VersionResolver
	parser   *document.Parser
	embedder embedding.EmbeddingProvider
	store    vectorstore.VectorStore
	booksDir string
	logger   logger.ILogger
}

func NewIngestService(
	cat *catalog.Catalog,
	resolver *catalog.VersionResolver,
	parser *document.Parser,
	embedder embedding.EmbeddingProvider,
	store vectorstore.VectorStore,
	booksDir string,
	sysLogger logger.ILogger,
) IIngestService {
	return &ingestService{
		catalog:  cat,
		resolver: resolver,
		parser:   parser,
		embedder: embedder,
		store:    store,
		booksDir: booksDir,
		logger:   sysLogger,
	}
}

func (s *ingestService) IngestAll(ctx context.Context, force bool) []dto.IngestReport {
	var reports []dto.IngestReport
	for _, book := range s.catalog.Books {
		for _, v := range book.Versions {
			report := s.IngestBook(ctx, book.Name, v.Version, force)
			reports = append(reports, report)
		}
	}
	return reports
}

func (s *ingestService) IngestBook(ctx context.Context, bookName, version string, force bool) dto.IngestReport {
	validation := s.resolver.Validate(bookName, version)
	if !validation.IsValid {
		return dto.IngestReport{
			BookName: bookName,
			Version:  version,
			Error:    validation.Message,
		}
	}

	meta := validation.Metadata
	collection := s.resolver.CollectionName(meta.BookName, meta.Version)
	report := dto.IngestReport{
		Collection: collection,
		BookName:   meta.BookName,
		Version:    meta.Version,
	}

	if force {
		if err := s.store.DropCollection(ctx, collection); err != nil {
			report.Error = fmt.Sprintf("drop collection: %v", err)
			return report
		}
	} else {
		count, err := s.store.Count(ctx, collection)
		if err == nil && count > 0 {
			s.logger.Info("INGEST_SERVICE", "Collection already populated, skipping", map[string]interface{}{
				"collection": collection,
				"count":      count,
			})
			report.Skipped = true
			report.ChunkCount = int(count)
			return report
		}
	}

	chunks, err := s.parseDocument(ctx, meta)
	if err != nil {
		s.logger.Error("INGEST_SERVICE", "Document parsing failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		report.Error = err.Error()
		return report
	}

	if err := s.embedAndUpsert(ctx, collection, chunks); err != nil {
		s.logger.Error("INGEST_SERVICE", "Index build failed", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
		report.Error = err.Error()
		return report
	}

	report.ChunkCount = len(chunks)
	s.logger.Info("INGEST_SERVICE", "Collection built", map[string]interface{}{
		"collection": collection,
		"chunks":     len(chunks),
	})
	return report
}

// parseDocument runs the chunking pipeline over the edition's source file and
// stamps the book identity into every chunk's metadata.
func (s *ingestService) parseDocument(ctx context.Context, meta catalog.BookMetadata) ([]document.Chunk, error) {
	if meta.Filename == "" {
		return nil, fmt.Errorf("no source file registered for %s v%s", meta.BookName, meta.Version)
	}

	path := filepath.Join(s.booksDir, meta.Filename)
	fileType := strings.TrimPrefix(strings.ToLower(filepath.Ext(meta.Filename)), ".")

	chunks, err := s.parser.Parse(ctx, path, fileType)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", meta.Filename, err)
	}

	for i := range chunks {
		chunks[i].Metadata.BookId = meta.BookId
		chunks[i].Metadata.BookName = meta.BookName
		chunks[i].Metadata.Version = meta.Version
		chunks[i].Metadata.Filename = meta.Filename
		chunks[i].Metadata.FileType = fileType
	}
	return chunks, nil
}

func (s *ingestService) embedAndUpsert(ctx context.Context, collection string, chunks []document.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vectors, err := s.embedder.GenerateBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}

		entries := make([]vectorstore.Entry, len(batch))
		for i, c := range batch {
			entries[i] = vectorstore.Entry{
				Content:  c.Content,
				Metadata: c.Metadata,
				Vector:   vectors[i],
			}
		}
		if err := s.store.Upsert(ctx, collection, entries); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}
