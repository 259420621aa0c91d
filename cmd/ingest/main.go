package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/config"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/logger"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/service"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/database"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/embedding"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/ocr"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

func main() {
	var (
		bookName = flag.String("book", "", "book name to ingest (default: all books in catalog)")
		version  = flag.String("version", "", "edition to ingest (requires -book)")
		force    = flag.Bool("force", false, "drop and rebuild existing collections")
	)
	flag.Parse()

	if *version != "" && *bookName == "" {
		log.Fatal("Error: -version requires -book")
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	cat, err := catalog.Load(cfg.App.CatalogPath)
	if err != nil {
		log.Fatalf("Error: Failed to load catalog: %v", err)
	}
	resolver := catalog.NewVersionResolver(cat)

	embedder, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingBaseURL,
		cfg.Ai.EmbeddingAPIKey,
	)
	if err != nil {
		log.Fatalf("Error: Failed to initialize embedding provider: %v", err)
	}

	store := vectorstore.NewPgVectorStore(db)
	if err := store.Migrate(); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	parserOpts := []document.ParserOption{document.WithLogger(log.New(os.Stdout, "", log.LstdFlags))}
	if ocr.Available() {
		parserOpts = append(parserOpts, document.WithOCR(ocr.NewTesseractEngine()))
	}
	docParser := document.NewParser(cfg.Document.ChunkSize, cfg.Document.ChunkOverlap, parserOpts...)

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	ingestService := service.NewIngestService(cat, resolver, docParser, embedder, store, cfg.App.BooksDir, sysLogger)

	ctx := context.Background()

	color.Cyan("🚀 Building textbook index (books dir: %s)\n", cfg.App.BooksDir)

	var reports []dto.IngestReport
	if *bookName != "" && *version != "" {
		reports = append(reports, ingestService.IngestBook(ctx, *bookName, *version, *force))
	} else if *bookName != "" {
		for _, book := range cat.Books {
			if book.Name != *bookName {
				continue
			}
			for _, v := range book.Versions {
				reports = append(reports, ingestService.IngestBook(ctx, book.Name, v.Version, *force))
			}
		}
		if len(reports) == 0 {
			log.Fatalf("Error: Book %q not found in catalog", *bookName)
		}
	} else {
		reports = ingestService.IngestAll(ctx, *force)
	}

	failed := 0
	for _, r := range reports {
		switch {
		case r.Error != "":
			failed++
			color.Red("✗ %s 第%s版: %s", r.BookName, r.Version, r.Error)
		case r.Skipped:
			color.Yellow("- %s 第%s版: already indexed (%d chunks), skipped", r.BookName, r.Version, r.ChunkCount)
		default:
			color.Green("✓ %s 第%s版: %d chunks → %s", r.BookName, r.Version, r.ChunkCount, r.Collection)
		}
	}

	color.Cyan("\nDone: %d collections processed, %d failed", len(reports), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
