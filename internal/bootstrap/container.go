package bootstrap

import (
	"log"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/config"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/controller"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/logger"
	"github.com/DianaLeoTang/DT-Study-Companion/internal/service"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/embedding"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm/factory"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/ocr"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/intent"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/response"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/search"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/state"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

const ingestTopic = "ingest.book"

type Container struct {
	// Controllers
	QueryController  controller.IQueryController
	BookController   controller.IBookController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for the ingest CLI to reuse the same wiring.
	IngestService service.IIngestService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	cat, err := catalog.Load(cfg.App.CatalogPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load book catalog: %v", err)
	}
	resolver := catalog.NewVersionResolver(cat)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.EmbeddingModel,
		cfg.Ai.EmbeddingBaseURL,
		cfg.Ai.EmbeddingAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Ai.LLMAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Storage & Pipeline
	store := vectorstore.NewPgVectorStore(db)

	stageLogger := log.New(os.Stdout, "", log.LstdFlags)

	parserOpts := []document.ParserOption{document.WithLogger(stageLogger)}
	if ocr.Available() {
		parserOpts = append(parserOpts, document.WithOCR(ocr.NewTesseractEngine()))
		log.Printf("[INFO] OCR fallback enabled (tesseract found on PATH)")
	}
	docParser := document.NewParser(cfg.Document.ChunkSize, cfg.Document.ChunkOverlap, parserOpts...)

	queryParser := intent.NewParser(llmProvider, stageLogger)
	retriever := search.NewRetriever(store, embeddingProvider, stageLogger)
	generator := response.NewGenerator(llmProvider, stageLogger)
	searchConfig := search.Config{
		TopK:           cfg.Rag.TopK,
		ScoreThreshold: cfg.Rag.ScoreThreshold,
	}
	workflow := state.NewWorkflow(queryParser, resolver, retriever, generator, searchConfig, stageLogger)

	// 5. Services
	cacheTTL := time.Duration(cfg.Rag.CacheTTLSeconds) * time.Second
	queryService := service.NewQueryService(workflow, cacheTTL, sysLogger)
	bookService := service.NewBookService(cat, resolver, store)
	ingestService := service.NewIngestService(cat, resolver, docParser, embeddingProvider, store, cfg.App.BooksDir, sysLogger)

	publisherService := service.NewPublisherService(ingestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, ingestTopic, ingestService)

	// 6. Controllers
	return &Container{
		QueryController:  controller.NewQueryController(queryService),
		BookController:   controller.NewBookController(bookService, publisherService),
		HealthController: controller.NewHealthController(),

		ConsumerService: consumerService,
		IngestService:   ingestService,
	}
}
