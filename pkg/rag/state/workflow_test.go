package state

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/intent"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/response"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/search"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/vectorstore"
)

// scriptedLLM answers the parse prompt with a canned JSON extraction and any
// other prompt with a fixed answer.
type scriptedLLM struct {
	parseJSON string
	answer    string
}

func (s *scriptedLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	last := history[len(history)-1].Content
	if strings.Contains(last, "请解析") {
		return s.parseJSON, nil
	}
	return s.answer, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type fixedEmbedder struct{}

func (fixedEmbedder) Generate(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (f fixedEmbedder) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i], _ = f.Generate(ctx, texts[i])
	}
	return vectors, nil
}

func testWorkflow(t *testing.T, mock llm.LLMProvider) *Workflow {
	t.Helper()

	cat := &catalog.Catalog{Books: []catalog.Book{
		{
			Id:   "epidemiology",
			Name: "流行病学",
			Versions: []catalog.VersionInfo{
				{Version: "7", Filename: "epi_v7.pdf"},
				{Version: "8", Filename: "epi_v8.pdf"},
			},
		},
	}}
	resolver := catalog.NewVersionResolver(cat)

	store := vectorstore.NewMemoryStore()
	err := store.Upsert(context.Background(), "epidemiology_v8", []vectorstore.Entry{
		{
			Content:  "队列研究是一种前瞻性研究方法，随访比较发病率差异。",
			Metadata: document.Metadata{Chapter: "第3章 研究设计", Page: 45, Version: "8"},
			Vector:   []float32{1, 0},
		},
	})
	require.NoError(t, err)

	logger := log.New(io.Discard, "", 0)
	return NewWorkflow(
		intent.NewParser(mock, logger),
		resolver,
		search.NewRetriever(store, fixedEmbedder{}, logger),
		response.NewGenerator(mock, logger),
		search.DefaultConfig(),
		logger,
	)
}

func TestQueryEndToEnd(t *testing.T) {
	w := testWorkflow(t, &scriptedLLM{
		parseJSON: `{"book_name": "流行病学", "version": "8", "question": "什么是队列研究", "confidence": 0.95}`,
		answer:    "队列研究是一种前瞻性研究方法。\n\n> **来源：《流行病学》第8版，第3章，第45页**",
	})

	result := w.Query(context.Background(), "流行病学第8版，什么是队列研究？")

	require.Equal(t, "流行病学", result.BookName)
	require.Equal(t, "8", result.Version)
	require.Equal(t, "什么是队列研究", result.Question)
	require.NotEmpty(t, result.Answer)
	require.GreaterOrEqual(t, result.Confidence, 0.0)
	require.LessOrEqual(t, result.Confidence, 1.0)
	require.NotEmpty(t, result.Sources)
	require.Equal(t, "第3章 研究设计", result.Sources[0].Chapter)
}

func TestQueryUnknownBook(t *testing.T) {
	w := testWorkflow(t, &scriptedLLM{
		parseJSON: `{"book_name": "内科学", "version": "1", "question": "什么是高血压", "confidence": 0.9}`,
	})

	result := w.Query(context.Background(), "内科学第1版，什么是高血压？")

	require.Equal(t, 0.0, result.Confidence)
	require.Empty(t, result.Sources)
	// The error answer appends the full catalog listing.
	require.Contains(t, result.Answer, "流行病学")
	require.Contains(t, result.Answer, "第7版")
}

func TestQueryUnknownVersion(t *testing.T) {
	w := testWorkflow(t, &scriptedLLM{
		parseJSON: `{"book_name": "流行病学", "version": "10", "question": "q", "confidence": 0.9}`,
	})

	result := w.Query(context.Background(), "流行病学第10版？")

	require.Equal(t, 0.0, result.Confidence)
	require.Contains(t, result.Answer, "没有第10版")
	require.Contains(t, result.Answer, "第8版")
}

func TestQueryDefaultsToLatestVersion(t *testing.T) {
	w := testWorkflow(t, &scriptedLLM{
		parseJSON: `{"book_name": "流行病学", "version": "", "question": "什么是队列研究", "confidence": 0.9}`,
		answer:    "队列研究是……",
	})

	result := w.Query(context.Background(), "流行病学里什么是队列研究？")

	// Version 8 is the numerically greatest edition in the catalog.
	require.Equal(t, "8", result.Version)
	require.NotEmpty(t, result.Answer)
}

func TestQueryEmptyRetrievalStillAnswers(t *testing.T) {
	w := testWorkflow(t, &scriptedLLM{
		parseJSON: `{"book_name": "流行病学", "version": "7", "question": "什么是队列研究", "confidence": 0.9}`,
		answer:    "should not be used",
	})

	// Collection epidemiology_v7 holds nothing, so retrieval returns empty and
	// the generator answers not-found without calling the LLM.
	result := w.Query(context.Background(), "流行病学第7版，什么是队列研究？")

	require.Equal(t, 0.0, result.Confidence)
	require.Contains(t, result.Answer, "没有找到")
	require.Contains(t, result.Answer, "《流行病学》第7版")
}
