package response

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/document"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/search"
)

type mockLLM struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	m.calls++
	if len(history) > 0 {
		m.lastPrompt = history[len(history)-1].Content
	}
	return m.response, m.err
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return m.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func docWith(chapter string, page int, score float64) search.RetrievalResult {
	return search.RetrievalResult{
		Content:  "队列研究是一种前瞻性研究方法。",
		Metadata: document.Metadata{Chapter: chapter, Page: page, Version: "7"},
		Score:    score,
	}
}

func TestGenerateEmptyDocsSkipsLLM(t *testing.T) {
	mock := &mockLLM{response: "should not be used"}
	g := NewGenerator(mock, discardLogger())

	result := g.Generate(context.Background(), "什么是队列研究", nil, "流行病学", "7", catalog.BookMetadata{})

	if mock.calls != 0 {
		t.Errorf("LLM called %d times, want 0", mock.calls)
	}
	if result.Confidence != 0.0 {
		t.Errorf("confidence = %f, want 0", result.Confidence)
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %v, want empty", result.Sources)
	}
	if !strings.Contains(result.Answer, "《流行病学》第7版") {
		t.Errorf("not-found answer should name the edition, got %q", result.Answer)
	}
}

func TestGenerateConfidenceFormula(t *testing.T) {
	mock := &mockLLM{response: "队列研究是……"}
	g := NewGenerator(mock, discardLogger())

	docs := []search.RetrievalResult{
		docWith("第3章", 45, 0.9),
		docWith("第3章", 46, 0.8),
		docWith("第4章", 60, 0.7),
	}
	result := g.Generate(context.Background(), "什么是队列研究", docs, "流行病学", "7", catalog.BookMetadata{})

	// 0.7*mean(0.9,0.8,0.7) + 0.3*min(3/3,1) = 0.7*0.8 + 0.3 = 0.86
	if result.Confidence != 0.86 {
		t.Errorf("confidence = %f, want 0.86", result.Confidence)
	}
	if result.Answer == "" {
		t.Error("answer is empty")
	}
	if len(result.Sources) != 3 {
		t.Errorf("got %d sources, want 3", len(result.Sources))
	}
}

func TestGenerateDeduplicatesSources(t *testing.T) {
	mock := &mockLLM{response: "答案"}
	g := NewGenerator(mock, discardLogger())

	// Pre-sorted by descending score; the first occurrence per (chapter, page)
	// must win.
	docs := []search.RetrievalResult{
		docWith("第1章", 5, 0.9),
		docWith("第1章", 5, 0.6),
	}
	result := g.Generate(context.Background(), "q", docs, "流行病学", "7", catalog.BookMetadata{})

	if len(result.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(result.Sources))
	}
	s := result.Sources[0]
	if s.Chapter != "第1章" || s.Page != 5 || s.Score != 0.9 {
		t.Errorf("source = %+v, want 第1章/5/0.9", s)
	}
}

func TestGeneratePromptCarriesContext(t *testing.T) {
	mock := &mockLLM{response: "答案"}
	g := NewGenerator(mock, discardLogger())

	docs := []search.RetrievalResult{docWith("第3章 研究设计", 45, 0.92)}
	meta := catalog.BookMetadata{VersionInfo: catalog.VersionInfo{ISBN: "978-7-117", Publisher: "人民卫生出版社"}}
	g.Generate(context.Background(), "什么是队列研究", docs, "流行病学", "7", meta)

	for _, want := range []string{"第3章 研究设计", "第45页", "978-7-117", "人民卫生出版社", "什么是队列研究", "队列研究是一种前瞻性研究方法。"} {
		if !strings.Contains(mock.lastPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateLLMFailureDegrades(t *testing.T) {
	g := NewGenerator(&mockLLM{err: errors.New("timeout")}, discardLogger())

	docs := []search.RetrievalResult{docWith("第1章", 1, 0.9)}
	result := g.Generate(context.Background(), "q", docs, "流行病学", "7", catalog.BookMetadata{})

	if result.Answer != GenerationFailedAnswer {
		t.Errorf("answer = %q", result.Answer)
	}
	if result.Confidence != 0.0 || len(result.Sources) != 0 {
		t.Errorf("degraded result = %+v", result)
	}
}
