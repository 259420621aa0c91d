package intent

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
)

type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return m.Chat(ctx, nil, opts...)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestParseCleanJSON(t *testing.T) {
	p := NewParser(&mockLLM{
		response: `{"book_name": "流行病学", "version": "8", "question": "什么是队列研究", "confidence": 0.95}`,
	}, discardLogger())

	got := p.Parse(context.Background(), "流行病学第8版，什么是队列研究？")
	if got.BookName != "流行病学" || got.Version != "8" {
		t.Errorf("parsed = %+v", got)
	}
	if got.Question != "什么是队列研究" {
		t.Errorf("question = %q", got.Question)
	}
	if got.Confidence != 0.95 {
		t.Errorf("confidence = %f, want 0.95", got.Confidence)
	}
}

func TestParseJSONEmbeddedInProse(t *testing.T) {
	p := NewParser(&mockLLM{
		response: "解析结果如下：\n```json\n{\"book_name\": \"生理学\", \"version\": \"9\", \"question\": \"心脏的功能\", \"confidence\": 0.9}\n```\n以上。",
	}, discardLogger())

	got := p.Parse(context.Background(), "生理学第9版中关于心脏的内容")
	if got.BookName != "生理学" || got.Version != "9" || got.Question != "心脏的功能" {
		t.Errorf("parsed = %+v", got)
	}
}

func TestParseScrapedFields(t *testing.T) {
	p := NewParser(&mockLLM{
		response: "书名：病理学\n版本：第5版\n问题：肿瘤的发病机制是什么",
	}, discardLogger())

	got := p.Parse(context.Background(), "病理学，肿瘤的发病机制是什么？")
	if got.BookName != "病理学" {
		t.Errorf("book = %q, want 病理学", got.BookName)
	}
	if got.Version != "5" {
		t.Errorf("version = %q, want 5 (digits only)", got.Version)
	}
	if got.Question != "肿瘤的发病机制是什么" {
		t.Errorf("question = %q", got.Question)
	}
	if got.Confidence != 0.5 {
		t.Errorf("scraped confidence = %f, want 0.5", got.Confidence)
	}
}

func TestParseLLMFailureFallsBack(t *testing.T) {
	raw := "什么是高血压？"
	p := NewParser(&mockLLM{err: errors.New("connection refused")}, discardLogger())

	got := p.Parse(context.Background(), raw)
	if got.BookName != "" || got.Version != "" {
		t.Errorf("fallback should leave book/version empty: %+v", got)
	}
	if got.Question != raw {
		t.Errorf("fallback question = %q, want raw query", got.Question)
	}
	if got.Confidence != 0.0 {
		t.Errorf("fallback confidence = %f, want 0", got.Confidence)
	}
}

func TestParseUnusableResponseFallsBack(t *testing.T) {
	raw := "随便说点什么"
	p := NewParser(&mockLLM{response: "我不明白你的意思。"}, discardLogger())

	got := p.Parse(context.Background(), raw)
	if got.Question != raw || got.Confidence != 0.0 {
		t.Errorf("fallback = %+v", got)
	}
}

func TestCleanResult(t *testing.T) {
	tests := []struct {
		name string
		in   ParsedQuery
		want ParsedQuery
	}{
		{
			"book markers and version stripped from name",
			ParsedQuery{BookName: "《流行病学》第7版", Version: "第7版", Question: "q", Confidence: 0.9},
			ParsedQuery{BookName: "流行病学", Version: "7", Question: "q", Confidence: 0.9},
		},
		{
			"empty question replaced with raw query",
			ParsedQuery{BookName: "生理学", Confidence: 0.8},
			ParsedQuery{BookName: "生理学", Question: "原始查询", Confidence: 0.8},
		},
		{
			"out-of-range confidence reset",
			ParsedQuery{BookName: "a", Question: "q", Confidence: 1.7},
			ParsedQuery{BookName: "a", Question: "q", Confidence: 0.5},
		},
		{
			"non-numeric version dropped",
			ParsedQuery{BookName: "a", Version: "最新", Question: "q", Confidence: 0.9},
			ParsedQuery{BookName: "a", Version: "", Question: "q", Confidence: 0.9},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			cleanResult(&got, "原始查询")
			if got != tt.want {
				t.Errorf("cleanResult = %+v, want %+v", got, tt.want)
			}
		})
	}
}
