// Package response composes a cited answer from retrieved chunks with an LLM
// and scores how much to trust it.
package response

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/catalog"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/search"
)

// Source is one citation attached to an answer.
type Source struct {
	Chapter string  `json:"chapter"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
}

// Result is a generated answer with its citations and confidence.
type Result struct {
	Answer     string
	Sources    []Source
	Confidence float64
}

// Generator creates answers grounded in retrieved textbook chunks.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

const generateSystemPrompt = `你是一个专业的医学教材助手。
任务：基于提供的教材内容回答用户的问题。

要求：
1. 仅使用提供的参考内容回答，不要添加教材中没有的信息
2. 答案要准确、专业、结构清晰
3. 如果参考内容不足以完整回答问题，要明确指出
4. 使用markdown格式，适当使用标题、列表等
5. 回答末尾必须注明具体来源（章节和页码）`

// Generate builds the answer. With no retrieved docs it returns the fixed
// not-found answer at zero confidence and makes no LLM call. An LLM failure
// degrades to a generic apology, also at zero confidence.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	docs []search.RetrievalResult,
	bookName, version string,
	metadata catalog.BookMetadata,
) Result {
	if len(docs) == 0 {
		g.logger.Printf("[GENERATION] No documents retrieved, returning not-found answer")
		return Result{
			Answer:     NotFoundAnswer(bookName, version),
			Sources:    []Source{},
			Confidence: 0.0,
		}
	}

	history := []llm.Message{
		{Role: "system", Content: generateSystemPrompt},
		{Role: "user", Content: g.buildPrompt(question, docs, bookName, version, metadata)},
	}

	answer, err := g.llmProvider.Chat(ctx, history)
	if err != nil {
		g.logger.Printf("[ERROR] Answer generation failed: %v", err)
		return Result{
			Answer:     GenerationFailedAnswer,
			Sources:    []Source{},
			Confidence: 0.0,
		}
	}

	result := Result{
		Answer:     strings.TrimSpace(answer),
		Sources:    extractSources(docs),
		Confidence: calculateConfidence(docs),
	}

	g.logger.Printf("[GENERATION] Answer generated from %d documents, confidence %.2f",
		len(docs), result.Confidence)
	return result
}

func (g *Generator) buildPrompt(
	question string,
	docs []search.RetrievalResult,
	bookName, version string,
	metadata catalog.BookMetadata,
) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "请基于以下来自《%s》第%s版的内容回答问题。\n\n", bookName, version)

	prompt.WriteString("**书籍信息：**\n")
	fmt.Fprintf(&prompt, "- 书名：%s\n", bookName)
	fmt.Fprintf(&prompt, "- 版本：第%s版\n", version)
	fmt.Fprintf(&prompt, "- ISBN：%s\n", orNA(metadata.ISBN))
	fmt.Fprintf(&prompt, "- 出版社：%s\n", orNA(metadata.Publisher))
	fmt.Fprintf(&prompt, "- 出版年份：%s\n\n", orNA(metadata.PublishYear))

	prompt.WriteString("**用户问题：**\n")
	prompt.WriteString(question)
	prompt.WriteString("\n\n**参考内容：**\n")
	prompt.WriteString(buildContext(docs))

	prompt.WriteString("\n**回答要求：**\n")
	prompt.WriteString("1. 直接回答问题，不要重复问题\n")
	prompt.WriteString("2. 内容要专业准确，逻辑清晰\n")
	prompt.WriteString("3. 如果有多个要点，使用列表展示\n")
	prompt.WriteString("4. 回答末尾用单独一段标注来源，格式：\n")
	fmt.Fprintf(&prompt, "   > **来源：《%s》第%s版，第X章，第Y-Z页**\n", bookName, version)

	return prompt.String()
}

// buildContext renders each doc with its provenance so the model can cite it.
func buildContext(docs []search.RetrievalResult) string {
	var parts []string
	for i, doc := range docs {
		chapter := doc.Metadata.Chapter
		if chapter == "" {
			chapter = "未知章节"
		}
		parts = append(parts, fmt.Sprintf("\n[文档 %d] - 相似度: %.4f\n来源：%s，第%d页\n内容：\n%s\n",
			i+1, doc.Score, chapter, doc.Metadata.Ordinal(), doc.Content))
	}
	return strings.Join(parts, "\n")
}

// extractSources deduplicates citations by (chapter, page). Docs arrive sorted
// by descending score, so the first occurrence per key carries the highest.
func extractSources(docs []search.RetrievalResult) []Source {
	sources := []Source{}
	seen := make(map[string]bool)

	for _, doc := range docs {
		key := fmt.Sprintf("%s_%d", doc.Metadata.Chapter, doc.Metadata.Ordinal())
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, Source{
			Chapter: doc.Metadata.Chapter,
			Page:    doc.Metadata.Ordinal(),
			Score:   doc.Score,
		})
	}
	return sources
}

// calculateConfidence combines retrieval quality with document-count
// sufficiency: 0.7 * mean(score) + 0.3 * min(n/3, 1), rounded to 2 decimals.
func calculateConfidence(docs []search.RetrievalResult) float64 {
	if len(docs) == 0 {
		return 0.0
	}

	var sum float64
	for _, doc := range docs {
		sum += doc.Score
	}
	avgScore := sum / float64(len(docs))

	countFactor := math.Min(float64(len(docs))/3.0, 1.0)

	confidence := avgScore*0.7 + countFactor*0.3
	return math.Round(confidence*100) / 100
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
