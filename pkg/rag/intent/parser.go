// Package intent extracts a structured (book, version, question) triple from a
// free-text user query with an LLM, falling back to regex scraping when the
// model's output is not clean JSON.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/llm"
)

// ParsedQuery is the structured form of a user query.
type ParsedQuery struct {
	BookName   string  `json:"book_name"`
	Version    string  `json:"version"`
	Question   string  `json:"question"`
	Confidence float64 `json:"confidence"`
}

// Parser performs LLM-based query parsing. Parsing never fails hard: any
// breakdown degrades to {book:"", version:"", question:<raw>, confidence:0}.
type Parser struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewParser(llmProvider llm.LLMProvider, logger *log.Logger) *Parser {
	return &Parser{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

const parseSystemPrompt = `你是一个专业的查询解析助手。
任务：从用户查询中准确提取书名、版本号和问题。

要求：
1. 书名识别要准确，支持常见医学教材名称
2. 版本号要精确提取（如"第7版"、"第8版"等）
3. 如果没有明确版本，返回空字符串
4. 问题要简洁明了，去除冗余信息
5. 返回JSON格式结果`

// Parse extracts the structured query. Temperature 0 for deterministic output.
func (p *Parser) Parse(ctx context.Context, query string) *ParsedQuery {
	prompt := fmt.Sprintf(`请解析以下用户查询，提取书名、版本号和问题：

用户查询：%s

请返回JSON格式：
{
    "book_name": "书名",
    "version": "版本号（如第7版，没有则返回空字符串）",
    "question": "提炼后的问题",
    "confidence": 0.95
}

注意：
- 书名要准确匹配常见医学教材
- 版本号格式要统一（如"7"、"8"等数字）
- 问题要简洁，去除书名和版本信息
- confidence是解析的置信度（0-1之间）`, query)

	history := []llm.Message{
		{Role: "system", Content: parseSystemPrompt},
		{Role: "user", Content: prompt},
	}

	response, err := p.llmProvider.Chat(ctx, history, llm.WithTemperature(0.0))
	if err != nil {
		p.logger.Printf("[ERROR] Query parsing LLM call failed: %v", err)
		return fallbackResult(query)
	}

	result, ok := extractParsedQuery(response)
	if !ok {
		p.logger.Printf("[WARN] Query parsing produced no usable structure, using fallback")
		return fallbackResult(query)
	}

	cleanResult(result, query)

	p.logger.Printf("[INTENT] Parsed: book=%q version=%q question=%q confidence=%.2f",
		result.BookName, result.Version, result.Question, result.Confidence)
	return result
}

// extractParsedQuery tries three strategies in order: direct JSON decode, a
// JSON-object pattern match, then field-by-field regex scraping. First
// non-empty result wins.
func extractParsedQuery(response string) (*ParsedQuery, bool) {
	var result ParsedQuery
	if err := json.Unmarshal([]byte(response), &result); err == nil {
		return &result, true
	}

	for _, match := range jsonBlockPattern.FindAllString(response, -1) {
		var blockResult ParsedQuery
		if err := json.Unmarshal([]byte(match), &blockResult); err == nil {
			return &blockResult, true
		}
	}

	return scrapeFields(response)
}

var (
	jsonBlockPattern = regexp.MustCompile(`(?s)\{[^{}]*"book_name"[^{}]*\}`)

	bookPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"book_name":\s*"([^"]*)"`),
		regexp.MustCompile(`书名[：:]\s*([^\n,，。]+)`),
		regexp.MustCompile(`《([^》]+)》`),
	}
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"version":\s*"([^"]*)"`),
		regexp.MustCompile(`版本[：:]\s*([^\n,，。]+)`),
		regexp.MustCompile(`第(\d+)版`),
	}
	questionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"question":\s*"([^"]*)"`),
		regexp.MustCompile(`问题[：:]\s*([^\n]+)`),
	}

	bookMarkers   = regexp.MustCompile(`《|》`)
	versionInName = regexp.MustCompile(`第\d+版`)
	versionDigits = regexp.MustCompile(`\d+`)
)

func scrapeFields(response string) (*ParsedQuery, bool) {
	result := &ParsedQuery{Confidence: 0.5}

	if m := firstMatch(bookPatterns, response); m != "" {
		result.BookName = m
	}
	if m := firstMatch(versionPatterns, response); m != "" {
		result.Version = m
	}
	if m := firstMatch(questionPatterns, response); m != "" {
		result.Question = m
	}

	if result.BookName == "" && result.Version == "" && result.Question == "" {
		return nil, false
	}
	return result, true
}

func firstMatch(patterns []*regexp.Regexp, s string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// cleanResult normalizes the extracted fields: book markers and version
// suffixes removed from the name, version reduced to its digits, empty
// question replaced with the raw query, out-of-range confidence reset to 0.5.
func cleanResult(result *ParsedQuery, originalQuery string) {
	name := strings.TrimSpace(result.BookName)
	if name != "" {
		name = bookMarkers.ReplaceAllString(name, "")
		name = versionInName.ReplaceAllString(name, "")
		result.BookName = strings.TrimSpace(name)
	}

	version := strings.TrimSpace(result.Version)
	if version != "" {
		result.Version = versionDigits.FindString(version)
	}

	result.Question = strings.TrimSpace(result.Question)
	if result.Question == "" {
		result.Question = originalQuery
	}

	if result.Confidence < 0 || result.Confidence > 1 {
		result.Confidence = 0.5
	}
}

func fallbackResult(query string) *ParsedQuery {
	return &ParsedQuery{
		BookName:   "",
		Version:    "",
		Question:   query,
		Confidence: 0.0,
	}
}
