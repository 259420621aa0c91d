package dto

import "github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/state"

type QueryRequest struct {
	Query string `json:"query" validate:"required,min=2"`
}

type QueryResponse struct {
	Answer     string       `json:"answer"`
	Sources    []SourceItem `json:"sources"`
	Confidence float64      `json:"confidence"`
	BookName   string       `json:"book_name"`
	Version    string       `json:"version"`
	Question   string       `json:"question"`
}

type SourceItem struct {
	Chapter string  `json:"chapter"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
}

func NewQueryResponse(result state.QueryResult) QueryResponse {
	sources := make([]SourceItem, len(result.Sources))
	for i, s := range result.Sources {
		sources[i] = SourceItem{Chapter: s.Chapter, Page: s.Page, Score: s.Score}
	}
	return QueryResponse{
		Answer:     result.Answer,
		Sources:    sources,
		Confidence: result.Confidence,
		BookName:   result.BookName,
		Version:    result.Version,
		Question:   result.Question,
	}
}
