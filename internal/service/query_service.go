package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/pkg/logger"
	"github.com/DianaLeoTang/DT-Study-Companion/pkg/rag/state"
)

type IQueryService interface {
	Query(ctx context.Context, query string) state.QueryResult
}

type queryService struct {
	workflow *state.Workflow
	cache    *gocache.Cache
	logger   logger.ILogger
}

func NewQueryService(workflow *state.Workflow, cacheTTL time.Duration, sysLogger logger.ILogger) IQueryService {
	return &queryService{
		workflow: workflow,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
		logger:   sysLogger,
	}
}

// Query runs the workflow, serving repeated identical queries from the TTL
// cache. The workflow guarantees a structured result on every path, so this
// never fails.
func (s *queryService) Query(ctx context.Context, query string) state.QueryResult {
	if cached, found := s.cache.Get(query); found {
		s.logger.Info("QUERY_SERVICE", "Cache hit", map[string]interface{}{"query": query})
		return cached.(state.QueryResult)
	}

	start := time.Now()
	result := s.workflow.Query(ctx, query)

	s.logger.Info("QUERY_SERVICE", "Query processed", map[string]interface{}{
		"query":      query,
		"book":       result.BookName,
		"version":    result.Version,
		"confidence": result.Confidence,
		"sources":    len(result.Sources),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	s.cache.Set(query, result, gocache.DefaultExpiration)
	return result
}
