package query

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/cache"
	"github.com/omnisearch/backend/internal/llm"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/logger"
	"github.com/omnisearch/backend/pkg/utils"
)

// Understander is the external language-understanding boundary.
// *llm.Client satisfies it.
type Understander interface {
	UnderstandQuery(ctx context.Context, rawQuery string) (*llm.QueryUnderstanding, error)
}

// Processor turns raw user text into a provider-agnostic query. The
// understanding call is cached and the pipeline never blocks on its
// failure: a degraded ProcessedQuery is always available.
type Processor struct {
	understander Understander
	cache        *cache.TTL
}

func NewProcessor(understander Understander, cache *cache.TTL) *Processor {
	return &Processor{understander: understander, cache: cache}
}

// Process never fails. Length validation happens upstream in the
// handler; here an empty or unparseable query simply degrades.
func (p *Processor) Process(ctx context.Context, rawQuery string) models.ProcessedQuery {
	cacheKey := utils.HashString(rawQuery)
	if p.cache != nil {
		if cached, ok := p.cache.Get(cacheKey); ok {
			if pq, ok := cached.(models.ProcessedQuery); ok {
				logger.Debug("Query understanding served from cache")
				return pq
			}
		}
	}

	understanding, err := p.understander.UnderstandQuery(ctx, rawQuery)
	if err != nil {
		logger.Warn("Query understanding failed, using degraded query", zap.Error(err))
		return degraded(rawQuery)
	}

	processed := models.ProcessedQuery{
		Original:  rawQuery,
		Processed: strings.TrimSpace(understanding.ProcessedQuery),
		Intent: models.Intent{
			Type:       understanding.IntentType,
			Category:   understanding.IntentCategory,
			Confidence: understanding.Confidence,
		},
		Entities:   make([]models.Entity, 0, len(understanding.Entities)),
		Confidence: understanding.Confidence,
	}
	if processed.Processed == "" {
		processed.Processed = strings.TrimSpace(rawQuery)
	}
	if processed.Intent.Type == "" {
		processed.Intent.Type = "search"
	}
	if processed.Intent.Category == "" {
		processed.Intent.Category = "general"
	}
	for _, e := range understanding.Entities {
		processed.Entities = append(processed.Entities, models.Entity{Type: e.Type, Value: e.Value})
	}

	if p.cache != nil {
		p.cache.Set(cacheKey, processed)
	}

	return processed
}

func degraded(rawQuery string) models.ProcessedQuery {
	return models.ProcessedQuery{
		Original:  rawQuery,
		Processed: strings.TrimSpace(rawQuery),
		Intent: models.Intent{
			Type:       "search",
			Category:   "general",
			Confidence: 0.5,
		},
		Entities:   []models.Entity{},
		Confidence: 0.5,
	}
}
