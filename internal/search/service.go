package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/adapters"
	"github.com/omnisearch/backend/internal/apperrors"
	redisc "github.com/omnisearch/backend/internal/cache/redis"
	"github.com/omnisearch/backend/internal/filters"
	"github.com/omnisearch/backend/internal/metrics"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/internal/orchestrator"
	"github.com/omnisearch/backend/internal/query"
	"github.com/omnisearch/backend/internal/rank"
	"github.com/omnisearch/backend/internal/response"
	"github.com/omnisearch/backend/internal/tokens"
	"github.com/omnisearch/backend/internal/transform"
	"github.com/omnisearch/backend/pkg/config"
	"github.com/omnisearch/backend/pkg/logger"
	"github.com/omnisearch/backend/pkg/utils"
)

// Service runs the whole pipeline: processed query, fan-out, canonical
// transform, ranking, filtering, response assembly. All dependencies are
// injected; nothing here reaches for globals beyond the logger.
type Service struct {
	cfg           config.SearchConfig
	tokenFetcher  tokens.Fetcher
	registry      *adapters.Registry
	processor     *query.Processor
	orchestrator  *orchestrator.Orchestrator
	transformer   *transform.Transformer
	ranker        *rank.Ranker
	filterEngine  *filters.Engine
	responseCache *redisc.Client
}

func NewService(
	cfg config.SearchConfig,
	tokenFetcher tokens.Fetcher,
	registry *adapters.Registry,
	processor *query.Processor,
	orch *orchestrator.Orchestrator,
	transformer *transform.Transformer,
	ranker *rank.Ranker,
	filterEngine *filters.Engine,
	responseCache *redisc.Client,
) *Service {
	return &Service{
		cfg:           cfg,
		tokenFetcher:  tokenFetcher,
		registry:      registry,
		processor:     processor,
		orchestrator:  orch,
		transformer:   transformer,
		ranker:        ranker,
		filterEngine:  filterEngine,
		responseCache: responseCache,
	}
}

// Search executes one request end to end. Validation and the mandatory
// provider gate short-circuit before any fan-out cost is paid; adapter
// and ranking failures are recovered inside their components.
func (s *Service) Search(ctx context.Context, req models.SearchRequest, progress orchestrator.ProgressFunc) (*models.SearchResponse, error) {
	startedAt := time.Now()
	requestID := uuid.New().String()

	metrics.ActiveSearches.Inc()
	status := "error"
	defer func() {
		metrics.ActiveSearches.Dec()
		metrics.SearchTotal.WithLabelValues(status).Inc()
		metrics.SearchDuration.WithLabelValues(status).Observe(time.Since(startedAt).Seconds())
	}()

	if err := validate(req, s.cfg.MaxQueryLength); err != nil {
		return nil, err
	}

	logger.Info("Processing search",
		zap.String("request_id", requestID),
		zap.String("user_id", req.UserID),
	)

	creds, err := s.tokenFetcher.FetchAllTokens(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetching tokens: %w", err)
	}

	if s.cfg.MandatoryProvider != "" {
		cred, ok := creds[s.cfg.MandatoryProvider]
		if !ok || !cred.Valid() {
			return nil, apperrors.NewIntegrationMissing(displayName(s.cfg.MandatoryProvider))
		}
	}

	cacheKey := s.responseCacheKey(req)
	if s.responseCache != nil && cacheKey != "" {
		var cached models.SearchResponse
		if hit, err := s.responseCache.GetResponse(ctx, cacheKey, &cached); err == nil && hit {
			metrics.CacheHits.WithLabelValues("response").Inc()
			status = "success"
			return &cached, nil
		}
		metrics.CacheMisses.WithLabelValues("response").Inc()
	}

	processed := s.processor.Process(ctx, req.Query)

	available := s.registry.Available(creds)
	outcomes := s.orchestrator.Execute(ctx, processed, available, creds, progress)
	for _, outcome := range outcomes {
		metrics.AdapterOutcomes.WithLabelValues(outcome.Provider, string(outcome.Status)).Inc()
		if outcome.Elapsed > 0 {
			metrics.AdapterDuration.WithLabelValues(outcome.Provider).Observe(outcome.Elapsed.Seconds())
		}
	}

	canonical := s.transformer.Transform(outcomes)
	metrics.ResultsPerSearch.Observe(float64(len(canonical)))

	ranked := s.ranker.Rank(ctx, processed, canonical)
	if usedFallback(ranked) {
		metrics.RankingFallbacks.Inc()
	}

	filtered := s.filterEngine.Apply(ranked, req.Filters)
	suggestions := s.filterEngine.Suggest(processed.Processed, filtered)

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}
	page := response.Paginate(filtered, req.Page, limit)

	resp := response.Build(page, response.Meta{
		RequestID:        requestID,
		StartedAt:        startedAt,
		SuggestedFilters: suggestions,
	})
	resp.Metadata.TotalResults = len(filtered)

	if s.responseCache != nil && cacheKey != "" && s.cfg.ResponseCacheTTLSec > 0 {
		ttl := time.Duration(s.cfg.ResponseCacheTTLSec) * time.Second
		if err := s.responseCache.SetResponse(ctx, cacheKey, resp, ttl); err != nil {
			logger.Warn("Failed to cache search response", zap.Error(err))
		}
	}

	logger.Info("Search completed",
		zap.String("request_id", requestID),
		zap.Int("total_results", resp.Metadata.TotalResults),
		zap.Int64("execution_ms", resp.Metadata.ExecutionTime),
	)

	status = "success"
	return &resp, nil
}

func validate(req models.SearchRequest, maxQueryLength int) error {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return apperrors.NewValidation("Query is required")
	}
	if maxQueryLength > 0 && len(req.Query) > maxQueryLength {
		return apperrors.NewValidation(fmt.Sprintf("Query exceeds maximum length of %d characters", maxQueryLength))
	}
	if req.UserID == "" && req.OrganizationID == "" {
		return apperrors.NewMissingCredentials("User ID and Organization ID are required")
	}
	if req.UserID == "" {
		return apperrors.NewMissingCredentials("User ID is required")
	}
	if req.OrganizationID == "" {
		return apperrors.NewMissingCredentials("Organization ID is required")
	}
	return nil
}

func usedFallback(ranked []models.RankedResult) bool {
	for _, r := range ranked {
		if strings.HasPrefix(r.RankingReason, "heuristic") {
			return true
		}
	}
	return false
}

func (s *Service) responseCacheKey(req models.SearchRequest) string {
	if !s.cfg.ResponseCacheOn || len(req.Filters) > 0 {
		return ""
	}
	return utils.HashString(fmt.Sprintf("%s|%s|%d|%d", req.UserID, req.Query, req.Page, req.Limit))
}

func displayName(provider string) string {
	if provider == "" {
		return provider
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
