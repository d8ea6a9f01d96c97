package response

import (
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// Meta carries the request-scoped facts the builder needs.
type Meta struct {
	RequestID        string
	StartedAt        time.Time
	SuggestedFilters []models.FilterSuggestion
}

// Build assembles the final search payload. Execution time is measured
// end to end from query acceptance and is never negative, including for
// empty result sets.
func Build(results []models.RankedResult, meta Meta) models.SearchResponse {
	if results == nil {
		results = []models.RankedResult{}
	}

	executionTime := time.Since(meta.StartedAt).Milliseconds()
	if executionTime < 0 {
		executionTime = 0
	}

	return models.SearchResponse{
		Success: true,
		Data:    results,
		Metadata: models.ResponseMetadata{
			TotalResults:     len(results),
			ExecutionTime:    executionTime,
			RequestID:        meta.RequestID,
			SuggestedFilters: meta.SuggestedFilters,
		},
	}
}

// Paginate slices results for a 1-based page. Out-of-range pages yield
// an empty slice, not an error.
func Paginate(results []models.RankedResult, page, limit int) []models.RankedResult {
	if limit <= 0 {
		return results
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * limit
	if start >= len(results) {
		return []models.RankedResult{}
	}
	end := start + limit
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
