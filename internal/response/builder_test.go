package response

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch/backend/internal/models"
)

func TestBuildAssemblesMetadata(t *testing.T) {
	results := []models.RankedResult{
		{CanonicalResult: models.CanonicalResult{ID: "gmail-1"}},
		{CanonicalResult: models.CanonicalResult{ID: "drive-2"}},
	}

	resp := Build(results, Meta{
		RequestID: "req-123",
		StartedAt: time.Now().Add(-20 * time.Millisecond),
	})

	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Metadata.TotalResults)
	assert.Equal(t, "req-123", resp.Metadata.RequestID)
	assert.GreaterOrEqual(t, resp.Metadata.ExecutionTime, int64(20))
}

func TestBuildNilResults(t *testing.T) {
	resp := Build(nil, Meta{StartedAt: time.Now()})

	require.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 0, resp.Metadata.TotalResults)
	assert.GreaterOrEqual(t, resp.Metadata.ExecutionTime, int64(0))
}

func TestBuildExecutionTimeNeverNegative(t *testing.T) {
	// A start time in the future can only come from clock skew; clamp.
	resp := Build(nil, Meta{StartedAt: time.Now().Add(time.Hour)})
	assert.Equal(t, int64(0), resp.Metadata.ExecutionTime)
}

func TestBuildCarriesSuggestions(t *testing.T) {
	suggestions := []models.FilterSuggestion{
		{Label: "Only pdf results", Confidence: 0.8},
	}

	resp := Build(nil, Meta{StartedAt: time.Now(), SuggestedFilters: suggestions})
	assert.Equal(t, suggestions, resp.Metadata.SuggestedFilters)
}

func pageOf(n int) []models.RankedResult {
	out := make([]models.RankedResult, n)
	for i := range out {
		out[i] = models.RankedResult{CanonicalResult: models.CanonicalResult{ID: string(rune('a' + i))}}
	}
	return out
}

func TestPaginateFirstPage(t *testing.T) {
	out := Paginate(pageOf(5), 1, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
}

func TestPaginateLastPartialPage(t *testing.T) {
	out := Paginate(pageOf(5), 3, 2)
	require.Len(t, out, 1)
	assert.Equal(t, "e", out[0].ID)
}

func TestPaginateOutOfRange(t *testing.T) {
	out := Paginate(pageOf(5), 10, 2)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}

func TestPaginateZeroLimitReturnsAll(t *testing.T) {
	out := Paginate(pageOf(5), 1, 0)
	assert.Len(t, out, 5)
}

func TestPaginateZeroPageTreatedAsFirst(t *testing.T) {
	out := Paginate(pageOf(5), 0, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
}
