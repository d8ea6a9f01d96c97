package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch/backend/internal/cache"
	"github.com/omnisearch/backend/internal/llm"
)

type fakeUnderstander struct {
	result *llm.QueryUnderstanding
	err    error
	calls  int
}

func (f *fakeUnderstander) UnderstandQuery(_ context.Context, _ string) (*llm.QueryUnderstanding, error) {
	f.calls++
	return f.result, f.err
}

func TestProcessUsesUnderstanding(t *testing.T) {
	u := &fakeUnderstander{result: &llm.QueryUnderstanding{
		ProcessedQuery: "quarterly budget report",
		IntentType:     "find_document",
		IntentCategory: "finance",
		Confidence:     0.92,
	}}

	pq := NewProcessor(u, nil).Process(context.Background(), "find me the q3 budget thing")

	assert.Equal(t, "find me the q3 budget thing", pq.Original)
	assert.Equal(t, "quarterly budget report", pq.Processed)
	assert.Equal(t, "find_document", pq.Intent.Type)
	assert.Equal(t, "finance", pq.Intent.Category)
	assert.Equal(t, 0.92, pq.Confidence)
}

func TestProcessDegradesOnUnderstandingFailure(t *testing.T) {
	u := &fakeUnderstander{err: errors.New("model timeout")}

	pq := NewProcessor(u, nil).Process(context.Background(), "  urgent invoices  ")

	assert.Equal(t, "  urgent invoices  ", pq.Original)
	assert.Equal(t, "urgent invoices", pq.Processed)
	assert.Equal(t, "search", pq.Intent.Type)
	assert.Equal(t, "general", pq.Intent.Category)
	assert.Equal(t, 0.5, pq.Confidence)
	assert.NotNil(t, pq.Entities)
	assert.Empty(t, pq.Entities)
}

func TestProcessFillsIntentDefaults(t *testing.T) {
	u := &fakeUnderstander{result: &llm.QueryUnderstanding{
		ProcessedQuery: "notes",
		Confidence:     0.7,
	}}

	pq := NewProcessor(u, nil).Process(context.Background(), "notes")

	assert.Equal(t, "search", pq.Intent.Type)
	assert.Equal(t, "general", pq.Intent.Category)
}

func TestProcessCachesUnderstanding(t *testing.T) {
	u := &fakeUnderstander{result: &llm.QueryUnderstanding{
		ProcessedQuery: "deploy status",
		IntentType:     "search",
		IntentCategory: "chat",
		Confidence:     0.8,
	}}

	p := NewProcessor(u, cache.NewTTL(10, time.Minute))

	first := p.Process(context.Background(), "deploy status")
	second := p.Process(context.Background(), "deploy status")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, u.calls)
}

func TestProcessDegradedResultNotCached(t *testing.T) {
	u := &fakeUnderstander{err: errors.New("down")}
	p := NewProcessor(u, cache.NewTTL(10, time.Minute))

	p.Process(context.Background(), "anything")
	p.Process(context.Background(), "anything")

	// Failures retry the understanding service on the next request.
	assert.Equal(t, 2, u.calls)
}

func TestProcessCopiesEntities(t *testing.T) {
	result := &llm.QueryUnderstanding{
		ProcessedQuery: "emails from alice about the bridge project",
		Confidence:     0.85,
	}
	result.Entities = append(result.Entities, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "person", Value: "alice"})

	pq := NewProcessor(&fakeUnderstander{result: result}, nil).Process(context.Background(), "emails from alice")

	require.Len(t, pq.Entities, 1)
	assert.Equal(t, "person", pq.Entities[0].Type)
	assert.Equal(t, "alice", pq.Entities[0].Value)
}
