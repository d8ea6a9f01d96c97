package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/pkg/circuitbreaker"
	"github.com/omnisearch/backend/pkg/logger"
	"github.com/omnisearch/backend/pkg/retry"
)

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:  2,
		InitialDelay: 300 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		Logger:       logger.GetLogger(),
	}

	if timeoutSec <= 0 {
		timeoutSec = 15
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
	}

	var result *CompletionResponse

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)
			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("completion returned no choices")
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			result = &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

// QueryUnderstanding mirrors the JSON the understanding prompt asks the
// model to produce.
type QueryUnderstanding struct {
	ProcessedQuery string  `json:"processedQuery"`
	IntentType     string  `json:"intentType"`
	IntentCategory string  `json:"intentCategory"`
	Entities       []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"entities"`
	Confidence float64 `json:"confidence"`
}

func (c *Client) UnderstandQuery(ctx context.Context, rawQuery string) (*QueryUnderstanding, error) {
	systemPrompt := `You are a search query analyzer for a workplace search tool that spans
email, files, calendar events, chat messages, tasks, invoices, and construction documents.

Given a user query, return JSON only:
{"processedQuery": "cleaned query text",
 "intentType": "search|find_person|find_document|find_event",
 "intentCategory": "general|mail|files|calendar|chat|tasks|finance|construction",
 "entities": [{"type": "person|date|project|topic|filetype", "value": "..."}],
 "confidence": 0.0-1.0}`

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   fmt.Sprintf("Analyze this query: %s", rawQuery),
		Temperature:  0.1,
		MaxTokens:    300,
	})
	if err != nil {
		return nil, fmt.Errorf("query understanding: %w", err)
	}

	var understanding QueryUnderstanding
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &understanding); err != nil {
		return nil, fmt.Errorf("malformed understanding response: %w", err)
	}
	if understanding.ProcessedQuery == "" {
		return nil, fmt.Errorf("understanding response missing processedQuery")
	}

	return &understanding, nil
}

// RankCandidate is the compact view of a result sent to the ranking
// prompt.
type RankCandidate struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

type RankScore struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

func (c *Client) ScoreResults(ctx context.Context, query string, candidates []RankCandidate) ([]RankScore, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}

	systemPrompt := `You are a relevance ranker for workplace search results.
Score each result for relevance to the query on a 0.0-1.0 scale.
Return a JSON array only, one entry per input id:
[{"id": "...", "score": 0.0-1.0, "reason": "one short sentence"}]`

	userPrompt := fmt.Sprintf("Query: %s\n\nResults:\n%s", query, payload)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.1,
		MaxTokens:    1500,
	})
	if err != nil {
		return nil, fmt.Errorf("result scoring: %w", err)
	}

	var scores []RankScore
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &scores); err != nil {
		return nil, fmt.Errorf("malformed scoring response: %w", err)
	}

	logger.Debug("Results scored by LLM",
		zap.Int("candidates", len(candidates)),
		zap.Int("scores", len(scores)),
	)

	return scores, nil
}

// extractJSON strips markdown code fences and any prose around the first
// JSON value in the model output.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	start := strings.IndexAny(content, "[{")
	if start > 0 {
		content = content[start:]
	}
	return content
}
