package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/omnisearch/backend/pkg/circuitbreaker"
	"github.com/omnisearch/backend/pkg/logger"
	"github.com/omnisearch/backend/pkg/retry"
)

// restClient is the shared HTTP plumbing for provider adapters: bearer
// auth, bounded response reads, retry with backoff, and a circuit
// breaker per provider so a melting backend stops being called.
type restClient struct {
	name        string
	httpClient  *http.Client
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

const maxResponseBytes = 4 << 20

func newRESTClient(name string) *restClient {
	return &restClient{
		name: name,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cb: circuitbreaker.New(name, circuitbreaker.Config{
			MaxRequests:      3,
			OpenTimeout:      20 * time.Second,
			FailureThreshold: 5,
			SuccessThreshold: 1,
			Logger:           logger.GetLogger(),
		}),
		retryConfig: retry.Config{
			MaxAttempts:  2,
			InitialDelay: 250 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2.0,
			Jitter:       0.1,
			Logger:       logger.GetLogger(),
		},
	}
}

func (c *restClient) getJSON(ctx context.Context, url, token string, dest interface{}) error {
	return c.doJSON(ctx, http.MethodGet, url, token, nil, dest)
}

func (c *restClient) postJSON(ctx context.Context, url, token string, body, dest interface{}) error {
	return c.doJSON(ctx, http.MethodPost, url, token, body, dest)
}

func (c *restClient) doJSON(ctx context.Context, method, url, token string, body, dest interface{}) error {
	return c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			var reader io.Reader
			if body != nil {
				data, err := json.Marshal(body)
				if err != nil {
					return fmt.Errorf("%s: marshal request: %w", c.name, err)
				}
				reader = strings.NewReader(string(data))
			}

			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return fmt.Errorf("%s: build request: %w", c.name, err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Accept", "application/json")
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("%s: request failed: %w", c.name, err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			if err != nil {
				return fmt.Errorf("%s: read response: %w", c.name, err)
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("%s: status %d", c.name, resp.StatusCode)
			}

			if err := json.Unmarshal(data, dest); err != nil {
				return fmt.Errorf("%s: decode response: %w", c.name, err)
			}
			return nil
		})
	})
}
