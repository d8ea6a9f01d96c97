package tokens

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	redisc "github.com/omnisearch/backend/internal/cache/redis"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/logger"
)

// Fetcher exposes the token service boundary: all connected provider
// credentials for one user. Token acquisition and refresh live outside
// this service; we only read.
type Fetcher interface {
	FetchAllTokens(ctx context.Context, userID string) (map[string]models.Credential, error)
}

// RedisFetcher reads tokens the OAuth service writes into Redis, one
// hash field per provider.
type RedisFetcher struct {
	redis *redisc.Client
}

func NewRedisFetcher(redis *redisc.Client) *RedisFetcher {
	return &RedisFetcher{redis: redis}
}

func (f *RedisFetcher) FetchAllTokens(ctx context.Context, userID string) (map[string]models.Credential, error) {
	raw, err := f.redis.FetchTokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("token fetch for user %s: %w", userID, err)
	}

	creds := make(map[string]models.Credential, len(raw))
	for provider, token := range raw {
		if token == "" {
			continue
		}
		creds[provider] = models.Credential{Provider: provider, AccessToken: token}
	}

	logger.Debug("Tokens fetched",
		zap.String("user_id", userID),
		zap.Int("providers", len(creds)),
	)

	return creds, nil
}

// StaticFetcher serves a fixed credential set. Used in development and
// tests.
type StaticFetcher struct {
	Credentials map[string]models.Credential
}

func (f *StaticFetcher) FetchAllTokens(_ context.Context, _ string) (map[string]models.Credential, error) {
	creds := make(map[string]models.Credential, len(f.Credentials))
	for provider, cred := range f.Credentials {
		creds[provider] = cred
	}
	return creds, nil
}
