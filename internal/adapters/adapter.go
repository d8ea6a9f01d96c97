package adapters

import (
	"context"

	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/config"
	"github.com/omnisearch/backend/pkg/logger"
)

// Adapter implements the uniform search capability against one
// third-party service. Provider is the credential key ("google" covers
// gmail, drive, and calendar); IntegrationType names the service itself.
// Retries are an adapter concern; the orchestrator never retries.
type Adapter interface {
	Provider() string
	IntegrationType() string
	Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error)
}

// Registry holds every configured adapter keyed by integration type.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.IntegrationType()] = a
	}
	return r
}

// NewRegistryFromConfig builds the adapter set from provider config.
// Disabled providers get no adapter.
func NewRegistryFromConfig(cfg config.ProvidersConfig) *Registry {
	var enabled []Adapter

	add := func(on bool, a Adapter) {
		if on {
			enabled = append(enabled, a)
		}
	}

	add(cfg.Gmail.Enabled, NewGmailAdapter(cfg.Gmail.BaseURL))
	add(cfg.Drive.Enabled, NewDriveAdapter(cfg.Drive.BaseURL))
	add(cfg.Calendar.Enabled, NewCalendarAdapter(cfg.Calendar.BaseURL))
	add(cfg.Slack.Enabled, NewSlackAdapter(cfg.Slack.BaseURL))
	add(cfg.Dropbox.Enabled, NewDropboxAdapter(cfg.Dropbox.BaseURL))
	add(cfg.Asana.Enabled, NewAsanaAdapter(cfg.Asana.BaseURL))
	add(cfg.QuickBooks.Enabled, NewQuickBooksAdapter(cfg.QuickBooks.BaseURL))
	add(cfg.Procore.Enabled, NewProcoreAdapter(cfg.Procore.BaseURL))

	logger.Info("Adapter registry built", zap.Int("adapters", len(enabled)))

	return NewRegistry(enabled...)
}

func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.adapters)
}

// Available returns the adapters whose provider has a valid credential.
func (r *Registry) Available(creds map[string]models.Credential) []Adapter {
	var out []Adapter
	for _, a := range r.adapters {
		if cred, ok := creds[a.Provider()]; ok && cred.Valid() {
			out = append(out, a)
		}
	}
	return out
}
