package adapters

import (
	"context"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// DropboxAdapter searches file metadata via files/search_v2.
type DropboxAdapter struct {
	baseURL string
	rest    *restClient
}

func NewDropboxAdapter(baseURL string) *DropboxAdapter {
	return &DropboxAdapter{baseURL: baseURL, rest: newRESTClient("dropbox")}
}

func (a *DropboxAdapter) Provider() string        { return "dropbox" }
func (a *DropboxAdapter) IntegrationType() string { return models.IntegrationDropbox }

func (a *DropboxAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	body := map[string]interface{}{
		"query": query.Processed,
		"options": map[string]interface{}{
			"max_results":   20,
			"filename_only": false,
			"file_status":   "active",
		},
	}

	var resp struct {
		Matches []struct {
			Metadata struct {
				Metadata struct {
					ID             string    `json:"id"`
					Name           string    `json:"name"`
					PathDisplay    string    `json:"path_display"`
					Size           int64     `json:"size"`
					ServerModified time.Time `json:"server_modified"`
				} `json:"metadata"`
			} `json:"metadata"`
		} `json:"matches"`
	}
	if err := a.rest.postJSON(ctx, a.baseURL+"/files/search_v2", cred.AccessToken, body, &resp); err != nil {
		return nil, err
	}

	payload := models.DropboxPayload{Entries: make([]models.DropboxEntry, 0, len(resp.Matches))}
	for _, m := range resp.Matches {
		meta := m.Metadata.Metadata
		payload.Entries = append(payload.Entries, models.DropboxEntry{
			ID:             meta.ID,
			Name:           meta.Name,
			PathDisplay:    meta.PathDisplay,
			Size:           meta.Size,
			ServerModified: meta.ServerModified,
		})
	}

	return payload, nil
}
