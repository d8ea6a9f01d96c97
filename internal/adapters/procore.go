package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// ProcoreAdapter searches construction documents across the user's
// company.
type ProcoreAdapter struct {
	baseURL string
	rest    *restClient
}

func NewProcoreAdapter(baseURL string) *ProcoreAdapter {
	return &ProcoreAdapter{baseURL: baseURL, rest: newRESTClient("procore")}
}

func (a *ProcoreAdapter) Provider() string        { return "procore" }
func (a *ProcoreAdapter) IntegrationType() string { return models.IntegrationProcore }

func (a *ProcoreAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	searchURL := fmt.Sprintf("%s/search?query=%s&types[]=document&per_page=20",
		a.baseURL, url.QueryEscape(query.Processed))

	var resp struct {
		Results []struct {
			ID          int64     `json:"id"`
			Title       string    `json:"title"`
			Description string    `json:"description"`
			Link        string    `json:"link"`
			CreatedBy   string    `json:"created_by"`
			FileType    string    `json:"file_type"`
			Size        int64     `json:"size"`
			CreatedAt   time.Time `json:"created_at"`
			UpdatedAt   time.Time `json:"updated_at"`
		} `json:"results"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}

	payload := models.ProcorePayload{Documents: make([]models.ProcoreDocument, 0, len(resp.Results))}
	for _, r := range resp.Results {
		payload.Documents = append(payload.Documents, models.ProcoreDocument{
			ID:          strconv.FormatInt(r.ID, 10),
			Name:        r.Title,
			Description: r.Description,
			URL:         r.Link,
			CreatedBy:   r.CreatedBy,
			FileType:    r.FileType,
			Size:        r.Size,
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		})
	}

	return payload, nil
}
