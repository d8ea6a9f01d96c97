package adapters

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// AsanaAdapter searches tasks via the workspace typeahead endpoint.
type AsanaAdapter struct {
	baseURL string
	rest    *restClient
}

func NewAsanaAdapter(baseURL string) *AsanaAdapter {
	return &AsanaAdapter{baseURL: baseURL, rest: newRESTClient("asana")}
}

func (a *AsanaAdapter) Provider() string        { return "asana" }
func (a *AsanaAdapter) IntegrationType() string { return models.IntegrationAsana }

func (a *AsanaAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	searchURL := fmt.Sprintf("%s/workspaces/me/tasks/search?text=%s&limit=20&opt_fields=gid,name,notes,permalink_url,assignee.name,projects.name,created_at,modified_at,completed,tags.name",
		a.baseURL, url.QueryEscape(query.Processed))

	var resp struct {
		Data []struct {
			GID          string    `json:"gid"`
			Name         string    `json:"name"`
			Notes        string    `json:"notes"`
			PermalinkURL string    `json:"permalink_url"`
			Assignee     struct {
				Name string `json:"name"`
			} `json:"assignee"`
			Projects []struct {
				Name string `json:"name"`
			} `json:"projects"`
			CreatedAt  time.Time `json:"created_at"`
			ModifiedAt time.Time `json:"modified_at"`
			Completed  bool      `json:"completed"`
			Tags       []struct {
				Name string `json:"name"`
			} `json:"tags"`
		} `json:"data"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}

	payload := models.AsanaPayload{Tasks: make([]models.AsanaTask, 0, len(resp.Data))}
	for _, t := range resp.Data {
		project := ""
		if len(t.Projects) > 0 {
			project = t.Projects[0].Name
		}
		tags := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			tags = append(tags, tag.Name)
		}
		payload.Tasks = append(payload.Tasks, models.AsanaTask{
			GID:          t.GID,
			Name:         t.Name,
			Notes:        t.Notes,
			PermalinkURL: t.PermalinkURL,
			Assignee:     t.Assignee.Name,
			ProjectName:  project,
			CreatedAt:    t.CreatedAt,
			ModifiedAt:   t.ModifiedAt,
			Completed:    t.Completed,
			Tags:         tags,
		})
	}

	return payload, nil
}
