package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

// SlackAdapter searches messages via search.messages.
type SlackAdapter struct {
	baseURL string
	rest    *restClient
}

func NewSlackAdapter(baseURL string) *SlackAdapter {
	return &SlackAdapter{baseURL: baseURL, rest: newRESTClient("slack")}
}

func (a *SlackAdapter) Provider() string        { return "slack" }
func (a *SlackAdapter) IntegrationType() string { return models.IntegrationSlack }

func (a *SlackAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	searchURL := fmt.Sprintf("%s/search.messages?query=%s&count=20",
		a.baseURL, url.QueryEscape(query.Processed))

	var resp struct {
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
		Messages struct {
			Matches []struct {
				TS        string `json:"ts"`
				Text      string `json:"text"`
				Username  string `json:"username"`
				Permalink string `json:"permalink"`
				Channel   struct {
					Name string `json:"name"`
				} `json:"channel"`
			} `json:"matches"`
		} `json:"messages"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack: api error: %s", resp.Error)
	}

	payload := models.SlackPayload{Messages: make([]models.SlackMessage, 0, len(resp.Messages.Matches))}
	for _, m := range resp.Messages.Matches {
		payload.Messages = append(payload.Messages, models.SlackMessage{
			TS:          m.TS,
			ChannelName: m.Channel.Name,
			Username:    m.Username,
			Text:        m.Text,
			Permalink:   m.Permalink,
			Time:        slackTime(m.TS),
		})
	}

	return payload, nil
}

// Slack timestamps are "<unix seconds>.<sequence>".
func slackTime(ts string) time.Time {
	secs, err := strconv.ParseFloat(strings.SplitN(ts, ".", 2)[0], 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0).UTC()
}
