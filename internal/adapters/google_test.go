package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch/backend/internal/models"
)

func TestGmailAdapterSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/gmail/v1/users/me/messages":
			assert.Equal(t, "budget report", r.URL.Query().Get("q"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"messages": []map[string]string{{"id": "m1"}},
			})
		case "/gmail/v1/users/me/messages/m1":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "m1",
				"snippet": "attached the budget",
				"payload": map[string]interface{}{
					"headers": []map[string]string{
						{"name": "Subject", "value": "Budget report"},
						{"name": "From", "value": "cfo@example.com"},
						{"name": "Date", "value": "Mon, 02 Jun 2025 10:00:00 +0000"},
					},
				},
				"labelIds": []string{"INBOX"},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := NewGmailAdapter(server.URL)
	payload, err := adapter.Search(context.Background(),
		models.ProcessedQuery{Processed: "budget report"},
		models.Credential{Provider: "google", AccessToken: "tok"},
	)
	require.NoError(t, err)

	gmail, ok := payload.(models.GmailPayload)
	require.True(t, ok)
	require.Len(t, gmail.Messages, 1)

	m := gmail.Messages[0]
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Budget report", m.Subject)
	assert.Equal(t, "attached the budget", m.Snippet)
	assert.Equal(t, "cfo@example.com", m.From)
	assert.Equal(t, []string{"INBOX"}, m.Labels)
	assert.Equal(t, 2025, m.Date.Year())
}

func TestGmailAdapterSkipsUnreadableMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gmail/v1/users/me/messages":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"messages": []map[string]string{{"id": "bad"}, {"id": "good"}},
			})
		case "/gmail/v1/users/me/messages/bad":
			w.WriteHeader(http.StatusForbidden)
		case "/gmail/v1/users/me/messages/good":
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "good"})
		}
	}))
	defer server.Close()

	adapter := NewGmailAdapter(server.URL)
	payload, err := adapter.Search(context.Background(),
		models.ProcessedQuery{Processed: "q"},
		models.Credential{AccessToken: "tok"},
	)
	require.NoError(t, err)

	gmail := payload.(models.GmailPayload)
	require.Len(t, gmail.Messages, 1)
	assert.Equal(t, "good", gmail.Messages[0].ID)
}

func TestDriveAdapterSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/files", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("q"), "fullText contains")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []map[string]interface{}{{
				"id":       "f1",
				"name":     "roadmap.pdf",
				"mimeType": "application/pdf",
				"owners":   []map[string]string{{"displayName": "Alice"}},
				"size":     "2048",
				"shared":   true,
			}},
		})
	}))
	defer server.Close()

	adapter := NewDriveAdapter(server.URL)
	payload, err := adapter.Search(context.Background(),
		models.ProcessedQuery{Processed: "roadmap"},
		models.Credential{AccessToken: "tok"},
	)
	require.NoError(t, err)

	drive := payload.(models.DrivePayload)
	require.Len(t, drive.Files, 1)
	assert.Equal(t, "f1", drive.Files[0].ID)
	assert.Equal(t, "Alice", drive.Files[0].Owner)
	assert.Equal(t, int64(2048), drive.Files[0].Size)
	assert.True(t, drive.Files[0].Shared)
}

func TestQueryLiteralEscaping(t *testing.T) {
	assert.Equal(t, `bob\'s plan`, escapeQueryLiteral("bob's plan"))
	assert.Equal(t, `a\\b`, escapeQueryLiteral(`a\b`))
	assert.Equal(t, "plain", escapeQueryLiteral(`plain`))
}

func TestRegistryAvailableFiltersByCredential(t *testing.T) {
	registry := NewRegistry(
		NewGmailAdapter("http://gmail"),
		NewDriveAdapter("http://drive"),
		NewSlackAdapter("http://slack"),
	)

	available := registry.Available(map[string]models.Credential{
		"google": {Provider: "google", AccessToken: "tok"},
		"slack":  {Provider: "slack"}, // no token
	})

	require.Len(t, available, 2)
	for _, a := range available {
		assert.Equal(t, "google", a.Provider())
	}
}
