package transform

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnisearch/backend/internal/models"
)

func successOutcome(payload models.RawPayload) models.AdapterOutcome {
	return models.AdapterOutcome{
		Provider: payload.IntegrationType(),
		Status:   models.OutcomeSuccess,
		Payload:  payload,
	}
}

func TestTransformGmailMessage(t *testing.T) {
	date := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{
			ID:      "msg-1",
			Subject: "Q3 budget review",
			Snippet: "Attached is the latest draft",
			From:    "cfo@example.com",
			Date:    date,
			Labels:  []string{"INBOX"},
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "gmail-msg-1", r.ID)
	assert.Equal(t, "Q3 budget review", r.Title)
	assert.Equal(t, "Attached is the latest draft", r.Content)
	assert.Equal(t, "Gmail", r.Source)
	assert.Equal(t, models.IntegrationGmail, r.IntegrationType)
	assert.Equal(t, "https://mail.google.com/mail/u/0/#all/msg-1", r.URL)
	assert.Equal(t, date, r.CreatedAt)
	assert.Equal(t, "cfo@example.com", r.Author)
}

func TestTransformMissingSubjectGetsDefault(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{
			ID:      "msg-2",
			Snippet: "body text",
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "No Subject", results[0].Title)
}

func TestTransformBodyFallbackTruncatesToExactly500(t *testing.T) {
	body := strings.Repeat("a", 1200)
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{
			ID:   "msg-3",
			Body: body,
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Content, 500)
	assert.Equal(t, body[:500], results[0].Content)
}

func TestTransformBodyFallbackStripsHTML(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{
			ID:   "msg-4",
			Body: "<html><body><p>Hello <b>world</b></p><script>alert(1)</script></body></html>",
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "Hello world", results[0].Content)
}

func TestTransformShortBodyKeptWhole(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{
			ID:   "msg-5",
			Body: "short body",
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "short body", results[0].Content)
}

func TestTransformDriveFile(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.DrivePayload{Files: []models.DriveFile{{
			ID:       "file-1",
			Name:     "roadmap.pdf",
			MimeType: "application/pdf",
			Owner:    "pm@example.com",
			Size:     2048,
			Shared:   true,
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "drive-file-1", r.ID)
	assert.Equal(t, "Google Drive", r.Source)
	assert.Equal(t, "shared", r.Visibility)
	assert.Equal(t, "pdf", r.Metadata["fileType"])
	require.NotNil(t, r.UpdatedAt)
}

func TestTransformDriveUnsharedIsPrivate(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.DrivePayload{Files: []models.DriveFile{{
			ID:   "file-2",
			Name: "notes.txt",
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "private", results[0].Visibility)
	assert.Equal(t, "txt", results[0].Metadata["fileType"])
}

func TestTransformSkipsFailedAndTimedOutOutcomes(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		{Provider: "slack", Status: models.OutcomeFailure},
		{Provider: "dropbox", Status: models.OutcomeTimeout},
		successOutcome(models.SlackPayload{Messages: []models.SlackMessage{{
			TS:          "1700000000.000100",
			ChannelName: "general",
			Text:        "deploy done",
		}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "slack-1700000000.000100", results[0].ID)
	assert.Equal(t, "Message in #general", results[0].Title)
}

func TestTransformSkipsEntriesWithoutNativeID(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{
			{ID: "", Subject: "dropped"},
			{ID: "kept", Subject: "kept"},
		}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 1)
	assert.Equal(t, "gmail-kept", results[0].ID)
}

func TestTransformDedupeKeepsFirstSeen(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{
			{ID: "dup", Subject: "first copy"},
			{ID: "dup", Subject: "second copy"},
			{ID: "other", Subject: "other"},
		}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 2)
	assert.Equal(t, "gmail-dup", results[0].ID)
	assert.Equal(t, "first copy", results[0].Title)
	assert.Equal(t, "gmail-other", results[1].ID)
}

func TestTransformDistinctProvidersNeverCollide(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{{ID: "42"}}}),
		successOutcome(models.DrivePayload{Files: []models.DriveFile{{ID: "42", Name: "42.csv"}}}),
	}

	results := New().Transform(outcomes)
	assert.Len(t, results, 2)
}

func TestTransformNilPayloadYieldsNothing(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		{Provider: "gmail", Status: models.OutcomeSuccess, Payload: nil},
	}

	results := New().Transform(outcomes)
	assert.Empty(t, results)
}

func TestTransformAllProviderVariants(t *testing.T) {
	now := time.Now()
	outcomes := []models.AdapterOutcome{
		successOutcome(models.CalendarPayload{Events: []models.CalendarEvent{{ID: "ev1", Summary: "Standup", Start: now}}}),
		successOutcome(models.DropboxPayload{Entries: []models.DropboxEntry{{ID: "id:abc", Name: "spec.docx", PathDisplay: "/specs/spec.docx"}}}),
		successOutcome(models.AsanaPayload{Tasks: []models.AsanaTask{{GID: "t1", Name: "Ship it"}}}),
		successOutcome(models.QuickBooksPayload{Invoices: []models.QuickBooksInvoice{{ID: "inv1", DocNumber: "1042"}}}),
		successOutcome(models.ProcorePayload{Documents: []models.ProcoreDocument{{ID: "d1", Name: "plans", FileType: "PDF"}}}),
	}

	results := New().Transform(outcomes)
	require.Len(t, results, 5)

	ids := make(map[string]models.CanonicalResult, len(results))
	for _, r := range results {
		ids[r.ID] = r
	}

	assert.Contains(t, ids, "calendar-ev1")
	assert.Contains(t, ids, "dropbox-id:abc")
	assert.Contains(t, ids, "asana-t1")
	assert.Contains(t, ids, "quickbooks-inv1")
	assert.Contains(t, ids, "procore-d1")

	assert.Equal(t, "docx", ids["dropbox-id:abc"].Metadata["fileType"])
	assert.Equal(t, "pdf", ids["procore-d1"].Metadata["fileType"])
	assert.Equal(t, "Invoice 1042", ids["quickbooks-inv1"].Title)
}

func TestTransformIsIdempotentOnCount(t *testing.T) {
	outcomes := []models.AdapterOutcome{
		successOutcome(models.GmailPayload{Messages: []models.GmailMessage{
			{ID: "a"}, {ID: "b"}, {ID: "a"},
		}}),
	}

	tr := New()
	first := tr.Transform(outcomes)
	second := tr.Transform(outcomes)
	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first), 3)
}
