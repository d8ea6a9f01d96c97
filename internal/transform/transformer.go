package transform

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/logger"
)

const (
	// Long-form bodies are cut to exactly this many characters when no
	// snippet is available.
	snippetLength = 500

	defaultSubject = "No Subject"
)

// Transformer maps every provider's raw payload into the canonical
// result shape and deduplicates by canonical id. Failure and timeout
// outcomes are logged and skipped; malformed payloads yield zero results
// for that outcome, never an error.
type Transformer struct{}

func New() *Transformer {
	return &Transformer{}
}

func (t *Transformer) Transform(outcomes []models.AdapterOutcome) []models.CanonicalResult {
	var all []models.CanonicalResult

	for _, outcome := range outcomes {
		if outcome.Status != models.OutcomeSuccess {
			logger.Debug("Skipping non-success outcome",
				zap.String("integration", outcome.Provider),
				zap.String("status", string(outcome.Status)),
			)
			continue
		}
		if outcome.Payload == nil {
			logger.Warn("Success outcome with nil payload", zap.String("integration", outcome.Provider))
			continue
		}

		all = append(all, mapPayload(outcome.Payload)...)
	}

	return dedupe(all)
}

func mapPayload(payload models.RawPayload) []models.CanonicalResult {
	switch p := payload.(type) {
	case models.GmailPayload:
		return mapGmail(p)
	case models.DrivePayload:
		return mapDrive(p)
	case models.CalendarPayload:
		return mapCalendar(p)
	case models.SlackPayload:
		return mapSlack(p)
	case models.DropboxPayload:
		return mapDropbox(p)
	case models.AsanaPayload:
		return mapAsana(p)
	case models.QuickBooksPayload:
		return mapQuickBooks(p)
	case models.ProcorePayload:
		return mapProcore(p)
	default:
		logger.Warn("Unknown payload variant", zap.String("integration", payload.IntegrationType()))
		return nil
	}
}

func mapGmail(p models.GmailPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Messages))
	for _, m := range p.Messages {
		if m.ID == "" {
			continue
		}

		title := m.Subject
		if title == "" {
			title = defaultSubject
		}

		content := m.Snippet
		if content == "" {
			content = truncate(stripHTML(m.Body), snippetLength)
		}

		results = append(results, models.CanonicalResult{
			ID:              "gmail-" + m.ID,
			Title:           title,
			Content:         content,
			Source:          "Gmail",
			IntegrationType: models.IntegrationGmail,
			URL:             "https://mail.google.com/mail/u/0/#all/" + m.ID,
			CreatedAt:       m.Date,
			Author:          m.From,
			Tags:            m.Labels,
			ContentType:     "email",
			Visibility:      "private",
			Metadata: map[string]interface{}{
				"labels": m.Labels,
			},
		})
	}
	return results
}

func mapDrive(p models.DrivePayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Files))
	for _, f := range p.Files {
		if f.ID == "" {
			continue
		}

		visibility := "private"
		if f.Shared {
			visibility = "shared"
		}

		updatedAt := f.ModifiedTime
		results = append(results, models.CanonicalResult{
			ID:              "drive-" + f.ID,
			Title:           f.Name,
			Content:         truncate(f.Description, snippetLength),
			Source:          "Google Drive",
			IntegrationType: models.IntegrationDrive,
			URL:             f.WebViewLink,
			CreatedAt:       f.CreatedTime,
			UpdatedAt:       &updatedAt,
			Author:          f.Owner,
			Size:            f.Size,
			ContentType:     f.MimeType,
			Visibility:      visibility,
			Metadata: map[string]interface{}{
				"fileType": fileTypeFromMime(f.MimeType, f.Name),
			},
		})
	}
	return results
}

func mapCalendar(p models.CalendarPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Events))
	for _, e := range p.Events {
		if e.ID == "" {
			continue
		}

		title := e.Summary
		if title == "" {
			title = "Untitled Event"
		}

		results = append(results, models.CanonicalResult{
			ID:              "calendar-" + e.ID,
			Title:           title,
			Content:         truncate(stripHTML(e.Description), snippetLength),
			Source:          "Google Calendar",
			IntegrationType: models.IntegrationCalendar,
			URL:             e.HTMLLink,
			CreatedAt:       e.Start,
			Author:          e.Organizer,
			ContentType:     "event",
			Visibility:      "private",
			Metadata: map[string]interface{}{
				"location":  e.Location,
				"start":     e.Start,
				"end":       e.End,
				"attendees": e.Attendees,
			},
		})
	}
	return results
}

func mapSlack(p models.SlackPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Messages))
	for _, m := range p.Messages {
		if m.TS == "" {
			continue
		}

		title := "Message in #" + m.ChannelName
		if m.ChannelName == "" {
			title = "Slack message"
		}

		results = append(results, models.CanonicalResult{
			ID:              "slack-" + m.TS,
			Title:           title,
			Content:         truncate(m.Text, snippetLength),
			Source:          "Slack",
			IntegrationType: models.IntegrationSlack,
			URL:             m.Permalink,
			CreatedAt:       m.Time,
			Author:          m.Username,
			ContentType:     "message",
			Visibility:      "shared",
			Metadata: map[string]interface{}{
				"channel": m.ChannelName,
			},
		})
	}
	return results
}

func mapDropbox(p models.DropboxPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.ID == "" {
			continue
		}

		updatedAt := e.ServerModified
		results = append(results, models.CanonicalResult{
			ID:              "dropbox-" + e.ID,
			Title:           e.Name,
			Content:         e.PathDisplay,
			Source:          "Dropbox",
			IntegrationType: models.IntegrationDropbox,
			CreatedAt:       e.ServerModified,
			UpdatedAt:       &updatedAt,
			Size:            e.Size,
			ContentType:     "file",
			Visibility:      "private",
			Metadata: map[string]interface{}{
				"path":     e.PathDisplay,
				"fileType": fileTypeFromMime("", e.Name),
			},
		})
	}
	return results
}

func mapAsana(p models.AsanaPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Tasks))
	for _, task := range p.Tasks {
		if task.GID == "" {
			continue
		}

		updatedAt := task.ModifiedAt
		results = append(results, models.CanonicalResult{
			ID:              "asana-" + task.GID,
			Title:           task.Name,
			Content:         truncate(task.Notes, snippetLength),
			Source:          "Asana",
			IntegrationType: models.IntegrationAsana,
			URL:             task.PermalinkURL,
			CreatedAt:       task.CreatedAt,
			UpdatedAt:       &updatedAt,
			Author:          task.Assignee,
			Tags:            task.Tags,
			ContentType:     "task",
			Visibility:      "shared",
			Metadata: map[string]interface{}{
				"project":   task.ProjectName,
				"completed": task.Completed,
			},
		})
	}
	return results
}

func mapQuickBooks(p models.QuickBooksPayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Invoices))
	for _, inv := range p.Invoices {
		if inv.ID == "" {
			continue
		}

		title := "Invoice " + inv.DocNumber
		if inv.DocNumber == "" {
			title = "Invoice " + inv.ID
		}

		results = append(results, models.CanonicalResult{
			ID:              "quickbooks-" + inv.ID,
			Title:           title,
			Content:         truncate(inv.PrivateNote, snippetLength),
			Source:          "QuickBooks",
			IntegrationType: models.IntegrationQuickBooks,
			CreatedAt:       inv.TxnDate,
			Author:          inv.CustomerName,
			ContentType:     "invoice",
			Visibility:      "private",
			Metadata: map[string]interface{}{
				"totalAmount": inv.TotalAmt,
				"balance":     inv.Balance,
			},
		})
	}
	return results
}

func mapProcore(p models.ProcorePayload) []models.CanonicalResult {
	results := make([]models.CanonicalResult, 0, len(p.Documents))
	for _, d := range p.Documents {
		if d.ID == "" {
			continue
		}

		updatedAt := d.UpdatedAt
		results = append(results, models.CanonicalResult{
			ID:              "procore-" + d.ID,
			Title:           d.Name,
			Content:         truncate(stripHTML(d.Description), snippetLength),
			Source:          "Procore",
			IntegrationType: models.IntegrationProcore,
			URL:             d.URL,
			CreatedAt:       d.CreatedAt,
			UpdatedAt:       &updatedAt,
			Author:          d.CreatedBy,
			Size:            d.Size,
			ContentType:     "document",
			Visibility:      "shared",
			Metadata: map[string]interface{}{
				"fileType": strings.ToLower(d.FileType),
			},
		})
	}
	return results
}

// dedupe keeps the first-seen result for each canonical id.
func dedupe(results []models.CanonicalResult) []models.CanonicalResult {
	seen := make(map[string]bool, len(results))
	deduped := make([]models.CanonicalResult, 0, len(results))
	for _, r := range results {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		deduped = append(deduped, r)
	}

	if removed := len(results) - len(deduped); removed > 0 {
		logger.Debug("Duplicates removed", zap.Int("count", removed))
	}
	return deduped
}

// truncate cuts s to exactly max characters; shorter input is returned
// unchanged.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// stripHTML reduces an HTML fragment to its text. Plain text passes
// through untouched.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(doc.Text())
}

func fileTypeFromMime(mimeType, name string) string {
	switch mimeType {
	case "application/pdf":
		return "pdf"
	case "application/vnd.google-apps.document",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx"
	case "application/vnd.google-apps.spreadsheet",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "application/vnd.google-apps.presentation",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return "pptx"
	}

	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	if mimeType != "" {
		return mimeType
	}
	return "unknown"
}
