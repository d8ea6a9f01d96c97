package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/omnisearch/backend/internal/models"
)

const providerGoogle = "google"

// GmailAdapter searches the user's mailbox via the Gmail REST API.
type GmailAdapter struct {
	baseURL string
	rest    *restClient
}

func NewGmailAdapter(baseURL string) *GmailAdapter {
	return &GmailAdapter{baseURL: baseURL, rest: newRESTClient("gmail")}
}

func (a *GmailAdapter) Provider() string        { return providerGoogle }
func (a *GmailAdapter) IntegrationType() string { return models.IntegrationGmail }

func (a *GmailAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	listURL := fmt.Sprintf("%s/gmail/v1/users/me/messages?q=%s&maxResults=20",
		a.baseURL, url.QueryEscape(query.Processed))

	var list struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := a.rest.getJSON(ctx, listURL, cred.AccessToken, &list); err != nil {
		return nil, err
	}

	payload := models.GmailPayload{Messages: make([]models.GmailMessage, 0, len(list.Messages))}
	for _, ref := range list.Messages {
		msgURL := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?format=metadata&metadataHeaders=Subject&metadataHeaders=From&metadataHeaders=Date",
			a.baseURL, ref.ID)

		var msg struct {
			ID      string `json:"id"`
			Snippet string `json:"snippet"`
			Payload struct {
				Headers []struct {
					Name  string `json:"name"`
					Value string `json:"value"`
				} `json:"headers"`
			} `json:"payload"`
			LabelIDs []string `json:"labelIds"`
		}
		if err := a.rest.getJSON(ctx, msgURL, cred.AccessToken, &msg); err != nil {
			// Skip single unreadable messages instead of failing the call.
			continue
		}

		out := models.GmailMessage{
			ID:      msg.ID,
			Snippet: msg.Snippet,
			Labels:  msg.LabelIDs,
		}
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "Subject":
				out.Subject = h.Value
			case "From":
				out.From = h.Value
			case "Date":
				if t, err := time.Parse(time.RFC1123Z, h.Value); err == nil {
					out.Date = t
				}
			}
		}
		payload.Messages = append(payload.Messages, out)
	}

	return payload, nil
}

// DriveAdapter searches file names and content via the Drive v3 API.
type DriveAdapter struct {
	baseURL string
	rest    *restClient
}

func NewDriveAdapter(baseURL string) *DriveAdapter {
	return &DriveAdapter{baseURL: baseURL, rest: newRESTClient("drive")}
}

func (a *DriveAdapter) Provider() string        { return providerGoogle }
func (a *DriveAdapter) IntegrationType() string { return models.IntegrationDrive }

func (a *DriveAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	q := url.QueryEscape(fmt.Sprintf("fullText contains '%s'", escapeQueryLiteral(query.Processed)))
	searchURL := fmt.Sprintf("%s/files?q=%s&pageSize=20&fields=files(id,name,mimeType,description,webViewLink,owners,size,createdTime,modifiedTime,shared)",
		a.baseURL, q)

	var resp struct {
		Files []struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			MimeType    string `json:"mimeType"`
			Description string `json:"description"`
			WebViewLink string `json:"webViewLink"`
			Owners      []struct {
				DisplayName string `json:"displayName"`
			} `json:"owners"`
			Size         string    `json:"size"`
			CreatedTime  time.Time `json:"createdTime"`
			ModifiedTime time.Time `json:"modifiedTime"`
			Shared       bool      `json:"shared"`
		} `json:"files"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}

	payload := models.DrivePayload{Files: make([]models.DriveFile, 0, len(resp.Files))}
	for _, f := range resp.Files {
		size, _ := strconv.ParseInt(f.Size, 10, 64)
		owner := ""
		if len(f.Owners) > 0 {
			owner = f.Owners[0].DisplayName
		}
		payload.Files = append(payload.Files, models.DriveFile{
			ID:           f.ID,
			Name:         f.Name,
			MimeType:     f.MimeType,
			Description:  f.Description,
			WebViewLink:  f.WebViewLink,
			Owner:        owner,
			Size:         size,
			CreatedTime:  f.CreatedTime,
			ModifiedTime: f.ModifiedTime,
			Shared:       f.Shared,
		})
	}

	return payload, nil
}

// escapeQueryLiteral backslash-escapes quotes for providers that embed
// the query in a quoted string literal (Drive q syntax, QuickBooks SQL).
func escapeQueryLiteral(q string) string {
	out := make([]rune, 0, len(q))
	for _, r := range q {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// CalendarAdapter searches events on the user's primary calendar.
type CalendarAdapter struct {
	baseURL string
	rest    *restClient
}

func NewCalendarAdapter(baseURL string) *CalendarAdapter {
	return &CalendarAdapter{baseURL: baseURL, rest: newRESTClient("calendar")}
}

func (a *CalendarAdapter) Provider() string        { return providerGoogle }
func (a *CalendarAdapter) IntegrationType() string { return models.IntegrationCalendar }

func (a *CalendarAdapter) Search(ctx context.Context, query models.ProcessedQuery, cred models.Credential) (models.RawPayload, error) {
	searchURL := fmt.Sprintf("%s/calendars/primary/events?q=%s&maxResults=20&singleEvents=true&orderBy=updated",
		a.baseURL, url.QueryEscape(query.Processed))

	var resp struct {
		Items []struct {
			ID          string `json:"id"`
			Summary     string `json:"summary"`
			Description string `json:"description"`
			Location    string `json:"location"`
			HTMLLink    string `json:"htmlLink"`
			Organizer   struct {
				Email string `json:"email"`
			} `json:"organizer"`
			Start struct {
				DateTime time.Time `json:"dateTime"`
			} `json:"start"`
			End struct {
				DateTime time.Time `json:"dateTime"`
			} `json:"end"`
			Attendees []struct {
				Email string `json:"email"`
			} `json:"attendees"`
		} `json:"items"`
	}
	if err := a.rest.getJSON(ctx, searchURL, cred.AccessToken, &resp); err != nil {
		return nil, err
	}

	payload := models.CalendarPayload{Events: make([]models.CalendarEvent, 0, len(resp.Items))}
	for _, e := range resp.Items {
		attendees := make([]string, 0, len(e.Attendees))
		for _, at := range e.Attendees {
			attendees = append(attendees, at.Email)
		}
		payload.Events = append(payload.Events, models.CalendarEvent{
			ID:          e.ID,
			Summary:     e.Summary,
			Description: e.Description,
			Location:    e.Location,
			HTMLLink:    e.HTMLLink,
			Organizer:   e.Organizer.Email,
			Start:       e.Start.DateTime,
			End:         e.End.DateTime,
			Attendees:   attendees,
		})
	}

	return payload, nil
}
