package models

import "time"

// RawPayload is the closed union of provider-native result shapes. Only
// the transformer looks inside a variant; everything downstream sees
// CanonicalResult.
type RawPayload interface {
	IntegrationType() string
}

const (
	IntegrationGmail      = "google_gmail"
	IntegrationDrive      = "google_drive"
	IntegrationCalendar   = "google_calendar"
	IntegrationSlack      = "slack"
	IntegrationDropbox    = "dropbox"
	IntegrationAsana      = "asana"
	IntegrationQuickBooks = "quickbooks"
	IntegrationProcore    = "procore"
)

type GmailMessage struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Snippet string    `json:"snippet"`
	Body    string    `json:"body"`
	From    string    `json:"from"`
	Date    time.Time `json:"date"`
	Labels  []string  `json:"labels"`
}

type GmailPayload struct {
	Messages []GmailMessage `json:"messages"`
}

func (GmailPayload) IntegrationType() string { return IntegrationGmail }

type DriveFile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	Description  string    `json:"description"`
	WebViewLink  string    `json:"webViewLink"`
	Owner        string    `json:"owner"`
	Size         int64     `json:"size"`
	CreatedTime  time.Time `json:"createdTime"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Shared       bool      `json:"shared"`
}

type DrivePayload struct {
	Files []DriveFile `json:"files"`
}

func (DrivePayload) IntegrationType() string { return IntegrationDrive }

type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	HTMLLink    string    `json:"htmlLink"`
	Organizer   string    `json:"organizer"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendees   []string  `json:"attendees"`
}

type CalendarPayload struct {
	Events []CalendarEvent `json:"events"`
}

func (CalendarPayload) IntegrationType() string { return IntegrationCalendar }

type SlackMessage struct {
	TS          string    `json:"ts"`
	ChannelName string    `json:"channelName"`
	Username    string    `json:"username"`
	Text        string    `json:"text"`
	Permalink   string    `json:"permalink"`
	Time        time.Time `json:"time"`
}

type SlackPayload struct {
	Messages []SlackMessage `json:"messages"`
}

func (SlackPayload) IntegrationType() string { return IntegrationSlack }

type DropboxEntry struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PathDisplay    string    `json:"pathDisplay"`
	Size           int64     `json:"size"`
	ServerModified time.Time `json:"serverModified"`
}

type DropboxPayload struct {
	Entries []DropboxEntry `json:"entries"`
}

func (DropboxPayload) IntegrationType() string { return IntegrationDropbox }

type AsanaTask struct {
	GID          string    `json:"gid"`
	Name         string    `json:"name"`
	Notes        string    `json:"notes"`
	PermalinkURL string    `json:"permalinkUrl"`
	Assignee     string    `json:"assignee"`
	ProjectName  string    `json:"projectName"`
	CreatedAt    time.Time `json:"createdAt"`
	ModifiedAt   time.Time `json:"modifiedAt"`
	Completed    bool      `json:"completed"`
	Tags         []string  `json:"tags"`
}

type AsanaPayload struct {
	Tasks []AsanaTask `json:"tasks"`
}

func (AsanaPayload) IntegrationType() string { return IntegrationAsana }

type QuickBooksInvoice struct {
	ID           string    `json:"id"`
	DocNumber    string    `json:"docNumber"`
	CustomerName string    `json:"customerName"`
	PrivateNote  string    `json:"privateNote"`
	TotalAmt     float64   `json:"totalAmt"`
	Balance      float64   `json:"balance"`
	TxnDate      time.Time `json:"txnDate"`
}

type QuickBooksPayload struct {
	Invoices []QuickBooksInvoice `json:"invoices"`
}

func (QuickBooksPayload) IntegrationType() string { return IntegrationQuickBooks }

type ProcoreDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedBy   string    `json:"createdBy"`
	FileType    string    `json:"fileType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProcorePayload struct {
	Documents []ProcoreDocument `json:"documents"`
}

func (ProcorePayload) IntegrationType() string { return IntegrationProcore }
