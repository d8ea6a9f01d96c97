package models

import "time"

// SearchRequest is one inbound query. It is request-scoped and never
// persisted.
type SearchRequest struct {
	Query          string         `json:"query"`
	UserID         string         `json:"userId"`
	OrganizationID string         `json:"organizationId"`
	Filters        []SearchFilter `json:"filters,omitempty"`
	Page           int            `json:"page,omitempty"`
	Limit          int            `json:"limit,omitempty"`
}

// Credential is the token material for one integration. It is owned and
// refreshed by the external token service; the pipeline only reads it.
type Credential struct {
	Provider    string    `json:"provider"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

func (c Credential) Valid() bool {
	if c.AccessToken == "" {
		return false
	}
	return c.ExpiresAt.IsZero() || time.Now().Before(c.ExpiresAt)
}

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
	OutcomeTimeout OutcomeStatus = "timeout"
)

// AdapterOutcome is the settled result of one adapter call: exactly one
// of success (with payload), failure (with error), or timeout.
type AdapterOutcome struct {
	Provider string
	Status   OutcomeStatus
	Payload  RawPayload
	Err      error
	Elapsed  time.Duration
}

// CanonicalResult is the one normalized shape every provider maps into.
// The ID is globally unique across providers: "<providerPrefix>-<nativeId>".
// A CanonicalResult is never mutated after the transformer builds it.
type CanonicalResult struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Content         string                 `json:"content"`
	Source          string                 `json:"source"`
	IntegrationType string                 `json:"integrationType"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	URL             string                 `json:"url,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       *time.Time             `json:"updatedAt,omitempty"`
	Author          string                 `json:"author,omitempty"`
	Tags            []string               `json:"tags,omitempty"`
	Size            int64                  `json:"size,omitempty"`
	ContentType     string                 `json:"contentType,omitempty"`
	Visibility      string                 `json:"visibility,omitempty"`
}

// RankedResult attaches a relevance score in [0,1] to a canonical result.
type RankedResult struct {
	CanonicalResult
	RelevanceScore float64 `json:"relevanceScore"`
	RankingReason  string  `json:"rankingReason,omitempty"`
}

type FilterType string

const (
	FilterDateRange   FilterType = "date_range"
	FilterFileType    FilterType = "file_type"
	FilterAuthor      FilterType = "author"
	FilterIntegration FilterType = "integration"
	FilterTags        FilterType = "tags"
	FilterSize        FilterType = "size"
	FilterVisibility  FilterType = "visibility"
	FilterContentType FilterType = "content_type"
)

type FilterOperator string

const (
	OpEquals      FilterOperator = "equals"
	OpContains    FilterOperator = "contains"
	OpIn          FilterOperator = "in"
	OpNotIn       FilterOperator = "not_in"
	OpBetween     FilterOperator = "between"
	OpGreaterThan FilterOperator = "greater_than"
	OpLessThan    FilterOperator = "less_than"
)

// SearchFilter is a pure predicate over CanonicalResult fields. Inactive
// filters are no-ops; unknown types and operators are no-ops too.
type SearchFilter struct {
	Type     FilterType     `json:"type"`
	Operator FilterOperator `json:"operator"`
	Value    interface{}    `json:"value"`
	Active   bool           `json:"active"`
}

// FilterPreset is a named, reusable filter bundle.
type FilterPreset struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Filters []SearchFilter `json:"filters"`
}

// FilterSuggestion is advisory: proposed from the result distribution,
// never auto-applied.
type FilterSuggestion struct {
	Filter     SearchFilter `json:"filter"`
	Label      string       `json:"label"`
	Confidence float64      `json:"confidence"`
}

// Intent classifies what the user is asking for.
type Intent struct {
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ProcessedQuery is the provider-agnostic form of the raw query.
type ProcessedQuery struct {
	Original   string   `json:"original"`
	Processed  string   `json:"processed"`
	Intent     Intent   `json:"intent"`
	Entities   []Entity `json:"entities"`
	Confidence float64  `json:"confidence"`
}

type ResponseMetadata struct {
	TotalResults     int                `json:"totalResults"`
	ExecutionTime    int64              `json:"executionTime"`
	RequestID        string             `json:"requestId"`
	SuggestedFilters []FilterSuggestion `json:"suggestedFilters,omitempty"`
}

// SearchResponse is the final payload returned to the caller.
type SearchResponse struct {
	Success  bool             `json:"success"`
	Data     []RankedResult   `json:"data"`
	Metadata ResponseMetadata `json:"metadata"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
