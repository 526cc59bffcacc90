// internal/models/conversation.go
package models

import "time"

// EntryType distinguishes user queries from assistant responses.
type EntryType string

const (
	EntryTypeQuery    EntryType = "query"
	EntryTypeResponse EntryType = "response"
)

// ConversationEntry is one message in an assessment conversation.
type ConversationEntry struct {
	Type          EntryType `json:"type"`
	Content       string    `json:"content"`
	ShowReportCTA bool      `json:"showReportCTA,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Conversation is the ordered query/response list for one session.
type Conversation struct {
	ID      string              `json:"id"`
	Entries []ConversationEntry `json:"entries"`
}

// Intent is the enumerated classification of a user query.
type Intent string

const (
	IntentGeneral            Intent = "general"
	IntentPropertyAssessment Intent = "property_assessment"
	IntentReportRequest      Intent = "report_request"
)

// IntentResult is a classification with its confidence.
type IntentResult struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
