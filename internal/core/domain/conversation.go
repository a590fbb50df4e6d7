package domain

import "time"

type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "active"
	ConversationCompleted ConversationStatus = "completed"
	ConversationPaused    ConversationStatus = "paused"
)

// Conversation drives the fill dialogue for one (document, session) pair.
// CurrentPlaceholderID points at the single placeholder being collected; it
// is nil once the conversation is completed.
type Conversation struct {
	ID                   string             `json:"id"`
	DocumentID           string             `json:"document_id"`
	SessionID            string             `json:"session_id"`
	Status               ConversationStatus `json:"status"`
	CurrentPlaceholderID *string            `json:"current_placeholder_id,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
	RoleSystem    TurnRole = "system"
)

// Turn is an append-only transcript entry, ordered by creation time.
type Turn struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           TurnRole  `json:"role"`
	Content        string    `json:"content"`
	PlaceholderID  *string   `json:"placeholder_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type DirectiveKind string

const (
	DirectiveFill            DirectiveKind = "fill"
	DirectiveRequestMoreInfo DirectiveKind = "request_more_info"
	DirectiveComplete        DirectiveKind = "complete"
)

// Directive is the closed set of structured outcomes the language capability
// may return for a dialogue turn. Exactly one kind is set per turn; fields
// other than the ones for that kind are empty.
type Directive struct {
	Kind DirectiveKind

	// fill
	Value     string
	Rationale string

	// request_more_info
	Question string
	Examples string

	// complete
	Message string
}
