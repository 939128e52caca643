package events

import (
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all events leaving the service.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUGGESTION_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Keyed events carry the id of the entity they belong to.
type Keyed interface {
	Key() string
}

const (
	TypeSuggestionGenerated = "SUGGESTION_GENERATED"
	TypeSuggestionSelected  = "SUGGESTION_SELECTED"
)

// SuggestionEvent reports what was shown to, or picked by, the agent of a
// conversation.
type SuggestionEvent struct {
	Type         string    `json:"type"`
	ChatKey      uuid.UUID `json:"chatKey"`
	DocumentUris []string  `json:"documentUris"`
	QuestionIds  []string  `json:"questionIds"`
	OccurredAt   time.Time `json:"occurredAt"`
}

func (e SuggestionEvent) EventType() string {
	return e.Type
}

func (e SuggestionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"chatKey":      e.ChatKey.String(),
		"documentUris": e.DocumentUris,
		"questionIds":  e.QuestionIds,
		"occurredAt":   e.OccurredAt.Format(time.RFC3339Nano),
	}
}

func (e SuggestionEvent) Key() string {
	return e.ChatKey.String()
}

func (e SuggestionEvent) Timestamp() time.Time {
	return e.OccurredAt
}
