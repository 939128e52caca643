package entity

import (
	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeCustomer MessageType = "Customer"
	MessageTypeAgent    MessageType = "Agent"
)

// Message is one chat line as received from the agent console.
type Message struct {
	ChatKey uuid.UUID   `json:"chatkey"`
	Query   string      `json:"query"`
	Type    MessageType `json:"type"`
}

type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type NamedEntity struct {
	Name string `json:"name"`
}

// Analysis is the upstream NLP output for a message. ParsedQuery holds the
// normalized keywords used to build search queries.
type Analysis struct {
	Intents     []Intent      `json:"intents"`
	Entities    []NamedEntity `json:"entities"`
	ParsedQuery string        `json:"parsedQuery"`
}

type ContextItem struct {
	Message    Message  `json:"message"`
	Analysis   Analysis `json:"analysis"`
	IsRelevant bool     `json:"isRelevant"`
}
