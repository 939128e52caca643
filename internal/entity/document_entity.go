package entity

import (
	"github.com/google/uuid"
)

// Document is a knowledge-base article. Uri is its identity across
// recommenders and across turns of a conversation.
type Document struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Uri          string    `json:"uri"`
	PrintableUri string    `json:"printableUri"`
	Summary      string    `json:"summary,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
}

func NewDocument(title, uri, printableUri, summary, excerpt string) *Document {
	return &Document{
		Id:           uuid.New(),
		Title:        title,
		Uri:          uri,
		PrintableUri: printableUri,
		Summary:      summary,
		Excerpt:      excerpt,
	}
}
