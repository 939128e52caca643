package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConversationContext is the per-chat state. ContextItems is append-only;
// SuggestedDocuments and Questions only grow for the life of the context.
type ConversationContext struct {
	ChatKey                    uuid.UUID     `json:"chatKey"`
	StartTime                  time.Time     `json:"startTime"`
	ContextItems               []ContextItem `json:"contextItems"`
	SuggestedDocuments         []*Document   `json:"suggestedDocuments"`
	SelectedSuggestedDocuments []*Document   `json:"selectedSuggestedDocuments"`
	Questions                  []*Question   `json:"questions"`
	LastSuggestedQuestions     []*Question   `json:"lastSuggestedQuestions"`
	MustHaveFacets             []Facet       `json:"mustHaveFacets"`
	LastSuggestion             *Suggestion   `json:"lastSuggestion,omitempty"`
}

func NewConversationContext(chatKey uuid.UUID, startTime time.Time) *ConversationContext {
	return &ConversationContext{
		ChatKey:                    chatKey,
		StartTime:                  startTime,
		ContextItems:               make([]ContextItem, 0),
		SuggestedDocuments:         make([]*Document, 0),
		SelectedSuggestedDocuments: make([]*Document, 0),
		Questions:                  make([]*Question, 0),
		LastSuggestedQuestions:     make([]*Question, 0),
		MustHaveFacets:             make([]Facet, 0),
	}
}

func (c *ConversationContext) RecordNewMessage(message Message, analysis Analysis, isRelevant bool) {
	c.ContextItems = append(c.ContextItems, ContextItem{
		Message:    message,
		Analysis:   analysis,
		IsRelevant: isRelevant,
	})
}

func (c *ConversationContext) SuggestedDocumentByUri(uri string) *Document {
	for _, d := range c.SuggestedDocuments {
		if d.Uri == uri {
			return d
		}
	}
	return nil
}

func (c *ConversationContext) SuggestedDocumentById(id uuid.UUID) *Document {
	for _, d := range c.SuggestedDocuments {
		if d.Id == id {
			return d
		}
	}
	return nil
}

func (c *ConversationContext) QuestionById(id uuid.UUID) *Question {
	for _, q := range c.Questions {
		if q.Id == id {
			return q
		}
	}
	return nil
}

func (c *ConversationContext) QuestionByText(text string) *Question {
	for _, q := range c.Questions {
		if q.Text == text {
			return q
		}
	}
	return nil
}

// AddSuggestedDocuments records documents shown to the agent, skipping
// URIs already known.
func (c *ConversationContext) AddSuggestedDocuments(documents []*Document) {
	for _, d := range documents {
		if c.SuggestedDocumentByUri(d.Uri) == nil {
			c.SuggestedDocuments = append(c.SuggestedDocuments, d)
		}
	}
}

func (c *ConversationContext) SelectDocument(document *Document) {
	for _, d := range c.SelectedSuggestedDocuments {
		if d.Uri == document.Uri {
			return
		}
	}
	c.SelectedSuggestedDocuments = append(c.SelectedSuggestedDocuments, document)
}

// RecordGeneratedQuestions adds new questions to the known set and replaces
// the last generated batch.
func (c *ConversationContext) RecordGeneratedQuestions(questions []*Question) {
	c.LastSuggestedQuestions = make([]*Question, 0, len(questions))
	for _, q := range questions {
		if c.QuestionById(q.Id) == nil {
			c.Questions = append(c.Questions, q)
		}
		c.LastSuggestedQuestions = append(c.LastSuggestedQuestions, q)
	}
}

func (c *ConversationContext) FacetById(id uuid.UUID) (Facet, int) {
	for i, f := range c.MustHaveFacets {
		if f.Id == id {
			return f, i
		}
	}
	return Facet{}, -1
}

func (c *ConversationContext) FacetByName(name string) (Facet, int) {
	for i, f := range c.MustHaveFacets {
		if f.Name == name {
			return f, i
		}
	}
	return Facet{}, -1
}

// RestoreReferences points the derived lists back at the canonical document
// and question objects after the context was decoded from a store.
func (c *ConversationContext) RestoreReferences() {
	for i, d := range c.SelectedSuggestedDocuments {
		if known := c.SuggestedDocumentById(d.Id); known != nil {
			c.SelectedSuggestedDocuments[i] = known
		}
	}
	for i, q := range c.LastSuggestedQuestions {
		if known := c.QuestionById(q.Id); known != nil {
			c.LastSuggestedQuestions[i] = known
		}
	}
	if c.LastSuggestion == nil {
		return
	}
	for i, r := range c.LastSuggestion.Documents {
		if known := c.SuggestedDocumentById(r.Value.Id); known != nil {
			c.LastSuggestion.Documents[i].Value = known
		}
	}
	for i, r := range c.LastSuggestion.Questions {
		if known := c.QuestionById(r.Value.Id); known != nil {
			c.LastSuggestion.Questions[i].Value = known
		}
	}
}
