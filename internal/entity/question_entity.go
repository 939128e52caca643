package entity

import (
	"fmt"

	"github.com/google/uuid"
)

type QuestionStatus string

const (
	QuestionStatusNone          QuestionStatus = "None"
	QuestionStatusAnswerPending QuestionStatus = "AnswerPending"
	QuestionStatusAnswered      QuestionStatus = "Answered"
	QuestionStatusClicked       QuestionStatus = "Clicked"
	QuestionStatusRejected      QuestionStatus = "Rejected"
)

// Settled reports whether the question has been dealt with and must no
// longer be suggested. Clicked questions stay visible until they are asked.
func (s QuestionStatus) Settled() bool {
	return s != QuestionStatusNone && s != QuestionStatusClicked
}

type QuestionKind string

const (
	QuestionKindFacet QuestionKind = "Facet"
)

// FacetQuestion is the payload of a QuestionKindFacet question.
type FacetQuestion struct {
	FacetName   string   `json:"facetName"`
	FacetValues []string `json:"facetValues"`
	Answer      string   `json:"answer,omitempty"`
}

// Question is a clarifying question suggested to the agent. Kind selects
// which payload is set.
type Question struct {
	Id     uuid.UUID      `json:"id"`
	Kind   QuestionKind   `json:"kind"`
	Text   string         `json:"text"`
	Status QuestionStatus `json:"status"`
	Facet  *FacetQuestion `json:"facet,omitempty"`
}

// NewFacetQuestion builds a question with the default wording for the facet.
// Callers holding upstream wording overwrite Text.
func NewFacetQuestion(facetName string, facetValues []string) *Question {
	return &Question{
		Id:     uuid.New(),
		Kind:   QuestionKindFacet,
		Text:   fmt.Sprintf("What %s are you interested in?", facetName),
		Status: QuestionStatusNone,
		Facet: &FacetQuestion{
			FacetName:   facetName,
			FacetValues: append([]string{}, facetValues...),
		},
	}
}
