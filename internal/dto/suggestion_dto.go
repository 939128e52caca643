package dto

import (
	"github.com/google/uuid"
)

type RecommenderSettingsDTO struct {
	UseLongQuerySearchRecommender         bool `json:"useLongQuerySearchRecommender"`
	UsePreprocessedQuerySearchRecommender bool `json:"usePreprocessedQuerySearchRecommender"`
	UseAnalyticsSearchRecommender         bool `json:"useAnalyticsSearchRecommender"`
	UseNearestDocumentsRecommender        bool `json:"useNearestDocumentsRecommender"`
	UseFacetQuestionRecommender           bool `json:"useFacetQuestionRecommender"`
}

type SuggestionRequest struct {
	ChatKey                      string                  `json:"chatkey" validate:"required,uuid"`
	Query                        string                  `json:"query" validate:"required"`
	Type                         string                  `json:"type" validate:"required,oneof=Customer Agent"`
	MaxDocuments                 *int                    `json:"maxDocuments" validate:"required,gte=0"`
	MaxQuestions                 *int                    `json:"maxQuestions" validate:"required,gte=0"`
	OverridenRecommenderSettings *RecommenderSettingsDTO `json:"overridenRecommenderSettings,omitempty"`
}

type SelectSuggestionRequest struct {
	ChatKey string `json:"chatkey" validate:"required,uuid"`
	Id      string `json:"id" validate:"required,uuid"`
}

type AddFilterRequest struct {
	ChatKey string   `json:"chatkey" validate:"required,uuid"`
	Name    string   `json:"name" validate:"required"`
	Values  []string `json:"values" validate:"required,min=1,dive,required"`
}

type DocumentDTO struct {
	Id           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Uri          string    `json:"uri"`
	PrintableUri string    `json:"printableUri"`
	Summary      string    `json:"summary,omitempty"`
	Excerpt      string    `json:"excerpt,omitempty"`
}

type QuestionDTO struct {
	Id          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Text        string    `json:"text"`
	Status      string    `json:"status"`
	FacetName   string    `json:"facetName,omitempty"`
	FacetValues []string  `json:"facetValues,omitempty"`
	Answer      string    `json:"answer,omitempty"`
}

type FacetDTO struct {
	Id     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Values []string  `json:"values"`
}

type DocumentRecommendationDTO struct {
	Value         DocumentDTO `json:"value"`
	Confidence    float64     `json:"confidence"`
	RecommendedBy []string    `json:"recommendedBy"`
}

type QuestionRecommendationDTO struct {
	Value         QuestionDTO `json:"value"`
	Confidence    float64     `json:"confidence"`
	RecommendedBy []string    `json:"recommendedBy"`
}

type SuggestionResponse struct {
	Documents    []DocumentRecommendationDTO `json:"documents"`
	Questions    []QuestionRecommendationDTO `json:"questions"`
	ActiveFacets []FacetDTO                  `json:"activeFacets"`
}

type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
