package entity

type Suggestion struct {
	Documents    []Recommendation[*Document] `json:"documents"`
	Questions    []Recommendation[*Question] `json:"questions"`
	ActiveFacets []Facet                     `json:"activeFacets"`
}

// RecommenderSettings toggles each recommender. It is passed by value so a
// request override never leaks into other requests.
type RecommenderSettings struct {
	UseLongQuerySearchRecommender         bool `json:"useLongQuerySearchRecommender"`
	UsePreprocessedQuerySearchRecommender bool `json:"usePreprocessedQuerySearchRecommender"`
	UseAnalyticsSearchRecommender         bool `json:"useAnalyticsSearchRecommender"`
	UseNearestDocumentsRecommender        bool `json:"useNearestDocumentsRecommender"`
	UseFacetQuestionRecommender           bool `json:"useFacetQuestionRecommender"`
}

type SuggestionQuery struct {
	MaxDocuments int
	MaxQuestions int
	// Override replaces the configured settings for this request only.
	Override *RecommenderSettings
}
