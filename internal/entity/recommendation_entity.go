package entity

import (
	"encoding/json"
	"fmt"
	"sort"
)

type RecommenderKind int

const (
	RecommenderLongQuerySearch RecommenderKind = iota
	RecommenderPreprocessedQuerySearch
	RecommenderLastClickAnalytics
	RecommenderNearestDocuments
	RecommenderFacetQuestions
)

var recommenderKindNames = map[RecommenderKind]string{
	RecommenderLongQuerySearch:         "LongQuerySearch",
	RecommenderPreprocessedQuerySearch: "PreprocessedQuerySearch",
	RecommenderLastClickAnalytics:      "LastClickAnalytics",
	RecommenderNearestDocuments:        "NearestDocuments",
	RecommenderFacetQuestions:          "FacetQuestions",
}

func (k RecommenderKind) String() string {
	if name, ok := recommenderKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RecommenderKind(%d)", int(k))
}

func (k RecommenderKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *RecommenderKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, n := range recommenderKindNames {
		if n == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown recommender kind %q", name)
}

// Recommendation is a scored candidate. Confidence is the producing
// recommender's own certainty; RecommendedBy lists every recommender that
// surfaced the value.
type Recommendation[T any] struct {
	Value         T                 `json:"value"`
	Confidence    float64           `json:"confidence"`
	RecommendedBy []RecommenderKind `json:"recommendedBy"`
}

func NewRecommendation[T any](value T, confidence float64, kind RecommenderKind) Recommendation[T] {
	return Recommendation[T]{
		Value:         value,
		Confidence:    confidence,
		RecommendedBy: []RecommenderKind{kind},
	}
}

// UnionKinds merges kind lists into a sorted list without duplicates.
func UnionKinds(lists ...[]RecommenderKind) []RecommenderKind {
	seen := make(map[RecommenderKind]bool)
	out := make([]RecommenderKind, 0)
	for _, list := range lists {
		for _, k := range list {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
