package recommend

import (
	"sort"

	"agent-assist-be/internal/entity"
)

// MergeDocuments drops recommendations below minimumConfidence, then folds
// the rest by URI. A merged entry keeps the first document seen, the highest
// confidence and every contributing recommender. Output is ordered by
// confidence descending, then URI.
func MergeDocuments(all [][]entity.Recommendation[*entity.Document], minimumConfidence float64) []entity.Recommendation[*entity.Document] {
	index := make(map[string]int)
	merged := make([]entity.Recommendation[*entity.Document], 0)

	for _, list := range all {
		for _, r := range list {
			if r.Confidence < minimumConfidence {
				continue
			}
			i, ok := index[r.Value.Uri]
			if !ok {
				index[r.Value.Uri] = len(merged)
				merged = append(merged, entity.Recommendation[*entity.Document]{
					Value:         r.Value,
					Confidence:    r.Confidence,
					RecommendedBy: entity.UnionKinds(r.RecommendedBy),
				})
				continue
			}
			if r.Confidence > merged[i].Confidence {
				merged[i].Confidence = r.Confidence
			}
			merged[i].RecommendedBy = entity.UnionKinds(merged[i].RecommendedBy, r.RecommendedBy)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		return merged[i].Value.Uri < merged[j].Value.Uri
	})
	return merged
}

// MergeQuestions concatenates the producers' questions ordered by
// confidence descending, then text.
func MergeQuestions(all [][]entity.Recommendation[*entity.Question]) []entity.Recommendation[*entity.Question] {
	merged := make([]entity.Recommendation[*entity.Question], 0)
	for _, list := range all {
		merged = append(merged, list...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		return merged[i].Value.Text < merged[j].Value.Text
	})
	return merged
}

func sortByConfidence(recommendations []entity.Recommendation[*entity.Document]) {
	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
}
