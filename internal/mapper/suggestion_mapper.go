package mapper

import (
	"agent-assist-be/internal/dto"
	"agent-assist-be/internal/entity"
)

type SuggestionMapper struct{}

func NewSuggestionMapper() *SuggestionMapper {
	return &SuggestionMapper{}
}

func (m *SuggestionMapper) ToSuggestionResponse(s *entity.Suggestion) *dto.SuggestionResponse {
	res := &dto.SuggestionResponse{
		Documents:    make([]dto.DocumentRecommendationDTO, 0, len(s.Documents)),
		Questions:    make([]dto.QuestionRecommendationDTO, 0, len(s.Questions)),
		ActiveFacets: m.ToFacetDTOs(s.ActiveFacets),
	}
	for _, r := range s.Documents {
		res.Documents = append(res.Documents, dto.DocumentRecommendationDTO{
			Value:         m.ToDocumentDTO(r.Value),
			Confidence:    r.Confidence,
			RecommendedBy: kindNames(r.RecommendedBy),
		})
	}
	for _, r := range s.Questions {
		res.Questions = append(res.Questions, dto.QuestionRecommendationDTO{
			Value:         m.ToQuestionDTO(r.Value),
			Confidence:    r.Confidence,
			RecommendedBy: kindNames(r.RecommendedBy),
		})
	}
	return res
}

func (m *SuggestionMapper) ToDocumentDTO(d *entity.Document) dto.DocumentDTO {
	return dto.DocumentDTO{
		Id:           d.Id,
		Title:        d.Title,
		Uri:          d.Uri,
		PrintableUri: d.PrintableUri,
		Summary:      d.Summary,
		Excerpt:      d.Excerpt,
	}
}

func (m *SuggestionMapper) ToQuestionDTO(q *entity.Question) dto.QuestionDTO {
	out := dto.QuestionDTO{
		Id:     q.Id,
		Kind:   string(q.Kind),
		Text:   q.Text,
		Status: string(q.Status),
	}
	switch q.Kind {
	case entity.QuestionKindFacet:
		if q.Facet != nil {
			out.FacetName = q.Facet.FacetName
			out.FacetValues = q.Facet.FacetValues
			out.Answer = q.Facet.Answer
		}
	}
	return out
}

func (m *SuggestionMapper) ToFacetDTOs(facets []entity.Facet) []dto.FacetDTO {
	out := make([]dto.FacetDTO, 0, len(facets))
	for _, f := range facets {
		out = append(out, m.ToFacetDTO(f))
	}
	return out
}

func (m *SuggestionMapper) ToFacetDTO(f entity.Facet) dto.FacetDTO {
	return dto.FacetDTO{Id: f.Id, Name: f.Name, Values: f.Values}
}

func (m *SuggestionMapper) ToRecommenderSettings(s *dto.RecommenderSettingsDTO) *entity.RecommenderSettings {
	if s == nil {
		return nil
	}
	return &entity.RecommenderSettings{
		UseLongQuerySearchRecommender:         s.UseLongQuerySearchRecommender,
		UsePreprocessedQuerySearchRecommender: s.UsePreprocessedQuerySearchRecommender,
		UseAnalyticsSearchRecommender:         s.UseAnalyticsSearchRecommender,
		UseNearestDocumentsRecommender:        s.UseNearestDocumentsRecommender,
		UseFacetQuestionRecommender:           s.UseFacetQuestionRecommender,
	}
}

func kindNames(kinds []entity.RecommenderKind) []string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.String())
	}
	return out
}
