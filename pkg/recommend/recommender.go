// Package recommend produces scored document and question candidates for a
// conversation and merges them into one ranked suggestion.
package recommend

import (
	"context"
	"math"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/pkg/mlapi"
	"agent-assist-be/pkg/search"
)

type Config struct {
	NumberOfWordsIntoQ    int
	ContextEntitiesWindow int
}

// Recommenders reads the conversation but never mutates it, so several of
// them can run on the same context at once.
type Recommenders struct {
	index     search.IndexSearch
	analytics mlapi.LastClickAnalytics
	nearest   mlapi.NearestDocuments
	facets    mlapi.DocumentFacets
	filter    mlapi.FilterDocuments
	cfg       Config
	logger    logger.ILogger
}

func NewRecommenders(
	index search.IndexSearch,
	analytics mlapi.LastClickAnalytics,
	nearest mlapi.NearestDocuments,
	facets mlapi.DocumentFacets,
	filter mlapi.FilterDocuments,
	cfg Config,
	log logger.ILogger,
) *Recommenders {
	if cfg.NumberOfWordsIntoQ <= 0 {
		cfg.NumberOfWordsIntoQ = 15
	}
	if cfg.ContextEntitiesWindow <= 0 {
		cfg.ContextEntitiesWindow = 10
	}
	return &Recommenders{
		index:     index,
		analytics: analytics,
		nearest:   nearest,
		facets:    facets,
		filter:    filter,
		cfg:       cfg,
		logger:    log,
	}
}

func (r *Recommenders) LongQuerySearch(ctx context.Context, conv *entity.ConversationContext) ([]entity.Recommendation[*entity.Document], error) {
	query := longQuery(conv)
	if query == "" {
		return []entity.Recommendation[*entity.Document]{}, nil
	}

	result, err := r.index.LongQuerySearch(ctx, query, conv.MustHaveFacets)
	if err != nil {
		return nil, err
	}
	return searchRecommendations(conv, result, entity.RecommenderLongQuerySearch), nil
}

func (r *Recommenders) PreprocessedQuerySearch(ctx context.Context, conv *entity.ConversationContext) ([]entity.Recommendation[*entity.Document], error) {
	query := CreateQuery(conv, r.cfg.NumberOfWordsIntoQ)
	if query == "" {
		return []entity.Recommendation[*entity.Document]{}, nil
	}

	r.logger.Debug("Recommend", "Preprocessed query built", map[string]interface{}{"query": query})

	result, err := r.index.QuerySearch(ctx, query, conv.MustHaveFacets)
	if err != nil {
		return nil, err
	}
	return searchRecommendations(conv, result, entity.RecommenderPreprocessedQuerySearch), nil
}

func (r *Recommenders) LastClickAnalytics(ctx context.Context, conv *entity.ConversationContext) ([]entity.Recommendation[*entity.Document], error) {
	keywords := ContextEntities(conv, r.cfg.ContextEntitiesWindow)
	if len(keywords) == 0 {
		return []entity.Recommendation[*entity.Document]{}, nil
	}

	results, err := r.analytics.GetLastClickAnalyticsResults(ctx, keywords)
	if err != nil {
		return nil, err
	}
	return r.scoredRecommendations(ctx, conv, results, entity.RecommenderLastClickAnalytics)
}

// NearestDocuments looks for documents close to the conversation keywords,
// seeded with candidateUris.
func (r *Recommenders) NearestDocuments(ctx context.Context, conv *entity.ConversationContext, candidateUris []string) ([]entity.Recommendation[*entity.Document], error) {
	keywords := relevantParsedTokens(conv)
	if len(keywords) == 0 || len(candidateUris) == 0 {
		return []entity.Recommendation[*entity.Document]{}, nil
	}

	results, err := r.nearest.GetNearestDocumentsResults(ctx, mlapi.NearestDocumentsParameters{
		ContextEntities: keywords,
		DocumentsUri:    candidateUris,
	})
	if err != nil {
		return nil, err
	}
	return r.scoredRecommendations(ctx, conv, results, entity.RecommenderNearestDocuments)
}

// FacetQuestions asks which facets would best split documents. Returned
// questions reuse the conversation's question of the same text, and
// questions already settled are left out. The conversation is not modified.
func (r *Recommenders) FacetQuestions(ctx context.Context, conv *entity.ConversationContext, documents []*entity.Document) ([]entity.Recommendation[*entity.Question], error) {
	if len(documents) == 0 {
		return []entity.Recommendation[*entity.Question]{}, nil
	}

	uris := make([]string, 0, len(documents))
	for _, d := range documents {
		uris = append(uris, d.Uri)
	}

	results, err := r.facets.GetQuestions(ctx, uris)
	if err != nil {
		return nil, err
	}

	out := make([]entity.Recommendation[*entity.Question], 0, len(results))
	for _, result := range results {
		question := entity.NewFacetQuestion(result.FacetName, result.FacetValues)
		if result.Text != "" {
			question.Text = result.Text
		}
		if known := conv.QuestionByText(question.Text); known != nil {
			question = known
		}
		if question.Status.Settled() {
			continue
		}
		out = append(out, entity.NewRecommendation(question, result.Score, entity.RecommenderFacetQuestions))
	}
	return out, nil
}

func (r *Recommenders) scoredRecommendations(ctx context.Context, conv *entity.ConversationContext, results []mlapi.ScoredDocument, kind entity.RecommenderKind) ([]entity.Recommendation[*entity.Document], error) {
	if len(conv.MustHaveFacets) > 0 && len(results) > 0 {
		uris := make([]string, 0, len(results))
		for _, res := range results {
			uris = append(uris, res.Document.Uri)
		}
		kept, err := r.filter.FilterDocumentsByFacets(ctx, uris, conv.MustHaveFacets)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]bool, len(kept))
		for _, uri := range kept {
			allowed[uri] = true
		}
		filtered := results[:0:0]
		for _, res := range results {
			if allowed[res.Document.Uri] {
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}

	out := make([]entity.Recommendation[*entity.Document], 0, len(results))
	for _, res := range results {
		out = append(out, entity.NewRecommendation(knownDocument(conv, res.Document), res.Score, kind))
	}
	sortByConfidence(out)
	return out, nil
}

func searchRecommendations(conv *entity.ConversationContext, result *search.Result, kind entity.RecommenderKind) []entity.Recommendation[*entity.Document] {
	if result == nil {
		return []entity.Recommendation[*entity.Document]{}
	}

	out := make([]entity.Recommendation[*entity.Document], 0, len(result.Elements))
	for _, el := range result.Elements {
		if !el.Valid() {
			continue
		}
		doc := conv.SuggestedDocumentByUri(el.Uri)
		if doc == nil {
			doc = entity.NewDocument(el.Title, el.Uri, el.PrintableUri, el.Summary, el.Excerpt)
		}
		confidence := math.Round(el.PercentScore/100*10000) / 10000
		out = append(out, entity.NewRecommendation(doc, confidence, kind))
	}
	return FilterOutChosenSuggestions(out, conv.ContextItems)
}

// knownDocument keeps a document's id stable across turns.
func knownDocument(conv *entity.ConversationContext, doc *entity.Document) *entity.Document {
	if known := conv.SuggestedDocumentByUri(doc.Uri); known != nil {
		return known
	}
	return doc
}
