package service

import (
	"context"
	"sync"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/pkg/events"
	"agent-assist-be/pkg/nlp"
	"agent-assist-be/pkg/recommend"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

type documentResults = []entity.Recommendation[*entity.Document]

// ISuggestionService defines the suggestion aggregation interface
type ISuggestionService interface {
	UpdateContextWithNewItem(ctx context.Context, conv *entity.ConversationContext, message entity.Message) (bool, error)
	GetNewSuggestion(ctx context.Context, conv *entity.ConversationContext, query entity.SuggestionQuery) (*entity.Suggestion, error)
	GetLastSuggestion(ctx context.Context, conv *entity.ConversationContext, query entity.SuggestionQuery) *entity.Suggestion
	UpdateContextWithSelectedSuggestion(ctx context.Context, conv *entity.ConversationContext, id uuid.UUID) error
}

type SuggestionServiceConfig struct {
	MinimumConfidence float64
	Settings          entity.RecommenderSettings
}

type suggestionService struct {
	recommenders *recommend.Recommenders
	analyzer     nlp.Analyzer
	publisher    IPublisherService
	cfg          SuggestionServiceConfig
	logger       logger.ILogger
}

func NewSuggestionService(
	recommenders *recommend.Recommenders,
	analyzer nlp.Analyzer,
	publisher IPublisherService,
	cfg SuggestionServiceConfig,
	log logger.ILogger,
) ISuggestionService {
	return &suggestionService{
		recommenders: recommenders,
		analyzer:     analyzer,
		publisher:    publisher,
		cfg:          cfg,
		logger:       log,
	}
}

// UpdateContextWithNewItem analyzes the message and appends it to the
// conversation. It reports whether the message was judged relevant.
func (s *suggestionService) UpdateContextWithNewItem(ctx context.Context, conv *entity.ConversationContext, message entity.Message) (bool, error) {
	analysis, relevant, err := s.analyzer.Analyze(ctx, message.Query)
	if err != nil {
		return false, &AnalysisError{Err: err}
	}

	conv.RecordNewMessage(message, analysis, relevant)

	s.logger.Debug("SuggestionService", "Message recorded", map[string]interface{}{
		"chat_key": conv.ChatKey.String(),
		"type":     string(message.Type),
		"relevant": relevant,
		"items":    len(conv.ContextItems),
	})
	return relevant, nil
}

func (s *suggestionService) GetNewSuggestion(ctx context.Context, conv *entity.ConversationContext, query entity.SuggestionQuery) (*entity.Suggestion, error) {
	ctx, span := otel.Tracer("agent-assist-be/suggestion").Start(ctx, "suggestion.GetNewSuggestion")
	defer span.End()

	settings := s.cfg.Settings
	if query.Override != nil {
		settings = *query.Override
	}

	documents, err := s.recommendDocuments(ctx, conv, settings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	merged := recommend.MergeDocuments(documents, s.cfg.MinimumConfidence)

	questionLists := make([][]entity.Recommendation[*entity.Question], 0, 1)
	if len(merged) > 0 && settings.UseFacetQuestionRecommender {
		values := make([]*entity.Document, 0, len(merged))
		for _, r := range merged {
			values = append(values, r.Value)
		}

		questions, err := traced(ctx, entity.RecommenderFacetQuestions, func(ctx context.Context) ([]entity.Recommendation[*entity.Question], error) {
			return s.recommenders.FacetQuestions(ctx, conv, values)
		})
		if err != nil {
			err = &RecommenderError{Kind: entity.RecommenderFacetQuestions, Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		// the whole batch is remembered, only the page is merged
		generated := make([]*entity.Question, 0, len(questions))
		for _, q := range questions {
			generated = append(generated, q.Value)
		}
		conv.RecordGeneratedQuestions(generated)
		questionLists = append(questionLists, truncate(questions, query.MaxQuestions))
	}

	suggestion := &entity.Suggestion{
		Documents:    truncate(merged, query.MaxDocuments),
		Questions:    truncate(recommend.MergeQuestions(questionLists), query.MaxQuestions),
		ActiveFacets: append([]entity.Facet{}, conv.MustHaveFacets...),
	}

	shown := make([]*entity.Document, 0, len(suggestion.Documents))
	for _, r := range suggestion.Documents {
		shown = append(shown, r.Value)
	}
	conv.AddSuggestedDocuments(shown)
	conv.LastSuggestion = suggestion

	span.SetAttributes(
		attribute.Int("suggestion.documents", len(suggestion.Documents)),
		attribute.Int("suggestion.questions", len(suggestion.Questions)),
	)
	s.logger.Info("SuggestionService", "Suggestion computed", map[string]interface{}{
		"chat_key":   conv.ChatKey.String(),
		"documents":  len(suggestion.Documents),
		"questions":  len(suggestion.Questions),
		"candidates": len(merged),
	})

	s.publish(ctx, events.TypeSuggestionGenerated, conv.ChatKey, suggestion.Documents, suggestion.Questions)
	return suggestion, nil
}

// recommendDocuments runs every enabled document recommender concurrently
// and returns their lists in recommender order. The first failure cancels
// the others.
func (s *suggestionService) recommendDocuments(ctx context.Context, conv *entity.ConversationContext, settings entity.RecommenderSettings) ([]documentResults, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]documentResults, int(entity.RecommenderFacetQuestions))

	preprocessed := sync.OnceValues(func() (documentResults, error) {
		return traced(gctx, entity.RecommenderPreprocessedQuerySearch, func(ctx context.Context) (documentResults, error) {
			return s.recommenders.PreprocessedQuerySearch(ctx, conv)
		})
	})

	launch := func(kind entity.RecommenderKind, fn func() (documentResults, error)) {
		g.Go(func() error {
			recs, err := fn()
			if err != nil {
				return &RecommenderError{Kind: kind, Err: err}
			}
			results[kind] = recs
			return nil
		})
	}

	if settings.UseLongQuerySearchRecommender {
		launch(entity.RecommenderLongQuerySearch, func() (documentResults, error) {
			return traced(gctx, entity.RecommenderLongQuerySearch, func(ctx context.Context) (documentResults, error) {
				return s.recommenders.LongQuerySearch(ctx, conv)
			})
		})
	}

	if settings.UsePreprocessedQuerySearchRecommender {
		launch(entity.RecommenderPreprocessedQuerySearch, preprocessed)
	}

	if settings.UseAnalyticsSearchRecommender {
		launch(entity.RecommenderLastClickAnalytics, func() (documentResults, error) {
			return traced(gctx, entity.RecommenderLastClickAnalytics, func(ctx context.Context) (documentResults, error) {
				return s.recommenders.LastClickAnalytics(ctx, conv)
			})
		})
	}

	if settings.UseNearestDocumentsRecommender {
		launch(entity.RecommenderNearestDocuments, func() (documentResults, error) {
			candidates, err := preprocessed()
			if err != nil {
				return nil, err
			}
			uris := make([]string, 0, len(candidates))
			for _, r := range candidates {
				uris = append(uris, r.Value.Uri)
			}
			return traced(gctx, entity.RecommenderNearestDocuments, func(ctx context.Context) (documentResults, error) {
				return s.recommenders.NearestDocuments(ctx, conv, uris)
			})
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("SuggestionService", "Aggregation aborted", map[string]interface{}{
			"chat_key": conv.ChatKey.String(),
			"error":    err.Error(),
		})
		return nil, err
	}

	out := make([]documentResults, 0, len(results))
	for _, recs := range results {
		if recs != nil {
			out = append(out, recs)
		}
	}
	return out, nil
}

// traced runs one recommender inside its own span.
func traced[T any](ctx context.Context, kind entity.RecommenderKind, fn func(ctx context.Context) ([]T, error)) ([]T, error) {
	ctx, span := otel.Tracer("agent-assist-be/recommend").Start(ctx, "recommend."+kind.String())
	defer span.End()

	start := time.Now()
	recs, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("recommend.results", len(recs)),
		attribute.Int64("recommend.duration_ms", time.Since(start).Milliseconds()),
	)
	return recs, nil
}

// GetLastSuggestion returns the previous suggestion again, cut to the
// requested sizes, with the facets active now.
func (s *suggestionService) GetLastSuggestion(ctx context.Context, conv *entity.ConversationContext, query entity.SuggestionQuery) *entity.Suggestion {
	suggestion := &entity.Suggestion{
		Documents:    []entity.Recommendation[*entity.Document]{},
		Questions:    []entity.Recommendation[*entity.Question]{},
		ActiveFacets: append([]entity.Facet{}, conv.MustHaveFacets...),
	}
	if conv.LastSuggestion == nil {
		return suggestion
	}

	suggestion.Documents = truncate(conv.LastSuggestion.Documents, query.MaxDocuments)
	suggestion.Questions = truncate(conv.LastSuggestion.Questions, query.MaxQuestions)
	return suggestion
}

// UpdateContextWithSelectedSuggestion marks a suggested document as
// selected, or a suggested question as clicked.
func (s *suggestionService) UpdateContextWithSelectedSuggestion(ctx context.Context, conv *entity.ConversationContext, id uuid.UUID) error {
	if document := conv.SuggestedDocumentById(id); document != nil {
		conv.SelectDocument(document)
		s.logger.Info("SuggestionService", "Document selected", map[string]interface{}{
			"chat_key": conv.ChatKey.String(),
			"uri":      document.Uri,
		})
		s.publish(ctx, events.TypeSuggestionSelected, conv.ChatKey,
			[]entity.Recommendation[*entity.Document]{{Value: document}}, nil)
		return nil
	}

	if question := conv.QuestionById(id); question != nil {
		question.Status = entity.QuestionStatusClicked
		s.logger.Info("SuggestionService", "Question clicked", map[string]interface{}{
			"chat_key":    conv.ChatKey.String(),
			"question_id": question.Id.String(),
		})
		s.publish(ctx, events.TypeSuggestionSelected, conv.ChatKey, nil,
			[]entity.Recommendation[*entity.Question]{{Value: question}})
		return nil
	}

	return ErrSuggestionNotFound
}

func (s *suggestionService) publish(ctx context.Context, eventType string, chatKey uuid.UUID, documents []entity.Recommendation[*entity.Document], questions []entity.Recommendation[*entity.Question]) {
	if s.publisher == nil {
		return
	}

	evt := events.SuggestionEvent{
		Type:         eventType,
		ChatKey:      chatKey,
		DocumentUris: make([]string, 0, len(documents)),
		QuestionIds:  make([]string, 0, len(questions)),
		OccurredAt:   time.Now(),
	}
	for _, d := range documents {
		evt.DocumentUris = append(evt.DocumentUris, d.Value.Uri)
	}
	for _, q := range questions {
		evt.QuestionIds = append(evt.QuestionIds, q.Value.Id.String())
	}

	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SuggestionService", "Failed to publish suggestion event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func truncate[T any](values []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(values) <= n {
		return append([]T{}, values...)
	}
	return append([]T{}, values[:n]...)
}
