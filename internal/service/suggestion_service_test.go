package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/mocks"
	"agent-assist-be/internal/pkg/logger"
	"agent-assist-be/pkg/events"
	"agent-assist-be/pkg/mlapi"
	"agent-assist-be/pkg/recommend"
	"agent-assist-be/pkg/search"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SuggestionEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, evt events.SuggestionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

type suggestionFixture struct {
	index     *mocks.IndexSearch
	analytics *mocks.LastClickAnalytics
	nearest   *mocks.NearestDocuments
	facets    *mocks.DocumentFacets
	filter    *mocks.FilterDocuments
	analyzer  *mocks.Analyzer
	publisher *recordingPublisher
	service   ISuggestionService
}

func searchOnly() entity.RecommenderSettings {
	return entity.RecommenderSettings{UsePreprocessedQuerySearchRecommender: true}
}

func newSuggestionFixture(t *testing.T, settings entity.RecommenderSettings) *suggestionFixture {
	t.Helper()
	f := &suggestionFixture{
		index:     &mocks.IndexSearch{},
		analytics: &mocks.LastClickAnalytics{},
		nearest:   &mocks.NearestDocuments{},
		facets:    &mocks.DocumentFacets{},
		filter:    &mocks.FilterDocuments{},
		analyzer:  &mocks.Analyzer{},
		publisher: &recordingPublisher{},
	}
	log := logger.NewNopLogger()
	recommenders := recommend.NewRecommenders(f.index, f.analytics, f.nearest, f.facets, f.filter,
		recommend.Config{NumberOfWordsIntoQ: 15, ContextEntitiesWindow: 10}, log)
	f.service = NewSuggestionService(recommenders, f.analyzer, f.publisher,
		SuggestionServiceConfig{Settings: settings}, log)

	t.Cleanup(func() {
		f.index.AssertExpectations(t)
		f.analytics.AssertExpectations(t)
		f.nearest.AssertExpectations(t)
		f.facets.AssertExpectations(t)
		f.filter.AssertExpectations(t)
		f.analyzer.AssertExpectations(t)
	})
	return f
}

func conversationWith(parsed string) *entity.ConversationContext {
	conv := entity.NewConversationContext(uuid.New(), time.Now())
	conv.RecordNewMessage(entity.Message{ChatKey: conv.ChatKey, Query: parsed, Type: entity.MessageTypeCustomer},
		entity.Analysis{ParsedQuery: parsed}, true)
	return conv
}

func fourHits() *search.Result {
	return &search.Result{TotalCount: 4, Elements: []search.ResultElement{
		{Title: "a", Uri: "https://a", PrintableUri: "https://a", PercentScore: 90},
		{Title: "b", Uri: "https://b", PrintableUri: "https://b", PercentScore: 70},
		{Title: "c", Uri: "https://c", PrintableUri: "https://c", PercentScore: 50},
		{Title: "d", Uri: "https://d", PrintableUri: "https://d", PercentScore: 30},
	}}
}

func uris(recs []entity.Recommendation[*entity.Document]) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Value.Uri)
	}
	return out
}

func TestGetNewSuggestion_TruncatesToMaxDocuments(t *testing.T) {
	tests := []struct {
		name         string
		maxDocuments int
		want         []string
	}{
		{name: "fewer than available", maxDocuments: 2, want: []string{"https://a", "https://b"}},
		{name: "never pads", maxDocuments: 10, want: []string{"https://a", "https://b", "https://c", "https://d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSuggestionFixture(t, searchOnly())
			conv := conversationWith("search api")
			f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil)

			suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: tt.maxDocuments, MaxQuestions: 5})
			require.NoError(t, err)

			assert.Equal(t, tt.want, uris(suggestion.Documents))
			for i := 1; i < len(suggestion.Documents); i++ {
				assert.GreaterOrEqual(t, suggestion.Documents[i-1].Confidence, suggestion.Documents[i].Confidence)
			}
			assert.Len(t, conv.SuggestedDocuments, len(tt.want))
		})
	}
}

func TestGetNewSuggestion_MergesRecommenders(t *testing.T) {
	settings := searchOnly()
	settings.UseLongQuerySearchRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(&search.Result{Elements: []search.ResultElement{
		{Title: "a", Uri: "https://a", PrintableUri: "https://a", PercentScore: 60},
	}}, nil)
	f.index.On("LongQuerySearch", mock.Anything, "search api", mock.Anything).Return(&search.Result{Elements: []search.ResultElement{
		{Title: "a", Uri: "https://a", PrintableUri: "https://a", PercentScore: 90},
		{Title: "b", Uri: "https://b", PrintableUri: "https://b", PercentScore: 80},
	}}, nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10, MaxQuestions: 5})
	require.NoError(t, err)

	require.Len(t, suggestion.Documents, 2)
	assert.Equal(t, "https://a", suggestion.Documents[0].Value.Uri)
	assert.Equal(t, 0.9, suggestion.Documents[0].Confidence)
	assert.Equal(t, []entity.RecommenderKind{entity.RecommenderLongQuerySearch, entity.RecommenderPreprocessedQuerySearch}, suggestion.Documents[0].RecommendedBy)
}

func TestGetNewSuggestion_MinimumConfidence(t *testing.T) {
	f := newSuggestionFixture(t, searchOnly())
	f.service.(*suggestionService).cfg.MinimumConfidence = 0.6
	conv := conversationWith("search api")
	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a", "https://b"}, uris(suggestion.Documents))
}

func TestGetNewSuggestion_FailureAbortsAggregation(t *testing.T) {
	settings := searchOnly()
	settings.UseLongQuerySearchRecommender = true
	settings.UseFacetQuestionRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("LongQuerySearch", mock.Anything, mock.Anything, mock.Anything).Return(fourHits(), nil).Maybe()
	f.index.On("QuerySearch", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("index unavailable"))

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10, MaxQuestions: 5})
	require.Error(t, err)
	assert.Nil(t, suggestion)

	var recErr *RecommenderError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, entity.RecommenderPreprocessedQuerySearch, recErr.Kind)

	assert.Empty(t, conv.SuggestedDocuments)
	assert.Nil(t, conv.LastSuggestion)
	assert.Empty(t, f.publisher.events)
}

func TestGetNewSuggestion_OverrideIsPerRequest(t *testing.T) {
	f := newSuggestionFixture(t, searchOnly())
	conv := conversationWith("search api")

	disabled := entity.RecommenderSettings{}
	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10, Override: &disabled})
	require.NoError(t, err)
	assert.Empty(t, suggestion.Documents)
	f.index.AssertNotCalled(t, "QuerySearch", mock.Anything, mock.Anything, mock.Anything)

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil).Once()
	suggestion, err = f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10})
	require.NoError(t, err)
	assert.Len(t, suggestion.Documents, 4)
}

func TestGetNewSuggestion_NearestReusesPreprocessedSearch(t *testing.T) {
	settings := searchOnly()
	settings.UseNearestDocumentsRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil).Once()
	f.nearest.On("GetNearestDocumentsResults", mock.Anything, mlapi.NearestDocumentsParameters{
		ContextEntities: []string{"search", "api"},
		DocumentsUri:    []string{"https://a", "https://b", "https://c", "https://d"},
	}).Return([]mlapi.ScoredDocument{
		{Document: entity.NewDocument("e", "https://e", "https://e", "", ""), Score: 0.95},
	}, nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://e", "https://a", "https://b"}, uris(suggestion.Documents))
	assert.Equal(t, []entity.RecommenderKind{entity.RecommenderNearestDocuments}, suggestion.Documents[0].RecommendedBy)
}

func TestGetNewSuggestion_NearestWithoutPreprocessedSearch(t *testing.T) {
	f := newSuggestionFixture(t, entity.RecommenderSettings{UseNearestDocumentsRecommender: true})
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil).Once()
	f.nearest.On("GetNearestDocumentsResults", mock.Anything, mock.Anything).Return([]mlapi.ScoredDocument{
		{Document: entity.NewDocument("b", "https://b", "https://b", "", ""), Score: 0.4},
	}, nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://b"}, uris(suggestion.Documents))
}

func TestGetNewSuggestion_FacetQuestions(t *testing.T) {
	settings := searchOnly()
	settings.UseFacetQuestionRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil)
	f.facets.On("GetQuestions", mock.Anything, []string{"https://a", "https://b", "https://c", "https://d"}).
		Return([]mlapi.FacetQuestionResult{
			{FacetName: "product", FacetValues: []string{"cloud", "server"}, Score: 0.5},
			{FacetName: "version", FacetValues: []string{"7", "8"}, Score: 0.9},
			{FacetName: "language", FacetValues: []string{"en", "fr"}, Score: 0.2},
		}, nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 1, MaxQuestions: 2})
	require.NoError(t, err)

	require.Len(t, suggestion.Questions, 2)
	assert.Equal(t, "What version are you interested in?", suggestion.Questions[0].Value.Text)
	assert.Equal(t, "What product are you interested in?", suggestion.Questions[1].Value.Text)
	// every generated question is remembered, not only the page shown
	assert.Len(t, conv.Questions, 3)
	assert.Len(t, conv.LastSuggestedQuestions, 3)
	assert.Len(t, conv.SuggestedDocuments, 1)
}

func TestGetNewSuggestion_FacetQuestionFailureAborts(t *testing.T) {
	settings := searchOnly()
	settings.UseFacetQuestionRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil)
	f.facets.On("GetQuestions", mock.Anything, mock.Anything).Return(nil, errors.New("ml api down"))

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 2, MaxQuestions: 2})
	require.Error(t, err)
	assert.Nil(t, suggestion)

	var recommenderErr *RecommenderError
	require.ErrorAs(t, err, &recommenderErr)
	assert.Equal(t, entity.RecommenderFacetQuestions, recommenderErr.Kind)
	assert.EqualError(t, recommenderErr.Err, "ml api down")

	assert.Empty(t, conv.SuggestedDocuments)
	assert.Nil(t, conv.LastSuggestion)
}

func TestGetNewSuggestion_NoQuestionsWithoutDocuments(t *testing.T) {
	settings := searchOnly()
	settings.UseFacetQuestionRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(&search.Result{}, nil)

	suggestion, err := f.service.GetNewSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 5, MaxQuestions: 5})
	require.NoError(t, err)
	assert.Empty(t, suggestion.Documents)
	assert.Empty(t, suggestion.Questions)
}

func TestGetLastSuggestion_RefreshReturnsSameSuggestion(t *testing.T) {
	settings := searchOnly()
	settings.UseFacetQuestionRecommender = true
	f := newSuggestionFixture(t, settings)
	conv := conversationWith("search api")
	conv.MustHaveFacets = append(conv.MustHaveFacets, entity.NewFacet("product", "cloud"))

	f.index.On("QuerySearch", mock.Anything, "search api", mock.Anything).Return(fourHits(), nil).Once()
	f.facets.On("GetQuestions", mock.Anything, mock.Anything).Return([]mlapi.FacetQuestionResult{
		{FacetName: "version", FacetValues: []string{"7", "8"}, Score: 0.9},
	}, nil).Once()

	query := entity.SuggestionQuery{MaxDocuments: 3, MaxQuestions: 3}
	first, err := f.service.GetNewSuggestion(context.Background(), conv, query)
	require.NoError(t, err)

	refreshed := f.service.GetLastSuggestion(context.Background(), conv, query)
	assert.Equal(t, first.Documents, refreshed.Documents)
	assert.Equal(t, first.Questions, refreshed.Questions)
	assert.Equal(t, first.ActiveFacets, refreshed.ActiveFacets)
}

func TestGetLastSuggestion_Empty(t *testing.T) {
	f := newSuggestionFixture(t, searchOnly())
	conv := conversationWith("search api")

	suggestion := f.service.GetLastSuggestion(context.Background(), conv, entity.SuggestionQuery{MaxDocuments: 3, MaxQuestions: 3})
	assert.Empty(t, suggestion.Documents)
	assert.Empty(t, suggestion.Questions)
	assert.NotNil(t, suggestion.ActiveFacets)
}

func TestUpdateContextWithSelectedSuggestion(t *testing.T) {
	f := newSuggestionFixture(t, searchOnly())
	conv := conversationWith("search api")
	document := entity.NewDocument("a", "https://a", "https://a", "", "")
	conv.AddSuggestedDocuments([]*entity.Document{document})
	question := entity.NewFacetQuestion("product", []string{"cloud"})
	conv.RecordGeneratedQuestions([]*entity.Question{question})

	t.Run("document", func(t *testing.T) {
		require.NoError(t, f.service.UpdateContextWithSelectedSuggestion(context.Background(), conv, document.Id))
		assert.Equal(t, []*entity.Document{document}, conv.SelectedSuggestedDocuments)
	})

	t.Run("question", func(t *testing.T) {
		require.NoError(t, f.service.UpdateContextWithSelectedSuggestion(context.Background(), conv, question.Id))
		assert.Equal(t, entity.QuestionStatusClicked, question.Status)
	})

	t.Run("unknown id", func(t *testing.T) {
		before := len(conv.SelectedSuggestedDocuments)
		err := f.service.UpdateContextWithSelectedSuggestion(context.Background(), conv, uuid.New())
		assert.ErrorIs(t, err, ErrSuggestionNotFound)
		assert.Len(t, conv.SelectedSuggestedDocuments, before)
	})

	require.Len(t, f.publisher.events, 2)
	assert.Equal(t, events.TypeSuggestionSelected, f.publisher.events[0].Type)
	assert.Equal(t, []string{"https://a"}, f.publisher.events[0].DocumentUris)
}

func TestUpdateContextWithNewItem(t *testing.T) {
	f := newSuggestionFixture(t, searchOnly())
	conv := entity.NewConversationContext(uuid.New(), time.Now())
	message := entity.Message{ChatKey: conv.ChatKey, Query: "hello there", Type: entity.MessageTypeCustomer}

	f.analyzer.On("Analyze", mock.Anything, "hello there").Return(entity.Analysis{ParsedQuery: "hello"}, false, nil).Once()
	relevant, err := f.service.UpdateContextWithNewItem(context.Background(), conv, message)
	require.NoError(t, err)
	assert.False(t, relevant)
	require.Len(t, conv.ContextItems, 1)
	assert.Equal(t, "hello", conv.ContextItems[0].Analysis.ParsedQuery)

	f.analyzer.On("Analyze", mock.Anything, "broken").Return(entity.Analysis{}, false, errors.New("nlp down")).Once()
	_, err = f.service.UpdateContextWithNewItem(context.Background(), conv, entity.Message{Query: "broken"})
	var analysisErr *AnalysisError
	assert.ErrorAs(t, err, &analysisErr)
	assert.Len(t, conv.ContextItems, 1)
}
