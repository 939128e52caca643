// Package mocks holds testify mocks of the external collaborators.
package mocks

import (
	"context"

	"agent-assist-be/internal/entity"
	"agent-assist-be/pkg/mlapi"
	"agent-assist-be/pkg/search"

	"github.com/stretchr/testify/mock"
)

type IndexSearch struct {
	mock.Mock
}

func (m *IndexSearch) LongQuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*search.Result, error) {
	args := m.Called(ctx, query, mustHaveFacets)
	result, _ := args.Get(0).(*search.Result)
	return result, args.Error(1)
}

func (m *IndexSearch) QuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*search.Result, error) {
	args := m.Called(ctx, query, mustHaveFacets)
	result, _ := args.Get(0).(*search.Result)
	return result, args.Error(1)
}

type LastClickAnalytics struct {
	mock.Mock
}

func (m *LastClickAnalytics) GetLastClickAnalyticsResults(ctx context.Context, contextEntities []string) ([]mlapi.ScoredDocument, error) {
	args := m.Called(ctx, contextEntities)
	results, _ := args.Get(0).([]mlapi.ScoredDocument)
	return results, args.Error(1)
}

type NearestDocuments struct {
	mock.Mock
}

func (m *NearestDocuments) GetNearestDocumentsResults(ctx context.Context, parameters mlapi.NearestDocumentsParameters) ([]mlapi.ScoredDocument, error) {
	args := m.Called(ctx, parameters)
	results, _ := args.Get(0).([]mlapi.ScoredDocument)
	return results, args.Error(1)
}

type DocumentFacets struct {
	mock.Mock
}

func (m *DocumentFacets) GetQuestions(ctx context.Context, documentsUri []string) ([]mlapi.FacetQuestionResult, error) {
	args := m.Called(ctx, documentsUri)
	results, _ := args.Get(0).([]mlapi.FacetQuestionResult)
	return results, args.Error(1)
}

type FilterDocuments struct {
	mock.Mock
}

func (m *FilterDocuments) FilterDocumentsByFacets(ctx context.Context, documentsUri []string, mustHaveFacets []entity.Facet) ([]string, error) {
	args := m.Called(ctx, documentsUri, mustHaveFacets)
	uris, _ := args.Get(0).([]string)
	return uris, args.Error(1)
}

type Analyzer struct {
	mock.Mock
}

func (m *Analyzer) Analyze(ctx context.Context, message string) (entity.Analysis, bool, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(entity.Analysis), args.Bool(1), args.Error(2)
}
