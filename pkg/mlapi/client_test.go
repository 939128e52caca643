package mlapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Path string
	Body []byte
}

func newAPIServer(t *testing.T, status int, response string, captured *capturedRequest) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured.Path = r.URL.Path
			captured.Body = raw
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, logger.NewNopLogger())
}

func TestLastClickAnalytics_SortsKeywords(t *testing.T) {
	var captured capturedRequest
	client := newAPIServer(t, http.StatusOK, `[
		{"document": {"title": "Ranking", "uri": "https://docs/ranking", "printableUri": "https://docs/ranking"}, "score": 0.8},
		{"document": {"title": "Broken"}, "score": 0.5}
	]`, &captured)

	results, err := NewLastClickAnalytics(client).GetLastClickAnalyticsResults(context.Background(), []string{"ranking", "boost", "query"})
	require.NoError(t, err)

	assert.Equal(t, "/ML/Analytics", captured.Path)
	assert.JSONEq(t, `["boost","query","ranking"]`, string(captured.Body))
	require.Len(t, results, 1)
	assert.Equal(t, "https://docs/ranking", results[0].Document.Uri)
	assert.Equal(t, 0.8, results[0].Score)
}

func TestNearestDocuments_Request(t *testing.T) {
	var captured capturedRequest
	client := newAPIServer(t, http.StatusOK, `[{"document": {"title": "A", "uri": "https://a", "printableUri": "https://a"}, "score": 0.4}]`, &captured)

	results, err := NewNearestDocuments(client).GetNearestDocumentsResults(context.Background(), NearestDocumentsParameters{
		ContextEntities: []string{"b", "a"},
		DocumentsUri:    []string{"https://a"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	var sent NearestDocumentsParameters
	require.NoError(t, json.Unmarshal(captured.Body, &sent))
	assert.Equal(t, "/ML/NearestDocuments", captured.Path)
	assert.Equal(t, []string{"a", "b"}, sent.ContextEntities)
	assert.Equal(t, []string{"https://a"}, sent.DocumentsUri)
}

func TestDocumentFacets_SkipsIncompleteQuestions(t *testing.T) {
	client := newAPIServer(t, http.StatusOK, `[
		{"text": "Which deployment do you use?", "facetName": "product", "facetValues": ["cloud", "on-prem"], "score": 0.9},
		{"facetName": "", "facetValues": ["x"], "score": 0.5},
		{"facetName": "version", "facetValues": [], "score": 0.4}
	]`, nil)

	questions, err := NewDocumentFacets(client).GetQuestions(context.Background(), []string{"https://a"})
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "product", questions[0].FacetName)
	assert.Equal(t, []string{"cloud", "on-prem"}, questions[0].FacetValues)
	assert.Equal(t, "Which deployment do you use?", questions[0].Text)
}

func TestFilterDocuments_SendsFacets(t *testing.T) {
	var captured capturedRequest
	client := newAPIServer(t, http.StatusOK, `["https://a"]`, &captured)

	uris, err := NewFilterDocuments(client).FilterDocumentsByFacets(context.Background(),
		[]string{"https://a", "https://b"},
		[]entity.Facet{entity.NewFacet("product", "cloud")})
	require.NoError(t, err)

	assert.Equal(t, "/ML/Filter/Facets", captured.Path)
	assert.JSONEq(t, `{"documents":["https://a","https://b"],"mustHaveFacets":[{"name":"product","values":["cloud"]}]}`, string(captured.Body))
	assert.Equal(t, []string{"https://a"}, uris)
}

func TestClient_StatusError(t *testing.T) {
	client := newAPIServer(t, http.StatusServiceUnavailable, `down`, nil)

	_, err := NewLastClickAnalytics(client).GetLastClickAnalyticsResults(context.Background(), nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "ML/Analytics", statusErr.Endpoint)
}
