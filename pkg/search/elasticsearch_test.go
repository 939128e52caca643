package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchResponse = `{
  "hits": {
    "total": {"value": 3},
    "max_score": 8.0,
    "hits": [
      {"_id": "1", "_score": 8.0, "_source": {"title": "Query syntax", "uri": "https://docs/query", "printableUri": "https://docs/query"}},
      {"_id": "2", "_score": 4.0, "_source": {"title": "Facets", "uri": "https://docs/facets", "printableUri": "https://docs/facets", "summary": "facet help"}},
      {"_id": "3", "_score": 2.0, "_source": {"uri": "https://docs/untitled"}}
    ]
  }
}`

func newTestServer(t *testing.T, captured *map[string]any, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/kb/_search" && captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestElasticIndexSearch_QuerySearch(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, &captured, http.StatusOK, searchResponse)
	defer srv.Close()

	client, err := NewElasticIndexSearch(Config{Addresses: []string{srv.URL}, Index: "kb", NumberOfResults: 5}, logger.NewNopLogger())
	require.NoError(t, err)

	facets := []entity.Facet{entity.NewFacet("product", "cloud")}
	result, err := client.QuerySearch(context.Background(), "facet syntax", facets)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Elements, 3)
	assert.Equal(t, 100.0, result.Elements[0].PercentScore)
	assert.Equal(t, 50.0, result.Elements[1].PercentScore)
	assert.Equal(t, "facet help", result.Elements[1].Summary)
	assert.False(t, result.Elements[2].Valid())

	assert.EqualValues(t, 5, captured["size"])
	query := captured["query"].(map[string]any)["bool"].(map[string]any)
	filters := query["filter"].([]any)
	require.Len(t, filters, 1)
	terms := filters[0].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, []any{"cloud"}, terms["product"])
	must := query["must"].([]any)[0].(map[string]any)
	assert.Contains(t, must, "multi_match")
}

func TestElasticIndexSearch_LongQuerySearchUsesMatch(t *testing.T) {
	var captured map[string]any
	srv := newTestServer(t, &captured, http.StatusOK, searchResponse)
	defer srv.Close()

	client, err := NewElasticIndexSearch(Config{Addresses: []string{srv.URL}, Index: "kb"}, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = client.LongQuerySearch(context.Background(), "i need help with the rest api", nil)
	require.NoError(t, err)

	query := captured["query"].(map[string]any)["bool"].(map[string]any)
	must := query["must"].([]any)[0].(map[string]any)
	assert.Contains(t, must, "match")
	assert.Empty(t, query["filter"])
	assert.EqualValues(t, 10, captured["size"])
}

func TestElasticIndexSearch_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, nil, http.StatusInternalServerError, `{"error":"boom"}`)
	defer srv.Close()

	client, err := NewElasticIndexSearch(Config{Addresses: []string{srv.URL}, Index: "kb"}, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = client.QuerySearch(context.Background(), "anything", nil)
	assert.Error(t, err)
}
