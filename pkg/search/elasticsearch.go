package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"

	"github.com/elastic/go-elasticsearch/v8"
)

// Config holds Elasticsearch connection settings.
type Config struct {
	Addresses       []string
	Username        string
	Password        string
	APIKey          string
	Index           string
	NumberOfResults int
	MaxRetries      int
}

// ElasticIndexSearch implements IndexSearch on an Elasticsearch index whose
// documents carry title, uri, printableUri, summary, content and one keyword
// field per facet.
type ElasticIndexSearch struct {
	esClient        *elasticsearch.Client
	index           string
	numberOfResults int
	logger          logger.ILogger
}

func NewElasticIndexSearch(cfg Config, log logger.ILogger) (*ElasticIndexSearch, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		APIKey:     cfg.APIKey,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: create client: %w", err)
	}

	numberOfResults := cfg.NumberOfResults
	if numberOfResults <= 0 {
		numberOfResults = 10
	}

	return &ElasticIndexSearch{
		esClient:        esClient,
		index:           cfg.Index,
		numberOfResults: numberOfResults,
		logger:          log,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (s *ElasticIndexSearch) Ping(ctx context.Context) error {
	res, err := s.esClient.Ping(s.esClient.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}

func (s *ElasticIndexSearch) LongQuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*Result, error) {
	must := map[string]any{
		"match": map[string]any{
			"content": map[string]any{
				"query": query,
			},
		},
	}
	return s.search(ctx, must, mustHaveFacets)
}

func (s *ElasticIndexSearch) QuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*Result, error) {
	must := map[string]any{
		"multi_match": map[string]any{
			"query":  query,
			"type":   "cross_fields",
			"fields": []string{"title^3", "summary^2", "content"},
		},
	}
	return s.search(ctx, must, mustHaveFacets)
}

func (s *ElasticIndexSearch) search(ctx context.Context, must map[string]any, mustHaveFacets []entity.Facet) (*Result, error) {
	body, err := json.Marshal(buildQuery(must, mustHaveFacets, s.numberOfResults))
	if err != nil {
		return nil, err
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.index),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s: %s", res.Status(), string(raw))
	}

	var parsed esSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("elasticsearch: decode search response: %w", err)
	}

	result := parsed.toResult()
	s.logger.Debug("IndexSearch", "Search completed", map[string]interface{}{
		"index": s.index,
		"hits":  len(result.Elements),
		"total": result.TotalCount,
	})
	return result, nil
}

func buildQuery(must map[string]any, mustHaveFacets []entity.Facet, size int) map[string]any {
	filters := make([]any, 0, len(mustHaveFacets))
	for _, facet := range mustHaveFacets {
		if len(facet.Values) == 0 {
			continue
		}
		filters = append(filters, map[string]any{
			"terms": map[string]any{facet.Name: facet.Values},
		})
	}

	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"must":   []any{must},
				"filter": filters,
			},
		},
	}
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string     `json:"_id"`
			Score  *float64   `json:"_score"`
			Source esDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esDocument struct {
	Title        string `json:"title"`
	Uri          string `json:"uri"`
	PrintableUri string `json:"printableUri"`
	Summary      string `json:"summary"`
	Excerpt      string `json:"excerpt"`
}

// toResult normalizes raw scores against the best hit so the top result
// scores 100.
func (r esSearchResponse) toResult() *Result {
	var maxScore float64
	if r.Hits.MaxScore != nil {
		maxScore = *r.Hits.MaxScore
	}

	elements := make([]ResultElement, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		var score float64
		if hit.Score != nil {
			score = *hit.Score
		}
		var percent float64
		if maxScore > 0 {
			percent = score / maxScore * 100
		}
		elements = append(elements, ResultElement{
			Title:        hit.Source.Title,
			Uri:          hit.Source.Uri,
			PrintableUri: hit.Source.PrintableUri,
			Summary:      hit.Source.Summary,
			Excerpt:      hit.Source.Excerpt,
			Score:        score,
			PercentScore: percent,
		})
	}

	return &Result{
		TotalCount: r.Hits.Total.Value,
		Elements:   elements,
	}
}
