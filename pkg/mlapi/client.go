// Package mlapi holds the HTTP clients of the machine-learning API: click
// analytics, nearest documents, facet questions and facet filtering.
package mlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mlapi %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client is the shared transport of every ML API endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.ILogger
}

func NewClient(baseURL string, timeout time.Duration, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("MLAPI", "Request failed", map[string]interface{}{"endpoint": endpoint, "error": err.Error()})
		return fmt.Errorf("mlapi %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("MLAPI", "Non-success response", map[string]interface{}{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		})
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	c.logger.Debug("MLAPI", "Request completed", map[string]interface{}{
		"endpoint":    endpoint,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("mlapi %s: decode response: %w", endpoint, err)
	}
	return nil
}

// ScoredDocument is a document returned with an API-defined score.
type ScoredDocument struct {
	Document *entity.Document
	Score    float64
}

type documentPayload struct {
	Title        string `json:"title"`
	Uri          string `json:"uri"`
	PrintableUri string `json:"printableUri"`
	Summary      string `json:"summary"`
	Excerpt      string `json:"excerpt"`
}

type scoredDocumentPayload struct {
	Document documentPayload `json:"document"`
	Score    float64         `json:"score"`
}

func toScoredDocuments(payloads []scoredDocumentPayload) []ScoredDocument {
	out := make([]ScoredDocument, 0, len(payloads))
	for _, p := range payloads {
		if p.Document.Uri == "" {
			continue
		}
		out = append(out, ScoredDocument{
			Document: &entity.Document{
				Id:           uuid.New(),
				Title:        p.Document.Title,
				Uri:          p.Document.Uri,
				PrintableUri: p.Document.PrintableUri,
				Summary:      p.Document.Summary,
				Excerpt:      p.Document.Excerpt,
			},
			Score: p.Score,
		})
	}
	return out
}
