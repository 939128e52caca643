package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"agent-assist-be/internal/entity"
	"agent-assist-be/internal/pkg/logger"
)

type Analyzer interface {
	Analyze(ctx context.Context, message string) (entity.Analysis, bool, error)
}

type Client struct {
	baseURL           string
	httpClient        *http.Client
	irrelevantIntents []*regexp.Regexp
	logger            logger.ILogger
}

// NewClient builds an analyzer. Irrelevant intent names may contain '*'
// wildcards, e.g. "Greet*" or "*thanks*".
func NewClient(baseURL string, irrelevantIntents []string, timeout time.Duration, log logger.ILogger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	patterns := make([]*regexp.Regexp, 0, len(irrelevantIntents))
	for _, intent := range irrelevantIntents {
		intent = strings.TrimSpace(intent)
		if intent == "" {
			continue
		}
		patterns = append(patterns, wildcardPattern(intent))
	}
	return &Client{
		baseURL:           strings.TrimRight(baseURL, "/"),
		httpClient:        &http.Client{Timeout: timeout},
		irrelevantIntents: patterns,
		logger:            log,
	}
}

func wildcardPattern(intent string) *regexp.Regexp {
	parts := strings.Split(intent, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^(?i:" + strings.Join(parts, ".*") + ")$")
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze posts the message to the NLP service. The returned flag is false
// when the message's dominant intent is configured as irrelevant.
func (c *Client) Analyze(ctx context.Context, message string) (entity.Analysis, bool, error) {
	var analysis entity.Analysis

	jsonBody, err := json.Marshal(analyzeRequest{Text: message})
	if err != nil {
		return analysis, false, err
	}

	url := fmt.Sprintf("%s/NLP/Analyze", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return analysis, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("NLP", "Analyze request failed", map[string]interface{}{"error": err.Error()})
		return analysis, false, fmt.Errorf("nlp analyze: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return analysis, false, err
	}
	if resp.StatusCode != http.StatusOK {
		return analysis, false, fmt.Errorf("nlp analyze: status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	trimmed := bytes.TrimSpace(bodyBytes)
	if len(trimmed) == 0 || string(trimmed) == `""` || string(trimmed) == "null" {
		c.logger.Warn("NLP", "Empty analysis returned", nil)
		return analysis, false, nil
	}
	if err := json.Unmarshal(trimmed, &analysis); err != nil {
		return analysis, false, fmt.Errorf("nlp analyze: decode response: %w", err)
	}

	return analysis, c.IsRelevant(analysis), nil
}

func (c *Client) IsRelevant(analysis entity.Analysis) bool {
	if len(analysis.Intents) == 0 {
		return true
	}

	top := analysis.Intents[0]
	for _, intent := range analysis.Intents[1:] {
		if intent.Confidence > top.Confidence {
			top = intent
		}
	}

	for _, pattern := range c.irrelevantIntents {
		if pattern.MatchString(top.Name) {
			return false
		}
	}
	return true
}
