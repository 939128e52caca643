package mlapi

import (
	"context"
	"sort"
)

// LastClickAnalytics returns documents that customers historically opened
// after searching for similar keywords.
type LastClickAnalytics interface {
	GetLastClickAnalyticsResults(ctx context.Context, contextEntities []string) ([]ScoredDocument, error)
}

type lastClickAnalytics struct {
	client *Client
}

func NewLastClickAnalytics(client *Client) LastClickAnalytics {
	return &lastClickAnalytics{client: client}
}

func (a *lastClickAnalytics) GetLastClickAnalyticsResults(ctx context.Context, contextEntities []string) ([]ScoredDocument, error) {
	keywords := append([]string{}, contextEntities...)
	sort.Strings(keywords)

	var payload []scoredDocumentPayload
	if err := a.client.postJSON(ctx, "ML/Analytics", keywords, &payload); err != nil {
		return nil, err
	}
	return toScoredDocuments(payload), nil
}
