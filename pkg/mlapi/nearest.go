package mlapi

import (
	"context"
	"sort"
)

type NearestDocumentsParameters struct {
	ContextEntities []string `json:"contextEntities"`
	DocumentsUri    []string `json:"documentsUri"`
}

// NearestDocuments returns documents whose embedding is close to the
// conversation keywords, starting from a set of candidate documents.
type NearestDocuments interface {
	GetNearestDocumentsResults(ctx context.Context, parameters NearestDocumentsParameters) ([]ScoredDocument, error)
}

type nearestDocuments struct {
	client *Client
}

func NewNearestDocuments(client *Client) NearestDocuments {
	return &nearestDocuments{client: client}
}

func (n *nearestDocuments) GetNearestDocumentsResults(ctx context.Context, parameters NearestDocumentsParameters) ([]ScoredDocument, error) {
	sort.Strings(parameters.ContextEntities)

	var payload []scoredDocumentPayload
	if err := n.client.postJSON(ctx, "ML/NearestDocuments", parameters, &payload); err != nil {
		return nil, err
	}
	return toScoredDocuments(payload), nil
}
