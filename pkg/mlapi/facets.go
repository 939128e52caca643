package mlapi

import (
	"context"

	"agent-assist-be/internal/entity"
)

// FacetQuestionResult is a clarifying question bound to a facet, scored by
// how well answering it would narrow the candidate documents.
type FacetQuestionResult struct {
	// Text is optional; questions without it get the default wording.
	Text        string   `json:"text,omitempty"`
	FacetName   string   `json:"facetName"`
	FacetValues []string `json:"facetValues"`
	Score       float64  `json:"score"`
}

type DocumentFacets interface {
	GetQuestions(ctx context.Context, documentsUri []string) ([]FacetQuestionResult, error)
}

// FilterDocuments keeps the URIs of documents carrying every required facet value.
type FilterDocuments interface {
	FilterDocumentsByFacets(ctx context.Context, documentsUri []string, mustHaveFacets []entity.Facet) ([]string, error)
}

type documentFacets struct {
	client *Client
}

func NewDocumentFacets(client *Client) DocumentFacets {
	return &documentFacets{client: client}
}

func (d *documentFacets) GetQuestions(ctx context.Context, documentsUri []string) ([]FacetQuestionResult, error) {
	var payload []FacetQuestionResult
	if err := d.client.postJSON(ctx, "ML/FacetQuestions", documentsUri, &payload); err != nil {
		return nil, err
	}

	out := make([]FacetQuestionResult, 0, len(payload))
	for _, q := range payload {
		if q.FacetName == "" || len(q.FacetValues) == 0 {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

type filterFacetPayload struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type filterDocumentsParameters struct {
	Documents      []string             `json:"documents"`
	MustHaveFacets []filterFacetPayload `json:"mustHaveFacets"`
}

type filterDocuments struct {
	client *Client
}

func NewFilterDocuments(client *Client) FilterDocuments {
	return &filterDocuments{client: client}
}

func (f *filterDocuments) FilterDocumentsByFacets(ctx context.Context, documentsUri []string, mustHaveFacets []entity.Facet) ([]string, error) {
	params := filterDocumentsParameters{
		Documents:      documentsUri,
		MustHaveFacets: make([]filterFacetPayload, 0, len(mustHaveFacets)),
	}
	for _, facet := range mustHaveFacets {
		params.MustHaveFacets = append(params.MustHaveFacets, filterFacetPayload{Name: facet.Name, Values: facet.Values})
	}

	var uris []string
	if err := f.client.postJSON(ctx, "ML/Filter/Facets", params, &uris); err != nil {
		return nil, err
	}
	return uris, nil
}
