package search

import (
	"context"

	"agent-assist-be/internal/entity"
)

// Result is a page of scored hits from the search index.
type Result struct {
	TotalCount int             `json:"totalCount"`
	Elements   []ResultElement `json:"results"`
}

// ResultElement is one hit. PercentScore is in [0,100].
type ResultElement struct {
	Title        string  `json:"title"`
	Uri          string  `json:"uri"`
	PrintableUri string  `json:"printableUri"`
	Summary      string  `json:"summary"`
	Excerpt      string  `json:"excerpt"`
	Score        float64 `json:"score"`
	PercentScore float64 `json:"percentScore"`
}

// Valid reports whether the hit carries the fields needed to build a document.
func (e ResultElement) Valid() bool {
	return e.Title != "" && e.Uri != "" && e.PrintableUri != ""
}

// IndexSearch queries the document index in two modes.
type IndexSearch interface {
	// LongQuerySearch runs the whole conversation text as a free-text query.
	LongQuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*Result, error)
	// QuerySearch runs a short preprocessed keyword query.
	QuerySearch(ctx context.Context, query string, mustHaveFacets []entity.Facet) (*Result, error)
}
