package service

import (
	"errors"
	"fmt"

	"agent-assist-be/internal/entity"
)

var (
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrFacetNotFound      = errors.New("facet not found")
)

// RecommenderError reports the upstream failure that aborted an aggregation.
type RecommenderError struct {
	Kind entity.RecommenderKind
	Err  error
}

func (e *RecommenderError) Error() string {
	return fmt.Sprintf("recommender %s failed: %v", e.Kind, e.Err)
}

func (e *RecommenderError) Unwrap() error {
	return e.Err
}

// AnalysisError reports a failed message analysis.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("message analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
