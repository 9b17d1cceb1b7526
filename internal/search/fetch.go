package search

import (
	"context"

	"github.com/supervisitor20/myreports/internal/model"
)

// Searcher looks up candidates for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Item, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, query string) ([]model.Item, error)

func (f SearchFunc) Search(ctx context.Context, query string) ([]model.Item, error) {
	return f(ctx, query)
}

// Fetch runs one lookup and tags the outcome with loadingID. Errors travel
// in the result. A cancelled context is reported as its error.
func Fetch(ctx context.Context, id, loadingID, query string, s Searcher) ResultsReceived {
	r := ResultsReceived{ID: id, LoadingID: loadingID}
	if err := ctx.Err(); err != nil {
		r.Err = err
		return r
	}
	results, err := s.Search(ctx, query)
	if err != nil {
		r.Err = err
		return r
	}
	if results == nil {
		results = []model.Item{}
	}
	r.Results = results
	return r
}
