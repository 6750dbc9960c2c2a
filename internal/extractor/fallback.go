package extractor

import (
	"context"
	"errors"
)

// Fallback tries each searcher in order and returns the first non-empty result.
type Fallback []Searcher

func (f Fallback) Search(ctx context.Context, term string, limit int, opts Options) ([]Info, error) {
	var errs []error
	for _, s := range f {
		hits, err := s.Search(ctx, term, limit, opts)
		if err == nil && len(hits) > 0 {
			return hits, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, nil
}
