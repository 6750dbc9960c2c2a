package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"ytstream.api/internal/extractor"
	"ytstream.api/internal/retry"
	"ytstream.api/pkg/cache"
	"ytstream.api/pkg/logger"
)

// CookieSource yields the path of a usable cookie artifact, or "".
type CookieSource interface {
	Path() string
}

// Config wires a Resolver. Extractor, Searcher and Memo are required.
type Config struct {
	Extractor     extractor.Extractor
	Searcher      extractor.Searcher
	Memo          *cache.Memo
	Cookies       CookieSource
	Logger        logger.Logger
	TTL           time.Duration
	MaxConcurrent int64
	Retry         retry.Config

	// OnFailure is called with the failure kind ("not_found", "upstream",
	// "no_format") whenever a lookup fails.
	OnFailure func(kind string)
}

// Resolver turns classified queries into metadata and upstream stream URLs.
// Upstream calls are memoized, retried and bounded by a semaphore.
type Resolver struct {
	extractor extractor.Extractor
	searcher  extractor.Searcher
	memo      *cache.Memo
	cookies   CookieSource
	l         logger.Logger
	ttl       time.Duration
	sem       *semaphore.Weighted
	retry     retry.Config
	onFailure func(kind string)
}

func New(cfg Config) *Resolver {
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	return &Resolver{
		extractor: cfg.Extractor,
		searcher:  cfg.Searcher,
		memo:      cfg.Memo,
		cookies:   cfg.Cookies,
		l:         cfg.Logger,
		ttl:       cfg.TTL,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		retry:     cfg.Retry,
		onFailure: cfg.OnFailure,
	}
}

// Lookup resolves any classified query to a single video. Search terms take
// the first hit.
func (r *Resolver) Lookup(ctx context.Context, q Query) (*VideoMetadata, error) {
	if q.Kind != SearchTerm {
		return r.Resolve(ctx, q)
	}
	hits, err := r.Search(ctx, q.Raw, 1)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		r.fail("not_found")
		return nil, &ResolutionError{Query: q.Raw, Err: ErrNotFound}
	}
	return &hits[0], nil
}

// Resolve fetches metadata for a DirectID or CanonicalURL query.
func (r *Resolver) Resolve(ctx context.Context, q Query) (*VideoMetadata, error) {
	if q.ID == "" {
		r.fail("not_found")
		return nil, &ResolutionError{Query: q.Raw, Err: ErrNotFound}
	}
	info, err := r.extract(ctx, q.ID)
	if err != nil {
		return nil, r.resolutionError(q.Raw, err)
	}
	m, ok := toMetadata(info, q.ID)
	if !ok {
		r.fail("not_found")
		return nil, &ResolutionError{Query: q.Raw, Err: ErrNotFound}
	}
	return &m, nil
}

// Search returns at most limit hits for term. Hits without an ID are dropped.
func (r *Resolver) Search(ctx context.Context, term string, limit int) ([]VideoMetadata, error) {
	if m, ok := pinned[strings.ToLower(term)]; ok {
		return []VideoMetadata{m}, nil
	}
	if limit < 1 {
		limit = 1
	}

	var infos []extractor.Info
	key := cache.Key("search", []interface{}{term, limit}, nil)
	err := r.memo.GetOrCompute(ctx, "search", key, r.ttl, &infos, func(ctx context.Context) (interface{}, error) {
		var hits []extractor.Info
		err := r.call(ctx, func(ctx context.Context, opts extractor.Options) error {
			var err error
			hits, err = r.searcher.Search(ctx, term, limit, opts)
			return err
		})
		return hits, err
	})
	if err != nil {
		return nil, r.resolutionError(term, err)
	}

	out := make([]VideoMetadata, 0, len(infos))
	for i := range infos {
		if len(out) >= limit {
			break
		}
		if m, ok := toMetadata(&infos[i], ""); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// StreamURL selects the upstream URL for id in mode. It shares the memoized
// extraction with Resolve, so resolving then streaming costs one upstream call.
func (r *Resolver) StreamURL(ctx context.Context, id string, mode Mode) (string, error) {
	info, err := r.extract(ctx, id)
	if err != nil {
		return "", r.resolutionError(id, err)
	}
	u, err := SelectFormat(info, mode)
	if err != nil {
		r.fail("no_format")
		r.l.Warn("no deliverable format", "id", id, "mode", string(mode))
		return "", &SelectionError{ID: id, Mode: mode, Err: err}
	}
	return u, nil
}

func (r *Resolver) extract(ctx context.Context, id string) (*extractor.Info, error) {
	var info extractor.Info
	key := cache.Key("extract", []interface{}{id}, nil)
	err := r.memo.GetOrCompute(ctx, "extract", key, r.ttl, &info, func(ctx context.Context) (interface{}, error) {
		var got *extractor.Info
		err := r.call(ctx, func(ctx context.Context, opts extractor.Options) error {
			var err error
			got, err = r.extractor.Extract(ctx, WatchURL(id), opts)
			return err
		})
		return got, err
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// call runs fn inside the worker bound with retries. Not-found answers are
// final and skip the retry loop.
func (r *Resolver) call(ctx context.Context, fn func(context.Context, extractor.Options) error) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	opts := extractor.Options{}
	if r.cookies != nil {
		opts.CookieFile = r.cookies.Path()
	}

	return retry.Do(ctx, r.retry, nil, func(ctx context.Context) error {
		err := fn(ctx, opts)
		if errors.Is(err, extractor.ErrVideoNotFound) || errors.Is(err, extractor.ErrNotInstalled) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (r *Resolver) resolutionError(query string, err error) error {
	kind, sentinel := "upstream", ErrUpstream
	if errors.Is(err, extractor.ErrVideoNotFound) {
		kind, sentinel = "not_found", ErrNotFound
	}
	r.fail(kind)
	r.l.Error("resolution failed", "query", query, "kind", kind, "error", err)
	return &ResolutionError{Query: query, Err: sentinel}
}

func (r *Resolver) fail(kind string) {
	if r.onFailure != nil {
		r.onFailure(kind)
	}
}
