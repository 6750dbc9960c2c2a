package extractor

import (
	"context"
	"net/http"
	"time"

	"github.com/raitonoberu/ytsearch"
)

const defaultSearchTimeout = 30 * time.Second

// YTSearch implements Searcher by scraping the YouTube results page with
// raitonoberu/ytsearch. It does not use cookies.
type YTSearch struct {
	// Timeout bounds a single results page request. Defaults to 30 seconds.
	Timeout time.Duration

	// next is swapped out by tests.
	next func(term string) ([]Info, error)
}

func NewYTSearch(timeout time.Duration) *YTSearch {
	return &YTSearch{Timeout: timeout}
}

// client is the HTTP client handed to ytsearch. Its timeout is what ends a
// search that the caller has already given up on.
func (s *YTSearch) client() *http.Client {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = defaultSearchTimeout
	}
	return &http.Client{Timeout: timeout}
}

type searchResult struct {
	videos []Info
	err    error
}

func (s *YTSearch) Search(ctx context.Context, term string, limit int, _ Options) ([]Info, error) {
	if limit < 1 {
		limit = 1
	}
	next := s.next
	if next == nil {
		client := s.client()
		next = func(term string) ([]Info, error) { return firstPage(term, client) }
	}

	// ytsearch has no context support; stop waiting when ctx ends and let the
	// client timeout finish the request.
	ch := make(chan searchResult, 1)
	go func() {
		videos, err := next(term)
		ch <- searchResult{videos: videos, err: err}
	}()

	var res searchResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.err != nil {
		return nil, &Error{Source: "ytsearch", Target: term, Err: res.err}
	}

	if len(res.videos) > limit {
		return res.videos[:limit], nil
	}
	return res.videos, nil
}

func firstPage(term string, client *http.Client) ([]Info, error) {
	search := ytsearch.VideoSearch(term)
	search.HTTPClient = client
	res, err := search.Next()
	if err != nil {
		return nil, err
	}
	hits := make([]Info, 0, len(res.Videos))
	for _, v := range res.Videos {
		info := Info{
			ID:       v.ID,
			Title:    v.Title,
			Duration: int64(v.Duration),
			Channel:  v.Channel.Title,
			Views:    int64(v.ViewCount),
		}
		for _, t := range v.Thumbnails {
			info.Thumbnails = append(info.Thumbnails, Thumbnail{URL: t.URL, Width: int(t.Width), Height: int(t.Height)})
		}
		hits = append(hits, info)
	}
	return hits, nil
}
