// Package extractor wraps the external capabilities that turn a YouTube URL
// into metadata plus deliverable formats, and a search term into hits.
package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors shared by every backend.
var (
	ErrVideoNotFound = errors.New("video not found")
	ErrRateLimited   = errors.New("rate limited by upstream")
	ErrNotInstalled  = errors.New("yt-dlp is not installed")
	ErrTimeout       = errors.New("upstream timeout")
)

// Error records which backend failed for which target.
type Error struct {
	Source string
	Target string
	Err    error
}

func (e *Error) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Source, e.Target, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Thumbnail is one listed thumbnail variant.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Format is one deliverable rendition. Backends return formats in ascending
// quality order.
type Format struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	HasVideo bool    `json:"has_video"`
	HasAudio bool    `json:"has_audio"`
	Height   int     `json:"height,omitempty"`
	Bitrate  float64 `json:"bitrate,omitempty"`
}

// Info is the record a backend returns for one video. Search hits leave URL
// and Formats empty.
type Info struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Duration   int64       `json:"duration"`
	Channel    string      `json:"channel"`
	Views      int64       `json:"views"`
	Thumbnail  string      `json:"thumbnail,omitempty"`
	Thumbnails []Thumbnail `json:"thumbnails,omitempty"`
	URL        string      `json:"url,omitempty"`
	Formats    []Format    `json:"formats,omitempty"`
}

// Options are per-call knobs.
type Options struct {
	// CookieFile is a Netscape cookies.txt path, empty when none is usable.
	CookieFile string
}

// Extractor resolves a canonical watch URL without downloading anything.
type Extractor interface {
	Extract(ctx context.Context, url string, opts Options) (*Info, error)
}

// Searcher runs a free-text search bounded by limit.
type Searcher interface {
	Search(ctx context.Context, term string, limit int, opts Options) ([]Info, error)
}

// flexInt decodes numbers, numeric strings ("1,234" included) and null.
// Anything else decodes to zero.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return nil
		}
		s = strings.ReplaceAll(strings.TrimSpace(str), ",", "")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n > 0 {
			*f = flexInt(n)
		}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil && fl > 0 {
		*f = flexInt(fl)
	}
	return nil
}
