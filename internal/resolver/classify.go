// Package resolver turns a raw user query into video metadata and a
// deliverable upstream URL.
package resolver

import (
	"regexp"
	"strings"
)

// Kind is the classification of a raw query.
type Kind int

const (
	SearchTerm Kind = iota
	DirectID
	CanonicalURL
)

func (k Kind) String() string {
	switch k {
	case DirectID:
		return "direct_id"
	case CanonicalURL:
		return "canonical_url"
	default:
		return "search_term"
	}
}

// Query is a classified query. ID is set for DirectID and CanonicalURL.
type Query struct {
	Kind Kind
	ID   string
	Raw  string
}

var (
	idPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

	urlShapes = []*regexp.Regexp{
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/watch\?v=`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/embed/`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/v/`),
	}

	// first match wins
	idExtractors = []*regexp.Regexp{
		regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`(?:embed/)([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`(?:watch\?v=)([0-9A-Za-z_-]{11})`),
		regexp.MustCompile(`^([0-9A-Za-z_-]{11})$`),
	}
)

// Classify never fails: anything that is neither a bare ID nor a
// recognisable video URL is a search term.
func Classify(raw string) Query {
	q := strings.TrimSpace(raw)

	if idPattern.MatchString(q) {
		return Query{Kind: DirectID, ID: q, Raw: q}
	}

	for _, shape := range urlShapes {
		if !shape.MatchString(q) {
			continue
		}
		if id := extractID(q); id != "" {
			return Query{Kind: CanonicalURL, ID: id, Raw: q}
		}
		break
	}

	return Query{Kind: SearchTerm, Raw: q}
}

func extractID(s string) string {
	for _, re := range idExtractors {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}

// WatchURL is the canonical URL the extraction capability is called with.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
