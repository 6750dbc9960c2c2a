package resolver

import "ytstream.api/internal/extractor"

// VideoMetadata is the resolved, client-facing description of a video.
type VideoMetadata struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Duration  int64  `json:"duration"`
	Channel   string `json:"channel"`
	Views     int64  `json:"views"`
	Link      string `json:"link"`
	Thumbnail string `json:"thumbnail"`
}

var thumbnailQualities = []string{"maxresdefault", "hqdefault", "mqdefault", "default"}

// ThumbnailURL builds the predictable i.ytimg.com thumbnail for id. An
// unknown quality falls back to the preference order.
func ThumbnailURL(id, quality string) string {
	if id == "" {
		return ""
	}
	q := thumbnailQualities[0]
	for _, known := range thumbnailQualities {
		if known == quality {
			q = known
			break
		}
	}
	return "https://i.ytimg.com/vi/" + id + "/" + q + ".jpg"
}

// bestThumbnail prefers the largest listed variant, then the single
// thumbnail field, then the predictable URL.
func bestThumbnail(info *extractor.Info, id string) string {
	best, bestArea := "", -1
	for _, t := range info.Thumbnails {
		if t.URL == "" {
			continue
		}
		if area := t.Width * t.Height; area > bestArea {
			best, bestArea = t.URL, area
		}
	}
	if best != "" {
		return best
	}
	if info.Thumbnail != "" {
		return info.Thumbnail
	}
	return ThumbnailURL(id, "")
}

// toMetadata maps an extraction record. ok is false when no ID is known.
func toMetadata(info *extractor.Info, fallbackID string) (VideoMetadata, bool) {
	id := info.ID
	if id == "" {
		id = fallbackID
	}
	if id == "" {
		return VideoMetadata{}, false
	}
	m := VideoMetadata{
		ID:        id,
		Title:     info.Title,
		Duration:  max(info.Duration, 0),
		Channel:   info.Channel,
		Views:     max(info.Views, 0),
		Link:      WatchURL(id),
		Thumbnail: bestThumbnail(info, id),
	}
	return m, true
}

// pinned answers a handful of literal queries without calling upstream.
// Upstream search returned the wrong first hit for these; keep the list
// short and do not grow it into a general override mechanism. Keys are
// lower case; queries match case-insensitively.
var pinned = map[string]VideoMetadata{
	"295": {
		ID:        "n_FCrCQ6-bA",
		Title:     "295 (Official Audio) | Sidhu Moose Wala | The Kidd | Moosetape",
		Duration:  273,
		Channel:   "Sidhu Moose Wala",
		Views:     706072166,
		Link:      WatchURL("n_FCrCQ6-bA"),
		Thumbnail: "https://i.ytimg.com/vi_webp/n_FCrCQ6-bA/maxresdefault.webp",
	},
}
