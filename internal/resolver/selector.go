package resolver

import (
	"github.com/samber/lo"

	"ytstream.api/internal/extractor"
)

// Mode selects between audio-only and video delivery.
type Mode string

const (
	ModeAudio Mode = "audio"
	ModeVideo Mode = "video"
)

// ModeFor maps the /youtube "video" flag onto a Mode.
func ModeFor(video bool) Mode {
	if video {
		return ModeVideo
	}
	return ModeAudio
}

// StreamType is the label reported to clients.
func (m Mode) StreamType() string {
	if m == ModeVideo {
		return "Video"
	}
	return "Audio"
}

// ContentType is what the proxy advertises for this mode.
func (m Mode) ContentType() string {
	if m == ModeVideo {
		return "video/mp4"
	}
	return "audio/mp4"
}

// SelectFormat picks one upstream URL for mode. Formats are expected in
// ascending quality order, so the last match is the best one.
func SelectFormat(info *extractor.Info, mode Mode) (string, error) {
	if info == nil {
		return "", ErrNoFormat
	}

	formats := lo.Filter(info.Formats, func(f extractor.Format, _ int) bool {
		return f.URL != ""
	})
	if len(formats) == 0 {
		if info.URL != "" {
			return info.URL, nil
		}
		return "", ErrNoFormat
	}

	var tiers [][]extractor.Format
	if mode == ModeVideo {
		tiers = [][]extractor.Format{
			lo.Filter(formats, func(f extractor.Format, _ int) bool { return f.HasVideo && f.HasAudio }),
			lo.Filter(formats, func(f extractor.Format, _ int) bool { return f.HasVideo && !f.HasAudio }),
		}
	} else {
		tiers = [][]extractor.Format{
			lo.Filter(formats, func(f extractor.Format, _ int) bool { return f.HasAudio && !f.HasVideo }),
			lo.Filter(formats, func(f extractor.Format, _ int) bool { return f.HasAudio }),
		}
	}

	for _, tier := range tiers {
		if best, ok := lo.Last(tier); ok {
			return best.URL, nil
		}
	}
	if info.URL != "" {
		return info.URL, nil
	}
	best, _ := lo.Last(formats)
	return best.URL, nil
}
