package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"ytstream.api/internal/cookie"
)

var youtubeURL = &url.URL{Scheme: "https", Host: "www.youtube.com"}

// Kkdai implements Extractor in pure Go on top of kkdai/youtube.
type Kkdai struct {
	Timeout time.Duration
}

// NewKkdai creates a pure Go extractor.
func NewKkdai(timeout time.Duration) *Kkdai {
	return &Kkdai{Timeout: timeout}
}

func (k *Kkdai) client(opts Options) *youtube.Client {
	hc := &http.Client{Timeout: k.Timeout}
	if opts.CookieFile != "" {
		if jar := loadJar(opts.CookieFile); jar != nil {
			hc.Jar = jar
		}
	}
	return &youtube.Client{HTTPClient: hc}
}

// loadJar returns nil when the cookie file cannot be used; extraction then
// proceeds anonymously.
func loadJar(path string) http.CookieJar {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	cookies, err := cookie.ParseNetscape(f)
	if err != nil || len(cookies) == 0 {
		return nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil
	}
	jar.SetCookies(youtubeURL, cookies)
	return jar
}

func (k *Kkdai) Extract(ctx context.Context, target string, opts Options) (*Info, error) {
	client := k.client(opts)

	video, err := client.GetVideoContext(ctx, target)
	if err != nil {
		return nil, &Error{Source: "kkdai", Target: target, Err: classifyKkdai(err)}
	}

	info := &Info{
		ID:       video.ID,
		Title:    video.Title,
		Duration: int64(video.Duration.Seconds()),
		Channel:  video.Author,
		Views:    int64(video.Views),
	}
	for _, t := range video.Thumbnails {
		info.Thumbnails = append(info.Thumbnails, Thumbnail{URL: t.URL, Width: int(t.Width), Height: int(t.Height)})
	}

	formats := make(youtube.FormatList, len(video.Formats))
	copy(formats, video.Formats)
	sort.SliceStable(formats, func(i, j int) bool {
		return bitrate(&formats[i]) < bitrate(&formats[j])
	})

	for i := range formats {
		f := &formats[i]
		streamURL, err := client.GetStreamURLContext(ctx, video, f)
		if err != nil || streamURL == "" {
			continue
		}
		info.Formats = append(info.Formats, Format{
			ID:       f.MimeType,
			URL:      streamURL,
			HasVideo: strings.HasPrefix(f.MimeType, "video/"),
			HasAudio: f.AudioChannels > 0,
			Height:   f.Height,
			Bitrate:  float64(bitrate(f)),
		})
	}
	if len(info.Formats) == 0 {
		return nil, &Error{Source: "kkdai", Target: target, Err: ErrVideoNotFound}
	}
	return info, nil
}

func bitrate(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

func classifyKkdai(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	case errors.Is(err, youtube.ErrVideoPrivate),
		errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return ErrVideoNotFound
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") {
		return ErrRateLimited
	}
	if strings.Contains(msg, "unavailable") || strings.Contains(msg, "not found") {
		return ErrVideoNotFound
	}
	return err
}
