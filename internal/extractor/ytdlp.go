package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 30 * time.Second
)

// Ytdlp implements Extractor and Searcher by running yt-dlp as a subprocess.
type Ytdlp struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout bounds a single invocation. Defaults to 30 seconds.
	Timeout time.Duration

	// ExtraArgs are appended before the target.
	ExtraArgs []string

	// run is swapped out by tests.
	run func(ctx context.Context, path string, args []string) ([]byte, []byte, error)
}

// NewYtdlp creates a yt-dlp backed extractor.
func NewYtdlp(path string, timeout time.Duration) *Ytdlp {
	return &Ytdlp{Path: path, Timeout: timeout}
}

// Extract runs yt-dlp in simulate mode and parses its JSON dump.
func (y *Ytdlp) Extract(ctx context.Context, url string, opts Options) (*Info, error) {
	args := y.baseArgs(opts)
	args = append(args, "--no-playlist", "--skip-download", url)

	stdout, err := y.exec(ctx, url, args)
	if err != nil {
		return nil, err
	}

	info, err := parseYtdlpInfo(stdout)
	if err != nil {
		return nil, &Error{Source: "ytdlp", Target: url, Err: err}
	}
	if info.ID == "" {
		return nil, &Error{Source: "ytdlp", Target: url, Err: ErrVideoNotFound}
	}
	return info, nil
}

// Search runs a flat ytsearchN: query.
func (y *Ytdlp) Search(ctx context.Context, term string, limit int, opts Options) ([]Info, error) {
	if limit < 1 {
		limit = 1
	}
	args := y.baseArgs(opts)
	args = append(args, "--flat-playlist", "ytsearch"+strconv.Itoa(limit)+":"+term)

	stdout, err := y.exec(ctx, term, args)
	if err != nil {
		return nil, err
	}

	hits, err := parseYtdlpSearch(stdout, limit)
	if err != nil {
		return nil, &Error{Source: "ytdlp-search", Target: term, Err: err}
	}
	return hits, nil
}

func (y *Ytdlp) baseArgs(opts Options) []string {
	args := []string{
		"-J",
		"--no-warnings",
		"--referer", "https://www.youtube.com/",
	}
	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}
	return append(args, y.ExtraArgs...)
}

func (y *Ytdlp) exec(ctx context.Context, target string, args []string) ([]byte, error) {
	timeout := y.Timeout
	if timeout == 0 {
		timeout = defaultYtdlpTimeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := y.run
	if run == nil {
		run = runCommand
	}

	stdout, stderr, err := run(cmdCtx, y.path(), args)
	if err == nil {
		return stdout, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, &Error{Source: "ytdlp", Target: target, Err: ErrNotInstalled}
	}
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, &Error{Source: "ytdlp", Target: target, Err: ErrTimeout}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, &Error{Source: "ytdlp", Target: target, Err: classifyStderr(err, string(stderr))}
}

func (y *Ytdlp) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtdlpPath
}

func runCommand(ctx context.Context, path string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

var notFoundMarkers = []string{
	"video unavailable",
	"private video",
	"does not exist",
	"incomplete youtube id",
	"is not a valid url",
	"this video has been removed",
	"no video formats found",
}

// classifyStderr maps yt-dlp's error output onto the sentinel errors.
func classifyStderr(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	for _, m := range notFoundMarkers {
		if strings.Contains(msg, m) {
			return ErrVideoNotFound
		}
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "too many requests") {
		return ErrRateLimited
	}
	return fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr))
}

// ytdlpInfo is the subset of yt-dlp's info dict we read.
type ytdlpInfo struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Duration   float64          `json:"duration"`
	Uploader   string           `json:"uploader"`
	Channel    string           `json:"channel"`
	ViewCount  flexInt          `json:"view_count"`
	Thumbnail  string           `json:"thumbnail"`
	Thumbnails []ytdlpThumbnail `json:"thumbnails"`
	URL        string           `json:"url"`
	Formats    []ytdlpFormat    `json:"formats"`
	Entries    []ytdlpInfo      `json:"entries"`
}

type ytdlpThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ytdlpFormat struct {
	FormatID string  `json:"format_id"`
	URL      string  `json:"url"`
	VCodec   *string `json:"vcodec"`
	ACodec   *string `json:"acodec"`
	Height   int     `json:"height"`
	TBR      float64 `json:"tbr"`
}

func parseYtdlpInfo(data []byte) (*Info, error) {
	var raw ytdlpInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	info := raw.toInfo()
	return &info, nil
}

func parseYtdlpSearch(data []byte, limit int) ([]Info, error) {
	var raw ytdlpInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yt-dlp search output: %w", err)
	}
	hits := make([]Info, 0, len(raw.Entries))
	for _, e := range raw.Entries {
		if len(hits) >= limit {
			break
		}
		hits = append(hits, e.toInfo())
	}
	return hits, nil
}

func (r ytdlpInfo) toInfo() Info {
	info := Info{
		ID:        r.ID,
		Title:     r.Title,
		Duration:  int64(r.Duration),
		Channel:   coalesce(r.Uploader, r.Channel),
		Views:     int64(r.ViewCount),
		Thumbnail: r.Thumbnail,
		URL:       r.URL,
	}
	if info.Duration < 0 {
		info.Duration = 0
	}
	for _, t := range r.Thumbnails {
		if t.URL == "" {
			continue
		}
		info.Thumbnails = append(info.Thumbnails, Thumbnail{URL: t.URL, Width: t.Width, Height: t.Height})
	}
	// yt-dlp already lists formats worst to best
	for _, f := range r.Formats {
		if f.URL == "" {
			continue
		}
		info.Formats = append(info.Formats, Format{
			ID:       f.FormatID,
			URL:      f.URL,
			HasVideo: codecPresent(f.VCodec),
			HasAudio: codecPresent(f.ACodec),
			Height:   f.Height,
			Bitrate:  f.TBR,
		})
	}
	return info
}

// codecPresent treats a missing codec as present; only an explicit "none"
// marks the track as absent.
func codecPresent(codec *string) bool {
	return codec == nil || *codec != "none"
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
