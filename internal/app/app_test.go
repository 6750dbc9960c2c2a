package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"ytstream.api/internal/config"
	"ytstream.api/internal/cookie"
	"ytstream.api/internal/extractor"
	"ytstream.api/internal/keys"
	"ytstream.api/internal/metrics"
	"ytstream.api/internal/resolver"
	"ytstream.api/internal/stream"
	"ytstream.api/pkg/cache"
	"ytstream.api/pkg/database"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const mediaBody = "0123456789abcdefghijklmnopqrstuvwxyz"

type countingExtractor struct {
	mu    sync.Mutex
	calls int
	info  extractor.Info
}

func (e *countingExtractor) Extract(ctx context.Context, u string, opts extractor.Options) (*extractor.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	info := e.info
	return &info, nil
}

func (e *countingExtractor) Search(ctx context.Context, term string, limit int, opts extractor.Options) ([]extractor.Info, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return []extractor.Info{{ID: e.info.ID, Title: e.info.Title}}, nil
}

func (e *countingExtractor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type server struct {
	router    *gin.Engine
	store     *keys.Store
	extractor *countingExtractor
}

func newServer(t *testing.T) *server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var start int
		fmt.Sscanf(r.Header.Get("Range"), "bytes=%d-", &start)
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, len(mediaBody)-1, len(mediaBody)))
		w.WriteHeader(http.StatusPartialContent)
		io.WriteString(w, mediaBody[start:])
	}))
	t.Cleanup(upstream.Close)

	db, err := database.Connect("sqlite://" + filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	store := keys.NewStore(db)
	if err := store.Migrate(); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.RateLimit.PerMinute = 100
	cfg.RateLimit.YoutubePerHour = 100
	cfg.Auth.DefaultDailyLimit = 100

	l := logger.NewNop()
	m := metrics.New()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })

	ext := &countingExtractor{info: extractor.Info{
		ID:       "dQw4w9WgXcQ",
		Title:    "Never Gonna Give You Up",
		Duration: 213,
		Channel:  "Rick Astley",
		Views:    42,
		Formats: []extractor.Format{
			{ID: "140", URL: upstream.URL + "/audio", HasAudio: true},
			{ID: "18", URL: upstream.URL + "/combined", HasAudio: true, HasVideo: true},
		},
	}}

	artifact := cookie.NewArtifact(afero.NewMemMapFs(), "/data/cookies.txt", 24*time.Hour)
	res := resolver.New(resolver.Config{
		Extractor: ext,
		Searcher:  ext,
		Memo:      cache.NewMemo(mem, time.Now, m.ObserveMemo),
		Cookies:   artifact,
		Logger:    l,
		OnFailure: m.ResolutionFailed,
	})
	registry := stream.NewRegistry(mem, time.Hour, stream.OnCreate(m.HandleCreated))
	proxy := stream.NewProxy(registry, stream.ProxyConfig{ChunkSize: 8, Logger: l, OnBytes: m.BytesProxied})

	router := SetupRouter(cfg, Deps{
		Keys:      store,
		Token:     token.NewJWTProvider("secret", time.Hour),
		Resolver:  res,
		Registry:  registry,
		Proxy:     proxy,
		Cookies:   artifact,
		Refresher: cookie.NewRefresher(artifact, nil, cookie.RefresherConfig{}),
		Metrics:   m,
		Logger:    l,
	})
	return &server{router: router, store: store, extractor: ext}
}

func (s *server) get(path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func errorOf(w *httptest.ResponseRecorder) string {
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	s, _ := body["error"].(string)
	return s
}

func TestResolveThenStream(t *testing.T) {
	s := newServer(t)
	k, err := s.store.Create(context.Background(), keys.CreateParams{Name: "client"})
	if err != nil {
		t.Fatal(err)
	}

	w := s.get("/youtube?query=https://youtu.be/dQw4w9WgXcQ&video=true&api_key=" + k.Key)
	if w.Code != http.StatusOK {
		t.Fatalf("/youtube status = %d, body = %s", w.Code, w.Body)
	}
	var got struct {
		ID         string `json:"id"`
		Thumbnail  string `json:"thumbnail"`
		StreamURL  string `json:"stream_url"`
		StreamType string `json:"stream_type"`
	}
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.ID != "dQw4w9WgXcQ" || got.StreamType != "Video" {
		t.Errorf("response = %+v", got)
	}
	if got.Thumbnail != "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Errorf("thumbnail = %q", got.Thumbnail)
	}
	// metadata and stream selection share one upstream call
	if n := s.extractor.Calls(); n != 1 {
		t.Errorf("extractor calls = %d, want 1", n)
	}

	u, err := url.Parse(got.StreamURL)
	if err != nil || u.Scheme != "http" || u.Host != "example.com" {
		t.Fatalf("stream_url = %q", got.StreamURL)
	}

	w = s.get(u.Path, "Range", "bytes=10-")
	if w.Code != http.StatusPartialContent {
		t.Fatalf("/stream status = %d, body = %s", w.Code, w.Body)
	}
	if w.Body.String() != mediaBody[10:] {
		t.Errorf("/stream body = %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q", ct)
	}

	w = s.get("/metrics")
	body := w.Body.String()
	for _, want := range []string{
		"ytstream_stream_handles_created_total 1",
		fmt.Sprintf("ytstream_proxied_bytes_total %d", len(mediaBody)-10),
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestQuotaRejectsBeforeResolution(t *testing.T) {
	s := newServer(t)
	k, _ := s.store.Create(context.Background(), keys.CreateParams{Name: "tiny", DailyLimit: 1})

	if w := s.get("/youtube?query=dQw4w9WgXcQ&api_key=" + k.Key); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	calls := s.extractor.Calls()

	w := s.get("/youtube?query=something+else&api_key=" + k.Key)
	if w.Code != http.StatusTooManyRequests || errorOf(w) != "Daily limit exceeded" {
		t.Fatalf("second request = %d %q", w.Code, errorOf(w))
	}
	if s.extractor.Calls() != calls {
		t.Error("resolver ran for a request over quota")
	}

	logs, err := s.store.RecentLogs(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Status != http.StatusOK || logs[0].Endpoint != "/youtube" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestAuthFailures(t *testing.T) {
	s := newServer(t)
	tests := []struct {
		path string
		code int
		msg  string
	}{
		{"/youtube?query=x", http.StatusUnauthorized, "API key is required"},
		{"/youtube?query=x&api_key=nope", http.StatusUnauthorized, "Invalid API key"},
		{"/admin/metrics", http.StatusUnauthorized, "Admin API key is required"},
		{"/stream/not-a-handle", http.StatusNotFound, "Stream not found or expired"},
	}
	for _, tt := range tests {
		w := s.get(tt.path)
		if w.Code != tt.code || errorOf(w) != tt.msg {
			t.Errorf("GET %s = %d %q, want %d %q", tt.path, w.Code, errorOf(w), tt.code, tt.msg)
		}
	}
	if s.extractor.Calls() != 0 {
		t.Error("resolver ran for unauthorized requests")
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	w := s.get("/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var h HealthResponse
	json.Unmarshal(w.Body.Bytes(), &h)
	if h.Status != "healthy" || h.Version != Version || h.YoutubeAuth || h.Timestamp.IsZero() {
		t.Errorf("health = %+v", h)
	}
}

func TestPagesAndCORS(t *testing.T) {
	s := newServer(t)
	if w := s.get("/"); w.Code != http.StatusOK {
		t.Errorf("GET / status = %d", w.Code)
	}
	w := s.get("/health", "Origin", "https://somewhere.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
