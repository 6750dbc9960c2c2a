package media

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/config"
	"ytstream.api/internal/resolver"
	"ytstream.api/internal/stream"
	"ytstream.api/pkg/cache"
	"ytstream.api/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver struct {
	meta      *resolver.VideoMetadata
	lookupErr error
	streamErr error
	queries   []resolver.Query
	modes     []resolver.Mode
}

func (f *fakeResolver) Lookup(ctx context.Context, q resolver.Query) (*resolver.VideoMetadata, error) {
	f.queries = append(f.queries, q)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.meta, nil
}

func (f *fakeResolver) StreamURL(ctx context.Context, id string, mode resolver.Mode) (string, error) {
	f.modes = append(f.modes, mode)
	if f.streamErr != nil {
		return "", f.streamErr
	}
	return "https://upstream.example/" + id + "/" + string(mode), nil
}

type fakeRelay struct{ served []string }

func (f *fakeRelay) Serve(c *gin.Context, id string) {
	f.served = append(f.served, id)
	c.Status(http.StatusNoContent)
}

func newRouter(t *testing.T, r Resolver, publicURL string) (*gin.Engine, *stream.Registry, *fakeRelay) {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	reg := stream.NewRegistry(mem, time.Hour)
	relay := &fakeRelay{}
	cfg := &config.Config{}
	cfg.Server.PublicURL = publicURL

	h := NewHandler(logger.NewNop(), cfg, r, reg, relay)
	e := gin.New()
	e.GET("/youtube", h.Youtube)
	e.GET("/stream/:id", h.Stream)
	return e, reg, relay
}

func sampleMeta() *resolver.VideoMetadata {
	return &resolver.VideoMetadata{
		ID:        "dQw4w9WgXcQ",
		Title:     "Never Gonna Give You Up",
		Duration:  213,
		Channel:   "Rick Astley",
		Views:     1500000000,
		Link:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
	}
}

func TestYoutube_Success(t *testing.T) {
	fr := &fakeResolver{meta: sampleMeta()}
	e, reg, _ := newRouter(t, fr, "")

	req := httptest.NewRequest(http.MethodGet, "/youtube?query=dQw4w9WgXcQ&video=TRUE", nil)
	req.Host = "api.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var got YoutubeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.ID != "dQw4w9WgXcQ" || got.Duration != 213 || got.Views != 1500000000 || got.StreamType != "Video" {
		t.Errorf("response = %+v", got)
	}
	if fr.queries[0].Kind != resolver.DirectID {
		t.Errorf("query kind = %v, want DirectID", fr.queries[0].Kind)
	}

	prefix := "https://api.example.com/stream/"
	if !strings.HasPrefix(got.StreamURL, prefix) {
		t.Fatalf("stream_url = %q, want prefix %q", got.StreamURL, prefix)
	}
	handle, err := reg.Lookup(context.Background(), strings.TrimPrefix(got.StreamURL, prefix))
	if err != nil {
		t.Fatalf("handle from stream_url not registered: %v", err)
	}
	if handle.Mode != resolver.ModeVideo || handle.URL != "https://upstream.example/dQw4w9WgXcQ/video" {
		t.Errorf("handle = %+v", handle)
	}
}

func TestYoutube_DefaultsToAudioAndPublicURL(t *testing.T) {
	fr := &fakeResolver{meta: sampleMeta()}
	e, _, _ := newRouter(t, fr, "https://media.example.org/")

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/youtube?query=rick+astley", nil))

	var got YoutubeResponse
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.StreamType != "Audio" || fr.modes[0] != resolver.ModeAudio {
		t.Errorf("stream_type = %q, mode = %q", got.StreamType, fr.modes[0])
	}
	if !strings.HasPrefix(got.StreamURL, "https://media.example.org/stream/") {
		t.Errorf("stream_url = %q", got.StreamURL)
	}
	if fr.queries[0].Kind != resolver.SearchTerm {
		t.Errorf("query kind = %v, want SearchTerm", fr.queries[0].Kind)
	}
}

func TestYoutube_Errors(t *testing.T) {
	notFound := &resolver.ResolutionError{Query: "x", Err: resolver.ErrNotFound}
	upstream := &resolver.ResolutionError{Query: "x", Err: resolver.ErrUpstream}
	noFormat := &resolver.SelectionError{ID: "dQw4w9WgXcQ", Mode: resolver.ModeAudio, Err: resolver.ErrNoFormat}

	tests := []struct {
		name     string
		query    string
		resolver *fakeResolver
		code     int
		message  string
	}{
		{"missing query", "", &fakeResolver{}, http.StatusBadRequest, "Query parameter is required"},
		{"blank query", "+++", &fakeResolver{}, http.StatusBadRequest, "Query parameter is required"},
		{"search without hits", "nothing+matches", &fakeResolver{lookupErr: notFound}, http.StatusNotFound, "No videos found"},
		{"unknown id", "aaaaaaaaaaa", &fakeResolver{lookupErr: notFound}, http.StatusNotFound, "No video found"},
		{"upstream failure", "aaaaaaaaaaa", &fakeResolver{lookupErr: upstream}, http.StatusInternalServerError, "Failed to resolve video"},
		{"no format", "aaaaaaaaaaa", &fakeResolver{meta: sampleMeta(), streamErr: noFormat}, http.StatusInternalServerError, "Failed to get stream URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, _ := newRouter(t, tt.resolver, "")
			w := httptest.NewRecorder()
			e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/youtube?query="+tt.query, nil))

			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			var body map[string]string
			json.Unmarshal(w.Body.Bytes(), &body)
			if body["error"] != tt.message {
				t.Errorf("error = %q, want %q", body["error"], tt.message)
			}
		})
	}
}

func TestYoutube_InternalErrorTextHidden(t *testing.T) {
	fr := &fakeResolver{lookupErr: errors.New("exec: yt-dlp: secret path /opt/bin")}
	e, _, _ := newRouter(t, fr, "")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/youtube?query=aaaaaaaaaaa", nil))

	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("internal error leaked: %s", w.Body)
	}
}

func TestStream_DelegatesToRelay(t *testing.T) {
	e, _, relay := newRouter(t, &fakeResolver{}, "")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream/abc", nil))

	if len(relay.served) != 1 || relay.served[0] != "abc" {
		t.Errorf("served = %v", relay.served)
	}
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		host      string
		headers   map[string]string
		want      string
	}{
		{"request host", "", "localhost:8080", nil, "http://localhost:8080"},
		{"forwarded proto", "", "api.example.com", map[string]string{"X-Forwarded-Proto": "https, http"}, "https://api.example.com"},
		{"forwarded host", "", "10.0.0.5:8080", map[string]string{"X-Forwarded-Host": "api.example.com"}, "http://api.example.com"},
		{"public url wins", "https://cdn.example.com/", "localhost", map[string]string{"X-Forwarded-Proto": "http"}, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/youtube", nil)
			c.Request.Host = tt.host
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			if got := BaseURL(c, tt.publicURL); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
