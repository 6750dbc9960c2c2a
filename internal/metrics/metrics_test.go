package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveMemo("extract", true)
	m.ObserveMemo("extract", false)
	m.HandleCreated()
	m.BytesProxied(2048)
	m.ResolutionFailed("not_found")
	m.CookieRefreshed("ok")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`ytstream_memo_lookups_total{hit="true",op="extract"} 1`,
		`ytstream_memo_lookups_total{hit="false",op="extract"} 1`,
		`ytstream_stream_handles_created_total 1`,
		`ytstream_proxied_bytes_total 2048`,
		`ytstream_resolution_failures_total{kind="not_found"} 1`,
		`ytstream_cookie_refresh_total{result="ok"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
