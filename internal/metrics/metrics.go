// Package metrics exposes Prometheus counters for the resolution and
// streaming pipeline.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	memoLookups   *prometheus.CounterVec
	handles       prometheus.Counter
	proxiedBytes  prometheus.Counter
	failures      *prometheus.CounterVec
	cookieRefresh *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		memoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytstream",
			Name:      "memo_lookups_total",
			Help:      "Memoized upstream lookups by operation and outcome.",
		}, []string{"op", "hit"}),
		handles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ytstream",
			Name:      "stream_handles_created_total",
			Help:      "Stream handles issued.",
		}),
		proxiedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ytstream",
			Name:      "proxied_bytes_total",
			Help:      "Media bytes relayed to clients.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytstream",
			Name:      "resolution_failures_total",
			Help:      "Failed resolutions by kind.",
		}, []string{"kind"}),
		cookieRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ytstream",
			Name:      "cookie_refresh_total",
			Help:      "Cookie artifact refresh attempts by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.memoLookups,
		m.handles,
		m.proxiedBytes,
		m.failures,
		m.cookieRefresh,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMemo has the shape of cache.Observer.
func (m *Metrics) ObserveMemo(op string, hit bool) {
	m.memoLookups.WithLabelValues(op, strconv.FormatBool(hit)).Inc()
}

func (m *Metrics) HandleCreated() {
	m.handles.Inc()
}

func (m *Metrics) BytesProxied(n int) {
	m.proxiedBytes.Add(float64(n))
}

func (m *Metrics) ResolutionFailed(kind string) {
	m.failures.WithLabelValues(kind).Inc()
}

// CookieRefreshed counts a refresh attempt; result is "ok", "skipped" or "error".
func (m *Metrics) CookieRefreshed(result string) {
	m.cookieRefresh.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
