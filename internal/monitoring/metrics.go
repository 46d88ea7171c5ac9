package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var sessionStates = []string{"idle", "fetching", "ready", "failed"}

// Metrics holds all Prometheus metrics for the gallery.
type Metrics struct {
	registry *prometheus.Registry

	CatalogFetches  *prometheus.CounterVec
	CatalogDuration prometheus.Histogram
	CatalogImages   prometheus.Gauge
	MetadataFetches *prometheus.CounterVec
	SessionState    *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewMetrics registers the gallery metrics on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CatalogFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buckshot_catalog_fetches_total",
			Help: "The total number of catalog fetches",
		}, []string{"outcome"}), // success, failure, canceled
		CatalogDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "buckshot_catalog_fetch_duration_seconds",
			Help:    "Time taken to list the bucket and join all sidecars",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CatalogImages: factory.NewGauge(prometheus.GaugeOpts{
			Name: "buckshot_catalog_images",
			Help: "Number of images in the current catalog",
		}),
		MetadataFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buckshot_metadata_fetches_total",
			Help: "The total number of sidecar metadata fetches",
		}, []string{"outcome"}), // detections, opaque, none, missing, malformed, error
		SessionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "buckshot_session_state",
			Help: "1 for the current catalog session state, 0 otherwise",
		}, []string{"state"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "buckshot_http_requests_total",
			Help: "The total number of API requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buckshot_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry for tests and custom handlers
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCatalogFetch(outcome string, elapsed time.Duration, images int) {
	m.CatalogFetches.WithLabelValues(outcome).Inc()
	m.CatalogDuration.Observe(elapsed.Seconds())
	if outcome == "success" {
		m.CatalogImages.Set(float64(images))
	}
}

func (m *Metrics) ObserveMetadataFetch(outcome string) {
	m.MetadataFetches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSessionState(state string, images int) {
	for _, s := range sessionStates {
		v := 0.0
		if s == state {
			v = 1
		}
		m.SessionState.WithLabelValues(s).Set(v)
	}
	if state == "failed" {
		m.CatalogImages.Set(float64(images))
	}
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
