package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCatalogFetch(t *testing.T) {
	m := NewMetrics()

	m.ObserveCatalogFetch("success", 2*time.Second, 42)
	m.ObserveCatalogFetch("failure", time.Second, 0)

	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogFetches.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CatalogFetches.WithLabelValues("failure")), 0)
	assert.InDelta(t, 42, testutil.ToFloat64(m.CatalogImages), 0)
}

func TestObserveMetadataFetch(t *testing.T) {
	m := NewMetrics()

	m.ObserveMetadataFetch("detections")
	m.ObserveMetadataFetch("detections")
	m.ObserveMetadataFetch("missing")

	assert.InDelta(t, 2, testutil.ToFloat64(m.MetadataFetches.WithLabelValues("detections")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MetadataFetches.WithLabelValues("missing")), 0)
}

func TestObserveSessionState(t *testing.T) {
	m := NewMetrics()

	m.ObserveSessionState("ready", 10)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionState.WithLabelValues("ready")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SessionState.WithLabelValues("fetching")), 0)

	m.ObserveSessionState("failed", 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SessionState.WithLabelValues("ready")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionState.WithLabelValues("failed")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.CatalogImages), 0)
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveCatalogFetch("success", time.Second, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `buckshot_catalog_fetches_total{outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "buckshot_catalog_images 3")
}

func TestObserveHTTPRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveHTTPRequest(http.MethodGet, "/api/images", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/images", http.StatusBadGateway, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/images", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/images", "502")), 0)
}
