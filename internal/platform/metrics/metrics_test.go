package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/recall-api/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveRequest(t *testing.T) {
	metrics.ObserveRequest("/api/test", "GET", http.StatusOK, 20*time.Millisecond)

	body := scrape(t)
	assert.Contains(t, body, `recall_http_requests_total{method="GET",route="/api/test",status="200"}`)
	assert.Contains(t, body, `recall_http_request_duration_seconds_count{route="/api/test"}`)
}

func TestHandlerExposesCollectors(t *testing.T) {
	metrics.SessionsSwept.Add(0)
	metrics.ReviewsSubmitted.WithLabelValues("good").Add(0)

	body := scrape(t)
	assert.Contains(t, body, "recall_sessions_swept_total")
	assert.Contains(t, body, `recall_reviews_submitted_total{rating="good"}`)
}
