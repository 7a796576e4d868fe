package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Transition("accepted")
	m.StoreRetry()
	m.Notification("request_created", true)
	m.HTTPRequest("GET", "/healthz", 200, time.Millisecond)
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestCounters(t *testing.T) {
	m := New()
	m.Transition("accepted")
	m.Transition("accepted")
	m.Transition("stale")
	m.StoreRetry()
	m.Notification("request_created", false)

	body := scrape(t, m)
	for _, want := range []string{
		`teleshare_request_transitions_total{outcome="accepted"} 2`,
		`teleshare_request_transitions_total{outcome="stale"} 1`,
		`teleshare_store_retries_total 1`,
		`teleshare_notifications_total{kind="request_created",result="failed"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.HTTPRequest("GET", "/api/items", 200, 5*time.Millisecond)

	body := scrape(t, m)
	for _, want := range []string{
		`teleshare_http_requests_total{method="GET",route="/api/items",status="200"} 1`,
		"teleshare_http_request_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
