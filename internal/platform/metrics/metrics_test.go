package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestRecordCountsByRouteAndStatus(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 20*time.Millisecond)
	c.Record(http.MethodGet, "/api/v1/employees", http.StatusOK, 5*time.Millisecond)
	c.Record(http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests, time.Millisecond)

	body := scrape(t, c)
	for _, want := range []string{
		`hcm_http_requests_total{method="GET",route="/api/v1/employees",status="200"} 2`,
		`hcm_http_requests_total{method="POST",route="/api/v1/auth/login",status="429"} 1`,
		"hcm_http_rate_limited_total 1",
		`hcm_http_request_duration_seconds_count{method="GET",route="/api/v1/employees"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}

func TestHandlerExposesCipherFailures(t *testing.T) {
	c := New()
	c.Record(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	c.CipherFailure()

	body := scrape(t, c)
	for _, want := range []string{
		`hcm_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		"hcm_field_cipher_failures_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	first := New()
	second := New()
	first.CipherFailure()
	if strings.Contains(scrape(t, second), "hcm_field_cipher_failures_total 1") {
		t.Fatal("expected separate registries per collector")
	}
}
