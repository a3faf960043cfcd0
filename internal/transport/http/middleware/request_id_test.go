package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hcm/internal/requestctx"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		wantIP     string
	}{
		{name: "peer address without trusted proxy", wantIP: "192.0.2.7"},
		{name: "forwarded address behind trusted proxy", trustProxy: true, wantIP: "203.0.113.5"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			handler := RequestIDFrom(tc.trustProxy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetRequestID(r.Context()) == "" {
					t.Fatal("expected request id in context")
				}
				if got := requestctx.GetClientIP(r.Context()); got != tc.wantIP {
					t.Fatalf("expected client ip %q, got %q", tc.wantIP, got)
				}
				if got := clientIPKey(r); got != tc.wantIP {
					t.Fatalf("expected rate limit key %q, got %q", tc.wantIP, got)
				}
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.7:4000"
			req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatal("expected request id header")
			}
		})
	}
}

func TestLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limited := RequestID(LoginRateLimit(1, time.Minute)(noContent()))
	for i, spoofed := range []string{"198.51.100.1", "198.51.100.2"} {
		req := loginRequest("user"+spoofed+"@example.com", "192.0.2.8:1000")
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected rotating X-Forwarded-For to share the peer bucket, got %d", rec.Code)
		}
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) != "req-42" {
			t.Fatalf("expected caller request id, got %q", GetRequestID(r.Context()))
		}
		if got := requestctx.GetClientIP(r.Context()); got != "192.0.2.1" {
			t.Fatalf("expected remote address, got %q", got)
		}
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.RemoteAddr = "192.0.2.1:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "req-42" {
		t.Fatal("expected request id to be echoed")
	}
}
