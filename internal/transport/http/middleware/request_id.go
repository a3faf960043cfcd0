package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"hcm/internal/requestctx"
)

// RequestID tags the request with an id, the client address and a
// logger carrying both. The address is the TCP peer; use RequestIDFrom
// behind a proxy that sets X-Forwarded-For.
func RequestID(next http.Handler) http.Handler {
	return RequestIDFrom(false)(next)
}

// RequestIDFrom is RequestID with X-Forwarded-For honoured only when
// trustProxy is set. Rate limit keys and audit addresses read the result.
func RequestIDFrom(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
			if reqID == "" || len(reqID) > 128 {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			ip := peerAddress(r)
			if trustProxy {
				if fwd := forwardedFor(r); fwd != "" {
					ip = fwd
				}
			}
			ctx := requestctx.WithRequestID(r.Context(), reqID)
			ctx = requestctx.WithClientIP(ctx, ip)
			ctx = requestctx.WithLogger(ctx, requestctx.Logger(ctx).With("requestId", reqID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

// clientIPKey prefers the address RequestID resolved and falls back to
// the TCP peer when that middleware did not run.
func clientIPKey(r *http.Request) string {
	if ip := requestctx.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return peerAddress(r)
}

func forwardedFor(r *http.Request) string {
	fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if fwd == "" {
		return ""
	}
	first, _, _ := strings.Cut(fwd, ",")
	return strings.TrimSpace(first)
}

func peerAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
