package requestctx

import (
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestLoggerFallsBackToDefault(t *testing.T) {
	if Logger(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
	custom := slog.Default().With("requestId", "req-2")
	if Logger(WithLogger(context.Background(), custom)) != custom {
		t.Fatal("expected request logger")
	}
}

func TestActorAndClientIP(t *testing.T) {
	ctx := WithClientIP(WithActor(context.Background(), "acc-1"), "10.0.0.1")
	if GetActor(ctx) != "acc-1" || GetClientIP(ctx) != "10.0.0.1" {
		t.Fatalf("unexpected actor %q ip %q", GetActor(ctx), GetClientIP(ctx))
	}
}
