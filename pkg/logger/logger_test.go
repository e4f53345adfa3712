package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/bindassticks/storefront/pkg/web"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestContextHandler_AddsRequestAndTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-1")

	log.InfoContext(ctx, "hello")

	out := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "req-1", out["request_id"])
}

func TestContextHandler_NoContextValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")

	log.InfoContext(context.Background(), "hello")

	out := decode(t, &buf)
	assert.NotContains(t, out, "trace_id")
	assert.NotContains(t, out, "request_id")
	assert.Equal(t, "test", out["component"])
}

func TestContextHandler_SpanAndFallbackRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = web.WithRequestID(ctx, "generated-1")

	log.InfoContext(ctx, "hello")

	out := decode(t, &buf)
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
	assert.Equal(t, "generated-1", out["request_id"])
}

func TestAppendCtx(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := AppendCtx(context.Background(), slog.String("session_id", "s-1"))
	ctx = AppendCtx(ctx, slog.String("admin", "a@b.c"))
	parent := AppendCtx(context.Background(), slog.String("session_id", "other"))

	log.InfoContext(ctx, "hello")
	out := decode(t, &buf)
	assert.Equal(t, "s-1", out["session_id"])
	assert.Equal(t, "a@b.c", out["admin"])

	buf.Reset()
	log.InfoContext(parent, "hello")
	out = decode(t, &buf)
	assert.Equal(t, "other", out["session_id"])
	assert.NotContains(t, out, "admin")
}
