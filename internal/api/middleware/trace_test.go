package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
)

func TestTraceMiddleware(t *testing.T) {
	var buf strings.Builder
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenTraceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	TraceMiddleware(base)(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, shared.ValidTraceID(seenTraceID))
	assert.Equal(t, seenTraceID, w.Header().Get(shared.TraceIDHeader))
	assert.Contains(t, buf.String(), "request started")
	assert.Contains(t, buf.String(), "msg=\"inside handler\" trace_id="+seenTraceID)
}

func TestTraceMiddlewareReusesIncomingID(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	incoming := shared.NewTraceID()

	var seenTraceID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(shared.TraceIDHeader, incoming)
	TraceMiddleware(base)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, incoming, seenTraceID)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(shared.TraceIDHeader, "not a trace id")
	TraceMiddleware(base)(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not a trace id", seenTraceID)
	assert.True(t, shared.ValidTraceID(seenTraceID))
}
