package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
)

// TraceMiddleware assigns each request a trace ID and a request-scoped logger
// carrying it. A well-formed X-Trace-ID header from the caller is reused;
// anything else is replaced. The ID is echoed in the response header.
func TraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(shared.TraceIDHeader)
			if !shared.ValidTraceID(traceID) {
				traceID = shared.NewTraceID()
			}

			log := base.With(slog.String("trace_id", traceID))
			ctx := shared.WithTraceID(r.Context(), traceID)
			ctx = logger.WithContext(ctx, log)

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(shared.TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
