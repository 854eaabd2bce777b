package api

import (
	"log/slog"
	"net/http"
	"time"

	"msghook-backend/internal/handlers"
	"msghook-backend/internal/logging"
	"msghook-backend/internal/observability"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestLogger assigns a correlation id to every request, logs one
// structured line when the request completes, and records request metrics.
// Webhook requests additionally log message_id, dup and result, filled in by
// the webhook handler through the context holder.
func RequestLogger(logger *slog.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			ctx := logging.WithRequestID(r.Context(), requestID)
			ctx, outcome := handlers.WithWebhookOutcome(ctx)

			w.Header().Set("X-Request-ID", requestID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			latency := time.Since(start)
			status := ww.Status()
			if status == 0 {
				// Handler never wrote a header; net/http sends 200.
				status = http.StatusOK
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Float64("latency_ms", float64(latency.Microseconds())/1000.0),
			}
			if outcome.Result != "" {
				attrs = append(attrs,
					slog.String("message_id", outcome.MessageID),
					slog.Bool("dup", outcome.Duplicate),
					slog.String("result", outcome.Result),
				)
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "request completed", attrs...)

			metrics.RecordHTTPRequest(ctx, r.Method, r.URL.Path, status, latency)
		})
	}
}
