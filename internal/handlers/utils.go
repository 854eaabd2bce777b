package handlers

import (
	"context"
)

// WebhookOutcomeInfo carries the ingestion outcome from the webhook handler
// back to the request-logging middleware, so the access log line for a
// webhook request includes message_id, the duplicate flag and the result
// category.
type WebhookOutcomeInfo struct {
	MessageID string
	Duplicate bool
	Result    string
}

type ctxKey string

const webhookOutcomeKey ctxKey = "webhook_outcome"

// WithWebhookOutcome installs an empty outcome holder in the context. The
// middleware calls this before the handler runs; the handler fills it in.
func WithWebhookOutcome(ctx context.Context) (context.Context, *WebhookOutcomeInfo) {
	info := &WebhookOutcomeInfo{}
	return context.WithValue(ctx, webhookOutcomeKey, info), info
}

// WebhookOutcomeFromContext returns the outcome holder, or nil when the
// middleware did not install one.
func WebhookOutcomeFromContext(ctx context.Context) *WebhookOutcomeInfo {
	info, _ := ctx.Value(webhookOutcomeKey).(*WebhookOutcomeInfo)
	return info
}
