package handlers

import (
	"net/http"

	"msghook-backend/internal/models"
	"msghook-backend/internal/store"
	"msghook-backend/pkg/httputil"
)

// HealthHandlers serves the liveness and readiness probes.
type HealthHandlers struct {
	store         store.MessageStore
	webhookSecret string
}

// NewHealthHandlers creates a new HealthHandlers instance.
func NewHealthHandlers(st store.MessageStore, webhookSecret string) *HealthHandlers {
	return &HealthHandlers{store: st, webhookSecret: webhookSecret}
}

// HandleLive always answers 200 once the process is serving. Orchestrators
// use it to decide whether to restart the container.
func (h *HealthHandlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}

// HandleReady answers 200 only when the webhook secret is configured and the
// store is reachable with its schema applied; otherwise 503 with a reason.
func (h *HealthHandlers) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		httputil.RespondJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status: "not_ready",
			Reason: "WEBHOOK_SECRET not configured",
		})
		return
	}

	if !h.store.HealthCheck(r.Context()) {
		httputil.RespondJSON(w, http.StatusServiceUnavailable, models.HealthResponse{
			Status: "not_ready",
			Reason: "Database not reachable or schema not applied",
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, models.HealthResponse{Status: "ready"})
}
