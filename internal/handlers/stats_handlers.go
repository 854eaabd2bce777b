package handlers

import (
	"net/http"

	"msghook-backend/internal/services"
	"msghook-backend/pkg/httputil"
)

// StatsHandlers serves aggregate message statistics.
type StatsHandlers struct {
	statsService *services.StatsService
}

// NewStatsHandlers creates a new StatsHandlers instance.
func NewStatsHandlers(ss *services.StatsService) *StatsHandlers {
	return &StatsHandlers{statsService: ss}
}

// HandleGetStats handles GET /stats.
func (h *StatsHandlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.statsService.Compute(r.Context())
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
