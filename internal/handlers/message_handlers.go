package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"msghook-backend/internal/services"
	"msghook-backend/pkg/httputil"
)

// MessageHandlers serves paginated, filterable message reads.
type MessageHandlers struct {
	messageService *services.MessageService
}

// NewMessageHandlers creates a new MessageHandlers instance.
func NewMessageHandlers(ms *services.MessageService) *MessageHandlers {
	return &MessageHandlers{messageService: ms}
}

// HandleListMessages handles GET /messages.
//
// Query parameters: limit (1-100, default 50), offset (>=0, default 0),
// from (exact sender match), since (inclusive ts lower bound), q
// (case-insensitive substring on text). Out-of-range or non-numeric
// pagination values answer 422 before the store is touched.
func (h *MessageHandlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := services.DefaultListLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
		limit = n
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusUnprocessableEntity, "offset must be an integer")
			return
		}
		offset = n
	}

	params := services.ListParams{
		Limit:  limit,
		Offset: offset,
		From:   q.Get("from"),
		Since:  q.Get("since"),
		Q:      q.Get("q"),
	}

	resp, err := h.messageService.List(r.Context(), params)
	if err != nil {
		var paramErr *services.ParamError
		if errors.As(err, &paramErr) {
			httputil.RespondError(w, http.StatusUnprocessableEntity, paramErr.Detail)
			return
		}
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
