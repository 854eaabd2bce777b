package handlers

import (
	"io"
	"net/http"

	"msghook-backend/internal/models"
	"msghook-backend/internal/services"
	"msghook-backend/pkg/httputil"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature"

// WebhookHandlers handles inbound signed webhook deliveries.
type WebhookHandlers struct {
	ingestService *services.IngestService
}

// NewWebhookHandlers creates a new WebhookHandlers instance.
func NewWebhookHandlers(is *services.IngestService) *WebhookHandlers {
	return &WebhookHandlers{ingestService: is}
}

// HandleWebhook ingests one message delivery.
//
// The signature is computed over the exact raw bytes received, so the body is
// read once and never re-serialized before verification. Created and
// duplicate both answer 200 with the same body; the caller cannot distinguish
// a replay from the response.
func (h *WebhookHandlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	signature := r.Header.Get(SignatureHeader)

	result := h.ingestService.Ingest(r.Context(), rawBody, signature)

	if info := WebhookOutcomeFromContext(r.Context()); info != nil {
		info.MessageID = result.MessageID
		info.Duplicate = result.Outcome == services.OutcomeDuplicate
		info.Result = string(result.Outcome)
	}

	switch result.Outcome {
	case services.OutcomeInvalidSignature:
		// Deliberately generic: the response must not leak anything derived
		// from the secret or the expected digest.
		httputil.RespondError(w, http.StatusUnauthorized, "invalid signature")
	case services.OutcomeValidationError:
		httputil.RespondError(w, http.StatusUnprocessableEntity, result.ValidationErr.Detail)
	case services.OutcomeStoreError:
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to store message")
	default:
		httputil.RespondJSON(w, http.StatusOK, models.WebhookResponse{Status: "ok"})
	}
}
