package services

import (
	"context"
	"log/slog"

	"msghook-backend/internal/crypto"
	"msghook-backend/internal/models"
	"msghook-backend/internal/observability"
	"msghook-backend/internal/store"
)

// IngestOutcome classifies one ingestion attempt. Every attempt lands in
// exactly one of these; downstream counters and logs depend on the taxonomy.
type IngestOutcome string

const (
	OutcomeCreated          IngestOutcome = "created"
	OutcomeDuplicate        IngestOutcome = "duplicate"
	OutcomeInvalidSignature IngestOutcome = "invalid_signature"
	OutcomeValidationError  IngestOutcome = "validation_error"
	OutcomeStoreError       IngestOutcome = "store_error"
)

// IngestResult is the terminal state of one pipeline run.
type IngestResult struct {
	Outcome IngestOutcome
	// MessageID is the best-known message id, recovered from the body even
	// when validation failed. Empty when the body was unusable.
	MessageID string
	// ValidationErr is set only for OutcomeValidationError and carries the
	// caller-safe detail for the 422 response.
	ValidationErr *models.ValidationError
	// Err is set only for OutcomeStoreError.
	Err error
}

// IngestService runs the ingestion pipeline for one inbound webhook event:
// verify signature, validate payload, store idempotently, classify outcome.
// No retries; the unique key on message_id makes client re-sends safe instead.
type IngestService struct {
	store   store.MessageStore
	secret  string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(st store.MessageStore, secret string, metrics *observability.Metrics, logger *slog.Logger) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		store:   st,
		secret:  secret,
		metrics: metrics,
		logger:  logger,
	}
}

// Ingest processes one raw webhook delivery. signature is the hex value of
// the X-Signature header, empty when the header was missing. Every terminal
// state records exactly one outcome metric.
func (s *IngestService) Ingest(ctx context.Context, rawBody []byte, signature string) IngestResult {
	if signature == "" || !crypto.VerifySignature(rawBody, signature, s.secret) {
		s.logger.ErrorContext(ctx, "invalid webhook signature")
		s.metrics.RecordWebhookOutcome(ctx, string(OutcomeInvalidSignature))
		return IngestResult{Outcome: OutcomeInvalidSignature}
	}

	req, verr := models.ParseWebhookRequest(rawBody)
	if verr != nil {
		// The body failed validation but may still name its message_id;
		// recover it so the rejection is attributable in logs.
		messageID := models.ExtractMessageID(rawBody)
		s.logger.ErrorContext(ctx, "webhook payload validation failed",
			"message_id", messageID,
			"field", verr.Field,
			"detail", verr.Detail,
		)
		s.metrics.RecordWebhookOutcome(ctx, string(OutcomeValidationError))
		return IngestResult{
			Outcome:       OutcomeValidationError,
			MessageID:     messageID,
			ValidationErr: verr,
		}
	}

	msg := models.Message{
		MessageID:  req.MessageID,
		FromMSISDN: req.From,
		ToMSISDN:   req.To,
		TS:         req.TS,
		Text:       req.Text,
	}

	outcome, err := s.store.Insert(ctx, msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to store message",
			"message_id", req.MessageID,
			"error", err,
		)
		s.metrics.RecordWebhookOutcome(ctx, string(OutcomeStoreError))
		return IngestResult{
			Outcome:   OutcomeStoreError,
			MessageID: req.MessageID,
			Err:       err,
		}
	}

	result := OutcomeCreated
	if outcome == store.InsertDuplicate {
		result = OutcomeDuplicate
	}
	s.logger.InfoContext(ctx, "message processed",
		"message_id", req.MessageID,
		"result", string(result),
	)
	s.metrics.RecordWebhookOutcome(ctx, string(result))
	return IngestResult{Outcome: result, MessageID: req.MessageID}
}
