package models

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxTextLength is the maximum accepted message text length, measured in
// Unicode code points rather than bytes.
const MaxTextLength = 4096

// ValidationKind classifies why a webhook payload was rejected.
type ValidationKind string

const (
	ValidationMalformedJSON ValidationKind = "malformed_json"
	ValidationSchema        ValidationKind = "schema"
	ValidationFormat        ValidationKind = "format"
	ValidationLength        ValidationKind = "length"
)

// ValidationError describes a rejected webhook payload. Detail is safe to
// return to the caller in the 422 body.
type ValidationError struct {
	Kind   ValidationKind
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// WebhookRequest is the wire shape of an inbound webhook delivery.
type WebhookRequest struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	TS        string  `json:"ts"`
	Text      *string `json:"text"`
}

// ParseWebhookRequest parses and validates a raw webhook body into a
// WebhookRequest. On failure it returns a ValidationError describing the first
// violation found. Presence is checked before format, format before length.
func ParseWebhookRequest(raw []byte) (*WebhookRequest, *ValidationError) {
	var req WebhookRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &ValidationError{
			Kind:   ValidationMalformedJSON,
			Detail: fmt.Sprintf("Invalid JSON: %v", err),
		}
	}

	if req.MessageID == "" {
		return nil, &ValidationError{
			Kind:   ValidationSchema,
			Field:  "message_id",
			Detail: "message_id is required and must be non-empty",
		}
	}
	if req.From == "" {
		return nil, &ValidationError{
			Kind:   ValidationSchema,
			Field:  "from",
			Detail: "from is required and must be non-empty",
		}
	}
	if req.To == "" {
		return nil, &ValidationError{
			Kind:   ValidationSchema,
			Field:  "to",
			Detail: "to is required and must be non-empty",
		}
	}

	if verr := validateMSISDN("from", req.From); verr != nil {
		return nil, verr
	}
	if verr := validateMSISDN("to", req.To); verr != nil {
		return nil, verr
	}
	if verr := validateTimestamp(req.TS); verr != nil {
		return nil, verr
	}

	if req.Text != nil && utf8.RuneCountInString(*req.Text) > MaxTextLength {
		return nil, &ValidationError{
			Kind:   ValidationLength,
			Field:  "text",
			Detail: fmt.Sprintf("text must be at most %d characters", MaxTextLength),
		}
	}

	return &req, nil
}

// validateMSISDN enforces the E.164-like shape: '+' followed by one or more
// ASCII digits, nothing else.
func validateMSISDN(field, v string) *ValidationError {
	if v[0] != '+' {
		return &ValidationError{
			Kind:   ValidationFormat,
			Field:  field,
			Detail: fmt.Sprintf("%s must start with '+'", field),
		}
	}
	if len(v) < 2 {
		return &ValidationError{
			Kind:   ValidationFormat,
			Field:  field,
			Detail: fmt.Sprintf("%s must have at least one digit after '+'", field),
		}
	}
	for i := 1; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return &ValidationError{
				Kind:   ValidationFormat,
				Field:  field,
				Detail: fmt.Sprintf("%s must contain only digits after '+'", field),
			}
		}
	}
	return nil
}

// validateTimestamp requires an ISO-8601 UTC timestamp with a literal 'Z'
// suffix that parses as a real calendar date-time.
func validateTimestamp(v string) *ValidationError {
	if len(v) == 0 || v[len(v)-1] != 'Z' {
		return &ValidationError{
			Kind:   ValidationFormat,
			Field:  "ts",
			Detail: "ts must end with 'Z' (UTC timezone)",
		}
	}
	if _, err := time.Parse(time.RFC3339, v); err != nil {
		return &ValidationError{
			Kind:   ValidationFormat,
			Field:  "ts",
			Detail: "ts must be a valid ISO-8601 UTC timestamp (e.g., 2025-01-15T10:00:00Z)",
		}
	}
	return nil
}

// ExtractMessageID pulls message_id out of a body that failed validation, so
// rejected requests can still be logged with their best-known id. Best effort:
// returns empty string rather than an error when the body is unusable.
func ExtractMessageID(raw []byte) string {
	var probe struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.MessageID
}
