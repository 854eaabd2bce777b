package models

// --- Response Structs ---

// WebhookResponse is returned for every accepted webhook delivery, whether the
// message was created or was a duplicate. The caller cannot tell the two apart
// from the response; the distinction is surfaced only through logs and metrics.
type WebhookResponse struct {
	Status string `json:"status"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is a single message in list responses. The internal
// from_msisdn/to_msisdn names are exposed as "from"/"to" on the wire.
type MessageResponse struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	TS        string  `json:"ts"`
	Text      *string `json:"text,omitempty"`
}

// MessagesListResponse is the paginated envelope for GET /messages.
// Total counts all rows matching the filters, ignoring limit/offset.
type MessagesListResponse struct {
	Data   []MessageResponse `json:"data"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// SenderCount is one entry of the per-sender leaderboard in stats.
type SenderCount struct {
	From  string `json:"from"`
	Count int    `json:"count"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	TotalMessages     int           `json:"total_messages"`
	SendersCount      int           `json:"senders_count"`
	MessagesPerSender []SenderCount `json:"messages_per_sender"`
	FirstMessageTS    *string       `json:"first_message_ts"`
	LastMessageTS     *string       `json:"last_message_ts"`
}

// HealthResponse is the body of the liveness and readiness probes.
type HealthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
