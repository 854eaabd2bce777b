package models

// Message is the sole persisted entity: one inbound WhatsApp-like message.
//
// MessageID is the primary key; its uniqueness is what makes ingestion
// idempotent. The record is append-only: never updated, never deleted.
type Message struct {
	MessageID  string
	FromMSISDN string
	ToMSISDN   string
	TS         string  // Caller-supplied ISO-8601 UTC timestamp
	Text       *string // nil means the field was absent, distinct from empty
	CreatedAt  string  // Server-assigned ISO-8601 UTC, second precision
}

// CreatedAtLayout is the format of server-assigned timestamps.
const CreatedAtLayout = "2006-01-02T15:04:05Z"
