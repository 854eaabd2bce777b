package store

import (
	"context"

	"msghook-backend/internal/models"
)

// InsertOutcome reports what Insert did. A duplicate message_id is not an
// error: the row is left untouched and the call succeeds. Storage failures are
// returned as a non-nil error instead of an outcome value.
type InsertOutcome int

const (
	InsertCreated InsertOutcome = iota
	InsertDuplicate
)

// MessageFilter narrows Query results. Zero values mean "no filter".
type MessageFilter struct {
	// From matches the sender exactly.
	From string
	// Since is an inclusive lower bound on ts. ISO-8601 UTC strings of the
	// accepted format compare lexicographically in chronological order.
	Since string
	// TextQuery is a case-insensitive substring match on text. Rows whose
	// text is absent never match a non-empty query.
	TextQuery string
}

// StatsSnapshot is the aggregate view computed by Stats.
type StatsSnapshot struct {
	TotalMessages int
	SendersCount  int
	// TopSenders holds up to 10 senders ordered by message count descending,
	// ties broken by sender ascending.
	TopSenders []models.SenderCount
	// FirstMessageTS and LastMessageTS are nil when the table is empty.
	FirstMessageTS *string
	LastMessageTS  *string
}

// MessageStore defines the interface for message persistence.
// This allows for mocking in tests and switching DB backends.
type MessageStore interface {
	// EnsureSchema creates the messages table and its indexes if missing.
	// Called once at startup; the only schema management in this service.
	EnsureSchema(ctx context.Context) error

	// Insert stores a message idempotently. CreatedAt is assigned by the
	// implementation at the moment of the attempt. Safe for concurrent use:
	// concurrent inserts of the same message_id resolve to exactly one
	// InsertCreated, all others InsertDuplicate.
	Insert(ctx context.Context, msg models.Message) (InsertOutcome, error)

	// Query returns one page of messages matching the filter, ordered by
	// (ts ASC, message_id ASC), plus the total match count before pagination.
	Query(ctx context.Context, filter MessageFilter, limit, offset int) ([]models.Message, int, error)

	// Stats recomputes the aggregate snapshot from current storage state.
	Stats(ctx context.Context) (StatsSnapshot, error)

	// HealthCheck reports whether the backing store is reachable and the
	// messages table exists.
	HealthCheck(ctx context.Context) bool

	Close() error
}
