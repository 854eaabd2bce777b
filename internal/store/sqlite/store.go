package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"msghook-backend/internal/models"
	"msghook-backend/internal/store"

	_ "modernc.org/sqlite"
)

// Compile-time check to ensure SQLiteStore implements store.MessageStore
var _ store.MessageStore = (*SQLiteStore)(nil)

// SQLiteStore is the embedded-database backend, used for local single-node
// deployments and for tests. Same contract as the Postgres store.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database at path.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// A single connection serializes all access. SQLite allows one writer at
	// a time anyway, and with an in-memory database every pooled connection
	// would otherwise see its own empty copy.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

const createSchema = `
CREATE TABLE IF NOT EXISTS messages (
    message_id  TEXT PRIMARY KEY,
    from_msisdn TEXT NOT NULL,
    to_msisdn   TEXT NOT NULL,
    ts          TEXT NOT NULL,
    text        TEXT,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_from_msisdn ON messages (from_msisdn);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages (ts);
`

// EnsureSchema creates the messages table and indexes if they do not exist.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSchema); err != nil {
		return fmt.Errorf("database error creating messages schema: %w", err)
	}
	return nil
}

const insertMessage = `
INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (message_id) DO NOTHING;
`

// Insert stores a message idempotently. The primary key on message_id makes
// concurrent duplicate deliveries resolve to exactly one created row; every
// other caller observes zero rows affected.
func (s *SQLiteStore) Insert(ctx context.Context, msg models.Message) (store.InsertOutcome, error) {
	createdAt := time.Now().UTC().Format(models.CreatedAtLayout)

	res, err := s.db.ExecContext(ctx, insertMessage,
		msg.MessageID,
		msg.FromMSISDN,
		msg.ToMSISDN,
		msg.TS,
		msg.Text,
		createdAt,
	)
	if err != nil {
		log.Printf("ERROR [SQLiteStore] Insert: Failed to execute insert for message %s: %v", msg.MessageID, err)
		return store.InsertCreated, fmt.Errorf("database error inserting message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return store.InsertCreated, fmt.Errorf("database error reading insert result: %w", err)
	}
	if affected == 0 {
		return store.InsertDuplicate, nil
	}
	return store.InsertCreated, nil
}

func buildFilter(filter store.MessageFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}

	if filter.From != "" {
		clauses = append(clauses, "from_msisdn = ?")
		args = append(args, filter.From)
	}
	if filter.Since != "" {
		clauses = append(clauses, "ts >= ?")
		args = append(args, filter.Since)
	}
	if filter.TextQuery != "" {
		// LIKE against NULL is NULL, so rows without text never match.
		clauses = append(clauses, "LOWER(text) LIKE '%' || LOWER(?) || '%'")
		args = append(args, filter.TextQuery)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns one page of messages ordered by (ts, message_id) ascending
// plus the total count of rows matching the filter before pagination.
func (s *SQLiteStore) Query(ctx context.Context, filter store.MessageFilter, limit, offset int) ([]models.Message, int, error) {
	where, args := buildFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	pageQuery := "SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at FROM messages" +
		where + " ORDER BY ts ASC, message_id ASC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var items []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.MessageID,
			&m.FromMSISDN,
			&m.ToMSISDN,
			&m.TS,
			&m.Text,
			&m.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning message row: %w", err)
		}
		items = append(items, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating message rows: %w", err)
	}

	return items, total, nil
}

const statsTopSenders = `
SELECT from_msisdn, COUNT(*) AS message_count
FROM messages
GROUP BY from_msisdn
ORDER BY message_count DESC, from_msisdn ASC
LIMIT 10;
`

// Stats recomputes aggregate counts from current table state with the same
// ordering contract as the Postgres backend.
func (s *SQLiteStore) Stats(ctx context.Context) (store.StatsSnapshot, error) {
	var snap store.StatsSnapshot

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*), COUNT(DISTINCT from_msisdn) FROM messages").Scan(&snap.TotalMessages, &snap.SendersCount); err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error counting messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, statsTopSenders)
	if err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error querying top senders: %w", err)
	}
	defer rows.Close()

	snap.TopSenders = []models.SenderCount{}
	for rows.Next() {
		var sc models.SenderCount
		if err := rows.Scan(&sc.From, &sc.Count); err != nil {
			return store.StatsSnapshot{}, fmt.Errorf("error scanning sender row: %w", err)
		}
		snap.TopSenders = append(snap.TopSenders, sc)
	}
	if err = rows.Err(); err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error iterating sender rows: %w", err)
	}

	// MIN/MAX over an empty table are NULL, which scan into nil pointers.
	if err := s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM messages").Scan(&snap.FirstMessageTS, &snap.LastMessageTS); err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error querying time bounds: %w", err)
	}

	return snap, nil
}

// HealthCheck reports true only if the database answers a trivial query and
// the messages table exists.
func (s *SQLiteStore) HealthCheck(ctx context.Context) bool {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Printf("ERROR [SQLiteStore] HealthCheck: connectivity check failed: %v", err)
		return false
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'messages'").Scan(&count); err != nil {
		log.Printf("ERROR [SQLiteStore] HealthCheck: schema check failed: %v", err)
		return false
	}
	if count == 0 {
		log.Println("ERROR [SQLiteStore] HealthCheck: messages table not found")
		return false
	}
	return true
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
