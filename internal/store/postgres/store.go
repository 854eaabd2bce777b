package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"msghook-backend/internal/models"
	"msghook-backend/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.MessageStore
var _ store.MessageStore = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
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
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createSchema); err != nil {
		return fmt.Errorf("database error creating messages schema: %w", err)
	}
	return nil
}

const insertMessage = `-- name: InsertMessage :exec
INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (message_id) DO NOTHING;
`

// Insert stores a message idempotently. The unique constraint on message_id
// is the serialization point: under concurrent duplicate deliveries exactly
// one caller gets a row inserted, everyone else sees zero rows affected.
func (s *PostgresStore) Insert(ctx context.Context, msg models.Message) (store.InsertOutcome, error) {
	createdAt := time.Now().UTC().Format(models.CreatedAtLayout)

	tag, err := s.db.Exec(ctx, insertMessage,
		msg.MessageID,
		msg.FromMSISDN,
		msg.ToMSISDN,
		msg.TS,
		msg.Text, // pgx handles *string to NULL automatically
		createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Printf("ERROR [PostgresStore] Insert: PostgreSQL error for message %s: Code=%s, Message=%s", msg.MessageID, pgErr.Code, pgErr.Message)
		} else {
			log.Printf("ERROR [PostgresStore] Insert: Failed to execute insert for message %s: %v", msg.MessageID, err)
		}
		return store.InsertCreated, fmt.Errorf("database error inserting message: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return store.InsertDuplicate, nil
	}
	return store.InsertCreated, nil
}

// buildFilter translates a MessageFilter into a WHERE clause and its
// positional arguments, numbered from $1.
func buildFilter(filter store.MessageFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	argID := 1

	if filter.From != "" {
		clauses = append(clauses, fmt.Sprintf("from_msisdn = $%d", argID))
		args = append(args, filter.From)
		argID++
	}
	if filter.Since != "" {
		clauses = append(clauses, fmt.Sprintf("ts >= $%d", argID))
		args = append(args, filter.Since)
		argID++
	}
	if filter.TextQuery != "" {
		// ILIKE against NULL is NULL, so rows without text never match.
		clauses = append(clauses, fmt.Sprintf("text ILIKE $%d", argID))
		args = append(args, "%"+filter.TextQuery+"%")
		argID++
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Query returns one page of messages ordered by (ts, message_id) ascending
// plus the total count of rows matching the filter before pagination.
func (s *PostgresStore) Query(ctx context.Context, filter store.MessageFilter, limit, offset int) ([]models.Message, int, error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM messages" + where
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	pageQuery := fmt.Sprintf(
		"SELECT message_id, from_msisdn, to_msisdn, ts, text, created_at FROM messages%s ORDER BY ts ASC, message_id ASC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, pageQuery, args...)
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

const statsCounts = `-- name: StatsCounts :one
SELECT COUNT(*), COUNT(DISTINCT from_msisdn) FROM messages;
`

const statsTopSenders = `-- name: StatsTopSenders :many
SELECT from_msisdn, COUNT(*) AS message_count
FROM messages
GROUP BY from_msisdn
ORDER BY message_count DESC, from_msisdn ASC
LIMIT 10;
`

const statsTimeBounds = `-- name: StatsTimeBounds :one
SELECT MIN(ts), MAX(ts) FROM messages;
`

// Stats recomputes aggregate counts from current table state. Top senders are
// ordered by count descending with sender ascending as the deterministic
// tie-break.
func (s *PostgresStore) Stats(ctx context.Context) (store.StatsSnapshot, error) {
	var snap store.StatsSnapshot

	if err := s.db.QueryRow(ctx, statsCounts).Scan(&snap.TotalMessages, &snap.SendersCount); err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error counting messages: %w", err)
	}

	rows, err := s.db.Query(ctx, statsTopSenders)
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

	// MIN/MAX over an empty table are NULL, which scans into nil pointers.
	if err := s.db.QueryRow(ctx, statsTimeBounds).Scan(&snap.FirstMessageTS, &snap.LastMessageTS); err != nil {
		return store.StatsSnapshot{}, fmt.Errorf("error querying time bounds: %w", err)
	}

	return snap, nil
}

const checkMessagesTable = `
SELECT COUNT(*) FROM information_schema.tables
WHERE table_schema = 'public' AND table_name = 'messages';
`

// HealthCheck reports true only if the database answers a trivial query and
// the messages table exists.
func (s *PostgresStore) HealthCheck(ctx context.Context) bool {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		log.Printf("ERROR [PostgresStore] HealthCheck: connectivity check failed: %v", err)
		return false
	}

	var count int
	if err := s.db.QueryRow(ctx, checkMessagesTable).Scan(&count); err != nil {
		log.Printf("ERROR [PostgresStore] HealthCheck: schema check failed: %v", err)
		return false
	}
	if count == 0 {
		log.Println("ERROR [PostgresStore] HealthCheck: messages table not found")
		return false
	}
	return true
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
