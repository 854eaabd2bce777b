package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"msghook-backend/internal/crypto"
	"msghook-backend/internal/models"
	"msghook-backend/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// stubStore lets pipeline tests control the insert outcome, including the
// storage-failure path that a real backend cannot produce on demand.
type stubStore struct {
	insertOutcome store.InsertOutcome
	insertErr     error
	inserted      []models.Message
}

func (s *stubStore) EnsureSchema(ctx context.Context) error { return nil }

func (s *stubStore) Insert(ctx context.Context, msg models.Message) (store.InsertOutcome, error) {
	s.inserted = append(s.inserted, msg)
	return s.insertOutcome, s.insertErr
}

func (s *stubStore) Query(ctx context.Context, filter store.MessageFilter, limit, offset int) ([]models.Message, int, error) {
	return nil, 0, nil
}

func (s *stubStore) Stats(ctx context.Context) (store.StatsSnapshot, error) {
	return store.StatsSnapshot{}, nil
}

func (s *stubStore) HealthCheck(ctx context.Context) bool { return true }

func (s *stubStore) Close() error { return nil }

func newTestIngestService(st store.MessageStore) *IngestService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewIngestService(st, testSecret, nil, logger)
}

func signedBody(body string) ([]byte, string) {
	raw := []byte(body)
	return raw, crypto.ComputeSignature(raw, testSecret)
}

func TestIngestCreated(t *testing.T) {
	st := &stubStore{insertOutcome: store.InsertCreated}
	svc := newTestIngestService(st)

	raw, sig := signedBody(`{"message_id":"m1","from":"+919876543210","to":"+14155550100","ts":"2025-01-15T10:00:00Z","text":"Hello"}`)
	result := svc.Ingest(context.Background(), raw, sig)

	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, "m1", result.MessageID)
	require.Len(t, st.inserted, 1)
	assert.Equal(t, "+919876543210", st.inserted[0].FromMSISDN)
	assert.Equal(t, "+14155550100", st.inserted[0].ToMSISDN)
	require.NotNil(t, st.inserted[0].Text)
	assert.Equal(t, "Hello", *st.inserted[0].Text)
}

func TestIngestDuplicate(t *testing.T) {
	st := &stubStore{insertOutcome: store.InsertDuplicate}
	svc := newTestIngestService(st)

	raw, sig := signedBody(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`)
	result := svc.Ingest(context.Background(), raw, sig)

	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Equal(t, "m1", result.MessageID)
}

func TestIngestMissingSignature(t *testing.T) {
	st := &stubStore{}
	svc := newTestIngestService(st)

	raw := []byte(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`)
	result := svc.Ingest(context.Background(), raw, "")

	assert.Equal(t, OutcomeInvalidSignature, result.Outcome)
	assert.Empty(t, st.inserted, "store must not be touched on signature failure")
}

func TestIngestWrongSignature(t *testing.T) {
	st := &stubStore{}
	svc := newTestIngestService(st)

	raw := []byte(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`)
	result := svc.Ingest(context.Background(), raw, crypto.ComputeSignature(raw, "other-secret"))

	assert.Equal(t, OutcomeInvalidSignature, result.Outcome)
	assert.Empty(t, st.inserted)
}

func TestIngestValidationErrorKeepsMessageID(t *testing.T) {
	st := &stubStore{}
	svc := newTestIngestService(st)

	// Correctly signed body whose sender lacks the leading '+': the
	// signature check passes, validation rejects it.
	raw, sig := signedBody(`{"message_id":"m1","from":"919876543210","to":"+2","ts":"2025-01-15T10:00:00Z"}`)
	result := svc.Ingest(context.Background(), raw, sig)

	assert.Equal(t, OutcomeValidationError, result.Outcome)
	assert.Equal(t, "m1", result.MessageID)
	require.NotNil(t, result.ValidationErr)
	assert.Equal(t, "from", result.ValidationErr.Field)
	assert.Empty(t, st.inserted, "store must not be touched on validation failure")
}

func TestIngestMalformedJSONAfterValidSignature(t *testing.T) {
	st := &stubStore{}
	svc := newTestIngestService(st)

	raw, sig := signedBody(`{"message_id":`)
	result := svc.Ingest(context.Background(), raw, sig)

	assert.Equal(t, OutcomeValidationError, result.Outcome)
	assert.Equal(t, "", result.MessageID)
	require.NotNil(t, result.ValidationErr)
	assert.Equal(t, models.ValidationMalformedJSON, result.ValidationErr.Kind)
}

func TestIngestStoreError(t *testing.T) {
	st := &stubStore{insertErr: errors.New("connection refused")}
	svc := newTestIngestService(st)

	raw, sig := signedBody(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`)
	result := svc.Ingest(context.Background(), raw, sig)

	assert.Equal(t, OutcomeStoreError, result.Outcome)
	assert.Equal(t, "m1", result.MessageID)
	require.Error(t, result.Err)
}
