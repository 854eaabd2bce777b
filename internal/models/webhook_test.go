package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWebhookRequestValid(t *testing.T) {
	raw := []byte(`{"message_id":"m1","from":"+919876543210","to":"+14155550100","ts":"2025-01-15T10:00:00Z","text":"Hello"}`)

	req, verr := ParseWebhookRequest(raw)
	require.Nil(t, verr)
	assert.Equal(t, "m1", req.MessageID)
	assert.Equal(t, "+919876543210", req.From)
	assert.Equal(t, "+14155550100", req.To)
	assert.Equal(t, "2025-01-15T10:00:00Z", req.TS)
	require.NotNil(t, req.Text)
	assert.Equal(t, "Hello", *req.Text)
}

func TestParseWebhookRequestTextAbsent(t *testing.T) {
	raw := []byte(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`)

	req, verr := ParseWebhookRequest(raw)
	require.Nil(t, verr)
	assert.Nil(t, req.Text)
}

func TestParseWebhookRequestEmptyTextDistinctFromAbsent(t *testing.T) {
	raw := []byte(`{"message_id":"m1","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z","text":""}`)

	req, verr := ParseWebhookRequest(raw)
	require.Nil(t, verr)
	require.NotNil(t, req.Text)
	assert.Equal(t, "", *req.Text)
}

func TestParseWebhookRequestMalformedJSON(t *testing.T) {
	_, verr := ParseWebhookRequest([]byte(`{"message_id":`))
	require.NotNil(t, verr)
	assert.Equal(t, ValidationMalformedJSON, verr.Kind)
	assert.True(t, strings.HasPrefix(verr.Detail, "Invalid JSON: "))
}

func TestParseWebhookRequestMissingRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		field string
	}{
		{"missing message_id", `{"from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`, "message_id"},
		{"empty message_id", `{"message_id":"","from":"+1","to":"+2","ts":"2025-01-15T10:00:00Z"}`, "message_id"},
		{"missing from", `{"message_id":"m1","to":"+2","ts":"2025-01-15T10:00:00Z"}`, "from"},
		{"missing to", `{"message_id":"m1","from":"+1","ts":"2025-01-15T10:00:00Z"}`, "to"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, verr := ParseWebhookRequest([]byte(tc.raw))
			require.NotNil(t, verr)
			assert.Equal(t, ValidationSchema, verr.Kind)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestParseWebhookRequestMSISDNFormat(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"missing plus", `{"message_id":"m1","from":"919876543210","to":"+2","ts":"2025-01-15T10:00:00Z"}`},
		{"plus only", `{"message_id":"m1","from":"+","to":"+2","ts":"2025-01-15T10:00:00Z"}`},
		{"letters after plus", `{"message_id":"m1","from":"+91abc","to":"+2","ts":"2025-01-15T10:00:00Z"}`},
		{"spaces", `{"message_id":"m1","from":"+91 987","to":"+2","ts":"2025-01-15T10:00:00Z"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, verr := ParseWebhookRequest([]byte(tc.raw))
			require.NotNil(t, verr)
			assert.Equal(t, ValidationFormat, verr.Kind)
			assert.Equal(t, "from", verr.Field)
		})
	}
}

func TestParseWebhookRequestRecipientValidatedToo(t *testing.T) {
	_, verr := ParseWebhookRequest([]byte(`{"message_id":"m1","from":"+1","to":"14155550100","ts":"2025-01-15T10:00:00Z"}`))
	require.NotNil(t, verr)
	assert.Equal(t, ValidationFormat, verr.Kind)
	assert.Equal(t, "to", verr.Field)
}

func TestParseWebhookRequestTimestamp(t *testing.T) {
	cases := []struct {
		name string
		ts   string
	}{
		{"no Z suffix", "2025-01-15T10:00:00"},
		{"offset instead of Z", "2025-01-15T10:00:00+00:00"},
		{"not a date", "not-a-timestampZ"},
		{"impossible day", "2025-02-30T10:00:00Z"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, _ := json.Marshal(map[string]string{
				"message_id": "m1", "from": "+1", "to": "+2", "ts": tc.ts,
			})
			_, verr := ParseWebhookRequest(raw)
			require.NotNil(t, verr)
			assert.Equal(t, ValidationFormat, verr.Kind)
			assert.Equal(t, "ts", verr.Field)
		})
	}
}

func TestParseWebhookRequestTextLength(t *testing.T) {
	atLimit := strings.Repeat("a", MaxTextLength)
	raw, _ := json.Marshal(map[string]string{
		"message_id": "m1", "from": "+1", "to": "+2", "ts": "2025-01-15T10:00:00Z", "text": atLimit,
	})
	_, verr := ParseWebhookRequest(raw)
	assert.Nil(t, verr)

	overLimit := strings.Repeat("a", MaxTextLength+1)
	raw, _ = json.Marshal(map[string]string{
		"message_id": "m1", "from": "+1", "to": "+2", "ts": "2025-01-15T10:00:00Z", "text": overLimit,
	})
	_, verr = ParseWebhookRequest(raw)
	require.NotNil(t, verr)
	assert.Equal(t, ValidationLength, verr.Kind)
}

func TestParseWebhookRequestTextLengthCountsRunes(t *testing.T) {
	// 4096 multi-byte characters exceed 4096 bytes but not 4096 code points.
	text := strings.Repeat("é", MaxTextLength)
	raw, _ := json.Marshal(map[string]string{
		"message_id": "m1", "from": "+1", "to": "+2", "ts": "2025-01-15T10:00:00Z", "text": text,
	})
	_, verr := ParseWebhookRequest(raw)
	assert.Nil(t, verr)
}

func TestExtractMessageID(t *testing.T) {
	assert.Equal(t, "m1", ExtractMessageID([]byte(`{"message_id":"m1","from":"invalid"}`)))
	assert.Equal(t, "", ExtractMessageID([]byte(`{"from":"+1"}`)))
	assert.Equal(t, "", ExtractMessageID([]byte(`not json`)))
	assert.Equal(t, "", ExtractMessageID([]byte(`{"message_id":42}`)))
}
