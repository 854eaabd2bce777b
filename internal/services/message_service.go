package services

import (
	"context"
	"fmt"

	"msghook-backend/internal/models"
	"msghook-backend/internal/store"
)

const (
	// DefaultListLimit applies when the caller omits limit.
	DefaultListLimit = 50
	// MaxListLimit is the largest accepted page size.
	MaxListLimit = 100
)

// ParamError reports an out-of-range pagination parameter. Handlers map it to
// a 422 response; the store is never reached.
type ParamError struct {
	Param  string
	Detail string
}

func (e *ParamError) Error() string {
	return e.Detail
}

// ListParams are the validated-on-use query parameters for listing messages.
type ListParams struct {
	Limit  int
	Offset int
	From   string // exact sender match, empty means no filter
	Since  string // inclusive ts lower bound, empty means no filter
	Q      string // case-insensitive substring on text, empty means no filter
}

// MessageService translates list parameters into a deterministic ordered read
// from the message store. It owns parameter validation and the wire-format
// mapping; everything else delegates to the store.
type MessageService struct {
	store store.MessageStore
}

// NewMessageService creates a new MessageService.
func NewMessageService(st store.MessageStore) *MessageService {
	return &MessageService{store: st}
}

// List returns one page of messages ordered by (ts, message_id) ascending.
func (s *MessageService) List(ctx context.Context, p ListParams) (*models.MessagesListResponse, error) {
	if p.Limit < 1 || p.Limit > MaxListLimit {
		return nil, &ParamError{
			Param:  "limit",
			Detail: fmt.Sprintf("limit must be between 1 and %d", MaxListLimit),
		}
	}
	if p.Offset < 0 {
		return nil, &ParamError{
			Param:  "offset",
			Detail: "offset must be greater than or equal to 0",
		}
	}

	filter := store.MessageFilter{
		From:      p.From,
		Since:     p.Since,
		TextQuery: p.Q,
	}

	messages, total, err := s.store.Query(ctx, filter, p.Limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}

	data := make([]models.MessageResponse, 0, len(messages))
	for _, m := range messages {
		data = append(data, models.MessageResponse{
			MessageID: m.MessageID,
			From:      m.FromMSISDN,
			To:        m.ToMSISDN,
			TS:        m.TS,
			Text:      m.Text,
		})
	}

	return &models.MessagesListResponse{
		Data:   data,
		Total:  total,
		Limit:  p.Limit,
		Offset: p.Offset,
	}, nil
}
