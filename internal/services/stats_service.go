package services

import (
	"context"
	"fmt"

	"msghook-backend/internal/models"
	"msghook-backend/internal/store"
)

// StatsService computes message-level analytics. No caching: every call
// recomputes from current storage state.
type StatsService struct {
	store store.MessageStore
}

// NewStatsService creates a new StatsService.
func NewStatsService(st store.MessageStore) *StatsService {
	return &StatsService{store: st}
}

// Compute returns the current aggregate snapshot.
func (s *StatsService) Compute(ctx context.Context) (*models.StatsResponse, error) {
	snap, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	perSender := snap.TopSenders
	if perSender == nil {
		// Serialize as [] rather than null on an empty table.
		perSender = []models.SenderCount{}
	}

	return &models.StatsResponse{
		TotalMessages:     snap.TotalMessages,
		SendersCount:      snap.SendersCount,
		MessagesPerSender: perSender,
		FirstMessageTS:    snap.FirstMessageTS,
		LastMessageTS:     snap.LastMessageTS,
	}, nil
}
