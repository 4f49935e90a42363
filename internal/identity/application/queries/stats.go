// Package queries provides read-side reports over the customer base.
package queries

import (
	"context"
	"fmt"

	"github.com/mirelabalan/fanvault/internal/identity/domain"
)

// StatsReport summarizes the customer base for the operator.
type StatsReport struct {
	TotalUsers        int64
	TotalSpent        int64
	TotalInteractions int64
	TopSpenders       []domain.Spender
}

// StatsHandler builds the operator stats report.
type StatsHandler struct {
	users domain.Repository
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(users domain.Repository) *StatsHandler {
	return &StatsHandler{users: users}
}

// Handle returns totals and the top spenders.
func (h *StatsHandler) Handle(ctx context.Context, topN int) (StatsReport, error) {
	if topN <= 0 {
		topN = 5
	}

	stats, err := h.users.Stats(ctx)
	if err != nil {
		return StatsReport{}, fmt.Errorf("load stats: %w", err)
	}

	spenders, err := h.users.TopSpenders(ctx, topN)
	if err != nil {
		return StatsReport{}, fmt.Errorf("load top spenders: %w", err)
	}

	return StatsReport{
		TotalUsers:        stats.TotalUsers,
		TotalSpent:        stats.TotalSpent,
		TotalInteractions: stats.TotalInteractions,
		TopSpenders:       spenders,
	}, nil
}
