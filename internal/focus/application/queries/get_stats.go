package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// GetStatsQuery asks for today's score and the profile totals.
type GetStatsQuery struct {
	UserID uuid.UUID
}

// StatsDTO combines today's summary with lifetime stats.
type StatsDTO struct {
	Today   domain.DailySummary `json:"today"`
	Profile domain.ProfileStats `json:"profile"`
}

// GetStatsHandler handles the GetStatsQuery.
type GetStatsHandler struct {
	sessions domain.Repository
	loc      *time.Location
	clock    func() time.Time
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(sessions domain.Repository, loc *time.Location) *GetStatsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &GetStatsHandler{sessions: sessions, loc: loc, clock: time.Now}
}

// Handle executes the GetStatsQuery.
func (h *GetStatsHandler) Handle(ctx context.Context, query GetStatsQuery) (*StatsDTO, error) {
	sessions, err := h.sessions.FindByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	today := sharedDomain.DayIn(h.clock(), h.loc)

	var todays []*domain.Session
	for _, s := range sessions {
		if sharedDomain.DayIn(s.StartedAt(), h.loc).Equal(today) {
			todays = append(todays, s)
		}
	}
	summary := domain.DailyScore(todays)
	summary.Day = today

	return &StatsDTO{
		Today:   summary,
		Profile: domain.ComputeProfileStats(sessions, today, h.loc),
	}, nil
}
