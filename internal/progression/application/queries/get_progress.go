package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// GetProgressQuery asks for a user's streak and badges.
type GetProgressQuery struct {
	UserID uuid.UUID
}

// ProgressDTO is the progression screen.
type ProgressDTO struct {
	Streak domain.State `json:"streak"`
	// AtRisk is set when yesterday counted but today has not yet.
	AtRisk        bool                 `json:"at_risk"`
	NextMilestone int                  `json:"next_milestone,omitempty"`
	Badges        []domain.BadgeStatus `json:"badges"`
	EarnedCount   int                  `json:"earned_count"`
}

// GetProgressHandler handles the GetProgressQuery.
type GetProgressHandler struct {
	streaks domain.StreakRepository
	badges  domain.BadgeRepository
	loc     *time.Location
	clock   func() time.Time
}

// NewGetProgressHandler creates a new GetProgressHandler.
func NewGetProgressHandler(streaks domain.StreakRepository, badges domain.BadgeRepository, loc *time.Location) *GetProgressHandler {
	if loc == nil {
		loc = time.Local
	}
	return &GetProgressHandler{streaks: streaks, badges: badges, loc: loc, clock: time.Now}
}

// Handle executes the GetProgressQuery.
func (h *GetProgressHandler) Handle(ctx context.Context, query GetProgressQuery) (*ProgressDTO, error) {
	state, err := h.streaks.Find(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	earned, err := h.badges.FindEarned(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	today := sharedDomain.DayIn(h.clock(), h.loc)
	dto := &ProgressDTO{
		Streak:        state,
		AtRisk:        state.CurrentStreak > 0 && state.LastFocusDate.Equal(today.AddDays(-1)),
		NextMilestone: domain.NextMilestone(state.CurrentStreak),
		Badges:        domain.AllBadgesWithStatus(domain.EarnedSetOf(earned)),
		EarnedCount:   len(earned),
	}
	return dto, nil
}
