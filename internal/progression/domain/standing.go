package domain

import (
	"context"

	"github.com/google/uuid"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// GroupStanding is where a user sits among everyone on the weekly
// leaderboard. It feeds the group badges.
type GroupStanding struct {
	WeeklyImprovement    float64  `json:"weekly_improvement"`
	GroupMaxImprovement  *float64 `json:"group_max_improvement,omitempty"`
	ConsecutiveWeeksTop3 int      `json:"consecutive_weeks_top3"`
}

// StandingSource reports a user's group standing for the week containing day.
type StandingSource interface {
	Standing(ctx context.Context, userID uuid.UUID, day sharedDomain.Day) (GroupStanding, error)
}

// Credit folds points the leaderboard has not counted yet into the user's
// improvement. The group best rises with it when the user overtakes it.
func (g GroupStanding) Credit(points float64) GroupStanding {
	g.WeeklyImprovement += points
	if g.GroupMaxImprovement == nil || *g.GroupMaxImprovement < g.WeeklyImprovement {
		best := g.WeeklyImprovement
		g.GroupMaxImprovement = &best
	}
	return g
}
