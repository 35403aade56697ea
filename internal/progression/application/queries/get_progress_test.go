package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

type stubStreaks struct{ state domain.State }

func (s stubStreaks) Find(context.Context, uuid.UUID) (domain.State, error) { return s.state, nil }
func (s stubStreaks) Save(context.Context, uuid.UUID, domain.State, time.Time) error {
	return nil
}

type stubBadges struct{ earned []domain.EarnedBadge }

func (s stubBadges) FindEarned(context.Context, uuid.UUID) ([]domain.EarnedBadge, error) {
	return s.earned, nil
}
func (s stubBadges) Award(context.Context, uuid.UUID, domain.BadgeID, time.Time) error { return nil }

func TestGetProgressHandler_Handle(t *testing.T) {
	now := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	handler := NewGetProgressHandler(
		stubStreaks{state: domain.State{CurrentStreak: 9, LongestStreak: 9, FreezeTokens: 1, LastFocusDate: sharedDomain.MustParseDay("2024-01-08")}},
		stubBadges{earned: []domain.EarnedBadge{{BadgeID: domain.BadgeStreakMaster, EarnedAt: now}}},
		time.UTC,
	)
	handler.clock = func() time.Time { return now }

	dto, err := handler.Handle(context.Background(), GetProgressQuery{UserID: uuid.New()})
	require.NoError(t, err)
	assert.True(t, dto.AtRisk)
	assert.Equal(t, 14, dto.NextMilestone)
	assert.Equal(t, 1, dto.EarnedCount)
	require.Len(t, dto.Badges, 8)
	assert.True(t, dto.Badges[0].Earned)
	assert.False(t, dto.Badges[1].Earned)
}
