package domain

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(badges []Badge) []BadgeID {
	out := make([]BadgeID, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.ID)
	}
	return out
}

func TestBadgeEvaluator_Evaluate(t *testing.T) {
	eval := NewBadgeEvaluator(slog.Default())
	groupMax := 12.0

	got := eval.Evaluate(Stats{
		CurrentStreak:         14,
		FreezeTokensUsed:      1,
		TotalSprints:          100,
		LongestSessionMinutes: 240,
		WeeklyImprovement:     12,
		GroupMaxImprovement:   &groupMax,
	}, nil)

	assert.Equal(t, []BadgeID{
		BadgeStreakMaster,
		BadgeComebackKing,
		BadgeDeepDiver,
		BadgeSprintRoyalty,
		BadgeFreezeSaver,
	}, ids(got))
}

func TestBadgeEvaluator_AppendOnly(t *testing.T) {
	eval := NewBadgeEvaluator(nil)

	earned := NewEarnedSet(ids(eval.Evaluate(Stats{CurrentStreak: 7}, nil))...)
	assert.True(t, earned.Has(BadgeStreakMaster))

	// A reset streak neither revokes nor re-awards.
	again := eval.Evaluate(Stats{CurrentStreak: 0}, earned)
	assert.Empty(t, again)
	again = eval.Evaluate(Stats{CurrentStreak: 8}, earned)
	assert.Empty(t, again)
}

func TestBadgeEvaluator_FailingRulesAreSkipped(t *testing.T) {
	eval := NewBadgeEvaluator(nil,
		NewBadge("boom", "Boom", "panics", func(Stats) (bool, error) {
			var m map[string]int
			m["x"] = 1
			return true, nil
		}),
		NewBadge("norule", "No rule", "missing", nil),
		Catalog()[0],
	)

	got := eval.Evaluate(Stats{CurrentStreak: 9}, nil)
	assert.Equal(t, []BadgeID{BadgeStreakMaster}, ids(got))
}

func TestComebackKingNeedsGroupData(t *testing.T) {
	eval := NewBadgeEvaluator(nil)
	got := eval.Evaluate(Stats{WeeklyImprovement: 30}, nil)
	assert.NotContains(t, ids(got), BadgeComebackKing)
}

func TestAllBadgesWithStatus(t *testing.T) {
	statuses := AllBadgesWithStatus(NewEarnedSet(BadgeDeepDiver))
	assert.Len(t, statuses, 8)

	for _, s := range statuses {
		assert.Equal(t, s.ID == BadgeDeepDiver, s.Earned, s.ID)
		assert.NotEmpty(t, s.Emoji)
	}

	_, ok := FindBadge(BadgeEarlyBird)
	assert.True(t, ok)
}
