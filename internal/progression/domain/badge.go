package domain

import (
	"fmt"
	"log/slog"
)

// BadgeID identifies an achievement.
type BadgeID string

const (
	BadgeStreakMaster  BadgeID = "streak_master"
	BadgeComebackKing  BadgeID = "comeback_king"
	BadgeDeepDiver     BadgeID = "deep_diver"
	BadgeEarlyBird     BadgeID = "early_bird"
	BadgeTeamPlayer    BadgeID = "team_player"
	BadgeSprintRoyalty BadgeID = "sprint_royalty"
	BadgeDiamondFocus  BadgeID = "diamond_focus"
	BadgeFreezeSaver   BadgeID = "freeze_saver"
)

// Stats is everything badge rules can look at.
type Stats struct {
	CurrentStreak           int
	LongestStreak           int
	FreezeTokensUsed        int
	TotalSprints            int
	LongestSessionMinutes   int
	EarlySprintsThisWeek    int
	ConsecutiveWeeksAbove90 int
	// WeeklyImprovement is this week's focus score minus last week's.
	WeeklyImprovement float64
	// GroupMaxImprovement is the best improvement among everyone ranked this
	// week. Nil when no group data is available.
	GroupMaxImprovement  *float64
	ConsecutiveWeeksTop3 int
}

// Predicate decides whether stats earn a badge.
type Predicate func(Stats) (bool, error)

// Badge is an immutable achievement definition.
type Badge struct {
	ID          BadgeID
	Name        string
	Emoji       string
	Description string
	earned      Predicate
}

// Catalog returns every badge in display order.
func Catalog() []Badge {
	return []Badge{
		{BadgeStreakMaster, "Streak Master", "🔥", "7-day consecutive Focus Sprint streak",
			func(s Stats) (bool, error) { return s.CurrentStreak >= 7, nil }},
		{BadgeComebackKing, "Comeback King", "👑", "Highest week-over-week improvement in study group",
			func(s Stats) (bool, error) {
				if s.GroupMaxImprovement == nil {
					return false, fmt.Errorf("no group improvement data")
				}
				return s.WeeklyImprovement > 0 && s.WeeklyImprovement >= *s.GroupMaxImprovement, nil
			}},
		{BadgeDeepDiver, "Deep Diver", "🏅", "4+ hours uninterrupted deep work",
			func(s Stats) (bool, error) { return s.LongestSessionMinutes >= 240, nil }},
		{BadgeEarlyBird, "Early Bird", "🌅", "5 sprints before 8 AM in one week",
			func(s Stats) (bool, error) { return s.EarlySprintsThisWeek >= 5, nil }},
		{BadgeTeamPlayer, "Team Player", "🤝", "Top 3 study group contributor for 2+ consecutive weeks",
			func(s Stats) (bool, error) { return s.ConsecutiveWeeksTop3 >= 2, nil }},
		{BadgeSprintRoyalty, "Sprint Royalty", "⚡", "100 total Focus Sprints completed",
			func(s Stats) (bool, error) { return s.TotalSprints >= 100, nil }},
		{BadgeDiamondFocus, "Diamond Focus", "💎", "Weekly score ≥ 90 for 4 consecutive weeks",
			func(s Stats) (bool, error) { return s.ConsecutiveWeeksAbove90 >= 4, nil }},
		{BadgeFreezeSaver, "Freeze Saver", "❄️", "Used a freeze token and maintained a 14+ day streak",
			func(s Stats) (bool, error) { return s.FreezeTokensUsed > 0 && s.CurrentStreak >= 14, nil }},
	}
}

// FindBadge looks a badge up by id.
func FindBadge(id BadgeID) (Badge, bool) {
	for _, b := range Catalog() {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// EarnedSet holds the badges a user already has.
type EarnedSet map[BadgeID]struct{}

// NewEarnedSet builds a set from ids.
func NewEarnedSet(ids ...BadgeID) EarnedSet {
	set := make(EarnedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is earned.
func (s EarnedSet) Has(id BadgeID) bool {
	_, ok := s[id]
	return ok
}

// BadgeEvaluator runs the badge rule table.
type BadgeEvaluator struct {
	badges []Badge
	logger *slog.Logger
}

// NewBadgeEvaluator creates an evaluator over the given badges, or the full
// catalog when none are passed.
func NewBadgeEvaluator(logger *slog.Logger, badges ...Badge) *BadgeEvaluator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(badges) == 0 {
		badges = Catalog()
	}
	return &BadgeEvaluator{badges: badges, logger: logger}
}

// NewBadge defines a badge with a custom rule.
func NewBadge(id BadgeID, name, description string, rule Predicate) Badge {
	return Badge{ID: id, Name: name, Description: description, earned: rule}
}

// Evaluate returns badges newly earned by stats. Earned badges are skipped,
// so a regressed stat never revokes one. A failing rule counts as not earned
// and does not stop the others.
func (e *BadgeEvaluator) Evaluate(stats Stats, earned EarnedSet) []Badge {
	var out []Badge
	for _, b := range e.badges {
		if earned.Has(b.ID) {
			continue
		}
		ok, err := e.check(b, stats)
		if err != nil {
			e.logger.Debug("badge rule skipped", "badge", b.ID, "error", err)
			continue
		}
		if ok {
			out = append(out, b)
		}
	}
	return out
}

func (e *BadgeEvaluator) check(b Badge, stats Stats) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("badge %s rule panicked: %v", b.ID, r)
		}
	}()
	if b.earned == nil {
		return false, fmt.Errorf("badge %s has no rule", b.ID)
	}
	return b.earned(stats)
}

// BadgeStatus pairs a badge with whether the user has it.
type BadgeStatus struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Emoji       string  `json:"emoji"`
	Description string  `json:"description"`
	Earned      bool    `json:"earned"`
}

// AllBadgesWithStatus lists the catalog with earned flags for display.
func AllBadgesWithStatus(earned EarnedSet) []BadgeStatus {
	catalog := Catalog()
	out := make([]BadgeStatus, 0, len(catalog))
	for _, b := range catalog {
		out = append(out, BadgeStatus{
			ID:          b.ID,
			Name:        b.Name,
			Emoji:       b.Emoji,
			Description: b.Description,
			Earned:      earned.Has(b.ID),
		})
	}
	return out
}
