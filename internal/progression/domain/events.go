package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// Progression events use the user id as aggregate id.
const (
	AggregateType = "Progression"

	RoutingKeyStreakAdvanced   = "progression.streak.advanced"
	RoutingKeyFreezeTokenUsed  = "progression.streak.freeze_used"
	RoutingKeyMilestoneReached = "progression.streak.milestone"
	RoutingKeyBadgeEarned      = "progression.badge.earned"
)

// StreakAdvanced is emitted when a day's focus changes the streak.
type StreakAdvanced struct {
	sharedDomain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	Previous State     `json:"previous"`
	Current  State     `json:"current"`
}

func NewStreakAdvanced(userID uuid.UUID, previous, current State, at time.Time) *StreakAdvanced {
	return &StreakAdvanced{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyStreakAdvanced, at),
		UserID:    userID,
		Previous:  previous,
		Current:   current,
	}
}

// FreezeTokenUsed is emitted when a user spends a freeze token.
type FreezeTokenUsed struct {
	sharedDomain.BaseEvent
	UserID          uuid.UUID        `json:"user_id"`
	Day             sharedDomain.Day `json:"day"`
	TokensRemaining int              `json:"tokens_remaining"`
}

func NewFreezeTokenUsed(userID uuid.UUID, day sharedDomain.Day, remaining int, at time.Time) *FreezeTokenUsed {
	return &FreezeTokenUsed{
		BaseEvent:       sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyFreezeTokenUsed, at),
		UserID:          userID,
		Day:             day,
		TokensRemaining: remaining,
	}
}

// MilestoneReached is emitted when a streak hits a milestone length.
type MilestoneReached struct {
	sharedDomain.BaseEvent
	UserID    uuid.UUID `json:"user_id"`
	Milestone Milestone `json:"milestone"`
}

func NewMilestoneReached(userID uuid.UUID, m Milestone, at time.Time) *MilestoneReached {
	return &MilestoneReached{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyMilestoneReached, at),
		UserID:    userID,
		Milestone: m,
	}
}

// BadgeEarned is emitted once per badge per user.
type BadgeEarned struct {
	sharedDomain.BaseEvent
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  BadgeID   `json:"badge_id"`
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earned_at"`
}

func NewBadgeEarned(userID uuid.UUID, b Badge, at time.Time) *BadgeEarned {
	return &BadgeEarned{
		BaseEvent: sharedDomain.NewBaseEvent(userID, AggregateType, RoutingKeyBadgeEarned, at),
		UserID:    userID,
		BadgeID:   b.ID,
		Name:      b.Name,
		EarnedAt:  at.UTC(),
	}
}
