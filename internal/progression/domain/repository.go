package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StreakRepository stores one streak state per user. Find returns the zero
// state for unknown users.
type StreakRepository interface {
	Find(ctx context.Context, userID uuid.UUID) (State, error)
	Save(ctx context.Context, userID uuid.UUID, state State, at time.Time) error
}

// EarnedBadge is a stored award.
type EarnedBadge struct {
	BadgeID  BadgeID
	EarnedAt time.Time
}

// BadgeRepository is append-only.
type BadgeRepository interface {
	FindEarned(ctx context.Context, userID uuid.UUID) ([]EarnedBadge, error)
	// Award inserts the badge unless the user already has it.
	Award(ctx context.Context, userID uuid.UUID, id BadgeID, at time.Time) error
}

// EarnedSetOf collects stored awards into a set.
func EarnedSetOf(earned []EarnedBadge) EarnedSet {
	set := make(EarnedSet, len(earned))
	for _, e := range earned {
		set[e.BadgeID] = struct{}{}
	}
	return set
}
