package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// TopPlaces is how many ranks count as the podium.
const TopPlaces = 3

// ErrInvalidLimit is returned for non-positive listing limits.
var ErrInvalidLimit = errors.New("leaderboard: limit must be positive")

// Week identifies an ISO week.
type Week struct {
	Year   int
	Number int
}

// WeekOf returns the ISO week containing day.
func WeekOf(day sharedDomain.Day) Week {
	y, w := day.ISOWeek()
	return Week{Year: y, Number: w}
}

func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// Entry is one row of a weekly leaderboard. Points is the sum of adjusted
// focus scores earned in the week.
type Entry struct {
	Rank    int       `json:"rank"`
	UserID  uuid.UUID `json:"user_id"`
	Points  float64   `json:"points"`
	Minutes int       `json:"minutes"`
}

// Board stores weekly totals per user.
type Board interface {
	// Add credits a scored session once; a repeated eventID reports false.
	Add(ctx context.Context, eventID uuid.UUID, userID uuid.UUID, week Week, points float64, minutes int) (bool, error)
	// Top lists the best users of the week, highest points first.
	Top(ctx context.Context, week Week, limit int) ([]Entry, error)
	// Points returns every user's points for the week.
	Points(ctx context.Context, week Week) (map[uuid.UUID]float64, error)
	// Rank returns the zero-based position of the user, or false when the
	// user has no points that week.
	Rank(ctx context.Context, week Week, userID uuid.UUID) (int, bool, error)
}

// Improvements returns each active user's change in points against the
// previous week. Users with no points this week are left out.
func Improvements(current, previous map[uuid.UUID]float64) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(current))
	for id, pts := range current {
		out[id] = pts - previous[id]
	}
	return out
}

// MaxImprovement returns the largest improvement, or nil for an empty group.
func MaxImprovement(improvements map[uuid.UUID]float64) *float64 {
	var best *float64
	for _, v := range improvements {
		if best == nil || v > *best {
			best = &v
		}
	}
	return best
}
