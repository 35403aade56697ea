package domain

import (
	"errors"
	"fmt"
	"slices"

	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

var (
	ErrInvalidInput   = errors.New("invalid streak input")
	ErrNoFreezeTokens = errors.New("no freeze tokens available")
)

const (
	// DefaultThresholdMinutes is the focus time a day needs to count.
	DefaultThresholdMinutes = 30
	// FreezeTokenInterval awards a token every this many streak days.
	FreezeTokenInterval = 7
)

// State is a user's streak record.
type State struct {
	CurrentStreak    int              `json:"current_streak"`
	LongestStreak    int              `json:"longest_streak"`
	FreezeTokens     int              `json:"freeze_tokens"`
	FreezeTokensUsed int              `json:"freeze_tokens_used"`
	LastFocusDate    sharedDomain.Day `json:"last_focus_date"`
}

func (s State) validate() error {
	if s.CurrentStreak < 0 || s.LongestStreak < 0 || s.FreezeTokens < 0 || s.FreezeTokensUsed < 0 {
		return fmt.Errorf("%w: negative streak counters", ErrInvalidInput)
	}
	return nil
}

// Equal compares two states field by field.
func (s State) Equal(o State) bool {
	return s.CurrentStreak == o.CurrentStreak &&
		s.LongestStreak == o.LongestStreak &&
		s.FreezeTokens == o.FreezeTokens &&
		s.FreezeTokensUsed == o.FreezeTokensUsed &&
		s.LastFocusDate.Equal(o.LastFocusDate)
}

// Advance applies one day's focus minutes to the streak. Calling it again
// for the same day is a no-op for the streak length. Freeze tokens are never
// spent here.
func Advance(state State, todayMinutes, threshold int, today sharedDomain.Day) (State, error) {
	if err := state.validate(); err != nil {
		return state, err
	}
	if todayMinutes < 0 {
		return state, fmt.Errorf("%w: negative minutes %d", ErrInvalidInput, todayMinutes)
	}
	if today.IsZero() {
		return state, fmt.Errorf("%w: missing day", ErrInvalidInput)
	}
	if !state.LastFocusDate.IsZero() && today.Before(state.LastFocusDate) {
		return state, fmt.Errorf("%w: %s is before last focus day %s", ErrInvalidInput, today, state.LastFocusDate)
	}
	if threshold <= 0 {
		threshold = DefaultThresholdMinutes
	}

	next := state
	yesterday := today.AddDays(-1)
	last := state.LastFocusDate

	switch {
	case todayMinutes >= threshold:
		switch {
		case last.Equal(today):
			// already counted
		case !last.IsZero() && last.Equal(yesterday):
			next.CurrentStreak++
		default:
			next.CurrentStreak = 1
		}
		next.LastFocusDate = today
	case last.IsZero() || (!last.Equal(today) && !last.Equal(yesterday)):
		next.CurrentStreak = 0
	}

	next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)

	if next.CurrentStreak != state.CurrentStreak &&
		next.CurrentStreak > 0 && next.CurrentStreak%FreezeTokenInterval == 0 {
		next.FreezeTokens++
	}
	return next, nil
}

// UseFreezeToken spends a token to carry the streak over one missed day. The
// streak length does not grow; today becomes the last focus day so tomorrow
// can continue it. The last focus day must be yesterday or the day before:
// a token never bridges more than one missed day and is not spent on a day
// that already counts.
func UseFreezeToken(state State, today sharedDomain.Day) (State, error) {
	if err := state.validate(); err != nil {
		return state, err
	}
	if state.FreezeTokens <= 0 {
		return state, ErrNoFreezeTokens
	}
	last := state.LastFocusDate
	switch {
	case today.IsZero():
		return state, fmt.Errorf("%w: missing day", ErrInvalidInput)
	case state.CurrentStreak == 0 || last.IsZero():
		return state, fmt.Errorf("%w: no streak to freeze", ErrInvalidInput)
	case !today.After(last):
		return state, fmt.Errorf("%w: %s already counts toward the streak", ErrInvalidInput, today)
	case last.Before(today.AddDays(-2)):
		return state, fmt.Errorf("%w: streak lapsed on %s", ErrInvalidInput, last.AddDays(1))
	}

	next := state
	next.FreezeTokens--
	next.FreezeTokensUsed++
	next.LastFocusDate = today
	return next, nil
}

// Milestone celebrates a notable streak length.
type Milestone struct {
	Days               int    `json:"days"`
	Message            string `json:"message"`
	FreezeTokenAwarded bool   `json:"freeze_token_awarded"`
}

var milestoneDays = []int{7, 14, 30, 60, 100}

// CheckMilestone returns the milestone reached at exactly this streak length.
func CheckMilestone(streakDays int) (Milestone, bool) {
	if !slices.Contains(milestoneDays, streakDays) {
		return Milestone{}, false
	}
	return Milestone{
		Days:               streakDays,
		Message:            fmt.Sprintf("%d-day streak! You're on fire!", streakDays),
		FreezeTokenAwarded: streakDays%FreezeTokenInterval == 0,
	}, true
}

// NextMilestone returns the next milestone above streakDays, or 0 past the
// last one.
func NextMilestone(streakDays int) int {
	for _, d := range milestoneDays {
		if d > streakDays {
			return d
		}
	}
	return 0
}
