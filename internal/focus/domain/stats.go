package domain

import (
	"math"
	"time"

	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

// EarlySprintHour is the local hour before which a sprint counts as early.
const EarlySprintHour = 8

// DailySummary aggregates one day's sprints.
type DailySummary struct {
	Day               sharedDomain.Day `json:"day"`
	AverageFocusScore float64          `json:"average_focus_score"`
	TotalFocusMinutes int              `json:"total_focus_minutes"`
	SessionsCount     int              `json:"sessions_count"`
}

// DailyScore averages adjusted scores and sums minutes over finalized sessions.
func DailyScore(sessions []*Session) DailySummary {
	var (
		summary DailySummary
		total   float64
	)
	for _, s := range sessions {
		score, ok := s.Score()
		if !ok {
			continue
		}
		total += score.AdjustedScore
		summary.TotalFocusMinutes += s.deepMinutes
		summary.SessionsCount++
	}
	if summary.SessionsCount > 0 {
		summary.AverageFocusScore = round2(total / float64(summary.SessionsCount))
	}
	return summary
}

// History buckets sessions by local start day for the `days` days ending
// with today, oldest first. Days without sprints are present with zeros.
func History(sessions []*Session, today sharedDomain.Day, days int, loc *time.Location) []DailySummary {
	if days <= 0 {
		return nil
	}
	byDay := make(map[sharedDomain.Day][]*Session)
	for _, s := range sessions {
		day := sharedDomain.DayIn(s.StartedAt(), loc)
		byDay[day] = append(byDay[day], s)
	}

	out := make([]DailySummary, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		summary := DailyScore(byDay[day])
		summary.Day = day
		out = append(out, summary)
	}
	return out
}

// ProfileStats are lifetime and this-week totals derived from sessions.
type ProfileStats struct {
	TotalSprints            int     `json:"total_sprints"`
	TotalFocusMinutes       int     `json:"total_focus_minutes"`
	TotalFocusHours         float64 `json:"total_focus_hours"`
	LongestSessionMinutes   int     `json:"longest_session_minutes"`
	EarlySprintsThisWeek    int     `json:"early_sprints_this_week"`
	WeeklyScore             float64 `json:"weekly_score"`
	PreviousWeeklyScore     float64 `json:"previous_weekly_score"`
	ConsecutiveWeeksAbove90 int     `json:"consecutive_weeks_above_90"`
}

// WeeklyScoreTarget is the weekly average a diamond week needs.
const WeeklyScoreTarget = 90.0

// ComputeProfileStats folds every finalized session of a user into profile
// totals. Week boundaries are ISO weeks in loc.
func ComputeProfileStats(sessions []*Session, today sharedDomain.Day, loc *time.Location) ProfileStats {
	var stats ProfileStats
	weekStart := today.WeekStart()
	weekly := make(map[sharedDomain.Day][]*Session)

	for _, s := range sessions {
		if !s.IsFinalized() {
			continue
		}
		stats.TotalSprints++
		stats.TotalFocusMinutes += s.deepMinutes
		if s.deepMinutes > stats.LongestSessionMinutes {
			stats.LongestSessionMinutes = s.deepMinutes
		}

		local := s.StartedAt().In(locOrLocal(loc))
		day := sharedDomain.NewDay(local)
		if !day.Before(weekStart) && local.Hour() < EarlySprintHour {
			stats.EarlySprintsThisWeek++
		}
		weekly[day.WeekStart()] = append(weekly[day.WeekStart()], s)
	}

	stats.TotalFocusHours = math.Round(float64(stats.TotalFocusMinutes)/60*10) / 10
	stats.WeeklyScore = DailyScore(weekly[weekStart]).AverageFocusScore
	stats.PreviousWeeklyScore = DailyScore(weekly[weekStart.AddDays(-7)]).AverageFocusScore

	// the running week only counts once it already qualifies
	week := weekStart
	if stats.WeeklyScore < WeeklyScoreTarget {
		week = week.AddDays(-7)
	}
	for DailyScore(weekly[week]).AverageFocusScore >= WeeklyScoreTarget {
		stats.ConsecutiveWeeksAbove90++
		week = week.AddDays(-7)
	}
	return stats
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
