package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/leaderboard/domain"
	progression "github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"golang.org/x/sync/singleflight"
)

// MaxPodiumWeeks bounds how far back a podium run is followed.
const MaxPodiumWeeks = 26

// Service reads and feeds the weekly leaderboard.
type Service struct {
	board    domain.Board
	location *time.Location
	logger   *slog.Logger
	group    singleflight.Group
}

var _ progression.StandingSource = (*Service)(nil)

// NewService creates a leaderboard service. Session end times are bucketed
// into weeks in loc.
func NewService(board domain.Board, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{board: board, location: loc, logger: logger}
}

// RecordSession credits a scored sprint to the week it ended in.
func (s *Service) RecordSession(ctx context.Context, eventID, userID uuid.UUID, endedAt time.Time, points float64, minutes int) error {
	week := domain.WeekOf(sharedDomain.DayIn(endedAt, s.location))
	added, err := s.board.Add(ctx, eventID, userID, week, points, minutes)
	if err != nil {
		return fmt.Errorf("record session on leaderboard: %w", err)
	}
	if !added {
		s.logger.Debug("session already on leaderboard", "event_id", eventID, "week", week.String())
		return nil
	}
	s.logger.Debug("session added to leaderboard",
		"user_id", userID,
		"week", week.String(),
		"points", points,
		"minutes", minutes,
	)
	return nil
}

// Top lists the leaders of the week containing day. Concurrent identical
// reads share one board query.
func (s *Service) Top(ctx context.Context, day sharedDomain.Day, limit int) ([]domain.Entry, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	week := domain.WeekOf(day)
	key := fmt.Sprintf("top:%s:%d", week, limit)
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.board.Top(ctx, week, limit)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("leaderboard read shared", "week", week.String())
	}
	entries := v.([]domain.Entry)
	out := make([]domain.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Standing reports the user's improvement against the previous week, the
// best improvement in the group, and the run of weeks on the podium ending
// with the week containing day.
func (s *Service) Standing(ctx context.Context, userID uuid.UUID, day sharedDomain.Day) (progression.GroupStanding, error) {
	week := domain.WeekOf(day)
	current, err := s.board.Points(ctx, week)
	if err != nil {
		return progression.GroupStanding{}, err
	}
	previous, err := s.board.Points(ctx, domain.WeekOf(day.AddDays(-7)))
	if err != nil {
		return progression.GroupStanding{}, err
	}

	improvements := domain.Improvements(current, previous)
	standing := progression.GroupStanding{
		WeeklyImprovement:   current[userID] - previous[userID],
		GroupMaxImprovement: domain.MaxImprovement(improvements),
	}

	for i := 0; i < MaxPodiumWeeks; i++ {
		rank, ok, err := s.board.Rank(ctx, domain.WeekOf(day.AddDays(-7*i)), userID)
		if err != nil {
			return progression.GroupStanding{}, err
		}
		if !ok || rank >= domain.TopPlaces {
			break
		}
		standing.ConsecutiveWeeksTop3++
	}
	return standing, nil
}
