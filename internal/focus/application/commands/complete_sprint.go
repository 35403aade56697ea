package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
	productivityServices "github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	progression "github.com/starfocus/starfocus/internal/progression/domain"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
)

// CompleteSprintCommand submits a sprint whose telemetry was collected on
// the device.
type CompleteSprintCommand struct {
	UserID          uuid.UUID
	TaskID          *uuid.UUID
	StartedAt       time.Time
	EndedAt         time.Time
	DeepWorkMinutes int
	AppSwitches     int
	ImpulseOpens    int
}

// BadgeDTO is a newly earned badge.
type BadgeDTO struct {
	ID          progression.BadgeID `json:"id"`
	Name        string              `json:"name"`
	Emoji       string              `json:"emoji"`
	Description string              `json:"description"`
}

// CompleteSprintResult is everything a finished sprint changed.
type CompleteSprintResult struct {
	SessionID    uuid.UUID              `json:"session_id"`
	Score        domain.FocusScore      `json:"score"`
	DeepMinutes  int                    `json:"deep_work_minutes"`
	TodayMinutes int                    `json:"today_minutes"`
	Streak       progression.State      `json:"streak"`
	Milestone    *progression.Milestone `json:"milestone,omitempty"`
	NewBadges    []BadgeDTO             `json:"new_badges"`
}

// CompleteSprintConfig holds the day boundary and streak threshold.
type CompleteSprintConfig struct {
	ThresholdMinutes int
	Location         *time.Location
}

// CompleteSprintHandler scores a sprint and carries the result through the
// streak and badge state in one unit of work.
type CompleteSprintHandler struct {
	sessions   domain.Repository
	tasks      task.Repository
	streaks    progression.StreakRepository
	badges     progression.BadgeRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	calc       *domain.ScoreCalculator
	evaluator  *progression.BadgeEvaluator
	standings  progression.StandingSource
	config     CompleteSprintConfig
	logger     *slog.Logger
	clock      func() time.Time
}

// NewCompleteSprintHandler creates a new CompleteSprintHandler. standings
// may be nil when no leaderboard is configured.
func NewCompleteSprintHandler(
	sessions domain.Repository,
	tasks task.Repository,
	streaks progression.StreakRepository,
	badges progression.BadgeRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	calc *domain.ScoreCalculator,
	evaluator *progression.BadgeEvaluator,
	standings progression.StandingSource,
	config CompleteSprintConfig,
	logger *slog.Logger,
) *CompleteSprintHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.ThresholdMinutes <= 0 {
		config.ThresholdMinutes = progression.DefaultThresholdMinutes
	}
	return &CompleteSprintHandler{
		sessions:   sessions,
		tasks:      tasks,
		streaks:    streaks,
		badges:     badges,
		outboxRepo: outboxRepo,
		uow:        uow,
		calc:       calc,
		evaluator:  evaluator,
		standings:  standings,
		config:     config,
		logger:     logger,
		clock:      time.Now,
	}
}

// Handle scores a recorded sprint.
func (h *CompleteSprintHandler) Handle(ctx context.Context, cmd CompleteSprintCommand) (*CompleteSprintResult, error) {
	linked, err := h.LinkTask(ctx, cmd.UserID, cmd.TaskID, cmd.StartedAt)
	if err != nil {
		return nil, err
	}
	session, err := domain.RecordedSession(cmd.UserID, linked, cmd.StartedAt, cmd.EndedAt, domain.ScoreInput{
		DeepWorkMinutes: cmd.DeepWorkMinutes,
		AppSwitches:     cmd.AppSwitches,
		ImpulseOpens:    cmd.ImpulseOpens,
		LinkedTask:      linked,
	}, h.calc)
	if err != nil {
		return nil, err
	}
	return h.complete(ctx, session)
}

// HandleSprint finalizes a live sprint and records it.
func (h *CompleteSprintHandler) HandleSprint(ctx context.Context, sprint *domain.SprintContext) (*CompleteSprintResult, error) {
	var session *domain.Session
	err := sprint.Do(func(s *domain.Session, now time.Time) error {
		if _, err := s.Finalize(h.calc, now); err != nil {
			return err
		}
		session = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h.complete(ctx, session)
}

// LinkTask snapshots the zone and work type of the task a sprint is for, as
// of the sprint start.
func (h *CompleteSprintHandler) LinkTask(ctx context.Context, userID uuid.UUID, taskID *uuid.UUID, at time.Time) (*domain.LinkedTask, error) {
	if taskID == nil {
		return nil, nil
	}
	t, err := h.tasks.FindByID(ctx, *taskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != userID {
		return nil, task.ErrTaskNotFound
	}
	hours := task.HoursRemaining(t.DueDate(), at)
	return &domain.LinkedTask{
		TaskID:   t.ID(),
		Zone:     productivityServices.ZoneFor(t, hours),
		WorkType: t.WorkType(),
	}, nil
}

func (h *CompleteSprintHandler) complete(ctx context.Context, session *domain.Session) (*CompleteSprintResult, error) {
	userID := session.UserID()
	loc := h.config.Location
	now := h.clock()
	sessionDay := sharedDomain.DayIn(session.StartedAt(), loc)
	today := sharedDomain.DayIn(now, loc)
	if today.Before(sessionDay) {
		today = sessionDay
	}

	standing := h.standing(ctx, userID, today)
	score, _ := session.Score()
	// the board is credited from the outbox after commit
	if standing != nil && session.EndedAt() != nil &&
		sharedDomain.DayIn(*session.EndedAt(), loc).WeekStart().Equal(today.WeekStart()) {
		credited := standing.Credit(score.AdjustedScore)
		standing = &credited
	}
	result := &CompleteSprintResult{
		SessionID:   session.ID(),
		Score:       score,
		DeepMinutes: session.DeepWorkMinutes(now),
		NewBadges:   []BadgeDTO{},
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		events := append([]sharedDomain.DomainEvent{}, session.DomainEvents()...)

		if err := h.sessions.Save(txCtx, session); err != nil {
			return err
		}

		daySessions, err := h.sessions.FindByUserBetween(txCtx, userID, sessionDay.Start(loc), sessionDay.AddDays(1).Start(loc))
		if err != nil {
			return err
		}
		result.TodayMinutes = domain.DailyScore(daySessions).TotalFocusMinutes

		state, err := h.streaks.Find(txCtx, userID)
		if err != nil {
			return err
		}
		next, err := progression.Advance(state, result.TodayMinutes, h.config.ThresholdMinutes, sessionDay)
		switch {
		case errors.Is(err, progression.ErrInvalidInput) && sessionDay.Before(state.LastFocusDate):
			// late submission for a day the streak has moved past
			h.logger.Warn("sprint predates streak, streak unchanged",
				"user_id", userID, "session_day", sessionDay, "last_focus_date", state.LastFocusDate)
			next = state
		case err != nil:
			return err
		}
		if !next.Equal(state) {
			if err := h.streaks.Save(txCtx, userID, next, now); err != nil {
				return err
			}
			events = append(events, progression.NewStreakAdvanced(userID, state, next, now))
			if next.CurrentStreak != state.CurrentStreak {
				if m, ok := progression.CheckMilestone(next.CurrentStreak); ok {
					result.Milestone = &m
					events = append(events, progression.NewMilestoneReached(userID, m, now))
				}
			}
		}
		result.Streak = next

		all, err := h.sessions.FindByUser(txCtx, userID)
		if err != nil {
			return err
		}
		profile := domain.ComputeProfileStats(all, today, loc)

		earned, err := h.badges.FindEarned(txCtx, userID)
		if err != nil {
			return err
		}
		for _, b := range h.evaluator.Evaluate(BadgeStats(profile, next, standing), progression.EarnedSetOf(earned)) {
			if err := h.badges.Award(txCtx, userID, b.ID, now); err != nil {
				return err
			}
			events = append(events, progression.NewBadgeEarned(userID, b, now))
			result.NewBadges = append(result.NewBadges, BadgeDTO{
				ID:          b.ID,
				Name:        b.Name,
				Emoji:       b.Emoji,
				Description: b.Description,
			})
		}

		if err := sharedApplication.RecordEvents(txCtx, h.outboxRepo, userID, events); err != nil {
			return fmt.Errorf("record sprint events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	session.ClearDomainEvents()

	h.logger.Info("sprint completed",
		"user_id", userID,
		"session_id", session.ID(),
		"adjusted_score", score.AdjustedScore,
		"streak", result.Streak.CurrentStreak,
		"new_badges", len(result.NewBadges),
	)
	return result, nil
}

func (h *CompleteSprintHandler) standing(ctx context.Context, userID uuid.UUID, day sharedDomain.Day) *progression.GroupStanding {
	if h.standings == nil {
		return nil
	}
	s, err := h.standings.Standing(ctx, userID, day)
	if err != nil {
		h.logger.Warn("group standing unavailable", "user_id", userID, "error", err)
		return nil
	}
	return &s
}

// BadgeStats assembles the badge rule input from profile totals, the
// streak, and the optional group standing.
func BadgeStats(profile domain.ProfileStats, streak progression.State, standing *progression.GroupStanding) progression.Stats {
	stats := progression.Stats{
		CurrentStreak:           streak.CurrentStreak,
		LongestStreak:           streak.LongestStreak,
		FreezeTokensUsed:        streak.FreezeTokensUsed,
		TotalSprints:            profile.TotalSprints,
		LongestSessionMinutes:   profile.LongestSessionMinutes,
		EarlySprintsThisWeek:    profile.EarlySprintsThisWeek,
		ConsecutiveWeeksAbove90: profile.ConsecutiveWeeksAbove90,
		WeeklyImprovement:       profile.WeeklyScore - profile.PreviousWeeklyScore,
	}
	if standing != nil {
		stats.WeeklyImprovement = standing.WeeklyImprovement
		stats.GroupMaxImprovement = standing.GroupMaxImprovement
		stats.ConsecutiveWeeksTop3 = standing.ConsecutiveWeeksTop3
	}
	return stats
}
