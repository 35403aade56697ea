package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	focusQueries "github.com/starfocus/starfocus/internal/focus/application/queries"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
	leaderboardDomain "github.com/starfocus/starfocus/internal/leaderboard/domain"
	progressionCommands "github.com/starfocus/starfocus/internal/progression/application/commands"
	progressionQueries "github.com/starfocus/starfocus/internal/progression/application/queries"
	progression "github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
)

type historyInput struct {
	Days int `json:"days,omitempty"`
}

type leaderboardInput struct {
	Limit int `json:"limit,omitempty"`
}

type leaderboardResult struct {
	Week     string                    `json:"week"`
	Entries  []leaderboardDomain.Entry `json:"entries"`
	Standing progression.GroupStanding `json:"standing"`
}

func registerProgressTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("stats.get").
		Description("Get today's focus score and lifetime profile stats").
		Handler(ts.getStats)

	srv.Tool("stats.history").
		Description("Get focus minutes and average score per day, oldest first").
		Handler(ts.getHistory)

	srv.Tool("progress.get").
		Description("Get the streak, next milestone and badge catalog with earned flags").
		Handler(ts.getProgress)

	srv.Tool("streak.freeze").
		Description("Spend a freeze token to keep the streak alive today").
		Handler(ts.useFreezeToken)

	srv.Tool("leaderboard.top").
		Description("Get this week's leaderboard and your standing").
		Handler(ts.leaderboard)
}

func (ts *toolset) getStats(ctx context.Context, _ struct{}) (*focusQueries.StatsDTO, error) {
	if ts.app.GetStatsHandler == nil {
		return nil, fmt.Errorf("stats %w", errNoDatabase)
	}
	return ts.app.GetStatsHandler.Handle(ctx, focusQueries.GetStatsQuery{UserID: ts.app.CurrentUserID})
}

func (ts *toolset) getHistory(ctx context.Context, input historyInput) ([]focusDomain.DailySummary, error) {
	if ts.app.GetHistoryHandler == nil {
		return nil, fmt.Errorf("history %w", errNoDatabase)
	}
	days := input.Days
	if days <= 0 {
		days = 7
	}
	return ts.app.GetHistoryHandler.Handle(ctx, focusQueries.GetHistoryQuery{UserID: ts.app.CurrentUserID, Days: days})
}

func (ts *toolset) getProgress(ctx context.Context, _ struct{}) (*progressionQueries.ProgressDTO, error) {
	if ts.app.GetProgressHandler == nil {
		return nil, fmt.Errorf("progress %w", errNoDatabase)
	}
	return ts.app.GetProgressHandler.Handle(ctx, progressionQueries.GetProgressQuery{UserID: ts.app.CurrentUserID})
}

func (ts *toolset) useFreezeToken(ctx context.Context, _ struct{}) (*progression.State, error) {
	if ts.app.UseFreezeTokenHandler == nil {
		return nil, fmt.Errorf("freeze tokens %w", errNoDatabase)
	}
	state, err := ts.app.UseFreezeTokenHandler.Handle(ctx, progressionCommands.UseFreezeTokenCommand{UserID: ts.app.CurrentUserID})
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return &state, nil
}

func (ts *toolset) leaderboard(ctx context.Context, input leaderboardInput) (*leaderboardResult, error) {
	if ts.app.Leaderboard == nil {
		return nil, errors.New("leaderboard requires Redis")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	now := ts.app.Now()
	today := sharedDomain.DayIn(now, now.Location())

	entries, err := ts.app.Leaderboard.Top(ctx, today, limit)
	if err != nil {
		return nil, err
	}
	standing, err := ts.app.Leaderboard.Standing(ctx, ts.app.CurrentUserID, today)
	if err != nil {
		return nil, err
	}
	return &leaderboardResult{
		Week:     leaderboardDomain.WeekOf(today).String(),
		Entries:  entries,
		Standing: standing,
	}, nil
}
