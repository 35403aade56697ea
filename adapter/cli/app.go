package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	internalApp "github.com/starfocus/starfocus/internal/app"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
	focusQueries "github.com/starfocus/starfocus/internal/focus/application/queries"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
	leaderboardApp "github.com/starfocus/starfocus/internal/leaderboard/application"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
	progressionCommands "github.com/starfocus/starfocus/internal/progression/application/commands"
	progressionQueries "github.com/starfocus/starfocus/internal/progression/application/queries"
)

// App holds the application dependencies for CLI commands.
type App struct {
	// Task handlers
	CreateTaskHandler      *commands.CreateTaskHandler
	UpdateTaskHandler      *commands.UpdateTaskHandler
	CompleteTaskHandler    *commands.CompleteTaskHandler
	DeleteTaskHandler      *commands.DeleteTaskHandler
	ImportClassroomHandler *commands.ImportClassroomHandler
	RankTasksHandler       *queries.RankTasksHandler
	GetTaskHandler         *queries.GetTaskHandler
	GetWorkloadHandler     *queries.GetWorkloadHandler

	// Focus
	Calculator            *focusDomain.ScoreCalculator
	CompleteSprintHandler *focusCommands.CompleteSprintHandler
	ListSessionsHandler   *focusQueries.ListSessionsHandler
	GetStatsHandler       *focusQueries.GetStatsHandler
	GetHistoryHandler     *focusQueries.GetHistoryHandler

	// Progression
	UseFreezeTokenHandler *progressionCommands.UseFreezeTokenHandler
	GetProgressHandler    *progressionQueries.GetProgressHandler

	// Leaderboard is nil when Redis is not configured.
	Leaderboard *leaderboardApp.Service

	CurrentUserID uuid.UUID
	Location      *time.Location

	flush func(ctx context.Context)
}

// NewApp exposes the container's handlers to the commands.
func NewApp(c *internalApp.Container) *App {
	a := &App{
		CreateTaskHandler:      c.CreateTaskHandler,
		UpdateTaskHandler:      c.UpdateTaskHandler,
		CompleteTaskHandler:    c.CompleteTaskHandler,
		DeleteTaskHandler:      c.DeleteTaskHandler,
		ImportClassroomHandler: c.ImportClassroomHandler,
		RankTasksHandler:       c.RankTasksHandler,
		GetTaskHandler:         c.GetTaskHandler,
		GetWorkloadHandler:     c.GetWorkloadHandler,
		Calculator:             c.Calculator,
		CompleteSprintHandler:  c.CompleteSprintHandler,
		ListSessionsHandler:    c.ListSessionsHandler,
		GetStatsHandler:        c.GetStatsHandler,
		GetHistoryHandler:      c.GetHistoryHandler,
		UseFreezeTokenHandler:  c.UseFreezeTokenHandler,
		GetProgressHandler:     c.GetProgressHandler,
		Leaderboard:            c.Leaderboard,
		CurrentUserID:          c.UserID,
		Location:               c.Location,
	}
	a.SetFlush(c.Flush)
	return a
}

// SetCurrentUserID sets the current user ID.
func (a *App) SetCurrentUserID(userID uuid.UUID) {
	a.CurrentUserID = userID
}

// SetFlush sets the hook that delivers pending events after a write.
func (a *App) SetFlush(fn func(ctx context.Context)) {
	a.flush = fn
}

// Flush delivers pending events so read models reflect the last write.
func (a *App) Flush(ctx context.Context) {
	if a.flush != nil {
		a.flush(ctx)
	}
}

// Now is the current time in the user's location.
func (a *App) Now() time.Time {
	if a.Location == nil {
		return time.Now()
	}
	return time.Now().In(a.Location)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
