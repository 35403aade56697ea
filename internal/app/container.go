package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
	focusQueries "github.com/starfocus/starfocus/internal/focus/application/queries"
	focusDomain "github.com/starfocus/starfocus/internal/focus/domain"
	focusPersistence "github.com/starfocus/starfocus/internal/focus/infrastructure/persistence"
	leaderboardApp "github.com/starfocus/starfocus/internal/leaderboard/application"
	leaderboardSubs "github.com/starfocus/starfocus/internal/leaderboard/application/subscribers"
	leaderboardInfra "github.com/starfocus/starfocus/internal/leaderboard/infrastructure"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
	"github.com/starfocus/starfocus/internal/productivity/application/services"
	"github.com/starfocus/starfocus/internal/productivity/domain/task"
	"github.com/starfocus/starfocus/internal/productivity/infrastructure/classroom"
	productivityPersistence "github.com/starfocus/starfocus/internal/productivity/infrastructure/persistence"
	progressionCommands "github.com/starfocus/starfocus/internal/progression/application/commands"
	progressionQueries "github.com/starfocus/starfocus/internal/progression/application/queries"
	progression "github.com/starfocus/starfocus/internal/progression/domain"
	progressionPersistence "github.com/starfocus/starfocus/internal/progression/infrastructure/persistence"
	sharedApplication "github.com/starfocus/starfocus/internal/shared/application"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
	_ "github.com/starfocus/starfocus/internal/shared/infrastructure/database/postgres" // register driver
	_ "github.com/starfocus/starfocus/internal/shared/infrastructure/database/sqlite"   // register driver
	"github.com/starfocus/starfocus/internal/shared/infrastructure/eventbus"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/migrations"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/outbox"
	"github.com/starfocus/starfocus/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Location *time.Location
	UserID   uuid.UUID

	// Database
	DBConn database.Connection

	// Redis, nil when no leaderboard is configured
	RedisClient *redis.Client

	// Repositories
	TaskRepo    task.Repository
	SessionRepo focusDomain.Repository
	StreakRepo  progression.StreakRepository
	BadgeRepo   progression.BadgeRepository
	OutboxRepo  outbox.Repository

	UnitOfWork sharedApplication.UnitOfWork

	// Publishing. InProcessBus is set when events are delivered in this
	// process instead of RabbitMQ.
	EventPublisher  eventbus.Publisher
	InProcessBus    *eventbus.InProcessBus
	OutboxProcessor *outbox.Processor

	// Scoring core
	PriorityEngine *services.PriorityEngine
	Workload       *services.WorkloadAggregator
	Calculator     *focusDomain.ScoreCalculator
	Evaluator      *progression.BadgeEvaluator

	// Task handlers
	CreateTaskHandler      *commands.CreateTaskHandler
	UpdateTaskHandler      *commands.UpdateTaskHandler
	CompleteTaskHandler    *commands.CompleteTaskHandler
	DeleteTaskHandler      *commands.DeleteTaskHandler
	ImportClassroomHandler *commands.ImportClassroomHandler // nil without Google credentials
	RankTasksHandler       *queries.RankTasksHandler
	GetTaskHandler         *queries.GetTaskHandler
	GetWorkloadHandler     *queries.GetWorkloadHandler

	// Focus handlers
	CompleteSprintHandler *focusCommands.CompleteSprintHandler
	SprintTracker         *focusCommands.SprintTracker
	ListSessionsHandler   *focusQueries.ListSessionsHandler
	GetStatsHandler       *focusQueries.GetStatsHandler
	GetHistoryHandler     *focusQueries.GetHistoryHandler

	// Progression handlers
	UseFreezeTokenHandler *progressionCommands.UseFreezeTokenHandler
	GetProgressHandler    *progressionQueries.GetProgressHandler

	// Leaderboard, nil without Redis
	Leaderboard           *leaderboardApp.Service
	LeaderboardSubscriber *leaderboardSubs.LeaderboardSubscriber
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid STARFOCUS_USER_ID: %w", err)
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Location: cfg.Location(),
		UserID:   userID,
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	logger.Debug("connected to database", "driver", conn.Driver())

	if err := migrations.Run(ctx, conn, logger); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Redis is optional; without it there is no leaderboard.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			if !cfg.IsDevelopment() {
				_ = client.Close()
				_ = conn.Close()
				return nil, fmt.Errorf("failed to connect to Redis: %w", err)
			}
			logger.Warn("Redis not available, leaderboard disabled", "error", err)
			_ = client.Close()
		} else {
			c.RedisClient = client
		}
	}

	c.TaskRepo = productivityPersistence.NewSQLTaskRepository(conn)
	c.SessionRepo = focusPersistence.NewSQLSessionRepository(conn)
	c.StreakRepo = progressionPersistence.NewSQLStreakRepository(conn)
	c.BadgeRepo = progressionPersistence.NewSQLBadgeRepository(conn)
	c.OutboxRepo = outbox.NewSQLRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.PriorityEngine = services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	c.Workload = services.NewWorkloadAggregator(services.DefaultWorkloadConfig())
	c.Calculator = focusDomain.NewScoreCalculator(focusDomain.DefaultScoreConfig())
	c.Evaluator = progression.NewBadgeEvaluator(logger)

	if c.RedisClient != nil {
		board := leaderboardInfra.NewRedisBoard(c.RedisClient, "", 0)
		c.Leaderboard = leaderboardApp.NewService(board, c.Location, logger)
		c.LeaderboardSubscriber = leaderboardSubs.NewLeaderboardSubscriber(c.Leaderboard, logger)
	}

	if err := c.wirePublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.UpdateTaskHandler)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.RankTasksHandler = queries.NewRankTasksHandler(c.TaskRepo, c.PriorityEngine, c.Workload)
	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo, c.PriorityEngine)
	c.GetWorkloadHandler = queries.NewGetWorkloadHandler(c.TaskRepo, c.PriorityEngine, c.Workload)

	if cfg.ClassroomConfigured() {
		client, err := classroom.NewClient(ctx, classroom.Config{
			BaseURL:      cfg.ClassroomBaseURL,
			TokenURL:     cfg.GoogleTokenURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
		}, logger)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.ImportClassroomHandler = commands.NewImportClassroomHandler(client, c.TaskRepo, c.OutboxRepo, c.UnitOfWork, logger)
	}

	// A nil *Service must not reach the interface.
	var standings progression.StandingSource
	if c.Leaderboard != nil {
		standings = c.Leaderboard
	}
	c.CompleteSprintHandler = focusCommands.NewCompleteSprintHandler(
		c.SessionRepo,
		c.TaskRepo,
		c.StreakRepo,
		c.BadgeRepo,
		c.OutboxRepo,
		c.UnitOfWork,
		c.Calculator,
		c.Evaluator,
		standings,
		focusCommands.CompleteSprintConfig{
			ThresholdMinutes: cfg.StreakThresholdMinutes,
			Location:         c.Location,
		},
		logger,
	)
	c.SprintTracker = focusCommands.NewSprintTracker(c.CompleteSprintHandler, nil, logger)
	c.ListSessionsHandler = focusQueries.NewListSessionsHandler(c.SessionRepo)
	c.GetStatsHandler = focusQueries.NewGetStatsHandler(c.SessionRepo, c.Location)
	c.GetHistoryHandler = focusQueries.NewGetHistoryHandler(c.SessionRepo, c.Location)

	c.UseFreezeTokenHandler = progressionCommands.NewUseFreezeTokenHandler(c.StreakRepo, c.OutboxRepo, c.UnitOfWork, c.Location)
	c.GetProgressHandler = progressionQueries.NewGetProgressHandler(c.StreakRepo, c.BadgeRepo, c.Location)

	return c, nil
}

// wirePublisher picks RabbitMQ when configured, otherwise delivers events to
// local subscribers in process.
func (c *Container) wirePublisher() error {
	cfg := c.Config
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		if err == nil {
			c.EventPublisher = publisher
		} else if cfg.IsDevelopment() {
			c.Logger.Warn("RabbitMQ not available, delivering events in process", "error", err)
		} else {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}
	if c.EventPublisher == nil {
		c.InProcessBus = eventbus.NewInProcessBus(c.Logger)
		for _, consumer := range c.Consumers() {
			c.InProcessBus.RegisterConsumer(consumer)
		}
		c.EventPublisher = c.InProcessBus
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        time.Duration(cfg.OutboxRetentionDays) * 24 * time.Hour,
	}, c.Logger)
	return nil
}

// Consumers lists the event subscribers this deployment runs.
func (c *Container) Consumers() []eventbus.EventConsumer {
	var consumers []eventbus.EventConsumer
	if c.LeaderboardSubscriber != nil {
		consumers = append(consumers, c.LeaderboardSubscriber)
	}
	return consumers
}

// Flush delivers pending outbox events right away when they are consumed in
// this process. With RabbitMQ the worker does it.
func (c *Container) Flush(ctx context.Context) {
	if c.InProcessBus == nil || c.OutboxProcessor == nil {
		return
	}
	if err := c.OutboxProcessor.ProcessOnce(ctx); err != nil {
		c.Logger.Warn("outbox flush failed", "error", err)
	}
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.SprintTracker != nil {
		c.SprintTracker.Close()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
