package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/starfocus/starfocus/internal/app"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/eventbus"
	"github.com/starfocus/starfocus/pkg/config"
	"github.com/starfocus/starfocus/pkg/observability"
	"golang.org/x/sync/errgroup"
)

const maxOutboxLag = 5 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, "starfocus-worker"))
	logger.Info("starting starfocus worker")

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := run(ctx, cfg, container, logger); err != nil {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	if cfg.OutboxProcessorEnabled {
		g.Go(func() error { return container.OutboxProcessor.Run(ctx) })
		g.Go(func() error { return cleanupLoop(ctx, cfg, container, logger) })
		g.Go(func() error { return statsLoop(ctx, cfg, container, logger) })
	} else {
		logger.Info("outbox processor disabled")
	}

	// With RabbitMQ the subscribers live here; otherwise the processor
	// already delivers to them in process.
	if container.InProcessBus == nil {
		registry := eventbus.NewConsumerRegistry(logger)
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    cfg.RabbitMQURL,
			Logger: logger,
		}, registry)
		if err != nil {
			return err
		}
		for _, c := range container.Consumers() {
			consumer.RegisterConsumer(c)
		}
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Start(ctx)
		})
	}

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           healthMux(container),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func healthMux(container *app.Container) *http.ServeMux {
	registry := observability.NewHealthRegistry()
	registry.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, container.DBConn.Ping))
	if container.RedisClient != nil {
		registry.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
			return container.RedisClient.Ping(ctx).Err()
		}))
	}
	// a backlog older than maxOutboxLag means events are not getting out
	registry.Register("outbox", func(ctx context.Context) observability.HealthCheckResult {
		stats := container.OutboxProcessor.Stats()
		if time.Duration(stats.OldestLagMs)*time.Millisecond > maxOutboxLag {
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: "outbox backlog: " + stats.LastError,
			}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
	})

	mux := http.NewServeMux()
	mux.Handle("/healthz", registry.Handler(2*time.Second))
	mux.Handle("/readyz", registry.Handler(2*time.Second))
	return mux
}

func cleanupLoop(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) error {
	ticker := time.NewTicker(cfg.OutboxCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deleted, err := container.OutboxProcessor.Purge(ctx)
			if err != nil {
				logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
			}
		}
	}
}

func statsLoop(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) error {
	ticker := time.NewTicker(cfg.OutboxStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := container.OutboxProcessor.Stats()
			logger.Info("outbox stats",
				"published", stats.Published,
				"failed", stats.Failed,
				"dead", stats.Dead,
				"purged", stats.Purged,
				"lag_ms", stats.OldestLagMs,
				"last_run_at", stats.LastRunAt,
				"last_error", stats.LastError,
			)
		}
	}
}
