package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/starfocus/starfocus/internal/app"
	mcpinternal "github.com/starfocus/starfocus/internal/mcp"
	"github.com/starfocus/starfocus/pkg/config"
	"github.com/starfocus/starfocus/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, "starfocus-mcp"))

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	err = mcpinternal.Serve(ctx, cfg, mcpinternal.NewToolDependencies(container), logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
