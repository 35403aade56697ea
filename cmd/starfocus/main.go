package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/starfocus/starfocus/adapter/cli"
	"github.com/starfocus/starfocus/adapter/cli/mcp"
	"github.com/starfocus/starfocus/adapter/cli/sprint"
	"github.com/starfocus/starfocus/adapter/cli/task"
	"github.com/starfocus/starfocus/internal/app"
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

	logger := observability.NewLogger(observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, "starfocus"))
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// score and version still work without a database
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container))
	}

	cli.AddCommand(task.Cmd)
	cli.AddCommand(sprint.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
