package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/starfocus/starfocus/internal/app"
	mcpinternal "github.com/starfocus/starfocus/internal/mcp"
	"github.com/starfocus/starfocus/pkg/config"
	"github.com/starfocus/starfocus/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server on MCP_ADDR so an assistant can rank tasks,
run live sprints and read your progress. Set MCP_AUTH_TOKEN to require a
bearer token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger := observability.NewLogger(observability.ConfigFor(cfg.AppEnv, cfg.LogLevel, "starfocus-mcp"))

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		err = mcpinternal.Serve(ctx, cfg, mcpinternal.NewToolDependencies(container), logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
