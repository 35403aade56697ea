package mcp

import (
	"github.com/starfocus/starfocus/adapter/cli"
	mcplocal "github.com/starfocus/starfocus/adapter/mcp"
	"github.com/starfocus/starfocus/internal/app"
)

// NewToolDependencies exposes a container's handlers and live sprint
// tracker to the MCP tools.
func NewToolDependencies(container *app.Container) mcplocal.ToolDependencies {
	return mcplocal.ToolDependencies{
		App:     cli.NewApp(container),
		Sprints: container.SprintTracker,
	}
}
