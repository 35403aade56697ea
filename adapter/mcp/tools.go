package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/starfocus/starfocus/adapter/cli"
	focusCommands "github.com/starfocus/starfocus/internal/focus/application/commands"
)

var errNoDatabase = errors.New("requires database connection")

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
	// Sprints tracks live sprints between sprint.start and sprint.finish.
	// Live sprint tools are not registered when it is nil.
	Sprints *focusCommands.SprintTracker
}

type toolset struct {
	app     *cli.App
	sprints *focusCommands.SprintTracker
}

// RegisterTools registers the StarFocus tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	ts := &toolset{app: deps.App, sprints: deps.Sprints}
	registerTaskTools(srv, ts)
	registerSprintTools(srv, ts)
	registerProgressTools(srv, ts)
	return nil
}
