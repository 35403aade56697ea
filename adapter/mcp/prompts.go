package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for common StarFocus workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_sprint").
		Description("Pick what to work on next and start a focus sprint for it.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Plan the next sprint", `Help me pick my next focus sprint. Please:

1. Read my ranked tasks from the starfocus://tasks/ranked resource
2. Check my workload with the workload.get tool

Suggest the single task I should work on now, preferring red-zone work, and
say how long the sprint should be given when interventions unlock. When I
agree, start it with sprint.start and the task id.`), nil
		})

	srv.Prompt("weekly_review").
		Description("Review the week's focus, streak and leaderboard standing.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly focus review", `Review my week with me. Please:

1. Get my stats with stats.get and the last 7 days with stats.history
2. Read my streak and badges from starfocus://progress
3. If available, get the leaderboard with leaderboard.top

Tell me how this week compares to last week, which days I skipped, how close
I am to the next streak milestone and badge, and one concrete change for next
week.`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
