package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers read-only JSON views of the user's data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	ts := &toolset{app: deps.App, sprints: deps.Sprints}

	srv.Resource("starfocus://tasks/ranked").
		Name("Ranked tasks").
		Description("Open tasks in priority order with the current workload").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			result, err := ts.rankTasks(ctx, taskRankInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, result)
		})

	srv.Resource("starfocus://progress").
		Name("Progress").
		Description("Streak, freeze tokens and badges").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			progress, err := ts.getProgress(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, progress)
		})

	srv.Resource("starfocus://stats").
		Name("Focus stats").
		Description("Today's focus and lifetime totals").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			stats, err := ts.getStats(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, stats)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
