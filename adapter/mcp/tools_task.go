package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/starfocus/starfocus/internal/productivity/application/commands"
	"github.com/starfocus/starfocus/internal/productivity/application/queries"
)

type taskRankInput struct {
	Zone  string `json:"zone,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type taskCreateInput struct {
	Title       string `json:"title" jsonschema:"required"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

type taskUpdateInput struct {
	TaskID            string   `json:"task_id" jsonschema:"required"`
	Description       *string  `json:"description,omitempty"`
	DueDate           string   `json:"due_date,omitempty"`
	ClearDueDate      bool     `json:"clear_due_date,omitempty"`
	CompletionPercent *int     `json:"completion_percent,omitempty"`
	Priority          *int     `json:"priority,omitempty"`
	GradeWeight       *float64 `json:"grade_weight,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

func registerTaskTools(srv *mcp.Server, ts *toolset) {
	srv.Tool("task.rank").
		Description("List open tasks ranked by urgency (red, amber, green) with the workload they add up to").
		Handler(ts.rankTasks)

	srv.Tool("task.get").
		Description("Get one task with its zone and hours remaining").
		Handler(ts.getTask)

	srv.Tool("task.create").
		Description("Create a manual task with priority 1-10 and an optional due date").
		Handler(ts.createTask)

	srv.Tool("task.update").
		Description("Update progress, priority, grade weight, description or due date of a task").
		Handler(ts.updateTask)

	srv.Tool("task.complete").
		Description("Mark a task as complete").
		Handler(ts.completeTask)

	srv.Tool("task.delete").
		Description("Delete a task").
		Handler(ts.deleteTask)

	srv.Tool("task.import_classroom").
		Description("Import coursework from Google Classroom").
		Handler(ts.importClassroom)

	srv.Tool("workload.get").
		Description("Get the workload score and the minutes at which sprint interventions unlock").
		Handler(ts.getWorkload)
}

func (ts *toolset) rankTasks(ctx context.Context, input taskRankInput) (*queries.RankTasksResult, error) {
	if ts.app.RankTasksHandler == nil {
		return nil, fmt.Errorf("task ranking %w", errNoDatabase)
	}
	return ts.app.RankTasksHandler.Handle(ctx, queries.RankTasksQuery{
		UserID: ts.app.CurrentUserID,
		Zone:   input.Zone,
		Limit:  input.Limit,
	})
}

func (ts *toolset) getTask(ctx context.Context, input taskIDInput) (*queries.TaskDTO, error) {
	if ts.app.GetTaskHandler == nil {
		return nil, fmt.Errorf("task lookup %w", errNoDatabase)
	}
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	return ts.app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: taskID, UserID: ts.app.CurrentUserID})
}

func (ts *toolset) createTask(ctx context.Context, input taskCreateInput) (*commands.CreateTaskResult, error) {
	if ts.app.CreateTaskHandler == nil {
		return nil, fmt.Errorf("task creation %w", errNoDatabase)
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	due, err := parseDue(input.DueDate, ts.app.Location)
	if err != nil {
		return nil, err
	}

	result, err := ts.app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
		UserID:      ts.app.CurrentUserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		DueDate:     due,
	})
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return result, nil
}

func (ts *toolset) updateTask(ctx context.Context, input taskUpdateInput) (map[string]any, error) {
	if ts.app.UpdateTaskHandler == nil {
		return nil, fmt.Errorf("task update %w", errNoDatabase)
	}
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	due, err := parseDue(input.DueDate, ts.app.Location)
	if err != nil {
		return nil, err
	}

	if err := ts.app.UpdateTaskHandler.Handle(ctx, commands.UpdateTaskCommand{
		TaskID:            taskID,
		UserID:            ts.app.CurrentUserID,
		Description:       input.Description,
		DueDate:           due,
		ClearDueDate:      input.ClearDueDate,
		CompletionPercent: input.CompletionPercent,
		Priority:          input.Priority,
		GradeWeight:       input.GradeWeight,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return map[string]any{"task_id": taskID, "updated": true}, nil
}

func (ts *toolset) completeTask(ctx context.Context, input taskIDInput) (map[string]any, error) {
	if ts.app.CompleteTaskHandler == nil {
		return nil, fmt.Errorf("task completion %w", errNoDatabase)
	}
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := ts.app.CompleteTaskHandler.Handle(ctx, commands.CompleteTaskCommand{
		TaskID: taskID,
		UserID: ts.app.CurrentUserID,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return map[string]any{"task_id": taskID, "completed": true}, nil
}

func (ts *toolset) deleteTask(ctx context.Context, input taskIDInput) (map[string]any, error) {
	if ts.app.DeleteTaskHandler == nil {
		return nil, fmt.Errorf("task deletion %w", errNoDatabase)
	}
	taskID, err := parseUUID(input.TaskID)
	if err != nil {
		return nil, err
	}
	if err := ts.app.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{
		TaskID: taskID,
		UserID: ts.app.CurrentUserID,
	}); err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return map[string]any{"task_id": taskID, "deleted": true}, nil
}

func (ts *toolset) importClassroom(ctx context.Context, _ struct{}) (*commands.ImportClassroomResult, error) {
	if ts.app.ImportClassroomHandler == nil {
		return nil, errors.New("google classroom is not configured")
	}
	result, err := ts.app.ImportClassroomHandler.Handle(ctx, commands.ImportClassroomCommand{UserID: ts.app.CurrentUserID})
	if err != nil {
		return nil, err
	}
	ts.app.Flush(ctx)
	return result, nil
}

func (ts *toolset) getWorkload(ctx context.Context, _ struct{}) (*queries.WorkloadDTO, error) {
	if ts.app.GetWorkloadHandler == nil {
		return nil, fmt.Errorf("workload %w", errNoDatabase)
	}
	return ts.app.GetWorkloadHandler.Handle(ctx, queries.GetWorkloadQuery{UserID: ts.app.CurrentUserID})
}
